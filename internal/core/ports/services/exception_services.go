package services

import (
	"context"

	portsrepo "github.com/lpgdepot/depot_backend/internal/core/ports/repositories"
	"github.com/lpgdepot/depot_backend/internal/dto"
)

// ExceptionSvcFacade raises advisory issue codes over accounting rows.
// Detection never blocks a workflow; it only annotates.
type ExceptionSvcFacade interface {
	// TurnoverIssues returns the issue codes for one reconciliation row.
	TurnoverIssues(ctx context.Context, tc *portsrepo.TurnoverWithCounts) []string

	// CheckPayroll returns the rows that raised issues, with their codes.
	CheckPayroll(ctx context.Context, req dto.CheckPayrollRequest) []dto.PayrollExceptionResponse
}
