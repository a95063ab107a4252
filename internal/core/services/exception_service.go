package services

import (
	"context"

	portsrepo "github.com/lpgdepot/depot_backend/internal/core/ports/repositories"
	portssvc "github.com/lpgdepot/depot_backend/internal/core/ports/services"
	"github.com/lpgdepot/depot_backend/internal/dto"
	"github.com/shopspring/decimal"
)

// Advisory issue codes. Detection annotates rows for review and never blocks
// a workflow.
const (
	IssueVariance        = "variance"
	IssueLargeVariance   = "large_variance"
	IssueMissingNote     = "missing_note"
	IssuePendingCashless = "pending_cashless"

	IssueNegativeNet         = "negative_net"
	IssueZeroGrossDeductions = "zero_gross_with_deductions"
	IssueDeductionsOverGross = "deductions_exceed_gross"
	IssueNetSwing            = "net_swing"
)

// exceptionService raises advisory issue codes over accounting rows.
type exceptionService struct {
	BaseService
	// largeVarianceAmount is the absolute cash variance that upgrades a
	// variance to large_variance.
	largeVarianceAmount decimal.Decimal
	// netSwingThreshold is the fractional period-over-period net pay change
	// that raises net_swing, e.g. 0.3 for 30%.
	netSwingThreshold decimal.Decimal
}

// NewExceptionService creates a new ExceptionService.
func NewExceptionService(largeVarianceAmount, netSwingThreshold decimal.Decimal) portssvc.ExceptionSvcFacade {
	return &exceptionService{
		largeVarianceAmount: largeVarianceAmount,
		netSwingThreshold:   netSwingThreshold,
	}
}

var _ portssvc.ExceptionSvcFacade = (*exceptionService)(nil)

// TurnoverIssues returns the issue codes for one reconciliation row.
func (s *exceptionService) TurnoverIssues(ctx context.Context, tc *portsrepo.TurnoverWithCounts) []string {
	issues := []string{}
	record := tc.Record

	if v := record.Variance(); v != nil && !v.IsZero() {
		issues = append(issues, IssueVariance)
		if v.Abs().GreaterThanOrEqual(s.largeVarianceAmount) {
			issues = append(issues, IssueLargeVariance)
		}
		if !noteCovers(record.Note) {
			issues = append(issues, IssueMissingNote)
		}
	}
	if record.CashCounted != nil && tc.PendingCashless > 0 {
		issues = append(issues, IssuePendingCashless)
	}
	return issues
}

// CheckPayroll returns the rows that raised issues, with their codes.
func (s *exceptionService) CheckPayroll(ctx context.Context, req dto.CheckPayrollRequest) []dto.PayrollExceptionResponse {
	out := []dto.PayrollExceptionResponse{}
	for _, row := range req.Rows {
		issues := s.payrollRowIssues(row)
		if len(issues) == 0 {
			continue
		}
		out = append(out, dto.PayrollExceptionResponse{
			EmployeeID: row.EmployeeID,
			Period:     row.Period,
			Issues:     issues,
		})
	}
	return out
}

func (s *exceptionService) payrollRowIssues(row dto.PayrollRowInput) []string {
	var issues []string
	if row.Net.IsNegative() {
		issues = append(issues, IssueNegativeNet)
	}
	if row.Gross.IsZero() && row.Deductions.IsPositive() {
		issues = append(issues, IssueZeroGrossDeductions)
	}
	if row.Deductions.GreaterThan(row.Gross) {
		issues = append(issues, IssueDeductionsOverGross)
	}
	if row.PreviousNet != nil && !row.PreviousNet.IsZero() {
		swing := row.Net.Sub(*row.PreviousNet).Abs().Div(row.PreviousNet.Abs())
		if swing.GreaterThan(s.netSwingThreshold) {
			issues = append(issues, IssueNetSwing)
		}
	}
	return issues
}
