package services

import (
	"context"

	"github.com/lpgdepot/depot_backend/internal/core/domain"
	"github.com/lpgdepot/depot_backend/internal/dto"
)

// TurnoverReaderSvc defines read operations for turnover reconciliation
type TurnoverReaderSvc interface {
	// GetTurnover retrieves one reconciliation row by its key.
	GetTurnover(ctx context.Context, key domain.TurnoverKey) (*dto.TurnoverRowResponse, error)

	// ListTurnovers retrieves reconciliation rows for a date range, optionally
	// narrowed to one computed status.
	ListTurnovers(ctx context.Context, params dto.ListTurnoversParams) ([]dto.TurnoverRowResponse, error)

	// ListCashless retrieves the cashless transactions of one turnover key.
	ListCashless(ctx context.Context, key domain.TurnoverKey) ([]dto.CashlessTransactionResponse, error)
}

// TurnoverWriterSvc defines mutations on turnover reconciliation state
type TurnoverWriterSvc interface {
	// RegisterExpected creates or refreshes the pending record for a key with
	// upstream expected amounts and cashless transactions.
	RegisterExpected(ctx context.Context, req dto.RegisterExpectedRequest, byUserID string) (*dto.TurnoverRowResponse, error)

	// RecordCash records the counted cash for a key. A note is required when
	// the count does not match the expected cash.
	RecordCash(ctx context.Context, req dto.RecordCashRequest, accountantUserID string) (*dto.TurnoverRowResponse, error)

	// VerifyCashless verifies a batch of cashless transactions, itemizing the
	// outcome per id. Re-verification is a no-op.
	VerifyCashless(ctx context.Context, req dto.VerifyCashlessRequest, byUserID string) (*dto.VerifyCashlessResult, error)

	// Save finalizes a record and posts any unposted counted cash to the
	// ledger. Repeat saves with no cash change post nothing.
	Save(ctx context.Context, req dto.SaveTurnoverRequest, byUserID string) (*dto.TurnoverRowResponse, error)

	// SetFlag sets or clears the advisory flagged bit on a record.
	SetFlag(ctx context.Context, req dto.FlagTurnoverRequest, byUserID string) (*dto.TurnoverRowResponse, error)

	// CloseDay finalizes a business date, blocking further mutations on it.
	CloseDay(ctx context.Context, req dto.DailyCloseRequest, byUserID string) (*dto.DailyCloseResponse, error)
}

// TurnoverSvcFacade combines all turnover-related service interfaces
type TurnoverSvcFacade interface {
	TurnoverReaderSvc
	TurnoverWriterSvc
}
