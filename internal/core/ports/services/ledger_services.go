package services

import (
	"context"
	"time"

	"github.com/lpgdepot/depot_backend/internal/core/domain"
	"github.com/lpgdepot/depot_backend/internal/dto"
	"github.com/shopspring/decimal"
)

// LedgerWriterSvc defines posting operations for the ledger
type LedgerWriterSvc interface {
	// PostEntry validates and persists one balanced batch of ledger lines.
	PostEntry(ctx context.Context, req dto.PostEntryRequest, postedByUserID string) (*domain.LedgerEntry, error)

	// PostSale composes and posts the ledger entries for a completed sale:
	// revenue/VAT recognition plus the COGS movement when a cost is supplied.
	PostSale(ctx context.Context, req dto.PostSaleRequest, postedByUserID string) (*domain.LedgerEntry, error)
}

// LedgerReaderSvc defines read operations for ledger data
type LedgerReaderSvc interface {
	// ListLedger retrieves a filtered, paginated ledger view with totals.
	ListLedger(ctx context.Context, params dto.ListLedgerParams) (*dto.ListLedgerResponse, error)

	// ResolveReference returns every line posted under a reference id along
	// with totals and a balance check recomputed from the lines.
	ResolveReference(ctx context.Context, referenceType string, referenceID string) (*dto.ResolveReferenceResponse, error)

	// RunningBalance returns an account's signed balance as of a date,
	// oriented to the account's normal side.
	RunningBalance(ctx context.Context, accountCode string, asOf time.Time) (decimal.Decimal, error)

	// ListAccounts returns the chart of accounts.
	ListAccounts(ctx context.Context) ([]domain.Account, error)
}

// LedgerSvcFacade combines all ledger-related service interfaces
type LedgerSvcFacade interface {
	LedgerWriterSvc
	LedgerReaderSvc
}
