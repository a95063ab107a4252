package repositories

import (
	"context"
	"time"

	"github.com/lpgdepot/depot_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// LedgerListFilter carries the filter set of the ledger listing query.
// Zero values mean "no filter" for the respective field.
type LedgerListFilter struct {
	Query         string // matches reference type/id, account code/name, line description
	ReferenceType domain.ReferenceType
	AccountCode   string
	From          *time.Time
	To            *time.Time
	Cleared       *bool
	BankRef       string
	OldestFirst   bool
}

// LedgerTotals aggregates the debit/credit sums of a filtered line set.
type LedgerTotals struct {
	Debit  decimal.Decimal `json:"debit"`
	Credit decimal.Decimal `json:"credit"`
}

// Net returns debit minus credit.
func (t LedgerTotals) Net() decimal.Decimal {
	return t.Debit.Sub(t.Credit)
}

// LedgerRepositoryFacade persists ledger entries and their lines.
// SaveEntry must be all-or-nothing: a batch is visible completely or not at all.
type LedgerRepositoryFacade interface {
	// SaveEntry persists the entry and all lines in a single transaction.
	// Returns apperrors.ErrDuplicate when an entry already exists for the
	// entry's (ReferenceType, ReferenceID).
	SaveEntry(ctx context.Context, entry domain.LedgerEntry, lines []domain.LedgerLine) error

	// FindLinesByReference returns all lines posted under a reference id,
	// ordered by (entry_date, created_at, line_seq). referenceType narrows the
	// match when non-empty.
	FindLinesByReference(ctx context.Context, referenceType domain.ReferenceType, referenceID string) ([]domain.LedgerLine, error)

	// SumAccount returns the total debit and credit posted to an account for
	// lines with entry_date <= asOf.
	SumAccount(ctx context.Context, accountCode string, asOf time.Time) (debit, credit decimal.Decimal, err error)

	// ListLines returns one page of lines matching the filter plus a token for
	// the next page, and TotalsForFilter aggregates the whole filtered set.
	ListLines(ctx context.Context, filter LedgerListFilter, limit int, nextToken *string) ([]domain.LedgerLine, *string, error)
	TotalsForFilter(ctx context.Context, filter LedgerListFilter) (LedgerTotals, error)
}

// AccountRepositoryFacade reads the chart of accounts.
type AccountRepositoryFacade interface {
	FindAccountByCode(ctx context.Context, code string) (*domain.Account, error)
	ListAccounts(ctx context.Context) ([]domain.Account, error)
}
