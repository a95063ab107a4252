package repositories

import (
	"context"
	"time"

	"github.com/lpgdepot/depot_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TurnoverWithCounts pairs a turnover record with the verification counters of
// its cashless transactions, so list views can derive status in one pass.
type TurnoverWithCounts struct {
	Record           domain.TurnoverRecord
	PendingCashless  int
	VerifiedCashless int
	VerifiedAmount   decimal.Decimal
}

// TurnoverRepositoryFacade persists turnover records and their cashless
// transactions. Mutations on a (business_date, cashier) key are serialized by
// the implementation (row locks), so concurrent accountants cannot interleave.
type TurnoverRepositoryFacade interface {
	// UpsertExpected creates the pending record for a key, or refreshes its
	// expected amounts, and appends any new cashless transactions.
	UpsertExpected(ctx context.Context, record domain.TurnoverRecord, txns []domain.CashlessTransaction) (*domain.TurnoverRecord, error)

	FindByKey(ctx context.Context, key domain.TurnoverKey) (*domain.TurnoverRecord, error)
	FindByKeyWithCounts(ctx context.Context, key domain.TurnoverKey) (*TurnoverWithCounts, error)
	ListByDateRange(ctx context.Context, from, to time.Time) ([]TurnoverWithCounts, error)

	// RecordCash sets the counted cash and note under a row lock on the key.
	RecordCash(ctx context.Context, key domain.TurnoverKey, cashCounted decimal.Decimal, note string, accountantUserID string, recordedAt time.Time) (*domain.TurnoverRecord, error)

	// SetFlag flips the advisory flagged bit.
	SetFlag(ctx context.Context, key domain.TurnoverKey, flagged bool, byUserID string, at time.Time) error

	// MarkSaved stamps saved_at and advances the posted-cash watermark. The
	// update is guarded on the previous watermark; a concurrent save makes the
	// guard miss and the call returns apperrors.ErrConflict so the caller can
	// re-read and retry.
	MarkSaved(ctx context.Context, key domain.TurnoverKey, savedAt time.Time, prevPostedCash, newPostedCash decimal.Decimal, prevPostedSeq int, byUserID string) error

	FindCashlessByKey(ctx context.Context, key domain.TurnoverKey) ([]domain.CashlessTransaction, error)

	// MarkCashlessVerified sets verified_at on the given ids where it is still
	// null, and returns the ids actually updated. Already-verified ids are
	// silently skipped, which makes verification idempotent and monotonic.
	MarkCashlessVerified(ctx context.Context, ids []string, byUserID string, at time.Time) ([]string, error)

	IsDateClosed(ctx context.Context, businessDate time.Time) (bool, error)
	SaveDailyClose(ctx context.Context, close domain.DailyClose) error
}
