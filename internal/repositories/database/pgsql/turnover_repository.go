package pgsql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lpgdepot/depot_backend/internal/apperrors"
	"github.com/lpgdepot/depot_backend/internal/core/domain"
	portsrepo "github.com/lpgdepot/depot_backend/internal/core/ports/repositories"
	"github.com/lpgdepot/depot_backend/internal/models"
	"github.com/lpgdepot/depot_backend/internal/utils/mapping"
	"github.com/shopspring/decimal"
)

type PgxTurnoverRepository struct {
	BaseRepository
}

// newPgxTurnoverRepository creates a new repository for turnover reconciliation data.
func newPgxTurnoverRepository(pool *pgxpool.Pool) portsrepo.TurnoverRepositoryFacade {
	return &PgxTurnoverRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.TurnoverRepositoryFacade = (*PgxTurnoverRepository)(nil)

const turnoverColumns = `
	t.turnover_id, t.business_date, t.cashier_user_id, t.accountant_user_id,
	t.expected_cash, t.expected_cashless, t.expected_by_method, t.cash_counted,
	t.note, t.flagged, t.recorded_at, t.saved_at, t.last_posted_cash, t.posted_seq,
	t.created_at, t.created_by, t.last_updated_at, t.last_updated_by`

// turnoverRow is a scan target; nullable columns use their sql/decimal wrappers.
type turnoverRow struct {
	m                models.TurnoverRecord
	expectedByMethod []byte
	cashCounted      decimal.NullDecimal
}

func scanTurnover(row pgx.Row) (*models.TurnoverRecord, error) {
	var t turnoverRow
	err := row.Scan(
		&t.m.TurnoverID,
		&t.m.BusinessDate,
		&t.m.CashierUserID,
		&t.m.AccountantUserID,
		&t.m.ExpectedCash,
		&t.m.ExpectedCashless,
		&t.expectedByMethod,
		&t.cashCounted,
		&t.m.Note,
		&t.m.Flagged,
		&t.m.RecordedAt,
		&t.m.SavedAt,
		&t.m.LastPostedCash,
		&t.m.PostedSeq,
		&t.m.CreatedAt,
		&t.m.CreatedBy,
		&t.m.LastUpdatedAt,
		&t.m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	if len(t.expectedByMethod) > 0 {
		if err := json.Unmarshal(t.expectedByMethod, &t.m.ExpectedByMethod); err != nil {
			return nil, fmt.Errorf("failed to decode expected_by_method: %w", err)
		}
	}
	if t.cashCounted.Valid {
		v := t.cashCounted.Decimal
		t.m.CashCounted = &v
	}
	return &t.m, nil
}

// UpsertExpected creates the pending record for a key, or refreshes its
// expected amounts, and appends any new cashless transactions. Existing
// cashless rows are left untouched so verification state survives re-syncs.
func (r *PgxTurnoverRepository) UpsertExpected(ctx context.Context, record domain.TurnoverRecord, txns []domain.CashlessTransaction) (*domain.TurnoverRecord, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	m := mapping.ToModelTurnoverRecord(record)
	methodJSON, err := json.Marshal(m.ExpectedByMethod)
	if err != nil {
		return nil, fmt.Errorf("failed to encode expected_by_method: %w", err)
	}

	query := `
		INSERT INTO turnovers (
			turnover_id, business_date, cashier_user_id, accountant_user_id,
			expected_cash, expected_cashless, expected_by_method,
			note, flagged, last_posted_cash, posted_seq,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, '', $4, $5, $6, '', FALSE, 0, 0, $7, $8, $7, $8)
		ON CONFLICT (business_date, cashier_user_id) DO UPDATE SET
			expected_cash = EXCLUDED.expected_cash,
			expected_cashless = EXCLUDED.expected_cashless,
			expected_by_method = EXCLUDED.expected_by_method,
			last_updated_at = EXCLUDED.last_updated_at,
			last_updated_by = EXCLUDED.last_updated_by
		RETURNING ` + strippedTurnoverColumns + `;
	`
	saved, err := scanTurnover(tx.QueryRow(ctx, query,
		m.TurnoverID,
		m.BusinessDate,
		m.CashierUserID,
		m.ExpectedCash,
		m.ExpectedCashless,
		methodJSON,
		m.CreatedAt,
		m.CreatedBy,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert turnover: %w", err)
	}

	if len(txns) > 0 {
		batch := &pgx.Batch{}
		txnQuery := `
			INSERT INTO cashless_transactions (transaction_id, business_date, cashier_user_id, method_key, amount, reference, verified_by_user_id, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, '', $7)
			ON CONFLICT (transaction_id) DO NOTHING;
		`
		for _, txn := range txns {
			mt := mapping.ToModelCashlessTransaction(txn)
			batch.Queue(txnQuery,
				mt.TransactionID,
				mt.BusinessDate,
				mt.CashierUserID,
				mt.MethodKey,
				mt.Amount,
				mt.Reference,
				mt.CreatedAt,
			)
		}
		br := tx.SendBatch(ctx, batch)
		if err := br.Close(); err != nil {
			return nil, fmt.Errorf("failed to insert cashless transactions: %w", err)
		}
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	result := mapping.ToDomainTurnoverRecord(*saved)
	return &result, nil
}

// strippedTurnoverColumns is turnoverColumns without the "t." alias, for
// RETURNING clauses on single-table statements.
const strippedTurnoverColumns = `
	turnover_id, business_date, cashier_user_id, accountant_user_id,
	expected_cash, expected_cashless, expected_by_method, cash_counted,
	note, flagged, recorded_at, saved_at, last_posted_cash, posted_seq,
	created_at, created_by, last_updated_at, last_updated_by`

// FindByKey retrieves one turnover record by its (business date, cashier) key.
func (r *PgxTurnoverRepository) FindByKey(ctx context.Context, key domain.TurnoverKey) (*domain.TurnoverRecord, error) {
	query := `SELECT` + turnoverColumns + ` FROM turnovers t WHERE t.business_date = $1 AND t.cashier_user_id = $2;`

	m, err := scanTurnover(r.Pool.QueryRow(ctx, query, key.BusinessDate, key.CashierUserID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("turnover for %s/%s: %w", key.BusinessDate.Format("2006-01-02"), key.CashierUserID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find turnover: %w", err)
	}
	record := mapping.ToDomainTurnoverRecord(*m)
	return &record, nil
}

const cashlessCountJoin = `
	LEFT JOIN LATERAL (
		SELECT
			COUNT(*) FILTER (WHERE c.verified_at IS NULL) AS pending,
			COUNT(*) FILTER (WHERE c.verified_at IS NOT NULL) AS verified,
			COALESCE(SUM(c.amount) FILTER (WHERE c.verified_at IS NOT NULL), 0) AS verified_amount
		FROM cashless_transactions c
		WHERE c.business_date = t.business_date AND c.cashier_user_id = t.cashier_user_id
	) cc ON TRUE`

func scanTurnoverWithCounts(rows pgx.Rows) (*portsrepo.TurnoverWithCounts, error) {
	var t turnoverRow
	var pending, verified int
	var verifiedAmount decimal.Decimal
	err := rows.Scan(
		&t.m.TurnoverID,
		&t.m.BusinessDate,
		&t.m.CashierUserID,
		&t.m.AccountantUserID,
		&t.m.ExpectedCash,
		&t.m.ExpectedCashless,
		&t.expectedByMethod,
		&t.cashCounted,
		&t.m.Note,
		&t.m.Flagged,
		&t.m.RecordedAt,
		&t.m.SavedAt,
		&t.m.LastPostedCash,
		&t.m.PostedSeq,
		&t.m.CreatedAt,
		&t.m.CreatedBy,
		&t.m.LastUpdatedAt,
		&t.m.LastUpdatedBy,
		&pending,
		&verified,
		&verifiedAmount,
	)
	if err != nil {
		return nil, err
	}
	if len(t.expectedByMethod) > 0 {
		if err := json.Unmarshal(t.expectedByMethod, &t.m.ExpectedByMethod); err != nil {
			return nil, fmt.Errorf("failed to decode expected_by_method: %w", err)
		}
	}
	if t.cashCounted.Valid {
		v := t.cashCounted.Decimal
		t.m.CashCounted = &v
	}
	return &portsrepo.TurnoverWithCounts{
		Record:           mapping.ToDomainTurnoverRecord(t.m),
		PendingCashless:  pending,
		VerifiedCashless: verified,
		VerifiedAmount:   verifiedAmount,
	}, nil
}

// FindByKeyWithCounts retrieves one record with its cashless counters.
func (r *PgxTurnoverRepository) FindByKeyWithCounts(ctx context.Context, key domain.TurnoverKey) (*portsrepo.TurnoverWithCounts, error) {
	query := `SELECT` + turnoverColumns + `, cc.pending, cc.verified, cc.verified_amount
		FROM turnovers t` + cashlessCountJoin + `
		WHERE t.business_date = $1 AND t.cashier_user_id = $2;`

	rows, err := r.Pool.Query(ctx, query, key.BusinessDate, key.CashierUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to query turnover: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to query turnover: %w", err)
		}
		return nil, fmt.Errorf("turnover for %s/%s: %w", key.BusinessDate.Format("2006-01-02"), key.CashierUserID, apperrors.ErrNotFound)
	}
	tc, err := scanTurnoverWithCounts(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan turnover: %w", err)
	}
	return tc, nil
}

// ListByDateRange retrieves records with counters for [from, to], both inclusive.
func (r *PgxTurnoverRepository) ListByDateRange(ctx context.Context, from, to time.Time) ([]portsrepo.TurnoverWithCounts, error) {
	query := `SELECT` + turnoverColumns + `, cc.pending, cc.verified, cc.verified_amount
		FROM turnovers t` + cashlessCountJoin + `
		WHERE t.business_date >= $1 AND t.business_date <= $2
		ORDER BY t.business_date DESC, t.cashier_user_id ASC;`

	rows, err := r.Pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list turnovers: %w", err)
	}
	defer rows.Close()

	var out []portsrepo.TurnoverWithCounts
	for rows.Next() {
		tc, err := scanTurnoverWithCounts(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan turnover row: %w", err)
		}
		out = append(out, *tc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating turnover rows: %w", err)
	}
	return out, nil
}

// RecordCash sets the counted cash and note under a row lock on the key.
func (r *PgxTurnoverRepository) RecordCash(ctx context.Context, key domain.TurnoverKey, cashCounted decimal.Decimal, note string, accountantUserID string, recordedAt time.Time) (*domain.TurnoverRecord, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	lockQuery := `SELECT turnover_id FROM turnovers WHERE business_date = $1 AND cashier_user_id = $2 FOR UPDATE;`
	var turnoverID string
	if err := tx.QueryRow(ctx, lockQuery, key.BusinessDate, key.CashierUserID).Scan(&turnoverID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("turnover for %s/%s: %w", key.BusinessDate.Format("2006-01-02"), key.CashierUserID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to lock turnover: %w", err)
	}

	query := `
		UPDATE turnovers
		SET cash_counted = $1, note = $2, accountant_user_id = $3, recorded_at = $4,
			last_updated_at = $4, last_updated_by = $3
		WHERE turnover_id = $5
		RETURNING ` + strippedTurnoverColumns + `;
	`
	m, err := scanTurnover(tx.QueryRow(ctx, query, cashCounted, note, accountantUserID, recordedAt, turnoverID))
	if err != nil {
		return nil, fmt.Errorf("failed to record counted cash: %w", err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	record := mapping.ToDomainTurnoverRecord(*m)
	return &record, nil
}

// SetFlag flips the advisory flagged bit.
func (r *PgxTurnoverRepository) SetFlag(ctx context.Context, key domain.TurnoverKey, flagged bool, byUserID string, at time.Time) error {
	query := `
		UPDATE turnovers
		SET flagged = $1, last_updated_at = $2, last_updated_by = $3
		WHERE business_date = $4 AND cashier_user_id = $5;
	`
	tag, err := r.Pool.Exec(ctx, query, flagged, at, byUserID, key.BusinessDate, key.CashierUserID)
	if err != nil {
		return fmt.Errorf("failed to set turnover flag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("turnover for %s/%s: %w", key.BusinessDate.Format("2006-01-02"), key.CashierUserID, apperrors.ErrNotFound)
	}
	return nil
}

// MarkSaved stamps saved_at and advances the posted-cash watermark. The update
// is guarded on the previous watermark and posting sequence; a concurrent save
// makes the guard miss and the caller gets ErrConflict.
func (r *PgxTurnoverRepository) MarkSaved(ctx context.Context, key domain.TurnoverKey, savedAt time.Time, prevPostedCash, newPostedCash decimal.Decimal, prevPostedSeq int, byUserID string) error {
	newSeq := prevPostedSeq
	if !newPostedCash.Equal(prevPostedCash) {
		newSeq = prevPostedSeq + 1
	}

	query := `
		UPDATE turnovers
		SET saved_at = $1, last_posted_cash = $2, posted_seq = $3,
			last_updated_at = $1, last_updated_by = $4
		WHERE business_date = $5 AND cashier_user_id = $6
			AND last_posted_cash = $7 AND posted_seq = $8;
	`
	tag, err := r.Pool.Exec(ctx, query, savedAt, newPostedCash, newSeq, byUserID,
		key.BusinessDate, key.CashierUserID, prevPostedCash, prevPostedSeq)
	if err != nil {
		return fmt.Errorf("failed to mark turnover saved: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: turnover changed since it was read", apperrors.ErrConflict)
	}
	return nil
}

// FindCashlessByKey retrieves the cashless transactions of one turnover key.
func (r *PgxTurnoverRepository) FindCashlessByKey(ctx context.Context, key domain.TurnoverKey) ([]domain.CashlessTransaction, error) {
	query := `
		SELECT transaction_id, business_date, cashier_user_id, method_key, amount, reference, verified_at, verified_by_user_id, created_at
		FROM cashless_transactions
		WHERE business_date = $1 AND cashier_user_id = $2
		ORDER BY created_at ASC, transaction_id ASC;
	`
	rows, err := r.Pool.Query(ctx, query, key.BusinessDate, key.CashierUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cashless transactions: %w", err)
	}
	defer rows.Close()

	var out []domain.CashlessTransaction
	for rows.Next() {
		var m models.CashlessTransaction
		err := rows.Scan(
			&m.TransactionID,
			&m.BusinessDate,
			&m.CashierUserID,
			&m.MethodKey,
			&m.Amount,
			&m.Reference,
			&m.VerifiedAt,
			&m.VerifiedByUserID,
			&m.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cashless transaction: %w", err)
		}
		out = append(out, mapping.ToDomainCashlessTransaction(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cashless transactions: %w", err)
	}
	return out, nil
}

// MarkCashlessVerified sets verified_at on the given ids where it is still
// null, and returns the ids actually updated. The WHERE guard makes
// verification idempotent and monotonic: verified rows are never re-stamped.
func (r *PgxTurnoverRepository) MarkCashlessVerified(ctx context.Context, ids []string, byUserID string, at time.Time) ([]string, error) {
	query := `
		UPDATE cashless_transactions
		SET verified_at = $1, verified_by_user_id = $2
		WHERE transaction_id = ANY($3) AND verified_at IS NULL
		RETURNING transaction_id;
	`
	rows, err := r.Pool.Query(ctx, query, at, byUserID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to verify cashless transactions: %w", err)
	}
	defer rows.Close()

	var updated []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan verified transaction id: %w", err)
		}
		updated = append(updated, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating verified transaction ids: %w", err)
	}
	return updated, nil
}

// IsDateClosed reports whether a daily close exists for the business date.
func (r *PgxTurnoverRepository) IsDateClosed(ctx context.Context, businessDate time.Time) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM daily_closes WHERE business_date = $1);`
	var closed bool
	if err := r.Pool.QueryRow(ctx, query, businessDate).Scan(&closed); err != nil {
		return false, fmt.Errorf("failed to check daily close: %w", err)
	}
	return closed, nil
}

// SaveDailyClose finalizes a business date.
func (r *PgxTurnoverRepository) SaveDailyClose(ctx context.Context, close domain.DailyClose) error {
	m := mapping.ToModelDailyClose(close)
	query := `
		INSERT INTO daily_closes (business_date, finalized_by_user_id, finalized_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (business_date) DO NOTHING;
	`
	tag, err := r.Pool.Exec(ctx, query, m.BusinessDate, m.FinalizedByUserID, m.FinalizedAt)
	if err != nil {
		return fmt.Errorf("failed to save daily close: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: business date %s is already finalized", apperrors.ErrDuplicate, m.BusinessDate.Format("2006-01-02"))
	}
	return nil
}
