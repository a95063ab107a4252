package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lpgdepot/depot_backend/internal/apperrors"
	"github.com/lpgdepot/depot_backend/internal/core/domain"
	portsrepo "github.com/lpgdepot/depot_backend/internal/core/ports/repositories"
	"github.com/lpgdepot/depot_backend/internal/models"
	"github.com/lpgdepot/depot_backend/internal/utils/mapping"
	"github.com/lpgdepot/depot_backend/internal/utils/pagination"
	"github.com/shopspring/decimal"
)

type PgxLedgerRepository struct {
	BaseRepository
}

// newPgxLedgerRepository creates a new repository for ledger entries and lines.
func newPgxLedgerRepository(pool *pgxpool.Pool) portsrepo.LedgerRepositoryFacade {
	return &PgxLedgerRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.LedgerRepositoryFacade = (*PgxLedgerRepository)(nil)

const ledgerLineColumns = `
	l.line_id, l.entry_id, l.line_seq, l.account_code, l.description, l.debit, l.credit,
	l.cleared, l.bank_ref, e.entry_date, e.reference_type, e.reference_id,
	a.name, l.created_at, e.created_by`

const ledgerLineFrom = `
	FROM ledger_lines l
	JOIN ledger_entries e ON l.entry_id = e.entry_id
	JOIN chart_of_accounts a ON l.account_code = a.code`

func scanLedgerLine(rows pgx.Rows) (models.LedgerLine, error) {
	var m models.LedgerLine
	err := rows.Scan(
		&m.LineID,
		&m.EntryID,
		&m.LineSeq,
		&m.AccountCode,
		&m.Description,
		&m.Debit,
		&m.Credit,
		&m.Cleared,
		&m.BankRef,
		&m.EntryDate,
		&m.ReferenceType,
		&m.ReferenceID,
		&m.AccountName,
		&m.CreatedAt,
		&m.PostedBy,
	)
	return m, err
}

// SaveEntry persists the entry header and all lines in a single transaction.
// The unique constraint on (reference_type, reference_id) enforces at-most-once
// posting per reference at the database level.
func (r *PgxLedgerRepository) SaveEntry(ctx context.Context, entry domain.LedgerEntry, lines []domain.LedgerLine) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	modelEntry := mapping.ToModelLedgerEntry(entry)
	entryQuery := `
		INSERT INTO ledger_entries (entry_id, reference_type, reference_id, entry_date, memo, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err = tx.Exec(ctx, entryQuery,
		modelEntry.EntryID,
		modelEntry.ReferenceType,
		modelEntry.ReferenceID,
		modelEntry.EntryDate,
		modelEntry.Memo,
		modelEntry.CreatedAt,
		modelEntry.CreatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: entry for reference %s/%s already exists",
				apperrors.ErrDuplicate, modelEntry.ReferenceType, modelEntry.ReferenceID)
		}
		return fmt.Errorf("failed to insert ledger entry %s: %w", modelEntry.EntryID, err)
	}

	batch := &pgx.Batch{}
	lineQuery := `
		INSERT INTO ledger_lines (line_id, entry_id, line_seq, account_code, description, debit, credit, cleared, bank_ref, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	for _, line := range lines {
		m := mapping.ToModelLedgerLine(line)
		batch.Queue(lineQuery,
			m.LineID,
			m.EntryID,
			m.LineSeq,
			m.AccountCode,
			m.Description,
			m.Debit,
			m.Credit,
			m.Cleared,
			m.BankRef,
			m.CreatedAt,
		)
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to insert ledger lines for entry %s: %w", modelEntry.EntryID, err)
	}

	return r.Commit(ctx, tx)
}

// FindLinesByReference returns all lines posted under a reference id in
// deterministic order. referenceType narrows the match when non-empty.
func (r *PgxLedgerRepository) FindLinesByReference(ctx context.Context, referenceType domain.ReferenceType, referenceID string) ([]domain.LedgerLine, error) {
	query := `SELECT` + ledgerLineColumns + ledgerLineFrom + `
		WHERE e.reference_id = $1`
	args := []interface{}{referenceID}
	if referenceType != "" {
		query += ` AND e.reference_type = $2`
		args = append(args, string(referenceType))
	}
	query += ` ORDER BY e.entry_date ASC, l.created_at ASC, l.line_seq ASC;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines for reference %s: %w", referenceID, err)
	}
	defer rows.Close()

	var lines []domain.LedgerLine
	for rows.Next() {
		m, err := scanLedgerLine(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger line: %w", err)
		}
		lines = append(lines, mapping.ToDomainLedgerLine(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger lines for reference %s: %w", referenceID, err)
	}
	return lines, nil
}

// SumAccount returns the total debit and credit posted to an account for lines
// with entry_date <= asOf.
func (r *PgxLedgerRepository) SumAccount(ctx context.Context, accountCode string, asOf time.Time) (decimal.Decimal, decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(l.debit), 0), COALESCE(SUM(l.credit), 0)
		FROM ledger_lines l
		JOIN ledger_entries e ON l.entry_id = e.entry_id
		WHERE l.account_code = $1 AND e.entry_date <= $2;
	`
	var debit, credit decimal.Decimal
	if err := r.Pool.QueryRow(ctx, query, accountCode, asOf).Scan(&debit, &credit); err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("failed to sum account %s: %w", accountCode, err)
	}
	return debit, credit, nil
}

// buildFilterClauses renders the filter as SQL conditions appended to args.
func buildFilterClauses(filter portsrepo.LedgerListFilter, args []interface{}) ([]string, []interface{}) {
	var clauses []string
	add := func(clause string, value interface{}) {
		args = append(args, value)
		clauses = append(clauses, strings.ReplaceAll(clause, "?", "$"+strconv.Itoa(len(args))))
	}

	if filter.Query != "" {
		// One search box matches reference ids, account code/name and the
		// line description.
		args = append(args, "%"+filter.Query+"%")
		n := "$" + strconv.Itoa(len(args))
		clauses = append(clauses, "(e.reference_id ILIKE "+n+
			" OR e.reference_type ILIKE "+n+
			" OR l.account_code ILIKE "+n+
			" OR a.name ILIKE "+n+
			" OR l.description ILIKE "+n+")")
	}
	if filter.ReferenceType != "" {
		add("e.reference_type = ?", string(filter.ReferenceType))
	}
	if filter.AccountCode != "" {
		add("l.account_code = ?", filter.AccountCode)
	}
	if filter.From != nil {
		add("e.entry_date >= ?", *filter.From)
	}
	if filter.To != nil {
		add("e.entry_date <= ?", *filter.To)
	}
	if filter.Cleared != nil {
		add("l.cleared = ?", *filter.Cleared)
	}
	if filter.BankRef != "" {
		add("l.bank_ref = ?", filter.BankRef)
	}
	return clauses, args
}

// ListLines returns one page of lines matching the filter plus a token for the
// next page. Ordering is (entry_date, created_at, line_id), newest first by
// default, with the line id as a stable tiebreaker for the cursor.
func (r *PgxLedgerRepository) ListLines(ctx context.Context, filter portsrepo.LedgerListFilter, limit int, nextToken *string) ([]domain.LedgerLine, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	clauses, args := buildFilterClauses(filter, nil)

	cmp, order := "<", "DESC"
	if filter.OldestFirst {
		cmp, order = ">", "ASC"
	}

	if nextToken != nil && *nextToken != "" {
		lastEntryDate, lastCreatedAt, lastLineID, decodeErr := pagination.DecodeLineToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		args = append(args, lastEntryDate, lastCreatedAt, lastLineID)
		n := len(args)
		clauses = append(clauses, fmt.Sprintf("(e.entry_date, l.created_at, l.line_id) %s ($%d, $%d, $%d)", cmp, n-2, n-1, n))
	}

	query := `SELECT` + ledgerLineColumns + ledgerLineFrom
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY e.entry_date %s, l.created_at %s, l.line_id %s", order, order, order)
	args = append(args, fetchLimit)
	query += " LIMIT $" + strconv.Itoa(len(args)) + ";"

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query ledger lines: %w", err)
	}
	defer rows.Close()

	results := make([]models.LedgerLine, 0, fetchLimit)
	for rows.Next() {
		m, err := scanLedgerLine(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan ledger line: %w", err)
		}
		results = append(results, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating ledger lines: %w", err)
	}

	var nextTokenVal *string
	if len(results) > limit {
		last := results[limit-1]
		token := pagination.EncodeLineToken(last.EntryDate, last.CreatedAt, last.LineID)
		nextTokenVal = &token
		results = results[:limit]
	}

	lines := make([]domain.LedgerLine, len(results))
	for i, m := range results {
		lines[i] = mapping.ToDomainLedgerLine(m)
	}
	return lines, nextTokenVal, nil
}

// TotalsForFilter aggregates debit and credit over the whole filtered set.
func (r *PgxLedgerRepository) TotalsForFilter(ctx context.Context, filter portsrepo.LedgerListFilter) (portsrepo.LedgerTotals, error) {
	clauses, args := buildFilterClauses(filter, nil)

	query := `SELECT COALESCE(SUM(l.debit), 0), COALESCE(SUM(l.credit), 0)` + ledgerLineFrom
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += ";"

	totals := portsrepo.LedgerTotals{Debit: decimal.Zero, Credit: decimal.Zero}
	if err := r.Pool.QueryRow(ctx, query, args...).Scan(&totals.Debit, &totals.Credit); err != nil {
		return totals, fmt.Errorf("failed to total ledger lines: %w", err)
	}
	return totals, nil
}
