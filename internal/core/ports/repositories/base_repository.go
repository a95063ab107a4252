package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TransactionManager exposes pgx transactions to repositories whose writes
// must land atomically, like a ledger entry together with its lines.
type TransactionManager interface {
	// Begin starts a new database transaction.
	Begin(ctx context.Context) (pgx.Tx, error)

	// Commit commits a transaction.
	Commit(ctx context.Context, tx pgx.Tx) error

	// Rollback rolls back a transaction. Safe to defer after Commit.
	Rollback(ctx context.Context, tx pgx.Tx) error
}

// RepositoryWithTx marks repositories that run their multi-row writes
// inside a transaction (ledger postings, turnover upserts).
type RepositoryWithTx interface {
	TransactionManager
}
