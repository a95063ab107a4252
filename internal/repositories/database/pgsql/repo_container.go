package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"
	portsrepo "github.com/lpgdepot/depot_backend/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	accountRepo := newPgxAccountRepository(dbPool)
	ledgerRepo := newPgxLedgerRepository(dbPool)
	turnoverRepo := newPgxTurnoverRepository(dbPool)
	vatRepo := newPgxVATSettingsRepository(dbPool)
	userRepo := newPgxUserRepository(dbPool)
	auditRepo := newPgxAuditRepository(dbPool)

	return portsrepo.RepositoryProvider{
		AccountRepo:  accountRepo,
		LedgerRepo:   ledgerRepo,
		TurnoverRepo: turnoverRepo,
		VATRepo:      vatRepo,
		UserRepo:     userRepo,
		AuditRepo:    auditRepo,
	}
}
