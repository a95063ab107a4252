package services

import (
	portsrepo "github.com/lpgdepot/depot_backend/internal/core/ports/repositories"
	portssvc "github.com/lpgdepot/depot_backend/internal/core/ports/services"
	"github.com/lpgdepot/depot_backend/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.VAT = NewVATService(repos.VATRepo, repos.AuditRepo)
	container.Exception = NewExceptionService(cfg.ExceptionLargeVarianceAmount, cfg.ExceptionNetSwingThreshold)
	container.Ledger = NewLedgerService(repos.LedgerRepo, repos.AccountRepo)

	// Turnover posting goes through the ledger service so saves share the
	// same balance validation as direct postings.
	container.Turnover = NewTurnoverService(repos.TurnoverRepo, container.Ledger, container.Exception, repos.AuditRepo)

	container.User = NewUserService(repos.UserRepo)
	container.Token = NewTokenService(cfg)

	return container
}
