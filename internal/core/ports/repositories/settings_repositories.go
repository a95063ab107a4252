package repositories

import (
	"context"

	"github.com/lpgdepot/depot_backend/internal/core/domain"
)

// VATSettingsRepositoryFacade reads and writes the singleton VAT configuration.
type VATSettingsRepositoryFacade interface {
	GetVATSettings(ctx context.Context) (*domain.VATSettings, error)
	// UpdateVATSettings persists the new values and bumps the version.
	UpdateVATSettings(ctx context.Context, settings domain.VATSettings) (*domain.VATSettings, error)
}

// UserRepositoryFacade reads staff users for authentication.
type UserRepositoryFacade interface {
	FindUserByUsername(ctx context.Context, username string) (*domain.User, error)
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)
}

// AuditRepositoryFacade appends audit log records.
type AuditRepositoryFacade interface {
	SaveAuditLog(ctx context.Context, log domain.AuditLog) error
}
