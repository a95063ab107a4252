package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lpgdepot/depot_backend/internal/apperrors"
	"github.com/lpgdepot/depot_backend/internal/core/domain"
	portsrepo "github.com/lpgdepot/depot_backend/internal/core/ports/repositories"
	"github.com/lpgdepot/depot_backend/internal/models"
	"github.com/lpgdepot/depot_backend/internal/utils/mapping"
)

type PgxVATSettingsRepository struct {
	pool *pgxpool.Pool
}

// newPgxVATSettingsRepository creates a new repository for VAT settings.
func newPgxVATSettingsRepository(pool *pgxpool.Pool) portsrepo.VATSettingsRepositoryFacade {
	return &PgxVATSettingsRepository{pool: pool}
}

var _ portsrepo.VATSettingsRepositoryFacade = (*PgxVATSettingsRepository)(nil)

// GetVATSettings returns the current (highest-version) settings row.
func (r *PgxVATSettingsRepository) GetVATSettings(ctx context.Context) (*domain.VATSettings, error) {
	query := `
		SELECT version, registered, rate, effective_date, mode, updated_at, updated_by
		FROM vat_settings
		ORDER BY version DESC
		LIMIT 1;
	`
	var m models.VATSettings
	err := r.pool.QueryRow(ctx, query).Scan(
		&m.Version,
		&m.Registered,
		&m.Rate,
		&m.EffectiveDate,
		&m.Mode,
		&m.UpdatedAt,
		&m.UpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("vat settings: %w", apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load vat settings: %w", err)
	}
	settings := mapping.ToDomainVATSettings(m)
	return &settings, nil
}

// UpdateVATSettings inserts a new settings version. Old versions are kept so
// stored breakdowns stay traceable to the settings they were computed under.
func (r *PgxVATSettingsRepository) UpdateVATSettings(ctx context.Context, settings domain.VATSettings) (*domain.VATSettings, error) {
	m := mapping.ToModelVATSettings(settings)
	query := `
		INSERT INTO vat_settings (version, registered, rate, effective_date, mode, updated_at, updated_by)
		SELECT COALESCE(MAX(version), 0) + 1, $1, $2, $3, $4, $5, $6
		FROM vat_settings
		RETURNING version, registered, rate, effective_date, mode, updated_at, updated_by;
	`
	var saved models.VATSettings
	err := r.pool.QueryRow(ctx, query,
		m.Registered,
		m.Rate,
		m.EffectiveDate,
		m.Mode,
		m.UpdatedAt,
		m.UpdatedBy,
	).Scan(
		&saved.Version,
		&saved.Registered,
		&saved.Rate,
		&saved.EffectiveDate,
		&saved.Mode,
		&saved.UpdatedAt,
		&saved.UpdatedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update vat settings: %w", err)
	}
	result := mapping.ToDomainVATSettings(saved)
	return &result, nil
}
