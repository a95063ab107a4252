package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lpgdepot/depot_backend/internal/apperrors"
	"github.com/lpgdepot/depot_backend/internal/core/domain"
	portsrepo "github.com/lpgdepot/depot_backend/internal/core/ports/repositories"
	portssvc "github.com/lpgdepot/depot_backend/internal/core/ports/services"
	"github.com/lpgdepot/depot_backend/internal/dto"
	"github.com/shopspring/decimal"
)

var (
	ErrNegativeGross    = errors.New("gross amount must not be negative")
	ErrInvalidRate      = errors.New("vat rate must be at least 0 and below 1")
	ErrUnknownTreatment = errors.New("unknown vat treatment")
	ErrUnsupportedMode  = errors.New("only inclusive vat mode is supported")
)

// vatService decomposes VAT-inclusive amounts and manages the VAT settings.
type vatService struct {
	BaseService
	vatRepo   portsrepo.VATSettingsRepositoryFacade
	auditRepo portsrepo.AuditRepositoryFacade
}

// NewVATService creates a new VATService.
func NewVATService(vatRepo portsrepo.VATSettingsRepositoryFacade, auditRepo portsrepo.AuditRepositoryFacade) portssvc.VATSvcFacade {
	return &vatService{vatRepo: vatRepo, auditRepo: auditRepo}
}

var _ portssvc.VATSvcFacade = (*vatService)(nil)

var one = decimal.NewFromInt(1)

// splitInclusive back-calculates the net from a VAT-inclusive gross.
// Net is rounded half-up to 2 decimal places and the remainder goes to VAT,
// so net + vat reproduces gross exactly.
func splitInclusive(gross, rate decimal.Decimal) (net, vat decimal.Decimal) {
	net = gross.Div(one.Add(rate)).Round(2)
	vat = gross.Sub(net)
	return net, vat
}

func validRate(rate decimal.Decimal) bool {
	return !rate.IsNegative() && rate.LessThan(one)
}

// Decompose splits a gross amount per the request's rate/date/treatment.
func (s *vatService) Decompose(ctx context.Context, req dto.DecomposeRequest) (*domain.VATBreakdown, error) {
	if req.GrossAmount.IsNegative() {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrNegativeGross)
	}

	treatment := domain.VATTreatment(req.Treatment)
	if treatment == "" {
		treatment = domain.TreatmentVatable
	}
	if !domain.KnownVATTreatment(treatment) {
		return nil, fmt.Errorf("%w: %s %q", apperrors.ErrValidation, ErrUnknownTreatment, req.Treatment)
	}

	saleDate := time.Now()
	if req.SaleDate != "" {
		var err error
		saleDate, err = parseBusinessDate("saleDate", req.SaleDate)
		if err != nil {
			return nil, err
		}
	}

	if req.Rate != nil {
		if !validRate(*req.Rate) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrInvalidRate)
		}
		b := breakdownFor(req.GrossAmount, *req.Rate, treatment, 0)
		return &b, nil
	}

	return s.DecomposeAmount(ctx, req.GrossAmount, saleDate, treatment)
}

// DecomposeAmount splits a gross amount using the current settings for the
// given sale date and treatment.
func (s *vatService) DecomposeAmount(ctx context.Context, gross decimal.Decimal, saleDate time.Time, treatment domain.VATTreatment) (*domain.VATBreakdown, error) {
	if gross.IsNegative() {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrNegativeGross)
	}
	if !domain.KnownVATTreatment(treatment) {
		return nil, fmt.Errorf("%w: %s %q", apperrors.ErrValidation, ErrUnknownTreatment, treatment)
	}

	settings, err := s.vatRepo.GetVATSettings(ctx)
	if err != nil {
		s.LogError(ctx, err, "failed to load vat settings")
		return nil, fmt.Errorf("failed to load vat settings: %w", err)
	}

	rate := decimal.Zero
	if treatment == domain.TreatmentVatable && settings.AppliesOn(saleDate) {
		rate = settings.Rate
	}
	b := breakdownFor(gross, rate, treatment, settings.Version)
	return &b, nil
}

// breakdownFor applies the inclusive split. A zero rate short-circuits to a
// pure-net breakdown, which also covers zero-rated and exempt treatments.
func breakdownFor(gross, rate decimal.Decimal, treatment domain.VATTreatment, settingsVersion int) domain.VATBreakdown {
	net, vat := gross, decimal.Zero
	if !rate.IsZero() {
		net, vat = splitInclusive(gross, rate)
	}
	return domain.VATBreakdown{
		GrossAmount:     gross,
		NetAmount:       net,
		VATAmount:       vat,
		RateUsed:        rate,
		Treatment:       treatment,
		SettingsVersion: settingsVersion,
	}
}

// GetSettings returns the current VAT configuration.
func (s *vatService) GetSettings(ctx context.Context) (*domain.VATSettings, error) {
	settings, err := s.vatRepo.GetVATSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load vat settings: %w", err)
	}
	return settings, nil
}

// UpdateSettings persists new VAT settings and bumps the version. Existing
// breakdowns keep the version they were computed under.
func (s *vatService) UpdateSettings(ctx context.Context, req dto.UpdateVATSettingsRequest, byUserID string) (*domain.VATSettings, error) {
	if req.Mode != domain.VATModeInclusive {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrUnsupportedMode)
	}
	if !validRate(req.Rate) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrInvalidRate)
	}

	registered := req.Registered != nil && *req.Registered

	var effective *time.Time
	if req.EffectiveDate != "" {
		d, err := parseBusinessDate("effectiveDate", req.EffectiveDate)
		if err != nil {
			return nil, err
		}
		effective = &d
	} else if registered {
		return nil, fmt.Errorf("%w: effectiveDate is required when registered", apperrors.ErrValidation)
	}

	now := time.Now()
	updated, err := s.vatRepo.UpdateVATSettings(ctx, domain.VATSettings{
		Registered:    registered,
		Rate:          req.Rate,
		EffectiveDate: effective,
		Mode:          req.Mode,
		UpdatedAt:     now,
		UpdatedBy:     byUserID,
	})
	if err != nil {
		s.LogError(ctx, err, "failed to update vat settings")
		return nil, fmt.Errorf("failed to update vat settings: %w", err)
	}

	if err := s.auditRepo.SaveAuditLog(ctx, domain.AuditLog{
		ActorUserID: byUserID,
		Action:      "vat_settings.update",
		EntityType:  "vat_settings",
		EntityID:    fmt.Sprintf("v%d", updated.Version),
		After: map[string]string{
			"registered": fmt.Sprintf("%t", updated.Registered),
			"rate":       updated.Rate.String(),
			"mode":       updated.Mode,
		},
		CreatedAt: now,
	}); err != nil {
		s.LogWarn(ctx, "failed to write audit log for vat settings update", slog.String("error", err.Error()))
	}

	s.LogInfo(ctx, "vat settings updated", slog.Int("version", updated.Version), slog.String("by", byUserID))
	return updated, nil
}
