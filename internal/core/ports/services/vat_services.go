package services

import (
	"context"
	"time"

	"github.com/lpgdepot/depot_backend/internal/core/domain"
	"github.com/lpgdepot/depot_backend/internal/dto"
	"github.com/shopspring/decimal"
)

// VATCalculatorSvc decomposes VAT-inclusive amounts.
type VATCalculatorSvc interface {
	// Decompose splits a gross amount per the request's rate/date/treatment.
	Decompose(ctx context.Context, req dto.DecomposeRequest) (*domain.VATBreakdown, error)

	// DecomposeAmount splits a gross amount using the current settings for the
	// given sale date and treatment.
	DecomposeAmount(ctx context.Context, gross decimal.Decimal, saleDate time.Time, treatment domain.VATTreatment) (*domain.VATBreakdown, error)
}

// VATSettingsSvc reads and updates the VAT configuration.
type VATSettingsSvc interface {
	GetSettings(ctx context.Context) (*domain.VATSettings, error)
	UpdateSettings(ctx context.Context, req dto.UpdateVATSettingsRequest, byUserID string) (*domain.VATSettings, error)
}

// VATSvcFacade combines all VAT-related service interfaces
type VATSvcFacade interface {
	VATCalculatorSvc
	VATSettingsSvc
}
