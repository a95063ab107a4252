package dto

import (
	"time"

	"github.com/lpgdepot/depot_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// VATSettingsResponse is the read shape of the VAT configuration.
type VATSettingsResponse struct {
	Version       int             `json:"version"`
	Registered    bool            `json:"registered"`
	Rate          decimal.Decimal `json:"rate"`
	EffectiveDate *string         `json:"effectiveDate"`
	Mode          string          `json:"mode"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// UpdateVATSettingsRequest updates the singleton VAT configuration.
type UpdateVATSettingsRequest struct {
	Registered    *bool           `json:"registered" binding:"required"`
	Rate          decimal.Decimal `json:"rate"`
	EffectiveDate string          `json:"effectiveDate" binding:"omitempty,dateformat"` // YYYY-MM-DD, required when registered
	Mode          string          `json:"mode" binding:"required,oneof=inclusive"`
}

// DecomposeRequest asks for the net/VAT split of a gross amount. When Rate is
// nil the current settings and SaleDate decide the rate.
type DecomposeRequest struct {
	GrossAmount decimal.Decimal  `json:"grossAmount"`
	Rate        *decimal.Decimal `json:"rate"`
	SaleDate    string           `json:"saleDate" binding:"omitempty,dateformat"` // YYYY-MM-DD, defaults to today
	Treatment   string           `json:"treatment"`                               // defaults to "vatable"
}

// VATBreakdownResponse echoes the decomposition and the settings version used.
type VATBreakdownResponse struct {
	GrossAmount     decimal.Decimal `json:"grossAmount"`
	NetAmount       decimal.Decimal `json:"netAmount"`
	VATAmount       decimal.Decimal `json:"vatAmount"`
	RateUsed        decimal.Decimal `json:"rateUsed"`
	Treatment       string          `json:"treatment"`
	SettingsVersion int             `json:"settingsVersion"`
}

// ToVATSettingsResponse converts domain settings.
func ToVATSettingsResponse(s *domain.VATSettings) VATSettingsResponse {
	var effective *string
	if s.EffectiveDate != nil {
		d := s.EffectiveDate.Format("2006-01-02")
		effective = &d
	}
	return VATSettingsResponse{
		Version:       s.Version,
		Registered:    s.Registered,
		Rate:          s.Rate,
		EffectiveDate: effective,
		Mode:          s.Mode,
		UpdatedAt:     s.UpdatedAt,
	}
}

// ToVATBreakdownResponse converts a domain breakdown.
func ToVATBreakdownResponse(b domain.VATBreakdown) VATBreakdownResponse {
	return VATBreakdownResponse{
		GrossAmount:     b.GrossAmount,
		NetAmount:       b.NetAmount,
		VATAmount:       b.VATAmount,
		RateUsed:        b.RateUsed,
		Treatment:       string(b.Treatment),
		SettingsVersion: b.SettingsVersion,
	}
}
