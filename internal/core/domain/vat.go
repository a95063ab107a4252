package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// VATTreatment classifies how VAT applies to a sale.
type VATTreatment string

const (
	TreatmentVatable   VATTreatment = "vatable"
	TreatmentZeroRated VATTreatment = "zero_rated"
	TreatmentExempt    VATTreatment = "exempt"
)

// KnownVATTreatment reports whether t is a supported treatment code.
func KnownVATTreatment(t VATTreatment) bool {
	switch t {
	case TreatmentVatable, TreatmentZeroRated, TreatmentExempt:
		return true
	}
	return false
}

// VATSettings is the business-wide VAT configuration. Every update bumps
// Version so each computation can record which settings it used.
type VATSettings struct {
	Version       int             `json:"version"`
	Registered    bool            `json:"registered"`
	Rate          decimal.Decimal `json:"rate"` // e.g. 0.12
	EffectiveDate *time.Time      `json:"effectiveDate"`
	Mode          string          `json:"mode"` // only "inclusive" is supported
	UpdatedAt     time.Time       `json:"updatedAt"`
	UpdatedBy     string          `json:"updatedBy"`
}

// VATModeInclusive is the only supported VAT mode: prices already contain VAT
// and the net/VAT split is back-calculated.
const VATModeInclusive = "inclusive"

// AppliesOn reports whether VAT applies to a sale dated on saleDate under
// these settings.
func (s VATSettings) AppliesOn(saleDate time.Time) bool {
	if !s.Registered || s.Rate.IsZero() {
		return false
	}
	if s.EffectiveDate != nil && saleDate.Before(*s.EffectiveDate) {
		return false
	}
	return true
}

// VATBreakdown is the result of decomposing a gross amount.
// NetAmount + VATAmount always equals GrossAmount exactly.
type VATBreakdown struct {
	GrossAmount     decimal.Decimal `json:"grossAmount"`
	NetAmount       decimal.Decimal `json:"netAmount"`
	VATAmount       decimal.Decimal `json:"vatAmount"`
	RateUsed        decimal.Decimal `json:"rateUsed"`
	Treatment       VATTreatment    `json:"treatment"`
	SettingsVersion int             `json:"settingsVersion"` // 0 when an explicit rate was supplied
}
