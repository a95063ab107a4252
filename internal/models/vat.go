package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// VATSettings represents one version of the VAT configuration. The highest
// version is the current one; older rows are kept for traceability.
type VATSettings struct {
	Version       int             `json:"version"` // Primary Key, monotonically increasing
	Registered    bool            `json:"registered"`
	Rate          decimal.Decimal `json:"rate"`
	EffectiveDate *time.Time      `json:"effectiveDate"`
	Mode          string          `json:"mode"`
	UpdatedAt     time.Time       `json:"updatedAt"`
	UpdatedBy     string          `json:"updatedBy"`
}
