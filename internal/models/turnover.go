package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TurnoverRecord represents one cashier/business-date reconciliation row.
// Unique on (BusinessDate, CashierUserID).
type TurnoverRecord struct {
	TurnoverID       string                     `json:"turnoverID"` // Primary Key (UUID)
	BusinessDate     time.Time                  `json:"businessDate"`
	CashierUserID    string                     `json:"cashierUserID"`
	AccountantUserID string                     `json:"accountantUserID"`
	ExpectedCash     decimal.Decimal            `json:"expectedCash"`
	ExpectedCashless decimal.Decimal            `json:"expectedCashless"`
	ExpectedByMethod map[string]decimal.Decimal `json:"expectedByMethod"` // stored as JSONB
	CashCounted      *decimal.Decimal           `json:"cashCounted"`
	Note             string                     `json:"note"`
	Flagged          bool                       `json:"flagged"`
	RecordedAt       *time.Time                 `json:"recordedAt"`
	SavedAt          *time.Time                 `json:"savedAt"`
	LastPostedCash   decimal.Decimal            `json:"lastPostedCash"`
	PostedSeq        int                        `json:"postedSeq"`
	AuditFields
}

// CashlessTransaction represents one non-cash payment row.
type CashlessTransaction struct {
	TransactionID    string          `json:"transactionID"` // Primary Key, supplied upstream
	BusinessDate     time.Time       `json:"businessDate"`
	CashierUserID    string          `json:"cashierUserID"`
	MethodKey        string          `json:"methodKey"`
	Amount           decimal.Decimal `json:"amount"`
	Reference        string          `json:"reference"`
	VerifiedAt       *time.Time      `json:"verifiedAt"`
	VerifiedByUserID string          `json:"verifiedByUserID"`
	CreatedAt        time.Time       `json:"createdAt"`
}

// DailyClose represents a finalized business date.
type DailyClose struct {
	BusinessDate      time.Time `json:"businessDate"` // Primary Key
	FinalizedByUserID string    `json:"finalizedByUserID"`
	FinalizedAt       time.Time `json:"finalizedAt"`
}
