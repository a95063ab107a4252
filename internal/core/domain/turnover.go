package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TurnoverStatus is the reconciliation state of a cashier's business day.
// It is computed from the record's inputs on read, never stored.
type TurnoverStatus string

const (
	TurnoverPending  TurnoverStatus = "pending"
	TurnoverVerified TurnoverStatus = "verified"
	TurnoverFlagged  TurnoverStatus = "flagged"
)

// TurnoverKey uniquely identifies a turnover record.
type TurnoverKey struct {
	BusinessDate  time.Time `json:"businessDate"`
	CashierUserID string    `json:"cashierUserID"`
}

// TurnoverRecord reconciles a cashier's expected takings against counted cash.
// Expected amounts are supplied by upstream sales aggregation and are read-only
// here; the engine compares, it never recomputes them.
type TurnoverRecord struct {
	TurnoverID       string                     `json:"turnoverID"`
	BusinessDate     time.Time                  `json:"businessDate"`
	CashierUserID    string                     `json:"cashierUserID"`
	AccountantUserID string                     `json:"accountantUserID"`
	ExpectedCash     decimal.Decimal            `json:"expectedCash"`
	ExpectedCashless decimal.Decimal            `json:"expectedCashless"`
	ExpectedByMethod map[string]decimal.Decimal `json:"expectedByMethod"`
	CashCounted      *decimal.Decimal           `json:"cashCounted"` // nil until recorded
	Note             string                     `json:"note"`
	Flagged          bool                       `json:"flagged"` // advisory bit, set manually, blocks nothing
	RecordedAt       *time.Time                 `json:"recordedAt"`
	SavedAt          *time.Time                 `json:"savedAt"`
	// LastPostedCash is the counted-cash total already posted to the ledger for
	// this record. A later save posts only the delta, under a new adjustment
	// reference, so history is never rewritten.
	LastPostedCash decimal.Decimal `json:"lastPostedCash"`
	PostedSeq      int             `json:"postedSeq"` // number of ledger postings made for this record
	AuditFields
}

// Variance returns counted minus expected cash, or nil when cash is not yet recorded.
func (r TurnoverRecord) Variance() *decimal.Decimal {
	if r.CashCounted == nil {
		return nil
	}
	v := r.CashCounted.Sub(r.ExpectedCash)
	return &v
}

// ComputeStatus derives the status from the record's inputs. The flagged bit
// overrides the pending/verified computation for display purposes only.
func (r TurnoverRecord) ComputeStatus(allCashlessVerified bool) TurnoverStatus {
	if r.Flagged {
		return TurnoverFlagged
	}
	if r.CashCounted != nil && allCashlessVerified && r.SavedAt != nil {
		return TurnoverVerified
	}
	return TurnoverPending
}

// CashlessTransaction is one non-cash payment awaiting accountant verification.
// Verification is monotonic: VerifiedAt is set exactly once and never cleared.
type CashlessTransaction struct {
	TransactionID    string          `json:"transactionID"`
	BusinessDate     time.Time       `json:"businessDate"`
	CashierUserID    string          `json:"cashierUserID"`
	MethodKey        string          `json:"methodKey"` // e.g. "gcash", "card", "bank_transfer"
	Amount           decimal.Decimal `json:"amount"`
	Reference        string          `json:"reference"` // external reference number from the sale
	VerifiedAt       *time.Time      `json:"verifiedAt"`
	VerifiedByUserID string          `json:"verifiedByUserID"`
	CreatedAt        time.Time       `json:"createdAt"`
}

// Verified reports whether the transaction has been verified.
func (t CashlessTransaction) Verified() bool {
	return t.VerifiedAt != nil
}

// DailyClose finalizes a business date: once present, no accounting mutation
// for that date is accepted.
type DailyClose struct {
	BusinessDate      time.Time `json:"businessDate"`
	FinalizedByUserID string    `json:"finalizedByUserID"`
	FinalizedAt       time.Time `json:"finalizedAt"`
}
