package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReferenceType names the kind of business event a ledger entry was posted for.
type ReferenceType string

const (
	ReferenceSale       ReferenceType = "sale"
	ReferenceRemittance ReferenceType = "remittance"
	ReferenceAdjustment ReferenceType = "adjustment"
	ReferenceExpense    ReferenceType = "expense"
)

// KnownReferenceType reports whether t is one of the supported reference types.
func KnownReferenceType(t ReferenceType) bool {
	switch t {
	case ReferenceSale, ReferenceRemittance, ReferenceAdjustment, ReferenceExpense:
		return true
	}
	return false
}

// LedgerEntry is the header of one balanced posting batch. At most one entry
// may exist per (ReferenceType, ReferenceID); re-posting a reference is rejected.
type LedgerEntry struct {
	EntryID       string        `json:"entryID"`
	ReferenceType ReferenceType `json:"referenceType"`
	ReferenceID   string        `json:"referenceID"`
	EntryDate     time.Time     `json:"entryDate"` // business date the event occurred
	Memo          string        `json:"memo"`
	CreatedAt     time.Time     `json:"createdAt"` // system timestamp
	CreatedBy     string        `json:"createdBy"`
}

// LedgerLine is one debit or credit against an account. Lines are immutable
// once posted; corrections are posted as new offsetting lines under a new
// adjustment reference.
type LedgerLine struct {
	LineID      string          `json:"lineID"`
	EntryID     string          `json:"entryID"`
	LineSeq     int             `json:"lineSeq"` // position within the batch, for deterministic ordering
	AccountCode string          `json:"accountCode"`
	Description string          `json:"description"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Cleared     bool            `json:"cleared"` // bank reconciliation state, bank-account lines only
	BankRef     string          `json:"bankRef"`

	// Denormalized from the entry and chart of accounts for read paths.
	EntryDate     time.Time     `json:"entryDate"`
	ReferenceType ReferenceType `json:"referenceType"`
	ReferenceID   string        `json:"referenceID"`
	AccountName   string        `json:"accountName"`
	CreatedAt     time.Time     `json:"createdAt"`
	PostedBy      string        `json:"postedBy"`
}

// LedgerLineInput is one line of a posting request, before ids are assigned.
type LedgerLineInput struct {
	AccountCode string          `json:"accountCode"`
	Description string          `json:"description"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	BankRef     string          `json:"bankRef"`
}
