package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry represents the header row of one balanced posting batch.
// Unique on (ReferenceType, ReferenceID).
type LedgerEntry struct {
	EntryID       string    `json:"entryID"` // Primary Key (UUID)
	ReferenceType string    `json:"referenceType"`
	ReferenceID   string    `json:"referenceID"`
	EntryDate     time.Time `json:"entryDate"`
	Memo          string    `json:"memo"`
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"`
}

// LedgerLine represents one immutable debit or credit row.
type LedgerLine struct {
	LineID      string          `json:"lineID"` // Primary Key (UUID)
	EntryID     string          `json:"entryID"`
	LineSeq     int             `json:"lineSeq"`
	AccountCode string          `json:"accountCode"`
	Description string          `json:"description"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Cleared     bool            `json:"cleared"`
	BankRef     string          `json:"bankRef"`

	// Joined from the entry and chart of accounts on reads.
	EntryDate     time.Time `json:"entryDate"`
	ReferenceType string    `json:"referenceType"`
	ReferenceID   string    `json:"referenceID"`
	AccountName   string    `json:"accountName"`
	CreatedAt     time.Time `json:"createdAt"`
	PostedBy      string    `json:"postedBy"`
}
