package dto

import (
	"time"

	"github.com/lpgdepot/depot_backend/internal/core/domain"
	portsrepo "github.com/lpgdepot/depot_backend/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// PostLineRequest is one debit or credit line of a posting request.
// Exactly one of debit/credit must be positive, the other zero.
type PostLineRequest struct {
	AccountCode string          `json:"accountCode" binding:"required"`
	Description string          `json:"description"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	BankRef     string          `json:"bankRef"`
}

// PostEntryRequest posts one balanced batch of ledger lines for a business event.
type PostEntryRequest struct {
	ReferenceType string            `json:"referenceType" binding:"required"`
	ReferenceID   string            `json:"referenceID" binding:"required"`
	EntryDate     string            `json:"entryDate" binding:"required,dateformat"` // YYYY-MM-DD
	Memo          string            `json:"memo"`
	Lines         []PostLineRequest `json:"lines" binding:"required,min=2,dive"`
}

// PostSaleRequest posts the composed ledger entries for a completed sale.
// Amounts come from upstream sale recording; gross = net + vat.
type PostSaleRequest struct {
	SaleID           string          `json:"saleID" binding:"required"`
	SaleNumber       string          `json:"saleNumber"`
	SaleDate         string          `json:"saleDate" binding:"required,dateformat"` // YYYY-MM-DD
	PaymentMethodKey string          `json:"paymentMethodKey" binding:"required"`
	GrossAmount      decimal.Decimal `json:"grossAmount"`
	NetAmount        decimal.Decimal `json:"netAmount"`
	VATAmount        decimal.Decimal `json:"vatAmount"`
	COGSAmount       decimal.Decimal `json:"cogsAmount"`
}

// PostEntryResponse returns the id of the persisted batch.
type PostEntryResponse struct {
	EntryID       string `json:"entryID"`
	ReferenceType string `json:"referenceType"`
	ReferenceID   string `json:"referenceID"`
}

// LedgerLineResponse is the read shape of one ledger line.
type LedgerLineResponse struct {
	LineID        string          `json:"lineID"`
	PostedAt      string          `json:"postedAt"` // business date, YYYY-MM-DD
	RecordedAt    time.Time       `json:"recordedAt"`
	ReferenceType string          `json:"referenceType"`
	ReferenceID   string          `json:"referenceID"`
	AccountCode   string          `json:"accountCode"`
	AccountName   string          `json:"accountName"`
	Description   string          `json:"description"`
	Debit         decimal.Decimal `json:"debit"`
	Credit        decimal.Decimal `json:"credit"`
	Cleared       bool            `json:"cleared"`
	BankRef       string          `json:"bankRef"`
	PostedBy      string          `json:"postedBy"`
}

// LedgerTotalsResponse aggregates a line set.
type LedgerTotalsResponse struct {
	Debit  decimal.Decimal `json:"debit"`
	Credit decimal.Decimal `json:"credit"`
	Net    decimal.Decimal `json:"net"`
}

// ListLedgerParams carries the ledger listing filters from the query string.
type ListLedgerParams struct {
	Query         string
	ReferenceType string
	AccountCode   string
	From          string
	To            string
	Cleared       string // "all" | "cleared" | "uncleared"
	BankRef       string
	Sort          string // "posted_at_desc" (default) | "posted_at_asc"
	Limit         int
	NextToken     *string
}

// ListLedgerResponse is one page of ledger lines plus filter-wide totals.
type ListLedgerResponse struct {
	Lines     []LedgerLineResponse `json:"lines"`
	Totals    LedgerTotalsResponse `json:"totals"`
	NextToken *string              `json:"nextToken,omitempty"`
}

// ResolveReferenceResponse is the audit drill-down for one reference id.
// Balanced is recomputed from the returned lines, never read from a cache.
type ResolveReferenceResponse struct {
	ReferenceType string               `json:"referenceType"`
	ReferenceID   string               `json:"referenceID"`
	Lines         []LedgerLineResponse `json:"lines"`
	Totals        LedgerTotalsResponse `json:"totals"`
	Balanced      bool                 `json:"balanced"`
}

// AccountResponse is one chart-of-accounts entry.
type AccountResponse struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	AccountType string `json:"accountType"`
	NormalSide  string `json:"normalSide"`
}

// RunningBalanceResponse is the running balance of an account at a point in time.
type RunningBalanceResponse struct {
	AccountCode string          `json:"accountCode"`
	AsOf        string          `json:"asOf"`
	Balance     decimal.Decimal `json:"balance"`
}

// ToLedgerLineResponse converts a domain line to its read shape.
func ToLedgerLineResponse(l *domain.LedgerLine) LedgerLineResponse {
	return LedgerLineResponse{
		LineID:        l.LineID,
		PostedAt:      l.EntryDate.Format("2006-01-02"),
		RecordedAt:    l.CreatedAt,
		ReferenceType: string(l.ReferenceType),
		ReferenceID:   l.ReferenceID,
		AccountCode:   l.AccountCode,
		AccountName:   l.AccountName,
		Description:   l.Description,
		Debit:         l.Debit,
		Credit:        l.Credit,
		Cleared:       l.Cleared,
		BankRef:       l.BankRef,
		PostedBy:      l.PostedBy,
	}
}

// ToLedgerLineResponses converts a slice of domain lines.
func ToLedgerLineResponses(lines []domain.LedgerLine) []LedgerLineResponse {
	responses := make([]LedgerLineResponse, len(lines))
	for i := range lines {
		responses[i] = ToLedgerLineResponse(&lines[i])
	}
	return responses
}

// ToLedgerTotalsResponse converts repository totals.
func ToLedgerTotalsResponse(t portsrepo.LedgerTotals) LedgerTotalsResponse {
	return LedgerTotalsResponse{Debit: t.Debit, Credit: t.Credit, Net: t.Net()}
}

// ToAccountResponse converts a chart-of-accounts entry.
func ToAccountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		Code:        a.Code,
		Name:        a.Name,
		AccountType: string(a.AccountType),
		NormalSide:  string(a.NormalSide()),
	}
}
