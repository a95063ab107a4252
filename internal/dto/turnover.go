package dto

import (
	"time"

	"github.com/lpgdepot/depot_backend/internal/core/domain"
	portsrepo "github.com/lpgdepot/depot_backend/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// CashlessInput is one non-cash payment registered by upstream sale recording.
type CashlessInput struct {
	TransactionID string          `json:"transactionID" binding:"required"`
	MethodKey     string          `json:"methodKey" binding:"required"`
	Amount        decimal.Decimal `json:"amount"`
	Reference     string          `json:"reference"`
}

// RegisterExpectedRequest creates or refreshes the pending turnover record for
// a (business date, cashier) key with the expected amounts computed upstream.
type RegisterExpectedRequest struct {
	BusinessDate     string                     `json:"businessDate" binding:"required,dateformat"` // YYYY-MM-DD
	CashierUserID    string                     `json:"cashierUserID" binding:"required"`
	ExpectedCash     decimal.Decimal            `json:"expectedCash"`
	ExpectedByMethod map[string]decimal.Decimal `json:"expectedByMethod"`
	Cashless         []CashlessInput            `json:"cashless" binding:"dive"`
}

// RecordCashRequest records the cash an accountant counted for a turnover key.
type RecordCashRequest struct {
	BusinessDate  string          `json:"businessDate" binding:"required,dateformat"`
	CashierUserID string          `json:"cashierUserID" binding:"required"`
	CashCounted   decimal.Decimal `json:"cashCounted"`
	Note          string          `json:"note"`
}

// VerifyCashlessRequest verifies a batch of cashless transactions for a key.
type VerifyCashlessRequest struct {
	BusinessDate   string   `json:"businessDate" binding:"required,dateformat"`
	CashierUserID  string   `json:"cashierUserID" binding:"required"`
	TransactionIDs []string `json:"transactionIDs" binding:"required,min=1"`
}

// VerifyCashlessResult itemizes the outcome per transaction id.
type VerifyCashlessResult struct {
	VerifiedNow     []string `json:"verifiedNow"`
	AlreadyVerified []string `json:"alreadyVerified"`
	NotFound        []string `json:"notFound,omitempty"`
}

// SaveTurnoverRequest finalizes a turnover record once its preconditions hold.
type SaveTurnoverRequest struct {
	BusinessDate  string `json:"businessDate" binding:"required,dateformat"`
	CashierUserID string `json:"cashierUserID" binding:"required"`
}

// FlagTurnoverRequest sets or clears the advisory flagged bit.
type FlagTurnoverRequest struct {
	BusinessDate  string `json:"businessDate" binding:"required,dateformat"`
	CashierUserID string `json:"cashierUserID" binding:"required"`
	Flagged       *bool  `json:"flagged" binding:"required"`
}

// DailyCloseRequest finalizes a whole business date.
type DailyCloseRequest struct {
	BusinessDate string `json:"businessDate" binding:"required,dateformat"`
}

// ListTurnoversParams filters the reconciliation listing.
type ListTurnoversParams struct {
	From   string
	To     string
	Status string // "all" | "pending" | "verified" | "flagged"
}

// TurnoverRowResponse is one reconciliation row: expected vs counted, computed
// status and the advisory issue codes raised by the exception detector.
type TurnoverRowResponse struct {
	TurnoverID       string                     `json:"turnoverID"`
	BusinessDate     string                     `json:"businessDate"`
	CashierUserID    string                     `json:"cashierUserID"`
	ExpectedCash     decimal.Decimal            `json:"expectedCash"`
	ExpectedCashless decimal.Decimal            `json:"expectedCashless"`
	ExpectedByMethod map[string]decimal.Decimal `json:"expectedByMethod"`
	CashCounted      *decimal.Decimal           `json:"cashCounted"`
	Variance         *decimal.Decimal           `json:"variance"`
	Note             string                     `json:"note"`
	Status           string                     `json:"status"`
	Flagged          bool                       `json:"flagged"`
	RecordedAt       *time.Time                 `json:"recordedAt"`
	SavedAt          *time.Time                 `json:"savedAt"`
	PendingCashless  int                        `json:"pendingCashless"`
	VerifiedCashless int                        `json:"verifiedCashless"`
	VerifiedAmount   decimal.Decimal            `json:"verifiedAmount"`
	Issues           []string                   `json:"issues"`
}

// CashlessTransactionResponse is the read shape of one cashless transaction.
type CashlessTransactionResponse struct {
	TransactionID string          `json:"transactionID"`
	BusinessDate  string          `json:"businessDate"`
	CashierUserID string          `json:"cashierUserID"`
	MethodKey     string          `json:"methodKey"`
	Amount        decimal.Decimal `json:"amount"`
	Reference     string          `json:"reference"`
	Status        string          `json:"status"` // "pending" | "verified"
	VerifiedAt    *time.Time      `json:"verifiedAt"`
	VerifiedBy    string          `json:"verifiedBy,omitempty"`
}

// DailyCloseResponse confirms a finalized business date.
type DailyCloseResponse struct {
	BusinessDate string    `json:"businessDate"`
	FinalizedAt  time.Time `json:"finalizedAt"`
	FinalizedBy  string    `json:"finalizedBy"`
}

// ToTurnoverRowResponse builds a reconciliation row from a record and its
// cashless counters; issues come from the exception detector.
func ToTurnoverRowResponse(tc *portsrepo.TurnoverWithCounts, issues []string) TurnoverRowResponse {
	r := tc.Record
	return TurnoverRowResponse{
		TurnoverID:       r.TurnoverID,
		BusinessDate:     r.BusinessDate.Format("2006-01-02"),
		CashierUserID:    r.CashierUserID,
		ExpectedCash:     r.ExpectedCash,
		ExpectedCashless: r.ExpectedCashless,
		ExpectedByMethod: r.ExpectedByMethod,
		CashCounted:      r.CashCounted,
		Variance:         r.Variance(),
		Note:             r.Note,
		Status:           string(r.ComputeStatus(tc.PendingCashless == 0)),
		Flagged:          r.Flagged,
		RecordedAt:       r.RecordedAt,
		SavedAt:          r.SavedAt,
		PendingCashless:  tc.PendingCashless,
		VerifiedCashless: tc.VerifiedCashless,
		VerifiedAmount:   tc.VerifiedAmount,
		Issues:           issues,
	}
}

// ToCashlessTransactionResponse converts a domain cashless transaction.
func ToCashlessTransactionResponse(t *domain.CashlessTransaction) CashlessTransactionResponse {
	status := "pending"
	if t.Verified() {
		status = "verified"
	}
	return CashlessTransactionResponse{
		TransactionID: t.TransactionID,
		BusinessDate:  t.BusinessDate.Format("2006-01-02"),
		CashierUserID: t.CashierUserID,
		MethodKey:     t.MethodKey,
		Amount:        t.Amount,
		Reference:     t.Reference,
		Status:        status,
		VerifiedAt:    t.VerifiedAt,
		VerifiedBy:    t.VerifiedByUserID,
	}
}

// ToCashlessTransactionResponses converts a slice of cashless transactions.
func ToCashlessTransactionResponses(txns []domain.CashlessTransaction) []CashlessTransactionResponse {
	responses := make([]CashlessTransactionResponse, len(txns))
	for i := range txns {
		responses[i] = ToCashlessTransactionResponse(&txns[i])
	}
	return responses
}
