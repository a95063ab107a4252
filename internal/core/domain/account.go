package domain

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// BalanceSide is the side on which an account's balance normally grows.
type BalanceSide string

const (
	DebitNormal  BalanceSide = "DEBIT"
	CreditNormal BalanceSide = "CREDIT"
)

// Account is one entry of the chart of accounts. Immutable reference data:
// accounts are seeded by migration and never edited through the API.
type Account struct {
	Code        string      `json:"code"` // e.g. "1010"
	Name        string      `json:"name"`
	AccountType AccountType `json:"accountType"`
}

// NormalSide returns the side a positive balance sits on for this account type.
func (a Account) NormalSide() BalanceSide {
	switch a.AccountType {
	case Liability, Equity, Revenue:
		return CreditNormal
	default:
		return DebitNormal
	}
}

// Default chart of accounts codes used by the posting helpers.
const (
	AccountCashOnHand         = "1010"
	AccountCashInBank         = "1020"
	AccountInventory          = "1200"
	AccountTurnoverReceivable = "2010"
	AccountVATPayable         = "2030"
	AccountSalesRevenue       = "4010"
	AccountCOGS               = "5000"
)
