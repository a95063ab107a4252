package models

// Account represents one chart-of-accounts row.
type Account struct {
	Code        string `json:"code"` // Primary Key
	Name        string `json:"name"`
	AccountType string `json:"accountType"` // ASSET, LIABILITY, EQUITY, REVENUE, EXPENSE
}
