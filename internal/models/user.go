package models

// User represents a staff user account.
type User struct {
	UserID       string `json:"userID"` // Primary Key (UUID)
	Username     string `json:"username"`
	Name         string `json:"name"`
	Role         string `json:"role"` // ADMIN, ACCOUNTANT, CASHIER
	PasswordHash string `json:"-"`
	AuditFields
}
