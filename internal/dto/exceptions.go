package dto

import "github.com/shopspring/decimal"

// PayrollRowInput is one payroll snapshot row submitted for exception checks.
// PreviousNet is the employee's net pay from the prior period, when known.
type PayrollRowInput struct {
	EmployeeID  string           `json:"employeeID" binding:"required"`
	Period      string           `json:"period"`
	Gross       decimal.Decimal  `json:"gross"`
	Deductions  decimal.Decimal  `json:"deductions"`
	Net         decimal.Decimal  `json:"net"`
	PreviousNet *decimal.Decimal `json:"previousNet"`
}

// CheckPayrollRequest submits a batch of payroll rows for advisory review.
type CheckPayrollRequest struct {
	Rows []PayrollRowInput `json:"rows" binding:"required,min=1,dive"`
}

// PayrollExceptionResponse lists the issue codes raised for one row.
type PayrollExceptionResponse struct {
	EmployeeID string   `json:"employeeID"`
	Period     string   `json:"period"`
	Issues     []string `json:"issues"`
}
