package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/lpgdepot/depot_backend/internal/core/domain"
	portsrepo "github.com/lpgdepot/depot_backend/internal/core/ports/repositories"
	portssvc "github.com/lpgdepot/depot_backend/internal/core/ports/services"
	"github.com/lpgdepot/depot_backend/internal/core/services"
	"github.com/lpgdepot/depot_backend/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

// --- Test Suite Setup ---
type ExceptionServiceTestSuite struct {
	suite.Suite
	service portssvc.ExceptionSvcFacade
}

func (suite *ExceptionServiceTestSuite) SetupTest() {
	suite.service = services.NewExceptionService(
		decimal.RequireFromString("1000"),
		decimal.RequireFromString("0.3"),
	)
}

func (suite *ExceptionServiceTestSuite) row(expected, counted, note string) *portsrepo.TurnoverWithCounts {
	record := domain.TurnoverRecord{
		TurnoverID:    "t-1",
		BusinessDate:  time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
		CashierUserID: "cashier-1",
		ExpectedCash:  decimal.RequireFromString(expected),
		Note:          note,
	}
	if counted != "" {
		c := decimal.RequireFromString(counted)
		record.CashCounted = &c
	}
	return &portsrepo.TurnoverWithCounts{Record: record}
}

// --- Test Cases ---

func (suite *ExceptionServiceTestSuite) TestTurnoverIssues_CleanRow() {
	issues := suite.service.TurnoverIssues(context.Background(), suite.row("1000.00", "1000.00", ""))
	suite.Empty(issues)
}

func (suite *ExceptionServiceTestSuite) TestTurnoverIssues_NoCashRecordedYet() {
	issues := suite.service.TurnoverIssues(context.Background(), suite.row("1000.00", "", ""))
	suite.Empty(issues)
}

func (suite *ExceptionServiceTestSuite) TestTurnoverIssues_Variance() {
	issues := suite.service.TurnoverIssues(context.Background(), suite.row("1000.00", "950.00", "till shortage reported"))
	suite.Equal([]string{services.IssueVariance}, issues)
}

func (suite *ExceptionServiceTestSuite) TestTurnoverIssues_LargeVarianceAtThreshold() {
	issues := suite.service.TurnoverIssues(context.Background(), suite.row("2000.00", "1000.00", "till audit pending"))
	suite.Contains(issues, services.IssueVariance)
	suite.Contains(issues, services.IssueLargeVariance)
}

func (suite *ExceptionServiceTestSuite) TestTurnoverIssues_MissingNote() {
	for _, note := range []string{"", "  ", "ok"} {
		issues := suite.service.TurnoverIssues(context.Background(), suite.row("1000.00", "990.00", note))
		suite.Contains(issues, services.IssueMissingNote, "note %q", note)
	}
}

func (suite *ExceptionServiceTestSuite) TestTurnoverIssues_PendingCashless() {
	tc := suite.row("1000.00", "1000.00", "")
	tc.PendingCashless = 2
	issues := suite.service.TurnoverIssues(context.Background(), tc)
	suite.Equal([]string{services.IssuePendingCashless}, issues)
}

func (suite *ExceptionServiceTestSuite) TestTurnoverIssues_PendingCashlessWaitsForCount() {
	tc := suite.row("1000.00", "", "")
	tc.PendingCashless = 2
	issues := suite.service.TurnoverIssues(context.Background(), tc)
	suite.Empty(issues)
}

func (suite *ExceptionServiceTestSuite) TestCheckPayroll_NegativeNet() {
	results := suite.service.CheckPayroll(context.Background(), dto.CheckPayrollRequest{
		Rows: []dto.PayrollRowInput{{
			EmployeeID: "emp-1",
			Period:     "2024-06",
			Gross:      decimal.RequireFromString("100.00"),
			Deductions: decimal.RequireFromString("50.00"),
			Net:        decimal.RequireFromString("-10.00"),
		}},
	})

	suite.Require().Len(results, 1)
	suite.Equal("emp-1", results[0].EmployeeID)
	suite.Contains(results[0].Issues, services.IssueNegativeNet)
}

func (suite *ExceptionServiceTestSuite) TestCheckPayroll_ZeroGrossWithDeductions() {
	results := suite.service.CheckPayroll(context.Background(), dto.CheckPayrollRequest{
		Rows: []dto.PayrollRowInput{{
			EmployeeID: "emp-1",
			Gross:      decimal.Zero,
			Deductions: decimal.RequireFromString("25.00"),
			Net:        decimal.RequireFromString("-25.00"),
		}},
	})

	suite.Require().Len(results, 1)
	suite.Contains(results[0].Issues, services.IssueZeroGrossDeductions)
	suite.Contains(results[0].Issues, services.IssueDeductionsOverGross)
	suite.Contains(results[0].Issues, services.IssueNegativeNet)
}

func (suite *ExceptionServiceTestSuite) TestCheckPayroll_DeductionsExceedGross() {
	results := suite.service.CheckPayroll(context.Background(), dto.CheckPayrollRequest{
		Rows: []dto.PayrollRowInput{{
			EmployeeID: "emp-1",
			Gross:      decimal.RequireFromString("100.00"),
			Deductions: decimal.RequireFromString("120.00"),
			Net:        decimal.RequireFromString("0.00"),
		}},
	})

	suite.Require().Len(results, 1)
	suite.Equal([]string{services.IssueDeductionsOverGross}, results[0].Issues)
}

func (suite *ExceptionServiceTestSuite) TestCheckPayroll_NetSwing() {
	previous := decimal.RequireFromString("1000.00")
	results := suite.service.CheckPayroll(context.Background(), dto.CheckPayrollRequest{
		Rows: []dto.PayrollRowInput{{
			EmployeeID:  "emp-1",
			Gross:       decimal.RequireFromString("1500.00"),
			Deductions:  decimal.RequireFromString("100.00"),
			Net:         decimal.RequireFromString("1400.00"), // 40% above previous
			PreviousNet: &previous,
		}},
	})

	suite.Require().Len(results, 1)
	suite.Equal([]string{services.IssueNetSwing}, results[0].Issues)
}

func (suite *ExceptionServiceTestSuite) TestCheckPayroll_SwingAtThresholdNotRaised() {
	previous := decimal.RequireFromString("1000.00")
	results := suite.service.CheckPayroll(context.Background(), dto.CheckPayrollRequest{
		Rows: []dto.PayrollRowInput{{
			EmployeeID:  "emp-1",
			Gross:       decimal.RequireFromString("1400.00"),
			Deductions:  decimal.RequireFromString("100.00"),
			Net:         decimal.RequireFromString("1300.00"), // exactly 30%
			PreviousNet: &previous,
		}},
	})

	suite.Empty(results)
}

func (suite *ExceptionServiceTestSuite) TestCheckPayroll_ZeroPreviousNetSkipsSwing() {
	previous := decimal.Zero
	results := suite.service.CheckPayroll(context.Background(), dto.CheckPayrollRequest{
		Rows: []dto.PayrollRowInput{{
			EmployeeID:  "emp-1",
			Gross:       decimal.RequireFromString("1000.00"),
			Deductions:  decimal.Zero,
			Net:         decimal.RequireFromString("1000.00"),
			PreviousNet: &previous,
		}},
	})

	suite.Empty(results)
}

func (suite *ExceptionServiceTestSuite) TestCheckPayroll_CleanRowsOmitted() {
	previous := decimal.RequireFromString("900.00")
	results := suite.service.CheckPayroll(context.Background(), dto.CheckPayrollRequest{
		Rows: []dto.PayrollRowInput{
			{
				EmployeeID:  "emp-clean",
				Gross:       decimal.RequireFromString("1000.00"),
				Deductions:  decimal.RequireFromString("100.00"),
				Net:         decimal.RequireFromString("900.00"),
				PreviousNet: &previous,
			},
			{
				EmployeeID: "emp-bad",
				Gross:      decimal.RequireFromString("100.00"),
				Deductions: decimal.RequireFromString("200.00"),
				Net:        decimal.RequireFromString("-100.00"),
			},
		},
	})

	suite.Require().Len(results, 1)
	suite.Equal("emp-bad", results[0].EmployeeID)
}

func TestExceptionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ExceptionServiceTestSuite))
}
