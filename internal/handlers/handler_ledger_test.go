package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lpgdepot/depot_backend/internal/apperrors"
	"github.com/lpgdepot/depot_backend/internal/core/domain"
	portssvc "github.com/lpgdepot/depot_backend/internal/core/ports/services"
	"github.com/lpgdepot/depot_backend/internal/dto"
	"github.com/lpgdepot/depot_backend/internal/handlers"
	"github.com/lpgdepot/depot_backend/internal/platform/config"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// Exercises the ledger and turnover routes through the full router, so the
// auth middleware and the error-to-status mapping are part of what is tested.
type LedgerHandlerTestSuite struct {
	suite.Suite
	router              *gin.Engine
	mockLedgerService   *MockLedgerService
	mockTurnoverService *MockTurnoverService
	mockVATService      *MockVATService
	mockExceptionSvc    *MockExceptionService
	mockUserService     *MockUserService
	mockTokenService    *MockTokenService
	jwtSecret           string
}

func (suite *LedgerHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"

	suite.mockLedgerService = new(MockLedgerService)
	suite.mockTurnoverService = new(MockTurnoverService)
	suite.mockVATService = new(MockVATService)
	suite.mockExceptionSvc = new(MockExceptionService)
	suite.mockUserService = new(MockUserService)
	suite.mockTokenService = new(MockTokenService)

	cfg := &config.Config{
		JWTSecret:    suite.jwtSecret,
		IsProduction: true, // skip swagger routes
	}
	handlers.RegisterRoutes(suite.router, cfg, &portssvc.ServiceContainer{
		Ledger:    suite.mockLedgerService,
		Turnover:  suite.mockTurnoverService,
		VAT:       suite.mockVATService,
		Exception: suite.mockExceptionSvc,
		User:      suite.mockUserService,
		Token:     suite.mockTokenService,
	})
}

func (suite *LedgerHandlerTestSuite) generateTestToken(userID string) string {
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

func (suite *LedgerHandlerTestSuite) doJSON(method, url, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		suite.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req, _ := http.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *LedgerHandlerTestSuite) entryBody() map[string]any {
	return map[string]any{
		"referenceType": "expense",
		"referenceID":   "exp-42",
		"entryDate":     "2024-06-15",
		"memo":          "Cylinder deposit refund",
		"lines": []map[string]any{
			{"accountCode": "2050", "description": "Deposit refund", "debit": "500.00"},
			{"accountCode": "1010", "description": "Deposit refund", "credit": "500.00"},
		},
	}
}

// --- Test Cases ---

func (suite *LedgerHandlerTestSuite) TestPostEntry_Success() {
	entry := &domain.LedgerEntry{
		EntryID:       "e1",
		ReferenceType: domain.ReferenceExpense,
		ReferenceID:   "exp-42",
	}
	suite.mockLedgerService.On("PostEntry", mock.Anything, mock.MatchedBy(func(req dto.PostEntryRequest) bool {
		return req.ReferenceID == "exp-42" && len(req.Lines) == 2
	}), "usr_1").Return(entry, nil).Once()

	token := suite.generateTestToken("usr_1")
	w := suite.doJSON(http.MethodPost, "/api/v1/ledger/entries", token, suite.entryBody())

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.PostEntryResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("e1", resp.EntryID)
	suite.Equal("expense", resp.ReferenceType)
	suite.Equal("exp-42", resp.ReferenceID)
	suite.mockLedgerService.AssertExpectations(suite.T())
}

func (suite *LedgerHandlerTestSuite) TestPostEntry_MissingToken() {
	w := suite.doJSON(http.MethodPost, "/api/v1/ledger/entries", "", suite.entryBody())

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockLedgerService.AssertNotCalled(suite.T(), "PostEntry", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerHandlerTestSuite) TestPostEntry_UnbalancedMapsTo422() {
	suite.mockLedgerService.On("PostEntry", mock.Anything, mock.AnythingOfType("dto.PostEntryRequest"), "usr_1").
		Return(nil, fmt.Errorf("%w: entry lines do not balance", apperrors.ErrIntegrity)).Once()

	token := suite.generateTestToken("usr_1")
	w := suite.doJSON(http.MethodPost, "/api/v1/ledger/entries", token, suite.entryBody())

	suite.Equal(http.StatusUnprocessableEntity, w.Code)
	var resp handlers.ErrorResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Contains(resp.Error, "do not balance")
}

func (suite *LedgerHandlerTestSuite) TestPostEntry_DuplicateReferenceMapsTo409() {
	suite.mockLedgerService.On("PostEntry", mock.Anything, mock.AnythingOfType("dto.PostEntryRequest"), "usr_1").
		Return(nil, fmt.Errorf("%w: reference already posted", apperrors.ErrDuplicate)).Once()

	token := suite.generateTestToken("usr_1")
	w := suite.doJSON(http.MethodPost, "/api/v1/ledger/entries", token, suite.entryBody())

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *LedgerHandlerTestSuite) TestVerifyCashless_Success() {
	result := &dto.VerifyCashlessResult{
		VerifiedNow:     []string{"txn-1", "txn-2"},
		AlreadyVerified: []string{"txn-3"},
	}
	suite.mockTurnoverService.On("VerifyCashless", mock.Anything, mock.MatchedBy(func(req dto.VerifyCashlessRequest) bool {
		return req.BusinessDate == "2024-06-15" && len(req.TransactionIDs) == 3
	}), "usr_1").Return(result, nil).Once()

	token := suite.generateTestToken("usr_1")
	w := suite.doJSON(http.MethodPost, "/api/v1/turnovers/verify-cashless", token, map[string]any{
		"businessDate":   "2024-06-15",
		"cashierUserID":  "cashier-1",
		"transactionIDs": []string{"txn-1", "txn-2", "txn-3"},
	})

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.VerifyCashlessResult
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal([]string{"txn-1", "txn-2"}, resp.VerifiedNow)
	suite.Equal([]string{"txn-3"}, resp.AlreadyVerified)
	suite.mockTurnoverService.AssertExpectations(suite.T())
}

func (suite *LedgerHandlerTestSuite) TestVerifyCashless_ClosedDateMapsTo409() {
	suite.mockTurnoverService.On("VerifyCashless", mock.Anything, mock.AnythingOfType("dto.VerifyCashlessRequest"), "usr_1").
		Return(nil, fmt.Errorf("%w: business date is finalized", apperrors.ErrConflict)).Once()

	token := suite.generateTestToken("usr_1")
	w := suite.doJSON(http.MethodPost, "/api/v1/turnovers/verify-cashless", token, map[string]any{
		"businessDate":   "2024-06-15",
		"cashierUserID":  "cashier-1",
		"transactionIDs": []string{"txn-1"},
	})

	suite.Equal(http.StatusConflict, w.Code)
	var resp handlers.ErrorResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Contains(resp.Error, "finalized")
}

func (suite *LedgerHandlerTestSuite) TestVerifyCashless_BadDateRejected() {
	token := suite.generateTestToken("usr_1")
	w := suite.doJSON(http.MethodPost, "/api/v1/turnovers/verify-cashless", token, map[string]any{
		"businessDate":   "June 15",
		"cashierUserID":  "cashier-1",
		"transactionIDs": []string{"txn-1"},
	})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockTurnoverService.AssertNotCalled(suite.T(), "VerifyCashless", mock.Anything, mock.Anything, mock.Anything)
}

func TestLedgerHandler(t *testing.T) {
	suite.Run(t, new(LedgerHandlerTestSuite))
}
