package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lpgdepot/depot_backend/internal/apperrors"
	"github.com/lpgdepot/depot_backend/internal/core/domain"
	portsrepo "github.com/lpgdepot/depot_backend/internal/core/ports/repositories"
	portssvc "github.com/lpgdepot/depot_backend/internal/core/ports/services"
	"github.com/lpgdepot/depot_backend/internal/core/services"
	"github.com/lpgdepot/depot_backend/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock TurnoverRepository ---
type MockTurnoverRepository struct {
	mock.Mock
}

var _ portsrepo.TurnoverRepositoryFacade = (*MockTurnoverRepository)(nil)

func (m *MockTurnoverRepository) UpsertExpected(ctx context.Context, record domain.TurnoverRecord, txns []domain.CashlessTransaction) (*domain.TurnoverRecord, error) {
	args := m.Called(ctx, record, txns)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TurnoverRecord), args.Error(1)
}

func (m *MockTurnoverRepository) FindByKey(ctx context.Context, key domain.TurnoverKey) (*domain.TurnoverRecord, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TurnoverRecord), args.Error(1)
}

func (m *MockTurnoverRepository) FindByKeyWithCounts(ctx context.Context, key domain.TurnoverKey) (*portsrepo.TurnoverWithCounts, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*portsrepo.TurnoverWithCounts), args.Error(1)
}

func (m *MockTurnoverRepository) ListByDateRange(ctx context.Context, from, to time.Time) ([]portsrepo.TurnoverWithCounts, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]portsrepo.TurnoverWithCounts), args.Error(1)
}

func (m *MockTurnoverRepository) RecordCash(ctx context.Context, key domain.TurnoverKey, cashCounted decimal.Decimal, note string, accountantUserID string, recordedAt time.Time) (*domain.TurnoverRecord, error) {
	args := m.Called(ctx, key, cashCounted, note, accountantUserID, recordedAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TurnoverRecord), args.Error(1)
}

func (m *MockTurnoverRepository) SetFlag(ctx context.Context, key domain.TurnoverKey, flagged bool, byUserID string, at time.Time) error {
	args := m.Called(ctx, key, flagged, byUserID, at)
	return args.Error(0)
}

func (m *MockTurnoverRepository) MarkSaved(ctx context.Context, key domain.TurnoverKey, savedAt time.Time, prevPostedCash, newPostedCash decimal.Decimal, prevPostedSeq int, byUserID string) error {
	args := m.Called(ctx, key, savedAt, prevPostedCash, newPostedCash, prevPostedSeq, byUserID)
	return args.Error(0)
}

func (m *MockTurnoverRepository) FindCashlessByKey(ctx context.Context, key domain.TurnoverKey) ([]domain.CashlessTransaction, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CashlessTransaction), args.Error(1)
}

func (m *MockTurnoverRepository) MarkCashlessVerified(ctx context.Context, ids []string, byUserID string, at time.Time) ([]string, error) {
	args := m.Called(ctx, ids, byUserID, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockTurnoverRepository) IsDateClosed(ctx context.Context, businessDate time.Time) (bool, error) {
	args := m.Called(ctx, businessDate)
	return args.Bool(0), args.Error(1)
}

func (m *MockTurnoverRepository) SaveDailyClose(ctx context.Context, close domain.DailyClose) error {
	args := m.Called(ctx, close)
	return args.Error(0)
}

// --- Mock LedgerWriterSvc ---
type MockLedgerWriterSvc struct {
	mock.Mock
}

var _ portssvc.LedgerWriterSvc = (*MockLedgerWriterSvc)(nil)

func (m *MockLedgerWriterSvc) PostEntry(ctx context.Context, req dto.PostEntryRequest, postedByUserID string) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, req, postedByUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerWriterSvc) PostSale(ctx context.Context, req dto.PostSaleRequest, postedByUserID string) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, req, postedByUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}

// --- Test Suite Setup ---
type TurnoverServiceTestSuite struct {
	suite.Suite
	mockTurnoverRepo *MockTurnoverRepository
	mockLedgerSvc    *MockLedgerWriterSvc
	mockAuditRepo    *MockAuditRepository
	service          portssvc.TurnoverSvcFacade
	businessDate     time.Time
	key              domain.TurnoverKey
	userID           string
}

func (suite *TurnoverServiceTestSuite) SetupTest() {
	suite.mockTurnoverRepo = new(MockTurnoverRepository)
	suite.mockLedgerSvc = new(MockLedgerWriterSvc)
	suite.mockAuditRepo = new(MockAuditRepository)
	exceptionSvc := services.NewExceptionService(
		decimal.RequireFromString("1000"),
		decimal.RequireFromString("0.3"),
	)
	suite.service = services.NewTurnoverService(suite.mockTurnoverRepo, suite.mockLedgerSvc, exceptionSvc, suite.mockAuditRepo)

	suite.businessDate = time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	suite.key = domain.TurnoverKey{BusinessDate: suite.businessDate, CashierUserID: "cashier-1"}
	suite.userID = "accountant-1"

	suite.mockAuditRepo.On("SaveAuditLog", mock.Anything, mock.AnythingOfType("domain.AuditLog")).Return(nil).Maybe()
}

func (suite *TurnoverServiceTestSuite) openDate() {
	suite.mockTurnoverRepo.On("IsDateClosed", mock.Anything, suite.businessDate).Return(false, nil)
}

func (suite *TurnoverServiceTestSuite) record(expected string) domain.TurnoverRecord {
	return domain.TurnoverRecord{
		TurnoverID:     uuid.NewString(),
		BusinessDate:   suite.businessDate,
		CashierUserID:  "cashier-1",
		ExpectedCash:   decimal.RequireFromString(expected),
		LastPostedCash: decimal.Zero,
	}
}

func (suite *TurnoverServiceTestSuite) withCounts(r domain.TurnoverRecord, pending int) *portsrepo.TurnoverWithCounts {
	return &portsrepo.TurnoverWithCounts{
		Record:          r,
		PendingCashless: pending,
		VerifiedAmount:  decimal.Zero,
	}
}

// --- Test Cases ---

func (suite *TurnoverServiceTestSuite) TestRecordCash_VarianceRequiresNote() {
	ctx := context.Background()
	suite.openDate()
	record := suite.record("1000.00")
	suite.mockTurnoverRepo.On("FindByKey", ctx, suite.key).Return(&record, nil).Once()

	_, err := suite.service.RecordCash(ctx, dto.RecordCashRequest{
		BusinessDate:  "2024-06-15",
		CashierUserID: "cashier-1",
		CashCounted:   decimal.RequireFromString("950.00"),
	}, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockTurnoverRepo.AssertNotCalled(suite.T(), "RecordCash",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TurnoverServiceTestSuite) TestRecordCash_WhitespaceNoteDoesNotCoverVariance() {
	ctx := context.Background()
	suite.openDate()
	record := suite.record("1000.00")
	suite.mockTurnoverRepo.On("FindByKey", ctx, suite.key).Return(&record, nil).Once()

	_, err := suite.service.RecordCash(ctx, dto.RecordCashRequest{
		BusinessDate:  "2024-06-15",
		CashierUserID: "cashier-1",
		CashCounted:   decimal.RequireFromString("950.00"),
		Note:          "  a  ",
	}, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *TurnoverServiceTestSuite) TestRecordCash_VarianceWithNote() {
	ctx := context.Background()
	suite.openDate()
	record := suite.record("1000.00")
	counted := decimal.RequireFromString("950.00")
	updated := record
	updated.CashCounted = &counted
	updated.Note = "till shortage, reported"
	suite.mockTurnoverRepo.On("FindByKey", ctx, suite.key).Return(&record, nil).Once()
	suite.mockTurnoverRepo.On("RecordCash", ctx, suite.key, counted, "till shortage, reported", suite.userID, mock.AnythingOfType("time.Time")).
		Return(&updated, nil).Once()
	suite.mockTurnoverRepo.On("FindByKeyWithCounts", ctx, suite.key).Return(suite.withCounts(updated, 0), nil).Once()

	row, err := suite.service.RecordCash(ctx, dto.RecordCashRequest{
		BusinessDate:  "2024-06-15",
		CashierUserID: "cashier-1",
		CashCounted:   counted,
		Note:          "till shortage, reported",
	}, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(row.Variance)
	suite.True(row.Variance.Equal(decimal.RequireFromString("-50.00")))
	suite.Contains(row.Issues, "variance")
	suite.mockTurnoverRepo.AssertExpectations(suite.T())
}

func (suite *TurnoverServiceTestSuite) TestRecordCash_ExactMatchNeedsNoNote() {
	ctx := context.Background()
	suite.openDate()
	record := suite.record("1000.00")
	counted := decimal.RequireFromString("1000.00")
	updated := record
	updated.CashCounted = &counted
	suite.mockTurnoverRepo.On("FindByKey", ctx, suite.key).Return(&record, nil).Once()
	suite.mockTurnoverRepo.On("RecordCash", ctx, suite.key, counted, "", suite.userID, mock.AnythingOfType("time.Time")).
		Return(&updated, nil).Once()
	suite.mockTurnoverRepo.On("FindByKeyWithCounts", ctx, suite.key).Return(suite.withCounts(updated, 0), nil).Once()

	row, err := suite.service.RecordCash(ctx, dto.RecordCashRequest{
		BusinessDate:  "2024-06-15",
		CashierUserID: "cashier-1",
		CashCounted:   counted,
	}, suite.userID)

	suite.Require().NoError(err)
	suite.Empty(row.Issues)
}

func (suite *TurnoverServiceTestSuite) TestRecordCash_NegativeCash() {
	ctx := context.Background()

	_, err := suite.service.RecordCash(ctx, dto.RecordCashRequest{
		BusinessDate:  "2024-06-15",
		CashierUserID: "cashier-1",
		CashCounted:   decimal.RequireFromString("-1.00"),
	}, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *TurnoverServiceTestSuite) TestRecordCash_DayFinalized() {
	ctx := context.Background()
	suite.mockTurnoverRepo.On("IsDateClosed", mock.Anything, suite.businessDate).Return(true, nil).Once()

	_, err := suite.service.RecordCash(ctx, dto.RecordCashRequest{
		BusinessDate:  "2024-06-15",
		CashierUserID: "cashier-1",
		CashCounted:   decimal.RequireFromString("1000.00"),
	}, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
}

func (suite *TurnoverServiceTestSuite) TestVerifyCashless_PartitionsOutcomes() {
	ctx := context.Background()
	suite.openDate()
	verifiedAt := time.Now()
	txns := []domain.CashlessTransaction{
		{TransactionID: "t1", Amount: decimal.RequireFromString("100.00")},
		{TransactionID: "t2", Amount: decimal.RequireFromString("200.00"), VerifiedAt: &verifiedAt},
	}
	suite.mockTurnoverRepo.On("FindCashlessByKey", ctx, suite.key).Return(txns, nil).Once()
	suite.mockTurnoverRepo.On("MarkCashlessVerified", ctx, []string{"t1"}, suite.userID, mock.AnythingOfType("time.Time")).
		Return([]string{"t1"}, nil).Once()

	result, err := suite.service.VerifyCashless(ctx, dto.VerifyCashlessRequest{
		BusinessDate:   "2024-06-15",
		CashierUserID:  "cashier-1",
		TransactionIDs: []string{"t1", "t2", "t3"},
	}, suite.userID)

	suite.Require().NoError(err)
	suite.Equal([]string{"t1"}, result.VerifiedNow)
	suite.Equal([]string{"t2"}, result.AlreadyVerified)
	suite.Equal([]string{"t3"}, result.NotFound)
	suite.mockTurnoverRepo.AssertExpectations(suite.T())
}

func (suite *TurnoverServiceTestSuite) TestVerifyCashless_ReverifyIsNoOp() {
	ctx := context.Background()
	suite.openDate()
	verifiedAt := time.Now()
	txns := []domain.CashlessTransaction{
		{TransactionID: "t1", Amount: decimal.RequireFromString("100.00"), VerifiedAt: &verifiedAt},
	}
	suite.mockTurnoverRepo.On("FindCashlessByKey", ctx, suite.key).Return(txns, nil).Once()

	result, err := suite.service.VerifyCashless(ctx, dto.VerifyCashlessRequest{
		BusinessDate:   "2024-06-15",
		CashierUserID:  "cashier-1",
		TransactionIDs: []string{"t1"},
	}, suite.userID)

	suite.Require().NoError(err)
	suite.Empty(result.VerifiedNow)
	suite.Equal([]string{"t1"}, result.AlreadyVerified)
	suite.mockTurnoverRepo.AssertNotCalled(suite.T(), "MarkCashlessVerified",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TurnoverServiceTestSuite) TestVerifyCashless_ConcurrentWinnerReclassified() {
	ctx := context.Background()
	suite.openDate()
	txns := []domain.CashlessTransaction{
		{TransactionID: "t1", Amount: decimal.RequireFromString("100.00")},
	}
	suite.mockTurnoverRepo.On("FindCashlessByKey", ctx, suite.key).Return(txns, nil).Once()
	// Another verifier stamped t1 between our read and update.
	suite.mockTurnoverRepo.On("MarkCashlessVerified", ctx, []string{"t1"}, suite.userID, mock.AnythingOfType("time.Time")).
		Return([]string{}, nil).Once()

	result, err := suite.service.VerifyCashless(ctx, dto.VerifyCashlessRequest{
		BusinessDate:   "2024-06-15",
		CashierUserID:  "cashier-1",
		TransactionIDs: []string{"t1"},
	}, suite.userID)

	suite.Require().NoError(err)
	suite.Empty(result.VerifiedNow)
	suite.Equal([]string{"t1"}, result.AlreadyVerified)
}

func (suite *TurnoverServiceTestSuite) TestSave_RequiresRecordedCash() {
	ctx := context.Background()
	suite.openDate()
	record := suite.record("1000.00")
	suite.mockTurnoverRepo.On("FindByKeyWithCounts", ctx, suite.key).Return(suite.withCounts(record, 0), nil).Once()

	_, err := suite.service.Save(ctx, dto.SaveTurnoverRequest{
		BusinessDate:  "2024-06-15",
		CashierUserID: "cashier-1",
	}, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
}

func (suite *TurnoverServiceTestSuite) TestSave_RequiresAllCashlessVerified() {
	ctx := context.Background()
	suite.openDate()
	record := suite.record("1000.00")
	counted := decimal.RequireFromString("1000.00")
	record.CashCounted = &counted
	suite.mockTurnoverRepo.On("FindByKeyWithCounts", ctx, suite.key).Return(suite.withCounts(record, 2), nil).Once()

	_, err := suite.service.Save(ctx, dto.SaveTurnoverRequest{
		BusinessDate:  "2024-06-15",
		CashierUserID: "cashier-1",
	}, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockLedgerSvc.AssertNotCalled(suite.T(), "PostEntry", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TurnoverServiceTestSuite) TestSave_FirstSavePostsRemittance() {
	ctx := context.Background()
	suite.openDate()
	record := suite.record("1000.00")
	counted := decimal.RequireFromString("1000.00")
	record.CashCounted = &counted

	var postedReq dto.PostEntryRequest
	suite.mockTurnoverRepo.On("FindByKeyWithCounts", ctx, suite.key).Return(suite.withCounts(record, 0), nil)
	suite.mockLedgerSvc.On("PostEntry", ctx, mock.AnythingOfType("dto.PostEntryRequest"), suite.userID).
		Run(func(args mock.Arguments) {
			postedReq = args.Get(1).(dto.PostEntryRequest)
		}).Return(&domain.LedgerEntry{EntryID: "e1"}, nil).Once()
	suite.mockTurnoverRepo.On("MarkSaved", ctx, suite.key, mock.AnythingOfType("time.Time"),
		decimal.Zero, counted, 0, suite.userID).Return(nil).Once()

	_, err := suite.service.Save(ctx, dto.SaveTurnoverRequest{
		BusinessDate:  "2024-06-15",
		CashierUserID: "cashier-1",
	}, suite.userID)

	suite.Require().NoError(err)
	suite.Equal("remittance", postedReq.ReferenceType)
	suite.Equal(record.TurnoverID, postedReq.ReferenceID)
	suite.Require().Len(postedReq.Lines, 2)
	suite.Equal(domain.AccountCashOnHand, postedReq.Lines[0].AccountCode)
	suite.True(postedReq.Lines[0].Debit.Equal(counted))
	suite.Equal(domain.AccountTurnoverReceivable, postedReq.Lines[1].AccountCode)
	suite.True(postedReq.Lines[1].Credit.Equal(counted))
	suite.mockTurnoverRepo.AssertExpectations(suite.T())
}

func (suite *TurnoverServiceTestSuite) TestSave_RepeatWithNoChangePostsNothing() {
	ctx := context.Background()
	suite.openDate()
	record := suite.record("1000.00")
	counted := decimal.RequireFromString("1000.00")
	record.CashCounted = &counted
	record.LastPostedCash = counted
	record.PostedSeq = 1
	savedAt := time.Now()
	record.SavedAt = &savedAt

	suite.mockTurnoverRepo.On("FindByKeyWithCounts", ctx, suite.key).Return(suite.withCounts(record, 0), nil)
	suite.mockTurnoverRepo.On("MarkSaved", ctx, suite.key, mock.AnythingOfType("time.Time"),
		counted, counted, 1, suite.userID).Return(nil).Once()

	_, err := suite.service.Save(ctx, dto.SaveTurnoverRequest{
		BusinessDate:  "2024-06-15",
		CashierUserID: "cashier-1",
	}, suite.userID)

	suite.Require().NoError(err)
	suite.mockLedgerSvc.AssertNotCalled(suite.T(), "PostEntry", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TurnoverServiceTestSuite) TestSave_CorrectionPostsDeltaAsAdjustment() {
	ctx := context.Background()
	suite.openDate()
	record := suite.record("1000.00")
	counted := decimal.RequireFromString("900.00")
	record.CashCounted = &counted
	record.Note = "recount after till error"
	record.LastPostedCash = decimal.RequireFromString("1000.00")
	record.PostedSeq = 1

	var postedReq dto.PostEntryRequest
	suite.mockTurnoverRepo.On("FindByKeyWithCounts", ctx, suite.key).Return(suite.withCounts(record, 0), nil)
	suite.mockLedgerSvc.On("PostEntry", ctx, mock.AnythingOfType("dto.PostEntryRequest"), suite.userID).
		Run(func(args mock.Arguments) {
			postedReq = args.Get(1).(dto.PostEntryRequest)
		}).Return(&domain.LedgerEntry{EntryID: "e2"}, nil).Once()
	suite.mockTurnoverRepo.On("MarkSaved", ctx, suite.key, mock.AnythingOfType("time.Time"),
		record.LastPostedCash, counted, 1, suite.userID).Return(nil).Once()

	_, err := suite.service.Save(ctx, dto.SaveTurnoverRequest{
		BusinessDate:  "2024-06-15",
		CashierUserID: "cashier-1",
	}, suite.userID)

	suite.Require().NoError(err)
	suite.Equal("adjustment", postedReq.ReferenceType)
	suite.Equal(record.TurnoverID+"-adj-1", postedReq.ReferenceID)
	// Negative delta reverses the sides: receivable is restored, cash reduced.
	suite.Require().Len(postedReq.Lines, 2)
	suite.Equal(domain.AccountTurnoverReceivable, postedReq.Lines[0].AccountCode)
	suite.True(postedReq.Lines[0].Debit.Equal(decimal.RequireFromString("100.00")))
	suite.Equal(domain.AccountCashOnHand, postedReq.Lines[1].AccountCode)
	suite.True(postedReq.Lines[1].Credit.Equal(decimal.RequireFromString("100.00")))
}

func (suite *TurnoverServiceTestSuite) TestSave_ConcurrentSaveSurfacesConflict() {
	ctx := context.Background()
	suite.openDate()
	record := suite.record("1000.00")
	counted := decimal.RequireFromString("1000.00")
	record.CashCounted = &counted

	// The other saver posted the reference and advanced the watermark, so the
	// duplicate posting falls through to MarkSaved and the guard misses there.
	suite.mockTurnoverRepo.On("FindByKeyWithCounts", ctx, suite.key).Return(suite.withCounts(record, 0), nil)
	suite.mockLedgerSvc.On("PostEntry", ctx, mock.Anything, suite.userID).
		Return(nil, apperrors.ErrDuplicate).Once()
	suite.mockTurnoverRepo.On("MarkSaved", ctx, suite.key, mock.AnythingOfType("time.Time"),
		decimal.Zero, counted, 0, suite.userID).Return(apperrors.ErrConflict).Once()

	_, err := suite.service.Save(ctx, dto.SaveTurnoverRequest{
		BusinessDate:  "2024-06-15",
		CashierUserID: "cashier-1",
	}, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockTurnoverRepo.AssertExpectations(suite.T())
}

func (suite *TurnoverServiceTestSuite) TestSave_RetryAfterInterruptedSaveRecovers() {
	ctx := context.Background()
	suite.openDate()
	record := suite.record("1000.00")
	counted := decimal.RequireFromString("1000.00")
	record.CashCounted = &counted

	suite.mockTurnoverRepo.On("FindByKeyWithCounts", ctx, suite.key).Return(suite.withCounts(record, 0), nil)

	// First attempt posts the remittance but dies before the watermark moves.
	suite.mockLedgerSvc.On("PostEntry", ctx, mock.AnythingOfType("dto.PostEntryRequest"), suite.userID).
		Return(&domain.LedgerEntry{EntryID: "e1"}, nil).Once()
	suite.mockTurnoverRepo.On("MarkSaved", ctx, suite.key, mock.AnythingOfType("time.Time"),
		decimal.Zero, counted, 0, suite.userID).Return(errors.New("connection reset")).Once()

	_, err := suite.service.Save(ctx, dto.SaveTurnoverRequest{
		BusinessDate:  "2024-06-15",
		CashierUserID: "cashier-1",
	}, suite.userID)
	suite.Require().Error(err)
	suite.Require().NotErrorIs(err, apperrors.ErrConflict)

	// The retry hits a duplicate reference, treats the posting as already
	// applied, and completes by advancing the watermark.
	suite.mockLedgerSvc.On("PostEntry", ctx, mock.AnythingOfType("dto.PostEntryRequest"), suite.userID).
		Return(nil, apperrors.ErrDuplicate).Once()
	suite.mockTurnoverRepo.On("MarkSaved", ctx, suite.key, mock.AnythingOfType("time.Time"),
		decimal.Zero, counted, 0, suite.userID).Return(nil).Once()

	row, err := suite.service.Save(ctx, dto.SaveTurnoverRequest{
		BusinessDate:  "2024-06-15",
		CashierUserID: "cashier-1",
	}, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(row)
	suite.mockLedgerSvc.AssertExpectations(suite.T())
	suite.mockTurnoverRepo.AssertExpectations(suite.T())
}

func (suite *TurnoverServiceTestSuite) TestSave_VarianceNoteStillRequired() {
	ctx := context.Background()
	suite.openDate()
	record := suite.record("1000.00")
	counted := decimal.RequireFromString("900.00")
	record.CashCounted = &counted

	suite.mockTurnoverRepo.On("FindByKeyWithCounts", ctx, suite.key).Return(suite.withCounts(record, 0), nil).Once()

	_, err := suite.service.Save(ctx, dto.SaveTurnoverRequest{
		BusinessDate:  "2024-06-15",
		CashierUserID: "cashier-1",
	}, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *TurnoverServiceTestSuite) TestSetFlag_NotFound() {
	ctx := context.Background()
	suite.openDate()
	flagged := true
	suite.mockTurnoverRepo.On("SetFlag", ctx, suite.key, true, suite.userID, mock.AnythingOfType("time.Time")).
		Return(apperrors.ErrNotFound).Once()

	_, err := suite.service.SetFlag(ctx, dto.FlagTurnoverRequest{
		BusinessDate:  "2024-06-15",
		CashierUserID: "cashier-1",
		Flagged:       &flagged,
	}, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *TurnoverServiceTestSuite) TestCloseDay_Success() {
	ctx := context.Background()
	suite.openDate()
	suite.mockTurnoverRepo.On("ListByDateRange", ctx, suite.businessDate, suite.businessDate).
		Return([]portsrepo.TurnoverWithCounts{}, nil).Once()
	suite.mockTurnoverRepo.On("SaveDailyClose", ctx, mock.AnythingOfType("domain.DailyClose")).Return(nil).Once()

	resp, err := suite.service.CloseDay(ctx, dto.DailyCloseRequest{BusinessDate: "2024-06-15"}, suite.userID)

	suite.Require().NoError(err)
	suite.Equal("2024-06-15", resp.BusinessDate)
	suite.Equal(suite.userID, resp.FinalizedBy)
	suite.mockTurnoverRepo.AssertExpectations(suite.T())
}

func (suite *TurnoverServiceTestSuite) TestCloseDay_AlreadyFinalized() {
	ctx := context.Background()
	suite.mockTurnoverRepo.On("IsDateClosed", mock.Anything, suite.businessDate).Return(true, nil).Once()

	_, err := suite.service.CloseDay(ctx, dto.DailyCloseRequest{BusinessDate: "2024-06-15"}, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.mockTurnoverRepo.AssertNotCalled(suite.T(), "SaveDailyClose", mock.Anything, mock.Anything)
}

func (suite *TurnoverServiceTestSuite) TestListTurnovers_InvertedRange() {
	ctx := context.Background()

	_, err := suite.service.ListTurnovers(ctx, dto.ListTurnoversParams{
		From: "2024-06-20",
		To:   "2024-06-15",
	})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *TurnoverServiceTestSuite) TestListTurnovers_StatusFilter() {
	ctx := context.Background()
	from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	pending := suite.record("1000.00")
	flagged := suite.record("500.00")
	flagged.Flagged = true
	rows := []portsrepo.TurnoverWithCounts{
		*suite.withCounts(pending, 0),
		*suite.withCounts(flagged, 0),
	}
	suite.mockTurnoverRepo.On("ListByDateRange", ctx, from, to).Return(rows, nil).Once()

	out, err := suite.service.ListTurnovers(ctx, dto.ListTurnoversParams{
		From:   "2024-06-01",
		To:     "2024-06-15",
		Status: "flagged",
	})

	suite.Require().NoError(err)
	suite.Require().Len(out, 1)
	suite.Equal("flagged", out[0].Status)
}

func TestTurnoverServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TurnoverServiceTestSuite))
}
