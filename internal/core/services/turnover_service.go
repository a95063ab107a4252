package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lpgdepot/depot_backend/internal/apperrors"
	"github.com/lpgdepot/depot_backend/internal/core/domain"
	portsrepo "github.com/lpgdepot/depot_backend/internal/core/ports/repositories"
	portssvc "github.com/lpgdepot/depot_backend/internal/core/ports/services"
	"github.com/lpgdepot/depot_backend/internal/dto"
	"github.com/shopspring/decimal"
)

var (
	ErrNoteRequired      = errors.New("a note of at least 3 characters is required when counted cash differs from expected")
	ErrCashNotRecorded   = errors.New("cash must be recorded before the turnover can be saved")
	ErrPendingCashless   = errors.New("all cashless transactions must be verified before the turnover can be saved")
	ErrNegativeCash      = errors.New("counted cash must not be negative")
	ErrDayFinalized      = errors.New("business date is finalized")
	ErrTurnoverNotFound  = errors.New("no turnover record for this date and cashier")
	ErrListRangeTooWide  = errors.New("date range must not exceed 92 days")
	ErrListRangeInverted = errors.New("from must not be after to")
)

const minNoteLength = 3

// turnoverService reconciles cashier turnovers: counted cash against expected
// takings and cashless verification, with ledger posting on save.
type turnoverService struct {
	BaseService
	turnoverRepo portsrepo.TurnoverRepositoryFacade
	ledgerSvc    portssvc.LedgerWriterSvc
	exceptionSvc portssvc.ExceptionSvcFacade
	auditRepo    portsrepo.AuditRepositoryFacade
}

// NewTurnoverService creates a new TurnoverService.
func NewTurnoverService(turnoverRepo portsrepo.TurnoverRepositoryFacade, ledgerSvc portssvc.LedgerWriterSvc, exceptionSvc portssvc.ExceptionSvcFacade, auditRepo portsrepo.AuditRepositoryFacade) portssvc.TurnoverSvcFacade {
	return &turnoverService{
		turnoverRepo: turnoverRepo,
		ledgerSvc:    ledgerSvc,
		exceptionSvc: exceptionSvc,
		auditRepo:    auditRepo,
	}
}

var _ portssvc.TurnoverSvcFacade = (*turnoverService)(nil)

// guardOpenDate rejects mutations on a finalized business date.
func (s *turnoverService) guardOpenDate(ctx context.Context, businessDate time.Time) error {
	closed, err := s.turnoverRepo.IsDateClosed(ctx, businessDate)
	if err != nil {
		return fmt.Errorf("failed to check daily close: %w", err)
	}
	if closed {
		return fmt.Errorf("%w: %s on %s", apperrors.ErrConflict, ErrDayFinalized, businessDate.Format(businessDateLayout))
	}
	return nil
}

func (s *turnoverService) rowForKey(ctx context.Context, key domain.TurnoverKey) (*dto.TurnoverRowResponse, error) {
	tc, err := s.turnoverRepo.FindByKeyWithCounts(ctx, key)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(ErrTurnoverNotFound.Error())
		}
		return nil, fmt.Errorf("failed to load turnover: %w", err)
	}
	row := dto.ToTurnoverRowResponse(tc, s.exceptionSvc.TurnoverIssues(ctx, tc))
	return &row, nil
}

func (s *turnoverService) audit(ctx context.Context, actorUserID, action string, key domain.TurnoverKey, after map[string]string) {
	err := s.auditRepo.SaveAuditLog(ctx, domain.AuditLog{
		ActorUserID: actorUserID,
		Action:      action,
		EntityType:  "turnover",
		EntityID:    fmt.Sprintf("%s/%s", key.BusinessDate.Format(businessDateLayout), key.CashierUserID),
		After:       after,
		CreatedAt:   time.Now(),
	})
	if err != nil {
		s.LogWarn(ctx, "failed to write audit log", slog.String("action", action), slog.String("error", err.Error()))
	}
}

// RegisterExpected creates or refreshes the pending record for a key with
// upstream expected amounts and cashless transactions. Expected cashless is
// derived from the submitted transactions, never taken on faith.
func (s *turnoverService) RegisterExpected(ctx context.Context, req dto.RegisterExpectedRequest, byUserID string) (*dto.TurnoverRowResponse, error) {
	businessDate, err := parseBusinessDate("businessDate", req.BusinessDate)
	if err != nil {
		return nil, err
	}
	if req.ExpectedCash.IsNegative() {
		return nil, fmt.Errorf("%w: expectedCash must not be negative", apperrors.ErrValidation)
	}
	if err := s.guardOpenDate(ctx, businessDate); err != nil {
		return nil, err
	}

	now := time.Now()
	expectedCashless := decimal.Zero
	txns := make([]domain.CashlessTransaction, len(req.Cashless))
	for i, c := range req.Cashless {
		if c.Amount.IsNegative() {
			return nil, fmt.Errorf("%w: cashless amount must not be negative (transaction %s)", apperrors.ErrValidation, c.TransactionID)
		}
		expectedCashless = expectedCashless.Add(c.Amount)
		txns[i] = domain.CashlessTransaction{
			TransactionID: c.TransactionID,
			BusinessDate:  businessDate,
			CashierUserID: req.CashierUserID,
			MethodKey:     c.MethodKey,
			Amount:        c.Amount,
			Reference:     c.Reference,
			CreatedAt:     now,
		}
	}

	record := domain.TurnoverRecord{
		TurnoverID:       uuid.NewString(),
		BusinessDate:     businessDate,
		CashierUserID:    req.CashierUserID,
		ExpectedCash:     req.ExpectedCash,
		ExpectedCashless: expectedCashless,
		ExpectedByMethod: req.ExpectedByMethod,
		LastPostedCash:   decimal.Zero,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     byUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: byUserID,
		},
	}

	saved, err := s.turnoverRepo.UpsertExpected(ctx, record, txns)
	if err != nil {
		s.LogError(ctx, err, "failed to register expected turnover",
			slog.String("business_date", req.BusinessDate),
			slog.String("cashier_user_id", req.CashierUserID))
		return nil, fmt.Errorf("failed to register expected turnover: %w", err)
	}

	key := domain.TurnoverKey{BusinessDate: businessDate, CashierUserID: req.CashierUserID}
	s.audit(ctx, byUserID, "turnover.register_expected", key, map[string]string{
		"expected_cash":     saved.ExpectedCash.String(),
		"expected_cashless": saved.ExpectedCashless.String(),
	})
	return s.rowForKey(ctx, key)
}

// GetTurnover retrieves one reconciliation row by its key.
func (s *turnoverService) GetTurnover(ctx context.Context, key domain.TurnoverKey) (*dto.TurnoverRowResponse, error) {
	return s.rowForKey(ctx, key)
}

// ListTurnovers retrieves reconciliation rows for a date range, optionally
// narrowed to one computed status.
func (s *turnoverService) ListTurnovers(ctx context.Context, params dto.ListTurnoversParams) ([]dto.TurnoverRowResponse, error) {
	to := time.Now()
	if params.To != "" {
		var err error
		to, err = parseBusinessDate("to", params.To)
		if err != nil {
			return nil, err
		}
	}
	from := to.AddDate(0, 0, -30)
	if params.From != "" {
		var err error
		from, err = parseBusinessDate("from", params.From)
		if err != nil {
			return nil, err
		}
	}
	if from.After(to) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrListRangeInverted)
	}
	if to.Sub(from) > 92*24*time.Hour {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrListRangeTooWide)
	}

	rows, err := s.turnoverRepo.ListByDateRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list turnovers: %w", err)
	}

	out := make([]dto.TurnoverRowResponse, 0, len(rows))
	for i := range rows {
		row := dto.ToTurnoverRowResponse(&rows[i], s.exceptionSvc.TurnoverIssues(ctx, &rows[i]))
		if params.Status != "" && params.Status != "all" && row.Status != params.Status {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

// ListCashless retrieves the cashless transactions of one turnover key.
func (s *turnoverService) ListCashless(ctx context.Context, key domain.TurnoverKey) ([]dto.CashlessTransactionResponse, error) {
	txns, err := s.turnoverRepo.FindCashlessByKey(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to list cashless transactions: %w", err)
	}
	return dto.ToCashlessTransactionResponses(txns), nil
}

// noteCovers reports whether the note satisfies the variance rule.
func noteCovers(note string) bool {
	return len(strings.TrimSpace(note)) >= minNoteLength
}

// RecordCash records the counted cash for a key. Recording is repeatable up to
// the daily close; each call overwrites the previous count and note.
func (s *turnoverService) RecordCash(ctx context.Context, req dto.RecordCashRequest, accountantUserID string) (*dto.TurnoverRowResponse, error) {
	businessDate, err := parseBusinessDate("businessDate", req.BusinessDate)
	if err != nil {
		return nil, err
	}
	if req.CashCounted.IsNegative() {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrNegativeCash)
	}
	if err := s.guardOpenDate(ctx, businessDate); err != nil {
		return nil, err
	}

	key := domain.TurnoverKey{BusinessDate: businessDate, CashierUserID: req.CashierUserID}
	record, err := s.turnoverRepo.FindByKey(ctx, key)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(ErrTurnoverNotFound.Error())
		}
		return nil, fmt.Errorf("failed to load turnover: %w", err)
	}

	variance := req.CashCounted.Sub(record.ExpectedCash)
	if !variance.IsZero() && !noteCovers(req.Note) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrNoteRequired)
	}

	if _, err := s.turnoverRepo.RecordCash(ctx, key, req.CashCounted, strings.TrimSpace(req.Note), accountantUserID, time.Now()); err != nil {
		s.LogError(ctx, err, "failed to record counted cash",
			slog.String("business_date", req.BusinessDate),
			slog.String("cashier_user_id", req.CashierUserID))
		return nil, fmt.Errorf("failed to record counted cash: %w", err)
	}

	s.LogInfo(ctx, "counted cash recorded",
		slog.String("business_date", req.BusinessDate),
		slog.String("cashier_user_id", req.CashierUserID),
		slog.String("cash_counted", req.CashCounted.String()),
		slog.String("variance", variance.String()))
	s.audit(ctx, accountantUserID, "turnover.record_cash", key, map[string]string{
		"cash_counted": req.CashCounted.String(),
		"variance":     variance.String(),
	})
	return s.rowForKey(ctx, key)
}

// VerifyCashless verifies a batch of cashless transactions. Each id lands in
// exactly one outcome bucket; already-verified ids are skipped, not failed, so
// retrying a partially applied batch is safe.
func (s *turnoverService) VerifyCashless(ctx context.Context, req dto.VerifyCashlessRequest, byUserID string) (*dto.VerifyCashlessResult, error) {
	businessDate, err := parseBusinessDate("businessDate", req.BusinessDate)
	if err != nil {
		return nil, err
	}
	if err := s.guardOpenDate(ctx, businessDate); err != nil {
		return nil, err
	}

	key := domain.TurnoverKey{BusinessDate: businessDate, CashierUserID: req.CashierUserID}
	txns, err := s.turnoverRepo.FindCashlessByKey(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to load cashless transactions: %w", err)
	}

	known := make(map[string]*domain.CashlessTransaction, len(txns))
	for i := range txns {
		known[txns[i].TransactionID] = &txns[i]
	}

	result := &dto.VerifyCashlessResult{
		VerifiedNow:     []string{},
		AlreadyVerified: []string{},
	}
	candidates := make([]string, 0, len(req.TransactionIDs))
	for _, id := range req.TransactionIDs {
		txn, ok := known[id]
		switch {
		case !ok:
			result.NotFound = append(result.NotFound, id)
		case txn.Verified():
			result.AlreadyVerified = append(result.AlreadyVerified, id)
		default:
			candidates = append(candidates, id)
		}
	}

	if len(candidates) > 0 {
		updated, err := s.turnoverRepo.MarkCashlessVerified(ctx, candidates, byUserID, time.Now())
		if err != nil {
			return nil, fmt.Errorf("failed to verify cashless transactions: %w", err)
		}
		// A concurrent verifier may have won some ids between read and update.
		updatedSet := make(map[string]bool, len(updated))
		for _, id := range updated {
			updatedSet[id] = true
		}
		for _, id := range candidates {
			if updatedSet[id] {
				result.VerifiedNow = append(result.VerifiedNow, id)
			} else {
				result.AlreadyVerified = append(result.AlreadyVerified, id)
			}
		}
	}

	if len(result.VerifiedNow) > 0 {
		s.audit(ctx, byUserID, "turnover.verify_cashless", key, map[string]string{
			"verified": strings.Join(result.VerifiedNow, ","),
		})
	}
	return result, nil
}

// Save finalizes a turnover and posts any unposted counted cash to the ledger.
// The first save posts under a remittance reference; a re-save after a cash
// correction posts only the delta under a fresh adjustment reference, so
// posted history is never rewritten. A re-save with no cash change posts
// nothing and just restamps savedAt.
func (s *turnoverService) Save(ctx context.Context, req dto.SaveTurnoverRequest, byUserID string) (*dto.TurnoverRowResponse, error) {
	businessDate, err := parseBusinessDate("businessDate", req.BusinessDate)
	if err != nil {
		return nil, err
	}
	if err := s.guardOpenDate(ctx, businessDate); err != nil {
		return nil, err
	}

	key := domain.TurnoverKey{BusinessDate: businessDate, CashierUserID: req.CashierUserID}
	tc, err := s.turnoverRepo.FindByKeyWithCounts(ctx, key)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(ErrTurnoverNotFound.Error())
		}
		return nil, fmt.Errorf("failed to load turnover: %w", err)
	}
	record := tc.Record

	if record.CashCounted == nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrConflict, ErrCashNotRecorded)
	}
	if tc.PendingCashless > 0 {
		return nil, fmt.Errorf("%w: %s (%d pending)", apperrors.ErrConflict, ErrPendingCashless, tc.PendingCashless)
	}
	if v := record.Variance(); v != nil && !v.IsZero() && !noteCovers(record.Note) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrNoteRequired)
	}

	delta := record.CashCounted.Sub(record.LastPostedCash)
	newPostedCash := record.LastPostedCash
	if !delta.IsZero() {
		refType := domain.ReferenceRemittance
		refID := record.TurnoverID
		memo := fmt.Sprintf("Turnover remittance %s", businessDate.Format(businessDateLayout))
		if record.PostedSeq > 0 {
			refType = domain.ReferenceAdjustment
			refID = fmt.Sprintf("%s-adj-%d", record.TurnoverID, record.PostedSeq)
			memo = fmt.Sprintf("Turnover adjustment %s", businessDate.Format(businessDateLayout))
		}

		lines := []dto.PostLineRequest{
			{AccountCode: domain.AccountCashOnHand, Description: memo, Debit: delta},
			{AccountCode: domain.AccountTurnoverReceivable, Description: memo, Credit: delta},
		}
		if delta.IsNegative() {
			abs := delta.Abs()
			lines = []dto.PostLineRequest{
				{AccountCode: domain.AccountTurnoverReceivable, Description: memo, Debit: abs},
				{AccountCode: domain.AccountCashOnHand, Description: memo, Credit: abs},
			}
		}

		if _, err := s.ledgerSvc.PostEntry(ctx, dto.PostEntryRequest{
			ReferenceType: string(refType),
			ReferenceID:   refID,
			EntryDate:     businessDate.Format(businessDateLayout),
			Memo:          memo,
			Lines:         lines,
		}, byUserID); err != nil {
			if !errors.Is(err, apperrors.ErrDuplicate) {
				return nil, fmt.Errorf("failed to post turnover to ledger: %w", err)
			}
			// This reference already exists in the ledger: either a prior save
			// posted it and then failed before advancing the watermark, or a
			// concurrent save won. Proceed to MarkSaved; its watermark guard
			// accepts the retry and rejects the stale concurrent writer.
			s.LogWarn(ctx, "turnover reference already posted, resuming save",
				slog.String("business_date", req.BusinessDate),
				slog.String("cashier_user_id", req.CashierUserID),
				slog.String("reference_id", refID))
		}
		newPostedCash = *record.CashCounted
	}

	if err := s.turnoverRepo.MarkSaved(ctx, key, time.Now(), record.LastPostedCash, newPostedCash, record.PostedSeq, byUserID); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, fmt.Errorf("%w: concurrent save advanced this turnover first", apperrors.ErrConflict)
		}
		s.LogError(ctx, err, "failed to mark turnover saved",
			slog.String("business_date", req.BusinessDate),
			slog.String("cashier_user_id", req.CashierUserID))
		return nil, fmt.Errorf("failed to mark turnover saved: %w", err)
	}

	s.LogInfo(ctx, "turnover saved",
		slog.String("business_date", req.BusinessDate),
		slog.String("cashier_user_id", req.CashierUserID),
		slog.String("posted_delta", delta.String()))
	s.audit(ctx, byUserID, "turnover.save", key, map[string]string{
		"cash_counted": record.CashCounted.String(),
		"posted_delta": delta.String(),
	})
	return s.rowForKey(ctx, key)
}

// SetFlag sets or clears the advisory flagged bit. Flagging never blocks a
// workflow; it only changes the computed status to flagged.
func (s *turnoverService) SetFlag(ctx context.Context, req dto.FlagTurnoverRequest, byUserID string) (*dto.TurnoverRowResponse, error) {
	businessDate, err := parseBusinessDate("businessDate", req.BusinessDate)
	if err != nil {
		return nil, err
	}
	if req.Flagged == nil {
		return nil, fmt.Errorf("%w: flagged is required", apperrors.ErrValidation)
	}
	if err := s.guardOpenDate(ctx, businessDate); err != nil {
		return nil, err
	}

	key := domain.TurnoverKey{BusinessDate: businessDate, CashierUserID: req.CashierUserID}
	if err := s.turnoverRepo.SetFlag(ctx, key, *req.Flagged, byUserID, time.Now()); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(ErrTurnoverNotFound.Error())
		}
		return nil, fmt.Errorf("failed to set turnover flag: %w", err)
	}

	s.audit(ctx, byUserID, "turnover.set_flag", key, map[string]string{
		"flagged": fmt.Sprintf("%t", *req.Flagged),
	})
	return s.rowForKey(ctx, key)
}

// CloseDay finalizes a business date, blocking further mutations on it.
// Unsaved rows do not block the close; they are logged for follow-up.
func (s *turnoverService) CloseDay(ctx context.Context, req dto.DailyCloseRequest, byUserID string) (*dto.DailyCloseResponse, error) {
	businessDate, err := parseBusinessDate("businessDate", req.BusinessDate)
	if err != nil {
		return nil, err
	}
	closed, err := s.turnoverRepo.IsDateClosed(ctx, businessDate)
	if err != nil {
		return nil, fmt.Errorf("failed to check daily close: %w", err)
	}
	if closed {
		return nil, fmt.Errorf("%w: %s is already finalized", apperrors.ErrDuplicate, req.BusinessDate)
	}

	rows, err := s.turnoverRepo.ListByDateRange(ctx, businessDate, businessDate)
	if err != nil {
		return nil, fmt.Errorf("failed to list turnovers for close: %w", err)
	}
	unsaved := 0
	for i := range rows {
		if rows[i].Record.SavedAt == nil {
			unsaved++
		}
	}
	if unsaved > 0 {
		s.LogWarn(ctx, "closing a date with unsaved turnovers",
			slog.String("business_date", req.BusinessDate),
			slog.Int("unsaved", unsaved))
	}

	now := time.Now()
	if err := s.turnoverRepo.SaveDailyClose(ctx, domain.DailyClose{
		BusinessDate:      businessDate,
		FinalizedByUserID: byUserID,
		FinalizedAt:       now,
	}); err != nil {
		return nil, fmt.Errorf("failed to save daily close: %w", err)
	}

	key := domain.TurnoverKey{BusinessDate: businessDate}
	s.audit(ctx, byUserID, "daily_close.finalize", key, nil)
	s.LogInfo(ctx, "business date finalized", slog.String("business_date", req.BusinessDate))
	return &dto.DailyCloseResponse{
		BusinessDate: req.BusinessDate,
		FinalizedAt:  now,
		FinalizedBy:  byUserID,
	}, nil
}
