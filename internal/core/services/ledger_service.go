package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
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
	ErrEntryUnbalanced    = errors.New("ledger lines do not balance")
	ErrEntryMinLines      = errors.New("a posting must have at least two lines")
	ErrLineOneSided       = errors.New("each line must have exactly one of debit or credit positive")
	ErrUnknownReference   = errors.New("unknown reference type")
	ErrUnknownAccount     = errors.New("account code is not in the chart of accounts")
	ErrSaleAmountMismatch = errors.New("sale gross does not equal net plus vat")
)

// postingEpsilon absorbs rounding drift from upstream amount computations.
// A batch further apart than this is rejected as an integrity violation.
var postingEpsilon = decimal.RequireFromString("0.005")

// balancedEpsilon is the looser read-side threshold used when re-checking a
// resolved reference against its stored lines.
var balancedEpsilon = decimal.RequireFromString("0.01")

const (
	defaultLedgerPageSize = 50
	maxLedgerPageSize     = 100
)

// ledgerService validates and posts balanced entries and serves ledger reads.
type ledgerService struct {
	BaseService
	ledgerRepo  portsrepo.LedgerRepositoryFacade
	accountRepo portsrepo.AccountRepositoryFacade
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(ledgerRepo portsrepo.LedgerRepositoryFacade, accountRepo portsrepo.AccountRepositoryFacade) portssvc.LedgerSvcFacade {
	return &ledgerService{
		ledgerRepo:  ledgerRepo,
		accountRepo: accountRepo,
	}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// validateLines checks the shape and balance of a posting batch.
func (s *ledgerService) validateLines(lines []dto.PostLineRequest) error {
	if len(lines) < 2 {
		return fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrEntryMinLines)
	}

	debits := decimal.Zero
	credits := decimal.Zero
	for i, line := range lines {
		if line.Debit.IsNegative() || line.Credit.IsNegative() {
			return fmt.Errorf("%w: %s (line %d)", apperrors.ErrValidation, ErrLineOneSided, i+1)
		}
		debitSet := line.Debit.IsPositive()
		creditSet := line.Credit.IsPositive()
		if debitSet == creditSet {
			return fmt.Errorf("%w: %s (line %d)", apperrors.ErrValidation, ErrLineOneSided, i+1)
		}
		debits = debits.Add(line.Debit)
		credits = credits.Add(line.Credit)
	}

	if debits.Sub(credits).Abs().GreaterThan(postingEpsilon) {
		return fmt.Errorf("%w: %s: debits %s, credits %s",
			apperrors.ErrIntegrity, ErrEntryUnbalanced, debits.String(), credits.String())
	}
	return nil
}

// resolveAccounts verifies every line's account and returns the accounts by code.
func (s *ledgerService) resolveAccounts(ctx context.Context, lines []dto.PostLineRequest) (map[string]domain.Account, error) {
	accounts := make(map[string]domain.Account, len(lines))
	for _, line := range lines {
		if _, ok := accounts[line.AccountCode]; ok {
			continue
		}
		account, err := s.accountRepo.FindAccountByCode(ctx, line.AccountCode)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: %s %q", apperrors.ErrValidation, ErrUnknownAccount, line.AccountCode)
			}
			return nil, fmt.Errorf("failed to look up account %s: %w", line.AccountCode, err)
		}
		accounts[line.AccountCode] = *account
	}
	return accounts, nil
}

// PostEntry validates and persists one balanced batch of ledger lines.
func (s *ledgerService) PostEntry(ctx context.Context, req dto.PostEntryRequest, postedByUserID string) (*domain.LedgerEntry, error) {
	refType := domain.ReferenceType(req.ReferenceType)
	if !domain.KnownReferenceType(refType) {
		return nil, fmt.Errorf("%w: %s %q", apperrors.ErrValidation, ErrUnknownReference, req.ReferenceType)
	}
	entryDate, err := parseBusinessDate("entryDate", req.EntryDate)
	if err != nil {
		return nil, err
	}
	if err := s.validateLines(req.Lines); err != nil {
		if errors.Is(err, apperrors.ErrIntegrity) {
			s.LogError(ctx, err, "unbalanced posting rejected",
				slog.String("reference_type", req.ReferenceType),
				slog.String("reference_id", req.ReferenceID))
		}
		return nil, err
	}
	accounts, err := s.resolveAccounts(ctx, req.Lines)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	entry := domain.LedgerEntry{
		EntryID:       uuid.NewString(),
		ReferenceType: refType,
		ReferenceID:   req.ReferenceID,
		EntryDate:     entryDate,
		Memo:          req.Memo,
		CreatedAt:     now,
		CreatedBy:     postedByUserID,
	}
	lines := make([]domain.LedgerLine, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = domain.LedgerLine{
			LineID:        uuid.NewString(),
			EntryID:       entry.EntryID,
			LineSeq:       i + 1,
			AccountCode:   l.AccountCode,
			Description:   l.Description,
			Debit:         l.Debit,
			Credit:        l.Credit,
			BankRef:       l.BankRef,
			EntryDate:     entryDate,
			ReferenceType: refType,
			ReferenceID:   req.ReferenceID,
			AccountName:   accounts[l.AccountCode].Name,
			CreatedAt:     now,
			PostedBy:      postedByUserID,
		}
	}

	if err := s.ledgerRepo.SaveEntry(ctx, entry, lines); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			s.LogWarn(ctx, "reference already posted",
				slog.String("reference_type", req.ReferenceType),
				slog.String("reference_id", req.ReferenceID))
			return nil, fmt.Errorf("%w: reference %s/%s is already posted",
				apperrors.ErrDuplicate, req.ReferenceType, req.ReferenceID)
		}
		s.LogError(ctx, err, "failed to save ledger entry")
		return nil, fmt.Errorf("failed to save ledger entry: %w", err)
	}

	s.LogInfo(ctx, "ledger entry posted",
		slog.String("entry_id", entry.EntryID),
		slog.String("reference_type", req.ReferenceType),
		slog.String("reference_id", req.ReferenceID),
		slog.Int("lines", len(lines)))
	return &entry, nil
}

// PostSale composes and posts the ledger entries for a completed sale. The
// gross lands on the turnover receivable until the cashier's takings are
// reconciled; revenue and VAT are recognized immediately.
func (s *ledgerService) PostSale(ctx context.Context, req dto.PostSaleRequest, postedByUserID string) (*domain.LedgerEntry, error) {
	if req.GrossAmount.IsNegative() || req.NetAmount.IsNegative() || req.VATAmount.IsNegative() || req.COGSAmount.IsNegative() {
		return nil, fmt.Errorf("%w: sale amounts must not be negative", apperrors.ErrValidation)
	}
	if req.GrossAmount.Sub(req.NetAmount.Add(req.VATAmount)).Abs().GreaterThan(postingEpsilon) {
		return nil, fmt.Errorf("%w: %s: gross %s, net %s, vat %s",
			apperrors.ErrIntegrity, ErrSaleAmountMismatch,
			req.GrossAmount.String(), req.NetAmount.String(), req.VATAmount.String())
	}

	memo := "Sale"
	if req.SaleNumber != "" {
		memo = fmt.Sprintf("Sale %s", req.SaleNumber)
	}

	lines := []dto.PostLineRequest{
		{AccountCode: domain.AccountTurnoverReceivable, Description: memo, Debit: req.GrossAmount},
		{AccountCode: domain.AccountSalesRevenue, Description: memo, Credit: req.NetAmount},
	}
	if req.VATAmount.IsPositive() {
		lines = append(lines, dto.PostLineRequest{
			AccountCode: domain.AccountVATPayable,
			Description: memo + " output VAT",
			Credit:      req.VATAmount,
		})
	}
	if req.COGSAmount.IsPositive() {
		lines = append(lines,
			dto.PostLineRequest{AccountCode: domain.AccountCOGS, Description: memo + " cost", Debit: req.COGSAmount},
			dto.PostLineRequest{AccountCode: domain.AccountInventory, Description: memo + " cost", Credit: req.COGSAmount},
		)
	}

	return s.PostEntry(ctx, dto.PostEntryRequest{
		ReferenceType: string(domain.ReferenceSale),
		ReferenceID:   req.SaleID,
		EntryDate:     req.SaleDate,
		Memo:          memo,
		Lines:         lines,
	}, postedByUserID)
}

// ResolveReference returns every line posted under a reference id. The balance
// check is recomputed from the returned lines, never read from a cache.
func (s *ledgerService) ResolveReference(ctx context.Context, referenceType string, referenceID string) (*dto.ResolveReferenceResponse, error) {
	refType := domain.ReferenceType(referenceType)
	if referenceType != "" && !domain.KnownReferenceType(refType) {
		return nil, fmt.Errorf("%w: %s %q", apperrors.ErrValidation, ErrUnknownReference, referenceType)
	}
	if referenceID == "" {
		return nil, fmt.Errorf("%w: referenceID is required", apperrors.ErrValidation)
	}

	lines, err := s.ledgerRepo.FindLinesByReference(ctx, refType, referenceID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve reference %s: %w", referenceID, err)
	}
	if len(lines) == 0 {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("no ledger lines for reference %s", referenceID))
	}

	totals := portsrepo.LedgerTotals{Debit: decimal.Zero, Credit: decimal.Zero}
	for _, l := range lines {
		totals.Debit = totals.Debit.Add(l.Debit)
		totals.Credit = totals.Credit.Add(l.Credit)
	}
	balanced := totals.Net().Abs().LessThan(balancedEpsilon)
	if !balanced {
		s.LogError(ctx, ErrEntryUnbalanced, "stored reference is unbalanced",
			slog.String("reference_id", referenceID),
			slog.String("net", totals.Net().String()))
	}

	return &dto.ResolveReferenceResponse{
		ReferenceType: string(lines[0].ReferenceType),
		ReferenceID:   referenceID,
		Lines:         dto.ToLedgerLineResponses(lines),
		Totals:        dto.ToLedgerTotalsResponse(totals),
		Balanced:      balanced,
	}, nil
}

// ListLedger retrieves a filtered, paginated ledger view with filter-wide totals.
func (s *ledgerService) ListLedger(ctx context.Context, params dto.ListLedgerParams) (*dto.ListLedgerResponse, error) {
	filter, err := buildLedgerFilter(params)
	if err != nil {
		return nil, err
	}

	limit := params.Limit
	if limit <= 0 {
		limit = defaultLedgerPageSize
	}
	if limit > maxLedgerPageSize {
		limit = maxLedgerPageSize
	}

	lines, nextToken, err := s.ledgerRepo.ListLines(ctx, *filter, limit, params.NextToken)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger lines: %w", err)
	}
	totals, err := s.ledgerRepo.TotalsForFilter(ctx, *filter)
	if err != nil {
		return nil, fmt.Errorf("failed to total ledger lines: %w", err)
	}

	return &dto.ListLedgerResponse{
		Lines:     dto.ToLedgerLineResponses(lines),
		Totals:    dto.ToLedgerTotalsResponse(totals),
		NextToken: nextToken,
	}, nil
}

func buildLedgerFilter(params dto.ListLedgerParams) (*portsrepo.LedgerListFilter, error) {
	filter := portsrepo.LedgerListFilter{
		Query:       params.Query,
		AccountCode: params.AccountCode,
		BankRef:     params.BankRef,
		OldestFirst: params.Sort == "posted_at_asc",
	}
	if params.ReferenceType != "" {
		refType := domain.ReferenceType(params.ReferenceType)
		if !domain.KnownReferenceType(refType) {
			return nil, fmt.Errorf("%w: %s %q", apperrors.ErrValidation, ErrUnknownReference, params.ReferenceType)
		}
		filter.ReferenceType = refType
	}
	if params.From != "" {
		from, err := parseBusinessDate("from", params.From)
		if err != nil {
			return nil, err
		}
		filter.From = &from
	}
	if params.To != "" {
		to, err := parseBusinessDate("to", params.To)
		if err != nil {
			return nil, err
		}
		filter.To = &to
	}
	switch params.Cleared {
	case "", "all":
	case "cleared":
		v := true
		filter.Cleared = &v
	case "uncleared":
		v := false
		filter.Cleared = &v
	default:
		return nil, fmt.Errorf("%w: cleared must be one of all, cleared, uncleared", apperrors.ErrValidation)
	}
	return &filter, nil
}

// RunningBalance returns an account's signed balance as of a date, oriented to
// the account's normal side.
func (s *ledgerService) RunningBalance(ctx context.Context, accountCode string, asOf time.Time) (decimal.Decimal, error) {
	account, err := s.accountRepo.FindAccountByCode(ctx, accountCode)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return decimal.Zero, fmt.Errorf("%w: %s %q", apperrors.ErrValidation, ErrUnknownAccount, accountCode)
		}
		return decimal.Zero, fmt.Errorf("failed to look up account %s: %w", accountCode, err)
	}

	debit, credit, err := s.ledgerRepo.SumAccount(ctx, accountCode, asOf)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum account %s: %w", accountCode, err)
	}

	if account.NormalSide() == domain.CreditNormal {
		return credit.Sub(debit), nil
	}
	return debit.Sub(credit), nil
}

// ListAccounts returns the chart of accounts.
func (s *ledgerService) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}
