package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/SscSPs/bizledger/internal/apperrors"
	"github.com/SscSPs/bizledger/internal/core/domain"
	portsrepo "github.com/SscSPs/bizledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/bizledger/internal/core/ports/services"
	"github.com/SscSPs/bizledger/internal/utils/accounting"
)

// journalService validates, numbers and posts journals, and derives them from
// domain event snapshots.
type journalService struct {
	BaseService
	txManager   portsrepo.TransactionManager
	accountRepo portsrepo.AccountRepositoryFacade
	ledgerRepo  portsrepo.LedgerRepositoryFacade
	guard       portssvc.PostingGuard
	resolver    AccountResolver
}

// NewJournalService creates a new JournalService.
func NewJournalService(
	txManager portsrepo.TransactionManager,
	accountRepo portsrepo.AccountRepositoryFacade,
	ledgerRepo portsrepo.LedgerRepositoryFacade,
	guard portssvc.PostingGuard,
	resolver AccountResolver,
	opts ...Option,
) portssvc.JournalSvcFacade {
	svc := &journalService{
		txManager:   txManager,
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
		guard:       guard,
		resolver:    resolver,
	}
	svc.apply(opts)
	return svc
}

// Ensure journalService implements the portssvc.JournalSvcFacade interface
var _ portssvc.JournalSvcFacade = (*journalService)(nil)

// checkedLines is the outcome of validating a line set. err holds the first
// rule broken; preview lists every problem found.
type checkedLines struct {
	lines    []domain.JournalLine
	accounts map[string]domain.Account
	preview  domain.JournalPreview
	err      error
}

func (c *checkedLines) fail(kind error, problem string) {
	c.preview.Problems = append(c.preview.Problems, problem)
	if c.err == nil {
		c.err = fmt.Errorf("%w: %s", kind, problem)
	}
}

// check resolves accounts and applies the posting rules without writing anything.
// The returned error is reserved for storage failures.
func (s *journalService) check(ctx context.Context, lines []domain.JournalLine, allowInactive bool) (*checkedLines, error) {
	c := &checkedLines{
		lines:    make([]domain.JournalLine, len(lines)),
		accounts: make(map[string]domain.Account, len(lines)),
		preview:  domain.JournalPreview{Lines: make([]domain.PreviewLine, len(lines))},
	}

	if len(lines) < 2 {
		c.fail(apperrors.ErrInsufficientJournalLines, fmt.Sprintf("journal has %d line(s), at least 2 are required", len(lines)))
	}
	for i, l := range lines {
		if err := l.ValidateSides(); err != nil {
			c.fail(apperrors.ErrInvalidJournalLine, fmt.Sprintf("line %d: %v", i+1, err))
		}
	}

	var ids, codes []string
	for _, l := range lines {
		switch {
		case l.AccountID != "":
			ids = append(ids, l.AccountID)
		case l.AccountCode != "":
			codes = append(codes, l.AccountCode)
		}
	}
	byID := map[string]domain.Account{}
	byCode := map[string]domain.Account{}
	var err error
	if len(ids) > 0 {
		if byID, err = s.accountRepo.FindAccountsByIDs(ctx, ids); err != nil {
			return nil, fmt.Errorf("failed to load journal accounts: %w", err)
		}
	}
	if len(codes) > 0 {
		if byCode, err = s.accountRepo.FindAccountsByCodes(ctx, codes); err != nil {
			return nil, fmt.Errorf("failed to load journal accounts: %w", err)
		}
	}

	for i, l := range lines {
		var (
			acc   domain.Account
			found bool
			ref   = l.AccountID
		)
		if l.AccountID != "" {
			acc, found = byID[l.AccountID]
		} else {
			ref = l.AccountCode
			acc, found = byCode[l.AccountCode]
		}
		switch {
		case ref == "":
			c.fail(apperrors.ErrInactiveOrMissingAccount, fmt.Sprintf("line %d: no account given", i+1))
		case !found:
			c.fail(apperrors.ErrInactiveOrMissingAccount, fmt.Sprintf("line %d: account %s does not exist", i+1, ref))
		case !acc.IsActive && !allowInactive:
			c.fail(apperrors.ErrInactiveOrMissingAccount, fmt.Sprintf("line %d: account %s is inactive", i+1, acc.Code))
		}

		pl := domain.PreviewLine{JournalLine: l}
		if found {
			l.AccountID, l.AccountCode = acc.AccountID, acc.Code
			pl.AccountID, pl.AccountCode, pl.AccountName = acc.AccountID, acc.Code, acc.Name
			c.accounts[acc.AccountID] = acc
		}
		c.lines[i] = l
		c.preview.Lines[i] = pl
	}

	debit, credit := domain.JournalTotals(lines)
	c.preview.TotalDebit = debit
	c.preview.TotalCredit = credit
	c.preview.Difference = debit.Sub(credit)
	c.preview.IsBalanced = domain.WithinTolerance(debit, credit)
	if !c.preview.IsBalanced {
		c.fail(apperrors.ErrUnbalancedJournalEntry, fmt.Sprintf("debits %s do not equal credits %s", debit.StringFixed(2), credit.StringFixed(2)))
	}
	c.preview.CanPost = len(c.preview.Problems) == 0
	return c, nil
}

func (s *journalService) Preview(ctx context.Context, lines []domain.JournalLine) (*domain.JournalPreview, error) {
	checked, err := s.check(ctx, lines, false)
	if err != nil {
		s.LogError(ctx, err, "Failed to preview journal")
		return nil, err
	}
	return &checked.preview, nil
}

func (s *journalService) Post(ctx context.Context, req domain.PostingRequest, userID string) (string, error) {
	return s.post(ctx, req, userID)
}

// post runs the whole posting inside one transaction.
func (s *journalService) post(ctx context.Context, req domain.PostingRequest, userID string) (string, error) {
	if !req.Prefix.Valid() {
		return "", fmt.Errorf("%w: unknown journal prefix %q", apperrors.ErrValidation, req.Prefix)
	}
	if req.Date.IsZero() {
		return "", fmt.Errorf("%w: transaction date is required", apperrors.ErrValidation)
	}
	date := domain.DateOnly(req.Date)

	var number string
	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		checked, err := s.check(ctx, req.Lines, req.AllowInactive)
		if err != nil {
			return err
		}
		if checked.err != nil {
			return checked.err
		}
		if err := s.guard.EnsureDateOpen(ctx, date); err != nil {
			return err
		}

		seq, err := s.ledgerRepo.NextJournalSequence(ctx, req.Prefix)
		if err != nil {
			return fmt.Errorf("failed to allocate journal number: %w", err)
		}
		number = domain.FormatJournalNumber(req.Prefix, seq)
		taken, err := s.ledgerRepo.TransactionNumberExists(ctx, number)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("%w: %s", apperrors.ErrJournalNumberCollision, number)
		}

		now := s.Now()
		entries := make([]domain.LedgerEntry, len(checked.lines))
		for i, l := range checked.lines {
			desc := l.Description
			if desc == "" {
				desc = req.Description
			}
			entries[i] = domain.LedgerEntry{
				EntryID:           uuid.NewString(),
				TransactionNumber: number,
				LineNo:            i + 1,
				TransactionDate:   date,
				AccountID:         l.AccountID,
				Debit:             l.Debit,
				Credit:            l.Credit,
				Description:       desc,
				ReferenceType:     req.ReferenceType,
				ReferenceID:       req.ReferenceID,
				ReversalOf:        req.ReversalOf,
				CreatedAt:         now,
				CreatedBy:         userID,
			}
		}
		if err := s.ledgerRepo.InsertEntries(ctx, entries); err != nil {
			return err
		}

		types := make(map[string]domain.AccountType, len(checked.accounts))
		for id, acc := range checked.accounts {
			types[id] = acc.AccountType
		}
		changes, err := accounting.BalanceChanges(entries, types)
		if err != nil {
			return err
		}
		return s.accountRepo.ApplyBalanceChanges(ctx, changes, date, userID, now)
	})
	if err != nil {
		if isRejection(err) {
			s.LogWarn(ctx, "Journal rejected",
				slog.String("prefix", string(req.Prefix)),
				slog.String("reason", err.Error()))
		} else {
			s.LogError(ctx, err, "Failed to post journal", slog.String("prefix", string(req.Prefix)))
		}
		return "", err
	}

	s.LogInfo(ctx, "Journal posted",
		slog.String("transaction_number", number),
		slog.Int("lines", len(req.Lines)),
		slog.String("reference_type", req.ReferenceType),
		slog.String("reference_id", req.ReferenceID))
	return number, nil
}

func (s *journalService) GetTransaction(ctx context.Context, transactionNumber string) (*domain.JournalTransaction, error) {
	entries, err := s.ledgerRepo.FindEntriesByTransactionNumber(ctx, transactionNumber)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrTransactionNotFound, transactionNumber)
	}
	jt := domain.NewJournalTransaction(entries)
	if jt.ReversedBy, err = s.ledgerRepo.FindReversalOf(ctx, transactionNumber); err != nil {
		return nil, err
	}
	return jt, nil
}

func (s *journalService) Reverse(ctx context.Context, transactionNumber, reason, userID string) (string, error) {
	var reversal string
	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		entries, err := s.ledgerRepo.FindEntriesByTransactionNumber(ctx, transactionNumber)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return fmt.Errorf("%w: %s", apperrors.ErrTransactionNotFound, transactionNumber)
		}
		if orig := entries[0].ReversalOf; orig != "" {
			return fmt.Errorf("%w: %s is the reversal of %s", apperrors.ErrTransactionAlreadyReversed, transactionNumber, orig)
		}
		existing, err := s.ledgerRepo.FindReversalOf(ctx, transactionNumber)
		if err != nil {
			return err
		}
		if existing != "" {
			return fmt.Errorf("%w: %s was reversed by %s", apperrors.ErrTransactionAlreadyReversed, transactionNumber, existing)
		}

		lines := make([]domain.JournalLine, len(entries))
		for i, e := range entries {
			lines[i] = domain.JournalLine{AccountID: e.AccountID, Debit: e.Debit, Credit: e.Credit}.Swapped()
		}
		desc := "Reversal of " + transactionNumber
		if reason != "" {
			desc += ": " + reason
		}
		reversal, err = s.post(ctx, domain.PostingRequest{
			Prefix:        domain.PrefixReversal,
			Date:          s.Today(),
			Description:   desc,
			Lines:         lines,
			ReferenceType: entries[0].ReferenceType,
			ReferenceID:   entries[0].ReferenceID,
			ReversalOf:    transactionNumber,
			AllowInactive: true,
		}, userID)
		return err
	})
	if err != nil {
		return "", err
	}
	s.LogInfo(ctx, "Journal reversed",
		slog.String("transaction_number", transactionNumber),
		slog.String("reversal_number", reversal))
	return reversal, nil
}

func (s *journalService) ReverseByReference(ctx context.Context, referenceType, referenceID, reason, userID string) (*domain.ReversalOutcome, error) {
	numbers, err := s.ledgerRepo.FindTransactionNumbersByReference(ctx, referenceType, referenceID)
	if err != nil {
		s.LogError(ctx, err, "Failed to look up journals by reference",
			slog.String("reference_type", referenceType),
			slog.String("reference_id", referenceID))
		return nil, err
	}

	outcome := &domain.ReversalOutcome{
		ReferenceType: referenceType,
		ReferenceID:   referenceID,
		Reversed:      make(map[string]string, len(numbers)),
	}
	for _, number := range numbers {
		if domain.PrefixOf(number) == domain.PrefixReversal {
			continue
		}
		reversal, err := s.Reverse(ctx, number, reason, userID)
		switch {
		case err == nil:
			outcome.Reversed[number] = reversal
		case errors.Is(err, apperrors.ErrTransactionAlreadyReversed):
			s.LogDebug(ctx, "Journal already reversed", slog.String("transaction_number", number))
		default:
			outcome.Failed = append(outcome.Failed, domain.ReversalFailure{TransactionNumber: number, Reason: err.Error()})
			s.LogError(ctx, err, "Ledger out of step with domain record, manual reconciliation required",
				slog.String("transaction_number", number),
				slog.String("reference_type", referenceType),
				slog.String("reference_id", referenceID))
		}
	}
	return outcome, nil
}

func (s *journalService) GenerateForSale(ctx context.Context, sale domain.SaleSnapshot, userID string) (string, error) {
	if sale.SaleID == "" {
		return "", fmt.Errorf("%w: sale ID is required", apperrors.ErrValidation)
	}
	lines, err := BuildSaleLines(ctx, s.resolver, sale)
	if err != nil {
		return "", err
	}
	return s.Post(ctx, domain.PostingRequest{
		Prefix:        domain.PrefixSale,
		Date:          sale.Date,
		Description:   describe("Sale", sale.InvoiceNumber, sale.CustomerName),
		Lines:         lines,
		ReferenceType: domain.RefSale,
		ReferenceID:   sale.SaleID,
	}, userID)
}

func (s *journalService) GenerateForPurchase(ctx context.Context, purchase domain.PurchaseSnapshot, userID string) (string, error) {
	if purchase.PurchaseID == "" {
		return "", fmt.Errorf("%w: purchase ID is required", apperrors.ErrValidation)
	}
	lines, err := BuildPurchaseLines(ctx, s.resolver, purchase)
	if err != nil {
		return "", err
	}
	return s.Post(ctx, domain.PostingRequest{
		Prefix:        domain.PrefixPurchase,
		Date:          purchase.Date,
		Description:   describe("Purchase", purchase.BillNumber, purchase.SupplierName),
		Lines:         lines,
		ReferenceType: domain.RefPurchase,
		ReferenceID:   purchase.PurchaseID,
	}, userID)
}

func (s *journalService) GenerateForProduction(ctx context.Context, production domain.ProductionSnapshot, userID string) (string, error) {
	if production.ProductionID == "" {
		return "", fmt.Errorf("%w: production ID is required", apperrors.ErrValidation)
	}
	lines, err := BuildProductionLines(ctx, s.resolver, production)
	if err != nil {
		return "", err
	}
	return s.Post(ctx, domain.PostingRequest{
		Prefix:        domain.PrefixProduction,
		Date:          production.Date,
		Description:   describe("Production", production.BatchNumber, ""),
		Lines:         lines,
		ReferenceType: domain.RefProduction,
		ReferenceID:   production.ProductionID,
	}, userID)
}

func (s *journalService) GenerateForExpensePayment(ctx context.Context, payment domain.ExpensePaymentSnapshot, userID string) (string, error) {
	if payment.PaymentID == "" {
		return "", fmt.Errorf("%w: payment ID is required", apperrors.ErrValidation)
	}
	lines, err := BuildExpensePaymentLines(ctx, s.resolver, payment)
	if err != nil {
		return "", err
	}
	return s.Post(ctx, domain.PostingRequest{
		Prefix:        domain.PrefixPayment,
		Date:          payment.Date,
		Description:   describe("Expense payment", payment.Reference, payment.Payee),
		Lines:         lines,
		ReferenceType: domain.RefExpensePayment,
		ReferenceID:   payment.PaymentID,
	}, userID)
}

func (s *journalService) GenerateForInventoryAdjustment(ctx context.Context, adjustment domain.InventoryAdjustmentSnapshot, userID string) (string, error) {
	if adjustment.AdjustmentID == "" {
		return "", fmt.Errorf("%w: adjustment ID is required", apperrors.ErrValidation)
	}
	lines, err := BuildInventoryAdjustmentLines(ctx, s.resolver, adjustment)
	if err != nil {
		return "", err
	}
	return s.Post(ctx, domain.PostingRequest{
		Prefix:        domain.PrefixAdjustment,
		Date:          adjustment.Date,
		Description:   describe("Inventory adjustment", adjustment.Reference, adjustment.Reason),
		Lines:         lines,
		ReferenceType: domain.RefInventoryAdjustment,
		ReferenceID:   adjustment.AdjustmentID,
	}, userID)
}

func describe(noun, reference, party string) string {
	desc := noun
	if reference != "" {
		desc += " " + reference
	}
	if party != "" {
		desc += " - " + party
	}
	return desc
}

// isRejection reports whether err is a business rule refusal rather than a fault.
func isRejection(err error) bool {
	return errors.Is(err, apperrors.ErrValidation) ||
		errors.Is(err, apperrors.ErrConflict) ||
		errors.Is(err, apperrors.ErrNotFound) ||
		errors.Is(err, apperrors.ErrDuplicate) ||
		errors.Is(err, apperrors.ErrForbidden)
}
