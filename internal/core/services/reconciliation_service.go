package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/SscSPs/bizledger/internal/apperrors"
	"github.com/SscSPs/bizledger/internal/core/domain"
	portsrepo "github.com/SscSPs/bizledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/bizledger/internal/core/ports/services"
)

// reconciliationService turns registered source documents into journals. The
// generated marker on each document is what keeps a sweep from posting twice.
type reconciliationService struct {
	BaseService
	txManager  portsrepo.TransactionManager
	sourceRepo portsrepo.SourceDocumentRepository
	generator  portssvc.JournalGeneratorSvc
	workers    int
}

// ReconciliationOption configures the reconciliation service.
type ReconciliationOption func(*reconciliationService)

// WithWorkers sets how many documents a sweep posts concurrently. Values below 2
// keep the sweep sequential.
func WithWorkers(n int) ReconciliationOption {
	return func(s *reconciliationService) {
		s.workers = n
	}
}

// WithReconciliationBase applies shared service options.
func WithReconciliationBase(opts ...Option) ReconciliationOption {
	return func(s *reconciliationService) {
		s.apply(opts)
	}
}

// NewReconciliationService creates the reconciliation service.
func NewReconciliationService(
	txManager portsrepo.TransactionManager,
	sourceRepo portsrepo.SourceDocumentRepository,
	generator portssvc.JournalGeneratorSvc,
	opts ...ReconciliationOption,
) portssvc.ReconciliationSvcFacade {
	svc := &reconciliationService{
		txManager:  txManager,
		sourceRepo: sourceRepo,
		generator:  generator,
		workers:    1,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

var _ portssvc.ReconciliationSvcFacade = (*reconciliationService)(nil)

func (s *reconciliationService) RegisterSource(ctx context.Context, doc domain.SourceDocument) (*domain.SourceDocument, error) {
	doc.SourceID = strings.TrimSpace(doc.SourceID)
	if !doc.SourceType.Valid() {
		return nil, fmt.Errorf("%w: unknown source type %q", apperrors.ErrValidation, doc.SourceType)
	}
	if doc.SourceID == "" {
		return nil, fmt.Errorf("%w: source ID is required", apperrors.ErrValidation)
	}
	reference, err := sourceReference(doc)
	if err != nil {
		return nil, err
	}
	if doc.Reference == "" {
		doc.Reference = reference
	}
	doc.JournalGenerated = false
	doc.TransactionNumber = ""
	doc.GeneratedAt = nil
	doc.CreatedAt = s.Now()

	if err := s.sourceRepo.SaveSource(ctx, doc); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			s.LogError(ctx, err, "Failed to register source document",
				slog.String("source_type", string(doc.SourceType)),
				slog.String("source_id", doc.SourceID))
		}
		return nil, err
	}
	s.LogInfo(ctx, "Source document registered",
		slog.String("source_type", string(doc.SourceType)),
		slog.String("source_id", doc.SourceID))
	return &doc, nil
}

func (s *reconciliationService) GenerateForSource(ctx context.Context, sourceType domain.SourceType, sourceID, userID string) (string, error) {
	var number string
	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.sourceRepo.FindSource(ctx, sourceType, sourceID)
		if err != nil {
			return err
		}
		if doc.JournalGenerated {
			return fmt.Errorf("%w: journal %s already generated for %s %s",
				apperrors.ErrConflict, doc.TransactionNumber, sourceType, sourceID)
		}
		if number, err = s.generate(ctx, *doc, userID); err != nil {
			return err
		}
		return s.sourceRepo.MarkGenerated(ctx, sourceType, sourceID, number, s.Now())
	})
	if err != nil {
		return "", err
	}
	return number, nil
}

func (s *reconciliationService) generate(ctx context.Context, doc domain.SourceDocument, userID string) (string, error) {
	switch doc.SourceType {
	case domain.SourceSale:
		var sale domain.SaleSnapshot
		if err := decodePayload(doc, &sale); err != nil {
			return "", err
		}
		return s.generator.GenerateForSale(ctx, sale, userID)
	case domain.SourcePurchase:
		var purchase domain.PurchaseSnapshot
		if err := decodePayload(doc, &purchase); err != nil {
			return "", err
		}
		return s.generator.GenerateForPurchase(ctx, purchase, userID)
	case domain.SourceProduction:
		var production domain.ProductionSnapshot
		if err := decodePayload(doc, &production); err != nil {
			return "", err
		}
		return s.generator.GenerateForProduction(ctx, production, userID)
	case domain.SourceExpensePayment:
		var payment domain.ExpensePaymentSnapshot
		if err := decodePayload(doc, &payment); err != nil {
			return "", err
		}
		return s.generator.GenerateForExpensePayment(ctx, payment, userID)
	case domain.SourceInventoryAdjustment:
		var adj domain.InventoryAdjustmentSnapshot
		if err := decodePayload(doc, &adj); err != nil {
			return "", err
		}
		return s.generator.GenerateForInventoryAdjustment(ctx, adj, userID)
	}
	return "", fmt.Errorf("%w: unknown source type %q", apperrors.ErrValidation, doc.SourceType)
}

func decodePayload(doc domain.SourceDocument, v any) error {
	if len(doc.Payload) == 0 {
		return fmt.Errorf("%w: %s %s has no payload", apperrors.ErrValidation, doc.SourceType, doc.SourceID)
	}
	if err := json.Unmarshal(doc.Payload, v); err != nil {
		return fmt.Errorf("%w: %s %s payload: %v", apperrors.ErrValidation, doc.SourceType, doc.SourceID, err)
	}
	return nil
}

// sourceReference decodes the payload once to reject garbage early and returns
// the document's human reference (invoice number, bill number and so on).
func sourceReference(doc domain.SourceDocument) (string, error) {
	switch doc.SourceType {
	case domain.SourceSale:
		var v domain.SaleSnapshot
		err := decodePayload(doc, &v)
		return v.InvoiceNumber, err
	case domain.SourcePurchase:
		var v domain.PurchaseSnapshot
		err := decodePayload(doc, &v)
		return v.BillNumber, err
	case domain.SourceProduction:
		var v domain.ProductionSnapshot
		err := decodePayload(doc, &v)
		return v.BatchNumber, err
	case domain.SourceExpensePayment:
		var v domain.ExpensePaymentSnapshot
		err := decodePayload(doc, &v)
		return v.Reference, err
	case domain.SourceInventoryAdjustment:
		var v domain.InventoryAdjustmentSnapshot
		err := decodePayload(doc, &v)
		return v.Reference, err
	}
	return "", fmt.Errorf("%w: unknown source type %q", apperrors.ErrValidation, doc.SourceType)
}

type sweepResult struct {
	number string
	err    error
}

func (s *reconciliationService) GenerateForAllUngenerated(ctx context.Context, userID string) (*domain.ReconciliationReport, error) {
	report := &domain.ReconciliationReport{
		StartedAt: s.Now(),
		Succeeded: []domain.ReconciledItem{},
		Failed:    []domain.FailedItem{},
	}
	docs, err := s.sourceRepo.ListUngenerated(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list ungenerated source documents")
		return nil, err
	}

	results := make([]sweepResult, len(docs))
	if s.workers > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.workers)
		for i, doc := range docs {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					results[i] = sweepResult{err: err}
					return nil
				}
				number, err := s.GenerateForSource(gctx, doc.SourceType, doc.SourceID, userID)
				results[i] = sweepResult{number: number, err: err}
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i, doc := range docs {
			if err := ctx.Err(); err != nil {
				results[i] = sweepResult{err: err}
				continue
			}
			number, err := s.GenerateForSource(ctx, doc.SourceType, doc.SourceID, userID)
			results[i] = sweepResult{number: number, err: err}
		}
	}

	for i, doc := range docs {
		r := results[i]
		if r.err != nil {
			report.Failed = append(report.Failed, domain.FailedItem{
				SourceType: doc.SourceType,
				SourceID:   doc.SourceID,
				Reason:     r.err.Error(),
			})
			s.LogWarn(ctx, "Journal generation failed",
				slog.String("source_type", string(doc.SourceType)),
				slog.String("source_id", doc.SourceID),
				slog.String("reason", r.err.Error()))
			continue
		}
		report.Succeeded = append(report.Succeeded, domain.ReconciledItem{
			SourceType:        doc.SourceType,
			SourceID:          doc.SourceID,
			TransactionNumber: r.number,
		})
	}
	report.FinishedAt = s.Now()

	s.LogInfo(ctx, "Reconciliation sweep finished",
		slog.Int("documents", len(docs)),
		slog.Int("succeeded", len(report.Succeeded)),
		slog.Int("failed", len(report.Failed)),
		slog.Int("workers", s.workers))
	return report, nil
}
