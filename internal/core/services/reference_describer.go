package services

import (
	"context"

	"github.com/SscSPs/bizledger/internal/core/domain"
	portsrepo "github.com/SscSPs/bizledger/internal/core/ports/repositories"
)

// ReferenceDescriber turns an entry's reference into a human description such as
// "Sale INV-1021". An empty string means nothing better than the entry's own
// description is known.
type ReferenceDescriber interface {
	Describe(ctx context.Context, referenceType, referenceID string) (string, error)
}

type sourceDescriber struct {
	sourceRepo portsrepo.SourceDocumentRepository
}

// NewSourceDescriber describes references through the registered source documents.
func NewSourceDescriber(sourceRepo portsrepo.SourceDocumentRepository) ReferenceDescriber {
	return &sourceDescriber{sourceRepo: sourceRepo}
}

var referenceSources = map[string]domain.SourceType{
	domain.RefSale:                domain.SourceSale,
	domain.RefPurchase:            domain.SourcePurchase,
	domain.RefProduction:          domain.SourceProduction,
	domain.RefExpensePayment:      domain.SourceExpensePayment,
	domain.RefInventoryAdjustment: domain.SourceInventoryAdjustment,
}

func (d *sourceDescriber) Describe(ctx context.Context, referenceType, referenceID string) (string, error) {
	if referenceType == domain.RefPeriodClose {
		return "Year-end closing", nil
	}
	sourceType, ok := referenceSources[referenceType]
	if !ok || referenceID == "" {
		return "", nil
	}
	doc, err := d.sourceRepo.FindSource(ctx, sourceType, referenceID)
	if err != nil {
		return "", err
	}
	if doc.Reference == "" {
		return sourceType.Label() + " " + doc.SourceID, nil
	}
	return sourceType.Label() + " " + doc.Reference, nil
}
