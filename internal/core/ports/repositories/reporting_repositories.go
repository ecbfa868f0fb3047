package repositories

import (
	"context"

	"github.com/SscSPs/bizledger/internal/core/domain"
)

// ReportingRepository defines the aggregation every financial statement is derived from
type ReportingRepository interface {
	// AggregateBalances sums debits and credits per account. Every account
	// matching the type filter appears, with zero totals when it has no activity.
	AggregateBalances(ctx context.Context, q domain.AggregateQuery) ([]domain.AccountAggregate, error)
}
