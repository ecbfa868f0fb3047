package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/bizledger/internal/apperrors"
	"github.com/SscSPs/bizledger/internal/core/domain"
	portsrepo "github.com/SscSPs/bizledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/bizledger/internal/core/ports/services"
)

// periodGuard rejects postings dated inside a closed financial period. Dates no
// period covers are accepted. The covering period stays share-locked until the
// posting commits, so a concurrent close waits for it.
type periodGuard struct {
	periodRepo portsrepo.PeriodLocker
}

// NewPostingGuard creates the guard the journal engine consults before posting.
func NewPostingGuard(periodRepo portsrepo.PeriodLocker) portssvc.PostingGuard {
	return &periodGuard{periodRepo: periodRepo}
}

var _ portssvc.PostingGuard = (*periodGuard)(nil)

func (g *periodGuard) EnsureDateOpen(ctx context.Context, date time.Time) error {
	period, err := g.periodRepo.LockPeriodForDate(ctx, domain.DateOnly(date))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		return err
	}
	if period.IsClosed {
		return fmt.Errorf("%w: %s falls in %s", apperrors.ErrPostingPeriodClosed,
			date.Format(domain.DateLayout), period.Name)
	}
	return nil
}
