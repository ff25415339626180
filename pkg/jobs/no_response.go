package jobs

import (
	"context"
	"time"

	"github.com/leadpulse/leadpulse/pkg/domain"
	"github.com/leadpulse/leadpulse/pkg/logger"
	"github.com/leadpulse/leadpulse/pkg/models"
)

// NoResponseSweeper flips contacted leads to no_response after a quiet
// period. It is, besides the campaign orchestrator, the only writer of
// contact_status.
type NoResponseSweeper struct {
	leads     domain.LeadStore
	ledger    domain.LedgerStore
	afterDays int
	log       logger.Logger
	now       func() time.Time
}

// NewNoResponseSweeper creates a sweeper that marks leads as no_response
// when they were contacted more than afterDays ago and never replied.
func NewNoResponseSweeper(leads domain.LeadStore, ledger domain.LedgerStore, afterDays int, log logger.Logger) *NoResponseSweeper {
	if log == nil {
		log = logger.Default()
	}
	return &NoResponseSweeper{
		leads:     leads,
		ledger:    ledger,
		afterDays: afterDays,
		log:       log,
		now:       time.Now,
	}
}

// Sweep runs one pass and returns how many leads were flipped.
func (s *NoResponseSweeper) Sweep(ctx context.Context) (int, error) {
	leads, err := s.leads.List(ctx, models.LeadFilter{
		ContactStatus: string(models.ContactStatusContacted),
	})
	if err != nil {
		return 0, err
	}

	cutoff := s.now().AddDate(0, 0, -s.afterDays)
	flipped := 0

	for _, lead := range leads {
		if lead.LastContacted == nil || lead.LastContacted.After(cutoff) {
			continue
		}
		if replied, err := s.hasReply(ctx, lead.ID); err != nil || replied {
			continue
		}

		noResponse := models.ContactStatusNoResponse
		if _, err := s.leads.Update(ctx, lead.ID, models.LeadPatch{
			ContactStatus: &noResponse,
		}); err != nil {
			s.log.Error("failed to mark lead as no_response", "lead_id", lead.ID, "error", err)
			continue
		}
		flipped++
	}

	if flipped > 0 {
		s.log.Info("no-response sweep finished", "flipped", flipped, "after_days", s.afterDays)
	}
	return flipped, nil
}

// hasReply reports whether any attempt for the lead recorded a response.
func (s *NoResponseSweeper) hasReply(ctx context.Context, leadID int) (bool, error) {
	attempts, err := s.ledger.ByLead(ctx, leadID)
	if err != nil {
		return false, err
	}
	for _, a := range attempts {
		if a.Status == models.DeliveryReplied || a.ResponseReceivedAt != nil {
			return true, nil
		}
	}
	return false, nil
}
