package campaign

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/leadpulse/leadpulse/pkg/dispatch"
	"github.com/leadpulse/leadpulse/pkg/domain"
	"github.com/leadpulse/leadpulse/pkg/logger"
	"github.com/leadpulse/leadpulse/pkg/models"
	"github.com/leadpulse/leadpulse/pkg/personalize"
	"github.com/leadpulse/leadpulse/pkg/render"
)

// Call-fatal errors. All are returned before any dispatch begins and leave
// zero side effects.
var (
	// ErrCampaignAlreadyRunning rejects a second run while one is in flight.
	ErrCampaignAlreadyRunning = errors.New("a campaign run is already in progress")
	// ErrEmptySelection rejects a run with no leads selected.
	ErrEmptySelection = errors.New("no leads selected")
	// ErrNoTemplateSelected rejects a run without a usable template.
	ErrNoTemplateSelected = errors.New("no template selected")
	// ErrChannelMismatch rejects a template used with the wrong channel.
	ErrChannelMismatch = errors.New("template channel does not match requested channel")
)

// Events receives run notifications. Subscribers (UI push, metrics) get
// AttemptRecorded immediately after each confirmed send and
// ProgressUpdated after every processed lead, success or failure.
type Events interface {
	AttemptRecorded(attempt models.ContactAttempt)
	ProgressUpdated(percent float64)
}

// RunRequest describes one bulk contact run.
type RunRequest struct {
	LeadIDs    []int
	Channel    models.Channel
	TemplateID int
}

// LeadFailure records one per-lead failure inside a run.
type LeadFailure struct {
	LeadID int                `json:"lead_id"`
	Kind   dispatch.ErrorKind `json:"kind"`
}

// Report summarizes a completed (or cancelled) run.
type Report struct {
	TotalRequested int           `json:"total_requested"`
	Succeeded      int           `json:"succeeded"`
	Failed         []LeadFailure `json:"failed"`
	Cancelled      bool          `json:"cancelled"`
	StartedAt      time.Time     `json:"started_at"`
	FinishedAt     time.Time     `json:"finished_at"`
}

// Service orchestrates bulk contact runs. It is the sole writer of
// Lead.contact_status / last_contacted and the sole appender to the
// contact ledger during a run.
type Service struct {
	leads        domain.LeadStore
	templates    domain.TemplateStore
	ledger       domain.LedgerStore
	personalizer *personalize.Service
	dispatcher   *dispatch.Service
	sendDelay    time.Duration
	log          logger.Logger
	now          func() time.Time

	// runMu enforces at most one run in flight.
	runMu sync.Mutex

	subMu       sync.RWMutex
	subscribers []Events
}

// NewService creates a campaign orchestrator. sendDelay is the fixed pause
// between consecutive dispatches, a deliberate backpressure mechanism
// against external rate limits.
func NewService(
	leads domain.LeadStore,
	templates domain.TemplateStore,
	ledger domain.LedgerStore,
	personalizer *personalize.Service,
	dispatcher *dispatch.Service,
	sendDelay time.Duration,
	log logger.Logger,
) *Service {
	if log == nil {
		log = logger.Default()
	}
	return &Service{
		leads:        leads,
		templates:    templates,
		ledger:       ledger,
		personalizer: personalizer,
		dispatcher:   dispatcher,
		sendDelay:    sendDelay,
		log:          log,
		now:          time.Now,
	}
}

// Subscribe registers an event consumer. Must be called before Run.
func (s *Service) Subscribe(ev Events) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.subscribers = append(s.subscribers, ev)
}

// Run executes one bulk contact run, processing leads strictly in the
// given order. Per-lead failures are aggregated into the report and never
// abort the run. Cancellation is honoured between leads only: an in-flight
// dispatch always completes or times out before the rest of the queue is
// abandoned.
func (s *Service) Run(ctx context.Context, req RunRequest) (*Report, error) {
	if len(req.LeadIDs) == 0 {
		return nil, ErrEmptySelection
	}
	if !req.Channel.Valid() {
		return nil, ErrChannelMismatch
	}
	if req.TemplateID == 0 {
		return nil, ErrNoTemplateSelected
	}

	if !s.runMu.TryLock() {
		return nil, ErrCampaignAlreadyRunning
	}
	defer s.runMu.Unlock()

	template, err := s.templates.Get(ctx, req.TemplateID)
	if err != nil || template == nil || !template.IsActive {
		return nil, ErrNoTemplateSelected
	}
	if template.Type != req.Channel {
		return nil, ErrChannelMismatch
	}

	report := &Report{
		TotalRequested: len(req.LeadIDs),
		StartedAt:      s.now(),
	}
	total := len(req.LeadIDs)
	completed := 0

	s.log.Info("campaign run started",
		"leads", total, "channel", string(req.Channel), "template_id", template.ID)

	for i, leadID := range req.LeadIDs {
		if ctx.Err() != nil {
			report.Cancelled = true
			break
		}
		if i > 0 {
			// Inter-send pacing to avoid bursting the external transport.
			if !s.pace(ctx) {
				report.Cancelled = true
				break
			}
		}

		s.processLead(ctx, leadID, req.Channel, *template, report)

		completed++
		s.emitProgress(float64(completed) / float64(total) * 100)
	}

	report.FinishedAt = s.now()
	s.log.Info("campaign run finished",
		"requested", report.TotalRequested,
		"succeeded", report.Succeeded,
		"failed", len(report.Failed),
		"cancelled", report.Cancelled,
	)

	return report, nil
}

// processLead handles a single lead: lookup, personalization, dispatch, and
// on success the status write-back plus ledger append.
func (s *Service) processLead(ctx context.Context, leadID int, channel models.Channel, template models.ContactTemplate, report *Report) {
	lead, err := s.leads.Get(ctx, leadID)
	if err != nil || lead == nil {
		report.Failed = append(report.Failed, LeadFailure{LeadID: leadID, Kind: dispatch.KindMissingLead})
		return
	}

	// Personalization never fails logically: the adapter falls back to
	// deterministic rendering internally.
	message := s.personalizer.Personalize(ctx, *lead, template)
	subject := render.Render(template.Subject, *lead)

	result := s.dispatcher.Dispatch(ctx, *lead, channel, subject, message, s.emitAttempt)
	if !result.Success {
		report.Failed = append(report.Failed, LeadFailure{LeadID: leadID, Kind: result.Kind})
		return
	}

	now := result.Attempt.SentAt
	contacted := models.ContactStatusContacted
	if _, err := s.leads.Update(ctx, leadID, models.LeadPatch{
		ContactStatus: &contacted,
		LastContacted: &now,
	}); err != nil {
		s.log.Error("failed to update lead contact status", "lead_id", leadID, "error", err)
	}

	if err := s.ledger.Append(ctx, *result.Attempt); err != nil {
		s.log.Error("failed to append contact attempt to ledger", "lead_id", leadID, "error", err)
	}

	report.Succeeded++
}

// pace blocks for the configured inter-send delay. Returns false if the
// run was cancelled while waiting.
func (s *Service) pace(ctx context.Context) bool {
	if s.sendDelay <= 0 {
		return true
	}
	timer := time.NewTimer(s.sendDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func (s *Service) emitAttempt(attempt models.ContactAttempt) {
	s.subMu.RLock()
	defer s.subMu.RUnlock()
	for _, sub := range s.subscribers {
		sub.AttemptRecorded(attempt)
	}
}

func (s *Service) emitProgress(percent float64) {
	s.subMu.RLock()
	defer s.subMu.RUnlock()
	for _, sub := range s.subscribers {
		sub.ProgressUpdated(percent)
	}
}
