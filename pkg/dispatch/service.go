package dispatch

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/leadpulse/leadpulse/pkg/domain"
	"github.com/leadpulse/leadpulse/pkg/logger"
	"github.com/leadpulse/leadpulse/pkg/models"
)

// ErrorKind classifies a failed dispatch. Every kind is per-lead and
// non-fatal to a bulk run.
type ErrorKind string

const (
	KindMissingLead       ErrorKind = "missing_lead"
	KindTransportTimeout  ErrorKind = "transport_timeout"
	KindTransportRejected ErrorKind = "transport_rejected"
	KindTransportAuth     ErrorKind = "transport_auth_error"
)

// Result is the outcome of a single dispatch. Transport failures never
// surface as Go errors: they are normalized into Kind.
type Result struct {
	Success bool
	Attempt *models.ContactAttempt
	Kind    ErrorKind
	Err     error
}

// OnSent is invoked with the new attempt immediately after a confirmed
// send, so ledger and UI can update incrementally during long bulk runs.
type OnSent func(models.ContactAttempt)

// Service sends one message through a chosen channel.
type Service struct {
	transports map[models.Channel]domain.Transport
	timeout    time.Duration
	log        logger.Logger
	now        func() time.Time

	// attemptSeq produces unique, monotonically increasing attempt ids.
	// Seeded from wall-clock milliseconds so ids stay time-ordered across
	// process restarts without colliding within a run.
	attemptSeq atomic.Int64
}

// NewService creates a new dispatch service. timeout bounds every
// transport call; a hung gateway resolves to a timeout result.
func NewService(transports map[models.Channel]domain.Transport, timeout time.Duration, log logger.Logger) *Service {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if log == nil {
		log = logger.Default()
	}
	s := &Service{
		transports: transports,
		timeout:    timeout,
		log:        log,
		now:        time.Now,
	}
	s.attemptSeq.Store(time.Now().UnixMilli())
	return s
}

// Dispatch sends message to the lead over channel. On confirmed delivery it
// builds the ContactAttempt record and pushes it to onSent (may be nil).
func (s *Service) Dispatch(ctx context.Context, lead models.Lead, channel models.Channel, subject, message string, onSent OnSent) Result {
	transport, ok := s.transports[channel]
	if !ok {
		return Result{
			Kind: KindTransportRejected,
			Err:  errors.New("no transport configured for channel " + string(channel)),
		}
	}

	destination := destinationFor(lead, channel)
	if destination == "" {
		return Result{
			Kind: KindTransportRejected,
			Err:  errors.New("lead has no destination for channel " + string(channel)),
		}
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err := transport.Send(sendCtx, destination, domain.OutboundMessage{Subject: subject, Body: message})
	if err != nil {
		kind := classify(err)
		s.log.Warn("dispatch failed",
			"lead_id", lead.ID, "channel", string(channel), "kind", string(kind), "error", err)
		return Result{Kind: kind, Err: err}
	}

	attempt := models.ContactAttempt{
		ID:             s.attemptSeq.Add(1),
		LeadID:         lead.ID,
		ContactType:    channel,
		MessageContent: message,
		SentAt:         s.now(),
		Status:         models.DeliverySent,
	}

	if onSent != nil {
		onSent(attempt)
	}

	return Result{Success: true, Attempt: &attempt}
}

// destinationFor picks the lead's contact surface for the channel.
func destinationFor(lead models.Lead, channel models.Channel) string {
	switch channel {
	case models.ChannelEmail:
		return lead.Email
	case models.ChannelSMS:
		return lead.Phone
	case models.ChannelFacebook:
		return lead.FacebookName
	}
	return ""
}

// classify normalizes transport errors into the error taxonomy.
func classify(err error) ErrorKind {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return KindTransportTimeout
	case errors.Is(err, domain.ErrTransportAuth):
		return KindTransportAuth
	default:
		return KindTransportRejected
	}
}
