package domain

import (
	"context"
	"errors"
	"time"

	"github.com/leadpulse/leadpulse/pkg/models"
)

// LeadStore defines data access operations for leads. Duplicate-detection
// policy on Add is owned by the store implementation.
type LeadStore interface {
	List(ctx context.Context, filter models.LeadFilter) ([]models.Lead, error)
	Get(ctx context.Context, id int) (*models.Lead, error)
	Add(ctx context.Context, lead *models.Lead) (*models.Lead, error)
	Update(ctx context.Context, id int, patch models.LeadPatch) (*models.Lead, error)
	Delete(ctx context.Context, id int) error
}

// TemplateStore defines data access operations for contact templates
type TemplateStore interface {
	List(ctx context.Context, channel models.Channel) ([]models.ContactTemplate, error)
	Get(ctx context.Context, id int) (*models.ContactTemplate, error)
}

// LedgerStore persists contact attempts. Append-only: implementations must
// not expose mutation or deletion of recorded attempts.
type LedgerStore interface {
	Append(ctx context.Context, attempt models.ContactAttempt) error
	ByLead(ctx context.Context, leadID int) ([]models.ContactAttempt, error)
	Recent(ctx context.Context, n int) ([]models.ContactAttempt, error)
}

// TextGenerator defines the external text-generation provider used for
// message personalization.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// OutboundMessage is the channel-agnostic payload handed to a transport.
type OutboundMessage struct {
	Subject string
	Body    string
}

// Transport delivers one message through a single channel (email gateway,
// SMS gateway, social messaging endpoint).
type Transport interface {
	Send(ctx context.Context, destination string, msg OutboundMessage) error
}

// Transport error sentinels. Implementations wrap these so the dispatcher
// can normalize gateway-specific failures into the error taxonomy.
var (
	// ErrTransportAuth marks a rejected or expired gateway credential.
	ErrTransportAuth = errors.New("transport authentication failed")
	// ErrTransportRejected marks a message the gateway refused to accept.
	ErrTransportRejected = errors.New("transport rejected message")
)

// UserStore defines data access operations for dashboard operator accounts
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// CacheRepository defines caching operations
type CacheRepository interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, keys ...string) error
	DeletePattern(ctx context.Context, pattern string) error
	Close() error
}
