package templatestore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/leadpulse/leadpulse/pkg/domain"
	"github.com/leadpulse/leadpulse/pkg/models"
)

// MemoryStore is an in-memory template store for tests and development.
type MemoryStore struct {
	mu        sync.RWMutex
	templates map[int]models.ContactTemplate
}

// NewMemoryStore creates a template store pre-loaded with the given
// templates.
func NewMemoryStore(templates ...models.ContactTemplate) *MemoryStore {
	s := &MemoryStore{templates: make(map[int]models.ContactTemplate)}
	for _, t := range templates {
		s.templates[t.ID] = t
	}
	return s
}

// List returns active templates, optionally restricted to one channel.
func (s *MemoryStore) List(ctx context.Context, channel models.Channel) ([]models.ContactTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.ContactTemplate
	for _, t := range s.templates {
		if !t.IsActive {
			continue
		}
		if channel != "" && t.Type != channel {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Get returns one template by id.
func (s *MemoryStore) Get(ctx context.Context, id int) (*models.ContactTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.templates[id]
	if !ok {
		return nil, domain.NewNotFoundError("template")
	}
	return &t, nil
}

// DefaultTemplates returns the stock outreach templates the dashboard
// ships with, one per channel.
func DefaultTemplates() []models.ContactTemplate {
	createdAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return []models.ContactTemplate{
		{
			ID:      1,
			Name:    "HVAC Email Template",
			Type:    models.ChannelEmail,
			Subject: "Professional HVAC Services - Free Consultation",
			Content: `Hi {{firstName}},

I noticed your recent post about {{keywords}} in the {{groupName}} group.

As a local HVAC professional serving {{town}}, I'd love to help you with your heating and cooling needs. We specialize in:

• Heat pump installations and repairs
• Mini-split systems
• AC maintenance and replacement
• Energy-efficient solutions

I'm offering a FREE consultation to discuss your specific needs. Would you be interested in a quick 15-minute call this week?

Best regards,
[Your HVAC Business]
Phone: [Your Phone]
Licensed & Insured`,
			IsActive:  true,
			CreatedAt: createdAt,
		},
		{
			ID:        2,
			Name:      "HVAC SMS Template",
			Type:      models.ChannelSMS,
			Content:   `Hi {{firstName}}! Saw your post about {{keywords}} in {{groupName}}. Local HVAC pro here - offering free consultation for {{town}} residents. Interested? Reply YES for details!`,
			IsActive:  true,
			CreatedAt: createdAt,
		},
		{
			ID:        3,
			Name:      "Facebook Message Template",
			Type:      models.ChannelFacebook,
			Content:   `Hi {{firstName}}! I saw your post in {{groupName}} about {{keywords}}. I'm a local HVAC contractor in {{town}} and would love to help. Sending you a PM with some options!`,
			IsActive:  true,
			CreatedAt: createdAt,
		},
	}
}
