package leadstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/leadpulse/leadpulse/pkg/domain"
	"github.com/leadpulse/leadpulse/pkg/models"
)

// MemoryStore is an in-memory lead store for tests and single-node
// development mode. Duplicate policy matches the Postgres store: one lead
// per (source, facebook_name).
type MemoryStore struct {
	mu     sync.RWMutex
	leads  map[int]*models.Lead
	nextID int
}

// NewMemoryStore creates an in-memory lead store, optionally pre-seeded.
func NewMemoryStore(seed ...models.Lead) *MemoryStore {
	s := &MemoryStore{leads: make(map[int]*models.Lead), nextID: 1}
	for i := range seed {
		l := seed[i]
		if l.ID >= s.nextID {
			s.nextID = l.ID + 1
		}
		s.leads[l.ID] = &l
	}
	return s
}

// List returns leads matching the filter, newest first.
func (s *MemoryStore) List(ctx context.Context, filter models.LeadFilter) ([]models.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Lead
	for _, l := range s.leads {
		if matches(*l, filter) {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DateAdded.Equal(out[j].DateAdded) {
			return out[i].DateAdded.After(out[j].DateAdded)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// Get returns one lead by id.
func (s *MemoryStore) Get(ctx context.Context, id int) (*models.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.leads[id]
	if !ok {
		return nil, domain.NewNotFoundError("lead")
	}
	cp := *l
	return &cp, nil
}

// Add inserts a new lead, rejecting duplicates by (source, facebook_name).
func (s *MemoryStore) Add(ctx context.Context, lead *models.Lead) (*models.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if lead.Source == "" {
		lead.Source = models.SourceFacebook
	}
	if lead.Status == "" {
		lead.Status = models.LeadStatusNew
	}
	if lead.ContactStatus == "" {
		lead.ContactStatus = models.ContactStatusNotContacted
	}

	for _, existing := range s.leads {
		if existing.Source == lead.Source && existing.FacebookName != "" && existing.FacebookName == lead.FacebookName {
			return nil, domain.NewConflictError("lead already exists")
		}
	}

	now := time.Now()
	lead.ID = s.nextID
	s.nextID++
	if lead.DateAdded.IsZero() {
		lead.DateAdded = now
	}
	lead.CreatedAt = now
	lead.UpdatedAt = now

	cp := *lead
	s.leads[lead.ID] = &cp
	return lead, nil
}

// Update applies a partial update and returns the updated lead.
func (s *MemoryStore) Update(ctx context.Context, id int, patch models.LeadPatch) (*models.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.leads[id]
	if !ok {
		return nil, domain.NewNotFoundError("lead")
	}

	if patch.FirstName != nil {
		l.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		l.LastName = *patch.LastName
	}
	if patch.Email != nil {
		l.Email = *patch.Email
	}
	if patch.Phone != nil {
		l.Phone = *patch.Phone
	}
	if patch.Town != nil {
		l.Town = *patch.Town
	}
	if patch.GroupName != nil {
		l.GroupName = *patch.GroupName
	}
	if patch.Keywords != nil {
		l.Keywords = patch.Keywords
	}
	if patch.Notes != nil {
		l.Notes = *patch.Notes
	}
	if patch.Status != nil {
		l.Status = *patch.Status
	}
	if patch.ContactStatus != nil {
		l.ContactStatus = *patch.ContactStatus
	}
	if patch.LastContacted != nil {
		l.LastContacted = patch.LastContacted
	}
	if patch.LeadScore != nil {
		l.LeadScore = *patch.LeadScore
	}
	l.UpdatedAt = time.Now()

	cp := *l
	return &cp, nil
}

// Delete removes a lead.
func (s *MemoryStore) Delete(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.leads[id]; !ok {
		return domain.NewNotFoundError("lead")
	}
	delete(s.leads, id)
	return nil
}

func matches(l models.Lead, f models.LeadFilter) bool {
	if f.ContactStatus != "" && string(l.ContactStatus) != f.ContactStatus {
		return false
	}
	if f.Status != "" && string(l.Status) != f.Status {
		return false
	}
	if f.Source != "" && string(l.Source) != f.Source {
		return false
	}
	if f.Town != "" && l.Town != f.Town {
		return false
	}
	if f.MinScore > 0 && l.LeadScore < f.MinScore {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		haystack := strings.ToLower(l.FirstName + " " + l.LastName + " " + l.GroupName + " " + l.Notes)
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}
