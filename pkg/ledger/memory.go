package ledger

import (
	"context"
	"sort"
	"sync"

	"github.com/leadpulse/leadpulse/pkg/models"
)

// MemoryStore is an in-memory, append-only contact ledger. Used in tests
// and single-node development mode.
type MemoryStore struct {
	mu       sync.RWMutex
	attempts []models.ContactAttempt
}

// NewMemoryStore creates an empty in-memory ledger.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Append records one contact attempt.
func (s *MemoryStore) Append(ctx context.Context, attempt models.ContactAttempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts = append(s.attempts, attempt)
	return nil
}

// ByLead returns the lead's attempts, most recent first.
func (s *MemoryStore) ByLead(ctx context.Context, leadID int) ([]models.ContactAttempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.ContactAttempt
	for _, a := range s.attempts {
		if a.LeadID == leadID {
			out = append(out, a)
		}
	}
	return newestFirst(out), nil
}

// Recent returns the n most recent attempts across all leads.
func (s *MemoryStore) Recent(ctx context.Context, n int) ([]models.ContactAttempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := newestFirst(append([]models.ContactAttempt(nil), s.attempts...))
	if n >= 0 && n < len(out) {
		out = out[:n]
	}
	return out, nil
}

// newestFirst orders attempts strictly descending by sent_at; equal
// timestamps break by insertion order with the later insert first.
func newestFirst(attempts []models.ContactAttempt) []models.ContactAttempt {
	// Reverse insertion order first so the stable sort keeps later
	// inserts ahead of earlier ones on timestamp ties.
	for i, j := 0, len(attempts)-1; i < j; i, j = i+1, j-1 {
		attempts[i], attempts[j] = attempts[j], attempts[i]
	}
	sort.SliceStable(attempts, func(i, j int) bool {
		return attempts[i].SentAt.After(attempts[j].SentAt)
	})
	return attempts
}
