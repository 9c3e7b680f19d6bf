// Package memory keeps mood history in process memory. Used for tests and
// for `serve` runs that do not need persistence.
package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/keshangamage/Moodmate/internal/model"
)

type Store struct {
	mu      sync.RWMutex
	history map[string][]model.Entry
	ids     map[string]bool
}

func NewStore() *Store {
	return &Store{
		history: map[string][]model.Entry{},
		ids:     map[string]bool{},
	}
}

func (s *Store) AppendEntry(_ context.Context, userID string, e model.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ID != "" && s.ids[e.ID] {
		return fmt.Errorf("entry %q already exists", e.ID)
	}
	s.history[userID] = append(s.history[userID], cloneEntry(e))
	if e.ID != "" {
		s.ids[e.ID] = true
	}
	slog.Debug("appended entry", "store", "memory", "user", userID, "id", e.ID)
	return nil
}

// LoadHistory returns deep copies so callers cannot alter stored entries.
func (s *Store) LoadHistory(_ context.Context, userID string) ([]model.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.history[userID]
	out := make([]model.Entry, 0, len(stored))
	for _, e := range stored {
		out = append(out, cloneEntry(e))
	}
	return out, nil
}

func cloneEntry(e model.Entry) model.Entry {
	e.Activities = append([]model.Activity(nil), e.Activities...)
	e.PhysicalHealth = append([]model.HealthTag(nil), e.PhysicalHealth...)
	return e
}
