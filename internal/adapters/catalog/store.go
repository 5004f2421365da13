// Package catalog holds the static event catalog recommendations are drawn from.
package catalog

import (
	"context"
	"sync"

	"github.com/okian/eventmatch/internal/domain/model"
	"github.com/okian/eventmatch/pkg/metrics"
)

// Store provides read access to the event catalog.
type Store interface {
	// List returns every event in catalog order.
	List(ctx context.Context) ([]model.Event, error)

	// Get returns one event by id.
	// Returns ErrNotFound if the id is unknown.
	Get(ctx context.Context, id string) (model.Event, error)

	// Count returns the number of events in the catalog.
	Count(ctx context.Context) int
}

// InMemoryStore is a read-mostly Store. Reads return copies, so callers may
// modify what they get back.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []model.Event
	byID   map[string]int
}

var _ Store = (*InMemoryStore)(nil)

// NewInMemoryStore constructs a store holding events.
func NewInMemoryStore(events []model.Event) *InMemoryStore {
	s := &InMemoryStore{}
	s.Replace(events)
	return s
}

// Replace swaps the catalog contents. Later duplicates of an id shadow earlier ones in Get.
func (s *InMemoryStore) Replace(events []model.Event) {
	cp := make([]model.Event, len(events))
	byID := make(map[string]int, len(events))
	for i, ev := range events {
		cp[i] = cloneEvent(ev)
		byID[ev.ID] = i
	}

	s.mu.Lock()
	s.events = cp
	s.byID = byID
	s.mu.Unlock()

	metrics.UpdateCatalogEvents(len(cp))
}

// List implements Store.List.
func (s *InMemoryStore) List(ctx context.Context) ([]model.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Event, len(s.events))
	for i, ev := range s.events {
		out[i] = cloneEvent(ev)
	}
	return out, nil
}

// Get implements Store.Get.
func (s *InMemoryStore) Get(ctx context.Context, id string) (model.Event, error) {
	if err := ctx.Err(); err != nil {
		return model.Event{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byID[id]
	if !ok {
		return model.Event{}, ErrNotFound
	}
	return cloneEvent(s.events[i]), nil
}

// Count implements Store.Count.
func (s *InMemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

func cloneEvent(ev model.Event) model.Event {
	ev.Skills = append([]string(nil), ev.Skills...)
	return ev
}
