package storage

import (
	"context"
	"sync"

	"github.com/planhub/planhub/pkg/planner"
)

// MemoryStore keeps the snapshot in memory only. Used in demo mode and in
// tests; nothing survives a restart.
type MemoryStore struct {
	mu          sync.Mutex
	snapshot    []planner.Event
	hasSnapshot bool
	watchers    map[uint64]func([]planner.Event)
	nextId      uint64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{watchers: make(map[uint64]func([]planner.Event))}
}

func (s *MemoryStore) Load(_ context.Context) ([]planner.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasSnapshot {
		return nil, planner.ErrNoSnapshot
	}
	return cloneEvents(s.snapshot), nil
}

func (s *MemoryStore) SaveAll(_ context.Context, events []planner.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = cloneEvents(events)
	s.hasSnapshot = true
	return nil
}

func (s *MemoryStore) Watch(fn func([]planner.Event)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextId++
	id := s.nextId
	s.watchers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.watchers, id)
	}
}

func (s *MemoryStore) Close() error {
	return nil
}

// ExternalChange overwrites the snapshot as another process would and
// notifies all watchers. Test hook for the external-change adoption path.
func (s *MemoryStore) ExternalChange(events []planner.Event) {
	s.mu.Lock()
	s.snapshot = cloneEvents(events)
	s.hasSnapshot = true
	watchers := make([]func([]planner.Event), 0, len(s.watchers))
	for _, fn := range s.watchers {
		watchers = append(watchers, fn)
	}
	s.mu.Unlock()

	for _, fn := range watchers {
		fn(cloneEvents(events))
	}
}

func cloneEvents(events []planner.Event) []planner.Event {
	clones := make([]planner.Event, len(events))
	for i, e := range events {
		clones[i] = e.Clone()
	}
	return clones
}
