package planner

import "context"

// StubSnapshotStore is an in-memory SnapshotStore for service tests. It can
// simulate an empty backend, a failing write, and external snapshot rewrites.
type StubSnapshotStore struct {
	snapshot    []Event
	hasSnapshot bool
	saveErr     error
	SaveCalls   int
	watchers    []func([]Event)
}

func NewStubSnapshotStore() *StubSnapshotStore {
	return &StubSnapshotStore{}
}

func (s *StubSnapshotStore) Load(_ context.Context) ([]Event, error) {
	if !s.hasSnapshot {
		return nil, ErrNoSnapshot
	}
	return cloneAll(s.snapshot), nil
}

func (s *StubSnapshotStore) SaveAll(_ context.Context, events []Event) error {
	s.SaveCalls++
	if s.saveErr != nil {
		err := s.saveErr
		s.saveErr = nil
		return err
	}
	s.snapshot = cloneAll(events)
	s.hasSnapshot = true
	return nil
}

func (s *StubSnapshotStore) Watch(fn func([]Event)) func() {
	s.watchers = append(s.watchers, fn)
	return func() {}
}

func (s *StubSnapshotStore) Close() error {
	return nil
}

// FailNextSave makes the next SaveAll return err, then recover.
func (s *StubSnapshotStore) FailNextSave(err error) {
	s.saveErr = err
}

// Seed pre-populates the backend as if a previous run had persisted events.
func (s *StubSnapshotStore) Seed(events []Event) {
	s.snapshot = cloneAll(events)
	s.hasSnapshot = true
}

// SimulateExternalChange acts as another process rewriting the snapshot.
func (s *StubSnapshotStore) SimulateExternalChange(events []Event) {
	s.snapshot = cloneAll(events)
	s.hasSnapshot = true
	for _, fn := range s.watchers {
		fn(cloneAll(events))
	}
}

// Stored returns the last persisted snapshot.
func (s *StubSnapshotStore) Stored() []Event {
	return cloneAll(s.snapshot)
}
