package planner

import (
	"context"
	"errors"
)

// ErrNoSnapshot is returned by Load when the backend holds no collection yet
// (fresh install). The store reacts by seeding the demo events.
var ErrNoSnapshot = errors.New("no event snapshot stored")

// SnapshotStore is the persistence adapter consumed by the store. The whole
// collection is always written as one unit; there are no partial writes.
//
// Watch subscribes to rewrites of the snapshot performed by another process
// or store instance. The store adopts such snapshots wholesale
// (last-writer-wins), so concurrent edits from two sessions can clobber each
// other; that is accepted behavior at this system's scale.
type SnapshotStore interface {
	Load(ctx context.Context) ([]Event, error)
	SaveAll(ctx context.Context, events []Event) error
	Watch(fn func([]Event)) (unsubscribe func())
	Close() error
}
