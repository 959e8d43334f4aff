package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/planhub/planhub/pkg/planner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEvents() []planner.Event {
	return []planner.Event{
		{
			Id:        "e1",
			Title:     "Company Offsite",
			StartDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC),
			StartTime: "09:00",
			EndTime:   "17:00",
			Status:    planner.EventStatusInProgress,
			Attendees: 40,
			Progress:  50,
			Tasks: []planner.Task{
				{Id: "t1", Title: "Book venue", Priority: planner.TaskPriorityHigh, Completed: true},
				{Id: "t2", Title: "Send invites", Priority: planner.TaskPriorityMedium},
			},
			Budget: planner.Budget{
				TotalEstimated: 1200,
				TotalActual:    800,
				Items: []planner.BudgetItem{
					{Id: "b1", Category: "Venue", EstimatedAmount: 1200, ActualAmount: 800, Status: planner.BudgetItemStatusInProgress},
				},
			},
		},
		{
			Id:        "e2",
			Title:     "Board Meeting",
			StartDate: time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC),
			Status:    planner.EventStatusNotStarted,
			Tasks:     []planner.Task{},
			Budget:    planner.Budget{Items: []planner.BudgetItem{}},
		},
	}
}

func TestBoltStore_RoundTrip(t *testing.T) {
	t.Run("load without a snapshot reports ErrNoSnapshot", func(t *testing.T) {
		store, err := OpenBolt(filepath.Join(t.TempDir(), "planhub.db"))
		require.NoError(t, err)
		defer store.Close()

		_, err = store.Load(context.Background())
		assert.ErrorIs(t, err, planner.ErrNoSnapshot)
	})

	t.Run("save then load returns a structurally equal collection", func(t *testing.T) {
		store, err := OpenBolt(filepath.Join(t.TempDir(), "planhub.db"))
		require.NoError(t, err)
		defer store.Close()
		events := sampleEvents()

		require.NoError(t, store.SaveAll(context.Background(), events))
		loaded, err := store.Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, events, loaded)

		// Re-saving what was loaded is idempotent.
		require.NoError(t, store.SaveAll(context.Background(), loaded))
		again, err := store.Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, loaded, again)
	})

	t.Run("snapshot survives reopening the file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "planhub.db")
		store, err := OpenBolt(path)
		require.NoError(t, err)
		require.NoError(t, store.SaveAll(context.Background(), sampleEvents()))
		require.NoError(t, store.Close())

		reopened, err := OpenBolt(path)
		require.NoError(t, err)
		defer reopened.Close()
		loaded, err := reopened.Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, sampleEvents(), loaded)
	})
}

func TestMemoryStore(t *testing.T) {
	t.Run("round-trips the collection", func(t *testing.T) {
		store := NewMemoryStore()
		defer store.Close()

		_, err := store.Load(context.Background())
		assert.ErrorIs(t, err, planner.ErrNoSnapshot)

		require.NoError(t, store.SaveAll(context.Background(), sampleEvents()))
		loaded, err := store.Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, sampleEvents(), loaded)
	})

	t.Run("external change notifies watchers with the new snapshot", func(t *testing.T) {
		store := NewMemoryStore()
		defer store.Close()

		var observed []planner.Event
		unsubscribe := store.Watch(func(events []planner.Event) {
			observed = events
		})
		defer unsubscribe()

		store.ExternalChange(sampleEvents())

		assert.Equal(t, sampleEvents(), observed)
		loaded, err := store.Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, sampleEvents(), loaded)
	})

	t.Run("unsubscribed watcher is not called", func(t *testing.T) {
		store := NewMemoryStore()
		defer store.Close()

		called := false
		unsubscribe := store.Watch(func([]planner.Event) { called = true })
		unsubscribe()

		store.ExternalChange(sampleEvents())
		assert.False(t, called)
	})
}
