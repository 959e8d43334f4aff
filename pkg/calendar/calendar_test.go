package calendar

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/planhub/planhub/pkg/planner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = context.Background()

type stubEventLister struct {
	events []planner.Event
}

func (s *stubEventLister) ListEvents(context.Context) ([]planner.Event, error) {
	return s.events, nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestEventsBetween(t *testing.T) {
	lister := &stubEventLister{events: []planner.Event{
		{Id: "before", StartDate: day(2025, 3, 1), EndDate: day(2025, 3, 2)},
		{Id: "overlap-start", StartDate: day(2025, 3, 30), EndDate: day(2025, 4, 2)},
		{Id: "inside", StartDate: day(2025, 4, 10), EndDate: day(2025, 4, 12)},
		{Id: "overlap-end", StartDate: day(2025, 4, 29), EndDate: day(2025, 5, 3)},
		{Id: "after", StartDate: day(2025, 5, 10), EndDate: day(2025, 5, 11)},
	}}
	service := NewService(lister)

	t.Run("returns events overlapping the range", func(t *testing.T) {
		// when
		events, err := service.EventsBetween(ctx, day(2025, 4, 1), day(2025, 4, 30))

		// then
		require.NoError(t, err)
		ids := make([]string, 0, len(events))
		for _, e := range events {
			ids = append(ids, e.Id)
		}
		assert.Equal(t, []string{"overlap-start", "inside", "overlap-end"}, ids)
	})

	t.Run("boundaries are inclusive", func(t *testing.T) {
		// when
		events, err := service.EventsBetween(ctx, day(2025, 3, 2), day(2025, 3, 2))

		// then
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "before", events[0].Id)
	})

	t.Run("empty range outside all events", func(t *testing.T) {
		// when
		events, err := service.EventsBetween(ctx, day(2026, 1, 1), day(2026, 1, 31))

		// then
		require.NoError(t, err)
		assert.Empty(t, events)
	})
}

func TestGoogleCalendarURL(t *testing.T) {
	t.Run("timed event combines dates with times", func(t *testing.T) {
		// given
		event := planner.Event{
			Title:       "Product Launch",
			Description: "Launch day",
			Location:    "Berlin",
			StartDate:   day(2025, 6, 12),
			EndDate:     day(2025, 6, 12),
			StartTime:   "09:30",
			EndTime:     "17:00",
		}

		// when
		link := GoogleCalendarURL(event)

		// then
		parsed, err := url.Parse(link)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(link, "https://calendar.google.com/calendar/render?"))
		query := parsed.Query()
		assert.Equal(t, "TEMPLATE", query.Get("action"))
		assert.Equal(t, "Product Launch", query.Get("text"))
		assert.Equal(t, "20250612T093000/20250612T170000", query.Get("dates"))
		assert.Equal(t, "Launch day", query.Get("details"))
		assert.Equal(t, "Berlin", query.Get("location"))
	})

	t.Run("event without times becomes an all-day range with exclusive end", func(t *testing.T) {
		// given
		event := planner.Event{
			Title:     "Team Retreat",
			StartDate: day(2025, 7, 1),
			EndDate:   day(2025, 7, 3),
		}

		// when
		link := GoogleCalendarURL(event)

		// then
		parsed, err := url.Parse(link)
		require.NoError(t, err)
		query := parsed.Query()
		assert.Equal(t, "20250701/20250704", query.Get("dates"))
		assert.Empty(t, query.Get("details"))
		assert.Empty(t, query.Get("location"))
	})
}
