package calendar

import (
	"context"
	"net/url"
	"time"

	"github.com/planhub/planhub/pkg/planner"
)

const (
	googleCalendarBase = "https://calendar.google.com/calendar/render"
	timedLayout        = "20060102T150405"
	allDayLayout       = "20060102"
	clockLayout        = "15:04"
)

// EventLister is the read slice of the planner service the calendar needs.
type EventLister interface {
	ListEvents(ctx context.Context) ([]planner.Event, error)
}

type Service interface {
	EventsBetween(ctx context.Context, from, to time.Time) ([]planner.Event, error)
}

type ServiceImpl struct {
	events EventLister
}

func NewService(events EventLister) *ServiceImpl {
	return &ServiceImpl{events: events}
}

// EventsBetween returns the events whose date range overlaps [from, to].
// Both bounds are inclusive; a single-day event on the boundary is included.
func (s *ServiceImpl) EventsBetween(ctx context.Context, from, to time.Time) ([]planner.Event, error) {
	events, err := s.events.ListEvents(ctx)
	if err != nil {
		return nil, err
	}
	matching := make([]planner.Event, 0)
	for _, e := range events {
		if !e.StartDate.After(to) && !e.EndDate.Before(from) {
			matching = append(matching, e)
		}
	}
	return matching, nil
}

// GoogleCalendarURL builds a prefilled "add to Google Calendar" link for the
// event. When start and end times are present they are combined with the
// dates; otherwise the link describes an all-day range, whose end date is
// exclusive per the calendar URL format.
func GoogleCalendarURL(e planner.Event) string {
	var dates string
	start, startErr := time.Parse(clockLayout, e.StartTime)
	end, endErr := time.Parse(clockLayout, e.EndTime)
	if startErr == nil && endErr == nil {
		startAt := combine(e.StartDate, start)
		endAt := combine(e.EndDate, end)
		dates = startAt.Format(timedLayout) + "/" + endAt.Format(timedLayout)
	} else {
		dates = e.StartDate.Format(allDayLayout) + "/" + e.EndDate.AddDate(0, 0, 1).Format(allDayLayout)
	}

	query := url.Values{}
	query.Set("action", "TEMPLATE")
	query.Set("text", e.Title)
	query.Set("dates", dates)
	if e.Description != "" {
		query.Set("details", e.Description)
	}
	if e.Location != "" {
		query.Set("location", e.Location)
	}
	return googleCalendarBase + "?" + query.Encode()
}

func combine(date, clock time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(),
		clock.Hour(), clock.Minute(), 0, 0, date.Location())
}
