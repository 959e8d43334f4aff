package stats

import (
	"context"
	"math"
	"time"

	"github.com/planhub/planhub/internal/utils"
	"github.com/planhub/planhub/pkg/planner"
)

// upcomingWindow is how far ahead an event may start to still count as
// upcoming on the dashboard.
const upcomingWindow = 30 * 24 * time.Hour

// Summary is the dashboard aggregate over the whole event collection.
type Summary struct {
	TotalEvents          int
	ByStatus             map[planner.EventStatus]int
	UpcomingEvents       int
	TotalTasks           int
	CompletedTasks       int
	AverageProgress      int
	TotalEstimatedBudget float64
	TotalActualBudget    float64
}

// EventLister is the read slice of the planner service the stats need.
type EventLister interface {
	ListEvents(ctx context.Context) ([]planner.Event, error)
}

type StatsService interface {
	Dashboard(ctx context.Context) (Summary, error)
}

type StatsServiceImpl struct {
	events EventLister
	clock  utils.Clock
}

func NewStatsServiceImpl(events EventLister, clock utils.Clock) *StatsServiceImpl {
	return &StatsServiceImpl{events: events, clock: clock}
}

// Dashboard recomputes the summary from the current collection on every call;
// the collection is small enough that caching would only invite staleness.
func (s *StatsServiceImpl) Dashboard(ctx context.Context) (Summary, error) {
	events, err := s.events.ListEvents(ctx)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{
		TotalEvents: len(events),
		ByStatus:    make(map[planner.EventStatus]int),
	}
	now := s.clock.Now()
	horizon := now.Add(upcomingWindow)

	progressSum := 0
	for _, e := range events {
		summary.ByStatus[e.Status]++
		if isUpcoming(e, now, horizon) {
			summary.UpcomingEvents++
		}
		summary.TotalTasks += len(e.Tasks)
		for _, task := range e.Tasks {
			if task.Completed {
				summary.CompletedTasks++
			}
		}
		summary.TotalEstimatedBudget += e.Budget.TotalEstimated
		summary.TotalActualBudget += e.Budget.TotalActual
		progressSum += e.Progress
	}
	if len(events) > 0 {
		summary.AverageProgress = int(math.Round(float64(progressSum) / float64(len(events))))
	}
	return summary, nil
}

func isUpcoming(e planner.Event, now, horizon time.Time) bool {
	if e.Status == planner.EventStatusCancelled {
		return false
	}
	return !e.StartDate.Before(now) && e.StartDate.Before(horizon)
}
