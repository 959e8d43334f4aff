package app

import (
	"github.com/planhub/planhub/internal/config"
	"github.com/planhub/planhub/internal/event_bus"
	"github.com/planhub/planhub/internal/utils"
	"github.com/planhub/planhub/pkg/auth"
	"github.com/planhub/planhub/pkg/calendar"
	"github.com/planhub/planhub/pkg/planner"
	"github.com/planhub/planhub/pkg/stats"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	Bus *event_bus.EventBus

	PlannerService *planner.ServiceImpl
	PlannerHandler *planner.Handler

	AuthProvider auth.Provider
	AuthHandler  *auth.Handler

	StatsService *stats.StatsServiceImpl
	StatsHandler *stats.StatsHandler

	CalendarService *calendar.ServiceImpl
	CalendarHandler *calendar.Handler

	Clock utils.Clock
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(snapshots planner.SnapshotStore, tokens *auth.TokenStore, cfg config.Application) (*Dependencies, error) {
	deps := &Dependencies{}

	deps.Bus = event_bus.NewEventBus()

	plannerService, err := planner.NewService(snapshots, deps.Bus)
	if err != nil {
		return nil, err
	}
	deps.PlannerService = plannerService
	deps.PlannerHandler = planner.NewHandler(deps.PlannerService)

	deps.AuthProvider = auth.NewHTTPProvider(cfg.Auth, tokens, deps.Bus)
	deps.AuthHandler = auth.NewHandler(deps.AuthProvider)

	deps.Clock = &utils.SystemClock{}
	deps.StatsService = stats.NewStatsServiceImpl(deps.PlannerService, deps.Clock)
	deps.StatsHandler = stats.NewStatsHandler(deps.StatsService)

	deps.CalendarService = calendar.NewService(deps.PlannerService)
	deps.CalendarHandler = calendar.NewHandler(deps.CalendarService, deps.PlannerService)

	return deps, nil
}
