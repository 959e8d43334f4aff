package app

import (
	"github.com/gorilla/mux"
	"github.com/planhub/planhub/internal/config"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// Events
	r.HandleFunc("/api/event", deps.PlannerHandler.GetAllEvents).Methods("GET")
	r.HandleFunc("/api/event", deps.PlannerHandler.CreateEvent).Methods("POST")
	r.HandleFunc("/api/event/{eventId}", deps.PlannerHandler.GetEvent).Methods("GET")
	r.HandleFunc("/api/event/{eventId}", deps.PlannerHandler.UpdateEvent).Methods("PUT")
	r.HandleFunc("/api/event/{eventId}", deps.PlannerHandler.DeleteEvent).Methods("DELETE")

	// Tasks
	r.HandleFunc("/api/event/{eventId}/task", deps.PlannerHandler.AddTask).Methods("POST")
	r.HandleFunc("/api/event/{eventId}/task/{taskId}", deps.PlannerHandler.UpdateTask).Methods("PUT")
	r.HandleFunc("/api/event/{eventId}/task/{taskId}", deps.PlannerHandler.DeleteTask).Methods("DELETE")
	r.HandleFunc("/api/event/{eventId}/task/{taskId}/status", deps.PlannerHandler.ToggleTaskComplete).Methods("PATCH")

	// Budget items
	r.HandleFunc("/api/event/{eventId}/budget/item", deps.PlannerHandler.AddBudgetItem).Methods("POST")
	r.HandleFunc("/api/event/{eventId}/budget/item/{itemId}", deps.PlannerHandler.UpdateBudgetItem).Methods("PUT")
	r.HandleFunc("/api/event/{eventId}/budget/item/{itemId}", deps.PlannerHandler.DeleteBudgetItem).Methods("DELETE")

	// Calendar
	r.HandleFunc("/api/calendar/event", deps.CalendarHandler.GetEvents).Queries("from", "{from}", "to", "{to}").Methods("GET")
	r.HandleFunc("/api/event/{eventId}/google-link", deps.CalendarHandler.GetGoogleLink).Methods("GET")

	// Stats
	r.HandleFunc("/api/stats/dashboard", deps.StatsHandler.GetDashboard).Methods("GET")

	// Auth
	r.HandleFunc("/api/auth/register", deps.AuthHandler.Register).Methods("POST")
	r.HandleFunc("/api/auth/login", deps.AuthHandler.Login).Methods("POST")
	r.HandleFunc("/api/auth/logout", deps.AuthHandler.Logout).Methods("POST")
	r.HandleFunc("/api/auth/user", deps.AuthHandler.CurrentUser).Methods("GET")
}
