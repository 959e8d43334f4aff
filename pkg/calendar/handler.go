package calendar

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/planhub/planhub/pkg/planner"
	log "github.com/sirupsen/logrus"
)

const dateLayout = "2006-01-02"

type Handler struct {
	service Service
	events  planner.Service
}

func NewHandler(service Service, events planner.Service) *Handler {
	return &Handler{service: service, events: events}
}

// GetEvents returns the events overlapping the requested date range.
func (h *Handler) GetEvents(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	vars := mux.Vars(r)

	from, err := time.Parse(dateLayout, vars["from"])
	if err != nil {
		http.Error(w, "invalid 'from' date: "+err.Error(), http.StatusBadRequest)
		return
	}
	to, err := time.Parse(dateLayout, vars["to"])
	if err != nil {
		http.Error(w, "invalid 'to' date: "+err.Error(), http.StatusBadRequest)
		return
	}
	if from.After(to) {
		http.Error(w, "'from' must not be after 'to'", http.StatusBadRequest)
		return
	}

	events, err := h.service.EventsBetween(r.Context(), from, to)
	if err != nil {
		log.Errorf("failed to list events between %s and %s: %v", vars["from"], vars["to"], err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	dtos := make([]planner.EventDTO, 0, len(events))
	for _, e := range events {
		dtos = append(dtos, planner.EventToDTO(e))
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// GetGoogleLink returns the prefilled Google Calendar link for one event.
func (h *Handler) GetGoogleLink(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	event, err := h.events.GetEvent(r.Context(), mux.Vars(r)["eventId"])
	if err != nil {
		if planner.IsCode(err, planner.ErrCodeNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]string{"url": GoogleCalendarURL(event)}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
