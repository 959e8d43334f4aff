package stats

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"
)

type SummaryDTO struct {
	TotalEvents          int            `json:"totalEvents"`
	ByStatus             map[string]int `json:"byStatus"`
	UpcomingEvents       int            `json:"upcomingEvents"`
	TotalTasks           int            `json:"totalTasks"`
	CompletedTasks       int            `json:"completedTasks"`
	AverageProgress      int            `json:"averageProgress"`
	TotalEstimatedBudget float64        `json:"totalEstimatedBudget"`
	TotalActualBudget    float64        `json:"totalActualBudget"`
}

type StatsHandler struct {
	service StatsService
}

func NewStatsHandler(service StatsService) *StatsHandler {
	return &StatsHandler{service: service}
}

func (h *StatsHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	summary, err := h.service.Dashboard(r.Context())
	if err != nil {
		log.Errorf("failed to compute dashboard summary: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(summaryToDTO(summary)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func summaryToDTO(s Summary) SummaryDTO {
	byStatus := make(map[string]int, len(s.ByStatus))
	for status, count := range s.ByStatus {
		byStatus[string(status)] = count
	}
	return SummaryDTO{
		TotalEvents:          s.TotalEvents,
		ByStatus:             byStatus,
		UpcomingEvents:       s.UpcomingEvents,
		TotalTasks:           s.TotalTasks,
		CompletedTasks:       s.CompletedTasks,
		AverageProgress:      s.AverageProgress,
		TotalEstimatedBudget: s.TotalEstimatedBudget,
		TotalActualBudget:    s.TotalActualBudget,
	}
}
