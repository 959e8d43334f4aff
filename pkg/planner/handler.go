package planner

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const dateLayout = "2006-01-02"

type TaskDTO struct {
	Id          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Priority    string `json:"priority"`
	Completed   bool   `json:"completed"`
}

type BudgetItemDTO struct {
	Id              string  `json:"id"`
	Category        string  `json:"category"`
	Description     string  `json:"description,omitempty"`
	EstimatedAmount float64 `json:"estimatedAmount"`
	ActualAmount    float64 `json:"actualAmount"`
	Status          string  `json:"status"`
}

type BudgetDTO struct {
	TotalEstimated float64         `json:"totalEstimated"`
	TotalActual    float64         `json:"totalActual"`
	Items          []BudgetItemDTO `json:"items"`
}

type EventDTO struct {
	Id          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	PlaceId     string    `json:"placeId,omitempty"`
	StartDate   string    `json:"startDate"`
	EndDate     string    `json:"endDate"`
	StartTime   string    `json:"startTime,omitempty"`
	EndTime     string    `json:"endTime,omitempty"`
	Status      string    `json:"status"`
	Attendees   int       `json:"attendees"`
	Progress    int       `json:"progress"`
	Tasks       []TaskDTO `json:"tasks"`
	Budget      BudgetDTO `json:"budget"`
}

type eventDraftDTO struct {
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	Location       string  `json:"location"`
	PlaceId        string  `json:"placeId"`
	StartDate      string  `json:"startDate"`
	EndDate        string  `json:"endDate"`
	StartTime      string  `json:"startTime"`
	EndTime        string  `json:"endTime"`
	Status         string  `json:"status"`
	Attendees      int     `json:"attendees"`
	TotalEstimated float64 `json:"totalEstimated"`
}

type eventPatchDTO struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Location    *string `json:"location"`
	PlaceId     *string `json:"placeId"`
	StartDate   *string `json:"startDate"`
	EndDate     *string `json:"endDate"`
	StartTime   *string `json:"startTime"`
	EndTime     *string `json:"endTime"`
	Status      *string `json:"status"`
	Attendees   *int    `json:"attendees"`
}

type taskDraftDTO struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

type taskPatchDTO struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Priority    *string `json:"priority"`
	Completed   *bool   `json:"completed"`
}

type budgetItemDraftDTO struct {
	Category        string  `json:"category"`
	Description     string  `json:"description"`
	EstimatedAmount float64 `json:"estimatedAmount"`
	ActualAmount    float64 `json:"actualAmount"`
	Status          string  `json:"status"`
}

type budgetItemPatchDTO struct {
	Category        *string  `json:"category"`
	Description     *string  `json:"description"`
	EstimatedAmount *float64 `json:"estimatedAmount"`
	ActualAmount    *float64 `json:"actualAmount"`
	Status          *string  `json:"status"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating new event")
	w.Header().Set("Content-Type", "application/json")

	var dto eventDraftDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	draft, err := dtoToDraft(dto)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	created, err := h.service.CreateEvent(r.Context(), draft)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(EventToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) GetAllEvents(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	events, err := h.service.ListEvents(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := make([]EventDTO, 0, len(events))
	for _, e := range events {
		dtos = append(dtos, EventToDTO(e))
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	event, err := h.service.GetEvent(r.Context(), mux.Vars(r)["eventId"])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(EventToDTO(event)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var dto eventPatchDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	patch, err := dtoToPatch(dto)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	updated, err := h.service.UpdateEvent(r.Context(), mux.Vars(r)["eventId"], patch)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(EventToDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteEvent(r.Context(), mux.Vars(r)["eventId"]); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AddTask(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var dto taskDraftDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	task, err := h.service.AddTask(r.Context(), mux.Vars(r)["eventId"], TaskDraft{
		Title:       dto.Title,
		Description: dto.Description,
		Priority:    TaskPriority(dto.Priority),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(taskToDTO(task)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	vars := mux.Vars(r)

	var dto taskPatchDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	patch := TaskPatch{
		Title:       dto.Title,
		Description: dto.Description,
		Completed:   dto.Completed,
	}
	if dto.Priority != nil {
		priority := TaskPriority(*dto.Priority)
		patch.Priority = &priority
	}

	task, err := h.service.UpdateTask(r.Context(), vars["eventId"], vars["taskId"], patch)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(taskToDTO(task)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.service.DeleteTask(r.Context(), vars["eventId"], vars["taskId"]); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ToggleTaskComplete(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var dto struct {
		Completed bool `json:"completed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.service.ToggleTaskComplete(r.Context(), vars["eventId"], vars["taskId"], dto.Completed); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) AddBudgetItem(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var dto budgetItemDraftDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	item, err := h.service.AddBudgetItem(r.Context(), mux.Vars(r)["eventId"], BudgetItemDraft{
		Category:        dto.Category,
		Description:     dto.Description,
		EstimatedAmount: dto.EstimatedAmount,
		ActualAmount:    dto.ActualAmount,
		Status:          BudgetItemStatus(dto.Status),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(budgetItemToDTO(item)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) UpdateBudgetItem(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	vars := mux.Vars(r)

	var dto budgetItemPatchDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	patch := BudgetItemPatch{
		Category:        dto.Category,
		Description:     dto.Description,
		EstimatedAmount: dto.EstimatedAmount,
		ActualAmount:    dto.ActualAmount,
	}
	if dto.Status != nil {
		status := BudgetItemStatus(*dto.Status)
		patch.Status = &status
	}

	item, err := h.service.UpdateBudgetItem(r.Context(), vars["eventId"], vars["itemId"], patch)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(budgetItemToDTO(item)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) DeleteBudgetItem(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.service.DeleteBudgetItem(r.Context(), vars["eventId"], vars["itemId"]); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeDomainError maps the store's error taxonomy to HTTP statuses. All of
// these are recoverable denials, not server faults, except persistence.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case IsCode(err, ErrCodeValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case IsCode(err, ErrCodePermission):
		http.Error(w, err.Error(), http.StatusForbidden)
	case IsCode(err, ErrCodeNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func EventToDTO(e Event) EventDTO {
	tasks := make([]TaskDTO, 0, len(e.Tasks))
	for _, t := range e.Tasks {
		tasks = append(tasks, taskToDTO(t))
	}
	items := make([]BudgetItemDTO, 0, len(e.Budget.Items))
	for _, item := range e.Budget.Items {
		items = append(items, budgetItemToDTO(item))
	}
	return EventDTO{
		Id:          e.Id,
		Title:       e.Title,
		Description: e.Description,
		Location:    e.Location,
		PlaceId:     e.PlaceId,
		StartDate:   e.StartDate.Format(dateLayout),
		EndDate:     e.EndDate.Format(dateLayout),
		StartTime:   e.StartTime,
		EndTime:     e.EndTime,
		Status:      string(e.Status),
		Attendees:   e.Attendees,
		Progress:    e.Progress,
		Tasks:       tasks,
		Budget: BudgetDTO{
			TotalEstimated: e.Budget.TotalEstimated,
			TotalActual:    e.Budget.TotalActual,
			Items:          items,
		},
	}
}

func taskToDTO(t Task) TaskDTO {
	return TaskDTO{
		Id:          t.Id,
		Title:       t.Title,
		Description: t.Description,
		Priority:    string(t.Priority),
		Completed:   t.Completed,
	}
}

func budgetItemToDTO(i BudgetItem) BudgetItemDTO {
	return BudgetItemDTO{
		Id:              i.Id,
		Category:        i.Category,
		Description:     i.Description,
		EstimatedAmount: i.EstimatedAmount,
		ActualAmount:    i.ActualAmount,
		Status:          string(i.Status),
	}
}

func dtoToDraft(dto eventDraftDTO) (EventDraft, error) {
	startDate, err := parseDate(dto.StartDate)
	if err != nil {
		return EventDraft{}, err
	}
	endDate, err := parseDate(dto.EndDate)
	if err != nil {
		return EventDraft{}, err
	}
	return EventDraft{
		Title:          dto.Title,
		Description:    dto.Description,
		Location:       dto.Location,
		PlaceId:        dto.PlaceId,
		StartDate:      startDate,
		EndDate:        endDate,
		StartTime:      dto.StartTime,
		EndTime:        dto.EndTime,
		Status:         EventStatus(dto.Status),
		Attendees:      dto.Attendees,
		TotalEstimated: dto.TotalEstimated,
	}, nil
}

func dtoToPatch(dto eventPatchDTO) (EventPatch, error) {
	patch := EventPatch{
		Title:       dto.Title,
		Description: dto.Description,
		Location:    dto.Location,
		PlaceId:     dto.PlaceId,
		StartTime:   dto.StartTime,
		EndTime:     dto.EndTime,
		Attendees:   dto.Attendees,
	}
	if dto.StartDate != nil {
		startDate, err := parseDate(*dto.StartDate)
		if err != nil {
			return EventPatch{}, err
		}
		patch.StartDate = &startDate
	}
	if dto.EndDate != nil {
		endDate, err := parseDate(*dto.EndDate)
		if err != nil {
			return EventPatch{}, err
		}
		patch.EndDate = &endDate
	}
	if dto.Status != nil {
		status := EventStatus(*dto.Status)
		patch.Status = &status
	}
	return patch, nil
}

func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(dateLayout, value)
}
