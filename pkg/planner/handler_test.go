package planner

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/planhub/planhub/internal/event_bus"
	"github.com/planhub/planhub/internal/test_utils"
	"github.com/planhub/planhub/pkg/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupHandlerTest(t *testing.T) *Handler {
	t.Helper()
	store := NewStubSnapshotStore()
	store.Seed([]Event{})
	service, err := NewService(store, event_bus.NewEventBus())
	require.NoError(t, err)
	t.Cleanup(service.Close)
	return NewHandler(service)
}

func createTestEvent(t *testing.T, handler *Handler, draft eventDraftDTO) EventDTO {
	t.Helper()
	body, err := json.Marshal(draft)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/event", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	ctx := test_utils.ContextWithRole(user.RoleOrganizer)
	handler.CreateEvent(w, req.WithContext(ctx))
	require.Equal(t, http.StatusCreated, w.Code)

	var created EventDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&created))
	return created
}

func TestHandler_CreateEvent(t *testing.T) {
	t.Run("returns the created event with derived fields zeroed", func(t *testing.T) {
		// given
		handler := setupHandlerTest(t)

		// when
		created := createTestEvent(t, handler, eventDraftDTO{
			Title:     "Summer Party",
			StartDate: "2025-07-01",
			EndDate:   "2025-07-01",
			Attendees: 25,
		})

		// then
		assert.NotEmpty(t, created.Id)
		assert.Equal(t, "Summer Party", created.Title)
		assert.Equal(t, "2025-07-01", created.StartDate)
		assert.Equal(t, 0, created.Progress)
		assert.Empty(t, created.Tasks)
		assert.Empty(t, created.Budget.Items)
	})

	t.Run("unauthenticated request is forbidden", func(t *testing.T) {
		// given
		handler := setupHandlerTest(t)
		body, _ := json.Marshal(eventDraftDTO{Title: "Party"})
		req := httptest.NewRequest(http.MethodPost, "/api/event", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		// when
		handler.CreateEvent(w, req)

		// then
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("invalid date ordering is a bad request", func(t *testing.T) {
		// given
		handler := setupHandlerTest(t)
		body, _ := json.Marshal(eventDraftDTO{
			Title:     "Party",
			StartDate: "2025-07-02",
			EndDate:   "2025-07-01",
		})
		req := httptest.NewRequest(http.MethodPost, "/api/event", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		// when
		handler.CreateEvent(w, req.WithContext(test_utils.ContextWithRole(user.RoleOrganizer)))

		// then
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unparseable date is a bad request", func(t *testing.T) {
		// given
		handler := setupHandlerTest(t)
		body, _ := json.Marshal(eventDraftDTO{Title: "Party", StartDate: "01.07.2025"})
		req := httptest.NewRequest(http.MethodPost, "/api/event", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		// when
		handler.CreateEvent(w, req.WithContext(test_utils.ContextWithRole(user.RoleOrganizer)))

		// then
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandler_GetEvent(t *testing.T) {
	t.Run("unknown event is not found", func(t *testing.T) {
		// given
		handler := setupHandlerTest(t)
		req := httptest.NewRequest(http.MethodGet, "/api/event/nope", nil)
		req = mux.SetURLVars(req, map[string]string{"eventId": "nope"})
		w := httptest.NewRecorder()

		// when
		handler.GetEvent(w, req)

		// then
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("reads need no authentication", func(t *testing.T) {
		// given
		handler := setupHandlerTest(t)
		created := createTestEvent(t, handler, eventDraftDTO{Title: "Open House", StartDate: "2025-07-01", EndDate: "2025-07-01"})

		req := httptest.NewRequest(http.MethodGet, "/api/event/"+created.Id, nil)
		req = mux.SetURLVars(req, map[string]string{"eventId": created.Id})
		w := httptest.NewRecorder()

		// when
		handler.GetEvent(w, req)

		// then
		assert.Equal(t, http.StatusOK, w.Code)
		var got EventDTO
		require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
		assert.Equal(t, created.Id, got.Id)
	})
}

func TestHandler_DeleteEvent(t *testing.T) {
	t.Run("organizer may not delete an event", func(t *testing.T) {
		// given
		handler := setupHandlerTest(t)
		created := createTestEvent(t, handler, eventDraftDTO{Title: "Doomed", StartDate: "2025-07-01", EndDate: "2025-07-01"})

		req := httptest.NewRequest(http.MethodDelete, "/api/event/"+created.Id, nil)
		req = mux.SetURLVars(req, map[string]string{"eventId": created.Id})
		w := httptest.NewRecorder()

		// when
		handler.DeleteEvent(w, req.WithContext(test_utils.ContextWithRole(user.RoleOrganizer)))

		// then
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("admin deletes and the event is gone", func(t *testing.T) {
		// given
		handler := setupHandlerTest(t)
		created := createTestEvent(t, handler, eventDraftDTO{Title: "Doomed", StartDate: "2025-07-01", EndDate: "2025-07-01"})

		req := httptest.NewRequest(http.MethodDelete, "/api/event/"+created.Id, nil)
		req = mux.SetURLVars(req.WithContext(test_utils.ContextWithRole(user.RoleAdmin)), map[string]string{"eventId": created.Id})
		w := httptest.NewRecorder()

		// when
		handler.DeleteEvent(w, req)

		// then
		assert.Equal(t, http.StatusNoContent, w.Code)

		getReq := httptest.NewRequest(http.MethodGet, "/api/event/"+created.Id, nil)
		getReq = mux.SetURLVars(getReq, map[string]string{"eventId": created.Id})
		getW := httptest.NewRecorder()
		handler.GetEvent(getW, getReq)
		assert.Equal(t, http.StatusNotFound, getW.Code)
	})
}

func TestHandler_Tasks(t *testing.T) {
	t.Run("toggling a task updates the event progress", func(t *testing.T) {
		// given
		handler := setupHandlerTest(t)
		created := createTestEvent(t, handler, eventDraftDTO{Title: "Launch", StartDate: "2025-07-01", EndDate: "2025-07-01"})
		ctx := test_utils.ContextWithRole(user.RoleOrganizer)

		body, _ := json.Marshal(taskDraftDTO{Title: "Prepare slides", Priority: "High"})
		addReq := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/event/%s/task", created.Id), bytes.NewBuffer(body))
		addReq = mux.SetURLVars(addReq.WithContext(ctx), map[string]string{"eventId": created.Id})
		addW := httptest.NewRecorder()
		handler.AddTask(addW, addReq)
		require.Equal(t, http.StatusCreated, addW.Code)
		var task TaskDTO
		require.NoError(t, json.NewDecoder(addW.Body).Decode(&task))

		// when
		toggleBody := bytes.NewBufferString(`{"completed": true}`)
		toggleReq := httptest.NewRequest(http.MethodPatch, fmt.Sprintf("/api/event/%s/task/%s/status", created.Id, task.Id), toggleBody)
		toggleReq = mux.SetURLVars(toggleReq.WithContext(ctx), map[string]string{"eventId": created.Id, "taskId": task.Id})
		toggleW := httptest.NewRecorder()
		handler.ToggleTaskComplete(toggleW, toggleReq)

		// then
		require.Equal(t, http.StatusOK, toggleW.Code)
		getReq := httptest.NewRequest(http.MethodGet, "/api/event/"+created.Id, nil)
		getReq = mux.SetURLVars(getReq, map[string]string{"eventId": created.Id})
		getW := httptest.NewRecorder()
		handler.GetEvent(getW, getReq)
		var got EventDTO
		require.NoError(t, json.NewDecoder(getW.Body).Decode(&got))
		assert.Equal(t, 100, got.Progress)
	})

	t.Run("attendee may not add tasks", func(t *testing.T) {
		// given
		handler := setupHandlerTest(t)
		created := createTestEvent(t, handler, eventDraftDTO{Title: "Launch", StartDate: "2025-07-01", EndDate: "2025-07-01"})

		body, _ := json.Marshal(taskDraftDTO{Title: "Prepare slides"})
		req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/event/%s/task", created.Id), bytes.NewBuffer(body))
		req = mux.SetURLVars(req, map[string]string{"eventId": created.Id})
		w := httptest.NewRecorder()

		// when
		handler.AddTask(w, req.WithContext(test_utils.ContextWithRole(user.RoleAttendee)))

		// then
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestHandler_BudgetItems(t *testing.T) {
	t.Run("adding an item updates the budget totals", func(t *testing.T) {
		// given
		handler := setupHandlerTest(t)
		created := createTestEvent(t, handler, eventDraftDTO{Title: "Gala", StartDate: "2025-07-01", EndDate: "2025-07-01"})
		ctx := test_utils.ContextWithRole(user.RoleOrganizer)

		body, _ := json.Marshal(budgetItemDraftDTO{Category: "Catering", EstimatedAmount: 600, ActualAmount: 450})
		req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/event/%s/budget/item", created.Id), bytes.NewBuffer(body))
		req = mux.SetURLVars(req.WithContext(ctx), map[string]string{"eventId": created.Id})
		w := httptest.NewRecorder()

		// when
		handler.AddBudgetItem(w, req)

		// then
		require.Equal(t, http.StatusCreated, w.Code)
		getReq := httptest.NewRequest(http.MethodGet, "/api/event/"+created.Id, nil)
		getReq = mux.SetURLVars(getReq, map[string]string{"eventId": created.Id})
		getW := httptest.NewRecorder()
		handler.GetEvent(getW, getReq)
		var got EventDTO
		require.NoError(t, json.NewDecoder(getW.Body).Decode(&got))
		assert.Equal(t, 600.0, got.Budget.TotalEstimated)
		assert.Equal(t, 450.0, got.Budget.TotalActual)
	})

	t.Run("negative amount is a bad request", func(t *testing.T) {
		// given
		handler := setupHandlerTest(t)
		created := createTestEvent(t, handler, eventDraftDTO{Title: "Gala", StartDate: "2025-07-01", EndDate: "2025-07-01"})

		body, _ := json.Marshal(budgetItemDraftDTO{Category: "Catering", EstimatedAmount: -5})
		req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/event/%s/budget/item", created.Id), bytes.NewBuffer(body))
		req = mux.SetURLVars(req, map[string]string{"eventId": created.Id})
		w := httptest.NewRecorder()

		// when
		handler.AddBudgetItem(w, req.WithContext(test_utils.ContextWithRole(user.RoleOrganizer)))

		// then
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
