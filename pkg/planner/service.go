package planner

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/planhub/planhub/internal/event_bus"
	"github.com/planhub/planhub/pkg/user"
	log "github.com/sirupsen/logrus"
)

// EventDraft carries the caller-settable fields of a new event. Progress,
// tasks and budget items always start empty; TotalEstimated may seed the
// budget before any items exist.
type EventDraft struct {
	Title          string
	Description    string
	Location       string
	PlaceId        string
	StartDate      time.Time
	EndDate        time.Time
	StartTime      string
	EndTime        string
	Status         EventStatus
	Attendees      int
	TotalEstimated float64
}

// EventPatch is a shallow merge: nil fields stay untouched. Derived fields
// (progress, budget totals) and child collections are not patchable.
type EventPatch struct {
	Title       *string
	Description *string
	Location    *string
	PlaceId     *string
	StartDate   *time.Time
	EndDate     *time.Time
	StartTime   *string
	EndTime     *string
	Status      *EventStatus
	Attendees   *int
}

type TaskDraft struct {
	Title       string
	Description string
	Priority    TaskPriority
}

type TaskPatch struct {
	Title       *string
	Description *string
	Priority    *TaskPriority
	Completed   *bool
}

type BudgetItemDraft struct {
	Category        string
	Description     string
	EstimatedAmount float64
	ActualAmount    float64
	Status          BudgetItemStatus
}

type BudgetItemPatch struct {
	Category        *string
	Description     *string
	EstimatedAmount *float64
	ActualAmount    *float64
	Status          *BudgetItemStatus
}

type Service interface {
	CreateEvent(ctx context.Context, draft EventDraft) (Event, error)
	UpdateEvent(ctx context.Context, eventId string, patch EventPatch) (Event, error)
	DeleteEvent(ctx context.Context, eventId string) error
	GetEvent(ctx context.Context, eventId string) (Event, error)
	ListEvents(ctx context.Context) ([]Event, error)
	AddTask(ctx context.Context, eventId string, draft TaskDraft) (Task, error)
	UpdateTask(ctx context.Context, eventId string, taskId string, patch TaskPatch) (Task, error)
	DeleteTask(ctx context.Context, eventId string, taskId string) error
	ToggleTaskComplete(ctx context.Context, eventId string, taskId string, completed bool) error
	AddBudgetItem(ctx context.Context, eventId string, draft BudgetItemDraft) (BudgetItem, error)
	UpdateBudgetItem(ctx context.Context, eventId string, itemId string, patch BudgetItemPatch) (BudgetItem, error)
	DeleteBudgetItem(ctx context.Context, eventId string, itemId string) error
}

// ServiceImpl is the event aggregate store. It keeps the whole collection in
// memory, recomputes derived fields synchronously inside each mutation, and
// writes the collection through to the snapshot store before returning.
// Mutations operate on a cloned collection which is only committed after a
// successful write, so a failed write leaves memory and storage agreeing.
type ServiceImpl struct {
	mu        sync.RWMutex
	events    []Event
	snapshots SnapshotStore
	bus       *event_bus.EventBus
	unwatch   func()
}

// NewService loads the persisted collection, seeding the demo events when the
// backend is empty, and starts adopting external snapshot rewrites.
func NewService(snapshots SnapshotStore, bus *event_bus.EventBus) (*ServiceImpl, error) {
	ctx := context.Background()
	events, err := snapshots.Load(ctx)
	if errors.Is(err, ErrNoSnapshot) {
		log.Info("no stored events found, seeding demo events")
		events = SeedEvents()
		if saveErr := snapshots.SaveAll(ctx, events); saveErr != nil {
			return nil, NewPersistenceError("failed to persist seeded events", saveErr)
		}
	} else if err != nil {
		return nil, NewPersistenceError("failed to load events", err)
	}

	s := &ServiceImpl{
		events:    events,
		snapshots: snapshots,
		bus:       bus,
	}
	s.unwatch = snapshots.Watch(s.adoptExternal)
	return s, nil
}

// Close stops watching the snapshot store. The store itself stays usable for
// reads; it is meant to be called on application shutdown.
func (s *ServiceImpl) Close() {
	if s.unwatch != nil {
		s.unwatch()
	}
}

// adoptExternal replaces the in-memory collection with a snapshot rewritten
// by another process. Last-writer-wins, no merging of concurrent edits.
func (s *ServiceImpl) adoptExternal(events []Event) {
	s.mu.Lock()
	s.events = cloneAll(events)
	s.mu.Unlock()
	log.Debugf("adopted externally rewritten snapshot with %d events", len(events))
	s.notify(context.Background(), "", event_bus.PlannerActionExternal)
}

func (s *ServiceImpl) CreateEvent(ctx context.Context, draft EventDraft) (Event, error) {
	// Creation is deliberately open to every authenticated role, not just
	// organizers.
	actor, err := user.CurrentUser(ctx)
	if err != nil {
		return Event{}, NewPermissionError("creating events requires signing in")
	}
	if err := validateDraft(draft); err != nil {
		return Event{}, err
	}

	status := draft.Status
	if status == "" {
		status = EventStatusNotStarted
	}
	event := Event{
		Id:          uuid.NewString(),
		Title:       draft.Title,
		Description: draft.Description,
		Location:    draft.Location,
		PlaceId:     draft.PlaceId,
		StartDate:   draft.StartDate,
		EndDate:     draft.EndDate,
		StartTime:   draft.StartTime,
		EndTime:     draft.EndTime,
		Status:      status,
		Attendees:   draft.Attendees,
		Progress:    0,
		Tasks:       []Task{},
		Budget: Budget{
			TotalEstimated: draft.TotalEstimated,
			TotalActual:    0,
			Items:          []BudgetItem{},
		},
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	next := append(cloneAll(s.events), event)
	if err := s.commit(ctx, next, event.Id, event_bus.PlannerActionCreated); err != nil {
		return Event{}, err
	}
	log.Infof("user %s created event %s (%q)", actor.Id, event.Id, event.Title)
	return event.Clone(), nil
}

func (s *ServiceImpl) UpdateEvent(ctx context.Context, eventId string, patch EventPatch) (Event, error) {
	if _, err := s.requireRole(ctx, user.RoleOrganizer, "update event"); err != nil {
		return Event{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	next, idx, err := s.cloneWithEvent(eventId)
	if err != nil {
		return Event{}, err
	}
	// Shallow merge only. Date ordering is intentionally not re-validated on
	// edit; creation is the only gate.
	applyEventPatch(&next[idx], patch)
	if err := s.commit(ctx, next, eventId, event_bus.PlannerActionUpdated); err != nil {
		return Event{}, err
	}
	return next[idx].Clone(), nil
}

func (s *ServiceImpl) DeleteEvent(ctx context.Context, eventId string) error {
	// Deleting a whole event is the only admin-gated operation; its owned
	// tasks and budget items go with it.
	if _, err := s.requireRole(ctx, user.RoleAdmin, "delete event"); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, idx, err := s.cloneWithEvent(eventId)
	if err != nil {
		return err
	}
	next := cloneAll(s.events)
	next = append(next[:idx], next[idx+1:]...)
	return s.commit(ctx, next, eventId, event_bus.PlannerActionDeleted)
}

func (s *ServiceImpl) GetEvent(_ context.Context, eventId string) (Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.findEvent(eventId)
	if idx == -1 {
		return Event{}, NewNotFoundError("event %s not found", eventId)
	}
	return s.events[idx].Clone(), nil
}

func (s *ServiceImpl) ListEvents(_ context.Context) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.events), nil
}

func (s *ServiceImpl) AddTask(ctx context.Context, eventId string, draft TaskDraft) (Task, error) {
	if _, err := s.requireRole(ctx, user.RoleOrganizer, "add task"); err != nil {
		return Task{}, err
	}
	if strings.TrimSpace(draft.Title) == "" {
		return Task{}, NewValidationError("task title must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	next, idx, err := s.cloneWithEvent(eventId)
	if err != nil {
		return Task{}, err
	}
	task := Task{
		Id:          uuid.NewString(),
		Title:       draft.Title,
		Description: draft.Description,
		Priority:    draft.Priority,
		Completed:   false,
	}
	next[idx].Tasks = append(next[idx].Tasks, task)
	next[idx].RecalculateProgress()
	if err := s.commit(ctx, next, eventId, event_bus.PlannerActionTaskAdded); err != nil {
		return Task{}, err
	}
	return task, nil
}

func (s *ServiceImpl) UpdateTask(ctx context.Context, eventId string, taskId string, patch TaskPatch) (Task, error) {
	if _, err := s.requireRole(ctx, user.RoleOrganizer, "update task"); err != nil {
		return Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	next, idx, err := s.cloneWithEvent(eventId)
	if err != nil {
		return Task{}, err
	}
	taskIdx := next[idx].findTask(taskId)
	if taskIdx == -1 {
		return Task{}, NewNotFoundError("task %s not found in event %s", taskId, eventId)
	}
	applyTaskPatch(&next[idx].Tasks[taskIdx], patch)
	next[idx].RecalculateProgress()
	if err := s.commit(ctx, next, eventId, event_bus.PlannerActionTaskUpdated); err != nil {
		return Task{}, err
	}
	return next[idx].Tasks[taskIdx], nil
}

func (s *ServiceImpl) DeleteTask(ctx context.Context, eventId string, taskId string) error {
	if _, err := s.requireRole(ctx, user.RoleOrganizer, "delete task"); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	next, idx, err := s.cloneWithEvent(eventId)
	if err != nil {
		return err
	}
	taskIdx := next[idx].findTask(taskId)
	if taskIdx == -1 {
		return NewNotFoundError("task %s not found in event %s", taskId, eventId)
	}
	next[idx].Tasks = append(next[idx].Tasks[:taskIdx], next[idx].Tasks[taskIdx+1:]...)
	next[idx].RecalculateProgress()
	return s.commit(ctx, next, eventId, event_bus.PlannerActionTaskDeleted)
}

// ToggleTaskComplete flips the completion flag and recomputes progress in the
// same operation; a caller that awaited it never observes a stale progress.
func (s *ServiceImpl) ToggleTaskComplete(ctx context.Context, eventId string, taskId string, completed bool) error {
	_, err := s.UpdateTask(ctx, eventId, taskId, TaskPatch{Completed: &completed})
	return err
}

func (s *ServiceImpl) AddBudgetItem(ctx context.Context, eventId string, draft BudgetItemDraft) (BudgetItem, error) {
	if _, err := s.requireRole(ctx, user.RoleOrganizer, "add budget item"); err != nil {
		return BudgetItem{}, err
	}
	if err := validateAmounts(draft.EstimatedAmount, draft.ActualAmount); err != nil {
		return BudgetItem{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	next, idx, err := s.cloneWithEvent(eventId)
	if err != nil {
		return BudgetItem{}, err
	}
	status := draft.Status
	if status == "" {
		status = BudgetItemStatusPlanned
	}
	item := BudgetItem{
		Id:              uuid.NewString(),
		Category:        draft.Category,
		Description:     draft.Description,
		EstimatedAmount: draft.EstimatedAmount,
		ActualAmount:    draft.ActualAmount,
		Status:          status,
	}
	next[idx].Budget.Items = append(next[idx].Budget.Items, item)
	next[idx].RecalculateBudgetTotals()
	if err := s.commit(ctx, next, eventId, event_bus.PlannerActionBudgetAdded); err != nil {
		return BudgetItem{}, err
	}
	return item, nil
}

func (s *ServiceImpl) UpdateBudgetItem(ctx context.Context, eventId string, itemId string, patch BudgetItemPatch) (BudgetItem, error) {
	if _, err := s.requireRole(ctx, user.RoleOrganizer, "update budget item"); err != nil {
		return BudgetItem{}, err
	}
	if patch.EstimatedAmount != nil && *patch.EstimatedAmount < 0 {
		return BudgetItem{}, NewValidationError("estimated amount must not be negative")
	}
	if patch.ActualAmount != nil && *patch.ActualAmount < 0 {
		return BudgetItem{}, NewValidationError("actual amount must not be negative")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	next, idx, err := s.cloneWithEvent(eventId)
	if err != nil {
		return BudgetItem{}, err
	}
	itemIdx := next[idx].findBudgetItem(itemId)
	if itemIdx == -1 {
		return BudgetItem{}, NewNotFoundError("budget item %s not found in event %s", itemId, eventId)
	}
	applyBudgetItemPatch(&next[idx].Budget.Items[itemIdx], patch)
	next[idx].RecalculateBudgetTotals()
	if err := s.commit(ctx, next, eventId, event_bus.PlannerActionBudgetUpdated); err != nil {
		return BudgetItem{}, err
	}
	return next[idx].Budget.Items[itemIdx], nil
}

// DeleteBudgetItem requires organizer, not admin: removing a budget line is
// routine bookkeeping, unlike deleting a whole event.
func (s *ServiceImpl) DeleteBudgetItem(ctx context.Context, eventId string, itemId string) error {
	if _, err := s.requireRole(ctx, user.RoleOrganizer, "delete budget item"); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	next, idx, err := s.cloneWithEvent(eventId)
	if err != nil {
		return err
	}
	itemIdx := next[idx].findBudgetItem(itemId)
	if itemIdx == -1 {
		return NewNotFoundError("budget item %s not found in event %s", itemId, eventId)
	}
	next[idx].Budget.Items = append(next[idx].Budget.Items[:itemIdx], next[idx].Budget.Items[itemIdx+1:]...)
	next[idx].RecalculateBudgetTotals()
	return s.commit(ctx, next, eventId, event_bus.PlannerActionBudgetDeleted)
}

// commit persists the mutated clone and only then makes it the working
// collection. Callers must hold the write lock.
func (s *ServiceImpl) commit(ctx context.Context, next []Event, eventId string, action string) error {
	if err := s.snapshots.SaveAll(ctx, next); err != nil {
		log.Errorf("failed to persist events after %s on %s: %v", action, eventId, err)
		return NewPersistenceError("failed to persist events", err)
	}
	s.events = next
	s.notify(ctx, eventId, action)
	return nil
}

func (s *ServiceImpl) notify(ctx context.Context, eventId string, action string) {
	if s.bus == nil {
		return
	}
	err := s.bus.Publish(event_bus.NewEvent(ctx, event_bus.PlannerEventsChanged, event_bus.PlannerChange{
		EventId: eventId,
		Action:  action,
	}))
	if err != nil {
		// Observers only refresh their views; their failures must not undo a
		// committed mutation.
		log.Errorf("failed to publish change notification: %v", err)
	}
}

func (s *ServiceImpl) requireRole(ctx context.Context, required user.Role, action string) (user.User, error) {
	actor, err := user.CurrentUser(ctx)
	if err != nil {
		return user.User{}, NewPermissionError("%s requires signing in", action)
	}
	if !user.HasPermission(actor, required) {
		log.Debugf("user %s (%s) denied: %s requires role %s", actor.Id, actor.Role, action, required)
		return actor, NewPermissionError("%s requires the %s role", action, required)
	}
	return actor, nil
}

func (s *ServiceImpl) findEvent(eventId string) int {
	for idx, e := range s.events {
		if e.Id == eventId {
			return idx
		}
	}
	return -1
}

// cloneWithEvent clones the collection and returns it with the index of the
// requested event. Callers must hold the write lock.
func (s *ServiceImpl) cloneWithEvent(eventId string) ([]Event, int, error) {
	idx := s.findEvent(eventId)
	if idx == -1 {
		return nil, -1, NewNotFoundError("event %s not found", eventId)
	}
	return cloneAll(s.events), idx, nil
}

func validateDraft(draft EventDraft) error {
	if strings.TrimSpace(draft.Title) == "" {
		return NewValidationError("event title must not be empty")
	}
	if !draft.StartDate.IsZero() && !draft.EndDate.IsZero() && draft.StartDate.After(draft.EndDate) {
		return NewValidationError("event start date must not be after end date")
	}
	if draft.Attendees < 0 {
		return NewValidationError("attendees must not be negative")
	}
	if draft.TotalEstimated < 0 {
		return NewValidationError("estimated budget must not be negative")
	}
	return nil
}

func validateAmounts(estimated, actual float64) error {
	if estimated < 0 {
		return NewValidationError("estimated amount must not be negative")
	}
	if actual < 0 {
		return NewValidationError("actual amount must not be negative")
	}
	return nil
}

func applyEventPatch(e *Event, p EventPatch) {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Location != nil {
		e.Location = *p.Location
	}
	if p.PlaceId != nil {
		e.PlaceId = *p.PlaceId
	}
	if p.StartDate != nil {
		e.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		e.EndDate = *p.EndDate
	}
	if p.StartTime != nil {
		e.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		e.EndTime = *p.EndTime
	}
	if p.Status != nil {
		e.Status = *p.Status
	}
	if p.Attendees != nil {
		e.Attendees = *p.Attendees
	}
}

func applyTaskPatch(t *Task, p TaskPatch) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
}

func applyBudgetItemPatch(i *BudgetItem, p BudgetItemPatch) {
	if p.Category != nil {
		i.Category = *p.Category
	}
	if p.Description != nil {
		i.Description = *p.Description
	}
	if p.EstimatedAmount != nil {
		i.EstimatedAmount = *p.EstimatedAmount
	}
	if p.ActualAmount != nil {
		i.ActualAmount = *p.ActualAmount
	}
	if p.Status != nil {
		i.Status = *p.Status
	}
}
