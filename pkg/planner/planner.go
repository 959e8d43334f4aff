package planner

import (
	"math"
	"time"
)

type EventStatus string

const (
	EventStatusNotStarted EventStatus = "Not Started"
	EventStatusInProgress EventStatus = "In Progress"
	EventStatusCompleted  EventStatus = "Completed"
	EventStatusCancelled  EventStatus = "Cancelled"
)

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "Low"
	TaskPriorityMedium TaskPriority = "Medium"
	TaskPriorityHigh   TaskPriority = "High"
)

type BudgetItemStatus string

const (
	BudgetItemStatusPlanned    BudgetItemStatus = "Planned"
	BudgetItemStatusInProgress BudgetItemStatus = "In Progress"
	BudgetItemStatusCompleted  BudgetItemStatus = "Completed"
)

// Task belongs to exactly one Event and never outlives it.
type Task struct {
	Id          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Priority    TaskPriority `json:"priority"`
	Completed   bool         `json:"completed"`
}

// BudgetItem is a single line of an event's budget. Category is free-form
// text; the UI offers suggestions but nothing is validated against a list.
type BudgetItem struct {
	Id              string           `json:"id"`
	Category        string           `json:"category"`
	Description     string           `json:"description,omitempty"`
	EstimatedAmount float64          `json:"estimatedAmount"`
	ActualAmount    float64          `json:"actualAmount"`
	Status          BudgetItemStatus `json:"status"`
}

// Budget carries the derived totals next to the items they are summed from.
// TotalEstimated may be seeded at event creation while Items is still empty;
// the first item mutation recomputes it from the items and discards the seed.
type Budget struct {
	TotalEstimated float64      `json:"totalEstimated"`
	TotalActual    float64      `json:"totalActual"`
	Items          []BudgetItem `json:"items"`
}

// Event is the aggregate root: it owns its tasks and budget items and
// cascades deletion to them. Progress is derived from the tasks and is never
// set directly by a caller.
type Event struct {
	Id          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Location    string      `json:"location,omitempty"`
	PlaceId     string      `json:"placeId,omitempty"`
	StartDate   time.Time   `json:"startDate"`
	EndDate     time.Time   `json:"endDate"`
	StartTime   string      `json:"startTime"`
	EndTime     string      `json:"endTime"`
	Status      EventStatus `json:"status"`
	Attendees   int         `json:"attendees"`
	Progress    int         `json:"progress"`
	Tasks       []Task      `json:"tasks"`
	Budget      Budget      `json:"budget"`
}

// RecalculateProgress re-derives the completion percentage from the tasks.
// An event without tasks has progress 0.
func (e *Event) RecalculateProgress() {
	if len(e.Tasks) == 0 {
		e.Progress = 0
		return
	}
	completed := 0
	for _, t := range e.Tasks {
		if t.Completed {
			completed++
		}
	}
	e.Progress = int(math.Round(float64(completed) / float64(len(e.Tasks)) * 100))
}

// RecalculateBudgetTotals re-sums both totals from the budget items,
// overriding any value seeded at creation time.
func (e *Event) RecalculateBudgetTotals() {
	var estimated, actual float64
	for _, item := range e.Budget.Items {
		estimated += item.EstimatedAmount
		actual += item.ActualAmount
	}
	e.Budget.TotalEstimated = estimated
	e.Budget.TotalActual = actual
}

func (e *Event) findTask(taskId string) int {
	for idx, t := range e.Tasks {
		if t.Id == taskId {
			return idx
		}
	}
	return -1
}

func (e *Event) findBudgetItem(itemId string) int {
	for idx, item := range e.Budget.Items {
		if item.Id == itemId {
			return idx
		}
	}
	return -1
}

// Clone returns a deep copy, so callers can hand out events without sharing
// the task and item slices with the store's working collection.
func (e Event) Clone() Event {
	clone := e
	if e.Tasks != nil {
		clone.Tasks = make([]Task, len(e.Tasks))
		copy(clone.Tasks, e.Tasks)
	}
	if e.Budget.Items != nil {
		clone.Budget.Items = make([]BudgetItem, len(e.Budget.Items))
		copy(clone.Budget.Items, e.Budget.Items)
	}
	return clone
}

func cloneAll(events []Event) []Event {
	clones := make([]Event, len(events))
	for i, e := range events {
		clones[i] = e.Clone()
	}
	return clones
}
