package event_bus

const (
	// PlannerEventsChanged fires after every committed mutation of the event
	// collection, and after an external snapshot rewrite was adopted. UI
	// collaborators subscribe to refresh their views.
	PlannerEventsChanged EventType = "planner.events.changed"

	// AuthStateChanged fires on login, logout, and session refresh.
	AuthStateChanged EventType = "auth.state.changed"
)

const (
	PlannerActionCreated       = "event.created"
	PlannerActionUpdated       = "event.updated"
	PlannerActionDeleted       = "event.deleted"
	PlannerActionTaskAdded     = "task.added"
	PlannerActionTaskUpdated   = "task.updated"
	PlannerActionTaskDeleted   = "task.deleted"
	PlannerActionBudgetAdded   = "budget.item.added"
	PlannerActionBudgetUpdated = "budget.item.updated"
	PlannerActionBudgetDeleted = "budget.item.deleted"
	// PlannerActionExternal marks a whole-collection adoption after another
	// process rewrote the snapshot; EventId is empty in that case.
	PlannerActionExternal = "collection.replaced"
)

type PlannerChange struct {
	EventId string
	Action  string
}

type AuthState struct {
	LoggedIn bool
	UserId   string
	Username string
	Role     string
}
