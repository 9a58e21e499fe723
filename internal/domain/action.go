package domain

import "fmt"

// ============================================================
// CRUD actions
// ============================================================

// ActionKind is the closed set of mutating actions a screen can run.
type ActionKind int

const (
	ActionCreate ActionKind = iota + 1
	ActionUpdate
	ActionDelete
)

func (k ActionKind) String() string {
	switch k {
	case ActionCreate:
		return "create"
	case ActionUpdate:
		return "update"
	case ActionDelete:
		return "delete"
	}
	return fmt.Sprintf("ActionKind(%d)", int(k))
}

// Verb is the Spanish past participle used in notifications.
func (k ActionKind) Verb() string {
	switch k {
	case ActionCreate:
		return "creada"
	case ActionUpdate:
		return "actualizada"
	case ActionDelete:
		return "eliminada"
	}
	return "procesada"
}

// Valid reports whether k is one of the declared kinds.
func (k ActionKind) Valid() bool {
	switch k {
	case ActionCreate, ActionUpdate, ActionDelete:
		return true
	}
	return false
}

// ActionState is the lifecycle of a single CRUD action.
type ActionState int

const (
	StateIdle ActionState = iota
	StatePending
	StateSucceeded
	StateFailed
)

func (s ActionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePending:
		return "pending"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("ActionState(%d)", int(s))
}

// ErrInvalidTransition is returned by ActionTracker on an illegal move.
type ErrInvalidTransition struct {
	From ActionState
	To   ActionState
}

func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("invalid action transition %s -> %s", e.From, e.To)
}

// ActionTracker enforces idle -> pending -> (succeeded | failed) -> idle.
// It is not safe for concurrent use; one tracker belongs to one action run.
type ActionTracker struct {
	kind    ActionKind
	state   ActionState
	history []ActionState
}

// NewActionTracker starts a tracker in the idle state.
func NewActionTracker(kind ActionKind) *ActionTracker {
	return &ActionTracker{kind: kind, state: StateIdle, history: []ActionState{StateIdle}}
}

func (t *ActionTracker) Kind() ActionKind { return t.kind }

func (t *ActionTracker) State() ActionState { return t.state }

func (t *ActionTracker) History() []ActionState {
	out := make([]ActionState, len(t.history))
	copy(out, t.history)
	return out
}

// Begin moves idle -> pending.
func (t *ActionTracker) Begin() error {
	return t.move(StateIdle, StatePending)
}

// Succeed moves pending -> succeeded.
func (t *ActionTracker) Succeed() error {
	return t.move(StatePending, StateSucceeded)
}

// Fail moves pending -> failed.
func (t *ActionTracker) Fail() error {
	return t.move(StatePending, StateFailed)
}

// Reset moves a finished action back to idle.
func (t *ActionTracker) Reset() error {
	if t.state != StateSucceeded && t.state != StateFailed {
		return &ErrInvalidTransition{From: t.state, To: StateIdle}
	}
	t.state = StateIdle
	t.history = append(t.history, StateIdle)
	return nil
}

func (t *ActionTracker) move(from, to ActionState) error {
	if t.state != from {
		return &ErrInvalidTransition{From: t.state, To: to}
	}
	t.state = to
	t.history = append(t.history, to)
	return nil
}

// ============================================================
// Notifications & outcomes
// ============================================================

// NotificationKind selects how a notification is styled.
type NotificationKind string

const (
	NotifySuccess NotificationKind = "success"
	NotifyError   NotificationKind = "error"
	NotifyInfo    NotificationKind = "info"
)

// Notification is the single on-screen message produced by an action.
type Notification struct {
	Kind    NotificationKind
	Message string
}

func (n Notification) IsZero() bool { return n.Message == "" }

func SuccessNotice(msg string) Notification { return Notification{Kind: NotifySuccess, Message: msg} }

func ErrorNotice(msg string) Notification { return Notification{Kind: NotifyError, Message: msg} }

func InfoNotice(msg string) Notification { return Notification{Kind: NotifyInfo, Message: msg} }

// Outcome is the result of one CRUD action run. Items holds the refetched
// list when Refreshed is true; on failure Items is nil and the caller keeps
// whatever list it already had. State is where the action finished; Trail
// records every state it passed through, ending back at idle. Actions
// rejected before reaching the remote API have no Trail.
type Outcome[T any] struct {
	Action       ActionKind
	State        ActionState
	Trail        []ActionState
	Notification Notification
	Items        []T
	Refreshed    bool
	Err          error
}

// Succeeded reports whether the action was confirmed by the remote API.
func (o Outcome[T]) Succeeded() bool {
	return o.State == StateSucceeded
}
