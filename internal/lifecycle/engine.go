// Package lifecycle holds the task state machine.
//
//	PENDING --accept--> IN_PROGRESS --submit--> TO_BE_CONFIRMED --confirm--> COMPLETED | FAILED
//	IN_PROGRESS, EXPIRED --abandon--> ABANDONED
//
// The engine only computes the next state. Callers check authorization first
// and then persist the transition with a conditional write on the From status.
package lifecycle

import (
	"errors"
	"time"

	"github.com/yukikurage/earth-fighter-api/internal/authz"
	"github.com/yukikurage/earth-fighter-api/internal/config"
	"github.com/yukikurage/earth-fighter-api/internal/models"
)

type Action string

const (
	ActionAccept  Action = "accept"
	ActionAbandon Action = "abandon"
	ActionSubmit  Action = "submit"
	ActionConfirm Action = "confirm"
)

var (
	// ErrInvalidTransition is returned when the task's current status does not
	// permit the action. It carries the same category as a lost race.
	ErrInvalidTransition = authz.Conflict("task status does not allow this action")
	// ErrTaskFinished is returned for any action on a task in a terminal status.
	ErrTaskFinished = authz.Conflict("task is already finished")
	// ErrUnknownStatus means the stored status is not one the engine knows.
	ErrUnknownStatus = errors.New("unknown task status")
	// ErrConfirmFailureDisabled is returned for a failed confirmation when the
	// deployment only supports confirming to COMPLETED.
	ErrConfirmFailureDisabled = authz.BadRequest("confirming a task as failed is not enabled")
	// ErrUnknownAction is returned for an action the engine does not know.
	ErrUnknownAction = authz.BadRequest("unknown task action")
)

// rule lists the statuses an action may start from and where it leads.
type rule struct {
	from []models.TaskStatus
	to   models.TaskStatus
}

var rules = map[Action]rule{
	ActionAccept:  {from: []models.TaskStatus{models.TaskStatusPending}, to: models.TaskStatusInProgress},
	ActionAbandon: {from: []models.TaskStatus{models.TaskStatusInProgress, models.TaskStatusExpired}, to: models.TaskStatusAbandoned},
	ActionSubmit:  {from: []models.TaskStatus{models.TaskStatusInProgress}, to: models.TaskStatusToBeConfirmed},
	ActionConfirm: {from: []models.TaskStatus{models.TaskStatusToBeConfirmed}, to: models.TaskStatusCompleted},
}

// Request describes one transition attempt.
type Request struct {
	Action  Action
	Task    models.Task
	ActorID uint64
	// Failed marks a confirmation as unsuccessful. Only meaningful for confirm.
	Failed bool
}

// Transition is the computed change for one task.
type Transition struct {
	Action      Action
	TaskID      uint64
	From        models.TaskStatus
	To          models.TaskStatus
	ReceiverID  *uint64
	CompletedAt *time.Time
}

// ApplyTo copies the transition onto an in-memory snapshot.
func (t Transition) ApplyTo(task *models.Task) {
	task.Status = t.To
	if t.ReceiverID != nil {
		receiver := *t.ReceiverID
		task.ReceiverID = &receiver
	}
	if t.CompletedAt != nil {
		completed := *t.CompletedAt
		task.CompletedAt = &completed
	}
}

// Engine computes task transitions.
type Engine struct {
	domain config.Domain
	now    func() time.Time
}

// NewEngine creates an engine. A nil clock defaults to time.Now.
func NewEngine(domain config.Domain, now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{domain: domain, now: now}
}

// NewTaskInput is what a publisher supplies for a new task.
type NewTaskInput struct {
	Name           string
	Description    string
	TimeLimit      time.Duration
	OrganizationID uint64
	PublisherID    uint64
}

// Publish builds a task in its initial state.
func (e *Engine) Publish(input NewTaskInput) models.Task {
	return models.Task{
		Name:             input.Name,
		Description:      input.Description,
		Status:           models.TaskStatusPending,
		PublisherID:      input.PublisherID,
		ReceiverID:       nil,
		TimeLimitSeconds: int64(input.TimeLimit / time.Second),
		OrganizationID:   input.OrganizationID,
	}
}

// Apply computes the transition for req without touching any store.
func (e *Engine) Apply(req Request) (Transition, error) {
	r, ok := rules[req.Action]
	if !ok {
		return Transition{}, ErrUnknownAction
	}
	switch status := req.Task.Status; {
	case !status.Valid():
		return Transition{}, ErrUnknownStatus
	case status.IsTerminal():
		return Transition{}, ErrTaskFinished
	case !CanTransition(req.Action, status):
		return Transition{}, ErrInvalidTransition
	}

	tr := Transition{
		Action: req.Action,
		TaskID: req.Task.ID,
		From:   req.Task.Status,
		To:     r.to,
	}

	switch req.Action {
	case ActionAccept:
		receiver := req.ActorID
		tr.ReceiverID = &receiver
	case ActionConfirm:
		if req.Failed {
			if !e.domain.AllowConfirmFailure() {
				return Transition{}, ErrConfirmFailureDisabled
			}
			tr.To = models.TaskStatusFailed
		}
		completed := e.now()
		tr.CompletedAt = &completed
	}

	return tr, nil
}

// CanTransition reports whether action may start from status.
func CanTransition(action Action, status models.TaskStatus) bool {
	r, ok := rules[action]
	return ok && statusIn(status, r.from)
}

func statusIn(status models.TaskStatus, set []models.TaskStatus) bool {
	for _, s := range set {
		if s == status {
			return true
		}
	}
	return false
}
