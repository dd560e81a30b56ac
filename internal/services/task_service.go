package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yukikurage/earth-fighter-api/internal/authz"
	"github.com/yukikurage/earth-fighter-api/internal/constants"
	"github.com/yukikurage/earth-fighter-api/internal/lifecycle"
	"github.com/yukikurage/earth-fighter-api/internal/metrics"
	"github.com/yukikurage/earth-fighter-api/internal/models"
	"github.com/yukikurage/earth-fighter-api/internal/repository"
	"github.com/yukikurage/earth-fighter-api/internal/telemetry"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound = authz.NotFound("task not found")
	// ErrTaskStateConflict is returned both when the task is already in the
	// wrong status and when a concurrent request changed it first.
	ErrTaskStateConflict      = authz.Conflict("task status does not allow this action")
	ErrTaskNameRequired       = authz.BadRequest("task name is required")
	ErrInvalidTimeLimit       = authz.BadRequest("time limit cannot be negative")
	ErrDraftTextRequired      = authz.BadRequest("text is required")
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAINoTasksGenerated     = errors.New("AI did not generate any tasks")
)

const actionPublish = "publish"

// TaskService orchestrates task operations: load, authorize, compute the
// transition and persist it with a status compare-and-swap.
type TaskService struct {
	taskRepo repository.TaskRepository
	orgRepo  repository.OrganizationRepository
	engine   *lifecycle.Engine
	drafter  TaskDrafter
	metrics  *metrics.Metrics
	tracer   trace.Tracer
}

// NewTaskService creates a new TaskService. drafter may be nil.
func NewTaskService(taskRepo repository.TaskRepository, orgRepo repository.OrganizationRepository, engine *lifecycle.Engine, drafter TaskDrafter, m *metrics.Metrics) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		orgRepo:  orgRepo,
		engine:   engine,
		drafter:  drafter,
		metrics:  m,
		tracer:   telemetry.Tracer(),
	}
}

// PublishTaskInput represents input for publishing a task
type PublishTaskInput struct {
	Name           string
	Description    string
	TimeLimit      time.Duration
	OrganizationID uint64
	PublisherID    uint64
}

// Publish creates a pending task in an organization the publisher belongs to.
func (s *TaskService) Publish(ctx context.Context, input PublishTaskInput) (task *models.Task, err error) {
	ctx, end := s.start(ctx, actionPublish,
		attribute.Int64("organization.id", int64(input.OrganizationID)),
		attribute.Int64("user.id", int64(input.PublisherID)))
	defer func() { end(err) }()

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTaskNameRequired
	}
	if input.TimeLimit < 0 {
		return nil, ErrInvalidTimeLimit
	}

	isMember, err := s.isMember(ctx, input.OrganizationID, input.PublisherID)
	if err != nil {
		return nil, err
	}
	if err := authz.CanPublishTask(input.PublisherID, input.OrganizationID, isMember).Err(); err != nil {
		return nil, err
	}

	created := s.engine.Publish(lifecycle.NewTaskInput{
		Name:           name,
		Description:    input.Description,
		TimeLimit:      input.TimeLimit,
		OrganizationID: input.OrganizationID,
		PublisherID:    input.PublisherID,
	})
	if err := s.taskRepo.Create(ctx, &created); err != nil {
		return nil, storeErr("create task", err)
	}

	return &created, nil
}

// Accept makes the caller the receiver of a pending task.
func (s *TaskService) Accept(ctx context.Context, taskID, actorID uint64) (*models.Task, error) {
	return s.transition(ctx, lifecycle.ActionAccept, taskID, actorID, false, func(ctx context.Context, task *models.Task) (authz.Decision, error) {
		isMember, err := s.isMember(ctx, task.OrganizationID, actorID)
		if err != nil {
			return authz.Decision{}, err
		}
		return authz.CanAcceptTask(actorID, task, isMember), nil
	})
}

// Abandon gives up an in-progress or expired task. The receiver is kept.
func (s *TaskService) Abandon(ctx context.Context, taskID, actorID uint64) (*models.Task, error) {
	return s.transition(ctx, lifecycle.ActionAbandon, taskID, actorID, false, func(_ context.Context, task *models.Task) (authz.Decision, error) {
		return authz.CanAbandonTask(actorID, task), nil
	})
}

// Submit hands an in-progress task back to its publisher for confirmation.
func (s *TaskService) Submit(ctx context.Context, taskID, actorID uint64) (*models.Task, error) {
	return s.transition(ctx, lifecycle.ActionSubmit, taskID, actorID, false, func(_ context.Context, task *models.Task) (authz.Decision, error) {
		return authz.CanSubmitTask(actorID, task), nil
	})
}

// Confirm closes a submitted task. A nil success means success.
func (s *TaskService) Confirm(ctx context.Context, taskID, actorID uint64, success *bool) (*models.Task, error) {
	failed := success != nil && !*success
	return s.transition(ctx, lifecycle.ActionConfirm, taskID, actorID, failed, func(_ context.Context, task *models.Task) (authz.Decision, error) {
		return authz.CanConfirmTask(actorID, task), nil
	})
}

// Delete soft deletes a task. Only the publisher may do it.
func (s *TaskService) Delete(ctx context.Context, taskID, actorID uint64) (err error) {
	ctx, end := s.start(ctx, "delete", attribute.Int64("task.id", int64(taskID)), attribute.Int64("user.id", int64(actorID)))
	defer func() { end(err) }()

	task, err := s.find(ctx, taskID)
	if err != nil {
		return err
	}
	if err := authz.CanDeleteTask(actorID, task).Err(); err != nil {
		return err
	}

	deleted, err := s.taskRepo.Delete(ctx, taskID)
	if err != nil {
		return storeErr("delete task", err)
	}
	if !deleted {
		return ErrTaskNotFound
	}
	return nil
}

// Get returns a task to a member of its organization.
func (s *TaskService) Get(ctx context.Context, taskID, callerID uint64) (*models.Task, error) {
	task, err := s.find(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}

	isMember, err := s.isMember(ctx, task.OrganizationID, callerID)
	if err != nil {
		return nil, err
	}
	if err := authz.CanViewTask(callerID, task, isMember).Err(); err != nil {
		return nil, err
	}
	return task, nil
}

// ListByOrganization returns the organization's tasks to one of its members.
func (s *TaskService) ListByOrganization(ctx context.Context, orgID, callerID uint64) ([]models.Task, error) {
	org, err := s.orgRepo.FindByID(ctx, orgID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storeErr("find organization", err)
	}
	if err != nil {
		org = nil
	}

	isMember := false
	if org != nil {
		if isMember, err = s.isMember(ctx, orgID, callerID); err != nil {
			return nil, err
		}
	}
	if err := authz.CanViewOrganization(callerID, org, isMember).Err(); err != nil {
		return nil, err
	}

	tasks, err := s.taskRepo.ListByOrganization(ctx, orgID)
	if err != nil {
		return nil, storeErr("list tasks", err)
	}
	return tasks, nil
}

// GenerateDraftsInput represents input for AI task drafting
type GenerateDraftsInput struct {
	Text           string
	OrganizationID uint64
	UserID         uint64
}

// GenerateDrafts asks the drafter for task suggestions. Nothing is stored.
func (s *TaskService) GenerateDrafts(ctx context.Context, input GenerateDraftsInput) ([]TaskDraft, error) {
	if strings.TrimSpace(input.Text) == "" {
		return nil, ErrDraftTextRequired
	}

	isMember, err := s.isMember(ctx, input.OrganizationID, input.UserID)
	if err != nil {
		return nil, err
	}
	if err := authz.CanPublishTask(input.UserID, input.OrganizationID, isMember).Err(); err != nil {
		return nil, err
	}

	if s.drafter == nil {
		return nil, ErrAIServiceNotConfigured
	}

	drafts, err := s.drafter.DraftTasks(ctx, input.Text)
	if err != nil {
		return nil, err
	}

	valid := make([]TaskDraft, 0, len(drafts))
	for _, d := range drafts {
		d.Name = strings.TrimSpace(d.Name)
		if d.Name == "" {
			continue
		}
		if d.TimeLimitSeconds < 0 {
			d.TimeLimitSeconds = 0
		}
		valid = append(valid, d)
		if len(valid) == constants.MaxAIGeneratedTasks {
			break
		}
	}

	if len(valid) == 0 {
		return nil, ErrAINoTasksGenerated
	}
	return valid, nil
}

type checkFunc func(ctx context.Context, task *models.Task) (authz.Decision, error)

// transition runs one lifecycle action end to end. A guard conflict, an
// engine rejection and a lost compare-and-swap all return ErrTaskStateConflict.
func (s *TaskService) transition(ctx context.Context, action lifecycle.Action, taskID, actorID uint64, failed bool, check checkFunc) (task *models.Task, err error) {
	ctx, end := s.start(ctx, string(action), attribute.Int64("task.id", int64(taskID)), attribute.Int64("user.id", int64(actorID)))
	defer func() { end(err) }()

	task, err = s.find(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}

	decision, err := check(ctx, task)
	if err != nil {
		return nil, err
	}
	if err := decision.Err(); err != nil {
		return nil, conflictAsStateConflict(err)
	}

	tr, err := s.engine.Apply(lifecycle.Request{
		Action:  action,
		Task:    *task,
		ActorID: actorID,
		Failed:  failed,
	})
	if err != nil {
		return nil, conflictAsStateConflict(err)
	}

	swapped, err := s.taskRepo.CompareAndSwapStatus(ctx, task.ID, tr.From, tr.To, repository.StatusChange{
		ReceiverID:  tr.ReceiverID,
		CompletedAt: tr.CompletedAt,
	})
	if err != nil {
		return nil, storeErr("update task status", err)
	}
	if !swapped {
		return nil, ErrTaskStateConflict
	}

	tr.ApplyTo(task)
	return task, nil
}

func conflictAsStateConflict(err error) error {
	if errors.Is(err, authz.ErrConflict) {
		return ErrTaskStateConflict
	}
	return err
}

// find returns nil without error when the task does not exist.
func (s *TaskService) find(ctx context.Context, taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, storeErr("find task", err)
	}
	return task, nil
}

func (s *TaskService) isMember(ctx context.Context, orgID, userID uint64) (bool, error) {
	isMember, err := s.orgRepo.IsMember(ctx, orgID, userID)
	if err != nil {
		return false, storeErr("check membership", err)
	}
	return isMember, nil
}

func (s *TaskService) start(ctx context.Context, action string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	ctx, span := s.tracer.Start(ctx, "TaskService."+action, trace.WithAttributes(attrs...))
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		s.metrics.RecordTaskTransition(action, outcome(err))
	}
}
