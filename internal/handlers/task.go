package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/earth-fighter-api/internal/dto"
	apierrors "github.com/yukikurage/earth-fighter-api/internal/errors"
	"github.com/yukikurage/earth-fighter-api/internal/middleware"
	"github.com/yukikurage/earth-fighter-api/internal/models"
	"github.com/yukikurage/earth-fighter-api/internal/services"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// ListOrganizationTasks returns the tasks of the organization loaded by
// RequireOrganizationMember, newest first
func (h *TaskHandler) ListOrganizationTasks(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	org, exists := middleware.GetOrganization(c)
	if !exists {
		apierrors.InternalError(c, "Organization not found in context")
		return
	}

	tasks, err := h.taskService.ListByOrganization(c.Request.Context(), org.ID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks))
}

// GetTask returns a specific task by ID
// Task is already loaded by RequireTaskAccess middleware
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, exists := middleware.GetTask(c)
	if !exists {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// CreateTask publishes a new pending task
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	type CreateTaskRequest struct {
		Name             string `json:"name"`
		Description      string `json:"description"`
		TimeLimitSeconds int64  `json:"time_limit_seconds"`
		OrganizationID   uint64 `json:"organization_id" binding:"required"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c, err)
		return
	}

	task, err := h.taskService.Publish(c.Request.Context(), services.PublishTaskInput{
		Name:           req.Name,
		Description:    req.Description,
		TimeLimit:      time.Duration(req.TimeLimitSeconds) * time.Second,
		OrganizationID: req.OrganizationID,
		PublisherID:    userID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// GenerateDrafts asks the AI drafter for task suggestions. Nothing is stored.
func (h *TaskHandler) GenerateDrafts(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	type GenerateDraftsRequest struct {
		OrganizationID uint64 `json:"organization_id" binding:"required"`
		Text           string `json:"text"`
	}

	var req GenerateDraftsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c, err)
		return
	}

	drafts, err := h.taskService.GenerateDrafts(c.Request.Context(), services.GenerateDraftsInput{
		Text:           req.Text,
		OrganizationID: req.OrganizationID,
		UserID:         userID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TaskDraftsResponse{Drafts: drafts})
}

// DeleteTask soft deletes a task; only its publisher may do so
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, ok := middleware.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.taskService.Delete(c.Request.Context(), taskID, userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

// AcceptTask makes the caller the receiver of a pending task
func (h *TaskHandler) AcceptTask(c *gin.Context) {
	h.transition(c, h.taskService.Accept)
}

// AbandonTask gives up an in-progress or expired task
func (h *TaskHandler) AbandonTask(c *gin.Context) {
	h.transition(c, h.taskService.Abandon)
}

// SubmitTask hands the work back to the publisher for confirmation
func (h *TaskHandler) SubmitTask(c *gin.Context) {
	h.transition(c, h.taskService.Submit)
}

// ConfirmTask resolves a submitted task. The body is optional; "success": false
// marks the task failed.
func (h *TaskHandler) ConfirmTask(c *gin.Context) {
	var req struct {
		Success *bool `json:"success"`
	}
	if c.Request.Body != nil && c.Request.Body != http.NoBody {
		// An empty body, chunked or not, means plain completion.
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			invalidBody(c, err)
			return
		}
	}

	h.transition(c, func(ctx context.Context, taskID, actorID uint64) (*models.Task, error) {
		return h.taskService.Confirm(ctx, taskID, actorID, req.Success)
	})
}

type transitionFunc func(ctx context.Context, taskID, actorID uint64) (*models.Task, error)

func (h *TaskHandler) transition(c *gin.Context, apply transitionFunc) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, ok := middleware.ParseID(c, "id")
	if !ok {
		return
	}

	task, err := apply(c.Request.Context(), taskID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}
