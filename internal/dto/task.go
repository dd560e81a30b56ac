package dto

import (
	"time"

	"github.com/yukikurage/earth-fighter-api/internal/models"
	"github.com/yukikurage/earth-fighter-api/internal/services"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
}

// UserDetailDTO is the full record, shown only to the user themself
type UserDetailDTO struct {
	UserDTO
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LoginResponse carries the user and a bearer token for non-browser clients
type LoginResponse struct {
	User  UserDTO `json:"user"`
	Token string  `json:"token"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID               uint64            `json:"id"`
	Name             string            `json:"name"`
	Description      string            `json:"description"`
	Status           models.TaskStatus `json:"status"`
	PublisherID      uint64            `json:"publisher_id"`
	ReceiverID       *uint64           `json:"receiver_id"`
	TimeLimitSeconds int64             `json:"time_limit_seconds"`
	OrganizationID   uint64            `json:"organization_id"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
	CompletedAt      *time.Time        `json:"completed_at"`
	Publisher        *UserDTO          `json:"publisher,omitempty"`
}

// TaskListResponse represents the tasks of one organization
type TaskListResponse struct {
	Tasks []TaskDTO `json:"tasks"`
}

// TaskDraftsResponse wraps AI generated drafts
type TaskDraftsResponse struct {
	Drafts []services.TaskDraft `json:"drafts"`
}

// Conversion functions

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:       user.ID,
		Username: user.Username,
	}
}

// ToUserDetailDTO converts a User model to the full record
func ToUserDetailDTO(user models.User) UserDetailDTO {
	return UserDetailDTO{
		UserDTO:   ToUserDTO(user),
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:               task.ID,
		Name:             task.Name,
		Description:      task.Description,
		Status:           task.Status,
		PublisherID:      task.PublisherID,
		ReceiverID:       task.ReceiverID,
		TimeLimitSeconds: task.TimeLimitSeconds,
		OrganizationID:   task.OrganizationID,
		CreatedAt:        task.CreatedAt,
		UpdatedAt:        task.UpdatedAt,
		CompletedAt:      task.CompletedAt,
	}

	// Include publisher if preloaded
	if task.Publisher.ID != 0 {
		publisher := ToUserDTO(task.Publisher)
		dto.Publisher = &publisher
	}

	return dto
}

// ToTaskListResponse converts a slice of tasks to TaskListResponse
func ToTaskListResponse(tasks []models.Task) TaskListResponse {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task)
	}
	return TaskListResponse{Tasks: items}
}
