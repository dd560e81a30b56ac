package repository

import (
	"context"

	"github.com/yukikurage/earth-fighter-api/internal/models"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create inserts a new task
func (r *GormTaskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(ctx context.Context, id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db.WithContext(ctx)

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// ListByOrganization lists tasks of an organization, newest first
func (r *GormTaskRepository) ListByOrganization(ctx context.Context, organizationID uint64) ([]models.Task, error) {
	tasks := []models.Task{}
	if err := r.db.WithContext(ctx).
		Where("organization_id = ?", organizationID).
		Order("created_at DESC, id DESC").
		Preload("Publisher").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// CompareAndSwapStatus updates the status only while the row still holds expected.
func (r *GormTaskRepository) CompareAndSwapStatus(ctx context.Context, id uint64, expected, next models.TaskStatus, change StatusChange) (bool, error) {
	updates := map[string]interface{}{"status": next}
	if change.ReceiverID != nil {
		updates["receiver_id"] = *change.ReceiverID
	}
	if change.CompletedAt != nil {
		updates["completed_at"] = *change.CompletedAt
	}

	// The soft delete scope on Model adds deleted_at IS NULL.
	result := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// Delete soft deletes a task
func (r *GormTaskRepository) Delete(ctx context.Context, id uint64) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&models.Task{}, id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
