package repository

import (
	"context"
	"errors"

	"github.com/yukikurage/earth-fighter-api/internal/models"
	"gorm.io/gorm"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create inserts a new user
func (r *GormUserRepository) Create(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateName
	}
	return err
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername finds a user by username
func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUsername changes the username
func (r *GormUserRepository) UpdateUsername(ctx context.Context, id uint64, username string) error {
	return r.updateColumn(ctx, id, "username", username)
}

// UpdatePasswordHash replaces the password hash
func (r *GormUserRepository) UpdatePasswordHash(ctx context.Context, id uint64, hash string) error {
	return r.updateColumn(ctx, id, "password_hash", hash)
}

func (r *GormUserRepository) updateColumn(ctx context.Context, id uint64, column string, value interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update(column, value)
	if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
		return ErrDuplicateName
	}
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SoftDelete marks the user deleted
func (r *GormUserRepository) SoftDelete(ctx context.Context, id uint64) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&models.User{}, id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
