package services

import (
	"context"
	"errors"

	"github.com/yukikurage/earth-fighter-api/internal/authz"
	"github.com/yukikurage/earth-fighter-api/internal/models"
	"github.com/yukikurage/earth-fighter-api/internal/repository"
	"gorm.io/gorm"
)

// UserService manages a user's own account.
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// Rename changes the target's username. Only the user themself may do it.
func (s *UserService) Rename(ctx context.Context, callerID, targetID uint64, username string) (*models.User, error) {
	if err := authz.CanRenameUser(callerID, targetID).Err(); err != nil {
		return nil, err
	}

	username, err := normalizeUsername(username)
	if err != nil {
		return nil, err
	}

	existing, err := s.userRepo.FindByUsername(ctx, username)
	switch {
	case err == nil && existing.ID != targetID:
		return nil, ErrUsernameTaken
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, storeErr("check username", err)
	}

	if err := s.userRepo.UpdateUsername(ctx, targetID, username); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		if errors.Is(err, repository.ErrDuplicateName) {
			return nil, ErrUsernameTaken
		}
		return nil, storeErr("update username", err)
	}

	return s.load(ctx, targetID)
}

// ChangePassword replaces the target's password. Only the user themself may do it.
func (s *UserService) ChangePassword(ctx context.Context, callerID, targetID uint64, password string) error {
	if err := authz.CanChangePassword(callerID, targetID).Err(); err != nil {
		return err
	}
	if err := checkPassword(password); err != nil {
		return err
	}

	hash, err := hashPassword(password)
	if err != nil {
		return err
	}

	if err := s.userRepo.UpdatePasswordHash(ctx, targetID, hash); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return storeErr("update password", err)
	}
	return nil
}

// Delete soft deletes the target account. Only the user themself may do it.
func (s *UserService) Delete(ctx context.Context, callerID, targetID uint64) error {
	if err := authz.CanDeleteUser(callerID, targetID).Err(); err != nil {
		return err
	}

	deleted, err := s.userRepo.SoftDelete(ctx, targetID)
	if err != nil {
		return storeErr("delete user", err)
	}
	if !deleted {
		return ErrUserNotFound
	}
	return nil
}

// GetInfo returns the target user and whether the caller may see the full record.
func (s *UserService) GetInfo(ctx context.Context, callerID, targetID uint64) (*models.User, bool, error) {
	user, err := s.load(ctx, targetID)
	if err != nil {
		return nil, false, err
	}
	return user, authz.CanReadFullUserInfo(callerID, targetID), nil
}

// FindByUsername looks a live user up by name.
func (s *UserService) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, storeErr("find user", err)
	}
	return user, nil
}

func (s *UserService) load(ctx context.Context, id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, storeErr("find user", err)
	}
	return user, nil
}
