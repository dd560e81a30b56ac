package repository

import (
	"context"
	"errors"
	"time"

	"github.com/yukikurage/earth-fighter-api/internal/models"
)

var (
	// ErrDuplicateMember is returned by AddMember when the membership row already exists.
	ErrDuplicateMember = errors.New("organization member already exists")
	// ErrDuplicateName is returned when a live user or organization already holds the name.
	ErrDuplicateName = errors.New("name already taken")
)

// StatusChange carries the columns written together with a status change.
// Nil fields are left untouched.
type StatusChange struct {
	ReceiverID  *uint64
	CompletedAt *time.Time
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create inserts a new task
	Create(ctx context.Context, task *models.Task) error

	// FindByID finds a non-deleted task by ID with optional preloading
	FindByID(ctx context.Context, id uint64, preload ...string) (*models.Task, error)

	// ListByOrganization lists the non-deleted tasks of an organization, newest first
	ListByOrganization(ctx context.Context, organizationID uint64) ([]models.Task, error)

	// CompareAndSwapStatus moves the task from expected to next only if it is
	// still in expected and not deleted. It reports whether a row was updated.
	CompareAndSwapStatus(ctx context.Context, id uint64, expected, next models.TaskStatus, change StatusChange) (bool, error)

	// Delete soft deletes a task. It reports whether a live row was deleted.
	Delete(ctx context.Context, id uint64) (bool, error)
}

// OrganizationRepository defines the interface for organization and membership data access
type OrganizationRepository interface {
	// Create inserts the organization and the creator's membership in one transaction.
	// Returns ErrDuplicateName if a live organization has the same name.
	Create(ctx context.Context, org *models.Organization, creator *models.OrganizationMember) error

	// FindByID finds a non-deleted organization by ID
	FindByID(ctx context.Context, id uint64) (*models.Organization, error)

	// FindByName finds a non-deleted organization by name
	FindByName(ctx context.Context, name string) (*models.Organization, error)

	// SoftDelete marks the organization deleted. Membership rows are kept.
	SoftDelete(ctx context.Context, id uint64) (bool, error)

	// AddMember inserts a membership row. Returns ErrDuplicateMember if it exists.
	AddMember(ctx context.Context, member *models.OrganizationMember) error

	// RemoveMember deletes a membership row. It reports whether a row was removed.
	RemoveMember(ctx context.Context, organizationID, userID uint64) (bool, error)

	// IsMember reports membership in a non-deleted organization
	IsMember(ctx context.Context, organizationID, userID uint64) (bool, error)

	// ListMembers lists the members of an organization that are live users, with
	// their users preloaded
	ListMembers(ctx context.Context, organizationID uint64) ([]models.OrganizationMember, error)

	// ListByUser lists the non-deleted organizations a user belongs to
	ListByUser(ctx context.Context, userID uint64) ([]models.Organization, error)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create inserts a new user. Returns ErrDuplicateName if the username is live.
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a non-deleted user by ID
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindByUsername finds a non-deleted user by username
	FindByUsername(ctx context.Context, username string) (*models.User, error)

	// UpdateUsername changes the username of a live user. Returns ErrDuplicateName
	// if another live user holds it.
	UpdateUsername(ctx context.Context, id uint64, username string) error

	// UpdatePasswordHash replaces the stored password hash of a live user
	UpdatePasswordHash(ctx context.Context, id uint64, hash string) error

	// SoftDelete marks the user deleted. It reports whether a live row was deleted.
	SoftDelete(ctx context.Context, id uint64) (bool, error)
}
