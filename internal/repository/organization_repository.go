package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/earth-fighter-api/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrCreateOrganization is returned when inserting the organization fails inside the create transaction.
	ErrCreateOrganization = errors.New("organization repository: create organization failed")
	// ErrCreateOrganizationMember is returned when inserting the creator membership fails inside the create transaction.
	ErrCreateOrganizationMember = errors.New("organization repository: create organization member failed")
)

// GormOrganizationRepository is a GORM implementation of OrganizationRepository
type GormOrganizationRepository struct {
	db *gorm.DB
}

// NewOrganizationRepository creates a new OrganizationRepository
func NewOrganizationRepository(db *gorm.DB) OrganizationRepository {
	return &GormOrganizationRepository{db: db}
}

// Create inserts the organization and its creator membership atomically.
func (r *GormOrganizationRepository) Create(ctx context.Context, org *models.Organization, creator *models.OrganizationMember) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(org).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: %w", ErrCreateOrganization, ErrDuplicateName)
			}
			return fmt.Errorf("%w: %v", ErrCreateOrganization, err)
		}

		creator.OrganizationID = org.ID
		creator.UserID = org.CreatorID

		if err := tx.Create(creator).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateOrganizationMember, err)
		}

		return nil
	})
}

// FindByID finds an organization by ID
func (r *GormOrganizationRepository) FindByID(ctx context.Context, id uint64) (*models.Organization, error) {
	var org models.Organization
	if err := r.db.WithContext(ctx).First(&org, id).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

// FindByName finds an organization by name
func (r *GormOrganizationRepository) FindByName(ctx context.Context, name string) (*models.Organization, error) {
	var org models.Organization
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&org).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

// SoftDelete marks the organization deleted
func (r *GormOrganizationRepository) SoftDelete(ctx context.Context, id uint64) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&models.Organization{}, id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// AddMember inserts a membership row
func (r *GormOrganizationRepository) AddMember(ctx context.Context, member *models.OrganizationMember) error {
	err := r.db.WithContext(ctx).Create(member).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateMember
	}
	return err
}

// RemoveMember deletes a membership row
func (r *GormOrganizationRepository) RemoveMember(ctx context.Context, organizationID, userID uint64) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("organization_id = ? AND user_id = ?", organizationID, userID).
		Delete(&models.OrganizationMember{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// IsMember reports whether userID belongs to a live organization
func (r *GormOrganizationRepository) IsMember(ctx context.Context, organizationID, userID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.OrganizationMember{}).
		Joins("JOIN organizations ON organizations.id = organization_members.organization_id").
		Where("organization_members.organization_id = ? AND organization_members.user_id = ?", organizationID, userID).
		Where("organizations.deleted_at IS NULL").
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListMembers lists the live members of an organization. Rows of soft deleted
// users are skipped.
func (r *GormOrganizationRepository) ListMembers(ctx context.Context, organizationID uint64) ([]models.OrganizationMember, error) {
	members := []models.OrganizationMember{}
	if err := r.db.WithContext(ctx).
		Joins("JOIN users ON users.id = organization_members.user_id AND users.deleted_at IS NULL").
		Preload("User").
		Where("organization_members.organization_id = ?", organizationID).
		Order("organization_members.joined_at ASC").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// ListByUser lists all live organizations a user is a member of
func (r *GormOrganizationRepository) ListByUser(ctx context.Context, userID uint64) ([]models.Organization, error) {
	orgs := []models.Organization{}
	if err := r.db.WithContext(ctx).
		Joins("JOIN organization_members ON organization_members.organization_id = organizations.id").
		Where("organization_members.user_id = ?", userID).
		Order("organizations.id ASC").
		Find(&orgs).Error; err != nil {
		return nil, err
	}
	return orgs, nil
}
