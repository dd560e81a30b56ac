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
	"github.com/yukikurage/earth-fighter-api/internal/config"
	"github.com/yukikurage/earth-fighter-api/internal/metrics"
	"github.com/yukikurage/earth-fighter-api/internal/models"
	"github.com/yukikurage/earth-fighter-api/internal/repository"
	"github.com/yukikurage/earth-fighter-api/internal/telemetry"
	"github.com/yukikurage/earth-fighter-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrOrganizationNotFound      = authz.NotFound("organization not found")
	ErrInvalidOrganizationName   = authz.BadRequest("organization name cannot be empty")
	ErrInvalidOrganizationType   = authz.BadRequest("organization type is not supported")
	ErrOrganizationNameTaken     = authz.Conflict("organization name already exists")
	ErrInviteCodeRequired        = authz.BadRequest("invite code is required")
	ErrAlreadyOrganizationMember = authz.Conflict("user is already a member of this organization")
	ErrNotOrganizationMember     = authz.Forbidden("user is not a member of this organization")
)

// OrganizationService creates organizations and manages their membership.
type OrganizationService struct {
	orgRepo repository.OrganizationRepository
	domain  config.Domain
	codes   utils.InviteCodeGenerator
	metrics *metrics.Metrics
	tracer  trace.Tracer
	now     func() time.Time
}

// NewOrganizationService creates a new OrganizationService.
func NewOrganizationService(orgRepo repository.OrganizationRepository, domain config.Domain, codes utils.InviteCodeGenerator, m *metrics.Metrics) *OrganizationService {
	return &OrganizationService{
		orgRepo: orgRepo,
		domain:  domain,
		codes:   codes,
		metrics: m,
		tracer:  telemetry.Tracer(),
		now:     time.Now,
	}
}

// CreateOrganizationInput represents parameters to create a new organization.
type CreateOrganizationInput struct {
	Name      string
	Type      string
	CreatorID uint64
}

// Create creates an organization with the creator as its first member.
func (s *OrganizationService) Create(ctx context.Context, input CreateOrganizationInput) (org *models.Organization, err error) {
	ctx, end := s.start(ctx, "create", attribute.Int64("user.id", int64(input.CreatorID)))
	defer func() { end(err) }()

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrInvalidOrganizationName
	}

	if _, err := s.orgRepo.FindByName(ctx, name); err == nil {
		return nil, ErrOrganizationNameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storeErr("check organization name", err)
	}

	if !s.domain.IsOrganizationTypeValid(input.Type) {
		return nil, ErrInvalidOrganizationType
	}

	inviteCode, err := s.codes.Generate()
	if err != nil {
		return nil, storeErr("generate invite code", err)
	}

	org = &models.Organization{
		Name:       name,
		Type:       input.Type,
		CreatorID:  input.CreatorID,
		InviteCode: inviteCode,
	}
	member := &models.OrganizationMember{JoinedAt: s.now()}

	// The live-name unique index settles concurrent creates that both passed the check above.
	if err := s.orgRepo.Create(ctx, org, member); err != nil {
		if errors.Is(err, repository.ErrDuplicateName) {
			return nil, ErrOrganizationNameTaken
		}
		return nil, storeErr("create organization", err)
	}

	return org, nil
}

// Join adds the user to the organization when the invite code matches.
func (s *OrganizationService) Join(ctx context.Context, userID, orgID uint64, inviteCode string) (org *models.Organization, err error) {
	ctx, end := s.start(ctx, "join", attribute.Int64("organization.id", int64(orgID)), attribute.Int64("user.id", int64(userID)))
	defer func() { end(err) }()

	inviteCode = strings.TrimSpace(inviteCode)
	if inviteCode == "" {
		return nil, ErrInviteCodeRequired
	}

	org, isMember, err := s.loadWithMembership(ctx, orgID, userID)
	if err != nil {
		return nil, err
	}
	if err := authz.CanJoinOrganization(userID, org, isMember, inviteCode).Err(); err != nil {
		return nil, err
	}

	member := &models.OrganizationMember{
		OrganizationID: orgID,
		UserID:         userID,
		JoinedAt:       s.now(),
	}
	if err := s.orgRepo.AddMember(ctx, member); err != nil {
		if errors.Is(err, repository.ErrDuplicateMember) {
			return nil, ErrAlreadyOrganizationMember
		}
		// Drivers without duplicate-key translation: a concurrent join won.
		if joined, checkErr := s.orgRepo.IsMember(ctx, orgID, userID); checkErr == nil && joined {
			return nil, ErrAlreadyOrganizationMember
		}
		return nil, storeErr("add organization member", err)
	}

	return org, nil
}

// Leave removes the user from the organization. The creator may leave too.
func (s *OrganizationService) Leave(ctx context.Context, userID, orgID uint64) (err error) {
	ctx, end := s.start(ctx, "leave", attribute.Int64("organization.id", int64(orgID)), attribute.Int64("user.id", int64(userID)))
	defer func() { end(err) }()

	org, isMember, err := s.loadWithMembership(ctx, orgID, userID)
	if err != nil {
		return err
	}
	if err := authz.CanLeaveOrganization(userID, org, isMember).Err(); err != nil {
		return err
	}

	removed, err := s.orgRepo.RemoveMember(ctx, orgID, userID)
	if err != nil {
		return storeErr("remove organization member", err)
	}
	if !removed {
		return ErrNotOrganizationMember
	}
	return nil
}

// Delete soft deletes the organization. Only the creator may do it.
func (s *OrganizationService) Delete(ctx context.Context, callerID, orgID uint64) (err error) {
	ctx, end := s.start(ctx, "delete", attribute.Int64("organization.id", int64(orgID)), attribute.Int64("user.id", int64(callerID)))
	defer func() { end(err) }()

	org, err := s.find(ctx, orgID)
	if err != nil {
		return err
	}
	if err := authz.CanDeleteOrganization(callerID, org).Err(); err != nil {
		return err
	}

	deleted, err := s.orgRepo.SoftDelete(ctx, orgID)
	if err != nil {
		return storeErr("delete organization", err)
	}
	if !deleted {
		return ErrOrganizationNotFound
	}
	return nil
}

// Get returns the organization if the caller is a member.
func (s *OrganizationService) Get(ctx context.Context, callerID, orgID uint64) (*models.Organization, error) {
	org, isMember, err := s.loadWithMembership(ctx, orgID, callerID)
	if err != nil {
		return nil, err
	}
	if err := authz.CanViewOrganization(callerID, org, isMember).Err(); err != nil {
		return nil, err
	}
	return org, nil
}

// ListForUser returns the live organizations the user belongs to.
func (s *OrganizationService) ListForUser(ctx context.Context, userID uint64) ([]models.Organization, error) {
	orgs, err := s.orgRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, storeErr("list organizations", err)
	}
	return orgs, nil
}

// ListMembers returns the members of the organization if the caller is one of them.
func (s *OrganizationService) ListMembers(ctx context.Context, callerID, orgID uint64) ([]models.OrganizationMember, error) {
	if _, err := s.Get(ctx, callerID, orgID); err != nil {
		return nil, err
	}

	members, err := s.orgRepo.ListMembers(ctx, orgID)
	if err != nil {
		return nil, storeErr("list organization members", err)
	}
	return members, nil
}

// IsMember reports whether the user belongs to the live organization.
func (s *OrganizationService) IsMember(ctx context.Context, orgID, userID uint64) (bool, error) {
	isMember, err := s.orgRepo.IsMember(ctx, orgID, userID)
	if err != nil {
		return false, storeErr("check membership", err)
	}
	return isMember, nil
}

// find returns nil without error when the organization does not exist, so
// the guard decides how to report it.
func (s *OrganizationService) find(ctx context.Context, orgID uint64) (*models.Organization, error) {
	org, err := s.orgRepo.FindByID(ctx, orgID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, storeErr("find organization", err)
	}
	return org, nil
}

func (s *OrganizationService) loadWithMembership(ctx context.Context, orgID, userID uint64) (*models.Organization, bool, error) {
	org, err := s.find(ctx, orgID)
	if err != nil || org == nil {
		return nil, false, err
	}
	isMember, err := s.IsMember(ctx, orgID, userID)
	if err != nil {
		return nil, false, err
	}
	return org, isMember, nil
}

// start opens a span for a membership operation. The returned func ends it
// and records the outcome.
func (s *OrganizationService) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	ctx, span := s.tracer.Start(ctx, "OrganizationService."+op, trace.WithAttributes(attrs...))
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		s.metrics.RecordMembershipChange(op, outcome(err))
	}
}
