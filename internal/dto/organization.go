package dto

import (
	"time"

	"github.com/yukikurage/earth-fighter-api/internal/models"
)

// OrganizationDTO represents an organization in API responses
type OrganizationDTO struct {
	ID         uint64    `json:"id"`
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	CreatorID  uint64    `json:"creator_id"`
	InviteCode string    `json:"invite_code,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// OrganizationMemberDTO represents a member in an organization
type OrganizationMemberDTO struct {
	User     UserDTO   `json:"user"`
	JoinedAt time.Time `json:"joined_at"`
}

// OrganizationListResponse lists the caller's organizations
type OrganizationListResponse struct {
	Organizations []OrganizationDTO `json:"organizations"`
}

// OrganizationMembersResponse lists the members of one organization
type OrganizationMembersResponse struct {
	Members []OrganizationMemberDTO `json:"members"`
}

// ToOrganizationDTO converts an Organization model to OrganizationDTO.
// The invite code is only included for members.
func ToOrganizationDTO(org models.Organization, includeInviteCode bool) OrganizationDTO {
	dto := OrganizationDTO{
		ID:        org.ID,
		Name:      org.Name,
		Type:      org.Type,
		CreatorID: org.CreatorID,
		CreatedAt: org.CreatedAt,
	}
	if includeInviteCode {
		dto.InviteCode = org.InviteCode
	}
	return dto
}

// ToOrganizationListResponse converts the caller's organizations
func ToOrganizationListResponse(orgs []models.Organization) OrganizationListResponse {
	items := make([]OrganizationDTO, len(orgs))
	for i, org := range orgs {
		items[i] = ToOrganizationDTO(org, true)
	}
	return OrganizationListResponse{Organizations: items}
}

// ToOrganizationMemberDTO converts a member to DTO
func ToOrganizationMemberDTO(member models.OrganizationMember) OrganizationMemberDTO {
	return OrganizationMemberDTO{
		User:     ToUserDTO(member.User),
		JoinedAt: member.JoinedAt,
	}
}

// ToOrganizationMembersResponse converts a member list
func ToOrganizationMembersResponse(members []models.OrganizationMember) OrganizationMembersResponse {
	items := make([]OrganizationMemberDTO, len(members))
	for i, member := range members {
		items[i] = ToOrganizationMemberDTO(member)
	}
	return OrganizationMembersResponse{Members: items}
}
