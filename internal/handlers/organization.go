package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/earth-fighter-api/internal/dto"
	apierrors "github.com/yukikurage/earth-fighter-api/internal/errors"
	"github.com/yukikurage/earth-fighter-api/internal/middleware"
	"github.com/yukikurage/earth-fighter-api/internal/services"
)

type OrganizationHandler struct {
	orgService *services.OrganizationService
}

func NewOrganizationHandler(orgService *services.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{orgService: orgService}
}

// CreateOrganization creates a new organization with the caller as first member
func (h *OrganizationHandler) CreateOrganization(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	type CreateOrgRequest struct {
		Name string `json:"name"`
		Type string `json:"type" binding:"required"`
	}

	var req CreateOrgRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c, err)
		return
	}

	org, err := h.orgService.Create(c.Request.Context(), services.CreateOrganizationInput{
		Name:      req.Name,
		Type:      req.Type,
		CreatorID: userID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToOrganizationDTO(*org, true))
}

// ListOrganizations returns all organizations the user is a member of
func (h *OrganizationHandler) ListOrganizations(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	orgs, err := h.orgService.ListForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToOrganizationListResponse(orgs))
}

// GetOrganization returns the organization loaded by RequireOrganizationMember
func (h *OrganizationHandler) GetOrganization(c *gin.Context) {
	org, exists := middleware.GetOrganization(c)
	if !exists {
		apierrors.InternalError(c, "Organization not found in context")
		return
	}

	c.JSON(http.StatusOK, dto.ToOrganizationDTO(*org, true))
}

// DeleteOrganization soft deletes an organization; only its creator may do so
func (h *OrganizationHandler) DeleteOrganization(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	orgID, ok := middleware.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.orgService.Delete(c.Request.Context(), userID, orgID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Organization deleted successfully"})
}

// JoinOrganization adds the caller to an organization using its invite code
func (h *OrganizationHandler) JoinOrganization(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	orgID, ok := middleware.ParseID(c, "id")
	if !ok {
		return
	}

	type JoinOrgRequest struct {
		InviteCode string `json:"invite_code"`
	}

	var req JoinOrgRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c, err)
		return
	}

	org, err := h.orgService.Join(c.Request.Context(), userID, orgID, req.InviteCode)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToOrganizationDTO(*org, true))
}

// LeaveOrganization removes the caller's membership
func (h *OrganizationHandler) LeaveOrganization(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	orgID, ok := middleware.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.orgService.Leave(c.Request.Context(), userID, orgID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Left organization successfully"})
}

// ListMembers returns the members of an organization, oldest first
func (h *OrganizationHandler) ListMembers(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	org, exists := middleware.GetOrganization(c)
	if !exists {
		apierrors.InternalError(c, "Organization not found in context")
		return
	}

	members, err := h.orgService.ListMembers(c.Request.Context(), userID, org.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToOrganizationMembersResponse(members))
}
