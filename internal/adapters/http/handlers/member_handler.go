package handlers

import (
	"errors"
	"strconv"
	"strings"

	"moimhub/internal/core/services"
	"moimhub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// MemberHandler handles member management endpoints
type MemberHandler struct {
	memberService *services.MemberService
}

// NewMemberHandler creates a new member handler
func NewMemberHandler(memberService *services.MemberService) *MemberHandler {
	return &MemberHandler{memberService: memberService}
}

// List lists an organization's members
// @Summary List members
// @Description List an organization's members with pagination, search and filters
// @Tags Members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Organization ID"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Param q query string false "Search by name, phone or company"
// @Param generation_id query int false "Filter by generation"
// @Param status query string false "Filter by affiliation status"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /organizations/{id}/members [get]
func (h *MemberHandler) List(c *fiber.Ctx) error {
	orgID, err := c.ParamsInt("id")
	if err != nil || orgID < 1 {
		return response.BadRequest(c, "Invalid organization ID")
	}

	generationID, _ := strconv.Atoi(c.Query("generation_id", "0"))
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "0"))

	items, meta, err := h.memberService.List(c.Context(), &services.ListInput{
		OrganizationID: uint(orgID),
		Query:          strings.TrimSpace(c.Query("q")),
		GenerationID:   uint(generationID),
		Status:         c.Query("status"),
		Page:           page,
		Limit:          limit,
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to list members")
	}

	return response.Success(c, "Members retrieved successfully", fiber.Map{
		"members":    items,
		"pagination": meta,
	})
}

// Create adds a member on behalf of an admin
// @Summary Create member
// @Description Create a member with a provisioned password, reusing an existing member by phone
// @Tags Members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.AdminCreateInput true "Member data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /members [post]
func (h *MemberHandler) Create(c *fiber.Ctx) error {
	var req services.AdminCreateInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if strings.TrimSpace(req.Name) == "" {
		return response.BadRequest(c, "Name is required")
	}
	if req.Phone == "" {
		return response.BadRequest(c, "Phone is required")
	}
	if req.OrganizationID == 0 || req.GenerationID == 0 {
		return response.BadRequest(c, "Organization and generation are required")
	}

	member, err := h.memberService.AdminCreate(c.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidPhone):
			return response.BadRequest(c, "Invalid phone number")
		case errors.Is(err, services.ErrGenerationNotFound):
			return response.BadRequest(c, "Unknown organization or generation")
		case errors.Is(err, services.ErrAffiliationExists):
			return response.Conflict(c, "Member already belongs to this organization")
		default:
			return response.InternalServerError(c, "Failed to create member")
		}
	}

	return response.Created(c, "Member created successfully", fiber.Map{
		"member": member.ToResponse(),
	})
}

// BulkCreateRequest represents bulk member import request body
type BulkCreateRequest struct {
	OrganizationID uint               `json:"organization_id"`
	GenerationID   uint               `json:"generation_id"`
	Rows           []services.BulkRow `json:"rows"`
}

// BulkCreate imports many members at once
// @Summary Bulk import members
// @Description Import many members into one generation; bad rows are skipped and reported
// @Tags Members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body BulkCreateRequest true "Import rows"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /members/bulk [post]
func (h *MemberHandler) BulkCreate(c *fiber.Ctx) error {
	var req BulkCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if len(req.Rows) == 0 {
		return response.BadRequest(c, "No rows to import")
	}

	result, err := h.memberService.BulkCreate(c.Context(), req.OrganizationID, req.GenerationID, req.Rows)
	if err != nil {
		if errors.Is(err, services.ErrGenerationNotFound) {
			return response.BadRequest(c, "Unknown organization or generation")
		}
		return response.InternalServerError(c, "Failed to import members")
	}

	return response.Success(c, "Bulk import finished", result)
}

// Approve approves a pending affiliation
// @Summary Approve affiliation
// @Tags Members
// @Security BearerAuth
// @Param id path int true "Affiliation ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /affiliations/{id}/approve [post]
func (h *MemberHandler) Approve(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid affiliation ID")
	}

	if err := h.memberService.Approve(c.Context(), uint(id)); err != nil {
		if errors.Is(err, services.ErrAffiliationNotFound) {
			return response.NotFound(c, "Affiliation not found")
		}
		return response.InternalServerError(c, "Failed to approve affiliation")
	}

	return response.Success(c, "Affiliation approved", nil)
}

// Reject rejects a pending affiliation
// @Summary Reject affiliation
// @Tags Members
// @Security BearerAuth
// @Param id path int true "Affiliation ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /affiliations/{id}/reject [post]
func (h *MemberHandler) Reject(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid affiliation ID")
	}

	if err := h.memberService.Reject(c.Context(), uint(id)); err != nil {
		if errors.Is(err, services.ErrAffiliationNotFound) {
			return response.NotFound(c, "Affiliation not found")
		}
		return response.InternalServerError(c, "Failed to reject affiliation")
	}

	return response.Success(c, "Affiliation rejected", nil)
}

// ChangeRoleRequest represents role change request body
type ChangeRoleRequest struct {
	Role string `json:"role"`
}

// ChangeRole changes an affiliation's role
// @Summary Change affiliation role
// @Tags Members
// @Security BearerAuth
// @Param id path int true "Affiliation ID"
// @Param body body ChangeRoleRequest true "New role"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /affiliations/{id}/role [patch]
func (h *MemberHandler) ChangeRole(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid affiliation ID")
	}

	var req ChangeRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.memberService.ChangeRole(c.Context(), uint(id), req.Role); err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidRole):
			return response.BadRequest(c, "Role must be USER or ADMIN")
		case errors.Is(err, services.ErrAffiliationNotFound):
			return response.NotFound(c, "Affiliation not found")
		default:
			return response.InternalServerError(c, "Failed to change role")
		}
	}

	return response.Success(c, "Role changed", nil)
}

// UpdateProfile edits the authenticated member's own profile
// @Summary Update own profile
// @Tags Members
// @Security BearerAuth
// @Param body body services.UpdateProfileInput true "Profile fields"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /members/me [patch]
func (h *MemberHandler) UpdateProfile(c *fiber.Ctx) error {
	memberID, ok := c.Locals("memberID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req services.UpdateProfileInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	member, err := h.memberService.UpdateProfile(c.Context(), memberID, &req)
	if err != nil {
		if errors.Is(err, services.ErrMemberNotFound) {
			return response.NotFound(c, "Member not found")
		}
		return response.InternalServerError(c, "Failed to update profile")
	}

	return response.Success(c, "Profile updated successfully", fiber.Map{
		"member": member.ToResponse(),
	})
}

// Update edits any member's profile as an admin
// @Summary Update member
// @Tags Members
// @Security BearerAuth
// @Param id path int true "Member ID"
// @Param body body services.AdminUpdateInput true "Member fields"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /members/{id} [patch]
func (h *MemberHandler) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid member ID")
	}

	var req services.AdminUpdateInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	member, err := h.memberService.AdminUpdate(c.Context(), uint(id), &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMemberNotFound):
			return response.NotFound(c, "Member not found")
		case errors.Is(err, services.ErrPhoneTaken):
			return response.Conflict(c, "Phone number already registered")
		default:
			return response.InternalServerError(c, "Failed to update member")
		}
	}

	return response.Success(c, "Member updated successfully", fiber.Map{
		"member": member.ToResponse(),
	})
}

// Delete removes a member and revokes their sessions
// @Summary Delete member
// @Tags Members
// @Security BearerAuth
// @Param id path int true "Member ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /members/{id} [delete]
func (h *MemberHandler) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid member ID")
	}

	if err := h.memberService.Delete(c.Context(), uint(id)); err != nil {
		if errors.Is(err, services.ErrMemberNotFound) {
			return response.NotFound(c, "Member not found")
		}
		return response.InternalServerError(c, "Failed to delete member")
	}

	return response.Success(c, "Member deleted successfully", nil)
}
