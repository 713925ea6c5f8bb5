package handlers

import (
	"errors"
	"strings"

	"moimhub/internal/core/services"
	"moimhub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// OrganizationHandler handles organization and generation endpoints
type OrganizationHandler struct {
	organizationService *services.OrganizationService
}

// NewOrganizationHandler creates a new organization handler
func NewOrganizationHandler(organizationService *services.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{organizationService: organizationService}
}

// CreateOrganizationRequest represents organization creation request body
type CreateOrganizationRequest struct {
	Name            string `json:"name"`
	FirstGeneration string `json:"first_generation"`
}

// Create creates an organization
// @Summary Create organization
// @Description Create an organization with its first (primary) generation
// @Tags Organizations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateOrganizationRequest true "Organization data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /organizations [post]
func (h *OrganizationHandler) Create(c *fiber.Ctx) error {
	var req CreateOrganizationRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return response.BadRequest(c, "Name is required")
	}
	firstGen := strings.TrimSpace(req.FirstGeneration)
	if firstGen == "" {
		firstGen = "1기"
	}

	org, err := h.organizationService.CreateOrganization(c.Context(), name, firstGen)
	if err != nil {
		if errors.Is(err, services.ErrOrgNameTaken) {
			return response.Conflict(c, "Organization name already taken")
		}
		return response.InternalServerError(c, "Failed to create organization")
	}

	return response.Created(c, "Organization created successfully", fiber.Map{
		"organization": org,
	})
}

// List lists all organizations
// @Summary List organizations
// @Tags Organizations
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /organizations [get]
func (h *OrganizationHandler) List(c *fiber.Ctx) error {
	orgs, err := h.organizationService.ListOrganizations(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list organizations")
	}

	return response.Success(c, "Organizations retrieved successfully", fiber.Map{
		"organizations": orgs,
	})
}

// Get gets one organization
// @Summary Get organization
// @Tags Organizations
// @Security BearerAuth
// @Param id path int true "Organization ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /organizations/{id} [get]
func (h *OrganizationHandler) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid organization ID")
	}

	org, err := h.organizationService.GetOrganization(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrOrganizationNotFound) {
			return response.NotFound(c, "Organization not found")
		}
		return response.InternalServerError(c, "Failed to get organization")
	}

	return response.Success(c, "Organization retrieved successfully", fiber.Map{
		"organization": org,
	})
}

// Delete soft deletes an organization
// @Summary Delete organization
// @Tags Organizations
// @Security BearerAuth
// @Param id path int true "Organization ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /organizations/{id} [delete]
func (h *OrganizationHandler) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid organization ID")
	}

	if err := h.organizationService.DeleteOrganization(c.Context(), uint(id)); err != nil {
		if errors.Is(err, services.ErrOrganizationNotFound) {
			return response.NotFound(c, "Organization not found")
		}
		return response.InternalServerError(c, "Failed to delete organization")
	}

	return response.Success(c, "Organization deleted successfully", nil)
}

// CreateGenerationRequest represents generation creation request body
type CreateGenerationRequest struct {
	Name string `json:"name"`
}

// CreateGeneration adds a generation to an organization
// @Summary Create generation
// @Tags Organizations
// @Security BearerAuth
// @Param id path int true "Organization ID"
// @Param body body CreateGenerationRequest true "Generation data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /organizations/{id}/generations [post]
func (h *OrganizationHandler) CreateGeneration(c *fiber.Ctx) error {
	orgID, err := c.ParamsInt("id")
	if err != nil || orgID < 1 {
		return response.BadRequest(c, "Invalid organization ID")
	}

	var req CreateGenerationRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return response.BadRequest(c, "Name is required")
	}

	gen, err := h.organizationService.CreateGeneration(c.Context(), uint(orgID), name)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOrganizationNotFound):
			return response.NotFound(c, "Organization not found")
		case errors.Is(err, services.ErrGenNameTaken):
			return response.Conflict(c, "Generation name already taken")
		default:
			return response.InternalServerError(c, "Failed to create generation")
		}
	}

	return response.Created(c, "Generation created successfully", fiber.Map{
		"generation": gen,
	})
}

// ListGenerations lists an organization's generations
// @Summary List generations
// @Tags Organizations
// @Security BearerAuth
// @Param id path int true "Organization ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /organizations/{id}/generations [get]
func (h *OrganizationHandler) ListGenerations(c *fiber.Ctx) error {
	orgID, err := c.ParamsInt("id")
	if err != nil || orgID < 1 {
		return response.BadRequest(c, "Invalid organization ID")
	}

	gens, err := h.organizationService.ListGenerations(c.Context(), uint(orgID))
	if err != nil {
		if errors.Is(err, services.ErrOrganizationNotFound) {
			return response.NotFound(c, "Organization not found")
		}
		return response.InternalServerError(c, "Failed to list generations")
	}

	return response.Success(c, "Generations retrieved successfully", fiber.Map{
		"generations": gens,
	})
}

// SetPrimaryGeneration marks a generation as the organization's current one
// @Summary Set primary generation
// @Tags Organizations
// @Security BearerAuth
// @Param id path int true "Organization ID"
// @Param genId path int true "Generation ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /organizations/{id}/generations/{genId}/primary [post]
func (h *OrganizationHandler) SetPrimaryGeneration(c *fiber.Ctx) error {
	orgID, err := c.ParamsInt("id")
	if err != nil || orgID < 1 {
		return response.BadRequest(c, "Invalid organization ID")
	}
	genID, err := c.ParamsInt("genId")
	if err != nil || genID < 1 {
		return response.BadRequest(c, "Invalid generation ID")
	}

	if err := h.organizationService.SetPrimaryGeneration(c.Context(), uint(orgID), uint(genID)); err != nil {
		switch {
		case errors.Is(err, services.ErrGenerationNotFound):
			return response.NotFound(c, "Generation not found")
		case errors.Is(err, services.ErrGenerationWrongOrg):
			return response.BadRequest(c, "Generation belongs to a different organization")
		default:
			return response.InternalServerError(c, "Failed to set primary generation")
		}
	}

	return response.Success(c, "Primary generation updated", nil)
}

// DeleteGeneration soft deletes a generation
// @Summary Delete generation
// @Tags Organizations
// @Security BearerAuth
// @Param id path int true "Organization ID"
// @Param genId path int true "Generation ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /organizations/{id}/generations/{genId} [delete]
func (h *OrganizationHandler) DeleteGeneration(c *fiber.Ctx) error {
	orgID, err := c.ParamsInt("id")
	if err != nil || orgID < 1 {
		return response.BadRequest(c, "Invalid organization ID")
	}
	genID, err := c.ParamsInt("genId")
	if err != nil || genID < 1 {
		return response.BadRequest(c, "Invalid generation ID")
	}

	if err := h.organizationService.DeleteGeneration(c.Context(), uint(orgID), uint(genID)); err != nil {
		switch {
		case errors.Is(err, services.ErrGenerationNotFound):
			return response.NotFound(c, "Generation not found")
		case errors.Is(err, services.ErrGenerationWrongOrg):
			return response.BadRequest(c, "Generation belongs to a different organization")
		default:
			return response.InternalServerError(c, "Failed to delete generation")
		}
	}

	return response.Success(c, "Generation deleted successfully", nil)
}
