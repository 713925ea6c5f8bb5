package handlers

import (
	"errors"

	"moimhub/internal/core/services"
	"moimhub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// PositionHandler handles position tree endpoints
type PositionHandler struct {
	positionService *services.PositionService
}

// NewPositionHandler creates a new position handler
func NewPositionHandler(positionService *services.PositionService) *PositionHandler {
	return &PositionHandler{positionService: positionService}
}

// Tree returns a generation's position tree
// @Summary Get position tree
// @Description Get the positions of a generation as a nested forest ordered by rank
// @Tags Positions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param genId path int true "Generation ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /generations/{genId}/positions [get]
func (h *PositionHandler) Tree(c *fiber.Ctx) error {
	genID, err := c.ParamsInt("genId")
	if err != nil || genID < 1 {
		return response.BadRequest(c, "Invalid generation ID")
	}

	tree, err := h.positionService.Tree(c.Context(), uint(genID))
	if err != nil {
		if errors.Is(err, services.ErrGenerationNotFound) {
			return response.NotFound(c, "Generation not found")
		}
		return response.InternalServerError(c, "Failed to get positions")
	}

	return response.Success(c, "Positions retrieved successfully", fiber.Map{
		"positions": tree,
	})
}

// Create adds a position to a generation
// @Summary Create position
// @Description Create a position; the rank is assigned as the next sibling slot
// @Tags Positions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreatePositionInput true "Position data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /positions [post]
func (h *PositionHandler) Create(c *fiber.Ctx) error {
	var req services.CreatePositionInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Name == "" {
		return response.BadRequest(c, "Name is required")
	}
	if req.GenerationID == 0 {
		return response.BadRequest(c, "Generation is required")
	}

	position, err := h.positionService.Create(c.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrGenerationNotFound):
			return response.BadRequest(c, "Unknown generation")
		case errors.Is(err, services.ErrParentNotFound):
			return response.BadRequest(c, "Unknown parent position")
		case errors.Is(err, services.ErrParentWrongGen):
			return response.BadRequest(c, "Parent belongs to a different generation")
		case errors.Is(err, services.ErrInvalidDuesCycle):
			return response.BadRequest(c, "Invalid dues cycle")
		default:
			return response.InternalServerError(c, "Failed to create position")
		}
	}

	return response.Created(c, "Position created successfully", fiber.Map{
		"position": position,
	})
}

// Update edits a position's own fields
// @Summary Update position
// @Tags Positions
// @Security BearerAuth
// @Param id path int true "Position ID"
// @Param body body services.UpdatePositionInput true "Position fields"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /positions/{id} [patch]
func (h *PositionHandler) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid position ID")
	}

	var req services.UpdatePositionInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	position, err := h.positionService.Update(c.Context(), uint(id), &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPositionNotFound):
			return response.NotFound(c, "Position not found")
		case errors.Is(err, services.ErrInvalidDuesCycle):
			return response.BadRequest(c, "Invalid dues cycle")
		default:
			return response.InternalServerError(c, "Failed to update position")
		}
	}

	return response.Success(c, "Position updated successfully", fiber.Map{
		"position": position,
	})
}

// Delete removes a position without children
// @Summary Delete position
// @Tags Positions
// @Security BearerAuth
// @Param id path int true "Position ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /positions/{id} [delete]
func (h *PositionHandler) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid position ID")
	}

	if err := h.positionService.Delete(c.Context(), uint(id)); err != nil {
		switch {
		case errors.Is(err, services.ErrPositionNotFound):
			return response.NotFound(c, "Position not found")
		case errors.Is(err, services.ErrPositionHasChildren):
			return response.Conflict(c, "Position still has child positions")
		default:
			return response.InternalServerError(c, "Failed to delete position")
		}
	}

	return response.Success(c, "Position deleted successfully", nil)
}

// CloneRequest represents generation clone request body
type CloneRequest struct {
	SourceGenerationID uint `json:"source_generation_id"`
}

// Clone copies a generation's whole position tree into an empty one
// @Summary Clone position tree
// @Description Copy every position of the source generation into the target, preserving structure and attributes
// @Tags Positions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param genId path int true "Target generation ID"
// @Param body body CloneRequest true "Source generation"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /generations/{genId}/positions/clone [post]
func (h *PositionHandler) Clone(c *fiber.Ctx) error {
	targetID, err := c.ParamsInt("genId")
	if err != nil || targetID < 1 {
		return response.BadRequest(c, "Invalid generation ID")
	}

	var req CloneRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.SourceGenerationID == 0 {
		return response.BadRequest(c, "Source generation is required")
	}

	result, err := h.positionService.CloneGeneration(c.Context(), req.SourceGenerationID, uint(targetID))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSameGeneration):
			return response.BadRequest(c, "Source and target generation are the same")
		case errors.Is(err, services.ErrGenerationNotFound):
			return response.NotFound(c, "Generation not found")
		case errors.Is(err, services.ErrNoPositionsToClone):
			return response.BadRequest(c, "Source generation has no positions")
		case errors.Is(err, services.ErrTargetNotEmpty):
			return response.Conflict(c, "Target generation already has positions")
		case errors.Is(err, services.ErrOrphanedPositions):
			return response.UnprocessableEntity(c, "Source contains positions with unreachable parents")
		default:
			return response.InternalServerError(c, "Failed to clone positions")
		}
	}

	return response.Success(c, "Positions cloned successfully", result)
}

// AssignRequest represents member position assignment request body
type AssignRequest struct {
	PositionID *uint `json:"position_id"`
}

// Assign assigns or clears the position of an affiliation
// @Summary Assign member position
// @Tags Positions
// @Security BearerAuth
// @Param id path int true "Affiliation ID"
// @Param body body AssignRequest true "Position (null clears)"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /affiliations/{id}/position [patch]
func (h *PositionHandler) Assign(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid affiliation ID")
	}

	var req AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.positionService.AssignMemberPosition(c.Context(), uint(id), req.PositionID); err != nil {
		switch {
		case errors.Is(err, services.ErrAffiliationNotFound):
			return response.NotFound(c, "Affiliation not found")
		case errors.Is(err, services.ErrPositionNotFound):
			return response.NotFound(c, "Position not found")
		case errors.Is(err, services.ErrPositionWrongGen):
			return response.BadRequest(c, "Position belongs to a different generation")
		default:
			return response.InternalServerError(c, "Failed to assign position")
		}
	}

	return response.Success(c, "Position assigned", nil)
}
