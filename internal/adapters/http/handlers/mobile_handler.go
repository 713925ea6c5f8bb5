package handlers

import (
	"errors"
	"strings"

	"moimhub/internal/core/services"
	"moimhub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// MobileHandler handles the mobile app's token endpoints
type MobileHandler struct {
	authService *services.AuthService
}

// NewMobileHandler creates a new mobile handler
func NewMobileHandler(authService *services.AuthService) *MobileHandler {
	return &MobileHandler{authService: authService}
}

// MobileLoginRequest represents mobile login request body
type MobileLoginRequest struct {
	LoginID  string  `json:"login_id"`
	Password string  `json:"password"`
	DeviceID *string `json:"device_id"`
}

// Login handles mobile login
// @Summary Mobile login
// @Description Authenticate by credentials and return a bearer token plus a refresh token
// @Tags Mobile
// @Accept json
// @Produce json
// @Param body body MobileLoginRequest true "Login credentials"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /mobile/login [post]
func (h *MobileHandler) Login(c *fiber.Ctx) error {
	var req MobileLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.LoginID == "" {
		return response.BadRequest(c, "Login ID is required")
	}
	if req.Password == "" {
		return response.BadRequest(c, "Password is required")
	}

	userAgent := c.Get("User-Agent")
	var ua *string
	if userAgent != "" {
		ua = &userAgent
	}

	result, err := h.authService.Login(c.Context(), &services.LoginInput{
		LoginID:   strings.TrimSpace(req.LoginID),
		Password:  req.Password,
		DeviceID:  req.DeviceID,
		UserAgent: ua,
	})
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return response.Unauthorized(c, "Invalid login ID or password")
		}
		return response.InternalServerError(c, "Failed to login")
	}

	return response.Success(c, "Login successful", fiber.Map{
		"access_token":  result.AccessToken,
		"refresh_token": result.RefreshToken,
		"member": fiber.Map{
			"id":       result.Member.ID,
			"name":     result.Member.Name,
			"login_id": result.Member.LoginID,
		},
	})
}

// MobileRefreshRequest represents mobile refresh request body
type MobileRefreshRequest struct {
	RefreshToken string  `json:"refresh_token"`
	DeviceID     *string `json:"device_id"`
}

// Refresh handles refresh token rotation
// @Summary Rotate refresh token
// @Description Exchange a refresh token for a fresh token pair
// @Tags Mobile
// @Accept json
// @Produce json
// @Param body body MobileRefreshRequest true "Refresh token"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /mobile/refresh [post]
func (h *MobileHandler) Refresh(c *fiber.Ctx) error {
	var req MobileRefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.RefreshToken == "" {
		return response.BadRequest(c, "Refresh token is required")
	}

	pair, err := h.authService.Refresh(c.Context(), req.RefreshToken, req.DeviceID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTokenExpired):
			return response.Unauthorized(c, "Refresh token expired, please login again")
		case errors.Is(err, services.ErrTokenRevoked):
			return response.Unauthorized(c, "Refresh token revoked, please login again")
		case errors.Is(err, services.ErrDeviceMismatch):
			return response.Unauthorized(c, "Token is bound to a different device")
		case errors.Is(err, services.ErrInvalidToken), errors.Is(err, services.ErrMemberNotFound):
			return response.Unauthorized(c, "Invalid refresh token")
		default:
			return response.InternalServerError(c, "Failed to refresh token")
		}
	}

	return response.Success(c, "Token refreshed successfully", fiber.Map{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}

// MobileLogoutRequest represents mobile logout request body
type MobileLogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Logout handles mobile logout
// @Summary Mobile logout
// @Description Revoke the presented refresh token
// @Tags Mobile
// @Accept json
// @Produce json
// @Param body body MobileLogoutRequest true "Refresh token"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /mobile/logout [post]
func (h *MobileHandler) Logout(c *fiber.Ctx) error {
	var req MobileLogoutRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.RefreshToken == "" {
		return response.BadRequest(c, "Refresh token is required")
	}

	if err := h.authService.Logout(c.Context(), req.RefreshToken); err != nil {
		return response.InternalServerError(c, "Failed to logout")
	}

	return response.Success(c, "Logged out successfully", fiber.Map{
		"ok": true,
	})
}

// WebSessionCode issues a one-time code for opening a web session
// @Summary Issue web session code
// @Description Issue a short-lived one-time code an authenticated mobile session can hand to a browser
// @Tags Mobile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /mobile/web-session-code [post]
func (h *MobileHandler) WebSessionCode(c *fiber.Ctx) error {
	memberID, ok := c.Locals("memberID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	code, err := h.authService.IssueLoginCode(c.Context(), memberID)
	if err != nil {
		if errors.Is(err, services.ErrMemberNotFound) {
			return response.Unauthorized(c, "Unauthorized")
		}
		return response.InternalServerError(c, "Failed to issue login code")
	}

	return response.Success(c, "Login code issued", fiber.Map{
		"code":       code.Code,
		"expires_at": code.ExpiresAt,
	})
}
