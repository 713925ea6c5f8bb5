package handlers

import (
	"errors"
	"strings"
	"time"

	"moimhub/internal/config"
	"moimhub/internal/core/services"
	"moimhub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles the web (cookie-based) authentication endpoints
type AuthHandler struct {
	authService   *services.AuthService
	memberService *services.MemberService
	cfg           *config.Config
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, memberService *services.MemberService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		memberService: memberService,
		cfg:           cfg,
	}
}

// WebLoginRequest represents web login request body: either credentials or
// a one-time code issued by a mobile session
type WebLoginRequest struct {
	LoginID  string `json:"login_id"`
	Password string `json:"password"`
	Code     string `json:"code"`
}

// Login handles web login
// @Summary Web login
// @Description Authenticate with credentials or a one-time login code and set auth cookies
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body WebLoginRequest true "Credentials or login code"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req WebLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Code == "" {
		if req.LoginID == "" {
			return response.BadRequest(c, "Login ID is required")
		}
		if req.Password == "" {
			return response.BadRequest(c, "Password is required")
		}
	}

	result, err := h.authService.WebAuthenticate(c.Context(), &services.WebLoginInput{
		LoginID:  strings.TrimSpace(req.LoginID),
		Password: req.Password,
		Code:     req.Code,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			return response.Unauthorized(c, "Invalid login ID or password")
		case errors.Is(err, services.ErrInvalidLoginCode),
			errors.Is(err, services.ErrLoginCodeUsed),
			errors.Is(err, services.ErrLoginCodeExpired):
			return response.Unauthorized(c, "Invalid or expired login code")
		default:
			return response.InternalServerError(c, "Failed to login")
		}
	}

	h.setAuthCookies(c, result.AccessToken, result.RefreshToken)

	return response.Success(c, "Login successful", fiber.Map{
		"access_token": result.AccessToken,
		"member":       result.Member,
	})
}

// Register handles self-service registration
// @Summary Register member
// @Description Register a member together with their organization affiliations
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body services.RegisterInput true "Registration data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req services.RegisterInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.LoginID == "" {
		return response.BadRequest(c, "Login ID is required")
	}
	if req.Name == "" {
		return response.BadRequest(c, "Name is required")
	}
	if req.Phone == "" {
		return response.BadRequest(c, "Phone is required")
	}
	if len(req.Password) < 8 {
		return response.BadRequest(c, "Password must be at least 8 characters")
	}

	req.LoginID = strings.TrimSpace(req.LoginID)
	req.Name = strings.TrimSpace(req.Name)

	member, err := h.memberService.Register(c.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrLoginIDTaken):
			return response.Conflict(c, "Login ID already taken")
		case errors.Is(err, services.ErrPhoneTaken):
			return response.Conflict(c, "Phone number already registered")
		case errors.Is(err, services.ErrNoAffiliations):
			return response.BadRequest(c, "At least one affiliation is required")
		case errors.Is(err, services.ErrWeakPassword):
			return response.BadRequest(c, "Password must be at least 8 characters")
		case errors.Is(err, services.ErrGenerationNotFound):
			return response.BadRequest(c, "Unknown organization or generation")
		default:
			return response.InternalServerError(c, "Failed to register")
		}
	}

	return response.Created(c, "Member registered successfully", fiber.Map{
		"member": member.ToResponse(),
	})
}

// Refresh handles web token refresh from the cookie
// @Summary Refresh web session
// @Description Rotate the refresh token held in the cookie
// @Tags Auth
// @Accept json
// @Produce json
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	refreshToken := c.Cookies("refresh_token")
	if refreshToken == "" {
		return response.Unauthorized(c, "Refresh token not found")
	}

	pair, err := h.authService.Refresh(c.Context(), refreshToken, nil)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTokenExpired):
			h.clearAuthCookies(c)
			return response.Unauthorized(c, "Refresh token expired, please login again")
		case errors.Is(err, services.ErrTokenRevoked):
			h.clearAuthCookies(c)
			return response.Unauthorized(c, "Refresh token revoked, please login again")
		case errors.Is(err, services.ErrInvalidToken), errors.Is(err, services.ErrMemberNotFound):
			h.clearAuthCookies(c)
			return response.Unauthorized(c, "Invalid refresh token")
		default:
			return response.InternalServerError(c, "Failed to refresh token")
		}
	}

	h.setAuthCookies(c, pair.AccessToken, pair.RefreshToken)

	return response.Success(c, "Token refreshed successfully", fiber.Map{
		"access_token": pair.AccessToken,
	})
}

// Logout handles web logout
// @Summary Web logout
// @Description Revoke the refresh token and clear auth cookies
// @Tags Auth
// @Accept json
// @Produce json
// @Success 200 {object} response.Response
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	refreshToken := c.Cookies("refresh_token")
	if refreshToken != "" {
		_ = h.authService.Logout(c.Context(), refreshToken)
	}

	h.clearAuthCookies(c)

	return response.Success(c, "Logged out successfully", nil)
}

// LogoutAll revokes every session of the authenticated member
// @Summary Logout from all devices
// @Description Revoke all refresh tokens for the member
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/logout-all [post]
func (h *AuthHandler) LogoutAll(c *fiber.Ctx) error {
	memberID, ok := c.Locals("memberID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	if err := h.authService.LogoutAll(c.Context(), memberID); err != nil {
		return response.InternalServerError(c, "Failed to logout from all devices")
	}

	h.clearAuthCookies(c)

	return response.Success(c, "Logged out from all devices", nil)
}

// Me returns the authenticated member with their affiliations
// @Summary Get current member
// @Description Get the currently authenticated member's profile and affiliations
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	memberID, ok := c.Locals("memberID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	member, affs, err := h.memberService.GetWithAffiliations(c.Context(), memberID)
	if err != nil {
		return response.NotFound(c, "Member not found")
	}

	sessions, err := h.authService.ActiveSessionCount(c.Context(), memberID)
	if err != nil {
		return response.InternalServerError(c, "Failed to count sessions")
	}

	return response.Success(c, "Member retrieved successfully", fiber.Map{
		"member":          member.ToResponse(),
		"affiliations":    affs,
		"active_sessions": sessions,
	})
}

// SetupPasswordRequest represents initial password setup request body
type SetupPasswordRequest struct {
	Password string `json:"password"`
}

// SetupPassword replaces a provisioned password and activates pending
// affiliations
// @Summary Set up initial password
// @Description Replace the provisioned password of an admin-created member
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body SetupPasswordRequest true "New password"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/setup-password [post]
func (h *AuthHandler) SetupPassword(c *fiber.Ctx) error {
	memberID, ok := c.Locals("memberID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req SetupPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if len(req.Password) < 8 {
		return response.BadRequest(c, "Password must be at least 8 characters")
	}

	if err := h.memberService.SetupInitialPassword(c.Context(), memberID, req.Password); err != nil {
		switch {
		case errors.Is(err, services.ErrMemberNotFound):
			return response.Unauthorized(c, "Unauthorized")
		case errors.Is(err, services.ErrWeakPassword):
			return response.BadRequest(c, "Password must be at least 8 characters")
		default:
			return response.InternalServerError(c, "Failed to set up password")
		}
	}

	return response.Success(c, "Password set up successfully", nil)
}

// setAuthCookies sets access and refresh token cookies
func (h *AuthHandler) setAuthCookies(c *fiber.Ctx, accessToken, refreshToken string) {
	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    accessToken,
		Path:     "/",
		MaxAge:   h.cfg.Auth.AccessTokenMins * 60,
		Secure:   h.cfg.Cookie.Secure,
		HTTPOnly: true,
		SameSite: h.cfg.Cookie.SameSite,
		Domain:   h.cfg.Cookie.Domain,
	})

	c.Cookie(&fiber.Cookie{
		Name:     "refresh_token",
		Value:    refreshToken,
		Path:     "/",
		MaxAge:   h.cfg.Auth.RefreshTokenDays * 24 * 60 * 60,
		Secure:   h.cfg.Cookie.Secure,
		HTTPOnly: true,
		SameSite: h.cfg.Cookie.SameSite,
		Domain:   h.cfg.Cookie.Domain,
	})
}

// clearAuthCookies clears auth cookies
func (h *AuthHandler) clearAuthCookies(c *fiber.Ctx) {
	for _, name := range []string{"access_token", "refresh_token"} {
		c.Cookie(&fiber.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			Expires:  time.Now().Add(-1 * time.Hour),
			Secure:   h.cfg.Cookie.Secure,
			HTTPOnly: true,
			SameSite: h.cfg.Cookie.SameSite,
			Domain:   h.cfg.Cookie.Domain,
		})
	}
}
