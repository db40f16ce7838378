package handlers

import (
	"errors"
	"strings"
	"time"

	"club-membership/internal/adapters/http/middleware"
	"club-membership/internal/config"
	"club-membership/internal/core/services"
	"club-membership/internal/pkg/response"
	"club-membership/internal/pkg/validate"

	"github.com/gofiber/fiber/v2"
)

const (
	accessCookie  = "access_token"
	refreshCookie = "refresh_token"
	// refreshHeader carries the refresh token for clients that do not keep cookies
	refreshHeader = "X-Refresh-Token"
)

// AuthHandler handles officer authentication endpoints
type AuthHandler struct {
	authService *services.AuthService
	cfg         *config.Config
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cfg:         cfg,
	}
}

// Login handles officer login
// @Summary Login officer
// @Description Authenticate an officer or admin and return tokens
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body services.LoginInput true "Login credentials"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input services.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	input.Username = strings.TrimSpace(input.Username)
	if err := validate.Struct(&input); err != nil {
		return response.ValidationError(c, err)
	}

	result, err := h.authService.Login(c.Context(), &input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			return response.Unauthorized(c, "Invalid username or password")
		case errors.Is(err, services.ErrUserInactive):
			return response.Forbidden(c, "User account is inactive")
		default:
			return response.InternalServerError(c, "Failed to login")
		}
	}

	h.setAuthCookies(c, result)
	return response.Success(c, "Login successful", result)
}

// RefreshToken handles token refresh
// @Summary Refresh access token
// @Description Rotate the refresh token (cookie or X-Refresh-Token header) and issue a new access token
// @Tags Auth
// @Accept json
// @Produce json
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	refreshToken := refreshTokenFrom(c)
	if refreshToken == "" {
		return response.Unauthorized(c, "Refresh token not found")
	}

	result, err := h.authService.RefreshToken(c.Context(), refreshToken)
	if err != nil {
		if errors.Is(err, services.ErrUserInactive) {
			h.clearAuthCookies(c)
			return response.Forbidden(c, "User account is inactive")
		}
		var message string
		switch {
		case errors.Is(err, services.ErrTokenExpired):
			message = "Refresh token expired, please login again"
		case errors.Is(err, services.ErrTokenRevoked):
			message = "Refresh token revoked, please login again"
		case errors.Is(err, services.ErrInvalidToken):
			message = "Invalid refresh token"
		default:
			return response.InternalServerError(c, "Failed to refresh token")
		}
		h.clearAuthCookies(c)
		return response.Unauthorized(c, message)
	}

	h.setAuthCookies(c, result)
	return response.Success(c, "Token refreshed successfully", result)
}

// Logout handles officer logout
// @Summary Logout
// @Description Revoke the refresh token and clear cookies
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Response
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if refreshToken := refreshTokenFrom(c); refreshToken != "" {
		_ = h.authService.Logout(c.Context(), refreshToken)
	}

	h.clearAuthCookies(c)
	return response.Success(c, "Logged out successfully", nil)
}

// LogoutAll handles logout from all devices
// @Summary Logout from all devices
// @Description Revoke every refresh token of the officer
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/logout-all [post]
func (h *AuthHandler) LogoutAll(c *fiber.Ctx) error {
	userID, ok := c.Locals(middleware.LocalUserID).(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	if err := h.authService.LogoutAll(c.Context(), userID); err != nil {
		return response.InternalServerError(c, "Failed to logout from all devices")
	}

	h.clearAuthCookies(c)
	return response.Success(c, "Logged out from all devices", nil)
}

// Me returns the current officer
// @Summary Get current user
// @Description Get the authenticated officer and the organization the token is scoped to
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, ok := c.Locals(middleware.LocalUserID).(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	user, err := h.authService.GetUserByID(c.Context(), userID)
	if err != nil {
		return response.NotFound(c, "User not found")
	}

	return response.Success(c, "User retrieved successfully", fiber.Map{
		"user":            user.ToResponse(),
		"organization_id": c.Locals(middleware.LocalOrganizationID),
	})
}

func refreshTokenFrom(c *fiber.Ctx) string {
	if token := c.Cookies(refreshCookie); token != "" {
		return token
	}
	return c.Get(refreshHeader)
}

func (h *AuthHandler) cookie(name, value string, maxAge int) *fiber.Cookie {
	ck := &fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		Secure:   h.cfg.Cookie.Secure,
		HTTPOnly: true,
		SameSite: h.cfg.Cookie.SameSite,
		Domain:   h.cfg.Cookie.Domain,
	}
	if maxAge < 0 {
		ck.Expires = time.Now().Add(-time.Hour)
	}
	return ck
}

func (h *AuthHandler) setAuthCookies(c *fiber.Ctx, result *services.AuthResponse) {
	c.Cookie(h.cookie(accessCookie, result.AccessToken, h.cfg.JWT.AccessTokenMins*60))
	c.Cookie(h.cookie(refreshCookie, result.RefreshToken, h.cfg.JWT.RefreshTokenDays*24*60*60))
}

func (h *AuthHandler) clearAuthCookies(c *fiber.Ctx) {
	c.Cookie(h.cookie(accessCookie, "", -1))
	c.Cookie(h.cookie(refreshCookie, "", -1))
}
