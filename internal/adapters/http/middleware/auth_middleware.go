package middleware

import (
	"errors"
	"strconv"
	"strings"

	"club-membership/internal/config"
	"club-membership/internal/core/domain"
	"club-membership/internal/pkg/jwt"
	"club-membership/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set by AuthMiddleware
const (
	LocalUserID         = "userID"
	LocalOrganizationID = "organizationID"
	LocalUsername       = "username"
	LocalRole           = "role"
)

// bearerToken reads the access token from the cookie or the Authorization header
func bearerToken(c *fiber.Ctx) string {
	if token := c.Cookies("access_token"); token != "" {
		return token
	}
	authHeader := c.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

func setClaims(c *fiber.Ctx, claims *jwt.Claims) {
	c.Locals(LocalUserID, claims.UserID)
	c.Locals(LocalOrganizationID, claims.OrganizationID)
	c.Locals(LocalUsername, claims.Username)
	c.Locals(LocalRole, claims.Role)
}

// AuthMiddleware creates authentication middleware
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accessToken := bearerToken(c)
		if accessToken == "" {
			return response.Unauthorized(c, "Access token required")
		}

		claims, err := jwt.ValidateAccessToken(accessToken, cfg.JWT.Secret)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return response.Unauthorized(c, "Access token expired")
			}
			return response.Unauthorized(c, "Invalid access token")
		}

		setClaims(c, claims)
		return c.Next()
	}
}

// RoleMiddleware creates role-based authorization middleware
func RoleMiddleware(allowedRoles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals(LocalRole).(string)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}

		for _, allowedRole := range allowedRoles {
			if role == allowedRole {
				return c.Next()
			}
		}

		return response.Forbidden(c, "You don't have permission to access this resource")
	}
}

// AdminOnly middleware allows only ADMIN role
func AdminOnly() fiber.Handler {
	return RoleMiddleware(string(domain.RoleAdmin))
}

// OfficerOrAdmin middleware allows OFFICER or ADMIN roles
func OfficerOrAdmin() fiber.Handler {
	return RoleMiddleware(string(domain.RoleOfficer), string(domain.RoleAdmin))
}

// CanAccessOrg reports whether the caller may act on the organization.
// Admins reach every organization; officers only their own.
func CanAccessOrg(c *fiber.Ctx, orgID uint) bool {
	if role, _ := c.Locals(LocalRole).(string); role == string(domain.RoleAdmin) {
		return true
	}
	own, _ := c.Locals(LocalOrganizationID).(uint)
	return own != 0 && own == orgID
}

// OrgScope rejects requests whose :orgID path parameter the caller cannot access
func OrgScope() fiber.Handler {
	return func(c *fiber.Ctx) error {
		orgID, err := strconv.ParseUint(c.Params("orgID"), 10, 64)
		if err != nil || orgID == 0 {
			return response.BadRequest(c, "Invalid organization ID")
		}
		if !CanAccessOrg(c, uint(orgID)) {
			return response.Forbidden(c, "You don't have access to this organization")
		}
		return c.Next()
	}
}
