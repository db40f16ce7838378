package handlers

import (
	"errors"
	"strconv"
	"strings"

	"club-membership/internal/adapters/http/middleware"
	"club-membership/internal/adapters/persistence/repositories"
	"club-membership/internal/core/domain"
	"club-membership/internal/core/services"
	"club-membership/internal/pkg/pagination"
	"club-membership/internal/pkg/response"
	"club-membership/internal/pkg/validate"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles officer account endpoints
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// userError maps user service errors onto responses
func userError(c *fiber.Ctx, err error, generic string) error {
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		return response.NotFound(c, "User not found")
	case errors.Is(err, domain.ErrNotFound):
		return response.NotFound(c, "Organization not found")
	case errors.Is(err, services.ErrUserAlreadyExists):
		return response.Conflict(c, "Username already exists")
	case errors.Is(err, services.ErrEmailAlreadyExists):
		return response.Conflict(c, "Email already exists")
	case errors.Is(err, services.ErrCannotChangeOwnRole):
		return response.BadRequest(c, "Cannot change your own role")
	case errors.Is(err, services.ErrCannotDeleteSelf):
		return response.BadRequest(c, "Cannot delete your own account")
	case errors.Is(err, services.ErrInvalidRole):
		return response.BadRequest(c, "Invalid role. Must be OFFICER or ADMIN")
	case errors.Is(err, services.ErrOldPasswordWrong):
		return response.BadRequest(c, "Old password is incorrect")
	default:
		return response.InternalServerError(c, generic)
	}
}

// ListUsers handles listing officer accounts (Admin only)
// @Summary List all users
// @Description Get a paginated list of officer and admin accounts (Admin only)
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Param organization_id query int false "Only accounts of this organization"
// @Param role query string false "OFFICER or ADMIN"
// @Param active query bool false "Only active accounts"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /users [get]
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	filter := repositories.UserFilter{
		Role:       strings.ToUpper(c.Query("role")),
		ActiveOnly: c.QueryBool("active", false),
	}
	if filter.Role != "" && filter.Role != string(domain.RoleOfficer) && filter.Role != string(domain.RoleAdmin) {
		return response.BadRequest(c, "Invalid role filter")
	}
	if raw := c.Query("organization_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || id == 0 {
			return response.BadRequest(c, "Invalid organization_id")
		}
		orgID := uint(id)
		filter.OrganizationID = &orgID
	}

	users, total, err := h.userService.ListUsers(c.Context(), filter, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list users")
	}

	return response.Success(c, "Users retrieved successfully", pagination.NewResponse(users, params, total))
}

// CreateUser handles creating an officer account (Admin only)
// @Summary Create user
// @Description Create an officer or admin account (Admin only)
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateOfficerInput true "Account data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /users [post]
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var input services.CreateOfficerInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validate.Struct(&input); err != nil {
		return response.ValidationError(c, err)
	}

	user, err := h.userService.CreateOfficer(c.Context(), &input)
	if err != nil {
		return userError(c, err, "Failed to create user")
	}

	return response.Created(c, "User created successfully", fiber.Map{
		"user": user,
	})
}

// GetUser handles getting a user by ID (Admin only)
// @Summary Get user by ID
// @Description Get a specific user by ID (Admin only)
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	user, err := h.userService.GetUserByID(c.Context(), id)
	if err != nil {
		return userError(c, err, "Failed to get user")
	}

	return response.Success(c, "User retrieved successfully", fiber.Map{
		"user": user,
	})
}

// UpdateUser handles updating a user (Admin only)
// @Summary Update user
// @Description Update a user's organization, email, role or active flag (Admin only)
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param body body services.UpdateUserByAdminInput true "Update data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id} [put]
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	var input services.UpdateUserByAdminInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validate.Struct(&input); err != nil {
		return response.ValidationError(c, err)
	}

	adminID, _ := c.Locals(middleware.LocalUserID).(uint)

	user, err := h.userService.UpdateUserByAdmin(c.Context(), id, adminID, &input)
	if err != nil {
		return userError(c, err, "Failed to update user")
	}

	return response.Success(c, "User updated successfully", fiber.Map{
		"user": user,
	})
}

// DeleteUser handles deleting a user (Admin only)
// @Summary Delete user
// @Description Delete a user (soft delete) (Admin only)
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id} [delete]
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	adminID, _ := c.Locals(middleware.LocalUserID).(uint)

	if err := h.userService.DeleteUser(c.Context(), id, adminID); err != nil {
		return userError(c, err, "Failed to delete user")
	}

	return response.Success(c, "User deleted successfully", nil)
}

// ChangePassword handles changing own password
// @Summary Change password
// @Description Change the current user's password
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.ChangePasswordInput true "Password data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /profile/password [put]
func (h *UserHandler) ChangePassword(c *fiber.Ctx) error {
	userID, ok := c.Locals(middleware.LocalUserID).(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.ChangePasswordInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validate.Struct(&input); err != nil {
		return response.ValidationError(c, err)
	}

	if err := h.userService.ChangePassword(c.Context(), userID, &input); err != nil {
		return userError(c, err, "Failed to change password")
	}

	return response.Success(c, "Password changed successfully", nil)
}
