package handlers

import (
	"errors"
	"time"

	"club-membership/internal/adapters/http/middleware"
	"club-membership/internal/core/domain"
	"club-membership/internal/core/services"
	"club-membership/internal/pkg/response"
	"club-membership/internal/pkg/validate"

	"github.com/gofiber/fiber/v2"
)

// ExemptionHandler handles exemption endpoints
type ExemptionHandler struct {
	exemptionService *services.ExemptionService
}

// NewExemptionHandler creates a new exemption handler
func NewExemptionHandler(exemptionService *services.ExemptionService) *ExemptionHandler {
	return &ExemptionHandler{
		exemptionService: exemptionService,
	}
}

func exemptionError(c *fiber.Ctx, err error, generic string) error {
	switch {
	case errors.Is(err, domain.ErrInvalidDuration):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, domain.ErrSemesterNotFound):
		return response.NotFound(c, "Semester not found")
	case errors.Is(err, domain.ErrNotFound):
		return response.NotFound(c, "Member not found")
	case errors.Is(err, domain.ErrExemptionNotFound):
		return response.NotFound(c, "Member has no open exemption")
	case errors.Is(err, domain.ErrExemptionActive):
		return response.Conflict(c, "Member already has an open exemption")
	default:
		return response.InternalServerError(c, generic)
	}
}

// ListExemptions lists the organization's exemptions
// @Summary List exemptions
// @Tags Exemptions
// @Produce json
// @Security BearerAuth
// @Param orgID path int true "Organization ID"
// @Success 200 {object} response.Response
// @Router /orgs/{orgID}/exemptions [get]
func (h *ExemptionHandler) ListExemptions(c *fiber.Ctx) error {
	orgID, _ := paramID(c, "orgID")

	exemptions, err := h.exemptionService.List(c.Context(), orgID)
	if err != nil {
		return response.InternalServerError(c, "Failed to list exemptions")
	}

	return response.Success(c, "Exemptions retrieved successfully", fiber.Map{
		"exemptions": exemptions,
	})
}

// GrantExemption grants an exemption starting at a semester
// @Summary Grant exemption
// @Description Marks the member Exempt for the start semester and the following duration-1 semesters
// @Tags Exemptions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param orgID path int true "Organization ID"
// @Param body body services.GrantExemptionInput true "Exemption"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /orgs/{orgID}/exemptions [post]
func (h *ExemptionHandler) GrantExemption(c *fiber.Ctx) error {
	var input services.GrantExemptionInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	input.OrganizationID, _ = paramID(c, "orgID")
	input.GrantedBy, _ = c.Locals(middleware.LocalUserID).(uint)
	if err := validate.Struct(&input); err != nil {
		return response.ValidationError(c, err)
	}

	exemption, err := h.exemptionService.Grant(c.Context(), &input)
	if err != nil {
		return exemptionError(c, err, "Failed to grant exemption")
	}

	return response.Created(c, "Exemption granted successfully", fiber.Map{
		"exemption": exemption,
	})
}

// RevokeExemption ends the member's open exemption
// @Summary Revoke exemption
// @Tags Exemptions
// @Produce json
// @Security BearerAuth
// @Param orgID path int true "Organization ID"
// @Param memberID path int true "Member ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /orgs/{orgID}/members/{memberID}/exemption [delete]
func (h *ExemptionHandler) RevokeExemption(c *fiber.Ctx) error {
	orgID, _ := paramID(c, "orgID")
	memberID, err := paramID(c, "memberID")
	if err != nil {
		return response.BadRequest(c, "Invalid member ID")
	}

	exemption, err := h.exemptionService.Revoke(c.Context(), orgID, memberID)
	if err != nil {
		return exemptionError(c, err, "Failed to revoke exemption")
	}

	return response.Success(c, "Exemption revoked successfully", fiber.Map{
		"exemption": exemption,
	})
}

// ListExpiredExemptions lists open exemptions whose covered semesters have all ended (Admin only)
// @Summary List expired exemptions
// @Tags Exemptions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /exemptions/expired [get]
func (h *ExemptionHandler) ListExpiredExemptions(c *fiber.Ctx) error {
	expired, err := h.exemptionService.ListExpired(c.Context(), time.Now())
	if err != nil {
		return response.InternalServerError(c, "Failed to list expired exemptions")
	}

	return response.Success(c, "Expired exemptions retrieved successfully", fiber.Map{
		"exemptions": expired,
		"total":      len(expired),
	})
}
