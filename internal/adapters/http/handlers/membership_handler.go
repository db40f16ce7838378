package handlers

import (
	"errors"

	"club-membership/internal/core/domain"
	"club-membership/internal/core/services"
	"club-membership/internal/pkg/pagination"
	"club-membership/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// MembershipHandler handles roster and member status endpoints
type MembershipHandler struct {
	status services.MemberStatusReader
}

// NewMembershipHandler creates a new membership handler
func NewMembershipHandler(status services.MemberStatusReader) *MembershipHandler {
	return &MembershipHandler{
		status: status,
	}
}

// ListMembers lists the organization's roster for a semester
// @Summary List roster
// @Description Paginated membership rows of an organization for a semester
// @Tags Members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param orgID path int true "Organization ID"
// @Param semesterID path int true "Semester ID"
// @Param status query string false "Filter by status"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /orgs/{orgID}/semesters/{semesterID}/members [get]
func (h *MembershipHandler) ListMembers(c *fiber.Ctx) error {
	orgID, _ := paramID(c, "orgID")
	semesterID, err := paramID(c, "semesterID")
	if err != nil {
		return response.BadRequest(c, "Invalid semester ID")
	}

	params := pagination.GetParams(c)
	rows, total, err := h.status.Roster(c.Context(), orgID, semesterID, c.Query("status"), params.Offset, params.Limit)
	if err != nil {
		if handled, err := inputError(c, err); handled {
			return err
		}
		return response.InternalServerError(c, "Failed to list members")
	}

	return response.Success(c, "Members retrieved successfully", pagination.NewResponse(rows, params, total))
}

// GetMemberStatus returns a member's persisted status, live verdict and history
// @Summary Member status
// @Description Persisted status, live evaluation, last report and transition history
// @Tags Members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param orgID path int true "Organization ID"
// @Param semesterID path int true "Semester ID"
// @Param memberID path int true "Member ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /orgs/{orgID}/semesters/{semesterID}/members/{memberID}/status [get]
func (h *MembershipHandler) GetMemberStatus(c *fiber.Ctx) error {
	orgID, _ := paramID(c, "orgID")
	semesterID, err := paramID(c, "semesterID")
	if err != nil {
		return response.BadRequest(c, "Invalid semester ID")
	}
	memberID, err := paramID(c, "memberID")
	if err != nil {
		return response.BadRequest(c, "Invalid member ID")
	}

	view, err := h.status.MemberStatus(c.Context(), orgID, memberID, semesterID)
	if err != nil {
		if errors.Is(err, domain.ErrMembershipNotFound) {
			return response.NotFound(c, "Member is not in this organization for the semester")
		}
		return response.InternalServerError(c, "Failed to get member status")
	}

	return response.Success(c, "Member status retrieved successfully", view)
}
