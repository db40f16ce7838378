package handlers

import (
	"errors"
	"log"

	"club-membership/internal/adapters/http/middleware"
	"club-membership/internal/core/domain"
	"club-membership/internal/core/services"
	"club-membership/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// SemesterHandler handles the batch status endpoints
type SemesterHandler struct {
	lifecycle services.LifecycleService
}

// NewSemesterHandler creates a new semester handler
func NewSemesterHandler(lifecycle services.LifecycleService) *SemesterHandler {
	return &SemesterHandler{
		lifecycle: lifecycle,
	}
}

// SelectedSemester identifies a semester by id or term code
type SelectedSemester struct {
	TermCode   string `json:"TermCode"`
	SemesterID uint   `json:"SemesterID"`
}

// StatusRunRequest represents the finalize and re-evaluate request body
type StatusRunRequest struct {
	OrgID            uint             `json:"orgID"`
	SelectedSemester SelectedSemester `json:"selectedSemester"`
}

// ReEvaluateResponse is the flat re-evaluate result
type ReEvaluateResponse struct {
	Success          bool   `json:"success"`
	RunID            string `json:"runId"`
	TotalMembers     int    `json:"totalMembers"`
	UpdatedMembers   int    `json:"updatedMembers"`
	ExemptMembers    int    `json:"exemptMembers"`
	ProcessingTimeMs int64  `json:"processingTimeMs"`
}

// FinalizeResponse is the finalize result
type FinalizeResponse struct {
	Success bool                     `json:"success"`
	Result  *services.FinalizeResult `json:"result,omitempty"`
}

// parseRun decodes the body, checks org access and resolves the semester.
// It writes the error response itself and returns ok=false when the request cannot proceed.
func (h *SemesterHandler) parseRun(c *fiber.Ctx) (orgID, semesterID uint, ok bool, err error) {
	var req StatusRunRequest
	if err := c.BodyParser(&req); err != nil {
		return 0, 0, false, response.BadRequest(c, "Invalid request body")
	}
	if req.OrgID == 0 {
		return 0, 0, false, response.BadRequest(c, "orgID is required")
	}
	if !middleware.CanAccessOrg(c, req.OrgID) {
		return 0, 0, false, response.Forbidden(c, "You don't have access to this organization")
	}

	semesterID, err = h.lifecycle.ResolveSemesterID(c.Context(), req.SelectedSemester.SemesterID, req.SelectedSemester.TermCode)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			return 0, 0, false, response.BadRequest(c, err.Error())
		case errors.Is(err, domain.ErrSemesterNotFound):
			return 0, 0, false, response.NotFound(c, "Semester not found")
		default:
			return 0, 0, false, response.InternalServerError(c, "Failed to resolve semester")
		}
	}

	return req.OrgID, semesterID, true, nil
}

// runError maps a failed status run onto a response
func runError(c *fiber.Ctx, err error, generic string) error {
	switch {
	case errors.Is(err, domain.ErrRunInProgress):
		return response.Conflict(c, err.Error())
	case errors.Is(err, domain.ErrSemesterNotFound):
		return response.NotFound(c, "Semester not found")
	case errors.Is(err, domain.ErrNextSemesterNotFound):
		return response.Error(c, fiber.StatusUnprocessableEntity, "Next semester has not been created yet")
	default:
		log.Printf("❌ %s [%v]: %v", generic, c.Locals("requestid"), err)
		return response.InternalServerError(c, generic)
	}
}

// FinalizeSemester handles the end-of-term transition
// @Summary Finalize semester
// @Description Evaluate every member and carry active, exempt and graduating members into the next semester. All or nothing.
// @Tags Status
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body StatusRunRequest true "Organization and semester"
// @Success 200 {object} FinalizeResponse
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /finalizeSemester [post]
func (h *SemesterHandler) FinalizeSemester(c *fiber.Ctx) error {
	orgID, semesterID, ok, err := h.parseRun(c)
	if !ok {
		return err
	}

	result, err := h.lifecycle.FinalizeSemester(c.Context(), orgID, semesterID)
	if err != nil {
		return runError(c, err, "Failed to finalize semester")
	}

	return c.JSON(FinalizeResponse{
		Success: true,
		Result:  result,
	})
}

// ReEvaluateStatus handles the current-semester recomputation
// @Summary Re-evaluate status
// @Description Recompute and persist every member's status for the semester without advancing it
// @Tags Status
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body StatusRunRequest true "Organization and semester"
// @Success 200 {object} ReEvaluateResponse
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /reEvaluateStatus [post]
func (h *SemesterHandler) ReEvaluateStatus(c *fiber.Ctx) error {
	orgID, semesterID, ok, err := h.parseRun(c)
	if !ok {
		return err
	}

	result, err := h.lifecycle.ReEvaluateStatus(c.Context(), orgID, semesterID)
	if err != nil {
		return runError(c, err, "Failed to re-evaluate status")
	}

	return c.JSON(ReEvaluateResponse{
		Success:          true,
		RunID:            result.RunID,
		TotalMembers:     result.TotalMembers,
		UpdatedMembers:   result.UpdatedMembers,
		ExemptMembers:    result.ExemptMembers,
		ProcessingTimeMs: result.ProcessingTimeMs,
	})
}
