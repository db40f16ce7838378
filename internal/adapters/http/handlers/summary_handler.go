package handlers

import (
	"club-membership/internal/core/services"
	"club-membership/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// SummaryHandler handles semester summary endpoints
type SummaryHandler struct {
	summaryService *services.SummaryService
}

// NewSummaryHandler creates a new summary handler
func NewSummaryHandler(summaryService *services.SummaryService) *SummaryHandler {
	return &SummaryHandler{
		summaryService: summaryService,
	}
}

// GetSemesterSummary returns status counts and the points distribution for a semester
// @Summary Semester summary
// @Description Counts by membership status plus points statistics from the latest status reports
// @Tags Summary
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param orgID path int true "Organization ID"
// @Param semesterID path int true "Semester ID"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /orgs/{orgID}/semesters/{semesterID}/summary [get]
func (h *SummaryHandler) GetSemesterSummary(c *fiber.Ctx) error {
	orgID, _ := paramID(c, "orgID")
	semesterID, err := paramID(c, "semesterID")
	if err != nil {
		return response.BadRequest(c, "Invalid semester ID")
	}

	data, err := h.summaryService.GetSemesterSummary(c.Context(), orgID, semesterID)
	if err != nil {
		return response.InternalServerError(c, "Failed to get semester summary")
	}

	return response.Success(c, "Semester summary retrieved successfully", data)
}
