package handlers

import (
	"errors"

	"club-membership/internal/core/domain"
	"club-membership/internal/core/services"
	"club-membership/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AttendanceHandler handles event and check-in endpoints
type AttendanceHandler struct {
	attendanceService *services.AttendanceService
}

// NewAttendanceHandler creates a new attendance handler
func NewAttendanceHandler(attendanceService *services.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{
		attendanceService: attendanceService,
	}
}

// ListEvents lists the organization's events for a semester
// @Summary List events
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param orgID path int true "Organization ID"
// @Param semesterID path int true "Semester ID"
// @Success 200 {object} response.Response
// @Router /orgs/{orgID}/semesters/{semesterID}/events [get]
func (h *AttendanceHandler) ListEvents(c *fiber.Ctx) error {
	orgID, _ := paramID(c, "orgID")
	semesterID, err := paramID(c, "semesterID")
	if err != nil {
		return response.BadRequest(c, "Invalid semester ID")
	}

	events, err := h.attendanceService.ListEvents(c.Context(), orgID, semesterID)
	if err != nil {
		return response.InternalServerError(c, "Failed to list events")
	}

	return response.Success(c, "Events retrieved successfully", fiber.Map{
		"events": events,
	})
}

// CreateEvent creates an event of one of the organization's event types
// @Summary Create event
// @Tags Attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param orgID path int true "Organization ID"
// @Param body body services.EventInput true "Event"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /orgs/{orgID}/events [post]
func (h *AttendanceHandler) CreateEvent(c *fiber.Ctx) error {
	var input services.EventInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	input.OrganizationID, _ = paramID(c, "orgID")

	event, err := h.attendanceService.CreateEvent(c.Context(), &input)
	if err != nil {
		if handled, err := inputError(c, err); handled {
			return err
		}
		if errors.Is(err, domain.ErrEventTypeNotFound) {
			return response.NotFound(c, "Event type not found")
		}
		return response.InternalServerError(c, "Failed to create event")
	}

	return response.Created(c, "Event created successfully", fiber.Map{
		"event": event,
	})
}

// CheckIn records a member's attendance at an event
// @Summary Check in member
// @Description Records the attendance or overwrites check-in time and hours for the same member and event
// @Tags Attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param orgID path int true "Organization ID"
// @Param body body services.CheckInInput true "Check-in"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /orgs/{orgID}/attendance [post]
func (h *AttendanceHandler) CheckIn(c *fiber.Ctx) error {
	var input services.CheckInInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	input.OrganizationID, _ = paramID(c, "orgID")

	attendance, err := h.attendanceService.CheckIn(c.Context(), &input)
	if err != nil {
		if handled, err := inputError(c, err); handled {
			return err
		}
		if errors.Is(err, domain.ErrNotFound) {
			return response.NotFound(c, "Event or member not found")
		}
		return response.InternalServerError(c, "Failed to record attendance")
	}

	return response.Success(c, "Attendance recorded successfully", fiber.Map{
		"attendance": attendance,
	})
}

// MemberAttendance lists a member's attendance records for a semester
// @Summary Member attendance
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param orgID path int true "Organization ID"
// @Param semesterID path int true "Semester ID"
// @Param memberID path int true "Member ID"
// @Success 200 {object} response.Response
// @Router /orgs/{orgID}/semesters/{semesterID}/members/{memberID}/attendance [get]
func (h *AttendanceHandler) MemberAttendance(c *fiber.Ctx) error {
	orgID, _ := paramID(c, "orgID")
	semesterID, err := paramID(c, "semesterID")
	if err != nil {
		return response.BadRequest(c, "Invalid semester ID")
	}
	memberID, err := paramID(c, "memberID")
	if err != nil {
		return response.BadRequest(c, "Invalid member ID")
	}

	records, err := h.attendanceService.MemberRecords(c.Context(), orgID, memberID, semesterID)
	if err != nil {
		return response.InternalServerError(c, "Failed to get attendance")
	}

	return response.Success(c, "Attendance retrieved successfully", fiber.Map{
		"records": records,
		"total":   len(records),
	})
}
