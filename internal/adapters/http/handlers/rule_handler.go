package handlers

import (
	"errors"

	"club-membership/internal/core/domain"
	"club-membership/internal/core/services"
	"club-membership/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// RuleHandler handles event type, rule and active requirement endpoints
type RuleHandler struct {
	ruleService *services.RuleConfigService
}

// NewRuleHandler creates a new rule handler
func NewRuleHandler(ruleService *services.RuleConfigService) *RuleHandler {
	return &RuleHandler{
		ruleService: ruleService,
	}
}

// ruleError maps rule configuration errors onto responses
func ruleError(c *fiber.Ctx, err error, generic string) error {
	if handled, err := inputError(c, err); handled {
		return err
	}
	switch {
	case errors.Is(err, domain.ErrEventTypeNotFound):
		return response.NotFound(c, "Event type not found")
	case errors.Is(err, domain.ErrRuleNotFound):
		return response.NotFound(c, "Rule not found")
	case errors.Is(err, domain.ErrRequirementNotFound):
		return response.NotFound(c, "Active requirement not set")
	case errors.Is(err, domain.ErrSemesterNotFound):
		return response.NotFound(c, "Semester not found")
	case errors.Is(err, domain.ErrDuplicateEntry):
		return response.Conflict(c, "Event type name already used this semester")
	default:
		return response.InternalServerError(c, generic)
	}
}

// ownedEventType loads :id and checks it belongs to :orgID
func (h *RuleHandler) ownedEventType(c *fiber.Ctx) (uint, error) {
	orgID, _ := paramID(c, "orgID")
	id, err := paramID(c, "id")
	if err != nil {
		return 0, domain.ErrEventTypeNotFound
	}
	eventType, err := h.ruleService.GetEventType(c.Context(), id)
	if err != nil {
		return 0, err
	}
	if eventType.OrganizationID != orgID {
		return 0, domain.ErrEventTypeNotFound
	}
	return id, nil
}

// ownedRule checks :id is a rule of an event type of :orgID
func (h *RuleHandler) ownedRule(c *fiber.Ctx) (uint, error) {
	orgID, _ := paramID(c, "orgID")
	id, err := paramID(c, "id")
	if err != nil {
		return 0, domain.ErrRuleNotFound
	}
	owner, err := h.ruleService.RuleOrganization(c.Context(), id)
	if err != nil {
		return 0, err
	}
	if owner != orgID {
		return 0, domain.ErrRuleNotFound
	}
	return id, nil
}

// ============================================================
// Event Types
// ============================================================

// ListEventTypes lists the organization's event types for a semester
// @Summary List event types
// @Tags Rules
// @Produce json
// @Security BearerAuth
// @Param orgID path int true "Organization ID"
// @Param semesterID path int true "Semester ID"
// @Success 200 {object} response.Response
// @Router /orgs/{orgID}/semesters/{semesterID}/event-types [get]
func (h *RuleHandler) ListEventTypes(c *fiber.Ctx) error {
	orgID, _ := paramID(c, "orgID")
	semesterID, err := paramID(c, "semesterID")
	if err != nil {
		return response.BadRequest(c, "Invalid semester ID")
	}

	eventTypes, err := h.ruleService.ListEventTypes(c.Context(), orgID, semesterID)
	if err != nil {
		return response.InternalServerError(c, "Failed to list event types")
	}

	return response.Success(c, "Event types retrieved successfully", fiber.Map{
		"event_types": eventTypes,
	})
}

// CreateEventType creates an event type with its initial rules
// @Summary Create event type
// @Tags Rules
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param orgID path int true "Organization ID"
// @Param semesterID path int true "Semester ID"
// @Param body body services.EventTypeInput true "Event type"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /orgs/{orgID}/semesters/{semesterID}/event-types [post]
func (h *RuleHandler) CreateEventType(c *fiber.Ctx) error {
	var input services.EventTypeInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	// the path wins over the body
	input.OrganizationID, _ = paramID(c, "orgID")
	semesterID, err := paramID(c, "semesterID")
	if err != nil {
		return response.BadRequest(c, "Invalid semester ID")
	}
	input.SemesterID = semesterID

	eventType, err := h.ruleService.CreateEventType(c.Context(), &input)
	if err != nil {
		return ruleError(c, err, "Failed to create event type")
	}

	return response.Created(c, "Event type created successfully", fiber.Map{
		"event_type": eventType,
	})
}

// UpdateEventType updates an event type
// @Summary Update event type
// @Tags Rules
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param orgID path int true "Organization ID"
// @Param id path int true "Event Type ID"
// @Param body body services.EventTypeInput true "Event type"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /orgs/{orgID}/event-types/{id} [put]
func (h *RuleHandler) UpdateEventType(c *fiber.Ctx) error {
	id, err := h.ownedEventType(c)
	if err != nil {
		return ruleError(c, err, "Failed to update event type")
	}

	var input services.EventTypeInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	input.OrganizationID, _ = paramID(c, "orgID")

	eventType, err := h.ruleService.UpdateEventType(c.Context(), id, &input)
	if err != nil {
		return ruleError(c, err, "Failed to update event type")
	}

	return response.Success(c, "Event type updated successfully", fiber.Map{
		"event_type": eventType,
	})
}

// DeleteEventType deletes an event type and its rules
// @Summary Delete event type
// @Tags Rules
// @Produce json
// @Security BearerAuth
// @Param orgID path int true "Organization ID"
// @Param id path int true "Event Type ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /orgs/{orgID}/event-types/{id} [delete]
func (h *RuleHandler) DeleteEventType(c *fiber.Ctx) error {
	id, err := h.ownedEventType(c)
	if err != nil {
		return ruleError(c, err, "Failed to delete event type")
	}

	if err := h.ruleService.DeleteEventType(c.Context(), id); err != nil {
		return ruleError(c, err, "Failed to delete event type")
	}

	return response.Success(c, "Event type deleted successfully", nil)
}

// ============================================================
// Rules
// ============================================================

// CreateRule adds a rule to an event type
// @Summary Create rule
// @Tags Rules
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param orgID path int true "Organization ID"
// @Param id path int true "Event Type ID"
// @Param body body services.RuleInput true "Rule"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /orgs/{orgID}/event-types/{id}/rules [post]
func (h *RuleHandler) CreateRule(c *fiber.Ctx) error {
	eventTypeID, err := h.ownedEventType(c)
	if err != nil {
		return ruleError(c, err, "Failed to create rule")
	}

	var input services.RuleInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	rule, err := h.ruleService.CreateRule(c.Context(), eventTypeID, &input)
	if err != nil {
		return ruleError(c, err, "Failed to create rule")
	}

	return response.Created(c, "Rule created successfully", fiber.Map{
		"rule": rule,
	})
}

// UpdateRule replaces a rule
// @Summary Update rule
// @Tags Rules
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param orgID path int true "Organization ID"
// @Param id path int true "Rule ID"
// @Param body body services.RuleInput true "Rule"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /orgs/{orgID}/rules/{id} [put]
func (h *RuleHandler) UpdateRule(c *fiber.Ctx) error {
	id, err := h.ownedRule(c)
	if err != nil {
		return ruleError(c, err, "Failed to update rule")
	}

	var input services.RuleInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	rule, err := h.ruleService.UpdateRule(c.Context(), id, &input)
	if err != nil {
		return ruleError(c, err, "Failed to update rule")
	}

	return response.Success(c, "Rule updated successfully", fiber.Map{
		"rule": rule,
	})
}

// DeleteRule deletes a rule
// @Summary Delete rule
// @Tags Rules
// @Produce json
// @Security BearerAuth
// @Param orgID path int true "Organization ID"
// @Param id path int true "Rule ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /orgs/{orgID}/rules/{id} [delete]
func (h *RuleHandler) DeleteRule(c *fiber.Ctx) error {
	id, err := h.ownedRule(c)
	if err != nil {
		return ruleError(c, err, "Failed to delete rule")
	}

	if err := h.ruleService.DeleteRule(c.Context(), id); err != nil {
		return ruleError(c, err, "Failed to delete rule")
	}

	return response.Success(c, "Rule deleted successfully", nil)
}

// ============================================================
// Active Requirement
// ============================================================

// GetRequirement returns the active requirement
// @Summary Get active requirement
// @Tags Rules
// @Produce json
// @Security BearerAuth
// @Param orgID path int true "Organization ID"
// @Param semesterID path int true "Semester ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /orgs/{orgID}/semesters/{semesterID}/requirement [get]
func (h *RuleHandler) GetRequirement(c *fiber.Ctx) error {
	orgID, _ := paramID(c, "orgID")
	semesterID, err := paramID(c, "semesterID")
	if err != nil {
		return response.BadRequest(c, "Invalid semester ID")
	}

	req, err := h.ruleService.GetRequirement(c.Context(), orgID, semesterID)
	if err != nil {
		return ruleError(c, err, "Failed to get active requirement")
	}

	return response.Success(c, "Active requirement retrieved successfully", fiber.Map{
		"requirement": req,
	})
}

// SetRequirement creates or replaces the active requirement
// @Summary Set active requirement
// @Tags Rules
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param orgID path int true "Organization ID"
// @Param semesterID path int true "Semester ID"
// @Param body body services.RequirementInput true "Requirement"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /orgs/{orgID}/semesters/{semesterID}/requirement [put]
func (h *RuleHandler) SetRequirement(c *fiber.Ctx) error {
	var input services.RequirementInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	input.OrganizationID, _ = paramID(c, "orgID")
	semesterID, err := paramID(c, "semesterID")
	if err != nil {
		return response.BadRequest(c, "Invalid semester ID")
	}
	input.SemesterID = semesterID

	req, err := h.ruleService.SetRequirement(c.Context(), &input)
	if err != nil {
		return ruleError(c, err, "Failed to set active requirement")
	}

	return response.Success(c, "Active requirement saved successfully", fiber.Map{
		"requirement": req,
	})
}
