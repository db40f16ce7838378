package services

import (
	"context"
	"errors"
	"fmt"

	"club-membership/internal/adapters/persistence/models"
	"club-membership/internal/adapters/persistence/repositories"
	"club-membership/internal/core/domain"
	"club-membership/internal/pkg/validate"

	"gorm.io/gorm"
)

// RuleConfigService manages event types, their rules and the active requirement.
// The evaluator accepts anything; malformed configuration is rejected here.
type RuleConfigService struct {
	ruleRepo     repositories.RuleRepository
	semesterRepo repositories.SemesterRepository
}

// NewRuleConfigService creates a new rule config service
func NewRuleConfigService(ruleRepo repositories.RuleRepository, semesterRepo repositories.SemesterRepository) *RuleConfigService {
	return &RuleConfigService{
		ruleRepo:     ruleRepo,
		semesterRepo: semesterRepo,
	}
}

// RuleInput represents one rule
type RuleInput struct {
	Criteria      string   `json:"criteria" validate:"required,oneof=attendance 'one off' 'minimum threshold percentage' 'minimum threshold hours'"`
	CriteriaValue *float64 `json:"criteriaValue" validate:"omitempty,gte=0"`
	PointValue    float64  `json:"pointValue" validate:"gte=0"`
}

// EventTypeInput represents an event type with optional initial rules
type EventTypeInput struct {
	OrganizationID  uint        `json:"orgID" validate:"required"`
	SemesterID      uint        `json:"semesterID" validate:"required"`
	Name            string      `json:"name" validate:"required,max=100"`
	RuleType        string      `json:"ruleType" validate:"required,oneof=Points Criteria"`
	OccurrenceTotal *int        `json:"occurrenceTotal" validate:"omitempty,gte=0"`
	MaxPoints       *float64    `json:"maxPoints" validate:"omitempty,gte=0"`
	Rules           []RuleInput `json:"rules" validate:"dive"`
}

// RequirementInput represents the active requirement
type RequirementInput struct {
	OrganizationID uint    `json:"orgID" validate:"required"`
	SemesterID     uint    `json:"semesterID" validate:"required"`
	Value          float64 `json:"activeRequirement" validate:"gte=0"`
	Mode           string  `json:"description" validate:"required,oneof=points criteria"`
}

// ============================================================
// Event Types
// ============================================================

// ListEventTypes lists the organization's event types for a semester
func (s *RuleConfigService) ListEventTypes(ctx context.Context, orgID, semesterID uint) ([]*models.EventType, error) {
	return s.ruleRepo.ListEventTypes(ctx, orgID, semesterID)
}

// CreateEventType creates an event type with its rules
func (s *RuleConfigService) CreateEventType(ctx context.Context, input *EventTypeInput) (*models.EventType, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}
	if err := s.ensureSemester(ctx, input.SemesterID); err != nil {
		return nil, err
	}
	for _, r := range input.Rules {
		if err := checkRule(r, input.OccurrenceTotal); err != nil {
			return nil, err
		}
	}

	eventType := &models.EventType{
		OrganizationID:  input.OrganizationID,
		SemesterID:      input.SemesterID,
		Name:            input.Name,
		RuleType:        input.RuleType,
		OccurrenceTotal: input.OccurrenceTotal,
		MaxPoints:       input.MaxPoints,
	}
	for _, r := range input.Rules {
		eventType.Rules = append(eventType.Rules, models.Rule{
			Criteria:      r.Criteria,
			CriteriaValue: r.CriteriaValue,
			PointValue:    r.PointValue,
		})
	}

	if err := s.ruleRepo.CreateEventType(ctx, eventType); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrDuplicateEntry
		}
		return nil, err
	}
	return eventType, nil
}

// GetEventType gets an event type with its rules
func (s *RuleConfigService) GetEventType(ctx context.Context, id uint) (*models.EventType, error) {
	return s.getEventType(ctx, id)
}

// RuleOrganization returns the organization owning a rule
func (s *RuleConfigService) RuleOrganization(ctx context.Context, ruleID uint) (uint, error) {
	rule, err := s.ruleRepo.GetRule(ctx, ruleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, domain.ErrRuleNotFound
		}
		return 0, err
	}
	eventType, err := s.getEventType(ctx, rule.EventTypeID)
	if err != nil {
		return 0, err
	}
	return eventType.OrganizationID, nil
}

// UpdateEventType updates an event type; its rules are managed separately
func (s *RuleConfigService) UpdateEventType(ctx context.Context, id uint, input *EventTypeInput) (*models.EventType, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	eventType, err := s.getEventType(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, r := range eventType.Rules {
		ri := RuleInput{Criteria: r.Criteria, CriteriaValue: r.CriteriaValue, PointValue: r.PointValue}
		if err := checkRule(ri, input.OccurrenceTotal); err != nil {
			return nil, err
		}
	}

	eventType.Name = input.Name
	eventType.RuleType = input.RuleType
	eventType.OccurrenceTotal = input.OccurrenceTotal
	eventType.MaxPoints = input.MaxPoints

	if err := s.ruleRepo.UpdateEventType(ctx, eventType); err != nil {
		return nil, err
	}
	return eventType, nil
}

// DeleteEventType deletes an event type and its rules
func (s *RuleConfigService) DeleteEventType(ctx context.Context, id uint) error {
	if err := s.ruleRepo.DeleteEventType(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrEventTypeNotFound
		}
		return err
	}
	return nil
}

// ============================================================
// Rules
// ============================================================

// CreateRule adds a rule to an event type
func (s *RuleConfigService) CreateRule(ctx context.Context, eventTypeID uint, input *RuleInput) (*models.Rule, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	eventType, err := s.getEventType(ctx, eventTypeID)
	if err != nil {
		return nil, err
	}
	if err := checkRule(*input, eventType.OccurrenceTotal); err != nil {
		return nil, err
	}

	rule := &models.Rule{
		EventTypeID:   eventType.ID,
		Criteria:      input.Criteria,
		CriteriaValue: input.CriteriaValue,
		PointValue:    input.PointValue,
	}
	if err := s.ruleRepo.CreateRule(ctx, rule); err != nil {
		return nil, err
	}
	return rule, nil
}

// UpdateRule replaces a rule's criteria and points
func (s *RuleConfigService) UpdateRule(ctx context.Context, id uint, input *RuleInput) (*models.Rule, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	rule, err := s.ruleRepo.GetRule(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRuleNotFound
		}
		return nil, err
	}

	eventType, err := s.getEventType(ctx, rule.EventTypeID)
	if err != nil {
		return nil, err
	}
	if err := checkRule(*input, eventType.OccurrenceTotal); err != nil {
		return nil, err
	}

	rule.Criteria = input.Criteria
	rule.CriteriaValue = input.CriteriaValue
	rule.PointValue = input.PointValue

	if err := s.ruleRepo.UpdateRule(ctx, rule); err != nil {
		return nil, err
	}
	return rule, nil
}

// DeleteRule deletes a rule
func (s *RuleConfigService) DeleteRule(ctx context.Context, id uint) error {
	if err := s.ruleRepo.DeleteRule(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrRuleNotFound
		}
		return err
	}
	return nil
}

// ============================================================
// Active Requirement
// ============================================================

// GetRequirement gets the active requirement of an organization's semester
func (s *RuleConfigService) GetRequirement(ctx context.Context, orgID, semesterID uint) (*models.ActiveRequirement, error) {
	req, err := s.ruleRepo.GetRequirement(ctx, orgID, semesterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRequirementNotFound
		}
		return nil, err
	}
	return req, nil
}

// SetRequirement creates or replaces the active requirement
func (s *RuleConfigService) SetRequirement(ctx context.Context, input *RequirementInput) (*models.ActiveRequirement, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}
	if err := s.ensureSemester(ctx, input.SemesterID); err != nil {
		return nil, err
	}

	req := &models.ActiveRequirement{
		OrganizationID:    input.OrganizationID,
		SemesterID:        input.SemesterID,
		ActiveRequirement: input.Value,
		Description:       input.Mode,
	}
	if err := s.ruleRepo.UpsertRequirement(ctx, req); err != nil {
		return nil, err
	}
	return s.ruleRepo.GetRequirement(ctx, input.OrganizationID, input.SemesterID)
}

// ============================================================
// Helpers
// ============================================================

func (s *RuleConfigService) getEventType(ctx context.Context, id uint) (*models.EventType, error) {
	eventType, err := s.ruleRepo.GetEventType(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrEventTypeNotFound
		}
		return nil, err
	}
	return eventType, nil
}

func (s *RuleConfigService) ensureSemester(ctx context.Context, id uint) error {
	if _, err := s.semesterRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrSemesterNotFound
		}
		return err
	}
	return nil
}

// checkRule rejects threshold rules the evaluator could only score as zero
func checkRule(r RuleInput, occurrenceTotal *int) error {
	switch domain.RuleCriteria(r.Criteria) {
	case domain.CriteriaMinimumPercentage:
		if r.CriteriaValue == nil {
			return fmt.Errorf("%w: %s rule needs criteriaValue", domain.ErrInvalidInput, r.Criteria)
		}
		if *r.CriteriaValue > 1 {
			return fmt.Errorf("%w: percentage threshold is a fraction between 0 and 1", domain.ErrInvalidInput)
		}
		if occurrenceTotal == nil || *occurrenceTotal == 0 {
			return fmt.Errorf("%w: percentage rules need the event type's occurrenceTotal", domain.ErrInvalidInput)
		}
	case domain.CriteriaMinimumHours:
		if r.CriteriaValue == nil {
			return fmt.Errorf("%w: %s rule needs criteriaValue", domain.ErrInvalidInput, r.Criteria)
		}
	}
	return nil
}
