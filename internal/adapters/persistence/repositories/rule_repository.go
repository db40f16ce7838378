package repositories

import (
	"context"
	"time"

	"club-membership/internal/adapters/persistence/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ruleRepository implements RuleRepository interface
type ruleRepository struct {
	db *gorm.DB
}

// NewRuleRepository creates a new rule repository
func NewRuleRepository(db *gorm.DB) RuleRepository {
	return &ruleRepository{db: db}
}

// ============================================================
// Event Types
// ============================================================

// ListEventTypes lists event types with their rules, in creation order
func (r *ruleRepository) ListEventTypes(ctx context.Context, orgID, semesterID uint) ([]*models.EventType, error) {
	var eventTypes []*models.EventType
	err := conn(ctx, r.db).
		Preload("Rules", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Where("organization_id = ? AND semester_id = ?", orgID, semesterID).
		Order("id ASC").
		Find(&eventTypes).Error
	return eventTypes, err
}

// GetEventType gets an event type with its rules
func (r *ruleRepository) GetEventType(ctx context.Context, id uint) (*models.EventType, error) {
	var eventType models.EventType
	if err := conn(ctx, r.db).Preload("Rules").First(&eventType, id).Error; err != nil {
		return nil, err
	}
	return &eventType, nil
}

// CreateEventType creates an event type and any rules attached to it
func (r *ruleRepository) CreateEventType(ctx context.Context, eventType *models.EventType) error {
	return conn(ctx, r.db).Create(eventType).Error
}

// UpdateEventType updates the event type columns only
func (r *ruleRepository) UpdateEventType(ctx context.Context, eventType *models.EventType) error {
	return conn(ctx, r.db).Omit(clause.Associations).Save(eventType).Error
}

// DeleteEventType deletes an event type and its rules
func (r *ruleRepository) DeleteEventType(ctx context.Context, id uint) error {
	return conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_type_id = ?", id).Delete(&models.Rule{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.EventType{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// ============================================================
// Rules
// ============================================================

// GetRule gets a rule by ID
func (r *ruleRepository) GetRule(ctx context.Context, id uint) (*models.Rule, error) {
	var rule models.Rule
	if err := conn(ctx, r.db).First(&rule, id).Error; err != nil {
		return nil, err
	}
	return &rule, nil
}

// CreateRule creates a rule
func (r *ruleRepository) CreateRule(ctx context.Context, rule *models.Rule) error {
	return conn(ctx, r.db).Create(rule).Error
}

// UpdateRule updates a rule
func (r *ruleRepository) UpdateRule(ctx context.Context, rule *models.Rule) error {
	return conn(ctx, r.db).Save(rule).Error
}

// DeleteRule deletes a rule
func (r *ruleRepository) DeleteRule(ctx context.Context, id uint) error {
	result := conn(ctx, r.db).Delete(&models.Rule{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ============================================================
// Active Requirement
// ============================================================

// GetRequirement gets the active requirement of an organization's semester
func (r *ruleRepository) GetRequirement(ctx context.Context, orgID, semesterID uint) (*models.ActiveRequirement, error) {
	var req models.ActiveRequirement
	err := conn(ctx, r.db).
		Where("organization_id = ? AND semester_id = ?", orgID, semesterID).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// UpsertRequirement inserts or replaces the requirement for org+semester
func (r *ruleRepository) UpsertRequirement(ctx context.Context, req *models.ActiveRequirement) error {
	return conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "organization_id"},
			{Name: "semester_id"},
		},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"active_requirement": req.ActiveRequirement,
			"description":        req.Description,
			"updated_at":         time.Now(),
		}),
	}).Create(req).Error
}
