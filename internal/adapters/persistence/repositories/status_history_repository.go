package repositories

import (
	"context"

	"club-membership/internal/adapters/persistence/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// statusHistoryRepository implements StatusHistoryRepository interface
type statusHistoryRepository struct {
	db *gorm.DB
}

// NewStatusHistoryRepository creates a new status history repository
func NewStatusHistoryRepository(db *gorm.DB) StatusHistoryRepository {
	return &statusHistoryRepository{db: db}
}

// RecordTransition appends an audit row
func (r *statusHistoryRepository) RecordTransition(ctx context.Context, transition *models.StatusTransition) error {
	return conn(ctx, r.db).Create(transition).Error
}

// ListTransitions lists a member's transitions in an organization, newest first
func (r *statusHistoryRepository) ListTransitions(ctx context.Context, orgID, memberID uint) ([]*models.StatusTransition, error) {
	var transitions []*models.StatusTransition
	err := conn(ctx, r.db).
		Where("organization_id = ? AND member_id = ?", orgID, memberID).
		Order("id DESC").
		Find(&transitions).Error
	return transitions, err
}

// SaveReport stores the latest verdict for org+member+semester
func (r *statusHistoryRepository) SaveReport(ctx context.Context, report *models.StatusReport) error {
	return conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "organization_id"},
			{Name: "member_id"},
			{Name: "semester_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"verdict", "total_points", "criteria_met", "breakdown", "run_id", "evaluated_at",
		}),
	}).Create(report).Error
}

// GetReport gets the latest report of a member for a semester
func (r *statusHistoryRepository) GetReport(ctx context.Context, orgID, memberID, semesterID uint) (*models.StatusReport, error) {
	var report models.StatusReport
	err := conn(ctx, r.db).
		Where("organization_id = ? AND member_id = ? AND semester_id = ?", orgID, memberID, semesterID).
		First(&report).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// ListReports lists every report of an organization's semester
func (r *statusHistoryRepository) ListReports(ctx context.Context, orgID, semesterID uint) ([]*models.StatusReport, error) {
	var reports []*models.StatusReport
	err := conn(ctx, r.db).
		Where("organization_id = ? AND semester_id = ?", orgID, semesterID).
		Order("total_points DESC").
		Find(&reports).Error
	return reports, err
}
