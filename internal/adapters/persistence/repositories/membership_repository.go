package repositories

import (
	"context"
	"time"

	"club-membership/internal/adapters/persistence/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// membershipRepository implements MembershipRepository interface
type membershipRepository struct {
	db *gorm.DB
}

// NewMembershipRepository creates a new membership repository
func NewMembershipRepository(db *gorm.DB) MembershipRepository {
	return &membershipRepository{db: db}
}

// ListBySemester lists all membership rows of an organization for a semester
func (r *membershipRepository) ListBySemester(ctx context.Context, orgID, semesterID uint) ([]*models.OrganizationMember, error) {
	var rows []*models.OrganizationMember
	err := conn(ctx, r.db).
		Preload("Member").
		Where("organization_id = ? AND semester_id = ?", orgID, semesterID).
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

// List lists membership rows with an optional status filter and pagination
func (r *membershipRepository) List(ctx context.Context, orgID, semesterID uint, status string, offset, limit int) ([]*models.OrganizationMember, int64, error) {
	var rows []*models.OrganizationMember
	var total int64

	query := conn(ctx, r.db).
		Model(&models.OrganizationMember{}).
		Where("organization_id = ? AND semester_id = ?", orgID, semesterID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Member").
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}

// Get gets one membership row
func (r *membershipRepository) Get(ctx context.Context, orgID, memberID, semesterID uint) (*models.OrganizationMember, error) {
	var row models.OrganizationMember
	err := conn(ctx, r.db).
		Where("organization_id = ? AND member_id = ? AND semester_id = ?", orgID, memberID, semesterID).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// UpdateStatus updates the status of one row
func (r *membershipRepository) UpdateStatus(ctx context.Context, id uint, status string) error {
	return conn(ctx, r.db).
		Model(&models.OrganizationMember{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}

// UpsertStatus inserts the row; on org+member+semester conflict only the status changes
func (r *membershipRepository) UpsertStatus(ctx context.Context, row *models.OrganizationMember) error {
	return conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "organization_id"},
			{Name: "member_id"},
			{Name: "semester_id"},
		},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"status":     row.Status,
			"updated_at": time.Now(),
		}),
	}).Create(row).Error
}

// DeleteAfter deletes the member's rows for every semester starting after the given date
func (r *membershipRepository) DeleteAfter(ctx context.Context, orgID, memberID uint, after time.Time) (int64, error) {
	db := conn(ctx, r.db)
	later := db.Model(&models.Semester{}).Select("id").Where("start_date > ?", after)

	result := db.
		Where("organization_id = ? AND member_id = ?", orgID, memberID).
		Where("semester_id IN (?)", later).
		Delete(&models.OrganizationMember{})
	return result.RowsAffected, result.Error
}

// CountByStatus counts rows per status for an organization's semester
func (r *membershipRepository) CountByStatus(ctx context.Context, orgID, semesterID uint) (map[string]int64, error) {
	var rows []struct {
		Status string
		Total  int64
	}
	err := conn(ctx, r.db).
		Model(&models.OrganizationMember{}).
		Select("status, COUNT(*) AS total").
		Where("organization_id = ? AND semester_id = ?", orgID, semesterID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}
