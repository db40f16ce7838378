package repositories

import (
	"context"
	"time"

	"club-membership/internal/adapters/persistence/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// attendanceRepository implements AttendanceRepository interface
type attendanceRepository struct {
	db *gorm.DB
}

// NewAttendanceRepository creates a new attendance repository
func NewAttendanceRepository(db *gorm.DB) AttendanceRepository {
	return &attendanceRepository{db: db}
}

// CreateEvent creates an event
func (r *attendanceRepository) CreateEvent(ctx context.Context, event *models.Event) error {
	return conn(ctx, r.db).Create(event).Error
}

// GetEvent gets an event by ID
func (r *attendanceRepository) GetEvent(ctx context.Context, id uint) (*models.Event, error) {
	var event models.Event
	if err := conn(ctx, r.db).First(&event, id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// ListEvents lists an organization's events for a semester
func (r *attendanceRepository) ListEvents(ctx context.Context, orgID, semesterID uint) ([]*models.Event, error) {
	var events []*models.Event
	err := conn(ctx, r.db).
		Preload("EventType").
		Where("organization_id = ? AND semester_id = ?", orgID, semesterID).
		Order("event_date ASC").
		Find(&events).Error
	return events, err
}

// Upsert records a check-in keyed by member+event
func (r *attendanceRepository) Upsert(ctx context.Context, attendance *models.Attendance) error {
	return conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "member_id"},
			{Name: "event_id"},
		},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"check_in_time": attendance.CheckInTime,
			"hours":         attendance.Hours,
			"updated_at":    time.Now(),
		}),
	}).Create(attendance).Error
}

// ListRecords lists the member's attended events in an organization's semester
func (r *attendanceRepository) ListRecords(ctx context.Context, orgID, memberID, semesterID uint) ([]AttendanceRecordRow, error) {
	var rows []AttendanceRecordRow
	err := conn(ctx, r.db).
		Table("attendance AS a").
		Select("et.name AS event_type, e.event_date AS event_date, a.hours AS hours").
		Joins("JOIN events AS e ON e.id = a.event_id").
		Joins("JOIN event_types AS et ON et.id = e.event_type_id").
		Where("a.member_id = ? AND e.organization_id = ? AND e.semester_id = ?", memberID, orgID, semesterID).
		Order("e.event_date ASC").
		Scan(&rows).Error
	return rows, err
}
