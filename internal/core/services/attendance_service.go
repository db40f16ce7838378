package services

import (
	"context"
	"errors"
	"time"

	"club-membership/internal/adapters/persistence/models"
	"club-membership/internal/adapters/persistence/repositories"
	"club-membership/internal/core/domain"
	"club-membership/internal/pkg/validate"

	"gorm.io/gorm"
)

// AttendanceService records events and manual check-ins
type AttendanceService struct {
	attendanceRepo repositories.AttendanceRepository
	ruleRepo       repositories.RuleRepository
	memberRepo     repositories.MemberRepository
}

// NewAttendanceService creates a new attendance service
func NewAttendanceService(
	attendanceRepo repositories.AttendanceRepository,
	ruleRepo repositories.RuleRepository,
	memberRepo repositories.MemberRepository,
) *AttendanceService {
	return &AttendanceService{
		attendanceRepo: attendanceRepo,
		ruleRepo:       ruleRepo,
		memberRepo:     memberRepo,
	}
}

// EventInput represents create event input
type EventInput struct {
	OrganizationID uint      `json:"-"`
	EventTypeID    uint      `json:"eventTypeID" validate:"required"`
	Name           string    `json:"name" validate:"required,max=150"`
	EventDate      time.Time `json:"eventDate" validate:"required"`
}

// CheckInInput represents a manual check-in
type CheckInInput struct {
	OrganizationID uint       `json:"-"`
	MemberID       uint       `json:"memberID" validate:"required"`
	EventID        uint       `json:"eventID" validate:"required"`
	CheckInTime    *time.Time `json:"checkInTime"`
	Hours          *float64   `json:"hours" validate:"omitempty,gte=0,lte=24"`
}

// CreateEvent schedules an event of an existing event type
func (s *AttendanceService) CreateEvent(ctx context.Context, input *EventInput) (*models.Event, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	eventType, err := s.ruleRepo.GetEventType(ctx, input.EventTypeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrEventTypeNotFound
		}
		return nil, err
	}
	if input.OrganizationID != 0 && eventType.OrganizationID != input.OrganizationID {
		return nil, domain.ErrEventTypeNotFound
	}

	event := &models.Event{
		OrganizationID: eventType.OrganizationID,
		SemesterID:     eventType.SemesterID,
		EventTypeID:    eventType.ID,
		Name:           input.Name,
		EventDate:      input.EventDate,
	}
	if err := s.attendanceRepo.CreateEvent(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// ListEvents lists an organization's events for a semester
func (s *AttendanceService) ListEvents(ctx context.Context, orgID, semesterID uint) ([]*models.Event, error) {
	return s.attendanceRepo.ListEvents(ctx, orgID, semesterID)
}

// CheckIn records or overwrites a member's attendance at an event
func (s *AttendanceService) CheckIn(ctx context.Context, input *CheckInInput) (*models.Attendance, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	event, err := s.attendanceRepo.GetEvent(ctx, input.EventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if input.OrganizationID != 0 && event.OrganizationID != input.OrganizationID {
		return nil, domain.ErrNotFound
	}

	if _, err := s.memberRepo.GetByID(ctx, input.MemberID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	checkIn := event.EventDate
	if input.CheckInTime != nil {
		checkIn = *input.CheckInTime
	}

	attendance := &models.Attendance{
		MemberID:    input.MemberID,
		EventID:     event.ID,
		CheckInTime: checkIn,
		Hours:       input.Hours,
	}
	if err := s.attendanceRepo.Upsert(ctx, attendance); err != nil {
		return nil, err
	}
	return attendance, nil
}

// MemberRecords lists the member's attendance as the evaluator sees it
func (s *AttendanceService) MemberRecords(ctx context.Context, orgID, memberID, semesterID uint) ([]domain.AttendanceRecord, error) {
	rows, err := s.attendanceRepo.ListRecords(ctx, orgID, memberID, semesterID)
	if err != nil {
		return nil, err
	}
	return toAttendanceRecords(rows), nil
}
