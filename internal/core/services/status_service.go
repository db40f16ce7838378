package services

import (
	"context"
	"errors"
	"fmt"

	"club-membership/internal/adapters/persistence/models"
	"club-membership/internal/adapters/persistence/repositories"
	"club-membership/internal/core/domain"

	"gorm.io/gorm"
)

// StatusService assembles a member's requirement, rules and attendance and evaluates them
type StatusService struct {
	ruleRepo       repositories.RuleRepository
	attendanceRepo repositories.AttendanceRepository
	membershipRepo repositories.MembershipRepository
	historyRepo    repositories.StatusHistoryRepository
	evaluator      *RuleEvaluator
}

// NewStatusService creates a new status service
func NewStatusService(
	ruleRepo repositories.RuleRepository,
	attendanceRepo repositories.AttendanceRepository,
	membershipRepo repositories.MembershipRepository,
	historyRepo repositories.StatusHistoryRepository,
	evaluator *RuleEvaluator,
) *StatusService {
	return &StatusService{
		ruleRepo:       ruleRepo,
		attendanceRepo: attendanceRepo,
		membershipRepo: membershipRepo,
		historyRepo:    historyRepo,
		evaluator:      evaluator,
	}
}

// AssembleVerdict evaluates one member for one semester.
// A nil verdict with a nil error means the status is unknown: the organization has
// no requirement or no event types, or the member attended nothing.
func (s *StatusService) AssembleVerdict(ctx context.Context, orgID, memberID, semesterID uint) (*domain.StatusVerdict, error) {
	req, err := s.ruleRepo.GetRequirement(ctx, orgID, semesterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch active requirement: %w", err)
	}

	eventTypes, err := s.ruleRepo.ListEventTypes(ctx, orgID, semesterID)
	if err != nil {
		return nil, fmt.Errorf("fetch event rules: %w", err)
	}
	if len(eventTypes) == 0 {
		return nil, nil
	}

	rows, err := s.attendanceRepo.ListRecords(ctx, orgID, memberID, semesterID)
	if err != nil {
		return nil, fmt.Errorf("fetch attendance: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	verdict := s.evaluator.EvaluateRequirement(toAttendanceRecords(rows), toRuleConfig(eventTypes), req.ToDomain())
	return &verdict, nil
}

// MemberStatusView is a member's persisted status next to a live evaluation
type MemberStatusView struct {
	OrganizationID uint                       `json:"organizationId"`
	MemberID       uint                       `json:"memberId"`
	SemesterID     uint                       `json:"semesterId"`
	Status         domain.MembershipStatus    `json:"status"`
	Verdict        *domain.StatusVerdict      `json:"verdict"` // null when unknown
	LastReport     *models.StatusReport       `json:"lastReport,omitempty"`
	History        []*models.StatusTransition `json:"history"`
}

// MemberStatus returns the member's current row, live verdict, last report and history
func (s *StatusService) MemberStatus(ctx context.Context, orgID, memberID, semesterID uint) (*MemberStatusView, error) {
	row, err := s.membershipRepo.Get(ctx, orgID, memberID, semesterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMembershipNotFound
		}
		return nil, err
	}

	view := &MemberStatusView{
		OrganizationID: orgID,
		MemberID:       memberID,
		SemesterID:     semesterID,
		Status:         row.MembershipStatus(),
	}

	// Exempt and Alumni rows are never evaluated
	if view.Status != domain.StatusExempt && view.Status != domain.StatusAlumni {
		view.Verdict, err = s.AssembleVerdict(ctx, orgID, memberID, semesterID)
		if err != nil {
			return nil, err
		}
	}

	report, err := s.historyRepo.GetReport(ctx, orgID, memberID, semesterID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	view.LastReport = report

	view.History, err = s.historyRepo.ListTransitions(ctx, orgID, memberID)
	if err != nil {
		return nil, err
	}

	return view, nil
}

// Roster lists the organization's membership rows for a semester, optionally filtered by status
func (s *StatusService) Roster(ctx context.Context, orgID, semesterID uint, status string, offset, limit int) ([]*models.OrganizationMember, int64, error) {
	if status != "" && !domain.MembershipStatus(status).Valid() {
		return nil, 0, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, status)
	}
	return s.membershipRepo.List(ctx, orgID, semesterID, status, offset, limit)
}

func toRuleConfig(eventTypes []*models.EventType) domain.RuleConfig {
	cfg := domain.RuleConfig{EventTypes: make([]domain.EventTypeConfig, 0, len(eventTypes))}
	for _, et := range eventTypes {
		cfg.EventTypes = append(cfg.EventTypes, et.ToDomain())
	}
	return cfg
}

func toAttendanceRecords(rows []repositories.AttendanceRecordRow) []domain.AttendanceRecord {
	records := make([]domain.AttendanceRecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, domain.AttendanceRecord{
			EventType: r.EventType,
			EventDate: r.EventDate,
			Hours:     r.Hours,
		})
	}
	return records
}
