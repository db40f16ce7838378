package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"club-membership/internal/adapters/persistence/models"
	"club-membership/internal/adapters/persistence/repositories"
	"club-membership/internal/core/domain"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SemesterService runs the batch status transitions of an organization's semester
type SemesterService struct {
	tx             repositories.Transactor
	semesterRepo   repositories.SemesterRepository
	membershipRepo repositories.MembershipRepository
	historyRepo    repositories.StatusHistoryRepository
	status         *StatusService
	writer         statusWriter
	guard          *runGuard
	now            func() time.Time
}

// NewSemesterService creates a new semester service
func NewSemesterService(
	tx repositories.Transactor,
	semesterRepo repositories.SemesterRepository,
	membershipRepo repositories.MembershipRepository,
	historyRepo repositories.StatusHistoryRepository,
	status *StatusService,
) *SemesterService {
	return &SemesterService{
		tx:             tx,
		semesterRepo:   semesterRepo,
		membershipRepo: membershipRepo,
		historyRepo:    historyRepo,
		status:         status,
		writer:         statusWriter{membershipRepo: membershipRepo, historyRepo: historyRepo},
		guard:          newRunGuard(),
		now:            time.Now,
	}
}

// ReEvaluateResult summarizes a re-evaluation run
type ReEvaluateResult struct {
	RunID            string `json:"runId"`
	TotalMembers     int    `json:"totalMembers"`
	UpdatedMembers   int    `json:"updatedMembers"`
	ExemptMembers    int    `json:"exemptMembers"`
	ProcessingTimeMs int64  `json:"processingTimeMs"`
}

// FinalizeResult summarizes a finalize run
type FinalizeResult struct {
	RunID            string `json:"runId"`
	NextSemesterID   uint   `json:"nextSemesterId"`
	TotalMembers     int    `json:"totalMembers"`
	UpdatedMembers   int    `json:"updatedMembers"`
	ExemptMembers    int    `json:"exemptMembers"`
	CarriedOver      int    `json:"carriedOver"`
	Graduated        int    `json:"graduated"`
	Lapsed           int    `json:"lapsed"`
	ProcessingTimeMs int64  `json:"processingTimeMs"`
}

// ============================================================
// Re-evaluate
// ============================================================

// ReEvaluateStatus recomputes and persists the current-semester status of every member.
// Exempt and Alumni rows are left alone; an unknown verdict leaves the row unchanged.
func (s *SemesterService) ReEvaluateStatus(ctx context.Context, orgID, semesterID uint) (*ReEvaluateResult, error) {
	key := runKey(orgID, semesterID)
	if !s.guard.acquire(key) {
		return nil, domain.ErrRunInProgress
	}
	defer s.guard.release(key)

	started := s.now()

	if _, err := s.getSemester(ctx, semesterID); err != nil {
		return nil, err
	}

	result := &ReEvaluateResult{RunID: uuid.NewString()}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		rows, err := s.membershipRepo.ListBySemester(ctx, orgID, semesterID)
		if err != nil {
			return fmt.Errorf("list members: %w", err)
		}
		result.TotalMembers = len(rows)

		for _, row := range rows {
			switch row.MembershipStatus() {
			case domain.StatusExempt:
				result.ExemptMembers++
				continue
			case domain.StatusAlumni:
				continue
			}

			verdict, err := s.status.AssembleVerdict(ctx, orgID, row.MemberID, semesterID)
			if err != nil {
				return fmt.Errorf("member %d: %w", row.MemberID, err)
			}
			if verdict == nil {
				log.Printf("⚠️ Re-evaluate: member %d has unknown status, left as %s", row.MemberID, row.Status)
				continue
			}

			if err := s.saveReport(ctx, result.RunID, orgID, row.MemberID, semesterID, verdict); err != nil {
				return err
			}

			target := domain.StatusGeneral
			if verdict.IsActive() {
				target = domain.StatusActive
			}
			if err := s.writer.write(ctx, result.RunID, models.RunTypeReEvaluate, row, target, "re-evaluated: "+string(verdict.Status)); err != nil {
				return err
			}
			result.UpdatedMembers++
		}
		return nil
	})
	if err != nil {
		log.Printf("❌ Re-evaluate failed [org=%d semester=%d]: %v", orgID, semesterID, err)
		return nil, err
	}

	result.ProcessingTimeMs = s.now().Sub(started).Milliseconds()
	log.Printf("✅ Re-evaluated org=%d semester=%d: %d members, %d updated, %d exempt (%dms)",
		orgID, semesterID, result.TotalMembers, result.UpdatedMembers, result.ExemptMembers, result.ProcessingTimeMs)

	return result, nil
}

// ============================================================
// Finalize
// ============================================================

// FinalizeSemester transitions every member of the organization into the next semester.
// The whole run commits or rolls back as a unit.
func (s *SemesterService) FinalizeSemester(ctx context.Context, orgID, semesterID uint) (*FinalizeResult, error) {
	key := runKey(orgID, semesterID)
	if !s.guard.acquire(key) {
		return nil, domain.ErrRunInProgress
	}
	defer s.guard.release(key)

	started := s.now()

	semester, err := s.getSemester(ctx, semesterID)
	if err != nil {
		return nil, err
	}

	next, err := s.semesterRepo.GetNext(ctx, semester)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNextSemesterNotFound
		}
		return nil, err
	}

	result := &FinalizeResult{RunID: uuid.NewString(), NextSemesterID: next.ID}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		rows, err := s.membershipRepo.ListBySemester(ctx, orgID, semesterID)
		if err != nil {
			return fmt.Errorf("list members: %w", err)
		}
		result.TotalMembers = len(rows)

		for _, row := range rows {
			if err := s.finalizeMember(ctx, result, semester, next, row); err != nil {
				return fmt.Errorf("member %d: %w", row.MemberID, err)
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("❌ Finalize failed [org=%d semester=%s]: %v", orgID, semester.TermCode, err)
		return nil, err
	}

	result.ProcessingTimeMs = s.now().Sub(started).Milliseconds()
	log.Printf("✅ Finalized org=%d %s -> %s: %d members, %d carried over, %d graduated, %d exempt (%dms)",
		orgID, semester.TermCode, next.TermCode, result.TotalMembers, result.CarriedOver,
		result.Graduated, result.ExemptMembers, result.ProcessingTimeMs)

	return result, nil
}

// finalizeMember decides one member's next-semester status
func (s *SemesterService) finalizeMember(ctx context.Context, result *FinalizeResult, current, next *models.Semester, row *models.OrganizationMember) error {
	orgID := row.OrganizationID
	status := row.MembershipStatus()

	if status == domain.StatusAlumni {
		return nil
	}

	var active bool
	if status == domain.StatusExempt {
		// exemption wins over evaluation and counts as active
		result.ExemptMembers++
		active = true
	} else {
		verdict, err := s.status.AssembleVerdict(ctx, orgID, row.MemberID, current.ID)
		if err != nil {
			return err
		}
		result.UpdatedMembers++
		if verdict != nil {
			if err := s.saveReport(ctx, result.RunID, orgID, row.MemberID, current.ID, verdict); err != nil {
				return err
			}
		}
		active = verdict.IsActive()
	}

	nextRow, err := s.membershipRepo.Get(ctx, orgID, row.MemberID, next.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if nextRow == nil {
		nextRow = &models.OrganizationMember{
			OrganizationID: orgID,
			MemberID:       row.MemberID,
			SemesterID:     next.ID,
			RoleID:         row.RoleID,
		}
	}

	if row.Member != nil && row.Member.GraduationSemester == current.TermCode {
		if err := s.writer.write(ctx, result.RunID, models.RunTypeFinalize, nextRow, domain.StatusAlumni, "graduated "+current.TermCode); err != nil {
			return err
		}
		purged, err := s.membershipRepo.DeleteAfter(ctx, orgID, row.MemberID, next.StartDate)
		if err != nil {
			return fmt.Errorf("purge future semesters: %w", err)
		}
		if purged > 0 {
			log.Printf("🎓 Member %d graduated, removed %d future semester rows", row.MemberID, purged)
		}
		result.Graduated++
		return nil
	}

	if active {
		if nextRow.MembershipStatus() == domain.StatusExempt {
			return nil
		}
		if err := s.writer.write(ctx, result.RunID, models.RunTypeFinalize, nextRow, domain.StatusCarryoverActive, "carryover from "+current.TermCode); err != nil {
			return err
		}
		result.CarriedOver++
		return nil
	}

	result.Lapsed++
	log.Printf("ℹ️ Member %d not active in %s, no carryover into %s", row.MemberID, current.TermCode, next.TermCode)
	return nil
}

// ============================================================
// Helpers
// ============================================================

// ResolveSemesterID returns the semester identified by id, or by termCode when id is zero.
// When both are given they must name the same semester.
func (s *SemesterService) ResolveSemesterID(ctx context.Context, id uint, termCode string) (uint, error) {
	if id == 0 && termCode == "" {
		return 0, fmt.Errorf("%w: semester id or term code required", domain.ErrInvalidInput)
	}

	if id == 0 {
		semester, err := s.semesterRepo.GetByTermCode(ctx, termCode)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, domain.ErrSemesterNotFound
			}
			return 0, err
		}
		return semester.ID, nil
	}

	semester, err := s.getSemester(ctx, id)
	if err != nil {
		return 0, err
	}
	if termCode != "" && semester.TermCode != termCode {
		return 0, fmt.Errorf("%w: semester %d is %s, not %s", domain.ErrInvalidInput, id, semester.TermCode, termCode)
	}
	return semester.ID, nil
}

func (s *SemesterService) getSemester(ctx context.Context, id uint) (*models.Semester, error) {
	semester, err := s.semesterRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSemesterNotFound
		}
		return nil, err
	}
	return semester, nil
}

func (s *SemesterService) saveReport(ctx context.Context, runID string, orgID, memberID, semesterID uint, verdict *domain.StatusVerdict) error {
	breakdown, err := sonic.Marshal(verdict.Breakdown)
	if err != nil {
		return err
	}

	return s.historyRepo.SaveReport(ctx, &models.StatusReport{
		OrganizationID: orgID,
		MemberID:       memberID,
		SemesterID:     semesterID,
		Verdict:        string(verdict.Status),
		TotalPoints:    verdict.TotalPoints,
		CriteriaMet:    verdict.CriteriaMet,
		Breakdown:      datatypes.JSON(breakdown),
		RunID:          runID,
		EvaluatedAt:    s.now(),
	})
}
