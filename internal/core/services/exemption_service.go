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

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ExemptionService grants and revokes the manual Exempt override
type ExemptionService struct {
	tx             repositories.Transactor
	exemptionRepo  repositories.ExemptionRepository
	semesterRepo   repositories.SemesterRepository
	memberRepo     repositories.MemberRepository
	membershipRepo repositories.MembershipRepository
	writer         statusWriter
	now            func() time.Time
}

// NewExemptionService creates a new exemption service
func NewExemptionService(
	tx repositories.Transactor,
	exemptionRepo repositories.ExemptionRepository,
	semesterRepo repositories.SemesterRepository,
	memberRepo repositories.MemberRepository,
	membershipRepo repositories.MembershipRepository,
	historyRepo repositories.StatusHistoryRepository,
) *ExemptionService {
	return &ExemptionService{
		tx:             tx,
		exemptionRepo:  exemptionRepo,
		semesterRepo:   semesterRepo,
		memberRepo:     memberRepo,
		membershipRepo: membershipRepo,
		writer:         statusWriter{membershipRepo: membershipRepo, historyRepo: historyRepo},
		now:            time.Now,
	}
}

// GrantExemptionInput represents grant exemption input
type GrantExemptionInput struct {
	OrganizationID  uint   `json:"orgID" validate:"required"`
	MemberID        uint   `json:"memberID" validate:"required"`
	StartSemesterID uint   `json:"startSemesterID" validate:"required"`
	Duration        int    `json:"duration" validate:"required,min=1,max=12"`
	Reason          string `json:"reason" validate:"max=500"`
	GrantedBy       uint   `json:"-"`
}

// Grant records an exemption and marks the member Exempt for every covered semester that exists
func (s *ExemptionService) Grant(ctx context.Context, input *GrantExemptionInput) (*models.Exemption, error) {
	if input.Duration < 1 {
		return nil, domain.ErrInvalidDuration
	}

	start, err := s.semesterRepo.GetByID(ctx, input.StartSemesterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSemesterNotFound
		}
		return nil, err
	}

	if _, err := s.memberRepo.GetByID(ctx, input.MemberID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	open, err := s.exemptionRepo.GetOpen(ctx, input.OrganizationID, input.MemberID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if open != nil {
		return nil, domain.ErrExemptionActive
	}

	exemption := &models.Exemption{
		OrganizationID:  input.OrganizationID,
		MemberID:        input.MemberID,
		StartSemesterID: start.ID,
		Duration:        input.Duration,
		Reason:          input.Reason,
		GrantedBy:       input.GrantedBy,
	}
	runID := uuid.NewString()

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.exemptionRepo.Create(ctx, exemption); err != nil {
			return err
		}

		semesters, err := s.semesterRepo.ListFrom(ctx, start, input.Duration)
		if err != nil {
			return err
		}
		if len(semesters) < input.Duration {
			log.Printf("ℹ️ Exemption %d covers %d semesters, only %d exist yet", exemption.ID, input.Duration, len(semesters))
		}

		for _, sem := range semesters {
			row, err := s.rowFor(ctx, input.OrganizationID, input.MemberID, sem.ID)
			if err != nil {
				return err
			}
			if row.MembershipStatus() == domain.StatusAlumni {
				continue
			}
			reason := fmt.Sprintf("exemption %d granted", exemption.ID)
			if err := s.writer.write(ctx, runID, models.RunTypeExemption, row, domain.StatusExempt, reason); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	exemption.StartSemester = start
	log.Printf("✅ Exemption granted: org=%d member=%d from %s for %d semesters",
		input.OrganizationID, input.MemberID, start.TermCode, input.Duration)
	return exemption, nil
}

// Revoke ends the member's open exemption and returns covered Exempt rows to General
func (s *ExemptionService) Revoke(ctx context.Context, orgID, memberID uint) (*models.Exemption, error) {
	open, err := s.exemptionRepo.GetOpen(ctx, orgID, memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrExemptionNotFound
		}
		return nil, err
	}

	start, err := s.startSemester(ctx, open)
	if err != nil {
		return nil, err
	}

	endedAt := s.now()
	runID := uuid.NewString()

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.exemptionRepo.End(ctx, open.ID, endedAt); err != nil {
			return err
		}

		semesters, err := s.semesterRepo.ListFrom(ctx, start, open.Duration)
		if err != nil {
			return err
		}

		for _, sem := range semesters {
			row, err := s.membershipRepo.Get(ctx, orgID, memberID, sem.ID)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			if row.MembershipStatus() != domain.StatusExempt {
				continue
			}
			reason := fmt.Sprintf("exemption %d revoked", open.ID)
			if err := s.writer.write(ctx, runID, models.RunTypeExemption, row, domain.StatusGeneral, reason); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	open.EndedAt = &endedAt
	log.Printf("✅ Exemption %d revoked: org=%d member=%d", open.ID, orgID, memberID)
	return open, nil
}

// ExpiredExemption is an open exemption whose last covered semester has ended
type ExpiredExemption struct {
	Exemption    *models.Exemption `json:"exemption"`
	LastSemester *models.Semester  `json:"lastSemester"`
}

// ListExpired lists open exemptions whose covered semesters all ended before asOf.
// They stay in force until revoked.
func (s *ExemptionService) ListExpired(ctx context.Context, asOf time.Time) ([]ExpiredExemption, error) {
	open, err := s.exemptionRepo.ListOpen(ctx)
	if err != nil {
		return nil, err
	}

	var expired []ExpiredExemption
	for _, ex := range open {
		start, err := s.startSemester(ctx, ex)
		if err != nil {
			return nil, err
		}
		semesters, err := s.semesterRepo.ListFrom(ctx, start, ex.Duration)
		if err != nil {
			return nil, err
		}
		if len(semesters) < ex.Duration {
			continue
		}
		last := semesters[len(semesters)-1]
		if last.EndDate.Before(asOf) {
			expired = append(expired, ExpiredExemption{Exemption: ex, LastSemester: last})
		}
	}
	return expired, nil
}

// List lists an organization's exemptions
func (s *ExemptionService) List(ctx context.Context, orgID uint) ([]*models.Exemption, error) {
	return s.exemptionRepo.ListByOrganization(ctx, orgID)
}

func (s *ExemptionService) startSemester(ctx context.Context, ex *models.Exemption) (*models.Semester, error) {
	if ex.StartSemester != nil {
		return ex.StartSemester, nil
	}
	start, err := s.semesterRepo.GetByID(ctx, ex.StartSemesterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSemesterNotFound
		}
		return nil, err
	}
	return start, nil
}

// rowFor returns the existing membership row or a new unsaved one
func (s *ExemptionService) rowFor(ctx context.Context, orgID, memberID, semesterID uint) (*models.OrganizationMember, error) {
	row, err := s.membershipRepo.Get(ctx, orgID, memberID, semesterID)
	if err == nil {
		return row, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return &models.OrganizationMember{
		OrganizationID: orgID,
		MemberID:       memberID,
		SemesterID:     semesterID,
	}, nil
}
