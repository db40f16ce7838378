package services

import (
	"context"
	"fmt"

	"club-membership/internal/adapters/persistence/models"
	"club-membership/internal/adapters/persistence/repositories"
	"club-membership/internal/core/domain"
)

// statusWriter persists membership status changes together with their audit rows
type statusWriter struct {
	membershipRepo repositories.MembershipRepository
	historyRepo    repositories.StatusHistoryRepository
}

// write upserts row's status to `to` and records a transition.
// Rows that already hold `to` are left untouched.
func (w statusWriter) write(ctx context.Context, runID, runType string, row *models.OrganizationMember, to domain.MembershipStatus, reason string) error {
	from := row.Status
	if from == string(to) && row.ID != 0 {
		return nil
	}

	upsert := &models.OrganizationMember{
		OrganizationID: row.OrganizationID,
		MemberID:       row.MemberID,
		SemesterID:     row.SemesterID,
		RoleID:         row.RoleID,
		Status:         string(to),
	}
	if err := w.membershipRepo.UpsertStatus(ctx, upsert); err != nil {
		return fmt.Errorf("write status: %w", err)
	}

	err := w.historyRepo.RecordTransition(ctx, &models.StatusTransition{
		RunID:          runID,
		RunType:        runType,
		OrganizationID: row.OrganizationID,
		MemberID:       row.MemberID,
		SemesterID:     row.SemesterID,
		FromStatus:     from,
		ToStatus:       string(to),
		Reason:         reason,
	})
	if err != nil {
		return fmt.Errorf("record transition: %w", err)
	}
	return nil
}
