package services

import (
	"context"

	"club-membership/internal/adapters/persistence/models"
)

// LifecycleService runs the batch status transitions of a semester
type LifecycleService interface {
	ResolveSemesterID(ctx context.Context, id uint, termCode string) (uint, error)
	FinalizeSemester(ctx context.Context, orgID, semesterID uint) (*FinalizeResult, error)
	ReEvaluateStatus(ctx context.Context, orgID, semesterID uint) (*ReEvaluateResult, error)
}

// MemberStatusReader exposes live and persisted member status
type MemberStatusReader interface {
	MemberStatus(ctx context.Context, orgID, memberID, semesterID uint) (*MemberStatusView, error)
	Roster(ctx context.Context, orgID, semesterID uint, status string, offset, limit int) ([]*models.OrganizationMember, int64, error)
}

var (
	_ LifecycleService   = (*SemesterService)(nil)
	_ MemberStatusReader = (*StatusService)(nil)
)
