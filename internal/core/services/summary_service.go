package services

import (
	"context"

	"club-membership/internal/adapters/persistence/repositories"
	"club-membership/internal/core/domain"
)

// SummaryService builds the per-semester officer dashboard
type SummaryService struct {
	membershipRepo repositories.MembershipRepository
	historyRepo    repositories.StatusHistoryRepository
}

// NewSummaryService creates a new summary service
func NewSummaryService(
	membershipRepo repositories.MembershipRepository,
	historyRepo repositories.StatusHistoryRepository,
) *SummaryService {
	return &SummaryService{
		membershipRepo: membershipRepo,
		historyRepo:    historyRepo,
	}
}

// SemesterSummary represents dashboard data for one organization's semester
type SemesterSummary struct {
	OrganizationID uint             `json:"organizationId"`
	SemesterID     uint             `json:"semesterId"`
	TotalMembers   int64            `json:"totalMembers"`
	ByStatus       map[string]int64 `json:"byStatus"`

	// From the latest status reports
	Evaluated     int          `json:"evaluated"`
	ActiveVerdict int          `json:"activeVerdicts"`
	AveragePoints float64      `json:"averagePoints"`
	MaxPoints     float64      `json:"maxPoints"`
	TopMembers    []TopMember  `json:"topMembers"`
	PointsBuckets []PointRange `json:"pointsBuckets"`
}

// TopMember represents one of the highest scoring members
type TopMember struct {
	MemberID    uint    `json:"memberId"`
	TotalPoints float64 `json:"totalPoints"`
	Verdict     string  `json:"verdict"`
}

// PointRange counts reports with From <= points < To
type PointRange struct {
	From  float64 `json:"from"`
	To    float64 `json:"to"`
	Count int     `json:"count"`
}

const (
	topMembersLimit = 5
	bucketWidth     = 5.0
)

// GetSemesterSummary returns status counts and points distribution
func (s *SummaryService) GetSemesterSummary(ctx context.Context, orgID, semesterID uint) (*SemesterSummary, error) {
	counts, err := s.membershipRepo.CountByStatus(ctx, orgID, semesterID)
	if err != nil {
		return nil, err
	}

	data := &SemesterSummary{
		OrganizationID: orgID,
		SemesterID:     semesterID,
		ByStatus:       make(map[string]int64),
		TopMembers:     []TopMember{},
		PointsBuckets:  []PointRange{},
	}
	for _, st := range []domain.MembershipStatus{
		domain.StatusActive, domain.StatusCarryoverActive, domain.StatusGeneral,
		domain.StatusExempt, domain.StatusAlumni,
	} {
		data.ByStatus[string(st)] = counts[string(st)]
	}
	for _, n := range counts {
		data.TotalMembers += n
	}

	// Reports come back highest points first
	reports, err := s.historyRepo.ListReports(ctx, orgID, semesterID)
	if err != nil {
		return nil, err
	}

	var sum float64
	buckets := map[int]int{}
	maxBucket := -1
	for i, r := range reports {
		data.Evaluated++
		sum += r.TotalPoints
		if r.Verdict == string(domain.VerdictActive) {
			data.ActiveVerdict++
		}
		if r.TotalPoints > data.MaxPoints {
			data.MaxPoints = r.TotalPoints
		}
		if i < topMembersLimit {
			data.TopMembers = append(data.TopMembers, TopMember{
				MemberID:    r.MemberID,
				TotalPoints: r.TotalPoints,
				Verdict:     r.Verdict,
			})
		}

		b := int(r.TotalPoints / bucketWidth)
		if b < 0 {
			b = 0
		}
		buckets[b]++
		if b > maxBucket {
			maxBucket = b
		}
	}

	if data.Evaluated > 0 {
		data.AveragePoints = sum / float64(data.Evaluated)
	}
	for b := 0; b <= maxBucket; b++ {
		data.PointsBuckets = append(data.PointsBuckets, PointRange{
			From:  float64(b) * bucketWidth,
			To:    float64(b+1) * bucketWidth,
			Count: buckets[b],
		})
	}

	return data, nil
}
