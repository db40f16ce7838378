package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSemesterSummary(t *testing.T) {
	store := newClubStore()
	svc := newTestServices(store, DefaultEvaluationPolicy())
	ctx := context.Background()

	_, err := svc.semesters.ReEvaluateStatus(ctx, orgID, fall24)
	require.NoError(t, err)

	summary, err := svc.summary.GetSemesterSummary(ctx, orgID, fall24)
	require.NoError(t, err)

	assert.Equal(t, int64(6), summary.TotalMembers)
	assert.Equal(t, int64(2), summary.ByStatus["Active"])
	assert.Equal(t, int64(2), summary.ByStatus["General"])
	assert.Equal(t, int64(2), summary.ByStatus["Exempt"])
	assert.Equal(t, int64(0), summary.ByStatus["Alumni"])
	assert.Equal(t, int64(0), summary.ByStatus["CarryoverActive"])

	// alice 6, bob 2, eve 8
	assert.Equal(t, 3, summary.Evaluated)
	assert.Equal(t, 2, summary.ActiveVerdict)
	assert.InDelta(t, 16.0/3, summary.AveragePoints, 1e-9)
	assert.Equal(t, 8.0, summary.MaxPoints)

	require.Len(t, summary.TopMembers, 3)
	assert.Equal(t, eve, summary.TopMembers[0].MemberID)
	assert.Equal(t, bob, summary.TopMembers[2].MemberID)

	require.Len(t, summary.PointsBuckets, 2)
	assert.Equal(t, 1, summary.PointsBuckets[0].Count)
	assert.Equal(t, 2, summary.PointsBuckets[1].Count)
	assert.Equal(t, 5.0, summary.PointsBuckets[1].From)
}

func TestSemesterSummary_Empty(t *testing.T) {
	svc := newTestServices(newFakeStore(), DefaultEvaluationPolicy())

	summary, err := svc.summary.GetSemesterSummary(context.Background(), orgID, fall24)
	require.NoError(t, err)
	assert.Zero(t, summary.TotalMembers)
	assert.Len(t, summary.ByStatus, 5)
	assert.Empty(t, summary.TopMembers)
	assert.Empty(t, summary.PointsBuckets)
	assert.Zero(t, summary.AveragePoints)
}
