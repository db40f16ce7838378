package services

import (
	"context"
	"testing"
	"time"

	"club-membership/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func grantInput(member, start uint, duration int) *GrantExemptionInput {
	return &GrantExemptionInput{
		OrganizationID:  orgID,
		MemberID:        member,
		StartSemesterID: start,
		Duration:        duration,
		Reason:          "study abroad",
		GrantedBy:       1,
	}
}

func TestExemption_GrantCoversDuration(t *testing.T) {
	store := newClubStore()
	svc := newTestServices(store, DefaultEvaluationPolicy())

	ex, err := svc.exemptions.Grant(context.Background(), grantInput(finn, fall24, 2))
	require.NoError(t, err)
	assert.NotZero(t, ex.ID)
	require.NotNil(t, ex.StartSemester)
	assert.Equal(t, "F24", ex.StartSemester.TermCode)

	for _, sem := range []uint{fall24, spring25} {
		got, ok := store.status(orgID, finn, sem)
		require.True(t, ok)
		assert.Equal(t, "Exempt", got)
	}
	_, ok := store.status(orgID, finn, fall25)
	assert.False(t, ok)

	assert.Len(t, store.transitions, 2)
}

func TestExemption_GrantSkipsAlumniRows(t *testing.T) {
	store := newClubStore()
	store.addMember(20, "Gus", "F24")
	store.addMembership(orgID, 20, fall24, "General")
	store.addMembership(orgID, 20, spring25, "Alumni")
	svc := newTestServices(store, DefaultEvaluationPolicy())

	_, err := svc.exemptions.Grant(context.Background(), grantInput(20, fall24, 2))
	require.NoError(t, err)

	got, _ := store.status(orgID, 20, fall24)
	assert.Equal(t, "Exempt", got)
	got, _ = store.status(orgID, 20, spring25)
	assert.Equal(t, "Alumni", got)
}

func TestExemption_GrantRejectsSecondOpenExemption(t *testing.T) {
	svc := newTestServices(newClubStore(), DefaultEvaluationPolicy())
	ctx := context.Background()

	_, err := svc.exemptions.Grant(ctx, grantInput(finn, fall24, 1))
	require.NoError(t, err)

	_, err = svc.exemptions.Grant(ctx, grantInput(finn, spring25, 1))
	assert.ErrorIs(t, err, domain.ErrExemptionActive)
}

func TestExemption_GrantValidation(t *testing.T) {
	svc := newTestServices(newClubStore(), DefaultEvaluationPolicy())
	ctx := context.Background()

	_, err := svc.exemptions.Grant(ctx, grantInput(finn, fall24, 0))
	assert.ErrorIs(t, err, domain.ErrInvalidDuration)

	_, err = svc.exemptions.Grant(ctx, grantInput(finn, 99, 1))
	assert.ErrorIs(t, err, domain.ErrSemesterNotFound)

	_, err = svc.exemptions.Grant(ctx, grantInput(999, fall24, 1))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestExemption_RevokeRestoresGeneral(t *testing.T) {
	store := newClubStore()
	svc := newTestServices(store, DefaultEvaluationPolicy())
	ctx := context.Background()

	_, err := svc.exemptions.Grant(ctx, grantInput(alice, fall24, 2))
	require.NoError(t, err)

	ended, err := svc.exemptions.Revoke(ctx, orgID, alice)
	require.NoError(t, err)
	require.NotNil(t, ended.EndedAt)

	for _, sem := range []uint{fall24, spring25} {
		got, _ := store.status(orgID, alice, sem)
		assert.Equal(t, "General", got)
	}
	assert.Len(t, store.transitions, 4)

	_, err = svc.exemptions.Revoke(ctx, orgID, alice)
	assert.ErrorIs(t, err, domain.ErrExemptionNotFound)

	// a new exemption can be granted once the old one has ended
	_, err = svc.exemptions.Grant(ctx, grantInput(alice, fall25, 1))
	assert.NoError(t, err)
}

func TestExemption_ExemptMemberCarriesOverOnFinalize(t *testing.T) {
	store := newClubStore()
	svc := newTestServices(store, DefaultEvaluationPolicy())
	ctx := context.Background()

	_, err := svc.exemptions.Grant(ctx, grantInput(finn, fall24, 1))
	require.NoError(t, err)

	_, err = svc.semesters.FinalizeSemester(ctx, orgID, fall24)
	require.NoError(t, err)

	got, ok := store.status(orgID, finn, spring25)
	require.True(t, ok)
	assert.Equal(t, "CarryoverActive", got)
}

func TestExemption_ListExpired(t *testing.T) {
	svc := newTestServices(newClubStore(), DefaultEvaluationPolicy())
	ctx := context.Background()

	_, err := svc.exemptions.Grant(ctx, grantInput(finn, fall24, 2))
	require.NoError(t, err)
	// only three semesters exist, so this one cannot have ended yet
	_, err = svc.exemptions.Grant(ctx, grantInput(bob, fall24, 5))
	require.NoError(t, err)

	expired, err := svc.exemptions.ListExpired(ctx, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, expired)

	expired, err = svc.exemptions.ListExpired(ctx, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, finn, expired[0].Exemption.MemberID)
	assert.Equal(t, "S25", expired[0].LastSemester.TermCode)

	_, err = svc.exemptions.Revoke(ctx, orgID, finn)
	require.NoError(t, err)

	expired, err = svc.exemptions.ListExpired(ctx, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, expired)
}
