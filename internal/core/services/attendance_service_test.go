package services

import (
	"context"
	"testing"
	"time"

	"club-membership/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttendance_EventAndCheckIn(t *testing.T) {
	store := newClubStore()
	svc := newTestServices(store, DefaultEvaluationPolicy())
	ctx := context.Background()

	date := time.Date(2024, 10, 2, 19, 0, 0, 0, time.UTC)
	event, err := svc.attendance.CreateEvent(ctx, &EventInput{EventTypeID: 500, Name: "October meeting", EventDate: date})
	require.NoError(t, err)
	assert.Equal(t, orgID, event.OrganizationID)
	assert.Equal(t, fall24, event.SemesterID)

	att, err := svc.attendance.CheckIn(ctx, &CheckInInput{MemberID: finn, EventID: event.ID})
	require.NoError(t, err)
	assert.Equal(t, date, att.CheckInTime)

	// a second check-in overwrites the first
	_, err = svc.attendance.CheckIn(ctx, &CheckInInput{MemberID: finn, EventID: event.ID, Hours: fptr(2)})
	require.NoError(t, err)
	assert.Len(t, store.attendance, 1)
	assert.Equal(t, 2.0, *store.attendance[[2]uint{finn, event.ID}].Hours)

	events, err := svc.attendance.ListEvents(ctx, orgID, fall24)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestAttendance_Errors(t *testing.T) {
	svc := newTestServices(newClubStore(), DefaultEvaluationPolicy())
	ctx := context.Background()

	_, err := svc.attendance.CreateEvent(ctx, &EventInput{EventTypeID: 999, Name: "x", EventDate: time.Now()})
	assert.ErrorIs(t, err, domain.ErrEventTypeNotFound)

	_, err = svc.attendance.CheckIn(ctx, &CheckInInput{MemberID: finn, EventID: 999})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.attendance.CheckIn(ctx, &CheckInInput{MemberID: finn, EventID: 1, Hours: fptr(30)})
	assert.Error(t, err)
}

func TestAttendance_MemberRecords(t *testing.T) {
	svc := newTestServices(newClubStore(), DefaultEvaluationPolicy())

	records, err := svc.attendance.MemberRecords(context.Background(), orgID, alice, fall24)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "Meeting", records[0].EventType)
}
