package services

import (
	"testing"
	"time"

	"club-membership/internal/adapters/persistence/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCron_RunOncePurgesExpiredTokens(t *testing.T) {
	store := newFakeStore()
	store.tokens = append(store.tokens,
		&models.RefreshToken{ID: 1, UserID: 1, TokenHash: "live", ExpiresAt: time.Now().Add(time.Hour)},
		&models.RefreshToken{ID: 2, UserID: 1, TokenHash: "gone", ExpiresAt: time.Now().Add(-time.Hour)},
	)
	ts := newTestServices(store, DefaultEvaluationPolicy())

	c := NewCronService("@daily", fakeRefreshTokenRepo{store}, ts.exemptions)
	c.RunOnce()

	require.Len(t, store.tokens, 1)
	assert.Equal(t, "live", store.tokens[0].TokenHash)
}

func TestCron_StartRejectsBadSchedule(t *testing.T) {
	store := newFakeStore()
	ts := newTestServices(store, DefaultEvaluationPolicy())

	c := NewCronService("not a schedule", fakeRefreshTokenRepo{store}, ts.exemptions)
	assert.Error(t, c.Start())
}
