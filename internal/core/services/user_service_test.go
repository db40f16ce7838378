package services

import (
	"context"
	"testing"
	"time"

	"club-membership/internal/adapters/persistence/models"
	"club-membership/internal/adapters/persistence/repositories"
	"club-membership/internal/core/domain"
	"club-membership/internal/pkg/password"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeOrgRepo struct{ orgs map[uint]*models.Organization }

func (r fakeOrgRepo) Create(_ context.Context, org *models.Organization) error {
	org.ID = uint(len(r.orgs) + 1)
	r.orgs[org.ID] = org
	return nil
}

func (r fakeOrgRepo) GetByID(_ context.Context, id uint) (*models.Organization, error) {
	if org, ok := r.orgs[id]; ok {
		return org, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r fakeOrgRepo) GetByName(_ context.Context, name string) (*models.Organization, error) {
	for _, org := range r.orgs {
		if org.Name == name {
			return org, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r fakeOrgRepo) List(_ context.Context) ([]*models.Organization, error) {
	var out []*models.Organization
	for _, org := range r.orgs {
		out = append(out, org)
	}
	return out, nil
}

var _ repositories.OrganizationRepository = fakeOrgRepo{}

func newTestUsers(t *testing.T) (*UserService, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	orgs := fakeOrgRepo{orgs: map[uint]*models.Organization{orgID: {ID: orgID, Name: "Chess Club"}}}
	return NewUserService(fakeUserRepo{store}, orgs, fakeRefreshTokenRepo{store}), store
}

func TestUsers_CreateOfficer(t *testing.T) {
	svc, store := newTestUsers(t)
	ctx := context.Background()
	org := orgID

	created, err := svc.CreateOfficer(ctx, &CreateOfficerInput{
		OrganizationID: &org, Username: "treasurer", Email: "t@example.edu", Password: "long enough", Role: "OFFICER",
	})
	require.NoError(t, err)
	assert.Equal(t, "treasurer", created.Username)
	require.Len(t, store.users, 1)
	assert.True(t, password.Verify("long enough", store.users[0].Password))

	_, err = svc.CreateOfficer(ctx, &CreateOfficerInput{Username: "treasurer", Email: "x@example.edu", Password: "long enough", Role: "OFFICER"})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)

	_, err = svc.CreateOfficer(ctx, &CreateOfficerInput{Username: "other", Email: "t@example.edu", Password: "long enough", Role: "OFFICER"})
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)

	_, err = svc.CreateOfficer(ctx, &CreateOfficerInput{Username: "other", Email: "o@example.edu", Password: "long enough", Role: "MEMBER"})
	assert.ErrorIs(t, err, ErrInvalidRole)

	missing := uint(99)
	_, err = svc.CreateOfficer(ctx, &CreateOfficerInput{OrganizationID: &missing, Username: "other", Email: "o@example.edu", Password: "long enough", Role: "OFFICER"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUsers_ListFiltersByOrganization(t *testing.T) {
	svc, store := newTestUsers(t)
	org := orgID
	store.users = append(store.users,
		&models.User{ID: 1, OrganizationID: &org, Username: "a", Role: "OFFICER", IsActive: true},
		&models.User{ID: 2, Username: "root", Role: "ADMIN", IsActive: true},
		&models.User{ID: 3, OrganizationID: &org, Username: "b", Role: "OFFICER", IsActive: false},
	)

	users, total, err := svc.ListUsers(context.Background(), repositories.UserFilter{OrganizationID: &org, ActiveOnly: true}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, users, 1)
	assert.Equal(t, "a", users[0].Username)
}

func TestUsers_DeactivationEndsSessions(t *testing.T) {
	svc, store := newTestUsers(t)
	ctx := context.Background()
	store.users = append(store.users, &models.User{ID: 5, Username: "treasurer", Role: "OFFICER", IsActive: true})
	store.tokens = append(store.tokens,
		&models.RefreshToken{ID: 1, UserID: 5, TokenHash: "a", ExpiresAt: time.Now().Add(time.Hour)},
		&models.RefreshToken{ID: 2, UserID: 6, TokenHash: "b", ExpiresAt: time.Now().Add(time.Hour)},
	)

	inactive := false
	updated, err := svc.UpdateUserByAdmin(ctx, 5, 1, &UpdateUserByAdminInput{IsActive: &inactive})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
	assert.NotNil(t, store.tokens[0].RevokedAt)
	assert.Nil(t, store.tokens[1].RevokedAt)

	role := "ADMIN"
	_, err = svc.UpdateUserByAdmin(ctx, 1, 1, &UpdateUserByAdminInput{Role: &role})
	assert.ErrorIs(t, err, ErrUserNotFound)

	assert.ErrorIs(t, svc.DeleteUser(ctx, 5, 5), ErrCannotDeleteSelf)
	require.NoError(t, svc.DeleteUser(ctx, 5, 1))
	assert.Empty(t, store.users)
}

func TestUsers_ChangePassword(t *testing.T) {
	svc, store := newTestUsers(t)
	ctx := context.Background()
	hash, err := password.Hash("old password")
	require.NoError(t, err)
	store.users = append(store.users, &models.User{ID: 5, Username: "treasurer", Password: hash, IsActive: true})
	store.tokens = append(store.tokens, &models.RefreshToken{ID: 1, UserID: 5, TokenHash: "a", ExpiresAt: time.Now().Add(time.Hour)})

	err = svc.ChangePassword(ctx, 5, &ChangePasswordInput{OldPassword: "wrong", NewPassword: "new password"})
	assert.ErrorIs(t, err, ErrOldPasswordWrong)

	require.NoError(t, svc.ChangePassword(ctx, 5, &ChangePasswordInput{OldPassword: "old password", NewPassword: "new password"}))
	assert.True(t, password.Verify("new password", store.users[0].Password))
	assert.NotNil(t, store.tokens[0].RevokedAt)
}
