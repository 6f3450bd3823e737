package services

import (
	"context"
	"testing"
	"time"

	"libraria/internal/adapters/persistence/models"
	"libraria/internal/adapters/persistence/stubs"
	"libraria/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var admin = domain.Actor{UserID: 1, Username: "root", Role: domain.RoleAdmin}

func newUserEnv(t *testing.T) (*UserService, *stubs.UserStore, *stubs.TokenStore) {
	t.Helper()
	users := stubs.NewUserStore()
	tokens := stubs.NewTokenStore()
	return NewUserService(users, tokens), users, tokens
}

func addAccount(t *testing.T, users *stubs.UserStore, username, role string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Email: username + "@example.com", Role: role, IsActive: true}
	require.NoError(t, users.Create(context.Background(), user))
	return user
}

func TestSetRole(t *testing.T) {
	svc, users, tokens := newUserEnv(t)
	ctx := context.Background()

	addAccount(t, users, "root", "admin") // ID 1, the acting admin
	target := addAccount(t, users, "bob", "user")
	require.NoError(t, tokens.Create(ctx, &models.RefreshToken{
		UserID:    target.ID,
		TokenHash: "hash",
		ExpiresAt: time.Now().Add(time.Hour),
	}))

	// Only admins may change roles
	_, err := svc.SetRole(ctx, staff, target.ID, "worker")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.SetRole(ctx, admin, target.ID, "admin")
	assert.ErrorIs(t, err, ErrInvalidRole)

	updated, err := svc.SetRole(ctx, admin, target.ID, "worker")
	require.NoError(t, err)
	assert.Equal(t, "worker", updated.Role)

	// Sessions are revoked so the old role cannot linger in tokens
	list, err := tokens.GetByUserID(ctx, target.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].IsRevoked())

	_, err = svc.SetRole(ctx, admin, 999, "worker")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestSetRoleCannotTouchAdmins(t *testing.T) {
	svc, users, _ := newUserEnv(t)

	other := addAccount(t, users, "root2", "admin")

	_, err := svc.SetRole(context.Background(), admin, other.ID, "user")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestDeactivate(t *testing.T) {
	svc, users, _ := newUserEnv(t)
	ctx := context.Background()

	addAccount(t, users, "root", "admin") // ID 1, the acting admin
	target := addAccount(t, users, "bob", "user")

	// Admins cannot deactivate themselves
	err := svc.Deactivate(ctx, admin, admin.UserID)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	require.NoError(t, svc.Deactivate(ctx, admin, target.ID))

	stored, err := users.GetByID(ctx, target.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)
}
