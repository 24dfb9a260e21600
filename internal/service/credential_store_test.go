package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"go-character-api/internal/model"
	"go-character-api/pkg/apierror"
)

func TestRegisterCreatesUserRoleIdentity(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fx := newAuthFixture(t)

	user, err := fx.credentials.Register(ctx, " a@example.com ", "secret1")
	require.NoError(t, err)
	require.NotZero(t, user.ID)
	require.Equal(t, "a@example.com", user.Email)
	require.Equal(t, model.RoleUser, user.Role)
	require.Empty(t, user.RefreshToken)
	require.NotEqual(t, "secret1", user.PasswordHash)
	require.NotEmpty(t, user.PasswordHash)

	require.True(t, fx.credentials.VerifyPassword(user, "secret1"))
	require.False(t, fx.credentials.VerifyPassword(user, "secret2"))
	require.False(t, fx.credentials.VerifyPassword(model.User{}, "secret1"))
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fx := newAuthFixture(t)

	first, err := fx.credentials.Register(ctx, "a@example.com", "secret1")
	require.NoError(t, err)

	_, err = fx.credentials.Register(ctx, "A@example.com", "another-password")
	require.ErrorIs(t, err, model.ErrUserAlreadyExists)

	stored, err := fx.credentials.Find(ctx, "a@example.com")
	require.NoError(t, err)
	require.Equal(t, first.PasswordHash, stored.PasswordHash)
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fx := newAuthFixture(t)

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{name: "bad email", email: "nope", password: "secret1"},
		{name: "foreign domain", email: "a@other.org", password: "secret1"},
		{name: "short password", email: "a@example.com", password: "123"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := fx.credentials.Register(ctx, tc.email, tc.password)
			var apiErr *apierror.APIError
			require.True(t, errors.As(err, &apiErr))
			require.Equal(t, http.StatusBadRequest, apiErr.HTTPStatus)
			require.NotEmpty(t, apiErr.Issues)
		})
	}
}

func TestEnsureAdmin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fx := newAuthFixture(t)

	admin, created, err := fx.credentials.EnsureAdmin(ctx, "root@example.com", "rootpass")
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, model.RoleAdmin, admin.Role)

	again, created, err := fx.credentials.EnsureAdmin(ctx, "root@example.com", "rootpass")
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, admin.ID, again.ID)
}

func TestFindUnknownEmail(t *testing.T) {
	t.Parallel()
	fx := newAuthFixture(t)

	_, err := fx.credentials.Find(context.Background(), "ghost@example.com")
	require.ErrorIs(t, err, model.ErrUserNotFound)
}
