package service

import (
	"context"
	"testing"
	"time"

	"ajayblog/internal/auth"
	"ajayblog/internal/models"
	"ajayblog/internal/repository"
	"ajayblog/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const strongPassword = "Sup3r-Secret-Pass"

func newAuthService(t *testing.T) (*AuthService, *auth.TokenService) {
	t.Helper()
	tokens := auth.NewTokenService("test-secret-that-is-long-enough-000", time.Hour)
	return NewAuthService(repository.NewAdminRepository(testutil.NewTestDB(t)), tokens), tokens
}

func TestAuthService_Login(t *testing.T) {
	svc, tokens := newAuthService(t)
	ctx := context.Background()

	created, err := svc.CreateAdmin(ctx, models.CreateAdminRequest{
		Username: "editor",
		Password: strongPassword,
		Email:    "Editor@Example.com",
	})
	require.NoError(t, err)
	require.NotNil(t, created.Email)
	assert.Equal(t, "editor@example.com", *created.Email)
	assert.NotEqual(t, strongPassword, created.Password)

	resp, err := svc.Login(ctx, "editor", strongPassword)
	require.NoError(t, err)
	assert.Equal(t, created.ID, resp.Admin.ID)
	assert.Equal(t, "editor", resp.Admin.Username)
	assert.Equal(t, int64(3600), resp.ExpiresIn)

	id, err := tokens.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, id.AdminID)

	me, err := svc.CurrentAdmin(ctx, id.AdminID)
	require.NoError(t, err)
	assert.Equal(t, "editor", me.Username)
}

func TestAuthService_LoginFailures(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	_, err := svc.CreateAdmin(ctx, models.CreateAdminRequest{Username: "editor", Password: strongPassword})
	require.NoError(t, err)

	tests := []struct {
		name     string
		username string
		password string
		wantCode string
	}{
		{"wrong password", "editor", "nope", models.CodeUnauthorized},
		{"unknown user", "ghost", strongPassword, models.CodeUnauthorized},
		{"blank username", "  ", strongPassword, models.CodeValidation},
		{"blank password", "editor", "", models.CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.Login(ctx, tt.username, tt.password)
			assert.Nil(t, resp)
			assert.True(t, models.HasCode(err, tt.wantCode), "got %v", err)
		})
	}

	_, errUnknown := svc.Login(ctx, "ghost", "x")
	_, errWrong := svc.Login(ctx, "editor", "x")
	assert.Equal(t, errUnknown.Error(), errWrong.Error())
}

func TestAuthService_CreateAdminValidation(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  models.CreateAdminRequest
	}{
		{"short username", models.CreateAdminRequest{Username: "ab", Password: strongPassword}},
		{"bad username chars", models.CreateAdminRequest{Username: "bad name", Password: strongPassword}},
		{"weak password", models.CreateAdminRequest{Username: "writer", Password: "password"}},
		{"bad email", models.CreateAdminRequest{Username: "writer", Password: strongPassword, Email: "not-an-email"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateAdmin(ctx, tt.req)
			assert.True(t, models.HasCode(err, models.CodeValidation), "got %v", err)
		})
	}

	_, err := svc.CreateAdmin(ctx, models.CreateAdminRequest{Username: "writer", Password: strongPassword})
	require.NoError(t, err)
	_, err = svc.CreateAdmin(ctx, models.CreateAdminRequest{Username: "writer", Password: strongPassword})
	assert.True(t, models.HasCode(err, models.CodeConflict))

	admins, err := svc.ListAdmins(ctx)
	require.NoError(t, err)
	assert.Len(t, admins, 1)
}

func TestAuthService_EnsureDefaultAdmin(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	created, err := svc.EnsureDefaultAdmin(ctx, "admin", "admin123", "")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.EnsureDefaultAdmin(ctx, "admin", "other-password", "")
	require.NoError(t, err)
	assert.False(t, created)

	_, err = svc.Login(ctx, "admin", "admin123")
	assert.NoError(t, err, "first password stays in effect")
}
