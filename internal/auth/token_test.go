package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

func TestTokenService_IssueAndVerify(t *testing.T) {
	svc := NewTokenService(testSecret, 24*time.Hour)

	token, err := svc.Issue(Identity{AdminID: "admin-1", Username: "ajay"})
	require.NoError(t, err)
	assert.Equal(t, 3, len(strings.Split(token, ".")))

	id, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", id.AdminID)
	assert.Equal(t, "ajay", id.Username)
}

func TestTokenService_ExpiresAfterTTL(t *testing.T) {
	svc := NewTokenService(testSecret, 24*time.Hour)
	issuedAt := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issuedAt }

	token, err := svc.Issue(Identity{AdminID: "admin-1", Username: "ajay"})
	require.NoError(t, err)

	svc.now = func() time.Time { return issuedAt.Add(23 * time.Hour) }
	_, err = svc.Verify(token)
	assert.NoError(t, err)

	svc.now = func() time.Time { return issuedAt.Add(25 * time.Hour) }
	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokenService_RejectsBadTokens(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour)
	valid, err := svc.Issue(Identity{AdminID: "admin-1", Username: "ajay"})
	require.NoError(t, err)

	otherSecret, err := NewTokenService("another-secret-entirely-000000000000", time.Hour).
		Issue(Identity{AdminID: "admin-1", Username: "ajay"})
	require.NoError(t, err)

	parts := strings.Split(valid, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "admin-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"malformed", "not.a.token"},
		{"tampered payload", tampered},
		{"wrong secret", otherSecret},
		{"alg none", noneToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Verify(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestTokenService_IssueRequiresIdentity(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour)
	_, err := svc.Issue(Identity{Username: "ajay"})
	assert.Error(t, err)

	_, err = NewTokenService("", time.Hour).Issue(Identity{AdminID: "1"})
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("admin123")
	require.NoError(t, err)
	assert.NotEqual(t, "admin123", hash)

	assert.True(t, CheckPassword(hash, "admin123"))
	assert.False(t, CheckPassword(hash, "admin124"))
	assert.False(t, CheckPassword("not-a-hash", "admin123"))

	other, err := HashPassword("admin123")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other, "hashes must be salted")
}
