package auth

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wavemax/affiliate-program/internal/domain"
)

func TestGenerateAndParseToken(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)

	token, exp, err := tm.GenerateToken("subject-1", Claims{
		Role:        domain.RoleAffiliate,
		AffiliateID: "AFF-123",
		Permissions: []string{"view_analytics"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.True(t, exp.After(time.Now()))

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "subject-1", claims.Subject)
	assert.Equal(t, domain.RoleAffiliate, claims.Role)
	assert.Equal(t, "AFF-123", claims.AffiliateID)
	assert.Equal(t, []string{"view_analytics"}, claims.Permissions)
	assert.False(t, claims.RequirePasswordChange)
}

func TestParseTokenClassifiesExpiry(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)

	expired := signToken(t, "test-secret", time.Now().Add(-time.Minute))
	_, err := tm.ParseToken(expired)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestParseTokenClassifiesInvalid(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)

	cases := []struct {
		name  string
		token string
	}{
		{"malformed", "not-a-jwt"},
		{"wrong secret", signToken(t, "other-secret", time.Now().Add(time.Hour))},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tm.ParseToken(tc.token)
			assert.ErrorIs(t, err, ErrTokenInvalid)
		})
	}
}

func signToken(t *testing.T, secret string, expiresAt time.Time) string {
	t.Helper()
	claims := &Claims{
		Role: domain.RoleCustomer,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "subject-1",
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Minute)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}
