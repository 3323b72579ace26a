package security_test

import (
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unichat-backend/internal/security"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := security.NewTokenService("secret", time.Hour)

	token, err := svc.CreateForUser(42)
	require.NoError(t, err)

	userID, err := svc.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
}

func TestTokenWrongSecret(t *testing.T) {
	token, err := security.NewTokenService("secret", time.Hour).CreateForUser(42)
	require.NoError(t, err)

	_, err = security.NewTokenService("other", time.Hour).Parse(token)
	assert.Error(t, err)
}

func TestTokenExpired(t *testing.T) {
	svc := security.NewTokenService("secret", -time.Minute)

	token, err := svc.CreateForUser(42)
	require.NoError(t, err)

	_, err = svc.Parse(token)
	assert.Error(t, err)
}

func TestTokenGarbage(t *testing.T) {
	svc := security.NewTokenService("secret", time.Hour)
	_, err := svc.Parse("not.a.token")
	assert.Error(t, err)
}

func TestTokenBadSubject(t *testing.T) {
	// tokens signed with our key but carrying a non-numeric or non-positive
	// subject must be rejected
	for _, sub := range []string{"abc", "", "0", "-5"} {
		claims := jwt.MapClaims{
			"sub": sub,
			"iat": time.Now().Unix(),
			"exp": time.Now().Add(time.Hour).Unix(),
		}
		raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
		require.NoError(t, err)

		_, err = security.NewTokenService("secret", time.Hour).Parse(raw)
		assert.Error(t, err, "subject %q", sub)
	}
}

func TestTokenSubjectMatchesUser(t *testing.T) {
	svc := security.NewTokenService("secret", time.Hour)
	for _, id := range []int64{1, 7, 1 << 40} {
		token, err := svc.CreateForUser(id)
		require.NoError(t, err)
		got, err := svc.Parse(token)
		require.NoError(t, err)
		assert.Equal(t, id, got, strconv.FormatInt(id, 10))
	}
}
