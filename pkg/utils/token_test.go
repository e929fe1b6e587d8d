package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParseToken(t *testing.T) {
	userID, sessionID := uuid.New(), uuid.New()

	token, err := IssueToken("secret", userID, sessionID, "artisan", time.Now().Add(time.Hour))
	require.NoError(t, err)

	p, err := ParseToken("secret", token)
	require.NoError(t, err)
	assert.Equal(t, Principal{UserID: userID, Role: "artisan", SessionID: sessionID}, p)
}

func TestParseToken_Rejects(t *testing.T) {
	userID, sessionID := uuid.New(), uuid.New()

	expired, err := IssueToken("secret", userID, sessionID, "client", time.Now().Add(-time.Minute))
	require.NoError(t, err)

	valid, err := IssueToken("secret", userID, sessionID, "client", time.Now().Add(time.Hour))
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		Role: "client",
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID.String(),
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID.String(),
			Subject:   "someone",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	cases := map[string]struct {
		secret, token string
	}{
		"expired":      {"secret", expired},
		"wrong secret": {"other", valid},
		"alg none":     {"secret", none},
		"bad subject":  {"secret", badSubject},
		"garbage":      {"secret", "not.a.token"},
		"empty":        {"secret", ""},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseToken(tc.secret, tc.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("password123")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", hash)

	assert.True(t, CheckPasswordHash("password123", hash))
	assert.False(t, CheckPasswordHash("password124", hash))
	assert.False(t, CheckPasswordHash("password123", "not-a-hash"))
}

func TestPrincipalContext(t *testing.T) {
	_, ok := GetPrincipal(t.Context())
	assert.False(t, ok)

	p := Principal{UserID: uuid.New(), Role: "client", SessionID: uuid.New()}
	got, ok := GetPrincipal(SetPrincipal(t.Context(), p))
	require.True(t, ok)
	assert.Equal(t, p, got)
}
