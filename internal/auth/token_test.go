package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCodecRejectsEmptySecret(t *testing.T) {
	_, err := NewCodec("", time.Hour)
	require.Error(t, err)
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	codec, err := NewCodec("test-secret", 48*time.Hour)
	require.NoError(t, err)

	token, err := codec.Issue("znd")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	subject, ok := codec.Verify(token)
	assert.True(t, ok)
	assert.Equal(t, "znd", subject)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	// A negative TTL produces a token that is already expired but
	// carries a perfectly valid signature.
	codec, err := NewCodec("test-secret", -time.Minute)
	require.NoError(t, err)

	token, err := codec.Issue("znd")
	require.NoError(t, err)

	_, ok := codec.Verify(token)
	assert.False(t, ok)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer, err := NewCodec("secret-one", time.Hour)
	require.NoError(t, err)
	verifier, err := NewCodec("secret-two", time.Hour)
	require.NoError(t, err)

	token, err := issuer.Issue("sel")
	require.NoError(t, err)

	_, ok := verifier.Verify(token)
	assert.False(t, ok)
}

func TestVerifyRejectsMissingSubject(t *testing.T) {
	codec, err := NewCodec("test-secret", time.Hour)
	require.NoError(t, err)

	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}
	unsubjected, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, ok := codec.Verify(unsubjected)
	assert.False(t, ok)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	codec, err := NewCodec("test-secret", time.Hour)
	require.NoError(t, err)

	for _, tokenString := range []string{"", "not-a-token", "a.b.c"} {
		_, ok := codec.Verify(tokenString)
		assert.False(t, ok, "token %q should not verify", tokenString)
	}
}
