package auth

import (
	"strings"
	"testing"
	"time"

	"pharmahub-service/internal/apperr"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestIssueAndVerify(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	m := NewManager("secret", 0).WithClock(fixedClock(now))

	token, exp, err := m.Issue("buyer@pharmahub.io")
	require.NoError(t, err)
	assert.Equal(t, now.Add(DefaultTokenTTL), exp)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "buyer@pharmahub.io", claims.Email)
	assert.Equal(t, "buyer@pharmahub.io", claims.Subject)
}

func TestIssueRequiresEmail(t *testing.T) {
	m := NewManager("secret", time.Hour)

	_, _, err := m.Issue("  ")
	assert.ErrorIs(t, err, apperr.ErrBadRequest)
}

func TestVerifyRejectsExpired(t *testing.T) {
	issued := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	m := NewManager("secret", 5*time.Hour).WithClock(fixedClock(issued))

	token, _, err := m.Issue("buyer@pharmahub.io")
	require.NoError(t, err)

	m.WithClock(fixedClock(issued.Add(4*time.Hour + 59*time.Minute)))
	_, err = m.Verify(token)
	require.NoError(t, err)

	m.WithClock(fixedClock(issued.Add(5*time.Hour + time.Second)))
	_, err = m.Verify(token)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
	assert.Contains(t, err.Error(), "expired")
}

func TestVerifyRejectsTampered(t *testing.T) {
	m := NewManager("secret", time.Hour)
	token, _, err := m.Issue("buyer@pharmahub.io")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	forged, _, err := NewManager("secret", time.Hour).Issue("admin@pharmahub.io")
	require.NoError(t, err)
	forgedParts := strings.Split(forged, ".")

	// payload of one token with the signature of another
	tampered := parts[0] + "." + forgedParts[1] + "." + parts[2]
	_, err = m.Verify(tampered)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, _, err := NewManager("other", time.Hour).Issue("buyer@pharmahub.io")
	require.NoError(t, err)

	_, err = NewManager("secret", time.Hour).Verify(token)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestVerifyRejectsGarbageAndEmpty(t *testing.T) {
	m := NewManager("secret", time.Hour)

	for _, tok := range []string{"", "not-a-token", "a.b.c"} {
		_, err := m.Verify(tok)
		assert.ErrorIs(t, err, apperr.ErrUnauthenticated, tok)
	}
}

func TestVerifyRejectsUnsignedToken(t *testing.T) {
	claims := Claims{
		Email: "admin@pharmahub.io",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewManager("secret", time.Hour).Verify(token)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestVerifyRequiresIdentityAndExpiry(t *testing.T) {
	secret := []byte("secret")

	noIdentity, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString(secret)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Email: "buyer@pharmahub.io"}).SignedString(secret)
	require.NoError(t, err)

	m := NewManager("secret", time.Hour)

	_, err = m.Verify(noIdentity)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	_, err = m.Verify(noExpiry)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}
