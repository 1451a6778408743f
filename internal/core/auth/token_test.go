package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tarekrahman5500/generator-deploy-sub001/internal/core/domain"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestIssuer(t *testing.T) *TokenIssuer {
	t.Helper()
	issuer, err := NewTokenIssuer(testSecret, "catalog", time.Hour)
	require.NoError(t, err)
	return issuer
}

func TestNewTokenIssuer_WeakSecret(t *testing.T) {
	_, err := NewTokenIssuer("short", "catalog", time.Hour)
	assert.ErrorIs(t, err, ErrSecretWeak)
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := newTestIssuer(t)
	admin := domain.Admin{ID: "adm_1", Email: "root@example.com"}

	token, expiresAt, err := issuer.Issue(admin)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "adm_1", claims.Subject)
	assert.Equal(t, "root@example.com", claims.Email)
	assert.Equal(t, "catalog", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
}

func TestTokenIssuer_Expired(t *testing.T) {
	issuer := newTestIssuer(t)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, _, err := issuer.Issue(domain.Admin{ID: "adm_1"})
	require.NoError(t, err)

	issuer.now = time.Now
	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenIssuer_WrongSecret(t *testing.T) {
	token, _, err := newTestIssuer(t).Issue(domain.Admin{ID: "adm_1"})
	require.NoError(t, err)

	other, err := NewTokenIssuer(strings.Repeat("x", 32), "catalog", time.Hour)
	require.NoError(t, err)
	_, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenIssuer_WrongIssuer(t *testing.T) {
	token, _, err := newTestIssuer(t).Issue(domain.Admin{ID: "adm_1"})
	require.NoError(t, err)

	other, err := NewTokenIssuer(testSecret, "someone-else", time.Hour)
	require.NoError(t, err)
	_, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenIssuer_RejectsNoneAlgorithm(t *testing.T) {
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "adm_1",
			Issuer:    "catalog",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newTestIssuer(t).Verify(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenIssuer_Garbage(t *testing.T) {
	_, err := newTestIssuer(t).Verify("not-a-token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
