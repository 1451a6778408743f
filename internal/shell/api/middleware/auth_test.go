package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tarekrahman5500/generator-deploy-sub001/internal/core/auth"
	"github.com/Tarekrahman5500/generator-deploy-sub001/internal/core/domain"
)

// =============================================================================
// Test Helpers
// =============================================================================

const testSecret = "0123456789abcdef0123456789abcdef"

// testHandler is a simple handler that returns the auth context from request.
func testHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := auth.FromContext(r.Context())
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"authenticated": ctx.Authenticated,
			"admin_id":      ctx.AdminID,
			"email":         ctx.Email,
		})
	})
}

func newIssuer(t *testing.T) *auth.TokenIssuer {
	t.Helper()
	issuer, err := auth.NewTokenIssuer(testSecret, "catalog", time.Hour)
	require.NoError(t, err)
	return issuer
}

func issueToken(t *testing.T, issuer *auth.TokenIssuer) string {
	t.Helper()
	token, _, err := issuer.Issue(domain.Admin{ID: "adm_1", Email: "admin@example.com"})
	require.NoError(t, err)
	return token
}

type expiredVerifier struct{}

func (expiredVerifier) Verify(string) (*auth.Claims, error) {
	return nil, auth.ErrTokenExpired
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

// =============================================================================
// AuthMiddleware Tests
// =============================================================================

func TestAuthMiddleware_NoToken_Anonymous(t *testing.T) {
	mw := NewAuthMiddleware(AuthConfig{Tokens: newIssuer(t)})

	rec := httptest.NewRecorder()
	mw.Handler(testHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/categories", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode(t, rec)["authenticated"])
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	issuer := newIssuer(t)
	mw := NewAuthMiddleware(AuthConfig{Tokens: issuer})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, issuer))
	rec := httptest.NewRecorder()
	mw.Handler(testHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, true, resp["authenticated"])
	assert.Equal(t, "adm_1", resp["admin_id"])
	assert.Equal(t, "admin@example.com", resp["email"])
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	mw := NewAuthMiddleware(AuthConfig{Tokens: newIssuer(t)})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/categories", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := httptest.NewRecorder()
	mw.Handler(testHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid_token", decode(t, rec)["code"])
	assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	mw := NewAuthMiddleware(AuthConfig{Tokens: expiredVerifier{}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/categories", nil)
	req.Header.Set("Authorization", "Bearer whatever")
	rec := httptest.NewRecorder()
	mw.Handler(testHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "token_expired", decode(t, rec)["code"])
}

func TestAuthMiddleware_OtherSchemeIgnored(t *testing.T) {
	mw := NewAuthMiddleware(AuthConfig{Tokens: newIssuer(t)})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/categories", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rec := httptest.NewRecorder()
	mw.Handler(testHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode(t, rec)["authenticated"])
}

// =============================================================================
// RequireAuth Tests
// =============================================================================

func TestRequireAuth_Unauthenticated(t *testing.T) {
	handler := RequireAuth(nil)(testHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/categories", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", decode(t, rec)["code"])
}

func TestRequireAuth_Authenticated(t *testing.T) {
	issuer := newIssuer(t)
	handler := NewAuthMiddleware(AuthConfig{Tokens: issuer}).Handler(RequireAuth(nil)(testHandler()))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/categories", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, issuer))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "adm_1", decode(t, rec)["admin_id"])
}

func TestRequireAuth_ContextWithoutAdminID(t *testing.T) {
	handler := RequireAuth(nil)(testHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/categories", nil)
	req = req.WithContext(auth.WithContext(req.Context(), auth.Context{Authenticated: true}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
