// Package middleware provides HTTP middleware for the catalog API.
package middleware

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Tarekrahman5500/generator-deploy-sub001/internal/core/auth"
)

// =============================================================================
// Token Verifier Interface
// =============================================================================

// TokenVerifier validates a bearer token. auth.TokenIssuer implements it.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// =============================================================================
// Auth Configuration
// =============================================================================

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	// Tokens verifies bearer tokens. Required.
	Tokens TokenVerifier

	// Logger for auth middleware logging.
	Logger *slog.Logger
}

// =============================================================================
// Auth Middleware
// =============================================================================

// AuthMiddleware resolves the admin session from the Authorization header and
// stores it in the request context.
type AuthMiddleware struct {
	config AuthConfig
}

// NewAuthMiddleware creates a new auth middleware with the given config.
func NewAuthMiddleware(cfg AuthConfig) *AuthMiddleware {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &AuthMiddleware{config: cfg}
}

// Handler returns the middleware handler function.
// Requests without a bearer token continue unauthenticated. A token that is
// present but invalid or expired is rejected with 401 so clients can tell a
// stale session from an anonymous one.
func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := auth.BearerToken(r.Header.Get(auth.HeaderAuthorization))
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := m.config.Tokens.Verify(token)
		if err != nil {
			m.config.Logger.Debug("rejected bearer token",
				"remote_addr", r.RemoteAddr,
				"path", r.URL.Path,
				"error", err,
			)
			if errors.Is(err, auth.ErrTokenExpired) {
				writeJSONError(w, http.StatusUnauthorized, "token has expired", "token_expired")
				return
			}
			writeJSONError(w, http.StatusUnauthorized, "invalid token", "invalid_token")
			return
		}

		r = r.WithContext(auth.WithContext(r.Context(), auth.FromClaims(claims)))
		next.ServeHTTP(w, r)
	})
}

// =============================================================================
// Require Auth Middleware
// =============================================================================

// RequireAuth is a middleware that requires an authenticated admin.
// Must be used AFTER AuthMiddleware.
func RequireAuth(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := auth.FromContext(r.Context())

			if !auth.CanManageCatalog(ctx) {
				logger.Warn("unauthenticated request to protected endpoint",
					"remote_addr", r.RemoteAddr,
					"path", r.URL.Path,
					"method", r.Method,
				)
				writeJSONError(w, http.StatusUnauthorized, "authentication required", "unauthorized")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// =============================================================================
// JSON Error Response
// =============================================================================

// errorBody mirrors the API error response.
type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSONError(w http.ResponseWriter, status int, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="catalog"`)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorBody{Error: message, Code: code})
}
