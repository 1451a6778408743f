// Package auth provides the admin authentication context, password hashing,
// access tokens and authorization checks.
package auth

import (
	"context"
	"strings"
)

// =============================================================================
// Context Key
// =============================================================================

type contextKey string

const authContextKey contextKey = "auth"

// =============================================================================
// Types
// =============================================================================

// Context represents the authentication context for a request. It is built
// from a verified bearer token and stored in the request context.
type Context struct {
	// AdminID is the authenticated admin's ID.
	AdminID string

	// Email is the admin's email at the time the token was issued.
	Email string

	// TokenID is the jti of the token used for this request.
	TokenID string

	// Authenticated indicates whether the request carries a valid token.
	Authenticated bool
}

// FromClaims builds an authenticated context from verified token claims.
func FromClaims(c *Claims) Context {
	return Context{
		AdminID:       c.Subject,
		Email:         c.Email,
		TokenID:       c.ID,
		Authenticated: true,
	}
}

// =============================================================================
// Header Parsing
// =============================================================================

// HeaderAuthorization is the header carrying the bearer token.
const HeaderAuthorization = "Authorization"

// BearerToken extracts the token from an Authorization header value. The
// scheme is matched case-insensitively. Returns "" when absent or malformed.
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// =============================================================================
// Context Storage
// =============================================================================

// WithContext stores the auth context in the request context.
func WithContext(ctx context.Context, authCtx Context) context.Context {
	return context.WithValue(ctx, authContextKey, authCtx)
}

// FromContext retrieves the auth context from the request context.
// If no auth context is found, returns an unauthenticated context.
func FromContext(ctx context.Context) Context {
	if authCtx, ok := ctx.Value(authContextKey).(Context); ok {
		return authCtx
	}
	return Context{Authenticated: false}
}
