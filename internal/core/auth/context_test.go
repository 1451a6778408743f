package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

// =============================================================================
// BearerToken Tests
// =============================================================================

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"standard", "Bearer abc.def.ghi", "abc.def.ghi"},
		{"lowercase scheme", "bearer abc", "abc"},
		{"extra spaces", "  Bearer   abc  ", "abc"},
		{"empty", "", ""},
		{"basic scheme", "Basic dXNlcjpwYXNz", ""},
		{"scheme only", "Bearer", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BearerToken(tt.header))
		})
	}
}

// =============================================================================
// Context Storage Tests
// =============================================================================

func TestWithContext_RoundTrip(t *testing.T) {
	authCtx := Context{AdminID: "adm_1", Email: "root@example.com", Authenticated: true}
	ctx := WithContext(context.Background(), authCtx)
	assert.Equal(t, authCtx, FromContext(ctx))
}

func TestFromContext_Missing(t *testing.T) {
	got := FromContext(context.Background())
	assert.False(t, got.Authenticated)
	assert.Empty(t, got.AdminID)
}

func TestFromClaims(t *testing.T) {
	c := &Claims{Email: "root@example.com"}
	c.Subject = "adm_1"
	c.ID = "jti-1"

	got := FromClaims(c)
	assert.Equal(t, Context{AdminID: "adm_1", Email: "root@example.com", TokenID: "jti-1", Authenticated: true}, got)
}
