package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// =============================================================================
// Slugify Tests
// =============================================================================

func TestSlugify_Basic(t *testing.T) {
	assert.Equal(t, "diesel-generator", Slugify("Diesel Generator"))
}

func TestSlugify_Uppercase(t *testing.T) {
	assert.Equal(t, "silent-series", Slugify("SILENT SERIES"))
}

func TestSlugify_WithNumbers(t *testing.T) {
	assert.Equal(t, "20-kva-silent", Slugify("20 kVA / Silent!"))
}

func TestSlugify_CollapsesSeparators(t *testing.T) {
	assert.Equal(t, "hello-world", Slugify("hello   --  world"))
}

func TestSlugify_TrimsEdges(t *testing.T) {
	assert.Equal(t, "cummins-series", Slugify("  Cummins_Series  "))
}

func TestSlugify_PreservesHyphens(t *testing.T) {
	assert.Equal(t, "open-frame-type", Slugify("open-frame-type"))
}

func TestSlugify_DropsNonASCII(t *testing.T) {
	assert.Equal(t, "gnrateur", Slugify("Générateur"))
}

func TestSlugify_EmptyString(t *testing.T) {
	assert.Equal(t, "", Slugify(""))
}

func TestSlugify_OnlySpecialChars(t *testing.T) {
	assert.Equal(t, "", Slugify("!@#$%^&*()"))
}

func TestSlugify_Idempotent(t *testing.T) {
	names := []string{"Diesel Generator", "20 kVA / Silent!", "a_b_c", "X"}
	for _, name := range names {
		once := Slugify(name)
		assert.Equal(t, once, Slugify(once), "name=%q", name)
	}
}

// =============================================================================
// IsSlug Tests
// =============================================================================

func TestIsSlug(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"diesel", true},
		{"diesel-generator-20", true},
		{"", false},
		{"Diesel", false},
		{"-diesel", false},
		{"diesel--gen", false},
		{"diesel gen", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSlug(tt.in))
		})
	}
}
