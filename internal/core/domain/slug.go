package domain

import (
	"strings"
	"unicode"
)

// =============================================================================
// Slug Generation
// =============================================================================

// Slugify converts a name to a URL-safe slug.
//
// The transformation rules are:
//   - Letters are lowercased, digits are kept
//   - Runs of spaces, underscores, hyphens and punctuation collapse to one hyphen
//   - Leading and trailing hyphens are trimmed
//   - Non-ASCII letters are dropped
//
// This is a pure function with no side effects.
//
// Example:
//
//	Slugify("Diesel Generator")    // returns "diesel-generator"
//	Slugify("20 kVA / Silent!")    // returns "20-kva-silent"
//	Slugify("  Cummins_Series  ")  // returns "cummins-series"
func Slugify(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	pendingHyphen := false
	for _, r := range name {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(unicode.ToLower(r))
		case unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r):
			pendingHyphen = true
		}
	}
	return b.String()
}

// IsSlug reports whether s is already in canonical slug form.
func IsSlug(s string) bool {
	return s != "" && Slugify(s) == s
}
