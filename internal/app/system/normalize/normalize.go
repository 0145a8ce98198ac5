// Package normalize provides helper functions for consistent string normalization
// of route and query input. Use these helpers instead of scattered strings.ToLower
// and strings.TrimSpace calls to ensure consistent behavior.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// MaxSlugLength matches the longest slug editors can save.
const MaxSlugLength = 96

// Slug converts free text into a URL-safe slug: lowercase ASCII letters and
// digits joined by single hyphens, at most MaxSlugLength bytes. Accented
// letters lose their marks ("Café" becomes "cafe").
func Slug(s string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range norm.NFKD.String(strings.TrimSpace(s)) {
		switch {
		case unicode.Is(unicode.Mn, r):
			continue
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(unicode.ToLower(r))
		default:
			pendingHyphen = true
		}
		if b.Len() >= MaxSlugLength {
			break
		}
	}
	out := b.String()
	if len(out) > MaxSlugLength {
		out = out[:MaxSlugLength]
	}
	return strings.TrimRight(out, "-")
}

// PathSlug normalizes a slug taken from a URL path segment. It trims
// whitespace and slashes and lowercases the result; unlike Slug it does not
// rewrite characters, so a malformed slug simply finds nothing.
func PathSlug(s string) string {
	return strings.ToLower(strings.Trim(strings.TrimSpace(s), "/"))
}

// Category normalizes a news category filter value.
func Category(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// QueryParam normalizes a query parameter by trimming whitespace.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}
