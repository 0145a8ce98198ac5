// Package htmlsanitize turns editor-authored rich text into HTML that is safe
// to render: markdown bodies from the content directory, Portable Text blocks
// from the content store, and plain text fields. bluemonday strips anything
// outside the rich text policy.
package htmlsanitize

import (
	"html/template"
	"regexp"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	checkboxType = regexp.MustCompile(`^checkbox$`)
	blankLines   = regexp.MustCompile(`\n\s*\n`)
)

var (
	policy     *bluemonday.Policy
	policyOnce sync.Once
)

// richText returns the shared policy for editor content.
func richText() *bluemonday.Policy {
	policyOnce.Do(func() {
		p := bluemonday.UGCPolicy()

		// GFM tables from markdown bodies
		p.AllowElements("table", "thead", "tbody", "tfoot", "tr", "th", "td")
		p.AllowAttrs("colspan", "rowspan").OnElements("th", "td")
		p.AllowAttrs("class").OnElements("table", "th", "td", "tr")

		// Portable Text decorators
		p.AllowElements("u", "s", "sub", "sup", "mark")

		// Heading anchors emitted by the markdown renderer
		p.AllowAttrs("id").Matching(bluemonday.SpaceSeparatedTokens).OnElements("h2", "h3", "h4", "h5", "h6")

		// GFM task lists
		p.AllowAttrs("type").Matching(checkboxType).OnElements("input")
		p.AllowAttrs("checked", "disabled").OnElements("input")

		// Links marked "open in new tab" in the studio
		p.AllowAttrs("target").Matching(regexp.MustCompile(`^_blank$`)).OnElements("a")
		p.RequireNoReferrerOnLinks(true)
		p.AddTargetBlankToFullyQualifiedLinks(false)

		policy = p
	})
	return policy
}

// Sanitize removes elements and attributes outside the rich text policy.
func Sanitize(html string) string {
	if html == "" {
		return ""
	}
	return richText().Sanitize(html)
}

// HTML sanitizes html and marks the result safe for templates.
func HTML(html string) template.HTML {
	return template.HTML(Sanitize(html))
}

// Text renders a field that may hold plain text or HTML. Plain text is
// escaped, blank lines start a new paragraph and single newlines become
// line breaks. Anything that looks like markup is sanitized instead.
func Text(s string) template.HTML {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if looksLikeHTML(s) {
		return HTML(s)
	}

	var b strings.Builder
	for _, para := range blankLines.Split(s, -1) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		b.WriteString("<p>")
		b.WriteString(strings.ReplaceAll(template.HTMLEscapeString(para), "\n", "<br>"))
		b.WriteString("</p>")
	}
	return template.HTML(b.String())
}

// looksLikeHTML reports whether s contains something shaped like a tag.
func looksLikeHTML(s string) bool {
	i := strings.IndexByte(s, '<')
	return i >= 0 && strings.IndexByte(s[i:], '>') > 0
}
