package inputval

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type redirectForm struct {
	Secret   string `validate:"required" label:"Secret"`
	Redirect string `validate:"omitempty,localpath" label:"Redirect"`
}

type eventForm struct {
	Slug     string `json:"slug" validate:"required,slug" label:"Slug"`
	Link     string `validate:"omitempty,httpurl" label:"Registration link"`
	Category string `validate:"omitempty,newscategory"`
	Page     int    `validate:"min=1" label:"Page"`
	Sort     string `validate:"omitempty,oneof=upcoming past" label:"Sort"`
	Title    string `validate:"max=12" label:"Title"`
}

func validEvent() eventForm {
	return eventForm{Slug: "summit-2025", Page: 1}
}

func TestValidate_Messages(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
	}{
		{"valid redirect", redirectForm{Secret: "s3cret", Redirect: "/events/launch"}, ""},
		{"valid pointer", &redirectForm{Secret: "s3cret"}, ""},
		{"missing secret", redirectForm{Redirect: "/"}, "Secret is required."},
		{"offsite redirect", redirectForm{Secret: "s", Redirect: "//evil.example"}, "Redirect must be a path on this site."},
		{"valid event", validEvent(), ""},
		{"bad slug", func() eventForm { e := validEvent(); e.Slug = "Summit 2025"; return e }(), "Slug is not a valid slug."},
		{"ftp link", func() eventForm { e := validEvent(); e.Link = "ftp://x.example"; return e }(),
			"Registration link must be a valid URL starting with http:// or https://."},
		{"page zero", func() eventForm { e := validEvent(); e.Page = 0; return e }(), "Page must be at least 1."},
		{"unknown sort", func() eventForm { e := validEvent(); e.Sort = "random"; return e }(), "Sort must be one of: upcoming, past."},
		{"long title", func() eventForm { e := validEvent(); e.Title = strings.Repeat("x", 13); return e }(), "Title must be at most 12."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Validate(tt.input)
			if got := res.First(); got != tt.want {
				t.Errorf("Validate().First() = %q, want %q", got, tt.want)
			}
			if res.HasErrors() != (tt.want != "") {
				t.Errorf("HasErrors() = %v, want %v", res.HasErrors(), tt.want != "")
			}
		})
	}
}

func TestValidate_NewsCategory(t *testing.T) {
	for _, c := range []string{"", "press-releases", "events"} {
		e := validEvent()
		e.Category = c
		if res := Validate(e); res.HasErrors() {
			t.Errorf("category %q: %s", c, res.First())
		}
	}

	e := validEvent()
	e.Category = "gossip"
	res := Validate(e)
	if len(res.Errors) != 1 {
		t.Fatalf("errors = %+v, want one", res.Errors)
	}
	// No label tag: the reported field name stands in.
	if got := res.Errors[0]; got.Label != "Category" || !strings.Contains(got.Message, "press-releases") {
		t.Errorf("category error = %+v", got)
	}
}

func TestValidate_JSONTagLabel(t *testing.T) {
	e := validEvent()
	e.Slug = ""
	res := Validate(e)
	want := []FieldError{{Field: "slug", Label: "Slug", Message: "Slug is required."}}
	if diff := cmp.Diff(want, res.Errors); diff != "" {
		t.Errorf("Errors mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate_NonStruct(t *testing.T) {
	if res := Validate("not a struct"); res == nil || res.HasErrors() {
		t.Errorf("Validate(non-struct) = %+v, want empty result", res)
	}
}

func TestResult(t *testing.T) {
	var empty Result
	if empty.HasErrors() || empty.First() != "" || empty.All() != "" {
		t.Errorf("empty Result = %v %q %q", empty.HasErrors(), empty.First(), empty.All())
	}

	r := Result{Errors: []FieldError{{Message: "A is required."}, {Message: "B is invalid."}}}
	if got := r.First(); got != "A is required." {
		t.Errorf("First() = %q", got)
	}
	if got, want := r.All(), "A is required.; B is invalid."; got != want {
		t.Errorf("All() = %q, want %q", got, want)
	}
}

func TestIsValidHTTPURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://example.com/path?query=value", true},
		{"http://localhost:8080", true},
		{"  https://example.com  ", true},
		{"https://", false},
		{"", false},
		{"example.com", false},
		{"ftp://example.com", false},
		{"javascript:alert(1)", false},
	}
	for _, tt := range tests {
		if got := IsValidHTTPURL(tt.url); got != tt.want {
			t.Errorf("IsValidHTTPURL(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestIsValidSlug(t *testing.T) {
	tests := []struct {
		slug string
		want bool
	}{
		{"launch-2024", true},
		{"a", true},
		{"", false},
		{"Launch", false},
		{"launch--2024", false},
		{"-launch", false},
		{"café", false},
		{strings.Repeat("a", 97), false},
	}
	for _, tt := range tests {
		if got := IsValidSlug(tt.slug); got != tt.want {
			t.Errorf("IsValidSlug(%q) = %v, want %v", tt.slug, got, tt.want)
		}
	}
}

func TestIsLocalPath(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/", true},
		{"/events/launch-2024", true},
		{"/news?category=events", true},
		{"", false},
		{"events", false},
		{"//evil.example", false},
		{"/\\evil.example", false},
		{"https://evil.example/", false},
		{"/events\r\nSet-Cookie: x=1", false},
	}
	for _, tt := range tests {
		if got := IsLocalPath(tt.path); got != tt.want {
			t.Errorf("IsLocalPath(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
