// Package inputval validates request input with waffle/pantry/validate.
//
// Fill a struct with validate and label tags from the request and pass it
// to Validate:
//
//	type newsInput struct {
//	    Category string `validate:"omitempty,newscategory" label:"Category"`
//	    Page     int    `validate:"min=1" label:"Page"`
//	}
//
//	if res := inputval.Validate(in); res.HasErrors() {
//	    http.Error(w, res.First(), http.StatusBadRequest)
//	    return
//	}
package inputval

import (
	"net/url"
	"reflect"
	"strings"
	"sync"

	"github.com/dalemusser/stratasite/internal/app/system/normalize"
	"github.com/dalemusser/stratasite/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/validate"
)

// Result holds the messages of a failed validation.
type Result struct {
	Errors []FieldError
}

// FieldError is the failure of a single field.
type FieldError struct {
	Field   string
	Label   string
	Message string
}

// HasErrors reports whether any field failed.
func (r *Result) HasErrors() bool { return len(r.Errors) > 0 }

// First returns the first message, or "".
func (r *Result) First() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Message
}

// All joins every message with "; ".
func (r *Result) All() string {
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

// rule is a site-specific string rule.
type rule struct {
	name    string
	check   func(string) bool
	message string
}

var siteRules = []rule{
	{"httpurl", IsValidHTTPURL, "{field} must be a valid URL starting with http:// or https://."},
	{"slug", IsValidSlug, "{field} is not a valid slug."},
	{"newscategory", func(s string) bool { return s == "" || models.IsValidNewsCategory(s) }, ""},
	{"localpath", IsLocalPath, "{field} must be a path on this site."},
}

var (
	v        *validate.Validator
	messages *validate.MessageProvider
	initOnce sync.Once
)

func validator() (*validate.Validator, *validate.MessageProvider) {
	initOnce.Do(func() {
		messages = validate.DefaultMessages().Clone()
		messages.AddMessage("en", "required", "{field} is required.")
		messages.AddMessage("en", "min", "{field} must be at least {param}.")
		messages.AddMessage("en", "max", "{field} must be at most {param}.")
		messages.AddMessage("en", "oneof", "{field} must be one of: {param}.")
		messages.AddMessage("en", "newscategory",
			"{field} must be one of: "+strings.Join(newsCategoryValues(), ", ")+".")

		v = validate.New(validate.WithStopOnFirstError(), validate.WithMessages(messages))
		for _, r := range siteRules {
			check := r.check
			v.RegisterRuleFunc(r.name, func(value any) bool {
				s, ok := value.(string)
				return ok && check(s)
			}, r.name)
			if r.message != "" {
				messages.AddMessage("en", r.name, r.message)
			}
		}
	})
	return v, messages
}

// Validate checks s against its validate tags. Messages name each field by
// its label tag, falling back to the field's reported name.
//
// Beyond the pantry/validate built-ins (required, oneof, min, max) it
// understands httpurl, slug, newscategory and localpath.
func Validate(s any) *Result {
	val, msgs := validator()
	res := &Result{}

	errs, ok := val.Struct(s).(validate.Errors)
	if !ok {
		return res
	}
	labels := fieldLabels(s)
	for _, e := range errs {
		label := labels[e.Field]
		if label == "" {
			label = e.Field
		}
		res.Errors = append(res.Errors, FieldError{
			Field:   e.Field,
			Label:   label,
			Message: msgs.Get(e.Rule, label, strings.ReplaceAll(e.Param, " ", ", ")),
		})
	}
	return res
}

// fieldLabels maps the name pantry/validate reports (json tag or Go name)
// to the label tag.
func fieldLabels(s any) map[string]string {
	labels := map[string]string{}
	rv := reflect.Indirect(reflect.ValueOf(s))
	if rv.Kind() != reflect.Struct {
		return labels
	}
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		label := f.Tag.Get("label")
		if label == "" {
			continue
		}
		name := f.Name
		if tag, _, _ := strings.Cut(f.Tag.Get("json"), ","); tag != "" && tag != "-" {
			name = tag
		}
		labels[name] = label
	}
	return labels
}

func newsCategoryValues() []string {
	out := make([]string, len(models.NewsCategories))
	for i, c := range models.NewsCategories {
		out[i] = c.Value
	}
	return out
}

// IsValidHTTPURL reports whether s is an absolute http or https URL.
func IsValidHTTPURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// IsValidSlug reports whether s is already in canonical slug form.
func IsValidSlug(s string) bool {
	return s != "" && normalize.Slug(s) == s
}

// IsLocalPath reports whether s is a path on this site. Protocol-relative
// URLs ("//evil.example"), backslash tricks and header breaks are rejected.
func IsLocalPath(s string) bool {
	if !strings.HasPrefix(s, "/") || strings.HasPrefix(s, "//") || strings.HasPrefix(s, "/\\") {
		return false
	}
	if strings.ContainsAny(s, "\r\n") {
		return false
	}
	u, err := url.Parse(s)
	return err == nil && u.Scheme == "" && u.Host == ""
}
