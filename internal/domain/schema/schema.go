// Package schema describes each content type as data: its fields, their
// semantic kind, validation rules and the editor preview line. The table
// is consulted when seeding or loading content and by tests; it has no
// runtime dependencies of its own.
package schema

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/dalemusser/stratasite/internal/domain/models"
)

// Kind is the semantic type of a field.
type Kind string

const (
	KindString    Kind = "string"
	KindText      Kind = "text"
	KindSlug      Kind = "slug"
	KindDatetime  Kind = "datetime"
	KindURL       Kind = "url"
	KindImage     Kind = "image"
	KindFile      Kind = "file"
	KindReference Kind = "reference"
	KindBoolean   Kind = "boolean"
	KindNumber    Kind = "number"
	KindBlocks    Kind = "blocks"
	KindArray     Kind = "array"
	KindObject    Kind = "object"
)

// Check validates a present field value. It returns a message or "".
type Check func(v any) string

// Field is one declared field of a type.
type Field struct {
	Name     string // dotted path
	Kind     Kind
	Required bool
	Default  any
	Check    Check
}

// Preview is the one-line summary editors see in lists.
type Preview struct {
	Title    string
	Subtitle string
}

// Type is one document or block type.
type Type struct {
	Name    string
	Title   string
	Block   bool
	Fields  []Field
	Preview func(d models.Document) Preview
}

// MaxSlugLength bounds generated and edited slugs.
const MaxSlugLength = 96

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

var table = map[string]Type{
	models.TypeEvent: {
		Name:  models.TypeEvent,
		Title: "Event",
		Fields: []Field{
			{Name: "title", Kind: KindString, Required: true},
			{Name: "description", Kind: KindText, Required: true},
			{Name: "featureImage", Kind: KindImage},
			{Name: "dateTime", Kind: KindDatetime, Required: true, Check: checkDatetime},
			{Name: "location", Kind: KindString, Required: true},
			{Name: "registrationLink", Kind: KindURL, Check: checkURL},
			{Name: "slug.current", Kind: KindSlug, Required: true, Check: checkSlug},
			{Name: "seoTitle", Kind: KindString},
			{Name: "seoDescription", Kind: KindText},
			{Name: "seoNoIndex", Kind: KindBoolean, Default: false},
		},
		Preview: func(d models.Document) Preview {
			status := "🌎"
			if b, _ := d["seoNoIndex"].(bool); b {
				status = "🔒"
			}
			date := "No date"
			if s, ok := d["dateTime"].(string); ok {
				if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
					date = t.UTC().Format("1/2/2006")
				}
			}
			return Preview{
				Title:    stringOr(d["title"], "Untitled Event"),
				Subtitle: fmt.Sprintf("%s 📅 %s | 📍 %s", status, date, stringOr(d["location"], "No location")),
			}
		},
	},
	models.TypeNews: {
		Name:  models.TypeNews,
		Title: "News",
		Fields: []Field{
			{Name: "title", Kind: KindString, Required: true},
			{Name: "category", Kind: KindString, Required: true, Check: checkNewsCategory},
			{Name: "richText", Kind: KindBlocks},
		},
		Preview: func(d models.Document) Preview {
			sub := "No category"
			if c, _ := d["category"].(string); c != "" {
				sub = models.NewsCategoryTitle(c)
			}
			return Preview{Title: stringOr(d["title"], "Untitled News"), Subtitle: sub}
		},
	},
	models.TypeService: {
		Name:  models.TypeService,
		Title: "Service",
		Fields: []Field{
			{Name: "title", Kind: KindString, Required: true},
			{Name: "slug.current", Kind: KindSlug, Required: true, Check: checkSlug},
			{Name: "pageBuilder", Kind: KindArray},
		},
		Preview: slugPreview("Untitled Service"),
	},
	models.TypeClientStory: {
		Name:  models.TypeClientStory,
		Title: "Client Story",
		Fields: []Field{
			{Name: "title", Kind: KindString, Required: true},
			{Name: "slug.current", Kind: KindSlug, Required: true, Check: checkSlug},
			{Name: "hero", Kind: KindObject},
			{Name: "hero.title", Kind: KindString},
			{Name: "hero.subtitle", Kind: KindText},
			{Name: "hero.image", Kind: KindImage},
			{Name: "richText", Kind: KindBlocks},
		},
		Preview: slugPreview("Untitled Client Story"),
	},
	models.TypeInvestor: {
		Name:  models.TypeInvestor,
		Title: "Investor",
		Fields: []Field{
			{Name: "name", Kind: KindString, Required: true},
			{Name: "url", Kind: KindURL, Required: true, Check: checkURL},
		},
		Preview: func(d models.Document) Preview {
			return Preview{
				Title:    stringOr(d["name"], "Untitled Investor"),
				Subtitle: stringOr(d["url"], "No URL provided"),
			}
		},
	},
	models.TypePage: {
		Name:  models.TypePage,
		Title: "Page",
		Fields: []Field{
			{Name: "title", Kind: KindString, Required: true},
			{Name: "description", Kind: KindText},
			{Name: "slug.current", Kind: KindSlug, Required: true, Check: checkSlug},
			{Name: "pageBuilder", Kind: KindArray},
		},
		Preview: slugPreview("Untitled Page"),
	},
	models.BlockEventsList: {
		Name:  models.BlockEventsList,
		Title: "Events List",
		Block: true,
		Fields: []Field{
			{Name: "title", Kind: KindString, Default: models.DefaultEventsListTitle},
			{Name: "description", Kind: KindText},
			{Name: "showPastEvents", Kind: KindBoolean, Default: false},
			{Name: "maxEvents", Kind: KindNumber, Check: checkIntRange(1, models.DefaultEventsListMax)},
		},
		Preview: func(d models.Document) Preview {
			scope := "Upcoming events only"
			if b, _ := d["showPastEvents"].(bool); b {
				scope = "All events"
			}
			limit := "(all events)"
			if n, ok := d["maxEvents"].(float64); ok && n > 0 {
				limit = fmt.Sprintf("(max %d)", int(n))
			}
			return Preview{Title: stringOr(d["title"], "Events List"), Subtitle: scope + " | " + limit}
		},
	},
	models.BlockFeaturedEvent: {
		Name:  models.BlockFeaturedEvent,
		Title: "Featured Event",
		Block: true,
		Fields: []Field{
			{Name: "event", Kind: KindReference, Required: true, Check: checkReference},
			{Name: "headline", Kind: KindString, Required: true},
			{Name: "title", Kind: KindString},
			{Name: "bannerText", Kind: KindBlocks},
			{Name: "backgroundImage", Kind: KindImage},
			{Name: "buttons", Kind: KindArray},
		},
		Preview: func(d models.Document) Preview {
			title := stringOr(d["headline"], "")
			if title == "" {
				title = stringOr(d.Path("event.title"), models.DefaultFeaturedBadge)
			}
			return Preview{Title: title, Subtitle: models.DefaultFeaturedBadge}
		},
	},
	models.BlockFileDownload: {
		Name:  models.BlockFileDownload,
		Title: "File Download",
		Block: true,
		Fields: []Field{
			{Name: "title", Kind: KindString, Required: true},
			{Name: "description", Kind: KindText},
			{Name: "file", Kind: KindFile, Required: true},
			{Name: "buttonText", Kind: KindString, Default: models.DefaultDownloadButtonText},
			{Name: "showFileSize", Kind: KindBoolean, Default: true},
			{Name: "showFileType", Kind: KindBoolean, Default: true},
		},
		Preview: func(d models.Document) Preview {
			return Preview{
				Title:    stringOr(d["title"], "Untitled Download"),
				Subtitle: stringOr(d["description"], "File download block"),
			}
		},
	},
}

// Lookup returns the declaration of a document or block type.
func Lookup(name string) (Type, bool) {
	t, ok := table[name]
	return t, ok
}

// Types returns every declared type sorted by name.
func Types() []Type {
	out := make([]Type, 0, len(table))
	for _, t := range table {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Validate checks d against its type's declaration and returns one
// message per problem. Undeclared types validate trivially.
func Validate(d models.Document) []string {
	t, ok := table[d.Type()]
	if !ok {
		return nil
	}
	var problems []string
	for _, f := range t.Fields {
		v := d.Path(f.Name)
		if isEmpty(v) {
			if f.Required {
				problems = append(problems, f.Name+" is required")
			}
			continue
		}
		if msg := checkKind(f.Kind, v); msg != "" {
			problems = append(problems, f.Name+": "+msg)
			continue
		}
		if f.Check != nil {
			if msg := f.Check(v); msg != "" {
				problems = append(problems, f.Name+": "+msg)
			}
		}
	}
	return problems
}

// PreviewOf returns the editor preview for d, or its _id when the type
// has no preview.
func PreviewOf(d models.Document) Preview {
	t, ok := table[d.Type()]
	if !ok || t.Preview == nil {
		return Preview{Title: d.ID()}
	}
	return t.Preview(d)
}

// ApplyDefaults fills absent top-level fields with their declared defaults.
// It returns a copy; d is not modified.
func ApplyDefaults(d models.Document) models.Document {
	out := d.Clone()
	t, ok := table[d.Type()]
	if !ok {
		return out
	}
	for _, f := range t.Fields {
		if f.Default == nil || strings.Contains(f.Name, ".") {
			continue
		}
		if _, present := out[f.Name]; !present {
			out[f.Name] = f.Default
		}
	}
	return out
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []any:
		return len(t) == 0
	}
	return false
}

func checkKind(k Kind, v any) string {
	switch k {
	case KindString, KindText, KindSlug, KindDatetime, KindURL:
		if _, ok := v.(string); !ok {
			return fmt.Sprintf("want %s, got %T", k, v)
		}
	case KindBoolean:
		if _, ok := v.(bool); !ok {
			return fmt.Sprintf("want boolean, got %T", v)
		}
	case KindNumber:
		if _, ok := v.(float64); !ok {
			return fmt.Sprintf("want number, got %T", v)
		}
	case KindBlocks, KindArray:
		if _, ok := v.([]any); !ok {
			return fmt.Sprintf("want array, got %T", v)
		}
	case KindImage, KindFile, KindReference, KindObject:
		if _, ok := v.(map[string]any); !ok {
			return fmt.Sprintf("want object, got %T", v)
		}
	}
	return ""
}

func checkSlug(v any) string {
	s, _ := v.(string)
	if len(s) > MaxSlugLength {
		return fmt.Sprintf("longer than %d characters", MaxSlugLength)
	}
	if !slugPattern.MatchString(s) {
		return "must be lowercase letters, digits and single hyphens"
	}
	return ""
}

func checkDatetime(v any) string {
	s, _ := v.(string)
	if _, err := time.Parse(time.RFC3339Nano, s); err != nil {
		return "not an ISO-8601 datetime"
	}
	return ""
}

func checkURL(v any) string {
	u, err := url.Parse(strings.TrimSpace(v.(string)))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "must be an http or https URL"
	}
	return ""
}

func checkNewsCategory(v any) string {
	if !models.IsValidNewsCategory(v.(string)) {
		return "unknown news category"
	}
	return ""
}

func checkReference(v any) string {
	m := v.(map[string]any)
	ref, _ := m["_ref"].(string)
	if strings.TrimSpace(ref) == "" {
		return "reference has no _ref"
	}
	return ""
}

func checkIntRange(min, max int) Check {
	return func(v any) string {
		n := v.(float64)
		if n != float64(int(n)) || int(n) < min || int(n) > max {
			return fmt.Sprintf("must be a whole number from %d to %d", min, max)
		}
		return ""
	}
}

func slugPreview(untitled string) func(models.Document) Preview {
	return func(d models.Document) Preview {
		sub := "No slug"
		if s := d.Slug(); s != "" {
			sub = "/" + s
		}
		return Preview{Title: stringOr(d["title"], untitled), Subtitle: sub}
	}
}

func stringOr(v any, def string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return def
}
