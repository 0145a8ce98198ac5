// internal/domain/models/document.go
package models

import (
	"encoding/json"
	"strings"
)

// Document types stored in the content repository.
const (
	TypePage        = "page"
	TypeBlog        = "blog"
	TypeEvent       = "event"
	TypeNews        = "news"
	TypeService     = "service"
	TypeClientStory = "clientStory"
	TypeAuthor      = "author"
	TypeFAQ         = "faq"
	TypeInvestor    = "investor"

	// Singletons. Each has exactly one instance whose _id equals its type.
	TypeHomePage  = "homePage"
	TypeBlogIndex = "blogIndex"
	TypeSettings  = "settings"
	TypeFooter    = "footer"
	TypeNavbar    = "navbar"

	// TypeFileAsset is the asset record a file field references.
	TypeFileAsset = "sanity.fileAsset"
)

// DraftPrefix marks the id of an unpublished draft overlay.
const DraftPrefix = "drafts."

var documentTypes = []string{
	TypePage, TypeBlog, TypeEvent, TypeNews, TypeService,
	TypeClientStory, TypeAuthor, TypeFAQ, TypeInvestor,
}

var singletonTypes = []string{
	TypeHomePage, TypeBlogIndex, TypeSettings, TypeFooter, TypeNavbar,
}

// AllDocumentTypes returns the non-singleton document types.
func AllDocumentTypes() []string {
	return append([]string(nil), documentTypes...)
}

// SingletonTypes returns the singleton document types.
func SingletonTypes() []string {
	return append([]string(nil), singletonTypes...)
}

// IsSingleton reports whether t is a singleton type.
func IsSingleton(t string) bool {
	for _, s := range singletonTypes {
		if s == t {
			return true
		}
	}
	return false
}

// IsKnownType reports whether t may be queried.
func IsKnownType(t string) bool {
	if t == TypeFileAsset || IsSingleton(t) {
		return true
	}
	for _, d := range documentTypes {
		if d == t {
			return true
		}
	}
	return false
}

// Document is one content record as returned by a content source.
// Field values follow the JSON data model: strings, float64 numbers,
// bools, nested maps and slices.
type Document map[string]any

// ID returns the document _id.
func (d Document) ID() string {
	s, _ := d["_id"].(string)
	return s
}

// Type returns the document _type.
func (d Document) Type() string {
	s, _ := d["_type"].(string)
	return s
}

// Slug returns slug.current, or "" when the document has no slug.
func (d Document) Slug() string {
	s, _ := d.Path("slug.current").(string)
	return s
}

// IsDraft reports whether this record is a draft overlay.
func (d Document) IsDraft() bool {
	return IsDraftID(d.ID())
}

// Path looks up a dotted field path such as "slug.current".
// It returns nil when any segment is missing.
func (d Document) Path(path string) any {
	var cur any = map[string]any(d)
	for _, seg := range strings.Split(path, ".") {
		m, ok := asMap(cur)
		if !ok {
			return nil
		}
		cur, ok = m[seg]
		if !ok {
			return nil
		}
	}
	return cur
}

// Decode converts the document into a typed model.
func (d Document) Decode(v any) error {
	b, err := json.Marshal(map[string]any(d))
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// Clone returns a shallow copy of the document.
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Document:
		return m, true
	}
	return nil, false
}

// IsDraftID reports whether id names a draft overlay.
func IsDraftID(id string) bool {
	return strings.HasPrefix(id, DraftPrefix)
}

// PublishedID strips the draft prefix from id.
func PublishedID(id string) string {
	return strings.TrimPrefix(id, DraftPrefix)
}

// DraftID returns the draft overlay id for a published id.
func DraftID(id string) string {
	if IsDraftID(id) {
		return id
	}
	return DraftPrefix + id
}

// Slug is a URL-safe identifier, unique within its document type.
type Slug struct {
	Current string `json:"current"`
}

// Reference is a directed link to another document.
type Reference struct {
	Ref  string `json:"_ref"`
	Type string `json:"_type,omitempty"`
}

// Resolvable reports whether the reference names a target at all.
func (r *Reference) Resolvable() bool {
	return r != nil && strings.TrimSpace(r.Ref) != ""
}

// Image is a media reference with alt text. URL is set by sources that
// serve assets directly (the markdown directory) instead of by reference.
type Image struct {
	Asset *Reference `json:"asset,omitempty"`
	Alt   string     `json:"alt,omitempty"`
	URL   string     `json:"url,omitempty"`
}

// FileField is a file-typed field referencing a file asset.
type FileField struct {
	Asset *Reference `json:"asset,omitempty"`
}

// FileAsset is the stored metadata of an uploaded file.
type FileAsset struct {
	ID               string  `json:"_id"`
	URL              string  `json:"url"`
	OriginalFilename string  `json:"originalFilename"`
	Extension        string  `json:"extension"`
	MimeType         string  `json:"mimeType"`
	Size             float64 `json:"size"`
}

// Button is an editor-defined call to action.
type Button struct {
	Key          string `json:"_key,omitempty"`
	Text         string `json:"text"`
	Variant      string `json:"variant,omitempty"`
	Href         string `json:"href"`
	OpenInNewTab bool   `json:"openInNewTab,omitempty"`
}
