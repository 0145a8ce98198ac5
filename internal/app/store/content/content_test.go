package content

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/dalemusser/stratasite/internal/domain/models"
	"go.uber.org/zap"
)

func event(id, slug, dateTime string) models.Document {
	return models.Document{
		"_id":      id,
		"_type":    models.TypeEvent,
		"title":    "Event " + id,
		"dateTime": dateTime,
		"slug":     map[string]any{"current": slug},
	}
}

func newTestClient(t *testing.T, docs ...models.Document) *Client {
	t.Helper()
	c, err := NewClient(Config{ProjectID: "p1", Dataset: "test"}, NewMemorySource("memory", docs...), zap.NewNop())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func ids(docs []models.Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.ID()
	}
	return out
}

func equalIDs(got []models.Document, want ...string) bool {
	g := ids(got)
	if len(g) != len(want) {
		return false
	}
	for i := range g {
		if g[i] != want[i] {
			return false
		}
	}
	return true
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"complete", Config{ProjectID: "abc", Dataset: "production"}, false},
		{"missing project", Config{Dataset: "production"}, true},
		{"missing dataset", Config{ProjectID: "abc"}, true},
		{"blank both", Config{ProjectID: " ", Dataset: ""}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrConfig) {
				t.Errorf("error %v does not wrap ErrConfig", err)
			}
		})
	}
}

func TestNewClient_RejectsMissingConfig(t *testing.T) {
	_, err := NewClient(Config{}, NewMemorySource("memory"), nil)
	if !errors.Is(err, ErrConfig) {
		t.Fatalf("NewClient error = %v, want ErrConfig", err)
	}
}

func TestQueryValidate(t *testing.T) {
	tests := []struct {
		name   string
		q      Query
		params Params
		ok     bool
	}{
		{"type only", Query{Type: models.TypeEvent}, nil, true},
		{"unknown type", Query{Type: "widget"}, nil, false},
		{"missing type", Query{}, nil, false},
		{"bound slug", Query{Type: models.TypeEvent, Filters: []Filter{Eq("slug.current", "slug")}}, Params{"slug": "x"}, true},
		{"unbound param", Query{Type: models.TypeEvent, Filters: []Filter{Eq("slug.current", "slug")}}, nil, false},
		{"bad field", Query{Type: models.TypeEvent, Filters: []Filter{Eq("slug current", "slug")}}, Params{"slug": "x"}, false},
		{"unknown op", Query{Type: models.TypeEvent, Filters: []Filter{{Field: "title", Op: "match", Param: "q"}}}, Params{"q": "x"}, false},
		{"after needs string", Query{Type: models.TypeEvent, Filters: []Filter{{Field: "dateTime", Op: OpAfter, Param: "now"}}}, Params{"now": 5}, false},
		{"defined takes no param", Query{Type: models.TypeEvent, Filters: []Filter{{Field: "slug", Op: OpDefined}}}, nil, true},
		{"negative range", Query{Type: models.TypeEvent, Range: &Range{Start: -1, End: 2}}, nil, false},
		{"inverted range", Query{Type: models.TypeEvent, Range: &Range{Start: 3, End: 2}}, nil, false},
		{"empty range", Query{Type: models.TypeEvent, Range: &Range{Start: 2, End: 2}}, nil, true},
		{"bad order field", Query{Type: models.TypeEvent, Order: []Order{{Field: "date-time"}}}, nil, false},
		{"singleton type", Query{Type: models.TypeSettings}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.q.Validate(tt.params)
			if tt.ok && err != nil {
				t.Fatalf("Validate() = %v, want nil", err)
			}
			if !tt.ok {
				if err == nil {
					t.Fatal("Validate() = nil, want error")
				}
				if !IsMalformed(err) {
					t.Errorf("error %v is not ErrMalformedQuery", err)
				}
			}
		})
	}
}

func TestFetch_MalformedQueryFailsFast(t *testing.T) {
	src := &countingSource{MemorySource: NewMemorySource("memory")}
	c, err := NewClient(Config{ProjectID: "p", Dataset: "d"}, src, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}

	_, err = c.Fetch(context.Background(), Query{Type: "nope"}, nil)
	if !IsMalformed(err) {
		t.Fatalf("Fetch error = %v, want malformed", err)
	}
	if IsTransient(err) {
		t.Error("malformed error must not be transient")
	}
	if src.calls != 0 {
		t.Errorf("source called %d times, want 0", src.calls)
	}
}

type countingSource struct {
	*MemorySource
	calls int
}

func (s *countingSource) Query(ctx context.Context, q Query, p Params, preview bool) ([]models.Document, error) {
	s.calls++
	return s.MemorySource.Query(ctx, q, p, preview)
}

type failingSource struct{ err error }

func (f failingSource) Name() string { return "failing" }
func (f failingSource) Query(context.Context, Query, Params, bool) ([]models.Document, error) {
	return nil, f.err
}
func (f failingSource) Ping(context.Context) error { return f.err }

func TestFetch_RemoteFailureIsTransient(t *testing.T) {
	c, err := NewClient(Config{ProjectID: "p", Dataset: "d"}, failingSource{err: fmt.Errorf("connection reset")}, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}

	_, err = c.Fetch(context.Background(), Query{Type: models.TypeEvent}, nil)
	if !IsTransient(err) {
		t.Fatalf("Fetch error = %v, want transient", err)
	}
	var te *TransientError
	if !errors.As(err, &te) {
		t.Fatalf("error %T is not *TransientError", err)
	}
	if te.Source != "failing" {
		t.Errorf("Source = %q, want failing", te.Source)
	}
	if !IsTransient(c.Ping(context.Background())) {
		t.Error("Ping error should be transient")
	}
}

func TestFetch_CancellationPassesThrough(t *testing.T) {
	c := newTestClient(t, event("e1", "a", "2024-01-01T00:00:00Z"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Fetch(ctx, Query{Type: models.TypeEvent}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Fetch error = %v, want context.Canceled", err)
	}
	if IsTransient(err) {
		t.Error("cancellation must not be reported as transient")
	}
}

func TestOne_RoundTripBySlug(t *testing.T) {
	c := newTestClient(t,
		event("e1", "launch-2024", "2024-03-01T10:00:00Z"),
		event("e2", "summit-2025", "2025-05-01T10:00:00Z"),
	)
	q := Query{Type: models.TypeEvent, Filters: []Filter{Eq("slug.current", "slug")}}

	doc, found, err := c.One(context.Background(), q, Params{"slug": "summit-2025"})
	if err != nil {
		t.Fatalf("One: %v", err)
	}
	if !found {
		t.Fatal("found = false, want true")
	}
	if doc.ID() != "e2" || doc.Slug() != "summit-2025" {
		t.Errorf("got %s/%s, want e2/summit-2025", doc.ID(), doc.Slug())
	}

	_, found, err = c.One(context.Background(), q, Params{"slug": "missing"})
	if err != nil {
		t.Fatalf("One(missing): %v", err)
	}
	if found {
		t.Error("found = true for missing slug")
	}
}

func TestOne_DuplicateSlugPicksFirstByID(t *testing.T) {
	c := newTestClient(t,
		event("e9", "dup", "2024-03-01T10:00:00Z"),
		event("e3", "dup", "2025-05-01T10:00:00Z"),
	)
	q := Query{Type: models.TypeEvent, Filters: []Filter{Eq("slug.current", "slug")}}

	doc, found, err := c.One(context.Background(), q, Params{"slug": "dup"})
	if err != nil || !found {
		t.Fatalf("One: found=%v err=%v", found, err)
	}
	if doc.ID() != "e3" {
		t.Errorf("chose %s, want e3", doc.ID())
	}
}

func TestEvaluate_OrderAndTieBreak(t *testing.T) {
	docs := []models.Document{
		event("b", "b", "2024-06-01T00:00:00Z"),
		event("c", "c", "2025-01-01T00:00:00Z"),
		event("a", "a", "2024-06-01T00:00:00Z"),
		event("d", "d", "2023-01-01T00:00:00Z"),
	}
	q := Query{Type: models.TypeEvent, Order: []Order{{Field: "dateTime", Desc: true}}}

	got := Evaluate(docs, q, nil, false)
	if !equalIDs(got, "c", "a", "b", "d") {
		t.Errorf("order = %v, want [c a b d]", ids(got))
	}
}

func TestEvaluate_DateOrderIgnoresOffsetFormatting(t *testing.T) {
	docs := []models.Document{
		event("x", "x", "2024-06-01T09:00:00+02:00"), // 07:00Z
		event("y", "y", "2024-06-01T08:00:00Z"),
	}
	q := Query{Type: models.TypeEvent, Order: []Order{{Field: "dateTime", Desc: true}}}

	got := Evaluate(docs, q, nil, false)
	if !equalIDs(got, "y", "x") {
		t.Errorf("order = %v, want [y x]", ids(got))
	}
}

func TestEvaluate_RangeIsHalfOpen(t *testing.T) {
	var docs []models.Document
	for i := 0; i < 5; i++ {
		docs = append(docs, event(fmt.Sprintf("e%d", i), fmt.Sprintf("s%d", i), fmt.Sprintf("2024-01-0%dT00:00:00Z", i+1)))
	}
	base := Query{Type: models.TypeEvent, Order: []Order{{Field: "dateTime"}}}

	tests := []struct {
		start, end int
		want       []string
	}{
		{0, 2, []string{"e0", "e1"}},
		{1, 4, []string{"e1", "e2", "e3"}},
		{3, 100, []string{"e3", "e4"}},
		{5, 10, nil},
		{2, 2, nil},
	}
	for _, tt := range tests {
		got := Evaluate(docs, base.WithRange(tt.start, tt.end), nil, false)
		if !equalIDs(got, tt.want...) {
			t.Errorf("[%d,%d) = %v, want %v", tt.start, tt.end, ids(got), tt.want)
		}
	}
}

func TestEvaluate_DatetimeFilters(t *testing.T) {
	docs := []models.Document{
		event("past", "p", "2024-01-01T00:00:00Z"),
		event("now", "n", "2024-06-01T12:00:00Z"),
		event("future", "f", "2025-01-01T00:00:00Z"),
		{"_id": "nodate", "_type": models.TypeEvent},
	}
	params := Params{"now": "2024-06-01T12:00:00Z"}
	order := []Order{{Field: "dateTime"}}

	after := Evaluate(docs, Query{Type: models.TypeEvent, Order: order,
		Filters: []Filter{{Field: "dateTime", Op: OpAfter, Param: "now"}}}, params, false)
	if !equalIDs(after, "future") {
		t.Errorf("after = %v, want [future]", ids(after))
	}

	notAfter := Evaluate(docs, Query{Type: models.TypeEvent, Order: order,
		Filters: []Filter{{Field: "dateTime", Op: OpNotAfter, Param: "now"}}}, params, false)
	if !equalIDs(notAfter, "past", "now") {
		t.Errorf("notAfter = %v, want [past now]", ids(notAfter))
	}

	defined := Evaluate(docs, Query{Type: models.TypeEvent,
		Filters: []Filter{{Field: "dateTime", Op: OpDefined}}}, nil, false)
	if len(defined) != 3 {
		t.Errorf("defined count = %d, want 3", len(defined))
	}
}

func TestEvaluate_DraftVisibility(t *testing.T) {
	published := event("e1", "launch", "2024-03-01T10:00:00Z")
	draft := event("drafts.e1", "launch", "2024-03-02T10:00:00Z")
	draft["title"] = "Launch (edited)"
	draftOnly := event("drafts.e2", "unreleased", "2024-04-01T10:00:00Z")
	docs := []models.Document{published, draft, draftOnly}
	q := Query{Type: models.TypeEvent, Order: []Order{{Field: "_id"}}}

	public := Evaluate(docs, q, nil, false)
	if !equalIDs(public, "e1") {
		t.Fatalf("published view = %v, want [e1]", ids(public))
	}
	if public[0]["title"] != "Event e1" {
		t.Errorf("published title = %v", public[0]["title"])
	}

	preview := Evaluate(docs, q, nil, true)
	if !equalIDs(preview, "e1", "e2") {
		t.Fatalf("preview view = %v, want [e1 e2]", ids(preview))
	}
	if preview[0]["title"] != "Launch (edited)" {
		t.Errorf("preview title = %v, want draft title", preview[0]["title"])
	}
	if preview[0]["_originalId"] != "drafts.e1" {
		t.Errorf("_originalId = %v, want drafts.e1", preview[0]["_originalId"])
	}
	if draft["_id"] != "drafts.e1" {
		t.Error("Evaluate modified its input")
	}
}

func TestEvaluate_ProjectionKeepsIdentity(t *testing.T) {
	d := event("e1", "a", "2024-01-01T00:00:00Z")
	d["location"] = "Berlin"

	got := Evaluate([]models.Document{d}, Query{Type: models.TypeEvent, Fields: []string{"title", "slug.current"}}, nil, false)
	if len(got) != 1 {
		t.Fatalf("len = %d", len(got))
	}
	for _, k := range []string{"_id", "_type", "title", "slug"} {
		if _, ok := got[0][k]; !ok {
			t.Errorf("projection dropped %s", k)
		}
	}
	if _, ok := got[0]["location"]; ok {
		t.Error("projection kept location")
	}
}

func TestTransientError(t *testing.T) {
	err := Transient("sanity", 503, errors.New("service unavailable"))
	if !errors.Is(err, ErrTransient) {
		t.Error("errors.Is(ErrTransient) = false")
	}
	wrapped := fmt.Errorf("list events: %w", err)
	if !IsTransient(wrapped) {
		t.Error("wrapped transient lost its class")
	}
	if IsMalformed(wrapped) {
		t.Error("transient reported as malformed")
	}
}

func TestPreviewContext(t *testing.T) {
	ctx := context.Background()
	if PreviewFrom(ctx) {
		t.Error("preview on by default")
	}
	if !PreviewFrom(WithPreview(ctx, true)) {
		t.Error("WithPreview(true) not visible")
	}
}

func TestMemorySource_PutAndDelete(t *testing.T) {
	m := NewMemorySource("memory", event("e1", "a", "2024-01-01T00:00:00Z"))
	m.Put(event("e2", "b", "2024-01-02T00:00:00Z"))
	updated := event("e1", "a2", "2024-01-01T00:00:00Z")
	m.Put(updated)
	if m.Len() != 2 {
		t.Fatalf("Len = %d, want 2", m.Len())
	}
	m.Delete("e2")

	docs, err := m.Query(context.Background(), Query{Type: models.TypeEvent}, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	if !equalIDs(docs, "e1") || docs[0].Slug() != "a2" {
		t.Errorf("docs = %v", docs)
	}
}
