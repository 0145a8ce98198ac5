package mirrorstore

import (
	"errors"
	"testing"

	"github.com/dalemusser/stratasite/internal/app/store/content"
	"github.com/dalemusser/stratasite/internal/domain/models"
	"github.com/dalemusser/stratasite/internal/testutil"
	"github.com/google/go-cmp/cmp"
)

func seed(t *testing.T, s *Store, docs ...models.Document) {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	for _, d := range docs {
		if err := s.Upsert(ctx, d); err != nil {
			t.Fatalf("Upsert(%s): %v", d.ID(), err)
		}
	}
}

func eventQuery() content.Query {
	return content.Query{
		Type:   models.TypeEvent,
		Fields: models.EventFields,
		Order:  []content.Order{{Field: "dateTime", Desc: true}},
	}
}

func ids(docs []models.Document) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.ID())
	}
	return out
}

func TestQuery_PublishedOnly(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := New(db)
	seed(t, s,
		testutil.EventDoc("evt-launch", "launch-2024", "2024-01-10T00:00:00Z"),
		testutil.EventDoc("evt-summit", "summit-2025", "2025-06-01T00:00:00Z"),
		testutil.EventDoc("drafts.evt-new", "new-event", "2025-09-01T00:00:00Z"),
	)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	docs, err := s.Query(ctx, eventQuery(), nil, false)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if diff := cmp.Diff([]string{"evt-summit", "evt-launch"}, ids(docs)); diff != "" {
		t.Errorf("published mismatch (-want +got):\n%s", diff)
	}
	if _, ok := docs[0][publishedField]; ok {
		t.Errorf("%s leaked into the document", publishedField)
	}

	docs, err = s.Query(ctx, eventQuery(), nil, true)
	if err != nil {
		t.Fatalf("Query preview: %v", err)
	}
	if diff := cmp.Diff([]string{"evt-new", "evt-summit", "evt-launch"}, ids(docs)); diff != "" {
		t.Errorf("preview mismatch (-want +got):\n%s", diff)
	}
}

func TestQuery_FiltersAndRange(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := New(db)
	seed(t, s,
		testutil.EventDoc("evt-a", "a", "2024-01-01T00:00:00Z"),
		testutil.EventDoc("evt-b", "b", "2024-06-01T00:00:00Z"),
		testutil.EventDoc("evt-c", "c", "2024-12-01T00:00:00Z"),
		models.Document{"_id": "evt-undated", "_type": models.TypeEvent, "title": "Undated", "slug": map[string]any{"current": "undated"}},
	)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	q := eventQuery()
	q.Filters = []content.Filter{content.After("dateTime", "now")}
	docs, err := s.Query(ctx, q, content.Params{"now": "2024-03-01T00:00:00.000Z"}, false)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if diff := cmp.Diff([]string{"evt-c", "evt-b"}, ids(docs)); diff != "" {
		t.Errorf("after mismatch (-want +got):\n%s", diff)
	}

	q = eventQuery().WithRange(1, 2)
	docs, err = s.Query(ctx, q, nil, false)
	if err != nil {
		t.Fatalf("Query range: %v", err)
	}
	if diff := cmp.Diff([]string{"evt-b"}, ids(docs)); diff != "" {
		t.Errorf("range mismatch (-want +got):\n%s", diff)
	}

	q = eventQuery()
	q.Filters = []content.Filter{content.Eq("slug.current", "slug")}
	docs, err = s.Query(ctx, q, content.Params{"slug": "undated"}, false)
	if err != nil || len(docs) != 1 || docs[0].ID() != "evt-undated" {
		t.Errorf("slug lookup = %v, %v", ids(docs), err)
	}
}

func TestUpsert_DuplicateSlug(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := New(db)
	seed(t, s, testutil.EventDoc("evt-one", "launch", "2024-01-01T00:00:00Z"))
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := s.Upsert(ctx, testutil.EventDoc("evt-two", "launch", "2024-02-01T00:00:00Z"))
	if !errors.Is(err, ErrDuplicateSlug) {
		t.Errorf("Upsert duplicate = %v, want ErrDuplicateSlug", err)
	}

	// A draft may share its published counterpart's slug.
	if err := s.Upsert(ctx, testutil.EventDoc("drafts.evt-one", "launch", "2024-03-01T00:00:00Z")); err != nil {
		t.Errorf("Upsert draft: %v", err)
	}
}

func TestPublishAndUnpublish(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := New(db)
	seed(t, s,
		testutil.EventDoc("evt-one", "launch", "2024-01-01T00:00:00Z"),
		models.Document{
			"_id": "drafts.evt-one", "_type": models.TypeEvent, "title": "Launch (edited)",
			"slug": map[string]any{"current": "launch"}, "dateTime": "2024-02-01T00:00:00Z",
		},
	)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := s.Publish(ctx, "evt-one"); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	got, err := s.Get(ctx, "evt-one")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got["title"] != "Launch (edited)" {
		t.Errorf("published title = %v", got["title"])
	}
	if err := s.Publish(ctx, "evt-one"); !errors.Is(err, ErrNoDraft) {
		t.Errorf("second Publish = %v, want ErrNoDraft", err)
	}

	if err := s.Unpublish(ctx, "evt-one"); err != nil {
		t.Fatalf("Unpublish: %v", err)
	}
	docs, err := s.Query(ctx, eventQuery(), nil, false)
	if err != nil || len(docs) != 0 {
		t.Errorf("published after Unpublish = %v, %v", ids(docs), err)
	}
	docs, err = s.Query(ctx, eventQuery(), nil, true)
	if err != nil || len(docs) != 1 {
		t.Errorf("preview after Unpublish = %v, %v", ids(docs), err)
	}

	if err := s.Delete(ctx, "evt-one"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if n, _ := s.Count(ctx); n != 0 {
		t.Errorf("Count after Delete = %d, want 0", n)
	}
}

func TestBuildFilter_BadTime(t *testing.T) {
	q := eventQuery()
	q.Filters = []content.Filter{content.After("dateTime", "now")}
	_, err := buildFilter(q, content.Params{"now": "yesterday"})
	if !content.IsMalformed(err) {
		t.Errorf("buildFilter = %v, want malformed", err)
	}
}
