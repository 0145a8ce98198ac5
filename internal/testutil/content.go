// Package testutil holds fixtures shared by package tests: content
// clients over in-memory sources, a per-test MongoDB database, template
// boot and request helpers.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/stratasite/internal/app/store/content"
	"github.com/dalemusser/stratasite/internal/domain/models"
	"go.uber.org/zap"
)

// FixtureConfig is the project configuration used by fixture clients.
var FixtureConfig = content.Config{ProjectID: "test-project", Dataset: "test"}

// NewFixtureSource returns an in-memory content source holding docs.
func NewFixtureSource(docs ...models.Document) *content.MemorySource {
	return content.NewMemorySource("fixture", docs...)
}

// NewFixtureClient returns a content client over an in-memory source.
func NewFixtureClient(t *testing.T, docs ...models.Document) (*content.Client, *content.MemorySource) {
	t.Helper()
	src := NewFixtureSource(docs...)
	c, err := content.NewClient(FixtureConfig, src, zap.NewNop())
	if err != nil {
		t.Fatalf("content.NewClient: %v", err)
	}
	return c, src
}

// FailingSource is a content source whose every call fails with Err.
type FailingSource struct {
	Err error
}

// Name implements content.Source.
func (f FailingSource) Name() string { return "failing" }

// Query implements content.Source.
func (f FailingSource) Query(context.Context, content.Query, content.Params, bool) ([]models.Document, error) {
	return nil, f.Err
}

// Ping implements content.Source.
func (f FailingSource) Ping(context.Context) error { return f.Err }

// NewFailingClient returns a content client whose source always fails
// with a transient upstream error.
func NewFailingClient(t *testing.T) *content.Client {
	t.Helper()
	src := FailingSource{Err: content.Transient("failing", 503, context.DeadlineExceeded)}
	c, err := content.NewClient(FixtureConfig, src, zap.NewNop())
	if err != nil {
		t.Fatalf("content.NewClient: %v", err)
	}
	return c
}

// FixedClock returns a clock stopped at the given RFC 3339 time.
func FixedClock(t *testing.T, at string) func() time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, at)
	if err != nil {
		t.Fatalf("FixedClock(%q): %v", at, err)
	}
	return func() time.Time { return ts }
}

// EventDoc builds a published event with the required fields set.
func EventDoc(id, slug, dateTime string) models.Document {
	return models.Document{
		"_id":         id,
		"_type":       models.TypeEvent,
		"title":       "Event " + slug,
		"description": "About " + slug,
		"location":    "Online",
		"dateTime":    dateTime,
		"slug":        map[string]any{"current": slug},
	}
}
