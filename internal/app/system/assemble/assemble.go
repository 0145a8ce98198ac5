// Package assemble turns content records into render-ready view models.
//
// An Assembler resolves the documents a route needs through the content
// client, follows references with explicit second reads, and computes
// time-dependent fields from its clock on every call. It holds no mutable
// state; concurrent use is safe.
package assemble

import (
	"context"
	"time"

	"github.com/dalemusser/stratasite/internal/app/store/content"
	"github.com/dalemusser/stratasite/internal/domain/models"
	"go.uber.org/zap"
)

// Clock returns the current time.
type Clock func() time.Time

// Assembler builds view models from content.
type Assembler struct {
	client *content.Client
	now    Clock
	loc    *time.Location
	logger *zap.Logger

	// blockLimit bounds concurrent queries while resolving one page.
	blockLimit int
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithClock replaces the wall clock, for tests and previews of a future date.
func WithClock(c Clock) Option {
	return func(a *Assembler) {
		if c != nil {
			a.now = c
		}
	}
}

// WithLocation sets the time zone used for date and time labels.
func WithLocation(loc *time.Location) Option {
	return func(a *Assembler) {
		if loc != nil {
			a.loc = loc
		}
	}
}

// WithBlockLimit bounds how many page builder blocks resolve at once.
func WithBlockLimit(n int) Option {
	return func(a *Assembler) {
		if n > 0 {
			a.blockLimit = n
		}
	}
}

// New returns an Assembler reading through client.
func New(client *content.Client, logger *zap.Logger, opts ...Option) *Assembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Assembler{
		client:     client,
		now:        time.Now,
		loc:        time.UTC,
		logger:     logger,
		blockLimit: 4,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Now returns the assembler's current time.
func (a *Assembler) Now() time.Time { return a.now() }

// Client returns the underlying content client.
func (a *Assembler) Client() *content.Client { return a.client }

// bySlug looks up one document of docType by slug.
func (a *Assembler) bySlug(ctx context.Context, docType, slug string, fields []string) (models.Document, bool, error) {
	if slug == "" {
		return nil, false, nil
	}
	return a.client.One(ctx, content.Query{
		Type:    docType,
		Filters: []content.Filter{content.Eq("slug.current", "slug")},
		Fields:  fields,
	}, content.Params{"slug": slug})
}
