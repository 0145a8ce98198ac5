// internal/app/store/content/client.go
package content

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/stratasite/internal/domain/models"
	"go.uber.org/zap"
)

// Source executes validated queries against one backing store.
// Implementations return TransientError for remote failures and
// ErrMalformedQuery when the store rejects the query itself.
type Source interface {
	Name() string
	Query(ctx context.Context, q Query, params Params, preview bool) ([]models.Document, error)
	Ping(ctx context.Context) error
}

// Config identifies the content project. Both fields are required.
type Config struct {
	ProjectID string
	Dataset   string
}

// Validate reports missing fields as ErrConfig.
func (c Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.ProjectID) == "" {
		missing = append(missing, "project id")
	}
	if strings.TrimSpace(c.Dataset) == "" {
		missing = append(missing, "dataset")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrConfig, strings.Join(missing, " and "))
	}
	return nil
}

// Client is the read-only entry point to the content repository.
// It holds no per-call state and is safe for concurrent use.
type Client struct {
	cfg    Config
	src    Source
	logger *zap.Logger
}

// NewClient validates cfg and returns a client reading from src.
func NewClient(cfg Config, src Source, logger *zap.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if src == nil {
		return nil, fmt.Errorf("%w: no content source", ErrConfig)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{cfg: cfg, src: src, logger: logger}, nil
}

// Config returns the project configuration the client was built with.
func (c *Client) Config() Config { return c.cfg }

// SourceName names the backing store, for logs and health output.
func (c *Client) SourceName() string { return c.src.Name() }

// Fetch returns every document matching q in order.
// The result contains only published documents unless the context
// carries the preview flag.
func (c *Client) Fetch(ctx context.Context, q Query, params Params) ([]models.Document, error) {
	if err := q.Validate(params); err != nil {
		c.logger.Error("malformed content query",
			zap.String("type", q.Type),
			zap.Error(err))
		return nil, err
	}

	preview := PreviewFrom(ctx)
	start := time.Now()
	docs, err := c.src.Query(ctx, q, params, preview)
	if err != nil {
		err = classify(c.src.Name(), err)
		c.logger.Warn("content query failed",
			zap.String("source", c.src.Name()),
			zap.String("type", q.Type),
			zap.Bool("preview", preview),
			zap.Bool("transient", IsTransient(err)),
			zap.Error(err))
		return nil, err
	}

	c.logger.Debug("content query",
		zap.String("source", c.src.Name()),
		zap.String("type", q.Type),
		zap.Bool("preview", preview),
		zap.Int("count", len(docs)),
		zap.Duration("duration", time.Since(start)))
	return docs, nil
}

// One returns the single document matching q. found is false when nothing
// matches. When more than one document matches, the first by _id is
// returned and the duplicate is logged; it is not an error.
func (c *Client) One(ctx context.Context, q Query, params Params) (models.Document, bool, error) {
	q.Order = []Order{{Field: "_id"}}
	q = q.WithRange(0, 2)

	docs, err := c.Fetch(ctx, q, params)
	if err != nil {
		return nil, false, err
	}
	if len(docs) == 0 {
		return nil, false, nil
	}
	if len(docs) > 1 {
		c.logger.Warn("content integrity: multiple documents match a unique lookup",
			zap.String("type", q.Type),
			zap.Any("params", params),
			zap.String("chosen_id", docs[0].ID()),
			zap.String("duplicate_id", docs[1].ID()))
	}
	return docs[0], true, nil
}

// ByID returns the document with the given published id.
func (c *Client) ByID(ctx context.Context, docType, id string) (models.Document, bool, error) {
	return c.One(ctx, Query{
		Type:    docType,
		Filters: []Filter{Eq("_id", "id")},
	}, Params{"id": models.PublishedID(id)})
}

// Ping checks that the backing store is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return classify(c.src.Name(), c.src.Ping(ctx))
}

type previewKey struct{}

// WithPreview returns a context whose queries include draft overlays.
func WithPreview(ctx context.Context, on bool) context.Context {
	return context.WithValue(ctx, previewKey{}, on)
}

// PreviewFrom reports whether ctx requests draft overlays.
func PreviewFrom(ctx context.Context) bool {
	on, _ := ctx.Value(previewKey{}).(bool)
	return on
}
