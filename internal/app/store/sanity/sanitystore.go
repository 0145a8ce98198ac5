// internal/app/store/sanity/sanitystore.go
package sanitystore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dalemusser/stratasite/internal/app/store/content"
	"github.com/dalemusser/stratasite/internal/domain/models"
	"go.uber.org/zap"
)

const (
	// DefaultAPIVersion is the dated API version requests are pinned to.
	DefaultAPIVersion = "2024-01-01"
	// DefaultTimeout bounds every HTTP round trip.
	DefaultTimeout = 10 * time.Second

	sourceName = "sanity"
	requestTag = "stratasite"
	maxBody    = 8 << 20
)

// Config configures the HTTP query API backend.
type Config struct {
	ProjectID  string
	Dataset    string
	APIVersion string        // defaults to DefaultAPIVersion
	Token      string        // read token; required to see drafts
	UseCDN     bool          // read published content from the API CDN
	Timeout    time.Duration // defaults to DefaultTimeout

	// BaseURL replaces the project host, e.g. an httptest server.
	BaseURL string
}

// Store queries a hosted dataset over the GROQ HTTP API.
type Store struct {
	cfg    Config
	http   *http.Client
	logger *zap.Logger
}

// New returns a store for cfg. ProjectID and Dataset must be set.
func New(cfg Config, logger *zap.Logger) (*Store, error) {
	if cfg.ProjectID == "" || cfg.Dataset == "" {
		return nil, fmt.Errorf("%w: sanity project id and dataset are required", content.ErrConfig)
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}
	cfg.APIVersion = strings.TrimPrefix(cfg.APIVersion, "v")
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}, nil
}

// Name implements content.Source.
func (s *Store) Name() string { return sourceName }

type queryResponse struct {
	Result json.RawMessage `json:"result"`
	Ms     int             `json:"ms"`
}

type errorResponse struct {
	Error struct {
		Description string `json:"description"`
		Type        string `json:"type"`
	} `json:"error"`
	Message string `json:"message"`
}

func (e errorResponse) text() string {
	switch {
	case e.Error.Description != "":
		return e.Error.Description
	case e.Message != "":
		return e.Message
	}
	return "no error description"
}

// Query implements content.Source.
func (s *Store) Query(ctx context.Context, q content.Query, params content.Params, preview bool) ([]models.Document, error) {
	groq, err := BuildGROQ(q)
	if err != nil {
		return nil, err
	}

	raw, err := s.do(ctx, groq, params, preview)
	if err != nil {
		return nil, err
	}

	var docs []models.Document
	if len(raw) == 0 || string(raw) == "null" {
		return docs, nil
	}
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, content.Transient(sourceName, 0, fmt.Errorf("decode result: %w", err))
	}
	return docs, nil
}

// Ping issues a trivial query to confirm the API answers for this dataset.
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.do(ctx, "now()", nil, false)
	return err
}

// Endpoint returns the query URL. Preview reads bypass the CDN.
func (s *Store) Endpoint(preview bool) string {
	base := s.cfg.BaseURL
	if base == "" {
		host := "api"
		if s.cfg.UseCDN && !preview {
			host = "apicdn"
		}
		base = fmt.Sprintf("https://%s.%s.sanity.io", s.cfg.ProjectID, host)
	}
	return fmt.Sprintf("%s/v%s/data/query/%s", strings.TrimSuffix(base, "/"), s.cfg.APIVersion, url.PathEscape(s.cfg.Dataset))
}

func (s *Store) do(ctx context.Context, groq string, params content.Params, preview bool) (json.RawMessage, error) {
	values := url.Values{}
	values.Set("query", groq)
	values.Set("tag", requestTag)
	if preview {
		values.Set("perspective", "previewDrafts")
	} else {
		values.Set("perspective", "published")
	}
	for name, v := range params {
		enc, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("%w: parameter $%s: %v", content.ErrMalformedQuery, name, err)
		}
		values.Set("$"+name, string(enc))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.Endpoint(preview)+"?"+values.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", content.ErrMalformedQuery, err)
	}
	req.Header.Set("Accept", "application/json")
	if s.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.Token)
	} else if preview {
		s.logger.Warn("preview query without a read token returns published content only")
	}

	resp, err := s.http.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, ctx.Err()
		}
		return nil, content.Transient(sourceName, 0, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, content.Transient(sourceName, resp.StatusCode, fmt.Errorf("read body: %w", err))
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		var qr queryResponse
		if err := json.Unmarshal(body, &qr); err != nil {
			return nil, content.Transient(sourceName, resp.StatusCode, fmt.Errorf("decode response: %w", err))
		}
		return qr.Result, nil
	}

	var er errorResponse
	_ = json.Unmarshal(body, &er)
	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, content.Transient(sourceName, resp.StatusCode, errors.New(er.text()))
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: sanity returned %d: %s", content.ErrConfig, resp.StatusCode, er.text())
	default:
		return nil, fmt.Errorf("%w: sanity returned %d: %s", content.ErrMalformedQuery, resp.StatusCode, er.text())
	}
}
