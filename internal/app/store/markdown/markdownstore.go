// internal/app/store/markdown/markdownstore.go
package markdownstore

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/dalemusser/stratasite/internal/app/store/content"
	"github.com/dalemusser/stratasite/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/google/uuid"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const sourceName = "files"

// draftSuffix marks a file as the draft overlay of its published sibling:
// events/launch.draft.md overlays events/launch.md.
const draftSuffix = ".draft"

// Config locates the content directory.
type Config struct {
	// Dir holds one subdirectory per document type.
	Dir string
	// Assets resolves relative image and file paths to URLs. Optional.
	Assets storage.Store
}

// Store serves a directory of markdown files through the content.Source
// contract. Files are parsed once into memory; Reload re-reads them.
type Store struct {
	cfg    Config
	mem    *content.MemorySource
	md     goldmark.Markdown
	logger *zap.Logger
}

// New loads cfg.Dir. A missing directory is a configuration error.
func New(cfg Config, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Dir == "" {
		return nil, fmt.Errorf("%w: content directory not set", content.ErrConfig)
	}
	s := &Store{
		cfg:    cfg,
		mem:    content.NewMemorySource(sourceName),
		logger: logger,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
		),
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Name implements content.Source.
func (s *Store) Name() string { return sourceName }

// Query implements content.Source.
func (s *Store) Query(ctx context.Context, q content.Query, params content.Params, preview bool) ([]models.Document, error) {
	return s.mem.Query(ctx, q, params, preview)
}

// Ping implements content.Source by checking the directory is still there.
func (s *Store) Ping(ctx context.Context) error {
	if _, err := os.Stat(s.cfg.Dir); err != nil {
		return content.Transient(sourceName, 0, err)
	}
	return nil
}

// Len returns the number of loaded records.
func (s *Store) Len() int { return s.mem.Len() }

// Reload parses every file under the directory and swaps the result in.
// On error the previously loaded documents stay in place.
func (s *Store) Reload() error {
	info, err := os.Stat(s.cfg.Dir)
	if err != nil {
		return fmt.Errorf("%w: content directory: %v", content.ErrConfig, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", content.ErrConfig, s.cfg.Dir)
	}

	var docs []models.Document
	seen := map[string]string{}
	err = filepath.WalkDir(s.cfg.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".md" {
			return nil
		}
		doc, err := s.parseFile(path)
		if err != nil {
			return err
		}
		if doc == nil {
			return nil
		}
		if prev, dup := seen[doc.ID()]; dup {
			return fmt.Errorf("%s: _id %q already used by %s", path, doc.ID(), prev)
		}
		seen[doc.ID()] = path
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return err
	}

	s.mem.Replace(docs)
	s.logger.Info("loaded content directory",
		zap.String("dir", s.cfg.Dir),
		zap.Int("documents", len(docs)))
	return nil
}

// parseFile maps content/<type>/<name>[.draft].md to one document. Files
// whose directory is not a known type are skipped.
func (s *Store) parseFile(path string) (models.Document, error) {
	rel, err := filepath.Rel(s.cfg.Dir, path)
	if err != nil {
		return nil, err
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) != 2 {
		s.logger.Debug("skipping content file outside a type directory", zap.String("file", rel))
		return nil, nil
	}
	docType := parts[0]
	if !models.IsKnownType(docType) {
		s.logger.Debug("skipping unknown content type", zap.String("file", rel))
		return nil, nil
	}

	name := strings.TrimSuffix(parts[1], ".md")
	draft := strings.HasSuffix(name, draftSuffix)
	name = strings.TrimSuffix(name, draftSuffix)

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	fm := map[string]any{}
	body, err := frontmatter.Parse(bytes.NewReader(raw), &fm)
	if err != nil {
		return nil, fmt.Errorf("%s: frontmatter: %w", rel, err)
	}

	doc := content.NormalizeDocument(fm)
	doc["_type"] = docType

	id := doc.ID()
	switch {
	case models.IsSingleton(docType):
		id = docType
	case id == "":
		id = docType + "-" + name
	}
	id = models.PublishedID(id)
	if draft {
		id = models.DraftID(id)
	}
	doc["_id"] = id

	if slug, ok := doc["slug"].(string); ok {
		doc["slug"] = map[string]any{"current": slug}
	}
	if doc.Slug() == "" && hasSlug(docType) {
		doc["slug"] = map[string]any{"current": name}
	}
	if t, _ := doc["title"].(string); t == "" && !models.IsSingleton(docType) {
		doc["title"] = cases.Title(language.English).String(strings.ReplaceAll(name, "-", " "))
	}

	if len(bytes.TrimSpace(body)) > 0 {
		var buf bytes.Buffer
		if err := s.md.Convert(body, &buf); err != nil {
			return nil, fmt.Errorf("%s: markdown: %w", rel, err)
		}
		doc["bodyHtml"] = buf.String()
	}

	s.resolveAssets(doc)
	return doc, nil
}

func hasSlug(docType string) bool {
	switch docType {
	case models.TypePage, models.TypeBlog, models.TypeEvent, models.TypeService,
		models.TypeClientStory, models.TypeAuthor:
		return true
	}
	return false
}

// resolveAssets gives page builder blocks a _key and replaces relative
// asset paths with URLs from the configured asset store.
func (s *Store) resolveAssets(doc models.Document) {
	for _, field := range []string{"featureImage", "backgroundImage"} {
		s.resolveURL(doc[field])
	}
	s.resolveURL(doc.Path("hero.image"))
	if doc.Type() == models.TypeFileAsset {
		s.resolveURL(map[string]any(doc))
	}

	blocks, _ := doc["pageBuilder"].([]any)
	for _, b := range blocks {
		m, ok := b.(map[string]any)
		if !ok {
			continue
		}
		if k, _ := m["_key"].(string); k == "" {
			m["_key"] = uuid.NewString()
		}
		s.resolveURL(m["backgroundImage"])
	}
}

func (s *Store) resolveURL(v any) {
	m, ok := v.(map[string]any)
	if !ok || s.cfg.Assets == nil {
		return
	}
	u, _ := m["url"].(string)
	if u == "" || strings.Contains(u, "://") || strings.HasPrefix(u, "/") {
		return
	}
	m["url"] = s.cfg.Assets.URL(u)
}
