// internal/app/system/seeding/seeding.go
package seeding

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dalemusser/stratasite/internal/app/store/content"
	mirrorstore "github.com/dalemusser/stratasite/internal/app/store/mirror"
	"github.com/dalemusser/stratasite/internal/domain/models"
	"github.com/dalemusser/stratasite/internal/domain/schema"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// SeedFile is the YAML layout of a mirror seed:
//
//	documents:
//	  - _id: evt-launch
//	    _type: event
//	    title: Product Launch
//	    slug: {current: launch-2024}
//	    dateTime: 2024-03-01T10:00:00Z
type SeedFile struct {
	Documents []map[string]any `yaml:"documents"`
}

// SeedAll loads seedPath into the content mirror when the collection is
// empty. An empty seedPath is a no-op.
func SeedAll(ctx context.Context, db *mongo.Database, seedPath string, logger *zap.Logger) error {
	if seedPath == "" {
		return nil
	}
	return seedContent(ctx, mirrorstore.New(db), seedPath, logger)
}

func seedContent(ctx context.Context, store *mirrorstore.Store, seedPath string, logger *zap.Logger) error {
	n, err := store.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		logger.Debug("content mirror already populated, skipping seed", zap.Int64("documents", n))
		return nil
	}

	f, err := os.Open(seedPath)
	if err != nil {
		return fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	docs, err := ParseSeed(f)
	if err != nil {
		return fmt.Errorf("%s: %w", seedPath, err)
	}

	for _, d := range docs {
		if problems := schema.Validate(d); len(problems) > 0 {
			logger.Warn("seed document fails schema validation",
				zap.String("id", d.ID()),
				zap.String("type", d.Type()),
				zap.Strings("problems", problems))
		}
		if err := store.Upsert(ctx, d); err != nil {
			logger.Error("failed to seed document",
				zap.String("id", d.ID()),
				zap.Error(err))
			return err
		}
	}
	logger.Info("seeded content mirror",
		zap.String("file", seedPath),
		zap.Int("documents", len(docs)))
	return nil
}

// ParseSeed decodes a seed file into normalized documents.
func ParseSeed(r io.Reader) ([]models.Document, error) {
	var sf SeedFile
	if err := yaml.NewDecoder(r).Decode(&sf); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	docs := make([]models.Document, 0, len(sf.Documents))
	for i, raw := range sf.Documents {
		d := content.NormalizeDocument(raw)
		if d.ID() == "" || d.Type() == "" {
			return nil, fmt.Errorf("document %d: _id and _type are required", i)
		}
		if models.IsSingleton(d.Type()) && models.PublishedID(d.ID()) != d.Type() {
			return nil, fmt.Errorf("document %d: singleton %s must use _id %q", i, d.Type(), d.Type())
		}
		docs = append(docs, d)
	}
	return docs, nil
}
