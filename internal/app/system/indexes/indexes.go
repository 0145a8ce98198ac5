// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// contentCollection matches mirrorstore.CollectionName.
const contentCollection = "content_documents"

const duplicateKeyCode = 11000

// spec is one desired index.
type spec struct {
	Name    string
	Keys    bson.D
	Unique  bool
	Partial bson.M
}

func (s spec) model() mongo.IndexModel {
	opts := options.Index().SetName(s.Name)
	if s.Unique {
		opts.SetUnique(true)
	}
	if s.Partial != nil {
		opts.SetPartialFilterExpression(s.Partial)
	}
	return mongo.IndexModel{Keys: s.Keys, Options: opts}
}

// contentIndexes is the index set of the content mirror.
var contentIndexes = []spec{
	// A slug is unique within its type among published records.
	// Drafts fall outside the partial filter and may repeat a slug.
	{
		Name:   "uniq_content_type_slug",
		Keys:   bson.D{{Key: "_type", Value: 1}, {Key: "slug.current", Value: 1}},
		Unique: true,
		Partial: bson.M{
			"_published":   true,
			"slug.current": bson.M{"$exists": true},
		},
	},
	// Event listings, newest first with a stable tie-break.
	{
		Name: "idx_content_type_datetime",
		Keys: bson.D{
			{Key: "_type", Value: 1},
			{Key: "_published", Value: 1},
			{Key: "dateTime", Value: -1},
			{Key: "_id", Value: 1},
		},
	},
	// News listings by category.
	{
		Name: "idx_content_type_category_created",
		Keys: bson.D{
			{Key: "_type", Value: 1},
			{Key: "category", Value: 1},
			{Key: "_createdAt", Value: -1},
		},
	},
}

// EnsureAll reconciles the content mirror's indexes. It is idempotent and
// reports every failure at once so startup can fail fast.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	if err := reconcile(ctx, db.Collection(contentCollection), contentIndexes); err != nil {
		return fmt.Errorf("%s: %w", contentCollection, err)
	}
	return nil
}

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique bool   `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ",")
}

// listExisting maps key signature to index. An unlistable collection
// (not yet created) yields an empty map.
func listExisting(ctx context.Context, coll *mongo.Collection) map[string]existingIndex {
	out := map[string]existingIndex{}
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return out
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()), zap.Error(err))
			continue
		}
		out[keySig(idx.Key)] = idx
	}
	return out
}

// reconcile creates missing indexes and rebuilds any whose uniqueness
// differs from the desired one. Matching indexes are reused regardless of
// their name.
func reconcile(ctx context.Context, coll *mongo.Collection, want []spec) error {
	existing := listExisting(ctx, coll)
	var errs []error

	for _, s := range want {
		start := time.Now()
		log := zap.L().With(
			zap.String("collection", coll.Name()),
			zap.String("name", s.Name),
			zap.String("keys", keySig(s.Keys)),
			zap.Bool("unique", s.Unique))

		if ex, ok := existing[keySig(s.Keys)]; ok {
			if ex.Unique == s.Unique {
				log.Debug("reusing existing index", zap.String("existing", ex.Name))
				continue
			}
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				log.Warn("drop existing index failed", zap.Error(err))
				errs = append(errs, fmt.Errorf("%s: drop %s: %w", s.Name, ex.Name, err))
				continue
			}
			log.Info("dropped index with stale options", zap.String("existing", ex.Name))
		}

		if _, err := coll.Indexes().CreateOne(ctx, s.model()); err != nil {
			log.Warn("index ensure failed", zap.Error(err))
			if s.Unique && isDuplicateKeyErr(err) {
				errs = append(errs, fmt.Errorf("%s: cannot create unique index (duplicates present)", s.Name))
			} else {
				errs = append(errs, fmt.Errorf("%s: %w", s.Name, err))
			}
			continue
		}
		log.Info("index ensured", zap.Duration("took", time.Since(start)))
	}
	return errors.Join(errs...)
}

func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == duplicateKeyCode {
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == duplicateKeyCode {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}
