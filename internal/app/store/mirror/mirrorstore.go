// internal/app/store/mirror/mirrorstore.go
package mirrorstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/stratasite/internal/app/store/content"
	"github.com/dalemusser/stratasite/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// CollectionName holds mirrored content documents.
const CollectionName = "content_documents"

// publishedField marks non-draft records. The unique slug index is partial
// on it, so drafts may share a slug with their published counterpart.
const publishedField = "_published"

const sourceName = "mongo"

var (
	// ErrDuplicateSlug is returned when a published document would share
	// its slug with another published document of the same type.
	ErrDuplicateSlug = errors.New("slug already used by another document of this type")

	// ErrNoDraft is returned when publishing a document that has no draft.
	ErrNoDraft = errors.New("document has no draft")
)

// Store is a MongoDB mirror of the content dataset.
type Store struct {
	c *mongo.Collection
}

// New creates a mirror store on db.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(CollectionName)}
}

// Name implements content.Source.
func (s *Store) Name() string { return sourceName }

// Ping implements content.Source.
func (s *Store) Ping(ctx context.Context) error {
	return s.c.Database().Client().Ping(ctx, readpref.Primary())
}

// Query implements content.Source. Published reads run natively in MongoDB.
// Preview reads load the type's records and overlay drafts in memory.
func (s *Store) Query(ctx context.Context, q content.Query, params content.Params, preview bool) ([]models.Document, error) {
	if preview {
		all, err := s.find(ctx, bson.M{"_type": q.Type}, options.Find())
		if err != nil {
			return nil, err
		}
		return content.Evaluate(all, q, params, true), nil
	}

	filter, err := buildFilter(q, params)
	if err != nil {
		return nil, err
	}

	sort := bson.D{}
	for _, o := range q.Order {
		dir := 1
		if o.Desc {
			dir = -1
		}
		sort = append(sort, bson.E{Key: o.Field, Value: dir})
	}
	if !hasKey(sort, "_id") {
		sort = append(sort, bson.E{Key: "_id", Value: 1})
	}

	opts := options.Find().SetSort(sort)
	if q.Range != nil {
		if q.Range.Len() == 0 {
			return []models.Document{}, nil
		}
		opts.SetSkip(int64(q.Range.Start)).SetLimit(int64(q.Range.Len()))
	}
	if len(q.Fields) > 0 {
		proj := bson.M{"_id": 1, "_type": 1}
		for _, f := range q.Fields {
			top, _, _ := strings.Cut(f, ".")
			proj[top] = 1
		}
		opts.SetProjection(proj)
	}
	return s.find(ctx, filter, opts)
}

// buildFilter translates a query shape into a published-only filter.
// Datetime comparisons parse the stored string server-side, so records
// with a missing or unparseable value never match.
func buildFilter(q content.Query, params content.Params) (bson.M, error) {
	filter := bson.M{"_type": q.Type, publishedField: true}
	var exprs bson.A

	for _, f := range q.Filters {
		switch f.Op {
		case content.OpEq:
			v := params[f.Param]
			if f.Field == "_id" {
				if id, ok := v.(string); ok {
					v = models.PublishedID(id)
				}
			}
			filter[f.Field] = v
		case content.OpDefined:
			filter[f.Field] = bson.M{"$exists": true, "$ne": nil}
		case content.OpAfter, content.OpNotAfter:
			raw, _ := params[f.Param].(string)
			at, err := time.Parse(time.RFC3339Nano, raw)
			if err != nil {
				return nil, fmt.Errorf("%w: parameter $%s: %v", content.ErrMalformedQuery, f.Param, err)
			}
			cmp := "$gt"
			if f.Op == content.OpNotAfter {
				cmp = "$lte"
			}
			exprs = append(exprs, bson.M{"$let": bson.M{
				"vars": bson.M{"d": bson.M{"$dateFromString": bson.M{
					"dateString": "$" + f.Field,
					"onError":    nil,
					"onNull":     nil,
				}}},
				"in": bson.M{"$and": bson.A{
					bson.M{"$ne": bson.A{"$$d", nil}},
					bson.M{cmp: bson.A{"$$d", at.UTC()}},
				}},
			}})
		default:
			return nil, fmt.Errorf("%w: unsupported operator %q", content.ErrMalformedQuery, f.Op)
		}
	}

	switch len(exprs) {
	case 0:
	case 1:
		filter["$expr"] = exprs[0]
	default:
		filter["$expr"] = bson.M{"$and": exprs}
	}
	return filter, nil
}

func (s *Store) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Document, error) {
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer cur.Close(ctx)

	docs := []models.Document{}
	for cur.Next(ctx) {
		d, err := decode(cur.Current)
		if err != nil {
			return nil, content.Transient(sourceName, 0, err)
		}
		docs = append(docs, d)
	}
	if err := cur.Err(); err != nil {
		return nil, wrapErr(err)
	}
	return docs, nil
}

// decode turns a stored BSON record into a document via relaxed
// Extended JSON, which keeps strings, numbers and nesting as-is.
func decode(raw bson.Raw) (models.Document, error) {
	b, err := bson.MarshalExtJSON(raw, false, false)
	if err != nil {
		return nil, err
	}
	var d models.Document
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, err
	}
	delete(d, publishedField)
	return d, nil
}

func wrapErr(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	return content.Transient(sourceName, 0, err)
}

func hasKey(d bson.D, key string) bool {
	for _, e := range d {
		if e.Key == key {
			return true
		}
	}
	return false
}

// Upsert stores d, replacing any record with the same _id. Datetime fields
// are normalized to content.TimeLayout.
func (s *Store) Upsert(ctx context.Context, d models.Document) error {
	id := d.ID()
	if id == "" || d.Type() == "" {
		return errors.New("document needs _id and _type")
	}
	rec := content.NormalizeDocument(d)
	rec[publishedField] = !models.IsDraftID(id)

	_, err := s.c.ReplaceOne(ctx, bson.M{"_id": id}, bson.M(rec), options.Replace().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%s %q: %w", d.Type(), d.Slug(), ErrDuplicateSlug)
		}
		return err
	}
	return nil
}

// Get returns the stored record with exactly this _id, draft ids included.
func (s *Store) Get(ctx context.Context, id string) (models.Document, error) {
	raw, err := s.c.FindOne(ctx, bson.M{"_id": id}).Raw()
	if err != nil {
		return nil, err
	}
	return decode(raw)
}

// Delete removes the published record and its draft.
func (s *Store) Delete(ctx context.Context, id string) error {
	id = models.PublishedID(id)
	_, err := s.c.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": bson.A{id, models.DraftID(id)}}})
	return err
}

// Publish replaces the published record with its draft and removes the draft.
func (s *Store) Publish(ctx context.Context, id string) error {
	id = models.PublishedID(id)
	draft, err := s.Get(ctx, models.DraftID(id))
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%s: %w", id, ErrNoDraft)
	}
	if err != nil {
		return err
	}
	delete(draft, "_originalId")
	draft["_id"] = id
	draft["_updatedAt"] = content.FormatTime(time.Now())
	if err := s.Upsert(ctx, draft); err != nil {
		return err
	}
	_, err = s.c.DeleteOne(ctx, bson.M{"_id": models.DraftID(id)})
	return err
}

// Unpublish withdraws the published record, keeping its content as a
// draft unless a newer draft already exists.
func (s *Store) Unpublish(ctx context.Context, id string) error {
	id = models.PublishedID(id)
	pub, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.Get(ctx, models.DraftID(id)); errors.Is(err, mongo.ErrNoDocuments) {
		pub["_id"] = models.DraftID(id)
		if err := s.Upsert(ctx, pub); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}
	_, err = s.c.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// Count returns the number of stored records, drafts included.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}
