// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/stratasite/internal/domain/schema"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// contentCollection matches mirrorstore.CollectionName.
const contentCollection = "content_documents"

// MongoDB command error codes.
const (
	codeNamespaceExists = 48
	codeCommandNotFound = 59
	codeNotImplemented  = 115
)

// EnsureAll creates the content mirror collection if missing and attaches
// a JSON-Schema validator derived from the document schema table. Servers
// without collMod validators (some DocumentDB versions) are skipped with a
// log line.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	if err := ensureCollection(ctx, db, contentCollection); err != nil {
		return errors.New(contentCollection + ": " + err.Error())
	}

	err := setValidator(ctx, db, contentCollection, contentDocumentsSchema())
	switch {
	case err == nil:
		return nil
	case isUnsupported(err):
		zap.L().Info("validator skipped (unsupported)", zap.String("collection", contentCollection))
		return nil
	default:
		return errors.New(contentCollection + ": " + err.Error())
	}
}

func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{"name": name})
	if err != nil {
		return false, err
	}
	return len(names) > 0, nil
}

// ensureCollection creates name unless it already exists. A concurrent
// create by another instance is not an error.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) error {
	if exists, err := collectionExists(ctx, db, name); err == nil && exists {
		zap.L().Debug("collection exists", zap.String("collection", name))
		return nil
	}
	if err := db.CreateCollection(ctx, name); err != nil {
		if isNamespaceExists(err) {
			return nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return nil
}

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	if err := db.RunCommand(ctx, cmd).Err(); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

// commandErr reports whether err is a command error with one of codes, or
// carries one of phrases in its message.
func commandErr(err error, codes []int32, phrases ...string) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		for _, c := range codes {
			if ce.Code == c {
				return true
			}
		}
	}
	msg := strings.ToLower(err.Error())
	for _, p := range phrases {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

func isNamespaceExists(err error) bool {
	return commandErr(err, []int32{codeNamespaceExists}, "already exists", "namespace exists")
}

func isUnsupported(err error) bool {
	return commandErr(err, []int32{codeCommandNotFound, codeNotImplemented},
		"no such command", "not implemented", "not supported")
}

// contentDocumentsSchema requires the identity fields every mirrored
// document carries. Published documents of a declared type must also hold
// that type's required top-level fields; drafts may be incomplete.
func contentDocumentsSchema() bson.M {
	declared := bson.A{}
	anyOf := bson.A{
		bson.M{"properties": bson.M{"_published": bson.M{"enum": bson.A{false}}}},
	}
	for _, t := range schema.Types() {
		if t.Block {
			continue
		}
		declared = append(declared, t.Name)
		sub := bson.M{"properties": bson.M{"_type": bson.M{"enum": bson.A{t.Name}}}}
		if req := requiredTopLevel(t); len(req) > 0 {
			sub["required"] = req
		}
		anyOf = append(anyOf, sub)
	}
	anyOf = append(anyOf, bson.M{
		"properties": bson.M{"_type": bson.M{"not": bson.M{"enum": declared}}},
	})

	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"_id", "_type", "_published"},
			"properties": bson.M{
				"_id":        bson.M{"bsonType": "string", "minLength": 1},
				"_type":      bson.M{"bsonType": "string", "minLength": 1},
				"_published": bson.M{"bsonType": "bool"},
				"slug": bson.M{
					"bsonType": "object",
					"properties": bson.M{
						"current": bson.M{"bsonType": "string", "pattern": "^[a-z0-9]+(?:-[a-z0-9]+)*$"},
					},
				},
			},
			"anyOf": anyOf,
		},
	}
}

// requiredTopLevel returns the distinct top-level names of t's required
// fields; "slug.current" requires "slug".
func requiredTopLevel(t schema.Type) bson.A {
	seen := map[string]bool{}
	out := bson.A{}
	for _, f := range t.Fields {
		if !f.Required {
			continue
		}
		name, _, _ := strings.Cut(f.Name, ".")
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}
