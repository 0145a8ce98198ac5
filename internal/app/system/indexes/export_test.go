package indexes

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
)

// Hooks for indexes_test, which needs testutil (and testutil imports this
// package).

const ContentCollection = contentCollection

type Spec = spec

var (
	ContentIndexes    = contentIndexes
	KeySig            = keySig
	IsDuplicateKeyErr = isDuplicateKeyErr
)

// IndexState is the name and uniqueness of an existing index.
type IndexState struct {
	Name   string
	Unique bool
}

// Existing maps key signatures of coll's indexes to their state.
func Existing(ctx context.Context, coll *mongo.Collection) map[string]IndexState {
	out := map[string]IndexState{}
	for sig, ex := range listExisting(ctx, coll) {
		out[sig] = IndexState{Name: ex.Name, Unique: ex.Unique}
	}
	return out
}

// CreateIndex creates s on coll as-is.
func CreateIndex(ctx context.Context, coll *mongo.Collection, s Spec) error {
	_, err := coll.Indexes().CreateOne(ctx, s.model())
	return err
}
