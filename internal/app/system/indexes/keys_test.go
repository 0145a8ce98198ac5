package indexes

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestKeySig(t *testing.T) {
	got := keySig(bson.D{{Key: "_type", Value: 1}, {Key: "dateTime", Value: -1}})
	if want := "_type:1,dateTime:-1"; got != want {
		t.Errorf("keySig() = %q, want %q", got, want)
	}
}

func TestSpecModel(t *testing.T) {
	m := contentIndexes[0].model()
	if m.Options == nil || m.Options.Unique == nil || !*m.Options.Unique {
		t.Fatalf("slug index options = %+v, want unique", m.Options)
	}
	if m.Options.PartialFilterExpression == nil {
		t.Error("slug index has no partial filter")
	}
	plain := spec{Name: "x", Keys: bson.D{{Key: "a", Value: 1}}}.model()
	if plain.Options.Unique != nil {
		t.Errorf("plain index Unique = %v, want unset", *plain.Options.Unique)
	}
}

func TestIsDuplicateKeyErr(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"write exception", mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: duplicateKeyCode}}}, true},
		{"command error", mongo.CommandError{Code: duplicateKeyCode}, true},
		{"message", errors.New("E11000 duplicate key error collection"), true},
		{"other", errors.New("timeout"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isDuplicateKeyErr(tt.err); got != tt.want {
				t.Errorf("isDuplicateKeyErr() = %v, want %v", got, tt.want)
			}
		})
	}
}
