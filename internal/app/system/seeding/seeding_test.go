package seeding

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	mirrorstore "github.com/dalemusser/stratasite/internal/app/store/mirror"
	"github.com/dalemusser/stratasite/internal/testutil"
	"go.uber.org/zap"
)

const seedYAML = `documents:
  - _id: evt-launch
    _type: event
    title: Product Launch
    description: The launch.
    location: Online
    slug: {current: launch-2024}
    dateTime: 2024-03-01T10:00:00Z
  - _id: settings
    _type: settings
    title: Strata
`

func TestParseSeed(t *testing.T) {
	docs, err := ParseSeed(strings.NewReader(seedYAML))
	if err != nil {
		t.Fatalf("ParseSeed: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("len(docs) = %d, want 2", len(docs))
	}
	if got, want := docs[0]["dateTime"], "2024-03-01T10:00:00.000Z"; got != want {
		t.Errorf("dateTime = %v, want %v", got, want)
	}
	if got := docs[0].Slug(); got != "launch-2024" {
		t.Errorf("Slug() = %q, want launch-2024", got)
	}
}

func TestParseSeed_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"missing type", "documents:\n  - _id: x\n", "_id and _type are required"},
		{"singleton id", "documents:\n  - _id: other\n    _type: settings\n", "must use _id"},
		{"bad yaml", "documents: [", "decode seed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSeed(strings.NewReader(tt.in))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("ParseSeed() error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestParseSeed_Empty(t *testing.T) {
	docs, err := ParseSeed(strings.NewReader(""))
	if err != nil || len(docs) != 0 {
		t.Errorf("ParseSeed(empty) = %v, %v", docs, err)
	}
}

func TestSeedAll_OnlyWhenEmpty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	path := filepath.Join(t.TempDir(), "seed.yaml")
	if err := os.WriteFile(path, []byte(seedYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 2; i++ {
		if err := SeedAll(ctx, db, path, zap.NewNop()); err != nil {
			t.Fatalf("SeedAll run %d: %v", i+1, err)
		}
	}
	n, err := mirrorstore.New(db).Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 2 {
		t.Errorf("Count() = %d, want 2", n)
	}

	if err := SeedAll(ctx, db, "", zap.NewNop()); err != nil {
		t.Errorf("SeedAll(no path) = %v, want nil", err)
	}
}
