package pages

import (
	"net/http"
	"testing"

	errorsfeature "github.com/dalemusser/stratasite/internal/app/features/errors"
	"github.com/dalemusser/stratasite/internal/app/system/assemble"
	"github.com/dalemusser/stratasite/internal/domain/models"
	"github.com/dalemusser/stratasite/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func fixture() []models.Document {
	return []models.Document{
		testutil.EventDoc("evt-summit", "summit-2025", "2025-06-01T09:00:00Z"),
		{
			"_id":   "page-about",
			"_type": models.TypePage,
			"title": "About Us",
			"slug":  map[string]any{"current": "about"},
			"pageBuilder": []any{
				map[string]any{"_key": "b1", "_type": models.BlockEventsList, "title": "Coming up"},
				map[string]any{"_key": "b2", "_type": models.BlockFeaturedEvent, "event": map[string]any{"_ref": "evt-deleted"}},
				map[string]any{"_key": "b3", "_type": models.BlockFileDownload, "title": "Brochure"},
			},
		},
		{
			"_id":   "svc-consulting",
			"_type": models.TypeService,
			"title": "Consulting",
			"slug":  map[string]any{"current": "consulting"},
			"pageBuilder": []any{
				map[string]any{"_key": "f1", "_type": models.BlockFeaturedEvent, "event": map[string]any{"_ref": "evt-summit"}},
			},
		},
	}
}

func newRouter(t *testing.T, asm *assemble.Assembler) http.Handler {
	t.Helper()
	testutil.MustBootTemplates(t)
	h := NewHandler(asm, errorsfeature.NewErrorLogger(zap.NewNop()), zap.NewNop())
	r := chi.NewRouter()
	r.Get("/{slug}", h.Page)
	r.Mount("/services", ServiceRoutes(h))
	return r
}

func TestPage(t *testing.T) {
	client, _ := testutil.NewFixtureClient(t, fixture()...)
	asm := assemble.New(client, zap.NewNop(), assemble.WithClock(testutil.FixedClock(t, "2024-06-01T00:00:00Z")))
	r := newRouter(t, asm)

	tests := []struct {
		name    string
		path    string
		status  int
		want    []string
		notWant []string
	}{
		{
			name:    "page with blocks",
			path:    "/about",
			status:  http.StatusOK,
			want:    []string{"<h1>About Us</h1>", `id="block-b1"`, "Coming up", "/events/summit-2025", `id="block-b3"`, "No file selected", "disabled"},
			notWant: []string{`id="block-b2"`},
		},
		{
			name:   "service with featured event",
			path:   "/services/consulting",
			status: http.StatusOK,
			want:   []string{"<h1>Consulting</h1>", `id="block-f1"`, "Featured Event", "Event summit-2025"},
		},
		{name: "missing page", path: "/nope", status: http.StatusNotFound, want: []string{"Page not found"}},
		{name: "service slug is not a page", path: "/consulting", status: http.StatusNotFound},
		{name: "missing service", path: "/services/about", status: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			r.ServeHTTP(rec, testutil.NewRequestWithCSRF(http.MethodGet, tt.path))
			rec.AssertStatus(t, tt.status)
			for _, s := range tt.want {
				rec.AssertContains(t, s)
			}
			for _, s := range tt.notWant {
				rec.AssertNotContains(t, s)
			}
		})
	}
}

func TestPage_TransientFailure(t *testing.T) {
	r := newRouter(t, assemble.New(testutil.NewFailingClient(t), zap.NewNop()))

	rec := testutil.NewRecorder()
	r.ServeHTTP(rec, testutil.NewRequestWithCSRF(http.MethodGet, "/about"))
	rec.AssertStatus(t, http.StatusInternalServerError)
}
