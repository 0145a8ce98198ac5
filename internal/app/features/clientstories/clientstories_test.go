package clientstories

import (
	"net/http"
	"testing"

	errorsfeature "github.com/dalemusser/stratasite/internal/app/features/errors"
	"github.com/dalemusser/stratasite/internal/app/system/assemble"
	"github.com/dalemusser/stratasite/internal/domain/models"
	"github.com/dalemusser/stratasite/internal/testutil"
	"go.uber.org/zap"
)

func TestShow(t *testing.T) {
	testutil.MustBootTemplates(t)
	client, _ := testutil.NewFixtureClient(t, models.Document{
		"_id":   "story-acme",
		"_type": models.TypeClientStory,
		"title": "Acme Corp",
		"slug":  map[string]any{"current": "acme"},
		"hero": map[string]any{
			"title":    "How Acme scaled",
			"subtitle": "Three years together",
			"image":    map[string]any{"asset": map[string]any{"_ref": "image-abc123-1200x800-jpg"}},
		},
		"bodyHtml": `<p>It went well.</p><img src="x" onerror="alert(1)">`,
	})
	asm := assemble.New(client, zap.NewNop())
	r := Routes(NewHandler(asm, errorsfeature.NewErrorLogger(zap.NewNop()), zap.NewNop()))

	rec := testutil.NewRecorder()
	r.ServeHTTP(rec, testutil.NewRequestWithCSRF(http.MethodGet, "/acme"))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "<h1>How Acme scaled</h1>")
	rec.AssertContains(t, "Three years together")
	rec.AssertContains(t, "https://cdn.sanity.io/images/test-project/test/abc123-1200x800.jpg")
	rec.AssertContains(t, `alt="Acme Corp"`)
	rec.AssertContains(t, "<p>It went well.</p>")
	rec.AssertNotContains(t, "onerror")

	rec = testutil.NewRecorder()
	r.ServeHTTP(rec, testutil.NewRequestWithCSRF(http.MethodGet, "/globex"))
	rec.AssertStatus(t, http.StatusNotFound)
}
