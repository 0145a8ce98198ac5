package news

import (
	"fmt"
	"net/http"
	"testing"

	errorsfeature "github.com/dalemusser/stratasite/internal/app/features/errors"
	"github.com/dalemusser/stratasite/internal/app/system/assemble"
	"github.com/dalemusser/stratasite/internal/domain/models"
	"github.com/dalemusser/stratasite/internal/testutil"
	"go.uber.org/zap"
)

func newsDoc(n int, category string) models.Document {
	return models.Document{
		"_id":        fmt.Sprintf("n%02d", n),
		"_type":      models.TypeNews,
		"title":      fmt.Sprintf("Headline %02d", n),
		"category":   category,
		"_createdAt": fmt.Sprintf("2024-01-%02dT12:00:00Z", n),
		"bodyHtml":   "<p>Story body</p><script>alert(1)</script>",
	}
}

func newRouter(t *testing.T, docs ...models.Document) http.Handler {
	t.Helper()
	testutil.MustBootTemplates(t)
	client, _ := testutil.NewFixtureClient(t, docs...)
	asm := assemble.New(client, zap.NewNop())
	return Routes(NewHandler(asm, errorsfeature.NewErrorLogger(zap.NewNop()), zap.NewNop()))
}

func get(r http.Handler, target string) *testutil.ResponseRecorder {
	rec := testutil.NewRecorder()
	r.ServeHTTP(rec, testutil.NewRequestWithCSRF(http.MethodGet, target))
	return rec
}

func TestList(t *testing.T) {
	var docs []models.Document
	for i := 1; i <= 12; i++ {
		category := models.NewsPressReleases
		if i%2 == 0 {
			category = models.NewsEvents
		}
		docs = append(docs, newsDoc(i, category))
	}
	r := newRouter(t, docs...)

	tests := []struct {
		name    string
		target  string
		status  int
		want    []string
		notWant []string
	}{
		{
			name:    "first page",
			target:  "/",
			status:  http.StatusOK,
			want:    []string{"Headline 12", "Headline 03", "/news?page=2"},
			notWant: []string{"Headline 02", "Newer"},
		},
		{
			name:    "second page",
			target:  "/?page=2",
			status:  http.StatusOK,
			want:    []string{"Headline 02", "Headline 01", "Newer"},
			notWant: []string{"Headline 03", "Older"},
		},
		{
			name:    "category",
			target:  "/?category=" + models.NewsPressReleases,
			status:  http.StatusOK,
			want:    []string{"Headline 11", "Headline 01", `aria-current="true">Press Release`},
			notWant: []string{"Headline 12", "Older"},
		},
		{name: "empty page", target: "/?page=9", status: http.StatusOK, want: []string{"No news yet."}},
		{name: "unknown category", target: "/?category=gossip", status: http.StatusBadRequest, want: []string{"Category must be one of"}},
		{name: "page zero", target: "/?page=0", status: http.StatusBadRequest, want: []string{"Page must be at least 1."}},
		{name: "page not a number", target: "/?page=two", status: http.StatusBadRequest},
		{name: "page past the last allowed", target: fmt.Sprintf("/?page=%d", MaxPage+1), status: http.StatusBadRequest, want: []string{"Page must be at most 1000."}},
		{name: "page near int max", target: "/?page=9223372036854775807", status: http.StatusBadRequest},
		{name: "page overflowing int", target: "/?page=99999999999999999999", status: http.StatusBadRequest},
		{name: "padded category", target: "/?category=%20" + models.NewsPressReleases + "%20", status: http.StatusOK, want: []string{"Headline 11"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(r, tt.target)
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

func TestShow(t *testing.T) {
	r := newRouter(t, newsDoc(5, models.NewsPressReleases))

	rec := get(r, "/n05")
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "<h1>Headline 05</h1>")
	rec.AssertContains(t, "<p>Story body</p>")
	rec.AssertContains(t, "January 5, 2024")
	rec.AssertNotContains(t, "<script>alert(1)</script>")

	get(r, "/n99").AssertStatus(t, http.StatusNotFound)
}

func TestListURL(t *testing.T) {
	tests := []struct {
		category string
		page     int
		want     string
	}{
		{"", 1, "/news"},
		{"", 3, "/news?page=3"},
		{models.NewsEvents, 1, "/news?category=" + models.NewsEvents},
		{models.NewsEvents, 2, "/news?category=" + models.NewsEvents + "&page=2"},
	}
	for _, tt := range tests {
		if got := listURL(tt.category, tt.page); got != tt.want {
			t.Errorf("listURL(%q, %d) = %q, want %q", tt.category, tt.page, got, tt.want)
		}
	}
}
