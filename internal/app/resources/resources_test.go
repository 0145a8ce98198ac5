package resources

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestAssetsHandler(t *testing.T) {
	h := AssetsHandler("/assets")

	tests := []struct {
		path       string
		wantStatus int
		wantType   string
		wantCache  string
	}{
		{"/assets/css/site.css", http.StatusOK, "text/css", assetMaxAge},
		{"/assets/js/site.js", http.StatusOK, "javascript", assetMaxAge},
		{"/assets/css/missing.css", http.StatusNotFound, "", ""},
		{"/assets/css/", http.StatusOK, "text/html", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantType != "" && !strings.Contains(rec.Header().Get("Content-Type"), tt.wantType) {
				t.Errorf("Content-Type = %q, want %q", rec.Header().Get("Content-Type"), tt.wantType)
			}
			if got := rec.Header().Get("Cache-Control"); got != tt.wantCache {
				t.Errorf("Cache-Control = %q, want %q", got, tt.wantCache)
			}
		})
	}
}
