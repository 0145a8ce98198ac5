package draftpreview

import (
	"net/http"
	"net/url"
	"testing"

	errorsfeature "github.com/dalemusser/stratasite/internal/app/features/errors"
	"github.com/dalemusser/stratasite/internal/app/system/preview"
	"github.com/dalemusser/stratasite/internal/testutil"
	"go.uber.org/zap"
)

const (
	testSecret = "open-sesame"
	testKey    = "k3y-for-draftpreview-tests-0123456789abcdef"
)

func newRouter(t *testing.T, secret string) (http.Handler, *preview.Manager) {
	t.Helper()
	testutil.MustBootTemplates(t)
	mgr, err := preview.NewManager(preview.Config{Secret: secret, SessionKey: testKey}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return Routes(NewHandler(mgr, errorsfeature.NewErrorLogger(zap.NewNop()), zap.NewNop())), mgr
}

func TestEnable(t *testing.T) {
	r, _ := newRouter(t, testSecret)

	tests := []struct {
		name     string
		query    string
		status   int
		location string
		cookie   bool
	}{
		{"redirects to path", "?secret=" + testSecret + "&redirect=/events/summit-2025", http.StatusTemporaryRedirect, "/events/summit-2025", true},
		{"default redirect", "?secret=" + testSecret, http.StatusTemporaryRedirect, "/", true},
		{"presentation tool params", "?sanity-preview-secret=" + testSecret + "&sanity-preview-pathname=%2Fabout", http.StatusTemporaryRedirect, "/about", true},
		{"wrong secret", "?secret=nope&redirect=/", http.StatusUnauthorized, "", false},
		{"missing secret", "", http.StatusUnauthorized, "", false},
		{"external redirect", "?secret=" + testSecret + "&redirect=" + url.QueryEscape("https://evil.example"), http.StatusBadRequest, "", false},
		{"protocol relative redirect", "?secret=" + testSecret + "&redirect=" + url.QueryEscape("//evil.example"), http.StatusBadRequest, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			r.ServeHTTP(rec, testutil.NewRequestWithCSRF(http.MethodGet, "/"+tt.query))

			rec.AssertStatus(t, tt.status)
			if tt.location != "" {
				rec.AssertHeader(t, "Location", tt.location)
			}
			if got := len(rec.Result().Cookies()) > 0; got != tt.cookie {
				t.Errorf("cookie set = %v, want %v", got, tt.cookie)
			}
		})
	}
}

func TestEnable_Disabled(t *testing.T) {
	r, _ := newRouter(t, "")

	rec := testutil.NewRecorder()
	r.ServeHTTP(rec, testutil.NewRequestWithCSRF(http.MethodGet, "/?secret=anything"))
	rec.AssertStatus(t, http.StatusNotFound)
}

func TestEnableThenDisable(t *testing.T) {
	r, mgr := newRouter(t, testSecret)

	rec := testutil.NewRecorder()
	r.ServeHTTP(rec, testutil.NewRequest(http.MethodGet, "/?secret="+testSecret))
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("no preview cookie set")
	}

	var sawPreview bool
	probe := mgr.Middleware(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		sawPreview = preview.Active(req)
	}))
	req := testutil.NewRequest(http.MethodGet, "/events")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	probe.ServeHTTP(testutil.NewRecorder(), req)
	if !sawPreview {
		t.Fatal("request with preview cookie is not in preview")
	}

	form := url.Values{"redirect": {"/events?page=2"}}
	rec = testutil.NewRecorder()
	post := testutil.NewFormRequest("/disable", form)
	for _, c := range cookies {
		post.AddCookie(c)
	}
	r.ServeHTTP(rec, post)
	rec.AssertRedirect(t, "/events?page=2")

	cleared := rec.Result().Cookies()
	if len(cleared) == 0 || cleared[0].MaxAge >= 0 {
		t.Errorf("disable did not expire the cookie: %+v", cleared)
	}
}

func TestDisable_RejectsExternalRedirect(t *testing.T) {
	r, _ := newRouter(t, testSecret)

	rec := testutil.NewRecorder()
	r.ServeHTTP(rec, testutil.NewRequest(http.MethodGet, "/disable?redirect="+url.QueryEscape("https://evil.example")))
	rec.AssertRedirect(t, "/")
}
