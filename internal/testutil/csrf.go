package testutil

import (
	"context"
	"net/http"
)

// csrfTokenKey matches the key used by gorilla/csrf internally.
// This allows us to inject a mock token for testing.
const csrfTokenKey = "gorilla.csrf.Token"

// WithCSRFToken adds a mock CSRF token to the request context.
// This prevents panics or empty tokens when handlers call csrf.Token(r)
// or use viewdata.New which calls csrf.Token internally.
//
// Usage:
//
//	req := httptest.NewRequest(http.MethodGet, "/path", nil)
//	req = testutil.WithCSRFToken(req)
//	handler.ServeHTTP(rec, req)
func WithCSRFToken(r *http.Request) *http.Request {
	ctx := context.WithValue(r.Context(), csrfTokenKey, "test-csrf-token-12345")
	return r.WithContext(ctx)
}

// NewRequestWithCSRF creates an HTTP request with a CSRF token in context.
// Use it for handlers whose pages render the preview exit form.
func NewRequestWithCSRF(method, target string) *http.Request {
	return WithCSRFToken(NewRequest(method, target))
}
