// Package draftpreview serves the endpoints that start and end a draft
// preview session. The studio's presentation tool opens
// /api/presentation-draft with the shared secret; the banner's exit form
// posts to /api/presentation-draft/disable.
package draftpreview

import (
	"net/http"

	errorsfeature "github.com/dalemusser/stratasite/internal/app/features/errors"
	"github.com/dalemusser/stratasite/internal/app/system/inputval"
	"github.com/dalemusser/stratasite/internal/app/system/preview"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler starts and ends preview sessions.
type Handler struct {
	mgr    *preview.Manager
	errLog *errorsfeature.ErrorLogger
	logger *zap.Logger
}

// NewHandler creates a new draft preview Handler.
func NewHandler(mgr *preview.Manager, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{mgr: mgr, errLog: errLog, logger: logger}
}

// Routes returns a chi.Router for /api/presentation-draft.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.Enable)
	r.Get("/disable", h.Disable)
	r.Post("/disable", h.Disable)
	return r
}

type redirectInput struct {
	Redirect string `validate:"omitempty,localpath" label:"Redirect"`
}

// Enable checks the preview secret and starts a preview session, then
// redirects to the requested path on this site.
func (h *Handler) Enable(w http.ResponseWriter, r *http.Request) {
	if !h.mgr.Enabled() {
		errorsfeature.NotFound(w, r)
		return
	}

	q := r.URL.Query()
	secret := firstParam(q.Get("secret"), q.Get("sanity-preview-secret"))
	if !h.mgr.CheckSecret(secret) {
		h.logger.Warn("preview secret rejected",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Bool("secret_present", secret != ""))
		errorsfeature.Unauthorized(w, r)
		return
	}

	target, ok := redirectTarget(firstParam(q.Get("redirect"), q.Get("sanity-preview-pathname")))
	if !ok {
		http.Error(w, "Redirect must be a path on this site.", http.StatusBadRequest)
		return
	}

	if err := h.mgr.Enable(w, r); err != nil {
		h.errLog.Fail(w, r, "failed to start preview session", err)
		return
	}
	h.logger.Info("preview session started", zap.String("redirect", target))
	w.Header().Set("Cache-Control", "no-store")
	http.Redirect(w, r, target, http.StatusTemporaryRedirect)
}

// Disable ends the preview session and redirects back. The redirect comes
// from the query string or, for the banner form, the posted value.
func (h *Handler) Disable(w http.ResponseWriter, r *http.Request) {
	target, ok := redirectTarget(r.FormValue("redirect"))
	if !ok {
		target = "/"
	}
	h.mgr.Disable(w, r)
	w.Header().Set("Cache-Control", "no-store")
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// redirectTarget validates a redirect path. Empty means "/".
func redirectTarget(raw string) (string, bool) {
	if res := inputval.Validate(redirectInput{Redirect: raw}); res.HasErrors() {
		return "", false
	}
	if raw == "" {
		return "/", true
	}
	return raw, true
}

func firstParam(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
