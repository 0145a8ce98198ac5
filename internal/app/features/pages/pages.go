// internal/app/features/pages/pages.go
package pages

import (
	"context"
	"net/http"

	errorsfeature "github.com/dalemusser/stratasite/internal/app/features/errors"
	"github.com/dalemusser/stratasite/internal/app/system/assemble"
	"github.com/dalemusser/stratasite/internal/app/system/normalize"
	"github.com/dalemusser/stratasite/internal/app/system/timeouts"
	"github.com/dalemusser/stratasite/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler provides page builder page handlers.
type Handler struct {
	asm    *assemble.Assembler
	errLog *errorsfeature.ErrorLogger
	logger *zap.Logger
}

// NewHandler creates a new pages Handler.
func NewHandler(asm *assemble.Assembler, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		asm:    asm,
		errLog: errLog,
		logger: logger,
	}
}

// PageVM is the view model for a page builder page.
type PageVM struct {
	viewdata.BaseVM
	Page assemble.PageView
}

// ServiceRoutes returns a router for /services/{slug}.
func ServiceRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/{slug}", h.Service)
	return r
}

// Page renders the page at /{slug}.
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	h.show(w, r, "page", h.asm.Page)
}

// Service renders the service page at /services/{slug}.
func (h *Handler) Service(w http.ResponseWriter, r *http.Request) {
	h.show(w, r, "service", h.asm.Service)
}

type resolver func(ctx context.Context, slug string) (assemble.PageView, bool, error)

func (h *Handler) show(w http.ResponseWriter, r *http.Request, kind string, resolve resolver) {
	slug := normalize.PathSlug(chi.URLParam(r, "slug"))

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	page, found, err := resolve(ctx, slug)
	if err != nil {
		h.errLog.Fail(w, r, "failed to load "+kind, err, zap.String("slug", slug))
		return
	}
	if !found {
		h.logger.Debug(kind+" not found", zap.String("slug", slug))
		errorsfeature.NotFound(w, r)
		return
	}

	vm := PageVM{
		BaseVM: viewdata.New(r).WithMeta(page.MetaTitle, page.MetaDescription, false),
		Page:   page,
	}
	templates.Render(w, r, "pages/show", vm)
}
