// internal/app/features/events/events.go
package events

import (
	"context"
	"net/http"

	errorsfeature "github.com/dalemusser/stratasite/internal/app/features/errors"
	"github.com/dalemusser/stratasite/internal/app/store/content"
	"github.com/dalemusser/stratasite/internal/app/system/assemble"
	"github.com/dalemusser/stratasite/internal/app/system/normalize"
	"github.com/dalemusser/stratasite/internal/app/system/timeouts"
	"github.com/dalemusser/stratasite/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// DefaultPageSize is the number of events listed on /events when no size
// is configured.
const DefaultPageSize = 100

const (
	listTitle   = "Events"
	listHeading = "Discover our upcoming events and browse past gatherings"
)

// Handler serves the event listing and event detail pages.
type Handler struct {
	asm      *assemble.Assembler
	errLog   *errorsfeature.ErrorLogger
	pageSize int
	logger   *zap.Logger
}

// NewHandler creates a new events Handler. A pageSize below one falls back
// to DefaultPageSize.
func NewHandler(asm *assemble.Assembler, errLog *errorsfeature.ErrorLogger, pageSize int, logger *zap.Logger) *Handler {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return &Handler{
		asm:      asm,
		errLog:   errLog,
		pageSize: pageSize,
		logger:   logger,
	}
}

// ListVM is the view model for /events.
type ListVM struct {
	viewdata.BaseVM
	Heading  string
	Upcoming []assemble.EventView
	Past     []assemble.EventView
}

// ShowVM is the view model for /events/{slug}.
type ShowVM struct {
	viewdata.BaseVM
	Event assemble.EventView
}

// Routes returns a chi.Router with the event routes mounted.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Get("/{slug}", h.Show)
	return r
}

// List renders upcoming events followed by past ones, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.asm.ListEvents(ctx, content.Range{Start: 0, End: h.pageSize}, true)
	if err != nil {
		h.errLog.Fail(w, r, "failed to list events", err)
		return
	}

	vm := ListVM{
		BaseVM:   viewdata.New(r).WithMeta(listTitle, listHeading, false),
		Heading:  listHeading,
		Upcoming: list.Upcoming,
		Past:     list.Past,
	}
	templates.Render(w, r, "events/index", vm)
}

// Show renders a single event, or the not-found page when no published
// event has the slug.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	slug := normalize.PathSlug(chi.URLParam(r, "slug"))

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	ev, found, err := h.asm.EventBySlug(ctx, slug)
	if err != nil {
		h.errLog.Fail(w, r, "failed to load event", err, zap.String("slug", slug))
		return
	}
	if !found {
		h.logger.Debug("event not found", zap.String("slug", slug))
		errorsfeature.NotFound(w, r)
		return
	}

	base := viewdata.NewBaseVM(r, "", "/events")
	vm := ShowVM{
		BaseVM: base.WithMeta(ev.MetaTitle(), ev.MetaDescription(), ev.NoIndex),
		Event:  ev,
	}
	templates.Render(w, r, "events/show", vm)
}
