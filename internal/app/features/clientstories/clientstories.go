// internal/app/features/clientstories/clientstories.go
package clientstories

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

// Handler serves client story pages.
type Handler struct {
	asm    *assemble.Assembler
	errLog *errorsfeature.ErrorLogger
	logger *zap.Logger
}

// NewHandler creates a new client stories Handler.
func NewHandler(asm *assemble.Assembler, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{asm: asm, errLog: errLog, logger: logger}
}

// StoryVM is the view model for a client story.
type StoryVM struct {
	viewdata.BaseVM
	Story assemble.ClientStoryView
}

// Routes returns a chi.Router with the client story route mounted.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/{slug}", h.Show)
	return r
}

// Show renders the client story with the slug from the URL.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	slug := normalize.PathSlug(chi.URLParam(r, "slug"))

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	story, found, err := h.asm.ClientStory(ctx, slug)
	if err != nil {
		h.errLog.Fail(w, r, "failed to load client story", err, zap.String("slug", slug))
		return
	}
	if !found {
		errorsfeature.NotFound(w, r)
		return
	}

	vm := StoryVM{
		BaseVM: viewdata.New(r).WithMeta(story.Title, story.HeroSubtitle, false),
		Story:  story,
	}
	templates.Render(w, r, "clientstories/show", vm)
}
