// internal/app/features/home/home.go
package home

import (
	"context"
	"net/http"

	errorsfeature "github.com/dalemusser/stratasite/internal/app/features/errors"
	"github.com/dalemusser/stratasite/internal/app/system/assemble"
	"github.com/dalemusser/stratasite/internal/app/system/timeouts"
	"github.com/dalemusser/stratasite/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Handler provides home page handlers.
type Handler struct {
	asm    *assemble.Assembler
	errLog *errorsfeature.ErrorLogger
	logger *zap.Logger
}

// NewHandler creates a new home Handler.
func NewHandler(asm *assemble.Assembler, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		asm:    asm,
		errLog: errLog,
		logger: logger,
	}
}

// HomeVM is the view model for the home page.
type HomeVM struct {
	viewdata.BaseVM
	Page      assemble.PageView
	HasPage   bool // false until the homePage singleton is published
	Investors []assemble.InvestorView
}

// Routes returns a chi.Router with home routes mounted.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.Index)
	return r
}

// Index renders the home page singleton with the investor list.
// Without a published homePage the landing renders the site name only.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var (
		page      assemble.PageView
		found     bool
		investors []assemble.InvestorView
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		page, found, err = h.asm.Home(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		investors, err = h.asm.Investors(gctx)
		if err != nil {
			// The investor strip is decoration; the page renders without it.
			h.logger.Warn("failed to load investors", zap.Error(err))
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		h.errLog.Fail(w, r, "failed to load home page", err)
		return
	}

	vm := HomeVM{
		BaseVM:    viewdata.New(r),
		Page:      page,
		HasPage:   found,
		Investors: investors,
	}
	if found {
		vm.BaseVM = vm.BaseVM.WithMeta(page.MetaTitle, page.MetaDescription, false)
	}
	templates.Render(w, r, "home/index", vm)
}
