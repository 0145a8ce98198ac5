// internal/app/features/news/news.go
package news

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	errorsfeature "github.com/dalemusser/stratasite/internal/app/features/errors"
	"github.com/dalemusser/stratasite/internal/app/store/content"
	"github.com/dalemusser/stratasite/internal/app/system/assemble"
	"github.com/dalemusser/stratasite/internal/app/system/inputval"
	"github.com/dalemusser/stratasite/internal/app/system/normalize"
	"github.com/dalemusser/stratasite/internal/app/system/timeouts"
	"github.com/dalemusser/stratasite/internal/app/system/viewdata"
	"github.com/dalemusser/stratasite/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// PerPage is the number of news items on one listing page.
const PerPage = 10

// MaxPage bounds ?page= so the range offset stays small; it matches the
// max rule on listInput.Page.
const MaxPage = 1000

// Handler serves the news listing and news item pages.
type Handler struct {
	asm    *assemble.Assembler
	errLog *errorsfeature.ErrorLogger
	logger *zap.Logger
}

// NewHandler creates a new news Handler.
func NewHandler(asm *assemble.Assembler, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{asm: asm, errLog: errLog, logger: logger}
}

// Routes returns a chi.Router with the news routes mounted.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Get("/{id}", h.Show)
	return r
}

type listInput struct {
	Category string `validate:"omitempty,newscategory" label:"Category"`
	Page     int    `validate:"min=1,max=1000" label:"Page"`
}

// CategoryLink is one entry of the category filter.
type CategoryLink struct {
	Title  string
	URL    string
	Active bool
}

// ListVM is the view model for /news.
type ListVM struct {
	viewdata.BaseVM
	Items      []assemble.NewsView
	Categories []CategoryLink
	Category   string
	Page       int
	PrevURL    string
	NextURL    string
}

// ShowVM is the view model for /news/{id}.
type ShowVM struct {
	viewdata.BaseVM
	Item assemble.NewsView
}

// List renders one page of news, optionally limited to a category.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	in := listInput{Category: normalize.Category(q.Get("category")), Page: 1}
	if p := normalize.QueryParam(q.Get("page")); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			http.Error(w, "Page must be a number.", http.StatusBadRequest)
			return
		}
		in.Page = n
	}
	if res := inputval.Validate(in); res.HasErrors() {
		http.Error(w, res.First(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	// One extra item tells whether a next page exists.
	start := (in.Page - 1) * PerPage
	items, err := h.asm.News(ctx, in.Category, content.Range{Start: start, End: start + PerPage + 1})
	if err != nil {
		h.errLog.Fail(w, r, "failed to list news", err, zap.String("category", in.Category))
		return
	}

	vm := ListVM{
		BaseVM:     viewdata.New(r).WithMeta(listTitle(in.Category), "", false),
		Categories: categoryLinks(in.Category),
		Category:   in.Category,
		Page:       in.Page,
	}
	if len(items) > PerPage {
		items = items[:PerPage]
		vm.NextURL = listURL(in.Category, in.Page+1)
	}
	if in.Page > 1 {
		vm.PrevURL = listURL(in.Category, in.Page-1)
	}
	vm.Items = items
	templates.Render(w, r, "news/index", vm)
}

// Show renders a single news item.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	item, found, err := h.asm.NewsByID(ctx, id)
	if err != nil {
		h.errLog.Fail(w, r, "failed to load news item", err, zap.String("id", id))
		return
	}
	if !found {
		errorsfeature.NotFound(w, r)
		return
	}

	base := viewdata.NewBaseVM(r, "", "/news")
	vm := ShowVM{
		BaseVM: base.WithMeta(item.Title, "", false),
		Item:   item,
	}
	templates.Render(w, r, "news/show", vm)
}

func listTitle(category string) string {
	if category == "" {
		return "News"
	}
	return models.NewsCategoryTitle(category) + " | News"
}

func categoryLinks(active string) []CategoryLink {
	links := []CategoryLink{{Title: "All", URL: "/news", Active: active == ""}}
	for _, c := range models.NewsCategories {
		links = append(links, CategoryLink{
			Title:  c.Title,
			URL:    listURL(c.Value, 1),
			Active: c.Value == active,
		})
	}
	return links
}

func listURL(category string, page int) string {
	q := url.Values{}
	if category != "" {
		q.Set("category", category)
	}
	if page > 1 {
		q.Set("page", strconv.Itoa(page))
	}
	if len(q) == 0 {
		return "/news"
	}
	return "/news?" + q.Encode()
}
