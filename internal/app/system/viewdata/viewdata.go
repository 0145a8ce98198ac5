// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/stratasite/internal/app/system/assemble"
	"github.com/dalemusser/stratasite/internal/app/system/preview"
	"github.com/dalemusser/stratasite/internal/app/system/timeouts"
	"github.com/dalemusser/stratasite/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/gorilla/csrf"
)

// BaseVM contains common fields for all view models.
// Embed this struct in your feature-specific view models.
//
// Usage:
//
//	type eventPageData struct {
//	    viewdata.BaseVM
//	    Event assemble.EventView
//	}
//
//	data := eventPageData{
//	    BaseVM: viewdata.NewBaseVM(r, ev.MetaTitle(), "/events"),
//	    Event:  ev,
//	}
type BaseVM struct {
	// Site chrome (settings, navbar and footer singletons)
	SiteName        string
	SiteDescription string
	Nav             []models.NavLink
	FooterLinks     []models.NavLink
	Copyright       string
	Year            int

	// Page context
	Title           string
	MetaDescription string
	CanonicalURL    string
	NoIndex         bool
	BackURL         string
	CurrentPath     string

	// Preview is true when drafts are shown; the layout renders the exit banner.
	Preview bool

	// Security
	CSRFToken string // CSRF token for the preview exit form
}

// ChromeLoader loads the site chrome for a request.
// This is set by bootstrap to avoid circular dependencies.
type ChromeLoader func(ctx context.Context) assemble.Chrome

var (
	chromeLoader ChromeLoader
	baseURL      string
)

// Init sets the chrome loader and the canonical URL prefix.
// Call this once at startup from bootstrap.
func Init(loader ChromeLoader, canonicalBase string) {
	chromeLoader = loader
	baseURL = canonicalBase
}

// NewBaseVM creates a fully populated BaseVM for a page.
//
// Parameters:
//   - r: the HTTP request
//   - title: the page title
//   - backDefault: default URL for the back button if none in request
func NewBaseVM(r *http.Request, title, backDefault string) BaseVM {
	vm := New(r)
	vm.Title = title
	vm.BackURL = httpnav.ResolveBackURL(r, backDefault)
	return vm
}

// New creates a BaseVM with the site chrome loaded through the content client.
// This is the standard way to create a BaseVM for most handlers.
func New(r *http.Request) BaseVM {
	chrome := assemble.DefaultChrome()
	if chromeLoader != nil {
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
		chrome = chromeLoader(ctx)
		cancel()
	}

	vm := BaseVM{
		SiteName:        chrome.SiteTitle,
		SiteDescription: chrome.SiteDescription,
		Nav:             chrome.Nav,
		FooterLinks:     chrome.FooterLinks,
		Copyright:       chrome.Copyright,
		Year:            time.Now().Year(),
		CurrentPath:     httpnav.CurrentPath(r),
		CanonicalURL:    baseURL + r.URL.Path,
		Preview:         preview.Active(r),
		CSRFToken:       csrf.Token(r),
	}
	vm.MetaDescription = chrome.SiteDescription
	return vm
}

// WithMeta sets the page metadata used by the head partial.
func (vm BaseVM) WithMeta(title, description string, noIndex bool) BaseVM {
	vm.Title = title
	if description != "" {
		vm.MetaDescription = description
	}
	vm.NoIndex = noIndex || vm.Preview
	return vm
}
