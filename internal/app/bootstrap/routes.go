// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	clientstoriesfeature "github.com/dalemusser/stratasite/internal/app/features/clientstories"
	draftpreviewfeature "github.com/dalemusser/stratasite/internal/app/features/draftpreview"
	errorsfeature "github.com/dalemusser/stratasite/internal/app/features/errors"
	eventsfeature "github.com/dalemusser/stratasite/internal/app/features/events"
	healthfeature "github.com/dalemusser/stratasite/internal/app/features/health"
	homefeature "github.com/dalemusser/stratasite/internal/app/features/home"
	newsfeature "github.com/dalemusser/stratasite/internal/app/features/news"
	pagesfeature "github.com/dalemusser/stratasite/internal/app/features/pages"
	appresources "github.com/dalemusser/stratasite/internal/app/resources"
	"github.com/dalemusser/stratasite/internal/app/system/assemble"
	"github.com/dalemusser/stratasite/internal/app/system/preview"
	"github.com/dalemusser/stratasite/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/middleware"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, the content source, and Startup
// have completed. Every page handler reads through one Page Assembler built
// over deps.Content.
//
// Public routes:
//   - /, /{slug}, /services/{slug}: page builder pages
//   - /events, /events/{slug}: event list and detail
//   - /news, /news/{id}: news list and article
//   - /client-stories/{slug}: client story
//   - /api/presentation-draft: enter and exit draft preview
//   - /health, /ready, /readyz, /livez: probes
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"

	previewMgr, err := preview.NewManager(preview.Config{
		Secret:     appCfg.PreviewSecret,
		SessionKey: appCfg.SessionKey,
		Name:       appCfg.SessionName,
		Domain:     appCfg.SessionDomain,
		MaxAge:     appCfg.SessionMaxAge,
		Secure:     secure,
	}, logger)
	if err != nil {
		logger.Error("preview manager init failed", zap.Error(err))
		return nil, err
	}

	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	loc, err := time.LoadLocation(appCfg.DisplayTimezone)
	if err != nil {
		return nil, err
	}
	asm := assemble.New(deps.Content, logger, assemble.WithLocation(loc))

	// Every BaseVM carries the site chrome and a canonical URL.
	viewdata.Init(asm.Chrome, appCfg.BaseURL)

	// Create error logger for handlers.
	errLog := errorsfeature.NewErrorLogger(logger)

	r := chi.NewRouter()

	// ─────────────────────────────────────────────────────────────────────────────
	// Global Middleware (applies to ALL routes)
	// ─────────────────────────────────────────────────────────────────────────────

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)

	// Request timeout middleware: prevents requests from hanging indefinitely.
	r.Use(chimw.Timeout(30 * time.Second))

	// CORS middleware: must be early in the chain to handle preflight requests.
	r.Use(middleware.CORSFromConfig(coreCfg))

	// Security headers middleware: adds X-Frame-Options, X-Content-Type-Options, etc.
	r.Use(middleware.SecurityHeadersFromConfig(coreCfg))

	// CSRF protection guards the preview exit form. The cookie name avoids
	// collisions with other services on the same domain.
	csrfOpts := []csrf.Option{
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.CookieName("stratasite_csrf"),
		csrf.FieldName("csrf_token"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			logger.Warn("CSRF validation failed",
				zap.String("path", req.URL.Path),
				zap.String("method", req.Method),
				zap.String("reason", csrf.FailureReason(req).Error()),
			)
			http.Error(w, "CSRF token invalid or missing", http.StatusForbidden)
		})),
	}
	// In dev mode, trust localhost origins for CSRF validation.
	trustedOrigins := []string{
		"localhost:8080",
		"localhost:3000",
		"127.0.0.1:8080",
		"127.0.0.1:3000",
	}
	if !secure {
		csrfOpts = append(csrfOpts, csrf.TrustedOrigins(trustedOrigins))
	}
	if appCfg.SessionDomain != "" {
		csrfOpts = append(csrfOpts, csrf.Domain(appCfg.SessionDomain))
	}
	r.Use(csrf.Protect([]byte(appCfg.CSRFKey), csrfOpts...))

	// Preview middleware: marks requests in a preview session so content
	// queries overlay drafts.
	r.Use(previewMgr.Middleware)

	// ─────────────────────────────────────────────────────────────────────────────
	// Routes
	// ─────────────────────────────────────────────────────────────────────────────

	// Health check endpoints for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.Content, contentProbe, deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	healthfeature.MountRootEndpoints(r, healthHandler)

	// Static assets with pre-compressed file support (gzip/brotli)
	// /static/* serves files from disk (static directory)
	r.Handle("/static/*", fileserver.Handler("/static", "static"))

	// /assets/* serves embedded assets (bundled into the binary)
	r.Handle("/assets/*", appresources.AssetsHandler("/assets"))

	// Content assets of the files source (local storage only)
	if deps.Files != nil && (appCfg.StorageType == "local" || appCfg.StorageType == "") {
		r.Handle(appCfg.StorageLocalURL+"/*", fileserver.Handler(appCfg.StorageLocalURL, appCfg.StorageLocalPath))
	}

	// Draft preview enter/exit
	draftHandler := draftpreviewfeature.NewHandler(previewMgr, errLog, logger)
	r.Mount("/api/presentation-draft", draftpreviewfeature.Routes(draftHandler))

	// Events
	eventsHandler := eventsfeature.NewHandler(asm, errLog, appCfg.EventsPageSize, logger)
	r.Mount("/events", eventsfeature.Routes(eventsHandler))

	// News (no slug; articles are addressed by id)
	newsHandler := newsfeature.NewHandler(asm, errLog, logger)
	r.Mount("/news", newsfeature.Routes(newsHandler))

	// Client stories
	storiesHandler := clientstoriesfeature.NewHandler(asm, errLog, logger)
	r.Mount("/client-stories", clientstoriesfeature.Routes(storiesHandler))

	// Page builder pages: services, the home singleton, and top-level pages
	pagesHandler := pagesfeature.NewHandler(asm, errLog, logger)
	r.Mount("/services", pagesfeature.ServiceRoutes(pagesHandler))

	homeHandler := homefeature.NewHandler(asm, errLog, logger)
	r.Get("/", homeHandler.Index)
	r.Get("/{slug}", pagesHandler.Page)

	// 404 catch-all for unmatched routes
	errorsHandler := errorsfeature.NewHandler()
	r.NotFound(errorsHandler.NotFound)

	return r, nil
}
