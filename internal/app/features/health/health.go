// internal/app/features/health/health.go
package health

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dalemusser/stratasite/internal/app/system/tasks"
	"github.com/dalemusser/stratasite/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ContentPinger is the part of the content client health checks use.
type ContentPinger interface {
	Ping(ctx context.Context) error
	SourceName() string
}

// Handler provides health check endpoints.
type Handler struct {
	content     ContentPinger
	probe       *tasks.ContentProbe
	mongoClient *mongo.Client
	logger      *zap.Logger
}

// NewHandler creates a new health check Handler. probe and mongoClient may
// be nil; without a probe, readiness pings the content source itself.
func NewHandler(content ContentPinger, probe *tasks.ContentProbe, mongoClient *mongo.Client, logger *zap.Logger) *Handler {
	return &Handler{
		content:     content,
		probe:       probe,
		mongoClient: mongoClient,
		logger:      logger,
	}
}

// Response represents the health check response.
type Response struct {
	Status   string            `json:"status"`
	Source   string            `json:"source,omitempty"`
	Services map[string]string `json:"services,omitempty"`
}

// Routes mounts the full check at / with /ready and /live beside it.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.Check)
	r.Get("/ready", h.Ready)
	r.Get("/live", h.Live)
	return r
}

// MountRootEndpoints adds the probe paths orchestrators expect at the
// root: /ready, /readyz and /livez.
func MountRootEndpoints(r chi.Router, h *Handler) {
	r.Get("/ready", h.Ready)
	r.Get("/readyz", h.Ready)
	r.Get("/livez", h.Live)
}

// dependency is one pinged backend.
type dependency struct {
	name string
	ping func(context.Context) error
}

func (h *Handler) dependencies() []dependency {
	deps := []dependency{{name: "content", ping: h.content.Ping}}
	if h.mongoClient != nil {
		deps = append(deps, dependency{name: "mongodb", ping: func(ctx context.Context) error {
			return h.mongoClient.Ping(ctx, readpref.Primary())
		}})
	}
	return deps
}

// Check pings every backend concurrently and reports each. Any failure
// degrades the response to 503.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	deps := h.dependencies()
	results := make([]error, len(deps))
	var g errgroup.Group
	for i, d := range deps {
		g.Go(func() error {
			results[i] = d.ping(ctx)
			return nil
		})
	}
	_ = g.Wait()

	resp := Response{Status: "ok", Source: h.content.SourceName(), Services: make(map[string]string, len(deps))}
	for i, d := range deps {
		if err := results[i]; err != nil {
			resp.Status = "degraded"
			resp.Services[d.name] = "unavailable"
			h.logger.Warn("health check failed",
				zap.String("service", d.name),
				zap.String("source", resp.Source),
				zap.Error(err))
			continue
		}
		resp.Services[d.name] = "ok"
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

// Ready checks if the service is ready to accept requests.
// Used by Kubernetes readiness probes. When the background ping job has
// reported, its last result is used instead of a fresh round trip.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if !h.ready(r.Context()) {
		writeJSON(w, http.StatusServiceUnavailable, Response{Status: "not ready"})
		return
	}
	writeJSON(w, http.StatusOK, Response{Status: "ready"})
}

func (h *Handler) ready(ctx context.Context) bool {
	if h.probe != nil {
		if healthy, at := h.probe.Healthy(); !at.IsZero() {
			if !healthy {
				h.logger.Warn("readiness check failed",
					zap.String("source", h.content.SourceName()),
					zap.Time("checked_at", at))
			}
			return healthy
		}
	}

	ctx, cancel := context.WithTimeout(ctx, timeouts.Ping())
	defer cancel()
	if err := h.content.Ping(ctx); err != nil {
		h.logger.Warn("readiness check failed", zap.Error(err))
		return false
	}
	return true
}

// Live checks if the service is alive.
// Used by Kubernetes liveness probes.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Response{Status: "alive"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
