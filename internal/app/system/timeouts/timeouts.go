// Package timeouts holds the request budgets for calls into the content
// store (Sanity, the Mongo mirror or the markdown directory).
//
// Ping bounds /health, /ready and the background content ping. Short
// bounds a single document fetch: an event, news post or client story by
// slug, and the site settings and navigation loaded for every page.
// Medium bounds a listing query or a page whose builder blocks fan out
// into further queries. Long bounds a full reload of the markdown
// directory. The Sanity HTTP client carries its own sanity_timeout; when
// that fires first the call fails as a transient store error, not as the
// end of the request context.
package timeouts

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Budgets used until Configure is called; timeout_short and timeout_medium
// override the middle two.
const (
	DefaultPing   = 2 * time.Second
	DefaultShort  = 5 * time.Second
	DefaultMedium = 10 * time.Second
	DefaultLong   = 30 * time.Second
)

var mu sync.RWMutex

var (
	ping   = DefaultPing
	short  = DefaultShort
	medium = DefaultMedium
	long   = DefaultLong
)

// Ping returns the budget for one content store ping.
func Ping() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return ping
}

// Short returns the budget for a by-slug fetch or the settings and
// navigation lookup.
func Short() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return short
}

// Medium returns the budget for a listing or a page and all of its blocks.
func Medium() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return medium
}

// Long returns the budget for the scheduled markdown reload job.
func Long() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return long
}

// Config holds content store budgets. Zero or negative fields leave the
// current value in place.
type Config struct {
	Ping   time.Duration
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
}

// Configure replaces the budgets named in cfg.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	if cfg.Ping > 0 {
		ping = cfg.Ping
	}
	if cfg.Short > 0 {
		short = cfg.Short
	}
	if cfg.Medium > 0 {
		medium = cfg.Medium
	}
	if cfg.Long > 0 {
		long = cfg.Long
	}
}

// Reset restores the built-in budgets.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	ping = DefaultPing
	short = DefaultShort
	medium = DefaultMedium
	long = DefaultLong
}

// Current returns the budgets in effect.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return Config{Ping: ping, Short: short, Medium: medium, Long: long}
}

// WithTimeout derives a context bounded by timeout for a background content
// job. The returned cancel func logs a warning naming the job when the
// deadline was hit.
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, job string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("content job exceeded its budget",
				zap.String("job", job),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
