// Package api serves the field registry, validator, renderer and filter
// compiler over HTTP
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/conduit-lang/fieldmeta/internal/locale"
	"github.com/conduit-lang/fieldmeta/internal/orm/query"
	"github.com/conduit-lang/fieldmeta/internal/orm/render"
	"github.com/conduit-lang/fieldmeta/internal/orm/schema"
	"github.com/conduit-lang/fieldmeta/internal/orm/validation"
	"github.com/conduit-lang/fieldmeta/internal/web/cache"
)

const (
	defaultMaxBodySize   = 1 << 20  // 1 MB of JSON
	defaultMaxUploadSize = 10 << 20 // 10 MB per file
)

// API holds the engines behind the HTTP handlers. Engines are built once
// and shared by every request
type API struct {
	registry  *schema.Registry
	locale    *locale.Locale
	validator *validation.Engine
	renderer  *render.Renderer
	compiler  *query.Compiler

	cache    cache.Cache
	cacheTTL time.Duration

	metrics *Metrics
	logger  *zap.Logger

	dialect       query.Dialect
	maxBodySize   int64
	maxUploadSize int64
}

// Option configures an API
type Option func(*API)

// WithLogger sets the logger requests and engine decisions go to
func WithLogger(logger *zap.Logger) Option {
	return func(a *API) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithCache caches static renders in c for ttl. A nil cache disables
// caching
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(a *API) {
		a.cache = c
		a.cacheTTL = ttl
	}
}

// WithDialect selects the dialect /sql compiles for
func WithDialect(d query.Dialect) Option {
	return func(a *API) {
		if d != nil {
			a.dialect = d
		}
	}
}

// WithMetrics records request and engine metrics in m
func WithMetrics(m *Metrics) Option {
	return func(a *API) {
		if m != nil {
			a.metrics = m
		}
	}
}

// WithMaxUploadSize sets the size above which an uploaded file is
// reported as too large
func WithMaxUploadSize(n int64) Option {
	return func(a *API) {
		if n > 0 {
			a.maxUploadSize = n
		}
	}
}

// New creates an API over reg using the conventions of loc
func New(reg *schema.Registry, loc *locale.Locale, opts ...Option) *API {
	if reg == nil {
		reg = schema.NewRegistry()
	}
	if loc == nil {
		loc = locale.Lookup("en")
	}
	a := &API{
		registry:      reg,
		locale:        loc,
		logger:        zap.NewNop(),
		dialect:       query.MySQL,
		maxBodySize:   defaultMaxBodySize,
		maxUploadSize: defaultMaxUploadSize,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.metrics == nil {
		a.metrics = NewMetrics()
	}

	a.validator = validation.New(reg, loc, validation.WithLogger(a.logger))
	a.renderer = render.New(reg, loc)
	a.compiler = query.NewCompiler(reg, loc, query.WithDialect(a.dialect), query.WithLogger(a.logger))
	return a
}

// Metrics returns the metrics the API records
func (a *API) Metrics() *Metrics {
	return a.metrics
}

// Routes returns the HTTP handler of the API
func (a *API) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(a.instrument)
	r.Use(a.recovery)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "not_found", "resource not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})

	r.Get("/healthz", a.handleHealth)
	r.Method(http.MethodGet, "/metrics", a.metrics.Handler())

	r.Get("/fields", a.handleFields)
	r.Get("/fields/{name}", a.handleField)
	r.Post("/validate", a.handleValidate)
	r.Post("/render", a.handleRender)
	r.Post("/sql", a.handleSQL)

	return r
}
