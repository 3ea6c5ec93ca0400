package server

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"phishguard/internal/auth"
	"phishguard/internal/cache"
	"phishguard/internal/config"
	pgjson "phishguard/internal/json"
	"phishguard/internal/logger"
	"phishguard/internal/renderer"
	"phishguard/internal/scanner"
	"phishguard/internal/store"
	"phishguard/pkg/models"
)

// Deps are the services the HTTP layer delegates to.
type Deps struct {
	URLScanner   scanner.Scanner[models.URLReport]
	EmailScanner scanner.Scanner[models.EmailReport]
	Store        store.Store
	Auth         *auth.Service
}

type Handler struct {
	urlScanner   scanner.Scanner[models.URLReport]
	emailScanner scanner.Scanner[models.EmailReport]
	urlCache     cache.Store[*models.URLReport]
	emailCache   cache.Store[*models.EmailReport]
	store        store.Store
	auth         *auth.Service
	jsonRenderer renderer.Renderer
	ansiRenderer renderer.Renderer
	limiter      *rateLimiter
	router       http.Handler
	config       *config.Config
	logger       *slog.Logger
}

func NewHandler(cfg *config.Config, deps Deps) *Handler {
	log := logger.Get()

	h := &Handler{
		urlScanner:   deps.URLScanner,
		emailScanner: deps.EmailScanner,
		urlCache:     newCache[*models.URLReport](cfg.Cache, "url", log),
		emailCache:   newCache[*models.EmailReport](cfg.Cache, "email", log),
		store:        deps.Store,
		auth:         deps.Auth,
		jsonRenderer: renderer.NewJSONRenderer(),
		ansiRenderer: renderer.NewANSIRenderer(),
		config:       cfg,
		logger:       log,
	}
	if cfg.RateLimit.Enabled {
		h.limiter = newRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}
	h.router = h.routes()
	return h
}

func newCache[V any](cfg config.CacheConfig, name string, log *slog.Logger) cache.Store[V] {
	switch cfg.Mode {
	case config.CacheModeMem:
		log.Info("cache initialized",
			slog.String("cache", name),
			slog.String("mode", "memory"),
			slog.Duration("ttl", cfg.TTL))
		return cache.NewMemoryStore[V](cfg.TTL)
	case config.CacheModeNone:
		log.Info("cache initialized",
			slog.String("cache", name),
			slog.String("mode", "none"))
		return cache.NewNoOpStore[V]()
	default:
		log.Warn("unknown cache mode, using no-op",
			slog.String("cache", name),
			slog.String("mode", string(cfg.Mode)))
		return cache.NewNoOpStore[V]()
	}
}

func (h *Handler) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(SecurityHeaders)
	r.Use(CORSMiddleware(h.config.App.AllowedOrigins))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		pgjson.WriteError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		pgjson.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/", h.ServeHome)

	r.Route("/api", func(r chi.Router) {
		if h.limiter != nil {
			r.Use(h.limiter.Middleware)
		}

		r.Get("/health", h.ServeHealth)

		r.Get("/scan/url", h.ServeScanURL)
		r.Post("/scan/url", h.ServeScanURL)
		r.Get("/scan/email", h.ServeScanEmail)
		r.Post("/scan/email", h.ServeScanEmail)
		r.Post("/score", h.ServeScore)

		r.Post("/auth/send-otp", h.ServeSendOTP)
		r.Post("/auth/verify-otp", h.ServeVerifyOTP)

		r.Group(func(r chi.Router) {
			r.Use(h.requireStore)

			r.Post("/scans", h.ServeSaveScan)
			r.Get("/scans", h.ServeListScans)
			r.Delete("/scans", h.ServeClearScans)
			r.Delete("/scans/{id}", h.ServeDeleteScan)

			r.Post("/auth/register", h.ServeRegister)
			r.Post("/auth/login", h.ServeLogin)
			r.Post("/auth/reset-password", h.ServeResetPassword)

			r.Post("/contact", h.ServeContact)
		})
	})

	return r
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// Close stops the cache janitors.
func (h *Handler) Close() {
	if c, ok := h.urlCache.(interface{ Close() }); ok {
		c.Close()
	}
	if c, ok := h.emailCache.(interface{ Close() }); ok {
		c.Close()
	}
}

type OutputFormat int

const (
	OutputFormatJSON OutputFormat = iota
	OutputFormatANSI
)

func (f OutputFormat) String() string {
	switch f {
	case OutputFormatANSI:
		return "ansi"
	case OutputFormatJSON:
		return "json"
	default:
		return "unknown"
	}
}

// getOutputFormat picks the renderer for a scan response. JSON is the
// default; ?format=text or a text/plain Accept header selects ANSI.
func (h *Handler) getOutputFormat(r *http.Request) OutputFormat {
	switch strings.ToLower(r.URL.Query().Get("format")) {
	case "text", "ansi":
		return OutputFormatANSI
	case "json":
		return OutputFormatJSON
	}

	accept := r.Header.Get("Accept")
	if strings.Contains(accept, "text/plain") && !strings.Contains(accept, "application/json") {
		return OutputFormatANSI
	}
	return OutputFormatJSON
}
