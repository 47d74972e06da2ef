// Package api exposes the catalog over HTTP with huma on a chi router.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mybglist/mybglist-server/internal/cache"
	"github.com/mybglist/mybglist-server/internal/ratelimit"
	"github.com/mybglist/mybglist-server/internal/validation"
)

// Route prefixes.
const (
	boardGamesPath = "/api/v1/boardgames"
	domainsPath    = "/api/v1/domains"
	mechanicsPath  = "/api/v1/mechanics"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options carries the HTTP settings that shape the router.
type Options struct {
	CORSOrigins []string
	// AuthLimiter bounds the account endpoints per client IP. Nil disables limiting.
	AuthLimiter *ratelimit.KeyedRateLimiter
}

// Server is the HTTP API server.
type Server struct {
	db        Pinger
	cache     *cache.Cache
	services  *Services
	validator *validation.Validator
	limiter   *ratelimit.KeyedRateLimiter
	router    *chi.Mux
	api       huma.API
	logger    *slog.Logger
}

// NewServer creates a new API server with all routes registered.
func NewServer(
	db Pinger,
	c *cache.Cache,
	services *Services,
	tokens TokenVerifier,
	opts Options,
	logger *slog.Logger,
) *Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(echoRequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}))
	router.Use(authMiddleware(tokens))

	humaConfig := huma.DefaultConfig("MyBGList API", "1.0.0")
	humaConfig.Info.Description = "Board game catalog with paged, sortable listings and dataset ingestion."
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}

	s := &Server{
		db:        db,
		cache:     c,
		services:  services,
		validator: validation.New(),
		limiter:   opts.AuthLimiter,
		router:    router,
		api:       humachi.New(router, humaConfig),
		logger:    logger,
	}
	RegisterErrorHandler(logger)
	s.registerRoutes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API returns the huma API, for OpenAPI export.
func (s *Server) API() huma.API {
	return s.api
}

func (s *Server) registerRoutes() {
	s.registerHealthRoutes()
	s.registerBoardGameRoutes()
	s.registerDomainRoutes()
	s.registerMechanicRoutes()
	s.registerSeedRoutes()
	s.registerAccountRoutes()
}

// echoRequestID returns the request ID to the client so error reports can
// quote it.
func echoRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := middleware.GetReqID(r.Context()); id != "" {
			w.Header().Set(middleware.RequestIDHeader, id)
		}
		next.ServeHTTP(w, r)
	})
}
