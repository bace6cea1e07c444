package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/graphql-go/graphql"
	"github.com/rs/zerolog"

	"github.com/plantops/assetgraph/pkg/catalog"
	"github.com/plantops/assetgraph/pkg/config"
	"github.com/plantops/assetgraph/pkg/log"
	"github.com/plantops/assetgraph/pkg/metrics"
	"github.com/plantops/assetgraph/pkg/storage"
	"github.com/plantops/assetgraph/pkg/views"
)

// Default rate limit applied to all HTTP traffic.
const (
	defaultRateLimitRPS   = 50
	defaultRateLimitBurst = 100
)

// Server exposes the catalog over GraphQL plus health and metrics endpoints.
type Server struct {
	store    storage.Store
	resolver *catalog.Resolver
	schema   graphql.Schema
	version  string

	httpServer *http.Server
	logger     zerolog.Logger
}

// NewServer builds the schema and wires the HTTP routes.
func NewServer(cfg *config.Config, store storage.Store, version string) (*Server, error) {
	resolver := catalog.NewResolver(store, cfg.MaxPathDepth)
	snapshots := views.NewService(store)

	schema, err := buildSchema(resolver, snapshots)
	if err != nil {
		return nil, fmt.Errorf("build schema: %w", err)
	}

	s := &Server{
		store:    store,
		resolver: resolver,
		schema:   schema,
		version:  version,
		logger:   log.WithComponent("api"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/graphql", s.graphqlHandler)
	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("/ready", s.readyHandler)
	mux.Handle("/metrics", metrics.Handler())

	limiter := newRateLimiter(defaultRateLimitRPS, defaultRateLimitBurst)
	handler := withRequestID(withAccessLog(withCORS(limiter.middleware(mux))))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the HTTP handler for embedding in tests or other servers.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins serving and blocks until the listener fails or is shut down.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.httpServer.Addr).Msg("GraphQL server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Stop drains in-flight requests and closes the listener.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info().Msg("Shutting down GraphQL server")
	return s.httpServer.Shutdown(ctx)
}
