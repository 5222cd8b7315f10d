// Package server implements the REST resource controller: six stateless CRUD
// operations over named record collections, backed by a store.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/getcrudd/crudd/pkg/logging"
	"github.com/getcrudd/crudd/pkg/record"
	"github.com/getcrudd/crudd/pkg/store"
)

// resource pairs a definition with its compiled schema (nil when the
// definition has none).
type resource struct {
	def    record.Definition
	schema *jsonschema.Schema
}

// Server exposes the REST API for a set of resource collections. It holds no
// per-request state; every request is one independent operation against the
// store.
type Server struct {
	dataStore  store.Store
	resources  map[string]*resource
	httpServer *http.Server
	port       int
	startTime  time.Time
	log        *slog.Logger
}

// New creates a Server for the given store and resource definitions. The
// definitions must match the ones the store was constructed with.
func New(port int, dataStore store.Store, defs []record.Definition, opts ...Option) (*Server, error) {
	s := &Server{
		dataStore: dataStore,
		resources: make(map[string]*resource, len(defs)),
		port:      port,
		log:       logging.Nop(),
	}

	for _, def := range defs {
		if err := def.Validate(); err != nil {
			return nil, err
		}
		if _, exists := s.resources[def.Name]; exists {
			return nil, fmt.Errorf("duplicate resource %q", def.Name)
		}
		schema, err := def.CompileSchema()
		if err != nil {
			return nil, err
		}
		s.resources[def.Name] = &resource{def: def, schema: schema}
	}

	for _, opt := range opts {
		opt(s)
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.withMiddleware(mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s, nil
}

// Handler returns the fully wired HTTP handler, middleware included. Useful
// for serving through a custom listener or httptest.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start starts the HTTP server in the background.
func (s *Server) Start() error {
	s.startTime = time.Now()
	s.log.Info("starting resource API", "port", s.port, "resources", len(s.resources))
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Error("resource API error", "error", err)
		}
	}()
	return nil
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

// Uptime returns the server uptime in seconds.
func (s *Server) Uptime() int {
	return int(time.Since(s.startTime).Seconds())
}
