// Route registration for the resource API.

package server

import (
	"net/http"
)

// registerRoutes sets up all API routes.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)

	// Resource collections.
	mux.HandleFunc("GET /api/{resource}", s.handleIndex)
	mux.HandleFunc("POST /api/{resource}", s.handleCreate)

	// Single records.
	mux.HandleFunc("GET /api/{resource}/{id}", s.handleShow)
	mux.HandleFunc("PUT /api/{resource}/{id}", s.handleUpsert)
	mux.HandleFunc("PATCH /api/{resource}/{id}", s.handlePatch)
	mux.HandleFunc("DELETE /api/{resource}/{id}", s.handleDestroy)
}
