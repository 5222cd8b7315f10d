package server

import (
	"encoding/json"
	"net/http"

	types "github.com/getcrudd/crudd/pkg/api/types"
)

// Type aliases pointing to the canonical shared types.
type (
	ErrorResponse  = types.ErrorResponse
	HealthResponse = types.HealthResponse
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, errCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Error:   errCode,
		Message: message,
	})
}

// writeServerError is the single responder for unexpected store and runtime
// failures: a generic 500 carrying the error detail, so no backend-specific
// error shape leaks into the API.
func writeServerError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "server_error", err.Error())
}

// writeNotFound writes a 404 with an empty body.
func writeNotFound(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNotFound)
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Uptime: s.Uptime(),
	})
}
