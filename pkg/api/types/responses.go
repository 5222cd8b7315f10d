// Package types provides shared API types used by both the server and the
// client, ensuring a single wire contract.
package types

// ErrorResponse is the standard error payload for every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// HealthResponse is a simple health check response.
type HealthResponse struct {
	Status string `json:"status"`
	Uptime int    `json:"uptime,omitempty"`
}
