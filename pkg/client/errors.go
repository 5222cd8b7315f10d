package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	types "github.com/getcrudd/crudd/pkg/api/types"
)

// ErrNotFound is returned when the server responds with 404.
var ErrNotFound = errors.New("not found")

// APIError is the normalized failure shape for every non-2xx response. Code
// and Message carry the server's error payload when one was present.
type APIError struct {
	Status  int
	Code    string
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed: status %d", e.Status)
}

// Is reports 404 errors as ErrNotFound so callers can branch with errors.Is.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// parseError unwraps the structured error payload from a failed response,
// falling back to the raw body or status when none is present.
func parseError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	body, _ := io.ReadAll(resp.Body)
	var errResp types.ErrorResponse
	if json.Unmarshal(body, &errResp) == nil && errResp.Message != "" {
		apiErr.Code = errResp.Error
		apiErr.Message = errResp.Message
	} else if len(body) > 0 {
		apiErr.Message = string(body)
	}
	return apiErr
}
