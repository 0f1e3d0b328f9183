package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/KaramelBytes/cafesales-cli/internal/analysis"
)

// APIError is the JSON error body returned by every endpoint.
type APIError struct {
	StatusCode int    `json:"status_code"`
	ErrorCode  string `json:"error_code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string { return e.Message }

// Render implements render.Renderer.
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

func errBadRequest(code string, err error) *APIError {
	return &APIError{StatusCode: http.StatusBadRequest, ErrorCode: code, Message: err.Error()}
}

// toAPIError maps analysis errors onto HTTP statuses.
func toAPIError(err error) *APIError {
	var uv *analysis.UnknownViewError
	var se *analysis.SchemaError
	switch {
	case errors.As(err, &uv):
		return &APIError{StatusCode: http.StatusNotFound, ErrorCode: "unknown_view", Message: err.Error()}
	case errors.Is(err, analysis.ErrInvertedRange):
		return errBadRequest("invalid_range", err)
	case errors.As(err, &se):
		return &APIError{StatusCode: http.StatusUnprocessableEntity, ErrorCode: "schema", Message: err.Error()}
	}
	return &APIError{StatusCode: http.StatusInternalServerError, ErrorCode: "internal", Message: err.Error()}
}
