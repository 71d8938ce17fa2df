package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	ierrors "github.com/chandu-machineni/iconify/internal/errors"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error      string `json:"error"`
	Code       string `json:"code,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// WriteJSONResponse writes a JSON response with the given data.
func WriteJSONResponse(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// WriteError writes err as an ErrorResponse with the status from HTTPStatus.
func WriteError(w http.ResponseWriter, err error) {
	resp := ErrorResponse{Error: err.Error(), Code: ierrors.GetCode(err)}
	var ie *ierrors.IconifyError
	if errors.As(err, &ie) {
		resp.Error = ie.Message
		resp.Suggestion = ie.Suggestion
	}
	WriteJSONResponse(w, resp, HTTPStatus(err))
}

// HTTPStatus maps an error to a response status.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	}

	switch ierrors.GetCode(err) {
	case ierrors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	case ierrors.ErrCodeCircuitOpen:
		return http.StatusServiceUnavailable
	case ierrors.ErrCodeUpstreamTimeout:
		return http.StatusGatewayTimeout
	case ierrors.ErrCodeUpstreamRejected:
		return http.StatusNotFound
	}

	switch ierrors.GetCategory(err) {
	case ierrors.CategoryValidation:
		return http.StatusBadRequest
	case ierrors.CategoryUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
