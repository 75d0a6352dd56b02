package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"doclib/domain/contracts"
	"doclib/domain/paging"
	"doclib/logging"
)

// errorResponse is the JSON body of every failed API call.
type errorResponse struct {
	Error     string `json:"error"`
	SessionID string `json:"session_id,omitempty"`
}

// WriteJSON encodes v with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Default().Warn("Failed to encode response", "error", err)
	}
}

// WriteError writes err as a JSON error body with the status it maps to.
func WriteError(w http.ResponseWriter, err error) {
	WriteJSON(w, StatusForError(err), errorResponse{Error: err.Error()})
}

// StatusForError maps browse errors to HTTP status codes.
// Anything unrecognized is treated as an upstream fetch failure.
func StatusForError(err error) int {
	switch {
	case errors.Is(err, contracts.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, contracts.ErrLoadInFlight),
		errors.Is(err, contracts.ErrSessionErrored),
		errors.Is(err, paging.ErrStalePage):
		return http.StatusConflict
	case errors.Is(err, contracts.ErrListRequired), errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

var errBadRequest = errors.New("bad request")

// decodeBody reads a JSON request body into v. An empty body leaves v untouched.
func decodeBody(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: decode body: %v", errBadRequest, err)
	}
	return nil
}
