package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// WriteJSON writes a JSON response with the given status code and data.
// Sets Content-Type to application/json before writing the status code.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data) // Write error intentionally ignored in response helper
}

// errorResponse is the standard error response format.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteError writes a standard error response with the given status code,
// error code, and human-readable message.
func WriteError(w http.ResponseWriter, status int, errorCode, message string) {
	WriteJSON(w, status, errorResponse{
		Error:   errorCode,
		Message: message,
	})
}

// Error codes shared by every endpoint.
const (
	codeInvalidRequest  = "invalid_request"
	codeValidationError = "validation_error"
	codeInternalError   = "internal_error"
)

// writeValidation writes a 400 validation_error response.
func writeValidation(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, codeValidationError, message)
}

// writeInternal writes a 500 response without leaking err to the client.
func writeInternal(w http.ResponseWriter) {
	WriteError(w, http.StatusInternalServerError, codeInternalError, "An unexpected error occurred")
}

// listResponse wraps collection endpoints so the body is always an object.
type listResponse[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

// writeList writes items as a listResponse with status 200.
func writeList[T any](w http.ResponseWriter, items []T) {
	if items == nil {
		items = []T{}
	}
	WriteJSON(w, http.StatusOK, listResponse[T]{Items: items, Count: len(items)})
}

// ParseJSON decodes the request body as JSON into v.
// It validates that the Content-Type header is application/json and
// returns an error for missing/incorrect content type or malformed JSON.
func ParseJSON(r *http.Request, v any) error {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(ct, "application/json") {
		return fmt.Errorf("Request body must be valid JSON with Content-Type: application/json")
	}

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("Request body must be valid JSON with Content-Type: application/json")
	}
	if dec.More() {
		return fmt.Errorf("Request body must contain a single JSON object")
	}

	return nil
}
