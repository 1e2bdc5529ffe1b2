// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the JSON request and response helpers shared by
// the HTTP handlers.
package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/pdiddy/pdfdesk/internal/errinfo"
)

// MaxJSONBody caps decoded request bodies.
const MaxJSONBody = 1 << 20

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error string       `json:"error"`
	Code  int          `json:"code"`
	Kind  errinfo.Kind `json:"kind,omitempty"`
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// WriteError writes err as an ErrorResponse. The status follows the error
// class; see Status.
func WriteError(w http.ResponseWriter, err error) {
	code := Status(err)
	resp := ErrorResponse{
		Error: errinfo.Message(err, http.StatusText(code)),
		Code:  code,
	}
	var e *errinfo.Error
	if errors.As(err, &e) {
		resp.Kind = e.Kind
	}
	WriteJSON(w, code, resp)
}

// WriteMessage writes a plain error message with an explicit status.
func WriteMessage(w http.ResponseWriter, code int, msg string) {
	WriteJSON(w, code, ErrorResponse{Error: msg, Code: code})
}

// Status maps an error class to an HTTP status: validation 400,
// conflict 409, transformation 422, environment 503. Unclassified errors
// are 500.
func Status(err error) int {
	var e *errinfo.Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case errinfo.KindValidation:
		return http.StatusBadRequest
	case errinfo.KindConflict:
		return http.StatusConflict
	case errinfo.KindTransformation:
		return http.StatusUnprocessableEntity
	case errinfo.KindEnvironment:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// DecodeJSON reads a JSON body into v. Unknown fields and trailing data are
// rejected. An empty body leaves v untouched.
func DecodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return errinfo.Validation("Malformed request body: %v", err)
	}
	if dec.More() {
		return errinfo.Validation("Malformed request body: unexpected trailing data.")
	}
	return nil
}
