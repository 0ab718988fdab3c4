package api

import (
	"encoding/json"
	"net/http"

	"github.com/ripe-addrlist/ripe-addrlist/src/internal/log"
)

// ErrorCode is the machine-readable part of an error body.
type ErrorCode string

const (
	ErrCodeInvalidRequest ErrorCode = "invalid_request"
	ErrCodeNotFound       ErrorCode = "not_found"
	// ErrCodeConflict is returned while a synchronization is already running.
	ErrCodeConflict      ErrorCode = "conflict"
	ErrCodeForbidden     ErrorCode = "forbidden"
	ErrCodeInternalError ErrorCode = "internal_error"
)

var statusByCode = map[ErrorCode]int{
	ErrCodeInvalidRequest: http.StatusBadRequest,
	ErrCodeNotFound:       http.StatusNotFound,
	ErrCodeConflict:       http.StatusConflict,
	ErrCodeForbidden:      http.StatusForbidden,
	ErrCodeInternalError:  http.StatusInternalServerError,
}

type APIError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// WriteError writes an error body with the status matching code.
func WriteError(w http.ResponseWriter, code ErrorCode, message string) {
	status, ok := statusByCode[code]
	if !ok {
		status = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: APIError{Code: code, Message: message}}); err != nil {
		log.Debugf("Failed to write error response: %v", err)
	}
}

func WriteInvalidRequest(w http.ResponseWriter, message string) {
	WriteError(w, ErrCodeInvalidRequest, message)
}

func WriteNotFound(w http.ResponseWriter, resource string) {
	WriteError(w, ErrCodeNotFound, resource+" not found")
}

func WriteConflict(w http.ResponseWriter, message string) {
	WriteError(w, ErrCodeConflict, message)
}

func WriteForbidden(w http.ResponseWriter, message string) {
	WriteError(w, ErrCodeForbidden, message)
}

func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, ErrCodeInternalError, message)
}
