package auth

import (
	"errors"
	"net/http"
)

// Response is the envelope every auth endpoint answers with. Code mirrors the
// HTTP status.
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func NewResponse(code int, message string, data any) Response {
	return Response{Code: code, Message: message, Data: data}
}

// ErrorResponse converts a service failure into the envelope. Anything that
// is not a request-level *Error is reported as an internal error without
// leaking its text.
func ErrorResponse(err error) Response {
	var authErr *Error
	if !errors.As(err, &authErr) {
		return NewResponse(http.StatusInternalServerError, "Internal server error", nil)
	}

	var data any
	if authErr.Reason != "" {
		data = map[string]string{"error": authErr.Reason}
	}

	return NewResponse(authErr.Kind.Status(), authErr.Message, data)
}
