package auth

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindNotFound Kind = iota + 1
	KindConflict
	KindBadRequest
	KindUnauthorized
)

// Status maps a failure kind onto the HTTP-like code of the response envelope.
func (k Kind) Status() int {
	switch k {
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Reasons attached to unauthorized failures so clients can tell an expired
// token (re-login) from a malformed one.
const (
	ReasonTokenExpired = "TOKEN_EXPIRED"
	ReasonUnauthorized = "UNAUTHORIZED"
)

// Error is a request-level failure the caller recovers from locally.
type Error struct {
	Kind    Kind
	Message string
	Reason  string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches on kind so callers can write errors.Is(err, auth.ErrNotFound).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Message == "" && t.Kind == e.Kind
}

var (
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrConflict     = &Error{Kind: KindConflict}
	ErrBadRequest   = &Error{Kind: KindBadRequest}
	ErrUnauthorized = &Error{Kind: KindUnauthorized}
)

func newError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func unauthorized(message string, cause error) *Error {
	reason := ReasonUnauthorized
	if errors.Is(cause, ErrTokenExpired) {
		reason = ReasonTokenExpired
	}
	return &Error{Kind: KindUnauthorized, Message: message, Reason: reason}
}

const (
	MsgEmailExists         = "Email already exists"
	MsgUsernameExists      = "Username already exists"
	MsgUserExists          = "User already exists"
	MsgUserNotFound        = "User not found"
	MsgPasswordIncorrect   = "Password is incorrect"
	MsgInvalidRefreshToken = "Invalid refresh token"
	MsgInvalidOTP          = "Invalid OTP"
	MsgOTPExpired          = "OTP has expired"
	MsgPasswordTooLong     = "Password must not exceed 72 bytes"

	MsgRegistered    = "User registered successfully"
	MsgLoggedIn      = "Login successful"
	MsgRefreshed     = "Token refreshed successfully"
	MsgOTPSent       = "OTP sent successfully"
	MsgOTPVerified   = "OTP verified successfully"
	MsgPasswordReset = "Password reset successfully"
	MsgLoggedOut     = "Logout successful"
	MsgProfile       = "Get user successfully"
)
