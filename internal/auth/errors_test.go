package auth

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Is(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", newError(KindConflict, MsgEmailExists))

	assert.ErrorIs(t, err, ErrConflict)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, newError(KindConflict, MsgUsernameExists))
}

func TestErrorResponse(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
		wantData any
	}{
		{
			name:     "not found",
			err:      newError(KindNotFound, MsgUserNotFound),
			wantCode: http.StatusNotFound,
			wantMsg:  MsgUserNotFound,
		},
		{
			name:     "conflict",
			err:      newError(KindConflict, MsgEmailExists),
			wantCode: http.StatusConflict,
			wantMsg:  MsgEmailExists,
		},
		{
			name:     "bad request",
			err:      newError(KindBadRequest, MsgInvalidOTP),
			wantCode: http.StatusBadRequest,
			wantMsg:  MsgInvalidOTP,
		},
		{
			name:     "expired token",
			err:      unauthorized(MsgInvalidRefreshToken, ErrTokenExpired),
			wantCode: http.StatusUnauthorized,
			wantMsg:  MsgInvalidRefreshToken,
			wantData: map[string]string{"error": ReasonTokenExpired},
		},
		{
			name:     "invalid token",
			err:      unauthorized(MsgInvalidRefreshToken, ErrTokenInvalid),
			wantCode: http.StatusUnauthorized,
			wantMsg:  MsgInvalidRefreshToken,
			wantData: map[string]string{"error": ReasonUnauthorized},
		},
		{
			name:     "internal failure hides its text",
			err:      errors.New("pq: password authentication failed"),
			wantCode: http.StatusInternalServerError,
			wantMsg:  "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ErrorResponse(tt.err)
			assert.Equal(t, tt.wantCode, resp.Code)
			assert.Equal(t, tt.wantMsg, resp.Message)
			assert.Equal(t, tt.wantData, resp.Data)
		})
	}
}
