package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// Define a custom type for context keys
type contextKey string

const (
	// UserContextKey is the key used to store the authenticated user in the request context
	UserContextKey contextKey = "user"
)

type AuthMiddleware struct {
	service *Service
}

func NewAuthMiddleware(service *Service) *AuthMiddleware {
	return &AuthMiddleware{
		service: service,
	}
}

// RequireAuth accepts a bearer access token and attaches its user to the
// request context. Expired tokens are answered with TOKEN_EXPIRED so clients
// know to refresh or log in again.
func (m *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
		if !ok {
			return respond(c, ErrorResponse(unauthorized(ReasonUnauthorized, nil)))
		}

		user, err := m.service.Authenticate(c.Request().Context(), token)
		if err != nil {
			return respond(c, ErrorResponse(err))
		}

		ctx := context.WithValue(c.Request().Context(), UserContextKey, user)
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

// RequireRole must run after RequireAuth.
func RequireRole(roles ...Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := UserFromContext(c.Request().Context())
			if !ok {
				return respond(c, ErrorResponse(unauthorized(ReasonUnauthorized, nil)))
			}

			for _, role := range roles {
				if user.Role == role {
					return next(c)
				}
			}

			return respond(c, NewResponse(http.StatusForbidden, "FORBIDDEN", nil))
		}
	}
}

// Helper function to get the authenticated user from context
func UserFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(UserContextKey).(*User)
	return user, ok && user != nil
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(prefix):]), true
}
