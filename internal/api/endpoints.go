package api

// Authentication endpoints
const (
	AuthGroup = "/auth"

	AuthRegister       = "/auth/register"
	AuthLogin          = "/auth/login"
	AuthRefresh        = "/auth/refresh"
	AuthForgotPassword = "/auth/forgot-password"
	AuthVerifyOTP      = "/auth/verify-otp"
	AuthResetPassword  = "/auth/reset-password"
	AuthLogout         = "/auth/logout"
	AuthMe             = "/auth/me"
	AuthAdminUser      = "/auth/admin/users/:id"
)

// Operational endpoints
const (
	Health  = "/healthz"
	Metrics = "/metrics"
)

// PublicEndpoints defines endpoints that don't require authentication
var PublicEndpoints = map[string]bool{
	AuthRegister:       true,
	AuthLogin:          true,
	AuthRefresh:        true,
	AuthForgotPassword: true,
	AuthVerifyOTP:      true,
	AuthResetPassword:  true,
	Health:             true,
	Metrics:            true,
}

// IsPublic reports whether path is served without an access token.
func IsPublic(path string) bool {
	isPublic, exists := PublicEndpoints[path]
	return exists && isPublic
}
