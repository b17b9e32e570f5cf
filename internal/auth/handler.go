package auth

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type RegisterRequest struct {
	FirstName *string `json:"first_name" validate:"omitempty,max=255"`
	LastName  *string `json:"last_name" validate:"omitempty,max=255"`
	Username  string  `json:"username" validate:"required,max=50"`
	Email     string  `json:"email" validate:"required,email,max=255"`
	Password  string  `json:"password" validate:"required"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	NewPassword string `json:"newPassword" validate:"required"`
}

type Handler struct {
	service  *Service
	validate *validator.Validate
	log      *zap.Logger
}

func NewHandler(service *Service, log *zap.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		log:      log,
	}
}

func (h *Handler) Register(c echo.Context) error {
	var req RegisterRequest
	if resp := h.bind(c, &req); resp != nil {
		return respond(c, *resp)
	}

	h.log.Info("handling register request", zap.String("username", req.Username))

	err := h.service.Register(c.Request().Context(), RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		return h.fail(c, "register", err)
	}

	return respond(c, NewResponse(http.StatusCreated, MsgRegistered, nil))
}

func (h *Handler) Login(c echo.Context) error {
	var req LoginRequest
	if resp := h.bind(c, &req); resp != nil {
		return respond(c, *resp)
	}

	result, err := h.service.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return h.fail(c, "login", err)
	}

	return respond(c, NewResponse(http.StatusOK, MsgLoggedIn, result))
}

func (h *Handler) Refresh(c echo.Context) error {
	var req RefreshRequest
	if resp := h.bind(c, &req); resp != nil {
		return respond(c, *resp)
	}

	accessToken, err := h.service.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return h.fail(c, "refresh", err)
	}

	return respond(c, NewResponse(http.StatusOK, MsgRefreshed, map[string]string{
		"accessToken": accessToken,
	}))
}

func (h *Handler) ForgotPassword(c echo.Context) error {
	var req ForgotPasswordRequest
	if resp := h.bind(c, &req); resp != nil {
		return respond(c, *resp)
	}

	if err := h.service.SendResetPasswordOTP(c.Request().Context(), req.Email); err != nil {
		return h.fail(c, "forgot password", err)
	}

	return respond(c, NewResponse(http.StatusOK, MsgOTPSent, nil))
}

func (h *Handler) VerifyOTP(c echo.Context) error {
	var req VerifyOTPRequest
	if resp := h.bind(c, &req); resp != nil {
		return respond(c, *resp)
	}

	if err := h.service.VerifyResetPasswordOTP(c.Request().Context(), req.Email, req.OTP); err != nil {
		return h.fail(c, "verify otp", err)
	}

	return respond(c, NewResponse(http.StatusOK, MsgOTPVerified, nil))
}

func (h *Handler) ResetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if resp := h.bind(c, &req); resp != nil {
		return respond(c, *resp)
	}

	if err := h.service.ResetPassword(c.Request().Context(), req.Email, req.NewPassword); err != nil {
		return h.fail(c, "reset password", err)
	}

	return respond(c, NewResponse(http.StatusOK, MsgPasswordReset, nil))
}

func (h *Handler) Logout(c echo.Context) error {
	user, ok := UserFromContext(c.Request().Context())
	if !ok {
		return respond(c, ErrorResponse(unauthorized(ReasonUnauthorized, nil)))
	}

	if err := h.service.Logout(c.Request().Context(), user.ID); err != nil {
		return h.fail(c, "logout", err)
	}

	return respond(c, NewResponse(http.StatusOK, MsgLoggedOut, nil))
}

func (h *Handler) Me(c echo.Context) error {
	user, ok := UserFromContext(c.Request().Context())
	if !ok {
		return respond(c, ErrorResponse(unauthorized(ReasonUnauthorized, nil)))
	}

	return respond(c, NewResponse(http.StatusOK, MsgProfile, user.Profile()))
}

// GetUser returns another user's profile. Routed behind the ADMIN role guard.
func (h *Handler) GetUser(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return respond(c, NewResponse(http.StatusBadRequest, "invalid user id", nil))
	}

	profile, err := h.service.GetProfile(c.Request().Context(), uint(id))
	if err != nil {
		return h.fail(c, "get user", err)
	}

	return respond(c, NewResponse(http.StatusOK, MsgProfile, profile))
}

// bind decodes and validates the request body. A non-nil result is the 400
// response to send back.
func (h *Handler) bind(c echo.Context, req any) *Response {
	if err := c.Bind(req); err != nil {
		resp := NewResponse(http.StatusBadRequest, "invalid request body", nil)
		return &resp
	}

	if err := h.validate.Struct(req); err != nil {
		h.log.Warn("invalid request",
			zap.String("path", c.Path()),
			zap.String("error", err.Error()))
		resp := NewResponse(http.StatusBadRequest, "invalid request", validationDetails(err))
		return &resp
	}

	return nil
}

func (h *Handler) fail(c echo.Context, operation string, err error) error {
	var authErr *Error
	if !errors.As(err, &authErr) {
		h.log.Error(operation+" failed", zap.Error(err))
	}
	return respond(c, ErrorResponse(err))
}

func respond(c echo.Context, resp Response) error {
	return c.JSON(resp.Code, resp)
}

func validationDetails(err error) []map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	details := make([]map[string]string, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, map[string]string{
			"field": fe.Field(),
			"rule":  fe.Tag(),
		})
	}
	return details
}
