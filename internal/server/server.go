package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/elskow/food-review/internal/api"
	"github.com/elskow/food-review/internal/auth"
	"github.com/elskow/food-review/internal/config"
)

type Server struct {
	config *config.AppConfig
	log    *zap.Logger
	echo   *echo.Echo
	http   *http.Server
}

type Params struct {
	fx.In

	Config         *config.AppConfig
	Logger         *zap.Logger
	AuthHandler    *auth.Handler
	AuthMiddleware *auth.AuthMiddleware
	Registry       *prometheus.Registry
}

type route struct {
	method  string
	path    string
	handler echo.HandlerFunc
	extra   []echo.MiddlewareFunc
}

func NewServer(p Params) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.IPExtractor = newIPExtractor(p.Config.Server.TrustedProxies)
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger(p.Logger))

	limiter := NewRateLimiter(p.Config.RateLimit)

	routes := []route{
		{http.MethodPost, api.AuthRegister, p.AuthHandler.Register, nil},
		{http.MethodPost, api.AuthLogin, p.AuthHandler.Login, nil},
		{http.MethodPost, api.AuthRefresh, p.AuthHandler.Refresh, nil},
		{http.MethodPost, api.AuthForgotPassword, p.AuthHandler.ForgotPassword, nil},
		{http.MethodPost, api.AuthVerifyOTP, p.AuthHandler.VerifyOTP, nil},
		{http.MethodPost, api.AuthResetPassword, p.AuthHandler.ResetPassword, nil},
		{http.MethodPost, api.AuthLogout, p.AuthHandler.Logout, nil},
		{http.MethodGet, api.AuthMe, p.AuthHandler.Me, nil},
		{http.MethodGet, api.AuthAdminUser, p.AuthHandler.GetUser, []echo.MiddlewareFunc{auth.RequireRole(auth.RoleAdmin)}},
	}

	for _, r := range routes {
		var mws []echo.MiddlewareFunc
		if api.IsPublic(r.path) {
			mws = append(mws, limiter.Middleware())
		} else {
			mws = append(mws, p.AuthMiddleware.RequireAuth)
		}
		mws = append(mws, r.extra...)
		e.Add(r.method, r.path, r.handler, mws...)
	}

	e.GET(api.Health, func(c echo.Context) error {
		return c.JSON(http.StatusOK, auth.NewResponse(http.StatusOK, "ok", nil))
	})
	e.GET(api.Metrics, echo.WrapHandler(promhttp.HandlerFor(p.Registry, promhttp.HandlerOpts{})))

	addr := net.JoinHostPort(p.Config.Server.Host, p.Config.Server.Port)

	return &Server{
		config: p.Config,
		log:    p.Logger,
		echo:   e,
		http: &http.Server{
			Addr:              addr,
			ReadHeaderTimeout: p.Config.Server.ReadTimeout,
		},
	}
}

// newIPExtractor resolves the client address the rate limiter keys on. With no
// trusted proxies the peer address is used and X-Forwarded-For is ignored.
func newIPExtractor(trustedProxies []string) echo.IPExtractor {
	if len(trustedProxies) == 0 {
		return echo.ExtractIPDirect()
	}

	options := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, cidr := range trustedProxies {
		if _, ipNet, err := net.ParseCIDR(cidr); err == nil {
			options = append(options, echo.TrustIPRange(ipNet))
		}
	}
	return echo.ExtractIPFromXFFHeader(options...)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start() error {
	s.log.Info("Starting HTTP server",
		zap.String("address", s.http.Addr),
		zap.Object("config", serverConfigToField(s.config)),
	)

	if err := s.echo.StartServer(s.http); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to serve: %w", err)
	}

	return nil
}

func serverConfigToField(config *config.AppConfig) zapcore.ObjectMarshaler {
	return zapcore.ObjectMarshalerFunc(func(enc zapcore.ObjectEncoder) error {
		enc.AddString("environment", os.Getenv("APP_ENV"))
		enc.AddDuration("access_token_ttl", config.Auth.AccessTokenDuration)
		enc.AddDuration("refresh_token_ttl", config.Auth.RefreshTokenDuration)
		enc.AddDuration("otp_ttl", config.Auth.OTPDuration)
		enc.AddString("mail_provider", config.Mail.Provider)
		return nil
	})
}

func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("shutting down HTTP server")
	return s.echo.Shutdown(ctx)
}

func requestLogger(log *zap.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogMethod:    true,
		LogURI:       true,
		LogRemoteIP:  true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("ip", v.RemoteIP),
				zap.String("request_id", v.RequestID),
			}
			if v.Error != nil {
				log.Error("request", append(fields, zap.Error(v.Error))...)
				return nil
			}
			log.Info("request", fields...)
			return nil
		},
	})
}
