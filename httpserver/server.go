package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mowitajm/auth"
	"mowitajm/errs"
	"mowitajm/movie"
	"mowitajm/pkg/config"
	"mowitajm/pkg/jwt"
	"mowitajm/pkg/sentry"
	"mowitajm/review"
	"mowitajm/user"
	"net/http"
	"time"

	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type Server struct {
	// Router is the Echo router instance
	Router *echo.Echo

	// Addr represents the address the server will listen on
	Addr string

	// Allowed origins for CORS
	AllowOrigins []string

	Logger *slog.Logger

	MovieService  movie.Service
	ReviewService review.Service
	UserService   user.Service
	AuthService   auth.Service

	// Identity resolves the signed-in user for every request.
	Identity ContextResolver
	Tokens   TokenParser

	SessionTTL    time.Duration
	CookieSecure  bool
	GoogleEnabled bool
}

func Default(cfg *config.Config) *Server {
	s := Server{
		Router:       echo.New(),
		Addr:         ":8080",
		AllowOrigins: []string{"*"},
		Logger:       slog.Default(),
		Tokens:       jwt.NewJWTProvider(cfg.Auth.JWTSecret, cfg.AccessTTL(), cfg.RefreshTTL()),
		SessionTTL:   cfg.AccessTTL(),
		CookieSecure: cfg.Auth.CookieSecure,
	}
	if cfg.Port != 0 {
		s.Addr = fmt.Sprintf(":%d", cfg.Port)
	}
	if origins := cfg.Origins(); len(origins) > 0 {
		s.AllowOrigins = origins
	}

	renderer, err := NewTemplateRenderer()
	if err != nil {
		panic(err)
	}
	s.Router.Renderer = renderer
	s.Router.Validator = NewValidator()
	s.Router.HTTPErrorHandler = s.customHTTPErrorHandler
	s.Router.HideBanner = true

	s.RegisterGlobalMiddlewares()
	s.Router.StaticFS("/static", echo.MustSubFS(staticFS, "static"))

	s.RegisterHealthRoutes()
	s.RegisterAuthRoutes()
	s.RegisterMovieRoutes()
	s.RegisterReviewRoutes()
	s.RegisterUserRoutes()
	s.RegisterPageRoutes()
	return &s
}

func (s *Server) RegisterGlobalMiddlewares() {
	s.Router.Use(middleware.Recover())
	s.Router.Use(middleware.Secure())
	s.Router.Use(middleware.RequestID())
	s.Router.Use(s.requestLogger())
	s.Router.Use(middleware.Gzip())
	s.Router.Use(sentryecho.New(sentryecho.Options{Repanic: true}))
	s.Router.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(20)))

	// CORS
	if len(s.AllowOrigins) > 0 {
		s.Router.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     s.AllowOrigins,
			AllowCredentials: !containsWildcard(s.AllowOrigins),
		}))
	}

	s.Router.Use(s.identityMiddleware())
	s.Router.Use(s.viewerMiddleware)
}

func (s *Server) requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := slog.LevelInfo
			if v.Status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("request_id", v.RequestID),
			}
			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}
			s.Logger.LogAttrs(c.Request().Context(), level, "request", attrs...)
			return nil
		},
	})
}

func (s *Server) Start() error {
	return s.Router.Start(s.Addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.Router.Shutdown(ctx)
}

// customHTTPErrorHandler maps application errors to HTTP status codes. API
// routes get an APIResponse, pages get the error page.
func (s *Server) customHTTPErrorHandler(err error, c echo.Context) {
	// Don't write response if already committed
	if c.Response().Committed {
		return
	}

	code, message := statusFor(err)
	if code >= http.StatusInternalServerError {
		s.Logger.ErrorContext(c.Request().Context(), "request failed", "error", err, "path", c.Path())
		sentry.WithContext(c).Error(err)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else if isAPIRequest(c) {
		err = writeError(c, code, message, err)
	} else {
		err = s.render(c, code, "error", message, errorPage{Status: code, Message: message})
	}
	if err != nil {
		s.Logger.Error("cannot write error response", "error", err)
	}
}

type errorPage struct {
	Status  int
	Message string
}

func statusFor(err error) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Internal != nil && he.Code == http.StatusBadRequest {
			return he.Code, "invalid request body"
		}
		return he.Code, fmt.Sprint(he.Message)
	}

	switch errs.ErrorCode(err) {
	case errs.EINVALID:
		return http.StatusBadRequest, errs.ErrorMessage(err)
	case errs.ENOTFOUND:
		return http.StatusNotFound, errs.ErrorMessage(err)
	case errs.ECONFLICT:
		return http.StatusConflict, errs.ErrorMessage(err)
	case errs.EUNAUTHORIZED:
		return http.StatusUnauthorized, errs.ErrorMessage(err)
	case errs.EFORBIDDEN:
		return http.StatusForbidden, errs.ErrorMessage(err)
	case errs.ENOTIMPLEMENTED:
		return http.StatusNotImplemented, errs.ErrorMessage(err)
	}
	return http.StatusInternalServerError, "Internal server error"
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
