package httpserver

import (
	"context"
	"errors"
	"mowitajm/review"
	"mowitajm/user"
	"net/http"
	"net/url"
	"strings"
	"time"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

const (
	SessionCookie    = "mowitajm_session"
	oauthStateCookie = "oauth_state"

	principalKey = "user"
	viewerKey    = "viewer"
)

var errSignInRequired = errors.New("sign in required")

// TokenParser validates access tokens.
type TokenParser interface {
	ParseAccessToken(token string) (user.Principal, error)
}

// ContextResolver maps a principal to what pages show about the user.
type ContextResolver interface {
	Resolve(ctx context.Context, p user.Principal) user.Context
}

// Viewer is the caller of the current request.
type Viewer struct {
	user.Principal
	user.Context
}

func (v Viewer) SignedIn() bool {
	return !v.Anonymous() && v.DisplayName != ""
}

func (v Viewer) Actor() review.Actor {
	return review.Actor{UserID: v.UserID, IsAdmin: v.IsAdmin}
}

// identityMiddleware reads the session cookie or bearer token when present.
// Missing or invalid tokens leave the request anonymous.
func (s *Server) identityMiddleware() echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		TokenLookup: "header:Authorization:Bearer ,cookie:" + SessionCookie,
		ContextKey:  principalKey,
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			if s.Tokens == nil {
				return nil, errors.New("token parser not configured")
			}
			return s.Tokens.ParseAccessToken(auth)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return nil
		},
		ContinueOnIgnoredError: true,
	})
}

// viewerMiddleware resolves the principal left by identityMiddleware once per request.
func (s *Server) viewerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, _ := c.Get(principalKey).(user.Principal)
		v := Viewer{Principal: p}
		if !p.Anonymous() && s.Identity != nil {
			v.Context = s.Identity.Resolve(c.Request().Context(), p)
		}
		c.Set(viewerKey, v)
		return next(c)
	}
}

func viewerFrom(c echo.Context) Viewer {
	v, _ := c.Get(viewerKey).(Viewer)
	return v
}

// requireSignIn sends anonymous page visitors to the sign-in page and
// rejects anonymous API calls.
func requireSignIn(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if viewerFrom(c).SignedIn() {
			return next(c)
		}
		if isAPIRequest(c) {
			return echo.NewHTTPError(http.StatusUnauthorized, errSignInRequired.Error())
		}
		return c.Redirect(http.StatusSeeOther, loginURL(c.Request().URL.RequestURI()))
	}
}

func requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return requireSignIn(func(c echo.Context) error {
		if !viewerFrom(c).IsAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "admin only")
		}
		return next(c)
	})
}

func loginURL(returnURL string) string {
	if returnURL == "" {
		return "/Identity/Account/Login"
	}
	return "/Identity/Account/Login?ReturnUrl=" + url.QueryEscape(returnURL)
}

// localRedirect keeps sign-in redirects on this site.
func localRedirect(returnURL string) string {
	if returnURL == "" || !strings.HasPrefix(returnURL, "/") ||
		strings.HasPrefix(returnURL, "//") || strings.HasPrefix(returnURL, "/\\") {
		return "/Movies"
	}
	return returnURL
}

func (s *Server) setSession(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.CookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.SessionTTL / time.Second),
	})
}

func (s *Server) clearSession(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.CookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

func isAPIRequest(c echo.Context) bool {
	return strings.HasPrefix(c.Request().URL.Path, "/api/") ||
		c.Request().URL.Path == "/healthcheck"
}
