package httpserver

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

func (s *Server) RegisterAuthRoutes() {
	s.Router.POST("/api/auth/register", s.handleRegister)
	s.Router.POST("/api/auth/login", s.handleLogin)
	s.Router.POST("/api/auth/refresh", s.handleRefresh)
	s.Router.GET("/api/auth/google/login", s.handleGoogleLogin)
	s.Router.GET("/api/auth/google/callback", s.handleGoogleCallback)
}

func (s *Server) handleRegister(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	tokens, err := s.AuthService.Register(c.Request().Context(), req.DisplayName, req.Email, req.Password)
	if err != nil {
		return err
	}

	return writeSuccess(c, http.StatusCreated, tokens)
}

func (s *Server) handleLogin(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	tokens, err := s.AuthService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return writeSuccess(c, http.StatusOK, tokens)
}

func (s *Server) handleRefresh(c echo.Context) error {
	var req RefreshRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	tokens, err := s.AuthService.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return err
	}

	return writeSuccess(c, http.StatusOK, tokens)
}

func (s *Server) handleGoogleLogin(c echo.Context) error {
	authURL, err := s.beginGoogleLogin(c)
	if err != nil {
		return err
	}
	return writeSuccess(c, http.StatusOK, map[string]string{
		"authUrl": authURL,
	})
}

func (s *Server) handleGoogleCallback(c echo.Context) error {
	if err := checkOAuthState(c); err != nil {
		return err
	}

	tokens, err := s.AuthService.LoginWithGoogle(c.Request().Context(), c.QueryParam("code"))
	if err != nil {
		return err
	}

	return writeSuccess(c, http.StatusOK, tokens)
}

// beginGoogleLogin stores a fresh state in a short-lived cookie and returns
// the consent URL carrying it.
func (s *Server) beginGoogleLogin(c echo.Context) (string, error) {
	state, err := generateOAuthState(32)
	if err != nil {
		return "", err
	}

	authURL, err := s.AuthService.GoogleAuthURL(state)
	if err != nil {
		return "", err
	}

	c.SetCookie(&http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.CookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int((5 * time.Minute).Seconds()),
	})
	return authURL, nil
}

func checkOAuthState(c echo.Context) error {
	state := c.QueryParam("state")
	if c.QueryParam("code") == "" || state == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing code or state")
	}

	cookie, err := c.Cookie(oauthStateCookie)
	if err != nil || cookie.Value != state {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid oauth state")
	}

	c.SetCookie(&http.Cookie{
		Name:     oauthStateCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	return nil
}

func generateOAuthState(length int) (string, error) {
	if length <= 0 {
		return "", errors.New("invalid state length")
	}
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
