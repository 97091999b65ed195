package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (s *Server) RegisterUserRoutes() {
	s.Router.GET("/api/me", s.handleMe, requireSignIn)
	s.Router.GET("/api/admin/users", s.handleListUsers, requireAdmin)
}

func (s *Server) handleMe(c echo.Context) error {
	v := viewerFrom(c)
	return writeSuccess(c, http.StatusOK, map[string]interface{}{
		"id":          v.UserID,
		"email":       v.Email,
		"displayName": v.DisplayName,
		"isAdmin":     v.IsAdmin,
	})
}

func (s *Server) handleListUsers(c echo.Context) error {
	users, err := s.UserService.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}

	return writeList(c, http.StatusOK, users)
}
