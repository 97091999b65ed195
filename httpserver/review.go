package httpserver

import (
	"mowitajm/review"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

func (s *Server) RegisterReviewRoutes() {
	s.Router.DELETE("/api/reviews/:id", s.handleDeleteReview, requireSignIn)

	admin := s.Router.Group("/api/admin", requireAdmin)
	admin.GET("/reviews", s.handleModerationList)
	admin.DELETE("/reviews/:id", s.handleDeleteReview)
}

func (s *Server) handleDeleteReview(c echo.Context) error {
	if err := s.deleteReview(c); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// handleModerationList filters by ?rating=1..5; 0 or no value lists everything.
func (s *Server) handleModerationList(c echo.Context) error {
	rating, err := ratingFilter(c.QueryParam("rating"))
	if err != nil {
		return err
	}

	reviews, err := s.ReviewService.ListForModeration(c.Request().Context(), rating)
	if err != nil {
		return err
	}

	return writeList(c, http.StatusOK, reviews)
}

func reviewID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, review.ErrReviewNotFound
	}
	return id, nil
}

func ratingFilter(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	rating, err := strconv.Atoi(raw)
	if err != nil {
		return 0, review.ErrInvalidRating
	}
	return rating, nil
}
