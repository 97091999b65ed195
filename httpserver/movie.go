package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

func (s *Server) RegisterMovieRoutes() {
	g := s.Router.Group("/api/movies")
	g.GET("/search", s.handleSearchMovies)
	g.GET("/:imdbID", s.handleGetMovie)
	g.GET("/:imdbID/reviews", s.handleListMovieReviews)
	g.POST("/:imdbID/reviews", s.handleAddReview, requireSignIn)
}

func (s *Server) handleSearchMovies(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))

	result, err := s.MovieService.Search(c.Request().Context(), c.QueryParam("q"), page)
	if err != nil {
		return err
	}

	return writePagedList(c, http.StatusOK, result.Movies, result.Page, result.TotalResults)
}

// handleGetMovie always answers 200; an unknown movie has an empty title.
func (s *Server) handleGetMovie(c echo.Context) error {
	details, err := s.MovieService.GetMovieDetails(c.Request().Context(), c.Param("imdbID"))
	if err != nil {
		return err
	}
	return writeSuccess(c, http.StatusOK, details)
}

func (s *Server) handleListMovieReviews(c echo.Context) error {
	reviews, err := s.ReviewService.ListByMovie(c.Request().Context(), c.Param("imdbID"))
	if err != nil {
		return err
	}
	return writeList(c, http.StatusOK, reviews)
}

func (s *Server) handleAddReview(c echo.Context) error {
	var req AddReviewRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	v := viewerFrom(c)
	created, err := s.ReviewService.AddReview(c.Request().Context(), req.ToReview(c.Param("imdbID"), v.UserID, v.DisplayName))
	if err != nil {
		return err
	}

	return writeSuccess(c, http.StatusCreated, created)
}
