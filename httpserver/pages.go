package httpserver

import (
	"errors"
	"mowitajm/auth"
	"mowitajm/errs"
	"mowitajm/movie"
	"mowitajm/review"
	"mowitajm/user"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

func (s *Server) RegisterPageRoutes() {
	s.Router.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusFound, "/Movies")
	})

	s.Router.GET("/Movies", s.moviesPage)
	s.Router.GET("/Movies/Details/:imdbID", s.detailsPage)
	s.Router.POST("/Movies/Details/:imdbID/Reviews", s.postReview, requireSignIn)

	account := s.Router.Group("/Identity/Account")
	account.GET("/Login", s.loginPage)
	account.POST("/Login", s.postLogin)
	account.GET("/Register", s.registerPage)
	account.POST("/Register", s.postRegister)
	account.GET("/ExternalLogin/Google", s.googleLoginPage)
	account.GET("/ExternalLogin/Google/callback", s.googleCallbackPage)

	s.Router.GET("/Identity/User", s.userPage, requireSignIn)
	s.Router.POST("/Identity/User/Reviews/:id/Delete", s.deleteOwnReview, requireSignIn)
	s.Router.GET("/Identity/Admin", s.adminPage, requireAdmin)
	s.Router.POST("/Identity/Admin/Reviews/:id/Delete", s.adminDeleteReview, requireAdmin)

	s.Router.POST("/Account/Logout", s.logout)
}

type moviesView struct {
	Query  string
	Result movie.SearchResult
}

func (v moviesView) PrevPage() int { return v.Result.Page - 1 }

func (v moviesView) NextPage() int { return v.Result.Page + 1 }

// HasNext reports whether OMDb has more hits; it pages by ten.
func (v moviesView) HasNext() bool {
	return v.Result.Page*10 < v.Result.TotalResults
}

func (s *Server) moviesPage(c echo.Context) error {
	view := moviesView{Query: strings.TrimSpace(c.QueryParam("searchInput"))}
	if view.Query == "" {
		return s.render(c, http.StatusOK, "movies", "Filmer", view)
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	result, err := s.MovieService.Search(c.Request().Context(), view.Query, page)
	if err != nil {
		if errs.ErrorCode(err) == errs.EINTERNAL {
			s.Logger.WarnContext(c.Request().Context(), "movie search failed", "query", view.Query, "error", err)
		}
		// an upstream failure reads as "no hits" on the page
		result = movie.SearchResult{Movies: []movie.Summary{}, Page: 1}
	}
	view.Result = result
	return s.render(c, http.StatusOK, "movies", "Sök: "+view.Query, view)
}

type detailsView struct {
	ImdbID  string
	Details movie.Details
}

func (s *Server) detailsPage(c echo.Context) error {
	imdbID := c.Param("imdbID")
	details, err := s.MovieService.GetMovieDetails(c.Request().Context(), imdbID)
	if err != nil {
		return err
	}
	return s.render(c, http.StatusOK, "details", details.Movie.Title, detailsView{ImdbID: imdbID, Details: details})
}

func (s *Server) postReview(c echo.Context) error {
	imdbID := c.Param("imdbID")
	var req AddReviewRequest
	if err := c.Bind(&req); err != nil {
		return s.detailsWithError(c, imdbID, review.ErrInvalidRating)
	}
	if err := c.Validate(&req); err != nil {
		return s.detailsWithError(c, imdbID, err)
	}

	v := viewerFrom(c)
	_, err := s.ReviewService.AddReview(c.Request().Context(), req.ToReview(imdbID, v.UserID, v.DisplayName))
	if err != nil {
		if errs.ErrorCode(err) == errs.EINVALID {
			return s.detailsWithError(c, imdbID, err)
		}
		return err
	}

	return c.Redirect(http.StatusSeeOther, "/Movies/Details/"+imdbID)
}

func (s *Server) detailsWithError(c echo.Context, imdbID string, cause error) error {
	details, err := s.MovieService.GetMovieDetails(c.Request().Context(), imdbID)
	if err != nil {
		return err
	}
	return s.renderPage(c, http.StatusBadRequest, "details", Page{
		Title: details.Movie.Title,
		Error: errs.ErrorMessage(cause),
		Data:  detailsView{ImdbID: imdbID, Details: details},
	})
}

type loginView struct {
	Email         string
	ReturnURL     string
	GoogleEnabled bool
}

func (s *Server) loginPage(c echo.Context) error {
	return s.render(c, http.StatusOK, "login", "Logga in", loginView{
		ReturnURL:     localRedirect(c.QueryParam("ReturnUrl")),
		GoogleEnabled: s.GoogleEnabled,
	})
}

func (s *Server) postLogin(c echo.Context) error {
	var form LoginForm
	bindErr := c.Bind(&form)
	view := loginView{
		Email:         form.Email,
		ReturnURL:     localRedirect(form.ReturnURL),
		GoogleEnabled: s.GoogleEnabled,
	}

	if bindErr != nil {
		return s.renderPage(c, http.StatusBadRequest, "login", Page{Title: "Logga in", Error: "Ogiltig begäran.", Data: view})
	}
	if err := c.Validate(&form); err != nil {
		return s.renderPage(c, http.StatusBadRequest, "login", Page{Title: "Logga in", Error: "Ange e-post och lösenord.", Data: view})
	}

	tokens, err := s.AuthService.Login(c.Request().Context(), form.Email, form.Password)
	if err != nil {
		var msg string
		switch {
		case errors.Is(err, auth.ErrAccountLocked):
			msg = "Kontot är tillfälligt låst. Försök igen senare."
		case errors.Is(err, auth.ErrInvalidCredentials):
			msg = "Felaktig e-post eller lösenord."
		default:
			return err
		}
		return s.renderPage(c, http.StatusUnauthorized, "login", Page{Title: "Logga in", Error: msg, Data: view})
	}

	s.setSession(c, tokens.AccessToken)
	return c.Redirect(http.StatusSeeOther, view.ReturnURL)
}

type registerView struct {
	DisplayName string
	Email       string
	ReturnURL   string
}

func (s *Server) registerPage(c echo.Context) error {
	return s.render(c, http.StatusOK, "register", "Registrera konto", registerView{
		ReturnURL: localRedirect(c.QueryParam("ReturnUrl")),
	})
}

func (s *Server) postRegister(c echo.Context) error {
	var form RegisterForm
	bindErr := c.Bind(&form)
	view := registerView{
		DisplayName: form.DisplayName,
		Email:       form.Email,
		ReturnURL:   localRedirect(form.ReturnURL),
	}

	if bindErr != nil {
		return s.renderPage(c, http.StatusBadRequest, "register", Page{Title: "Registrera konto", Error: "Ogiltig begäran.", Data: view})
	}
	if err := c.Validate(&form); err != nil {
		return s.renderPage(c, http.StatusBadRequest, "register", Page{Title: "Registrera konto", Error: registerMessage(err), Data: view})
	}

	tokens, err := s.AuthService.Register(c.Request().Context(), form.DisplayName, form.Email, form.Password)
	if err != nil {
		switch errs.ErrorCode(err) {
		case errs.EINVALID, errs.ECONFLICT:
			return s.renderPage(c, http.StatusBadRequest, "register", Page{Title: "Registrera konto", Error: registerMessage(err), Data: view})
		}
		return err
	}

	s.setSession(c, tokens.AccessToken)
	return c.Redirect(http.StatusSeeOther, view.ReturnURL)
}

func registerMessage(err error) string {
	if errs.ErrorCode(err) == errs.ECONFLICT {
		return "E-postadressen används redan."
	}
	msg := errs.ErrorMessage(err)
	if strings.Contains(msg, "ConfirmPassword") {
		return "Lösenorden matchar inte."
	}
	return msg
}

func (s *Server) googleLoginPage(c echo.Context) error {
	authURL, err := s.beginGoogleLogin(c)
	if err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, authURL)
}

func (s *Server) googleCallbackPage(c echo.Context) error {
	if err := checkOAuthState(c); err != nil {
		return err
	}

	tokens, err := s.AuthService.LoginWithGoogle(c.Request().Context(), c.QueryParam("code"))
	if err != nil {
		return err
	}

	s.setSession(c, tokens.AccessToken)
	return c.Redirect(http.StatusSeeOther, "/Movies")
}

type reviewsView struct {
	Reviews []review.Review
}

func (s *Server) userPage(c echo.Context) error {
	reviews, err := s.ReviewService.ListByUser(c.Request().Context(), viewerFrom(c).UserID)
	if err != nil {
		return err
	}
	return s.render(c, http.StatusOK, "user", "Mina sidor", reviewsView{Reviews: reviews})
}

func (s *Server) deleteOwnReview(c echo.Context) error {
	if err := s.deleteReview(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/Identity/User")
}

const (
	adminReviews = "reviews"
	adminUsers   = "users"
)

type adminView struct {
	Section string
	Rating  int
	Reviews []review.Review
	Users   []user.User
}

// adminPage shows review moderation, or the user list with ?section=users.
func (s *Server) adminPage(c echo.Context) error {
	ctx := c.Request().Context()
	if c.QueryParam("section") == adminUsers {
		users, err := s.UserService.ListUsers(ctx)
		if err != nil {
			return err
		}
		return s.render(c, http.StatusOK, "admin", "Administration", adminView{Section: adminUsers, Users: users})
	}

	rating, err := ratingFilter(c.QueryParam("ratingFilter"))
	if err != nil {
		return err
	}

	reviews, err := s.ReviewService.ListForModeration(ctx, rating)
	if err != nil {
		return err
	}
	return s.render(c, http.StatusOK, "admin", "Administration", adminView{Section: adminReviews, Rating: rating, Reviews: reviews})
}

func (s *Server) adminDeleteReview(c echo.Context) error {
	if err := s.deleteReview(c); err != nil {
		return err
	}

	target := "/Identity/Admin"
	if rating, err := ratingFilter(c.QueryParam("ratingFilter")); err == nil && rating != 0 {
		target += "?ratingFilter=" + strconv.Itoa(rating)
	}
	return c.Redirect(http.StatusSeeOther, target)
}

func (s *Server) deleteReview(c echo.Context) error {
	id, err := reviewID(c)
	if err != nil {
		return err
	}
	return s.ReviewService.DeleteReview(c.Request().Context(), viewerFrom(c).Actor(), id)
}

func (s *Server) logout(c echo.Context) error {
	s.clearSession(c)
	return c.Redirect(http.StatusSeeOther, "/Movies")
}
