package httpserver

import (
	"mowitajm/review"
	"strings"
)

type RegisterRequest struct {
	DisplayName string `json:"displayName" validate:"required,notblank,min=2,max=50"`
	Email       string `json:"email" validate:"required,email,max=255"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,notblank,max=72"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required,notblank"`
}

type AddReviewRequest struct {
	MovieTitle string `json:"movieTitle" form:"MovieTitle" validate:"max=255"`
	Title      string `json:"title" form:"Title" validate:"required,notblank,max=100"`
	Text       string `json:"text" form:"Text" validate:"max=2000"`
	Rating     int    `json:"rating" form:"Rating" validate:"required,min=1,max=5"`
}

func (r AddReviewRequest) ToReview(imdbID, userID, username string) review.Review {
	return review.Review{
		ImdbID:     imdbID,
		MovieTitle: strings.TrimSpace(r.MovieTitle),
		UserID:     userID,
		Username:   username,
		Title:      r.Title,
		Text:       r.Text,
		Rating:     r.Rating,
	}
}

// LoginForm is posted by the sign-in page.
type LoginForm struct {
	Email     string `form:"Input.Email" validate:"required,email,max=255"`
	Password  string `form:"Input.Password" validate:"required,notblank,max=72"`
	ReturnURL string `form:"ReturnUrl"`
}

// RegisterForm is posted by the registration page.
type RegisterForm struct {
	DisplayName     string `form:"Input.DisplayName" validate:"required,notblank,min=2,max=50"`
	Email           string `form:"Input.Email" validate:"required,email,max=255"`
	Password        string `form:"Input.Password" validate:"required,min=8,max=72"`
	ConfirmPassword string `form:"Input.ConfirmPassword" validate:"eqfield=Password"`
	ReturnURL       string `form:"ReturnUrl"`
}
