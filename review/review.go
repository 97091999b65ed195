package review

import (
	"mowitajm/errs"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MinRating = 1
	MaxRating = 5

	maxTitleLength = 100
	maxTextLength  = 2000
)

var imdbIDPattern = regexp.MustCompile(`^tt[0-9]{7,12}$`)

var (
	ErrInvalidMovie   = errs.Errorf(errs.EINVALID, "review: a valid IMDb id is required")
	ErrInvalidTitle   = errs.Errorf(errs.EINVALID, "review: title must be 1-100 characters")
	ErrInvalidText    = errs.Errorf(errs.EINVALID, "review: text must be at most 2000 characters")
	ErrInvalidRating  = errs.Errorf(errs.EINVALID, "review: rating must be between 1 and 5")
	ErrInvalidAuthor  = errs.Errorf(errs.EUNAUTHORIZED, "review: sign in to write a review")
	ErrReviewNotFound = errs.Errorf(errs.ENOTFOUND, "review not found")
	ErrNotAllowed     = errs.Errorf(errs.EFORBIDDEN, "review: only the author or an admin can delete it")
)

type Review struct {
	ID         int64     `json:"id"`
	ImdbID     string    `json:"imdbId"`
	MovieTitle string    `json:"movieTitle"`
	UserID     string    `json:"userId"`
	Username   string    `json:"username"`
	Title      string    `json:"title"`
	Text       string    `json:"text"`
	Rating     int       `json:"rating"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Actor is whoever asks to change a review.
type Actor struct {
	UserID  string
	IsAdmin bool
}

func (r Review) Validate() error {
	if !imdbIDPattern.MatchString(r.ImdbID) {
		return ErrInvalidMovie
	}
	if strings.TrimSpace(r.UserID) == "" {
		return ErrInvalidAuthor
	}
	title := strings.TrimSpace(r.Title)
	if title == "" || utf8.RuneCountInString(title) > maxTitleLength {
		return ErrInvalidTitle
	}
	if utf8.RuneCountInString(r.Text) > maxTextLength {
		return ErrInvalidText
	}
	return ValidateRating(r.Rating)
}

func ValidateRating(rating int) error {
	if rating < MinRating || rating > MaxRating {
		return ErrInvalidRating
	}
	return nil
}
