package movie

import (
	"mowitajm/errs"
	"mowitajm/review"
)

var (
	ErrInvalidQuery  = errs.Errorf(errs.EINVALID, "invalid search query")
	ErrInvalidID     = errs.Errorf(errs.EINVALID, "invalid imdb id")
	ErrMovieNotFound = errs.Errorf(errs.ENOTFOUND, "movie not found")
)

// Movie is the metadata the external provider returns for a single title.
type Movie struct {
	ImdbID     string `json:"imdbId"`
	Title      string `json:"title"`
	Year       string `json:"year,omitempty"`
	Rated      string `json:"rated,omitempty"`
	Released   string `json:"released,omitempty"`
	Runtime    string `json:"runtime,omitempty"`
	Genre      string `json:"genre,omitempty"`
	Director   string `json:"director,omitempty"`
	Writer     string `json:"writer,omitempty"`
	Actors     string `json:"actors,omitempty"`
	Plot       string `json:"plot,omitempty"`
	Language   string `json:"language,omitempty"`
	Country    string `json:"country,omitempty"`
	Poster     string `json:"poster,omitempty"`
	ImdbRating string `json:"imdbRating,omitempty"`
	Type       string `json:"type,omitempty"`
}

// Summary is a single search hit.
type Summary struct {
	ImdbID string `json:"imdbId"`
	Title  string `json:"title"`
	Year   string `json:"year,omitempty"`
	Type   string `json:"type,omitempty"`
	Poster string `json:"poster,omitempty"`
}

// SearchResult is one page of search hits.
type SearchResult struct {
	Movies       []Summary `json:"movies"`
	TotalResults int       `json:"totalResults"`
	Page         int       `json:"page"`
}

// Details aggregates a movie with its local reviews.
type Details struct {
	Movie         Movie           `json:"movie"`
	Reviews       []review.Review `json:"reviews"`
	AverageRating float64         `json:"averageRating"`
}

// AverageRating returns the arithmetic mean of the ratings, or 0 when there are none.
func AverageRating(reviews []review.Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return float64(sum) / float64(len(reviews))
}
