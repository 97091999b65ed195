package movie

import (
	"context"
	"errors"
	"log/slog"
	"mowitajm/review"
	"strings"
)

type Service interface {
	GetMovieDetails(ctx context.Context, imdbID string) (Details, error)
	Search(ctx context.Context, query string, page int) (SearchResult, error)
}

// Provider is the external metadata source. It returns ErrMovieNotFound for
// unknown ids and for searches without hits.
type Provider interface {
	GetMovieByID(ctx context.Context, imdbID string) (Movie, error)
	SearchMovies(ctx context.Context, query string, page int) (SearchResult, error)
}

type ReviewReader interface {
	ReviewsByMovie(ctx context.Context, imdbID string) ([]review.Review, error)
}

// ErrorReporter receives errors that are swallowed by fail-soft operations.
type ErrorReporter interface {
	Report(ctx context.Context, err error, msg string)
}

type Usecase struct {
	provider Provider
	reviews  ReviewReader
	reporter ErrorReporter
}

type Option func(uc *Usecase)

func WithErrorReporter(r ErrorReporter) Option {
	return func(uc *Usecase) {
		if r != nil {
			uc.reporter = r
		}
	}
}

func NewUsecase(p Provider, r ReviewReader, opts ...Option) *Usecase {
	uc := &Usecase{
		provider: p,
		reviews:  r,
		reporter: logReporter{logger: slog.Default()},
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// GetMovieDetails never fails: when the provider or the review store errors
// it returns an untitled movie, no reviews and a zero average.
func (uc *Usecase) GetMovieDetails(ctx context.Context, imdbID string) (Details, error) {
	details, err := uc.getMovieDetails(ctx, strings.TrimSpace(imdbID))
	if err != nil {
		uc.reporter.Report(ctx, err, "movie details unavailable")
		return Details{Reviews: []review.Review{}}, nil
	}
	return details, nil
}

func (uc *Usecase) getMovieDetails(ctx context.Context, imdbID string) (Details, error) {
	m, err := uc.provider.GetMovieByID(ctx, imdbID)
	if err != nil {
		return Details{}, err
	}

	reviews, err := uc.reviews.ReviewsByMovie(ctx, imdbID)
	if err != nil {
		return Details{}, err
	}
	if reviews == nil {
		reviews = []review.Review{}
	}

	return Details{
		Movie:         m,
		Reviews:       reviews,
		AverageRating: AverageRating(reviews),
	}, nil
}

func (uc *Usecase) Search(ctx context.Context, query string, page int) (SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return SearchResult{}, ErrInvalidQuery
	}
	if page <= 0 {
		page = 1
	}

	result, err := uc.provider.SearchMovies(ctx, query, page)
	if errors.Is(err, ErrMovieNotFound) {
		return SearchResult{Movies: []Summary{}, Page: page}, nil
	}
	if err != nil {
		return SearchResult{}, err
	}
	if result.Movies == nil {
		result.Movies = []Summary{}
	}
	result.Page = page
	return result, nil
}

type logReporter struct {
	logger *slog.Logger
}

func (r logReporter) Report(ctx context.Context, err error, msg string) {
	r.logger.WarnContext(ctx, msg, "error", err)
}
