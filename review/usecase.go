package review

import (
	"context"
	"strings"
	"time"
)

type Service interface {
	AddReview(ctx context.Context, r Review) (Review, error)
	ListByMovie(ctx context.Context, imdbID string) ([]Review, error)
	ListByUser(ctx context.Context, userID string) ([]Review, error)
	ListForModeration(ctx context.Context, rating int) ([]Review, error)
	DeleteReview(ctx context.Context, actor Actor, id int64) error
}

// Repository returns reviews newest first.
type Repository interface {
	CreateReview(ctx context.Context, r Review) (Review, error)
	GetByID(ctx context.Context, id int64) (Review, error)
	ReviewsByMovie(ctx context.Context, imdbID string) ([]Review, error)
	ReviewsByUser(ctx context.Context, userID string) ([]Review, error)
	// ReviewsByRating returns every review when rating is 0.
	ReviewsByRating(ctx context.Context, rating int) ([]Review, error)
	DeleteReview(ctx context.Context, id int64) error
}

type Usecase struct {
	r   Repository
	now func() time.Time
}

func NewUsecase(r Repository) *Usecase {
	return &Usecase{
		r: r,
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

func (uc *Usecase) AddReview(ctx context.Context, r Review) (Review, error) {
	r.ImdbID = strings.TrimSpace(r.ImdbID)
	r.Title = strings.TrimSpace(r.Title)
	r.Text = strings.TrimSpace(r.Text)
	if err := r.Validate(); err != nil {
		return Review{}, err
	}
	r.ID = 0
	r.CreatedAt = uc.now()
	return uc.r.CreateReview(ctx, r)
}

func (uc *Usecase) ListByMovie(ctx context.Context, imdbID string) ([]Review, error) {
	imdbID = strings.TrimSpace(imdbID)
	if imdbID == "" {
		return nil, ErrInvalidMovie
	}
	return uc.r.ReviewsByMovie(ctx, imdbID)
}

func (uc *Usecase) ListByUser(ctx context.Context, userID string) ([]Review, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidAuthor
	}
	return uc.r.ReviewsByUser(ctx, userID)
}

// ListForModeration lists every review when rating is 0, otherwise only
// the reviews with exactly that rating.
func (uc *Usecase) ListForModeration(ctx context.Context, rating int) ([]Review, error) {
	if rating != 0 {
		if err := ValidateRating(rating); err != nil {
			return nil, err
		}
	}
	return uc.r.ReviewsByRating(ctx, rating)
}

func (uc *Usecase) DeleteReview(ctx context.Context, actor Actor, id int64) error {
	if strings.TrimSpace(actor.UserID) == "" {
		return ErrInvalidAuthor
	}
	existing, err := uc.r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.IsAdmin && existing.UserID != actor.UserID {
		return ErrNotAllowed
	}
	return uc.r.DeleteReview(ctx, id)
}
