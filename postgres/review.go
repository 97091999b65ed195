package postgres

import (
	"context"
	"errors"
	"mowitajm/review"
	"time"

	"gorm.io/gorm"
)

// ReviewModel represents the database model for reviews.
type ReviewModel struct {
	ID         int64     `gorm:"primaryKey;autoIncrement"`
	ImdbID     string    `gorm:"column:imdb_id;not null;index"`
	MovieTitle string    `gorm:"not null"`
	UserID     string    `gorm:"type:uuid;not null;index"`
	Username   string    `gorm:"not null"`
	Title      string    `gorm:"not null"`
	Text       string    `gorm:"not null"`
	Rating     int       `gorm:"not null;index"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime"`
}

func (ReviewModel) TableName() string {
	return "reviews"
}

// ReviewRepository implements [review.Repository]. Lists are newest first.
type ReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func (r *ReviewRepository) CreateReview(ctx context.Context, rv review.Review) (review.Review, error) {
	model := toModelReview(rv)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return review.Review{}, err
	}
	return toDomainReview(model), nil
}

func (r *ReviewRepository) GetByID(ctx context.Context, id int64) (review.Review, error) {
	var model ReviewModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return review.Review{}, review.ErrReviewNotFound
		}
		return review.Review{}, err
	}
	return toDomainReview(model), nil
}

func (r *ReviewRepository) ReviewsByMovie(ctx context.Context, imdbID string) ([]review.Review, error) {
	return find(r.db.WithContext(ctx).Where("imdb_id = ?", imdbID))
}

func (r *ReviewRepository) ReviewsByUser(ctx context.Context, userID string) ([]review.Review, error) {
	return find(r.db.WithContext(ctx).Where("user_id = ?", userID))
}

// ReviewsByRating returns the reviews with the given rating, or all reviews
// when rating is 0.
func (r *ReviewRepository) ReviewsByRating(ctx context.Context, rating int) ([]review.Review, error) {
	q := r.db.WithContext(ctx)
	if rating != 0 {
		q = q.Where("rating = ?", rating)
	}
	return find(q)
}

func (r *ReviewRepository) DeleteReview(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&ReviewModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return review.ErrReviewNotFound
	}
	return nil
}

func find(q *gorm.DB) ([]review.Review, error) {
	var models []ReviewModel
	if err := q.Order("created_at DESC, id DESC").Find(&models).Error; err != nil {
		return nil, err
	}

	reviews := make([]review.Review, len(models))
	for i, m := range models {
		reviews[i] = toDomainReview(m)
	}
	return reviews, nil
}

func toDomainReview(m ReviewModel) review.Review {
	return review.Review{
		ID:         m.ID,
		ImdbID:     m.ImdbID,
		MovieTitle: m.MovieTitle,
		UserID:     m.UserID,
		Username:   m.Username,
		Title:      m.Title,
		Text:       m.Text,
		Rating:     m.Rating,
		CreatedAt:  m.CreatedAt,
	}
}

func toModelReview(rv review.Review) ReviewModel {
	return ReviewModel{
		ID:         rv.ID,
		ImdbID:     rv.ImdbID,
		MovieTitle: rv.MovieTitle,
		UserID:     rv.UserID,
		Username:   rv.Username,
		Title:      rv.Title,
		Text:       rv.Text,
		Rating:     rv.Rating,
		CreatedAt:  rv.CreatedAt,
	}
}
