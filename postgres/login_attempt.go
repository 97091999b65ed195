package postgres

import (
	"context"
	"errors"
	"mowitajm/auth"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LoginAttemptModel tracks consecutive failed sign-ins per e-mail.
type LoginAttemptModel struct {
	Email       string `gorm:"primaryKey"`
	FailedCount int    `gorm:"not null;default:0"`
	JailedUntil *time.Time
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime"`
}

func (LoginAttemptModel) TableName() string {
	return "login_attempts"
}

// LoginAttemptRepository implements [auth.LoginAttemptRepository].
type LoginAttemptRepository struct {
	db *gorm.DB
}

func NewLoginAttemptRepository(db *gorm.DB) *LoginAttemptRepository {
	return &LoginAttemptRepository{db: db}
}

// Get returns the zero attempt for e-mails that never failed.
func (r *LoginAttemptRepository) Get(ctx context.Context, email string) (auth.LoginAttempt, error) {
	var model LoginAttemptModel
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return auth.LoginAttempt{}, nil
	}
	if err != nil {
		return auth.LoginAttempt{}, err
	}

	attempt := auth.LoginAttempt{FailedCount: model.FailedCount}
	if model.JailedUntil != nil {
		attempt.JailedUntil = model.JailedUntil.UTC()
	}
	return attempt, nil
}

func (r *LoginAttemptRepository) Save(ctx context.Context, email string, attempt auth.LoginAttempt) error {
	model := LoginAttemptModel{
		Email:       email,
		FailedCount: attempt.FailedCount,
	}
	if !attempt.JailedUntil.IsZero() {
		t := attempt.JailedUntil.UTC()
		model.JailedUntil = &t
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"failed_count", "jailed_until", "updated_at"}),
	}).Create(&model).Error
}

func (r *LoginAttemptRepository) Reset(ctx context.Context, email string) error {
	return r.db.WithContext(ctx).Where("email = ?", email).Delete(&LoginAttemptModel{}).Error
}
