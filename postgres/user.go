package postgres

import (
	"context"
	"errors"
	"mowitajm/user"
	"strings"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// UserModel represents the database model for users
type UserModel struct {
	ID           string    `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	DisplayName  string    `gorm:"not null"`
	Email        string    `gorm:"not null;unique"`
	PasswordHash string    `gorm:"not null"`
	Role         string    `gorm:"not null;default:User"`
	CreatedAt    time.Time `gorm:"not null;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"not null;autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// UserRepository implements [user.Repository].
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// CreateUser inserts u and returns it with the generated id and timestamps.
func (r *UserRepository) CreateUser(ctx context.Context, u user.User) (user.User, error) {
	model := toModelUser(u)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if isDuplicateEmailError(err) {
			return user.User{}, user.ErrEmailAlreadyExists
		}
		return user.User{}, err
	}
	return toDomainUser(model), nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (user.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *UserRepository) first(ctx context.Context, query string, arg string) (user.User, error) {
	var model UserModel

	err := r.db.WithContext(ctx).Where(query, arg).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) || isInvalidUUIDError(err) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, err
	}

	return toDomainUser(model), nil
}

// AllUsers fetches all users ordered by display name.
func (r *UserRepository) AllUsers(ctx context.Context) ([]user.User, error) {
	var models []UserModel
	if err := r.db.WithContext(ctx).Order("display_name").Find(&models).Error; err != nil {
		return nil, err
	}

	users := make([]user.User, len(models))
	for i, model := range models {
		users[i] = toDomainUser(model)
	}
	return users, nil
}

func (r *UserRepository) UpdateRole(ctx context.Context, id string, role user.Role) error {
	result := r.db.WithContext(ctx).Model(&UserModel{}).Where("id = ?", id).Updates(map[string]interface{}{
		"role":       string(role),
		"updated_at": time.Now().UTC(),
	})
	if result.Error != nil {
		if isInvalidUUIDError(result.Error) {
			return user.ErrUserNotFound
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

func toDomainUser(model UserModel) user.User {
	return user.User{
		ID:           model.ID,
		DisplayName:  model.DisplayName,
		Email:        model.Email,
		PasswordHash: model.PasswordHash,
		Role:         user.Role(model.Role),
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}

func toModelUser(u user.User) UserModel {
	role := u.Role
	if role == "" {
		role = user.RoleUser
	}
	return UserModel{
		ID:           u.ID,
		DisplayName:  u.DisplayName,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         string(role),
	}
}

func isDuplicateEmailError(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505" && strings.Contains(strings.ToLower(pqErr.Constraint), "email")
	}
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505" && strings.Contains(strings.ToLower(err.Error()), "email")
	}
	return false
}

// isInvalidUUIDError reports a malformed uuid literal, which cannot match any row.
func isInvalidUUIDError(err error) bool {
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "22P02"
	}
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "22P02"
}
