package user

import (
	"context"
	"errors"
	"strings"
)

type Service interface {
	Register(ctx context.Context, displayName, email, password string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	GetUserByID(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	SetRole(ctx context.Context, email string, role Role) error
}

type Repository interface {
	CreateUser(ctx context.Context, u User) (User, error)
	AllUsers(ctx context.Context) ([]User, error)
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	UpdateRole(ctx context.Context, id string, role Role) error
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hashed, plain string) error
}

type Usecase struct {
	r      Repository
	hasher PasswordHasher
}

func NewUsecase(r Repository, h PasswordHasher) *Usecase {
	return &Usecase{
		r:      r,
		hasher: h,
	}
}

func (uc *Usecase) Register(ctx context.Context, displayName, email, password string) (User, error) {
	u := User{
		DisplayName: strings.TrimSpace(displayName),
		Email:       strings.ToLower(strings.TrimSpace(email)),
		Password:    password,
		Role:        RoleUser,
	}
	return uc.AddUser(ctx, u)
}

// AddUser stores u with its password hashed. An empty role defaults to RoleUser.
func (uc *Usecase) AddUser(ctx context.Context, u User) (User, error) {
	if u.Role == "" {
		u.Role = RoleUser
	}
	if err := u.Validate(); err != nil {
		return User{}, err
	}
	hashed, err := uc.hasher.Hash(u.Password)
	if err != nil {
		return User{}, err
	}
	u.Password = ""
	u.PasswordHash = hashed
	return uc.r.CreateUser(ctx, u)
}

func (uc *Usecase) ListUsers(ctx context.Context) ([]User, error) {
	return uc.r.AllUsers(ctx)
}

func (uc *Usecase) GetUserByID(ctx context.Context, id string) (User, error) {
	if strings.TrimSpace(id) == "" {
		return User{}, ErrUserIDRequired
	}
	return uc.r.GetByID(ctx, id)
}

func (uc *Usecase) GetUserByEmail(ctx context.Context, email string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateEmail(email); err != nil {
		return User{}, err
	}
	return uc.r.GetByEmail(ctx, email)
}

func (uc *Usecase) SetRole(ctx context.Context, email string, role Role) error {
	if !role.Valid() {
		return ErrInvalidRole
	}
	u, err := uc.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if u.Role == role {
		return nil
	}
	return uc.r.UpdateRole(ctx, u.ID, role)
}

// GetUser implements [IdentityManager]. Anonymous principals and unknown
// ids resolve to a nil user.
func (uc *Usecase) GetUser(ctx context.Context, p Principal) (*User, error) {
	if p.Anonymous() {
		return nil, nil
	}
	u, err := uc.r.GetByID(ctx, p.UserID)
	if errors.Is(err, ErrUserNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// IsInRole implements [IdentityManager].
func (uc *Usecase) IsInRole(_ context.Context, u *User, role Role) (bool, error) {
	if u == nil {
		return false, ErrUserNotFound
	}
	return u.Role == role, nil
}
