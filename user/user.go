package user

import (
	"mowitajm/errs"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"
)

var (
	ErrInvalidDisplayName = errs.Errorf(errs.EINVALID, "user: display name must be 2-50 characters")
	ErrInvalidEmail       = errs.Errorf(errs.EINVALID, "user: invalid email")
	ErrInvalidPassword    = errs.Errorf(errs.EINVALID, "user: password must be at least 8 characters")
	ErrPasswordTooLong    = errs.Errorf(errs.EINVALID, "user: password must be at most 72 bytes")
	ErrInvalidRole        = errs.Errorf(errs.EINVALID, "user: unknown role")
	ErrUserIDRequired     = errs.Errorf(errs.EINVALID, "user: id is required")
	ErrUserNotFound       = errs.Errorf(errs.ENOTFOUND, "user not found")
	ErrEmailAlreadyExists = errs.Errorf(errs.ECONFLICT, "user: email already exists")
)

type Role string

const (
	RoleAdmin Role = "Admin"
	RoleUser  Role = "User"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

type User struct {
	ID           string    `json:"id"`
	DisplayName  string    `json:"displayName"`
	Email        string    `json:"email"`
	Password     string    `json:"-"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Principal identifies the caller of a request. The zero value is anonymous.
type Principal struct {
	UserID string
	Email  string
}

func (p Principal) Anonymous() bool {
	return strings.TrimSpace(p.UserID) == ""
}

// Context is what pages need to know about the signed-in user.
type Context struct {
	DisplayName string `json:"displayName"`
	IsAdmin     bool   `json:"isAdmin"`
}

func (u User) Validate() error {
	if err := validateDisplayName(u.DisplayName); err != nil {
		return err
	}
	if err := validateEmail(u.Email); err != nil {
		return err
	}
	if err := validatePassword(u.Password); err != nil {
		return err
	}
	if u.Role != "" && !u.Role.Valid() {
		return ErrInvalidRole
	}
	return nil
}

func validateDisplayName(name string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(name))
	if n < 2 || n > 50 {
		return ErrInvalidDisplayName
	}
	return nil
}

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return ErrInvalidEmail
	}
	return nil
}

// maxPasswordBytes is the bcrypt input limit.
const maxPasswordBytes = 72

func validatePassword(password string) error {
	if utf8.RuneCountInString(password) < 8 || strings.TrimSpace(password) == "" {
		return ErrInvalidPassword
	}
	if len(password) > maxPasswordBytes {
		return ErrPasswordTooLong
	}
	return nil
}
