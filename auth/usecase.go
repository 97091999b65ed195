// nolint: nestif
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"mowitajm/errs"
	"mowitajm/user"
	"strings"
	"time"
)

var (
	ErrInvalidCredentials  = errs.Errorf(errs.EUNAUTHORIZED, "invalid email or password")
	ErrAccountLocked       = errs.Errorf(errs.EUNAUTHORIZED, "account temporarily locked")
	ErrInvalidRefreshToken = errs.Errorf(errs.EUNAUTHORIZED, "invalid refresh token")
	ErrInvalidOAuthUser    = errs.Errorf(errs.EUNAUTHORIZED, "invalid oauth user")
	ErrOAuthNotConfigured  = errs.Errorf(errs.ENOTIMPLEMENTED, "oauth provider not configured")
)

type Service interface {
	Login(ctx context.Context, email, password string) (TokenPair, error)
	Register(ctx context.Context, displayName, email, password string) (TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (TokenPair, error)
	GoogleAuthURL(state string) (string, error)
	LoginWithGoogle(ctx context.Context, code string) (TokenPair, error)
}

type UserService interface {
	GetUserByEmail(ctx context.Context, email string) (user.User, error)
	GetUserByID(ctx context.Context, id string) (user.User, error)
	Register(ctx context.Context, displayName, email, password string) (user.User, error)
}

type LoginAttempt struct {
	FailedCount int
	JailedUntil time.Time
}

type LoginAttemptRepository interface {
	Get(ctx context.Context, email string) (LoginAttempt, error)
	Save(ctx context.Context, email string, attempt LoginAttempt) error
	Reset(ctx context.Context, email string) error
}

type PasswordHasher interface {
	Compare(hashed, plain string) error
}

type TokenProvider interface {
	GenerateAccessToken(u user.User) (string, error)
	GenerateRefreshToken(u user.User) (string, error)
	ParseRefreshToken(refreshToken string) (user.Principal, error)
}

type OAuthUser struct {
	Email         string
	Name          string
	EmailVerified bool
}

type GoogleOAuthProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (OAuthUser, error)
}

type Usecase struct {
	users          UserService
	attemptsRepo   LoginAttemptRepository
	passwordHasher PasswordHasher
	tokenProvider  TokenProvider
	googleProvider GoogleOAuthProvider
	maxRetries     int
	jailDuration   time.Duration
	now            func() time.Time
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func NewUsecase(
	users UserService,
	attemptsRepo LoginAttemptRepository,
	passwordHasher PasswordHasher,
	tokenProvider TokenProvider,
	googleProvider GoogleOAuthProvider,
) *Usecase {
	return &Usecase{
		users:          users,
		attemptsRepo:   attemptsRepo,
		passwordHasher: passwordHasher,
		tokenProvider:  tokenProvider,
		googleProvider: googleProvider,
		maxRetries:     5,
		jailDuration:   15 * time.Minute,
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

func (uc *Usecase) Login(ctx context.Context, email, password string) (TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	attempt, err := uc.attemptsRepo.Get(ctx, email)
	if err != nil {
		return TokenPair{}, err
	}

	if !attempt.JailedUntil.IsZero() {
		if attempt.JailedUntil.After(uc.now()) {
			return TokenPair{}, ErrAccountLocked
		}
		attempt.JailedUntil = time.Time{}
		attempt.FailedCount = 0
		if err := uc.attemptsRepo.Save(ctx, email, attempt); err != nil {
			return TokenPair{}, err
		}
	}

	u, err := uc.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errs.ErrorCode(err) != errs.ENOTFOUND && errs.ErrorCode(err) != errs.EINVALID {
			return TokenPair{}, err
		}
		if err := uc.recordFailure(ctx, email, attempt); err != nil {
			return TokenPair{}, err
		}
		return TokenPair{}, ErrInvalidCredentials
	}

	if err := uc.passwordHasher.Compare(u.PasswordHash, password); err != nil {
		if err := uc.recordFailure(ctx, email, attempt); err != nil {
			return TokenPair{}, err
		}
		return TokenPair{}, ErrInvalidCredentials
	}

	if err := uc.attemptsRepo.Reset(ctx, email); err != nil {
		return TokenPair{}, err
	}

	return uc.issueTokens(u)
}

// Register creates a regular account and signs it in.
func (uc *Usecase) Register(ctx context.Context, displayName, email, password string) (TokenPair, error) {
	u, err := uc.users.Register(ctx, displayName, email, password)
	if err != nil {
		return TokenPair{}, err
	}
	return uc.issueTokens(u)
}

func (uc *Usecase) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	p, err := uc.tokenProvider.ParseRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, ErrInvalidRefreshToken
	}

	// the account may have been removed since the token was issued
	u, err := uc.users.GetUserByID(ctx, p.UserID)
	if err != nil {
		if errs.ErrorCode(err) == errs.ENOTFOUND {
			return TokenPair{}, ErrInvalidRefreshToken
		}
		return TokenPair{}, err
	}

	return uc.issueTokens(u)
}

func (uc *Usecase) GoogleAuthURL(state string) (string, error) {
	if uc.googleProvider == nil {
		return "", ErrOAuthNotConfigured
	}
	if strings.TrimSpace(state) == "" {
		return "", ErrInvalidOAuthUser
	}
	return uc.googleProvider.AuthCodeURL(state), nil
}

func (uc *Usecase) LoginWithGoogle(ctx context.Context, code string) (TokenPair, error) {
	if uc.googleProvider == nil {
		return TokenPair{}, ErrOAuthNotConfigured
	}
	if strings.TrimSpace(code) == "" {
		return TokenPair{}, ErrInvalidOAuthUser
	}

	oauthUser, err := uc.googleProvider.Exchange(ctx, code)
	if err != nil {
		return TokenPair{}, err
	}
	if !oauthUser.EmailVerified || strings.TrimSpace(oauthUser.Email) == "" {
		return TokenPair{}, ErrInvalidOAuthUser
	}

	u, err := uc.users.GetUserByEmail(ctx, oauthUser.Email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			password, err := generateRandomPassword(32)
			if err != nil {
				return TokenPair{}, err
			}
			u, err = uc.users.Register(ctx, displayNameFor(oauthUser), oauthUser.Email, password)
			if err != nil {
				return TokenPair{}, err
			}
		} else {
			return TokenPair{}, err
		}
	}

	return uc.issueTokens(u)
}

func (uc *Usecase) issueTokens(u user.User) (TokenPair, error) {
	accessToken, err := uc.tokenProvider.GenerateAccessToken(u)
	if err != nil {
		return TokenPair{}, err
	}

	refreshToken, err := uc.tokenProvider.GenerateRefreshToken(u)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (uc *Usecase) recordFailure(ctx context.Context, email string, attempt LoginAttempt) error {
	attempt.FailedCount++
	if attempt.FailedCount >= uc.maxRetries {
		attempt.FailedCount = 0
		attempt.JailedUntil = uc.now().Add(uc.jailDuration)
	}
	return uc.attemptsRepo.Save(ctx, email, attempt)
}

// displayNameFor falls back to the e-mail's local part when Google has no name.
func displayNameFor(u OAuthUser) string {
	name := strings.TrimSpace(u.Name)
	if len([]rune(name)) >= 2 {
		if len([]rune(name)) > 50 {
			name = string([]rune(name)[:50])
		}
		return name
	}
	local, _, _ := strings.Cut(u.Email, "@")
	if len([]rune(local)) < 2 {
		return "Google user"
	}
	return local
}

func generateRandomPassword(length int) (string, error) {
	if length <= 0 {
		return "", errors.New("invalid password length")
	}
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
