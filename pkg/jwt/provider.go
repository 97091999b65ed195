package jwt

import (
	"errors"
	"mowitajm/user"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

type JWTProvider struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	now        func() time.Time
}

func NewJWTProvider(secret string, accessTTL, refreshTTL time.Duration) *JWTProvider {
	return &JWTProvider{
		Secret:     secret,
		AccessTTL:  accessTTL,
		RefreshTTL: refreshTTL,
		now:        time.Now,
	}
}

func (p *JWTProvider) GenerateAccessToken(u user.User) (string, error) {
	return p.sign(u, tokenTypeAccess, p.AccessTTL)
}

func (p *JWTProvider) GenerateRefreshToken(u user.User) (string, error) {
	return p.sign(u, tokenTypeRefresh, p.RefreshTTL)
}

func (p *JWTProvider) ParseAccessToken(accessToken string) (user.Principal, error) {
	return p.parse(accessToken, tokenTypeAccess)
}

func (p *JWTProvider) ParseRefreshToken(refreshToken string) (user.Principal, error) {
	return p.parse(refreshToken, tokenTypeRefresh)
}

func (p *JWTProvider) sign(u user.User, tokenType string, ttl time.Duration) (string, error) {
	now := p.now()
	claims := jwt.MapClaims{
		"user_id": u.ID,
		"email":   u.Email,
		"type":    tokenType,
		"iat":     now.Unix(),
		"exp":     now.Add(ttl).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(p.Secret))
}

func (p *JWTProvider) parse(raw, tokenType string) (user.Principal, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		return []byte(p.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return user.Principal{}, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return user.Principal{}, errors.New("invalid token claims")
	}

	if claimType, ok := claims["type"].(string); !ok || claimType != tokenType {
		return user.Principal{}, errors.New("invalid token type")
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return user.Principal{}, errors.New("invalid user id")
	}

	email, _ := claims["email"].(string)

	return user.Principal{
		UserID: userID,
		Email:  email,
	}, nil
}
