package service

import (
	"errors"
	"time"

	"manhwahub/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrExpiredToken  = errors.New("token has expired")
	ErrInvalidUserID = errors.New("invalid user id")
)

// Scopes granted to tokens.
const (
	ScopeNotificationsRead  = "notifications:read"
	ScopeNotificationsWrite = "notifications:write"
)

// Claims identify the reader a request acts for.
type Claims struct {
	UserID int64    `json:"user_id"`
	Name   string   `json:"name"`
	Scopes []string `json:"scopes,omitempty"`
	jwt.RegisteredClaims
}

type AuthService interface {
	IssueToken(userID int64, name string, scopes ...string) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

type authService struct {
	jwtSecret string
	expiry    time.Duration
	now       func() time.Time
}

func NewAuthService(cfg *config.Config) AuthService {
	return &authService{
		jwtSecret: cfg.JWTSecret,
		expiry:    cfg.JWTExpiry,
		now:       time.Now,
	}
}

// IssueToken signs an HS256 access token for userID.
func (s *authService) IssueToken(userID int64, name string, scopes ...string) (string, error) {
	if userID <= 0 {
		return "", ErrInvalidUserID
	}
	if len(scopes) == 0 {
		scopes = []string{ScopeNotificationsRead}
	}
	now := s.now()
	claims := Claims{
		UserID: userID,
		Name:   name,
		Scopes: scopes,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "manhwahub",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(s.jwtSecret), nil
	}, jwt.WithTimeFunc(s.now))

	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, ErrExpiredToken
	}
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserID <= 0 {
		return nil, ErrInvalidUserID
	}

	return claims, nil
}
