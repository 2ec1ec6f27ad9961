package auth

import (
	"time"

	"turfbook/internal/apperr"
)

var ErrInvalidToken = apperr.Unauthenticated("invalid or expired token")

type Authenticator interface {
	GenerateTokens(userID int64, role string) (*Tokens, error)
	ParseAccessToken(token string) (*Claims, error)
	ParseRefreshToken(token string) (*Claims, error)
}

type Tokens struct {
	AccessToken     string    `json:"access_token"`
	RefreshToken    string    `json:"refresh_token"`
	AccessExpiresAt time.Time `json:"access_expires_at"`
	// RefreshID is the jti of RefreshToken; the user store keeps the latest
	// one so older refresh tokens stop working after rotation.
	RefreshID string `json:"-"`
}

type Claims struct {
	UserID  int64
	Role    string
	TokenID string
}
