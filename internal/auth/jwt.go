package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type JWTAuthenticator struct {
	secret        string
	refreshSecret string
	aud           string
	iss           string
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewJWTAuthenticator(secret, refreshSecret, aud, iss string, accessTTL, refreshTTL time.Duration) *JWTAuthenticator {
	return &JWTAuthenticator{
		secret:        secret,
		refreshSecret: refreshSecret,
		aud:           aud,
		iss:           iss,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

// GenerateTokens generates both access and refresh tokens
func (a *JWTAuthenticator) GenerateTokens(userID int64, role string) (*Tokens, error) {
	now := a.now()
	sub := strconv.FormatInt(userID, 10)
	accessExp := now.Add(a.accessTTL)

	accessClaims := jwt.MapClaims{
		"sub":  sub,
		"role": role,
		"exp":  accessExp.Unix(),
		"iat":  now.Unix(),
		"nbf":  now.Unix(),
		"iss":  a.iss,
		"aud":  a.aud,
	}

	refreshID := uuid.NewString()
	refreshClaims := jwt.MapClaims{
		"sub": sub,
		"jti": refreshID,
		"exp": now.Add(a.refreshTTL).Unix(),
		"iat": now.Unix(),
		"iss": a.iss,
	}

	accessToken, err := sign(accessClaims, a.secret)
	if err != nil {
		return nil, err
	}

	refreshToken, err := sign(refreshClaims, a.refreshSecret)
	if err != nil {
		return nil, err
	}

	return &Tokens{
		AccessToken:     accessToken,
		RefreshToken:    refreshToken,
		AccessExpiresAt: accessExp,
		RefreshID:       refreshID,
	}, nil
}

func sign(claims jwt.Claims, secret string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return s, nil
}

func (a *JWTAuthenticator) ParseAccessToken(token string) (*Claims, error) {
	return a.parse(token, a.secret, jwt.WithAudience(a.aud))
}

func (a *JWTAuthenticator) ParseRefreshToken(token string) (*Claims, error) {
	c, err := a.parse(token, a.refreshSecret)
	if err != nil {
		return nil, err
	}
	if c.TokenID == "" {
		return nil, ErrInvalidToken
	}
	return c, nil
}

func (a *JWTAuthenticator) parse(token, secret string, opts ...jwt.ParserOption) (*Claims, error) {
	opts = append(opts,
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(a.iss),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithTimeFunc(a.now),
	)

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken.With(err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return nil, ErrInvalidToken.With(err)
	}
	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return nil, ErrInvalidToken.With(err)
	}

	c := &Claims{UserID: userID}
	c.Role, _ = claims["role"].(string)
	c.TokenID, _ = claims["jti"].(string)
	return c, nil
}
