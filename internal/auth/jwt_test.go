package auth

import (
	"errors"
	"testing"
	"time"
)

func newTestAuthenticator() *JWTAuthenticator {
	return NewJWTAuthenticator("access-secret", "refresh-secret", "turfbook", "turfbook", time.Hour, 24*time.Hour)
}

func TestGenerateAndParse(t *testing.T) {
	a := newTestAuthenticator()

	toks, err := a.GenerateTokens(42, "venue_owner")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	c, err := a.ParseAccessToken(toks.AccessToken)
	if err != nil {
		t.Fatalf("parse access: %v", err)
	}
	if c.UserID != 42 || c.Role != "venue_owner" {
		t.Fatalf("unexpected claims %+v", c)
	}

	rc, err := a.ParseRefreshToken(toks.RefreshToken)
	if err != nil {
		t.Fatalf("parse refresh: %v", err)
	}
	if rc.UserID != 42 || rc.TokenID != toks.RefreshID {
		t.Fatalf("unexpected refresh claims %+v (want jti %s)", rc, toks.RefreshID)
	}
}

func TestTokensAreNotInterchangeable(t *testing.T) {
	a := newTestAuthenticator()
	toks, _ := a.GenerateTokens(1, "guest")

	if _, err := a.ParseAccessToken(toks.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("refresh token accepted as access token: %v", err)
	}
	if _, err := a.ParseRefreshToken(toks.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("access token accepted as refresh token: %v", err)
	}
}

func TestExpiredToken(t *testing.T) {
	a := newTestAuthenticator()
	issued := time.Now().Add(-2 * time.Hour)
	a.now = func() time.Time { return issued }
	toks, _ := a.GenerateTokens(1, "guest")

	a.now = time.Now
	if _, err := a.ParseAccessToken(toks.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired token accepted: %v", err)
	}
}
