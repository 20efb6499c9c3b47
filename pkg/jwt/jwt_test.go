package jwt

import (
	"errors"
	"testing"
	"time"

	"github.com/johnquangdev/meeting-insights/pkg/config"
)

func TestManager_RoundTrip(t *testing.T) {
	m := NewManager(&config.JWTConfig{Secret: "s3cret", Expiry: time.Hour})

	token, err := m.GenerateAccessToken("user-42", "ana@example.com")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := m.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != "user-42" || claims.Email != "ana@example.com" || claims.Issuer != "meeting-insights" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestManager_Rejects(t *testing.T) {
	m := NewManager(&config.JWTConfig{Secret: "s3cret", Expiry: time.Hour})
	expired := NewManager(&config.JWTConfig{Secret: "s3cret", Expiry: -time.Minute})
	other := NewManager(&config.JWTConfig{Secret: "other", Expiry: time.Hour})
	foreign := NewManager(&config.JWTConfig{Secret: "s3cret", Expiry: time.Hour, Issuer: "someone-else"})

	tok := func(mgr *Manager) string {
		s, err := mgr.GenerateAccessToken("u", "")
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		return s
	}

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"expired", tok(expired), ErrTokenExpired},
		{"wrong secret", tok(other), ErrTokenInvalid},
		{"wrong issuer", tok(foreign), ErrTokenInvalid},
		{"garbage", "not.a.token", ErrTokenInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.ValidateAccessToken(tt.token); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}

	if _, err := m.GenerateAccessToken("", ""); err == nil {
		t.Fatal("expected empty user rejected")
	}
}
