package utils

import (
	"strings"
	"testing"
	"time"

	"counseling-app-server/internal/config"
	"counseling-app-server/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:                 "access-secret",
		JWTRefreshSecret:          "refresh-secret",
		JWTExpirationMinutes:      15,
		JWTRefreshExpirationHours: 24,
	}
}

func TestGenerateAndValidateTokens(t *testing.T) {
	cfg := testConfig()
	user := &models.User{Role: models.RoleCounselor}
	user.ID = "user-1"

	access, refresh, err := GenerateTokens(user, cfg)
	if err != nil {
		t.Fatalf("GenerateTokens: %v", err)
	}

	claims, err := ValidateToken(access, cfg.JWTSecret, TokenTypeAccess)
	if err != nil {
		t.Fatalf("ValidateToken(access): %v", err)
	}
	if claims.UserID != "user-1" || claims.Role != models.RoleCounselor || claims.Subject != "user-1" {
		t.Errorf("claims = %+v", claims)
	}

	if _, err := ValidateToken(refresh, cfg.JWTRefreshSecret, TokenTypeRefresh); err != nil {
		t.Errorf("ValidateToken(refresh): %v", err)
	}
}

func TestValidateTokenRejects(t *testing.T) {
	cfg := testConfig()
	user := &models.User{Role: models.RoleStudent}
	user.ID = "user-2"
	access, refresh, err := GenerateTokens(user, cfg)
	if err != nil {
		t.Fatalf("GenerateTokens: %v", err)
	}

	expired, err := signToken(user, TokenTypeAccess, time.Now().Add(-time.Minute), cfg.JWTSecret)
	if err != nil {
		t.Fatalf("signToken: %v", err)
	}

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID:           "user-2",
		TokenType:        TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "someone-else", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	foreignToken, err := foreign.SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		t.Fatalf("sign foreign token: %v", err)
	}

	tests := []struct {
		name      string
		token     string
		secret    string
		tokenType string
		wantErr   string
	}{
		{"refresh token used as access", refresh, cfg.JWTRefreshSecret, TokenTypeAccess, "unexpected token type"},
		{"access token used as refresh", access, cfg.JWTSecret, TokenTypeRefresh, "unexpected token type"},
		{"wrong secret", access, cfg.JWTRefreshSecret, TokenTypeAccess, "signature"},
		{"expired", expired, cfg.JWTSecret, TokenTypeAccess, "expired"},
		{"other issuer", foreignToken, cfg.JWTSecret, TokenTypeAccess, "issuer"},
		{"garbage", "not-a-token", cfg.JWTSecret, TokenTypeAccess, "malformed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateToken(tt.token, tt.secret, tt.tokenType)
			if err == nil {
				t.Fatal("ValidateToken succeeded, want an error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}
