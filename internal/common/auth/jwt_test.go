package auth

import (
	"testing"
	"time"

	"github.com/CarTradeLink/CarTradeLink/internal/common/config"
)

func TestGenerateAndParseAccessToken(t *testing.T) {
	cfg := config.AuthConfig{
		Enabled:   true,
		JWTSecret: "test-secret",
		Issuer:    "cartradelink",
		Audience:  "cartradelink",
	}

	token, exp, err := GenerateAccessToken(cfg, "u-1", RoleBuyer, time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token")
	}
	if exp.Before(time.Now()) {
		t.Fatalf("expected exp in future")
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.Subject != "u-1" {
		t.Fatalf("subject mismatch: %s", claims.Subject)
	}
	if claims.Role != RoleBuyer {
		t.Fatalf("role mismatch: %s", claims.Role)
	}
}

func TestParseAccessTokenRejectsWrongSecret(t *testing.T) {
	cfg := config.AuthConfig{JWTSecret: "secret-a", Issuer: "cartradelink"}
	token, _, err := GenerateAccessToken(cfg, "d-1", RoleDealer, time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	other := config.AuthConfig{JWTSecret: "secret-b", Issuer: "cartradelink"}
	if _, err := ParseAccessToken(other, token); err == nil {
		t.Fatalf("expected parse to fail with wrong secret")
	}
}

func TestGenerateAccessTokenRejectsUnknownRole(t *testing.T) {
	cfg := config.AuthConfig{JWTSecret: "secret"}
	if _, _, err := GenerateAccessToken(cfg, "x-1", Role("superuser"), time.Hour); err == nil {
		t.Fatalf("expected error for unknown role")
	}
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole(" Dealership ")
	if err != nil {
		t.Fatalf("ParseRole: %v", err)
	}
	if r != RoleDealer {
		t.Fatalf("expected dealership, got %s", r)
	}
	if _, err := ParseRole("root"); err == nil {
		t.Fatalf("expected unknown role error")
	}
	if Role("superuser").Valid() {
		t.Fatalf("expected unknown role invalid")
	}
}
