package utils

import (
	"testing"

	"github.com/gabrielbaute/octopus-photos/config"
)

func setupJWTConfig() {
	config.AppConfig = &config.Config{
		JWT: config.JWTConfig{Secret: "test-secret", ExpireHours: 1},
	}
}

func TestGenerateAndParseToken(t *testing.T) {
	setupJWTConfig()

	token, err := GenerateToken(42)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if claims.UserID != 42 {
		t.Fatalf("wrong user ID %d", claims.UserID)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	setupJWTConfig()

	if _, err := ParseToken("not.a.token"); err == nil {
		t.Fatal("garbage token accepted")
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	setupJWTConfig()
	token, err := GenerateToken(42)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	config.AppConfig.JWT.Secret = "rotated-secret"
	if _, err := ParseToken(token); err == nil {
		t.Fatal("token signed with old secret accepted")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if hash == "hunter22" {
		t.Fatal("password not hashed")
	}
	if !CheckPassword("hunter22", hash) {
		t.Fatal("correct password rejected")
	}
	if CheckPassword("wrong", hash) {
		t.Fatal("wrong password accepted")
	}
}
