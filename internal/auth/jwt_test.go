package auth

import (
	"testing"

	"github.com/ducvu/chatserver/internal/domain"
)

func testUser() *domain.User {
	return &domain.User{
		ID:       domain.UserID("507f1f77bcf86cd799439011"),
		Username: "alice",
		Email:    "alice@example.com",
	}
}

func TestIssueAndVerify(t *testing.T) {
	m := NewJWTManager("test-secret")
	token, err := m.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	claims, err := m.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if claims.UserID != "507f1f77bcf86cd799439011" {
		t.Errorf("expected user id in claims, got %q", claims.UserID)
	}
	if claims.Username != "alice" || claims.Email != "alice@example.com" {
		t.Errorf("identity claims incomplete: %+v", claims)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := NewJWTManager("secret-a").Issue(testUser())
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if _, err := NewJWTManager("secret-b").Verify(token); err == nil {
		t.Fatal("token signed with a different secret must be rejected")
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	m := NewJWTManager("test-secret")
	for _, tok := range []string{"", "not.a.token", "aaaa.bbbb.cccc"} {
		if _, err := m.Verify(tok); err == nil {
			t.Errorf("expected rejection for %q", tok)
		}
	}
}
