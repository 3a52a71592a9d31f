package store

import (
	"context"
	"errors"
	"testing"

	"github.com/ducvu/chatserver/internal/core"
)

func TestUsersFindByEmail(t *testing.T) {
	db := setupTestDB(t)
	alice := seedUser(t, db, "alice")

	repo := NewUsers(db)
	got, err := repo.FindByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("FindByEmail() error = %v", err)
	}
	if got.ID != alice.ID {
		t.Errorf("expected %s, got %s", alice.ID, got.ID)
	}

	if _, err := repo.FindByEmail(context.Background(), "nobody@example.com"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected core.ErrNotFound, got %v", err)
	}
}

func TestUsersDuplicateEmailRejected(t *testing.T) {
	db := setupTestDB(t)
	alice := seedUser(t, db, "alice")

	repo := NewUsers(db)
	dup := *alice
	dup.ID = "507f1f77bcf86cd799439011"
	dup.Username = "alice2"
	if err := repo.Create(context.Background(), &dup); err == nil {
		t.Fatal("expected unique constraint violation for duplicate email")
	}
}

func TestUsersFindAllHidesPassword(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, "alice")
	seedUser(t, db, "bob")

	repo := NewUsers(db)
	users, err := repo.FindAll(context.Background())
	if err != nil {
		t.Fatalf("FindAll() error = %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	for _, u := range users {
		if u.PasswordHash != "" {
			t.Errorf("password hash leaked for %s", u.Username)
		}
	}
}
