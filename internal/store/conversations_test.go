package store

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/ducvu/chatserver/internal/core"
	"github.com/ducvu/chatserver/internal/domain"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string) *domain.User {
	t.Helper()
	u, err := domain.NewUser(username, username+"@example.com")
	if err != nil {
		t.Fatalf("failed to build user: %v", err)
	}
	u.PasswordHash = "x"
	if err := NewUsers(db).Create(context.Background(), u); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return u
}

func seedConversation(t *testing.T, db *gorm.DB, typ domain.ConversationType, users ...*domain.User) *domain.Conversation {
	t.Helper()
	members := make([]domain.User, 0, len(users))
	for _, u := range users {
		members = append(members, *u)
	}
	c, err := domain.NewConversation(typ, members)
	if err != nil {
		t.Fatalf("failed to build conversation: %v", err)
	}
	if err := NewConversations(db).Create(context.Background(), c); err != nil {
		t.Fatalf("failed to seed conversation: %v", err)
	}
	return c
}

func TestConversationsFindByID(t *testing.T) {
	db := setupTestDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	seeded := seedConversation(t, db, domain.ConversationDirect, alice, bob)

	repo := NewConversations(db)
	got, err := repo.FindByID(context.Background(), seeded.ID)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if got.ID != seeded.ID {
		t.Errorf("expected id %s, got %s", seeded.ID, got.ID)
	}
	if len(got.Participants) != 2 {
		t.Fatalf("participants not preloaded, got %d", len(got.Participants))
	}
	if !got.HasParticipant(alice.ID) || !got.HasParticipant(bob.ID) {
		t.Error("participant set incomplete")
	}
}

func TestConversationsFindByIDMissing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewConversations(db)

	_, err := repo.FindByID(context.Background(), domain.RoomID("507f1f77bcf86cd799439099"))
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected core.ErrNotFound, got %v", err)
	}
}

func TestConversationsListForUser(t *testing.T) {
	db := setupTestDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	carol := seedUser(t, db, "carol")
	seedConversation(t, db, domain.ConversationDirect, alice, bob)
	seedConversation(t, db, domain.ConversationDirect, bob, carol)

	repo := NewConversations(db)
	convs, err := repo.ListForUser(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("ListForUser() error = %v", err)
	}
	if len(convs) != 1 {
		t.Fatalf("expected 1 conversation for alice, got %d", len(convs))
	}
	if !convs[0].HasParticipant(alice.ID) {
		t.Error("listed conversation does not contain the user")
	}
}

func TestConversationsFindDirectBetween(t *testing.T) {
	db := setupTestDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	carol := seedUser(t, db, "carol")
	seeded := seedConversation(t, db, domain.ConversationDirect, alice, bob)

	repo := NewConversations(db)
	got, err := repo.FindDirectBetween(context.Background(), alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("FindDirectBetween() error = %v", err)
	}
	if got.ID != seeded.ID {
		t.Errorf("expected %s, got %s", seeded.ID, got.ID)
	}

	if _, err := repo.FindDirectBetween(context.Background(), alice.ID, carol.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected core.ErrNotFound for unpaired users, got %v", err)
	}
}

func TestConversationsUpdateLastMessage(t *testing.T) {
	db := setupTestDB(t)
	alice := seedUser(t, db, "alice")
	seeded := seedConversation(t, db, domain.ConversationGroup, alice)

	repo := NewConversations(db)
	msgID := domain.NewObjectID()
	if err := repo.UpdateLastMessage(context.Background(), seeded.ID, msgID); err != nil {
		t.Fatalf("UpdateLastMessage() error = %v", err)
	}

	got, err := repo.FindByID(context.Background(), seeded.ID)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if got.LastMessageID != msgID {
		t.Errorf("expected pointer %s, got %s", msgID, got.LastMessageID)
	}

	err = repo.UpdateLastMessage(context.Background(), domain.RoomID("507f1f77bcf86cd799439099"), msgID)
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected core.ErrNotFound for unknown room, got %v", err)
	}
}

func TestConversationsUpdateMeta(t *testing.T) {
	db := setupTestDB(t)
	alice := seedUser(t, db, "alice")
	seeded := seedConversation(t, db, domain.ConversationGroup, alice)

	repo := NewConversations(db)
	if err := repo.UpdateMeta(context.Background(), seeded.ID, "team", "weekly sync"); err != nil {
		t.Fatalf("UpdateMeta() error = %v", err)
	}
	got, err := repo.FindByID(context.Background(), seeded.ID)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if got.Name != "team" || got.Description != "weekly sync" {
		t.Errorf("meta not updated: %+v", got)
	}
}
