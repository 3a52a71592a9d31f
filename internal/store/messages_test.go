package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/ducvu/chatserver/internal/domain"
)

func TestMessagesCreateAndList(t *testing.T) {
	db := setupTestDB(t)
	alice := seedUser(t, db, "alice")
	conv := seedConversation(t, db, domain.ConversationGroup, alice)

	repo := NewMessages(db)
	var ids []string
	for i := 0; i < 5; i++ {
		m := domain.NewMessage(conv.ID, alice.ID, fmt.Sprintf("msg %d", i))
		if err := repo.Create(context.Background(), m); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		ids = append(ids, m.ID)
	}

	got, err := repo.ListForConversation(context.Background(), conv.ID, 0)
	if err != nil {
		t.Fatalf("ListForConversation() error = %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("expected 5 messages, got %d", len(got))
	}
	for i, m := range got {
		if m.ID != ids[i] {
			t.Errorf("position %d: expected %s, got %s (creation order broken)", i, ids[i], m.ID)
		}
	}

	n, err := repo.CountForConversation(context.Background(), conv.ID)
	if err != nil {
		t.Fatalf("CountForConversation() error = %v", err)
	}
	if n != 5 {
		t.Errorf("expected count 5, got %d", n)
	}
}

func TestMessagesListLimit(t *testing.T) {
	db := setupTestDB(t)
	alice := seedUser(t, db, "alice")
	conv := seedConversation(t, db, domain.ConversationGroup, alice)

	repo := NewMessages(db)
	for i := 0; i < 10; i++ {
		if err := repo.Create(context.Background(), domain.NewMessage(conv.ID, alice.ID, "m")); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	got, err := repo.ListForConversation(context.Background(), conv.ID, 3)
	if err != nil {
		t.Fatalf("ListForConversation() error = %v", err)
	}
	if len(got) != 3 {
		t.Errorf("expected limit of 3, got %d", len(got))
	}
}

func TestMessagesScopedToConversation(t *testing.T) {
	db := setupTestDB(t)
	alice := seedUser(t, db, "alice")
	convA := seedConversation(t, db, domain.ConversationGroup, alice)
	convB := seedConversation(t, db, domain.ConversationGroup, alice)

	repo := NewMessages(db)
	if err := repo.Create(context.Background(), domain.NewMessage(convA.ID, alice.ID, "for A")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := repo.ListForConversation(context.Background(), convB.ID, 0)
	if err != nil {
		t.Fatalf("ListForConversation() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("messages leaked across conversations: %d", len(got))
	}
}
