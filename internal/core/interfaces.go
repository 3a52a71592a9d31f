package core

import (
	"context"
	"errors"

	"github.com/ducvu/chatserver/internal/domain"
)

// Frame is one encoded wire event, written as a single transport frame.
type Frame []byte

// ConnID identifies one live connection for the registry and logs.
type ConnID string

// Conn abstracts the transport endpoint of one client.
// Owned by the gateway adapter; the adapter must Close() it. The broker and
// registry hold non-owning references only.
type Conn interface {
	ID() ConnID
	UserID() domain.UserID
	// TrySend must never block: it queues the frame or fails immediately
	// (backpressure, closed connection).
	TrySend(Frame) error
	Close()
}

// ErrNotFound is returned by stores when a record does not exist.
var ErrNotFound = errors.New("not found")

// ConversationStore is the collaborator contract the broker consumes.
type ConversationStore interface {
	FindByID(ctx context.Context, id domain.RoomID) (*domain.Conversation, error)
	// UpdateLastMessage is advisory: it only feeds conversation-list
	// previews, so callers treat failure as non-fatal.
	UpdateLastMessage(ctx context.Context, id domain.RoomID, messageID string) error
}

// MessageStore is the durable append-only record of chat messages.
type MessageStore interface {
	Create(ctx context.Context, m *domain.Message) error
}
