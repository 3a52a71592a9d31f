package core

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ducvu/chatserver/internal/domain"
)

// Incoming events form a closed set, decoded once at the transport boundary.
// The broker switches over the concrete types exhaustively; an unrecognized
// type is a decode error, never a silent drop.

type ClientEvent interface {
	clientEvent()
}

type JoinEvent struct {
	RoomID domain.RoomID
}

type LeaveEvent struct {
	RoomID domain.RoomID
}

type MessageEvent struct {
	RoomID domain.RoomID
	Text   string
}

func (JoinEvent) clientEvent()    {}
func (LeaveEvent) clientEvent()   {}
func (MessageEvent) clientEvent() {}

var ErrUnknownEvent = fmt.Errorf("unknown event type")

type wireIn struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId"`
	Text   string `json:"text"`
}

// DecodeClientEvent parses one inbound frame into its variant.
func DecodeClientEvent(data []byte) (ClientEvent, error) {
	var w wireIn
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("bad frame: %w", err)
	}
	switch w.Type {
	case "join":
		return JoinEvent{RoomID: domain.RoomID(w.RoomID)}, nil
	case "leave":
		return LeaveEvent{RoomID: domain.RoomID(w.RoomID)}, nil
	case "message":
		return MessageEvent{RoomID: domain.RoomID(w.RoomID), Text: w.Text}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, w.Type)
	}
}

type wireConversation struct {
	Type         string               `json:"type"`
	Conversation *domain.Conversation `json:"conversation"`
}

type wireMessage struct {
	Type      string        `json:"type"`
	ID        string        `json:"_id"`
	RoomID    domain.RoomID `json:"roomId"`
	Sender    domain.UserID `json:"sender"`
	Text      string        `json:"text"`
	CreatedAt time.Time     `json:"createdAt"`
}

type wireError struct {
	Type    string `json:"type"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// EncodeConversation builds the join confirmation carrying the full snapshot.
func EncodeConversation(c *domain.Conversation) (Frame, error) {
	b, err := json.Marshal(wireConversation{Type: "conversation", Conversation: c})
	if err != nil {
		return nil, err
	}
	return Frame(b), nil
}

// EncodeMessage serializes the persisted form, generated id and server
// timestamp included, so every recipient observes the stored record.
func EncodeMessage(m *domain.Message) (Frame, error) {
	b, err := json.Marshal(wireMessage{
		Type:      "message",
		ID:        m.ID,
		RoomID:    m.ConversationID,
		Sender:    m.SenderID,
		Text:      m.Content,
		CreatedAt: m.CreatedAt,
	})
	if err != nil {
		return nil, err
	}
	return Frame(b), nil
}

// EncodeError never fails; a broken error path would mask the original error.
func EncodeError(msg, details string) Frame {
	b, _ := json.Marshal(wireError{Type: "error", Error: msg, Details: details})
	return Frame(b)
}
