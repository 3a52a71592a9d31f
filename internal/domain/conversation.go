package domain

import (
	"errors"
	"time"
)

type ConversationType string

const (
	ConversationDirect ConversationType = "direct"
	ConversationGroup  ConversationType = "group"
)

var ErrBadConversationType = errors.New("conversation type must be direct or group")

// RoomID is a conversation's durable identifier used as the fan-out key.
type RoomID string

func (id RoomID) Valid() bool { return ValidObjectID(string(id)) }

// Conversation mirrors the stored record. Participants are resolved users so a
// join confirmation can carry the full snapshot the client renders from.
type Conversation struct {
	ID            RoomID           `json:"_id" gorm:"primaryKey;size:24"`
	Type          ConversationType `json:"type" gorm:"not null"`
	Participants  []User           `json:"participants" gorm:"many2many:conversation_participants"`
	Name          string           `json:"name,omitempty"`
	AdminID       UserID           `json:"admin,omitempty" gorm:"size:24"`
	CreatedAt     time.Time        `json:"createdAt"`
	LastMessageID string           `json:"lastMessage,omitempty" gorm:"size:24"`
	Avatar        string           `json:"avatar,omitempty"`
	Description   string           `json:"description,omitempty"`
}

// HasParticipant reports whether uid is part of the conversation.
func (c *Conversation) HasParticipant(uid UserID) bool {
	for i := range c.Participants {
		if c.Participants[i].ID == uid {
			return true
		}
	}
	return false
}

func NewConversation(t ConversationType, participants []User) (*Conversation, error) {
	if t != ConversationDirect && t != ConversationGroup {
		return nil, ErrBadConversationType
	}
	return &Conversation{
		ID:           RoomID(NewObjectID()),
		Type:         t,
		Participants: participants,
		CreatedAt:    time.Now(),
	}, nil
}
