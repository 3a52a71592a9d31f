package domain

import "time"

// Message is immutable once created; the broker builds it, the store persists
// it, and only the persisted form is ever broadcast.
type Message struct {
	ID             string    `json:"_id" gorm:"primaryKey;size:24"`
	ConversationID RoomID    `json:"conversation" gorm:"size:24;index:idx_conv_created,priority:1;not null"`
	SenderID       UserID    `json:"sender" gorm:"size:24;index;not null"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"createdAt" gorm:"index:idx_conv_created,priority:2"`
}

func NewMessage(room RoomID, sender UserID, content string) *Message {
	return &Message{
		ID:             NewObjectID(),
		ConversationID: room,
		SenderID:       sender,
		Content:        content,
		CreatedAt:      time.Now(),
	}
}
