package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/ducvu/chatserver/internal/domain"
)

// Messages is the append-only message record. It implements
// core.MessageStore.
type Messages struct {
	db *gorm.DB
}

func NewMessages(db *gorm.DB) *Messages {
	return &Messages{db: db}
}

func (r *Messages) Create(ctx context.Context, m *domain.Message) error {
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

// ListForConversation returns the room's history in creation order.
func (r *Messages) ListForConversation(ctx context.Context, id domain.RoomID, limit int) ([]domain.Message, error) {
	q := r.db.WithContext(ctx).
		Where("conversation_id = ?", string(id)).
		Order("created_at ASC, id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []domain.Message
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return out, nil
}

// CountForConversation is used by tests and the history endpoint.
func (r *Messages) CountForConversation(ctx context.Context, id domain.RoomID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("conversation_id = ?", string(id)).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return n, nil
}
