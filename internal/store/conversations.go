package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/ducvu/chatserver/internal/core"
	"github.com/ducvu/chatserver/internal/domain"
)

// Conversations provides access to conversation records and their
// participant sets. It implements core.ConversationStore.
type Conversations struct {
	db *gorm.DB
}

func NewConversations(db *gorm.DB) *Conversations {
	return &Conversations{db: db}
}

func (r *Conversations) Create(ctx context.Context, c *domain.Conversation) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("failed to create conversation: %w", err)
	}
	return nil
}

func (r *Conversations) FindByID(ctx context.Context, id domain.RoomID) (*domain.Conversation, error) {
	var c domain.Conversation
	err := r.db.WithContext(ctx).
		Preload("Participants").
		First(&c, "id = ?", string(id)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find conversation: %w", err)
	}
	return &c, nil
}

// ListForUser returns every conversation the user participates in.
func (r *Conversations) ListForUser(ctx context.Context, uid domain.UserID) ([]domain.Conversation, error) {
	var out []domain.Conversation
	err := r.db.WithContext(ctx).
		Preload("Participants").
		Joins("JOIN conversation_participants cp ON cp.conversation_id = conversations.id").
		Where("cp.user_id = ?", string(uid)).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return out, nil
}

// FindDirectBetween returns an existing direct conversation for the exact
// pair, if one exists, so creation can dedupe.
func (r *Conversations) FindDirectBetween(ctx context.Context, a, b domain.UserID) (*domain.Conversation, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Table("conversation_participants").
		Select("conversation_id").
		Where("user_id IN ?", []string{string(a), string(b)}).
		Group("conversation_id").
		Having("COUNT(DISTINCT user_id) = ?", 2).
		Scan(&ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to match direct conversation: %w", err)
	}
	for _, id := range ids {
		c, err := r.FindByID(ctx, domain.RoomID(id))
		if err != nil {
			return nil, err
		}
		if c.Type == domain.ConversationDirect && len(c.Participants) == 2 {
			return c, nil
		}
	}
	return nil, core.ErrNotFound
}

// UpdateMeta changes the user-editable fields only.
func (r *Conversations) UpdateMeta(ctx context.Context, id domain.RoomID, name, description string) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Conversation{}).
		Where("id = ?", string(id)).
		Updates(map[string]any{"name": name, "description": description})
	if res.Error != nil {
		return fmt.Errorf("failed to update conversation: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return core.ErrNotFound
	}
	return nil
}

// UpdateLastMessage advances the conversation-list preview pointer.
// Single-row atomic update; callers treat failure as non-fatal.
func (r *Conversations) UpdateLastMessage(ctx context.Context, id domain.RoomID, messageID string) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Conversation{}).
		Where("id = ?", string(id)).
		Update("last_message_id", messageID)
	if res.Error != nil {
		return fmt.Errorf("failed to update last message: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return core.ErrNotFound
	}
	return nil
}
