// Package cache adds a Redis cache-aside layer in front of conversation
// lookups, which sit on the hot join/send path.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/ducvu/chatserver/internal/core"
	"github.com/ducvu/chatserver/internal/domain"
)

const prefix = "conv:"

// Conversations decorates a core.ConversationStore. A cache failure is never
// an error for the caller; the store remains the source of truth.
type Conversations struct {
	inner  core.ConversationStore
	client *redis.Client
	ttl    time.Duration
}

func NewConversations(inner core.ConversationStore, client *redis.Client, ttl time.Duration) *Conversations {
	return &Conversations{inner: inner, client: client, ttl: ttl}
}

func (c *Conversations) FindByID(ctx context.Context, id domain.RoomID) (*domain.Conversation, error) {
	key := prefix + string(id)
	data, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var conv domain.Conversation
		if err := json.Unmarshal(data, &conv); err == nil {
			return &conv, nil
		}
		log.Warn().Str("module", "cache").Str("key", key).Msg("corrupt cache entry, dropping")
		_ = c.client.Del(ctx, key).Err()
	} else if err != redis.Nil {
		log.Warn().Err(err).Str("module", "cache").Msg("cache get failed")
	}

	conv, err := c.inner.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(conv); err == nil {
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			log.Warn().Err(err).Str("module", "cache").Msg("cache set failed")
		}
	}
	return conv, nil
}

func (c *Conversations) UpdateLastMessage(ctx context.Context, id domain.RoomID, messageID string) error {
	// Invalidate before the write so a stale preview cannot be re-cached
	// with the old pointer by a concurrent reader of the previous value.
	if err := c.client.Del(ctx, prefix+string(id)).Err(); err != nil {
		log.Warn().Err(err).Str("module", "cache").Msg("cache invalidate failed")
	}
	if err := c.inner.UpdateLastMessage(ctx, id, messageID); err != nil {
		return fmt.Errorf("update last message: %w", err)
	}
	return nil
}

// Invalidate drops one conversation from the cache, used after CRUD updates.
func (c *Conversations) Invalidate(ctx context.Context, id domain.RoomID) {
	if err := c.client.Del(ctx, prefix+string(id)).Err(); err != nil {
		log.Warn().Err(err).Str("module", "cache").Msg("cache invalidate failed")
	}
}
