package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/ducvu/chatserver/internal/auth"
	"github.com/ducvu/chatserver/internal/cache"
	"github.com/ducvu/chatserver/internal/core"
	"github.com/ducvu/chatserver/internal/domain"
	"github.com/ducvu/chatserver/internal/store"
)

type ConversationController struct {
	Conversations *store.Conversations
	Users         *store.Users
	Messages      *store.Messages
	// Cache is nil when redis is not configured.
	Cache *cache.Conversations
}

func (ctl *ConversationController) invalidate(c *gin.Context, id domain.RoomID) {
	if ctl.Cache != nil {
		ctl.Cache.Invalidate(c.Request.Context(), id)
	}
}

func (ctl *ConversationController) GetAll(c *gin.Context) {
	uid := domain.UserID(c.GetString(auth.CtxUserID))
	convs, err := ctl.Conversations.ListForUser(c.Request.Context(), uid)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("list conversations failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch conversations"})
		return
	}
	c.JSON(http.StatusOK, convs)
}

// loadForParticipant fetches the conversation and enforces membership,
// answering 404/401 itself. Returns nil when the response was already sent.
func (ctl *ConversationController) loadForParticipant(c *gin.Context) *domain.Conversation {
	id := domain.RoomID(c.Param("id"))
	if !id.Valid() {
		c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
		return nil
	}
	conv, err := ctl.Conversations.FindByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
			return nil
		}
		log.Error().Err(err).Str("module", "adapters.http").Msg("conversation lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch conversation"})
		return nil
	}
	if !conv.HasParticipant(domain.UserID(c.GetString(auth.CtxUserID))) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return nil
	}
	return conv
}

func (ctl *ConversationController) GetByID(c *gin.Context) {
	if conv := ctl.loadForParticipant(c); conv != nil {
		c.JSON(http.StatusOK, conv)
	}
}

type updatePayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (ctl *ConversationController) Update(c *gin.Context) {
	conv := ctl.loadForParticipant(c)
	if conv == nil {
		return
	}
	var p updatePayload
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}
	if err := ctl.Conversations.UpdateMeta(c.Request.Context(), conv.ID, p.Name, p.Description); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("conversation update failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update conversation"})
		return
	}
	ctl.invalidate(c, conv.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Conversation updated successfully"})
}

type createPayload struct {
	Type         string   `json:"type" binding:"required,oneof=direct group"`
	ReceiverID   string   `json:"receiverId"`
	Name         string   `json:"name"`
	Participants []string `json:"participants"`
}

func (ctl *ConversationController) Create(c *gin.Context) {
	uid := domain.UserID(c.GetString(auth.CtxUserID))
	var p createPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	switch domain.ConversationType(p.Type) {
	case domain.ConversationDirect:
		ctl.createDirect(c, uid, p)
	case domain.ConversationGroup:
		ctl.createGroup(c, uid, p)
	}
}

func (ctl *ConversationController) createDirect(c *gin.Context, uid domain.UserID, p createPayload) {
	if p.ReceiverID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}
	receiver, err := ctl.Users.FindByID(c.Request.Context(), domain.UserID(p.ReceiverID))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Participant not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create conversation"})
		return
	}

	// An existing direct pair is returned as-is instead of duplicated.
	if existing, err := ctl.Conversations.FindDirectBetween(c.Request.Context(), uid, receiver.ID); err == nil {
		c.JSON(http.StatusOK, existing)
		return
	} else if !errors.Is(err, core.ErrNotFound) {
		log.Error().Err(err).Str("module", "adapters.http").Msg("direct dedupe lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create conversation"})
		return
	}

	me, err := ctl.Users.FindByID(c.Request.Context(), uid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create conversation"})
		return
	}
	conv, err := domain.NewConversation(domain.ConversationDirect, []domain.User{*me, *receiver})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctl.persistAndReturn(c, conv)
}

func (ctl *ConversationController) createGroup(c *gin.Context, uid domain.UserID, p createPayload) {
	ids := append([]string{string(uid)}, p.Participants...)
	seen := make(map[string]struct{}, len(ids))
	var members []domain.User
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		u, err := ctl.Users.FindByID(c.Request.Context(), domain.UserID(id))
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Participant not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create conversation"})
			return
		}
		members = append(members, *u)
	}

	conv, err := domain.NewConversation(domain.ConversationGroup, members)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	conv.Name = p.Name
	conv.AdminID = uid
	ctl.persistAndReturn(c, conv)
}

func (ctl *ConversationController) persistAndReturn(c *gin.Context, conv *domain.Conversation) {
	if err := ctl.Conversations.Create(c.Request.Context(), conv); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("conversation create failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create conversation"})
		return
	}
	c.JSON(http.StatusOK, conv)
}

// History returns the room's messages in creation order; this is the fetch
// that picks up anything missed while offline.
func (ctl *ConversationController) History(c *gin.Context) {
	conv := ctl.loadForParticipant(c)
	if conv == nil {
		return
	}
	msgs, err := ctl.Messages.ListForConversation(c.Request.Context(), conv.ID, 0)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("list messages failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch messages"})
		return
	}
	c.JSON(http.StatusOK, msgs)
}
