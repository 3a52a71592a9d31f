package app

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ducvu/chatserver/internal/core"
	"github.com/ducvu/chatserver/internal/domain"
	"github.com/ducvu/chatserver/internal/metrics"
)

// Error strings sent inside wire error frames. The two join failures are
// fatal to the connection; the rest leave it open.
const (
	msgInvalidRoomID = "Invalid room ID format"
	msgRoomNotFound  = "Conversation not found"
	msgJoinTimeout   = "Join timed out, retry"
	msgNotInRoom     = "Not joined to conversation"
	msgPersistFailed = "Failed to persist message"
)

const roomLockStripes = 64

// Broker owns the protocol logic shared by all connections: join validation,
// persist-then-broadcast, leave and disconnect cleanup. Per-connection state
// lives in Session.
type Broker struct {
	registry      *ConnectionRegistry
	conversations core.ConversationStore
	messages      core.MessageStore
	joinTimeout   time.Duration

	// One stripe is held across persist+fanout so that, per room, broadcast
	// order equals persistence order.
	roomLocks [roomLockStripes]sync.Mutex
}

func NewBroker(reg *ConnectionRegistry, convs core.ConversationStore, msgs core.MessageStore, joinTimeout time.Duration) *Broker {
	return &Broker{
		registry:      reg,
		conversations: convs,
		messages:      msgs,
		joinTimeout:   joinTimeout,
	}
}

func (b *Broker) lockFor(room domain.RoomID) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(room))
	return &b.roomLocks[h.Sum32()%roomLockStripes]
}

// Session is the per-connection state machine. Events of one connection are
// dispatched sequentially by its read pump, so only the closed flag needs to
// be safe for concurrent use (fan-out failures close sessions from other
// goroutines).
type Session struct {
	broker *Broker
	conn   core.Conn

	joined    map[domain.RoomID]struct{}
	closed    atomic.Bool
	closeOnce sync.Once
}

func (b *Broker) NewSession(conn core.Conn) *Session {
	return &Session{
		broker: b,
		conn:   conn,
		joined: make(map[domain.RoomID]struct{}),
	}
}

// HandleEvent dispatches one decoded client event. The event set is closed;
// every variant is handled here.
func (s *Session) HandleEvent(ctx context.Context, ev core.ClientEvent) {
	if s.closed.Load() {
		log.Debug().Str("module", "app.broker").Str("conn", string(s.conn.ID())).
			Msg("event after close dropped")
		return
	}
	switch e := ev.(type) {
	case core.JoinEvent:
		s.Join(ctx, e.RoomID)
	case core.LeaveEvent:
		s.Leave(e.RoomID)
	case core.MessageEvent:
		s.SendMessage(ctx, e.RoomID, e.Text)
	}
}

// Join validates the room id shape, looks the conversation up and registers
// the connection. A malformed id or a missing conversation is fatal to the
// connection; a store timeout is reported as retryable.
func (s *Session) Join(ctx context.Context, room domain.RoomID) {
	if s.closed.Load() {
		return
	}
	if !room.Valid() {
		metrics.JoinsRejected.Inc()
		_ = s.conn.TrySend(core.EncodeError(msgInvalidRoomID, string(room)))
		log.Warn().Str("module", "app.broker").Str("conn", string(s.conn.ID())).
			Str("room", string(room)).Msg("join rejected, malformed room id")
		s.shutdown()
		return
	}

	lookupCtx, cancel := context.WithTimeout(ctx, s.broker.joinTimeout)
	defer cancel()
	conv, err := s.broker.conversations.FindByID(lookupCtx, room)
	switch {
	case err == nil:
	case errors.Is(err, core.ErrNotFound):
		metrics.JoinsRejected.Inc()
		_ = s.conn.TrySend(core.EncodeError(msgRoomNotFound, string(room)))
		log.Warn().Str("module", "app.broker").Str("conn", string(s.conn.ID())).
			Str("room", string(room)).Msg("join rejected, no such conversation")
		s.shutdown()
		return
	default:
		_ = s.conn.TrySend(core.EncodeError(msgJoinTimeout, err.Error()))
		log.Error().Err(err).Str("module", "app.broker").Str("conn", string(s.conn.ID())).
			Str("room", string(room)).Msg("conversation lookup failed")
		return
	}

	if !conv.HasParticipant(s.conn.UserID()) {
		metrics.JoinsRejected.Inc()
		_ = s.conn.TrySend(core.EncodeError(msgRoomNotFound, string(room)))
		log.Warn().Str("module", "app.broker").Str("conn", string(s.conn.ID())).
			Str("room", string(room)).Str("user", string(s.conn.UserID())).
			Msg("join rejected, not a participant")
		s.shutdown()
		return
	}

	s.broker.registry.Subscribe(s.conn, room)
	s.joined[room] = struct{}{}

	frame, err := core.EncodeConversation(conv)
	if err != nil {
		log.Error().Err(err).Str("module", "app.broker").Msg("encode conversation")
		return
	}
	if err := s.conn.TrySend(frame); err != nil {
		log.Warn().Err(err).Str("module", "app.broker").Str("conn", string(s.conn.ID())).
			Msg("join confirmation not delivered")
	}
	log.Info().Str("module", "app.broker").Str("conn", string(s.conn.ID())).
		Str("room", string(room)).Msg("joined room")
}

// SendMessage persists the message, then fans the stored form out to every
// member of the room, sender included. Nothing is ever broadcast without a
// durable record existing first.
func (s *Session) SendMessage(ctx context.Context, room domain.RoomID, text string) {
	if s.closed.Load() {
		return
	}
	if _, ok := s.joined[room]; !ok {
		_ = s.conn.TrySend(core.EncodeError(msgNotInRoom, string(room)))
		return
	}

	mu := s.broker.lockFor(room)
	mu.Lock()
	defer mu.Unlock()

	msg := domain.NewMessage(room, s.conn.UserID(), text)
	if err := s.broker.messages.Create(ctx, msg); err != nil {
		_ = s.conn.TrySend(core.EncodeError(msgPersistFailed, err.Error()))
		log.Error().Err(err).Str("module", "app.broker").Str("room", string(room)).
			Msg("message persist failed")
		return
	}
	metrics.MessagesPersisted.Inc()

	// Advisory pointer for conversation-list previews; losing it costs a
	// stale preview, not a message.
	if err := s.broker.conversations.UpdateLastMessage(ctx, room, msg.ID); err != nil {
		log.Warn().Err(err).Str("module", "app.broker").Str("room", string(room)).
			Msg("last-message pointer not updated")
	}

	frame, err := core.EncodeMessage(msg)
	if err != nil {
		log.Error().Err(err).Str("module", "app.broker").Msg("encode message")
		return
	}
	for _, member := range s.broker.registry.MembersOf(room) {
		if err := member.TrySend(frame); err != nil {
			metrics.FanoutFailures.Inc()
			log.Warn().Err(err).Str("module", "app.broker").
				Str("conn", string(member.ID())).Msg("recipient unreachable, cleaning up")
			s.broker.registry.UnsubscribeAll(member)
			member.Close()
			continue
		}
		metrics.MessagesFannedOut.Inc()
	}
}

// Leave drops one membership. Leaving a room never joined is a no-op.
func (s *Session) Leave(room domain.RoomID) {
	if s.closed.Load() {
		return
	}
	delete(s.joined, room)
	s.broker.registry.Unsubscribe(s.conn, room)
	log.Info().Str("module", "app.broker").Str("conn", string(s.conn.ID())).
		Str("room", string(room)).Msg("left room")
}

// Disconnect moves the session to its terminal state and removes every
// membership, exactly once. Events arriving afterwards are dropped.
func (s *Session) Disconnect() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.broker.registry.UnsubscribeAll(s.conn)
		log.Info().Str("module", "app.broker").Str("conn", string(s.conn.ID())).
			Msg("session closed")
	})
}

// shutdown ends the session after a fatal protocol error and closes the
// transport. The adapter's own close path may run concurrently; both funnel
// through the same once.
func (s *Session) shutdown() {
	s.Disconnect()
	s.conn.Close()
}
