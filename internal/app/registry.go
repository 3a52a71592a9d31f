package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/ducvu/chatserver/internal/core"
	"github.com/ducvu/chatserver/internal/domain"
)

// ConnectionRegistry is the one mutable structure shared between connection
// handlers: a many-to-many index of live connections and room ids. A single
// RWMutex guards both directions so MembersOf never observes a half-applied
// edge. Rooms have no lifecycle of their own; an absent key and an empty
// member set mean the same thing.
type ConnectionRegistry struct {
	mu     sync.RWMutex
	byRoom map[domain.RoomID]map[core.ConnID]core.Conn
	byConn map[core.ConnID]map[domain.RoomID]struct{}
}

func NewConnectionRegistry() *ConnectionRegistry {
	return &ConnectionRegistry{
		byRoom: make(map[domain.RoomID]map[core.ConnID]core.Conn),
		byConn: make(map[core.ConnID]map[domain.RoomID]struct{}),
	}
}

// Subscribe adds the (conn, room) edge. Subscribing twice is the same as once.
func (r *ConnectionRegistry) Subscribe(conn core.Conn, room domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	members := r.byRoom[room]
	if members == nil {
		members = make(map[core.ConnID]core.Conn)
		r.byRoom[room] = members
	}
	members[conn.ID()] = conn

	rooms := r.byConn[conn.ID()]
	if rooms == nil {
		rooms = make(map[domain.RoomID]struct{})
		r.byConn[conn.ID()] = rooms
	}
	rooms[room] = struct{}{}
	log.Debug().Str("module", "app.registry").Str("conn", string(conn.ID())).Str("room", string(room)).Msg("subscribed")
}

// Unsubscribe removes the edge if present; absent edges are a no-op.
func (r *ConnectionRegistry) Unsubscribe(conn core.Conn, room domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dropEdge(conn.ID(), room)
}

// UnsubscribeAll removes every edge for the connection, used on disconnect.
// Safe to call more than once; the second call finds nothing.
func (r *ConnectionRegistry) UnsubscribeAll(conn core.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for room := range r.byConn[conn.ID()] {
		r.dropEdge(conn.ID(), room)
	}
	delete(r.byConn, conn.ID())
	log.Debug().Str("module", "app.registry").Str("conn", string(conn.ID())).Msg("unsubscribed all")
}

func (r *ConnectionRegistry) dropEdge(id core.ConnID, room domain.RoomID) {
	if members, ok := r.byRoom[room]; ok {
		delete(members, id)
		if len(members) == 0 {
			delete(r.byRoom, room)
		}
	}
	if rooms, ok := r.byConn[id]; ok {
		delete(rooms, room)
		if len(rooms) == 0 {
			delete(r.byConn, id)
		}
	}
}

// MembersOf returns a point-in-time copy of the room's member connections,
// in no particular order. A returned connection may close concurrently with
// iteration; senders must tolerate that.
func (r *ConnectionRegistry) MembersOf(room domain.RoomID) []core.Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	members := r.byRoom[room]
	out := make([]core.Conn, 0, len(members))
	for _, c := range members {
		out = append(out, c)
	}
	return out
}

// IsMember reports whether the edge exists.
func (r *ConnectionRegistry) IsMember(conn core.Conn, room domain.RoomID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byConn[conn.ID()][room]
	return ok
}

// RoomsOf returns a copy of the rooms the connection subscribes to.
func (r *ConnectionRegistry) RoomsOf(conn core.Conn) []domain.RoomID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rooms := r.byConn[conn.ID()]
	out := make([]domain.RoomID, 0, len(rooms))
	for room := range rooms {
		out = append(out, room)
	}
	return out
}
