package ws

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Hub manages active WebSocket connections keyed by user ID plus named
// rooms (conversation channels) that connections subscribe to. Every
// registered connection is implicitly reachable through its user's
// personal channel without joining any room.
type Hub struct {
	mu    sync.RWMutex
	conns map[int64]map[*websocket.Conn]struct{}
	rooms map[string]map[*websocket.Conn]struct{}
	// reverse index so Unregister can drop a connection from all rooms
	joined map[*websocket.Conn]map[string]struct{}
}

func NewHub() *Hub {
	return &Hub{
		conns:  make(map[int64]map[*websocket.Conn]struct{}),
		rooms:  make(map[string]map[*websocket.Conn]struct{}),
		joined: make(map[*websocket.Conn]map[string]struct{}),
	}
}

// Register adds a connection for the given user.
func (h *Hub) Register(userID int64, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.conns[userID] == nil {
		h.conns[userID] = make(map[*websocket.Conn]struct{})
	}
	h.conns[userID][conn] = struct{}{}
}

// Unregister removes a connection for the given user along with all of its
// room subscriptions. Returns how many connections the user still has.
func (h *Hub) Unregister(userID int64, conn *websocket.Conn) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, ok := h.conns[userID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.conns, userID)
		}
	}
	for room := range h.joined[conn] {
		h.dropFromRoom(room, conn)
	}
	delete(h.joined, conn)
	return len(h.conns[userID])
}

// Join subscribes a connection to a room. Joining twice is a no-op.
func (h *Hub) Join(room string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*websocket.Conn]struct{})
	}
	h.rooms[room][conn] = struct{}{}
	if h.joined[conn] == nil {
		h.joined[conn] = make(map[string]struct{})
	}
	h.joined[conn][room] = struct{}{}
}

// Leave unsubscribes a connection from a room. Leaving a room the
// connection never joined is a no-op.
func (h *Hub) Leave(room string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.dropFromRoom(room, conn)
	if joined, ok := h.joined[conn]; ok {
		delete(joined, room)
	}
}

func (h *Hub) dropFromRoom(room string, conn *websocket.Conn) {
	if conns, ok := h.rooms[room]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.rooms, room)
		}
	}
}

// RoomSize reports how many connections are subscribed to a room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// BroadcastRoom sends the payload to every connection subscribed to the
// room. A non-nil except connection is skipped (used for typing events).
func (h *Hub) BroadcastRoom(room string, except *websocket.Conn, payload any) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for conn := range h.rooms[room] {
		if conn == except {
			continue
		}
		if err := conn.WriteJSON(payload); err != nil {
			conn.Close()
			// actual removal is best-effort; a stale conn may linger until
			// its reader exits and unregisters it
		}
	}
}

// ToRoom implements service.Broadcaster.
func (h *Hub) ToRoom(room string, payload any) {
	h.BroadcastRoom(room, nil, payload)
}

// ToUsers sends the payload to all active connections of the provided
// user IDs (their personal channels).
func (h *Hub) ToUsers(userIDs []int64, payload any) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, uid := range userIDs {
		for conn := range h.conns[uid] {
			if err := conn.WriteJSON(payload); err != nil {
				conn.Close()
			}
		}
	}
}

// All sends the payload to every connected user.
func (h *Hub) All(payload any) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, conns := range h.conns {
		for conn := range conns {
			if err := conn.WriteJSON(payload); err != nil {
				conn.Close()
			}
		}
	}
}
