package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait     = 10 * time.Second
	pongWait      = 60 * time.Second
	pingPeriod    = (pongWait * 9) / 10
	maxMsgSize    = 4096
	sendQueueSize = 256
)

// connection is one live device of a user.
type connection struct {
	ws   *websocket.Conn
	send chan []byte
	room int64 // user room this connection belongs to, 0 = none; guarded by Hub.mu
}

func (c *connection) enqueue(data []byte) {
	select {
	case c.send <- data:
	default:
		// Client too slow, drop. Push is best-effort; REST is authoritative.
	}
}

func (c *connection) sendEvent(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	c.enqueue(data)
}

// writePump drains the send queue to the socket and keeps it alive with pings.
func (c *connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Hub is the connection registry and broadcaster: it tracks every live
// connection per user and fans events out to them. It is constructed once
// in main and injected wherever live pushes are needed; it never touches
// the store.
type Hub struct {
	mu    sync.RWMutex
	rooms map[int64]map[*connection]struct{}
}

func NewHub() *Hub {
	return &Hub{
		rooms: make(map[int64]map[*connection]struct{}),
	}
}

// join adds the connection to the user's room. Idempotent; a connection is
// in at most one room, so joining a different room moves membership.
func (h *Hub) join(userID int64, c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c.room == userID {
		return
	}
	if c.room != 0 {
		h.removeLocked(c.room, c)
	}

	set := h.rooms[userID]
	if set == nil {
		set = make(map[*connection]struct{})
		h.rooms[userID] = set
	}
	set[c] = struct{}{}
	c.room = userID
}

// leave removes the connection from the room; no-op if absent.
func (h *Hub) leave(userID int64, c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeLocked(userID, c)
	if c.room == userID {
		c.room = 0
	}
}

// drop prunes the connection on transport disconnect and closes its send
// queue. Dead connections must never stay registered: they would silently
// absorb future broadcasts.
func (h *Hub) drop(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c.room != 0 {
		h.removeLocked(c.room, c)
		c.room = 0
	}
	close(c.send)
}

func (h *Hub) removeLocked(userID int64, c *connection) {
	set, ok := h.rooms[userID]
	if !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.rooms, userID)
	}
}

// ConnectionCount reports how many live connections a user currently has.
func (h *Hub) ConnectionCount(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[userID])
}

// PushToUser delivers the event to every live connection of the user.
// Fire-and-forget: no ack, no retry, no error. A user with zero
// connections simply misses the event.
func (h *Hub) PushToUser(userID int64, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[userID] {
		c.enqueue(data)
	}
}

// PushToUsers fans a shared event template out to several users, stamping
// each copy with its recipient. The template itself is never mutated.
func (h *Hub) PushToUsers(userIDs []int64, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, userID := range userIDs {
		ev := event
		ev.UserID = userID
		data, err := json.Marshal(ev)
		if err != nil {
			continue
		}
		for c := range h.rooms[userID] {
			c.enqueue(data)
		}
	}
}

// PushUnreadCount delivers a counter update. The value always comes freshly
// computed from the store; the hub never increments anything itself.
func (h *Hub) PushUnreadCount(userID int64, count int64) {
	h.PushToUser(userID, UnreadCountEvent(count))
}

// pushToRoomExcept relays an event to a user's connections, skipping the
// originating one. Used for peer-device sync echoes.
func (h *Hub) pushToRoomExcept(userID int64, except *connection, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[userID] {
		if c == except {
			continue
		}
		c.enqueue(data)
	}
}
