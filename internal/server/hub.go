package server

import (
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/raminperspolisi/MafiaVERSE-backend/internal"
)

// Hub tracks which connection belongs to which player per room and fans out
// the events the game core emits. It is the only code that writes to
// sockets; the core addresses players purely by id.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[string]*client
	log   zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		rooms: make(map[string]map[string]*client),
		log:   log.With().Str("component", "hub").Logger(),
	}
}

// client is one websocket connection. Writes go through the buffered send
// channel so a slow reader never blocks a broadcast; the write pump is the
// sole goroutine touching conn for writes.
type client struct {
	playerID string
	roomID   string
	conn     *websocket.Conn
	send     chan internal.Message[any]
	closed   chan struct{}
	once     sync.Once
}

const sendBuffer = 32

func newClient(roomID, playerID string, conn *websocket.Conn) *client {
	return &client{
		playerID: playerID,
		roomID:   roomID,
		conn:     conn,
		send:     make(chan internal.Message[any], sendBuffer),
		closed:   make(chan struct{}),
	}
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.closed)
		c.conn.Close()
	})
}

// enqueue drops the message if the client's buffer is full; a reader that
// far behind is beyond saving and the read pump will reap it.
func (c *client) enqueue(msg internal.Message[any]) bool {
	select {
	case c.send <- msg:
		return true
	case <-c.closed:
		return false
	default:
		return false
	}
}

// writePump drains the send channel onto the socket.
func (c *client) writePump() {
	for {
		select {
		case msg := <-c.send:
			if err := c.conn.WriteJSON(msg); err != nil {
				c.close()
				return
			}
		case <-c.closed:
			return
		}
	}
}

func (h *Hub) Register(c *client) {
	h.mu.Lock()
	room, ok := h.rooms[c.roomID]
	if !ok {
		room = make(map[string]*client)
		h.rooms[c.roomID] = room
	}
	old := room[c.playerID]
	room[c.playerID] = c
	h.mu.Unlock()

	if old != nil {
		old.close()
	}
	go c.writePump()
}

func (h *Hub) Unregister(c *client) {
	h.mu.Lock()
	if room, ok := h.rooms[c.roomID]; ok && room[c.playerID] == c {
		delete(room, c.playerID)
		if len(room) == 0 {
			delete(h.rooms, c.roomID)
		}
	}
	h.mu.Unlock()
	c.close()
}

// BroadcastToRoom sends to every connection subscribed to the room.
func (h *Hub) BroadcastToRoom(roomID string, msg internal.Message[any]) {
	h.mu.RLock()
	clients := make([]*client, 0, len(h.rooms[roomID]))
	for _, c := range h.rooms[roomID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if !c.enqueue(msg) {
			h.log.Debug().Str("room", roomID).Str("player", c.playerID).Msg("dropped broadcast for slow client")
		}
	}
}

// SendToPlayer delivers a private event to a single player's connection.
func (h *Hub) SendToPlayer(roomID, playerID string, msg internal.Message[any]) {
	h.mu.RLock()
	c := h.rooms[roomID][playerID]
	h.mu.RUnlock()

	if c == nil {
		return
	}
	if !c.enqueue(msg) {
		h.log.Debug().Str("room", roomID).Str("player", playerID).Msg("dropped private event for slow client")
	}
}
