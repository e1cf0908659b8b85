package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gdugdh24/partnerfinder/internal/domain"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 16
)

var ErrClientTooSlow = errors.New("websocket client too slow")

type client struct {
	userID string
	conn   *websocket.Conn
	send   chan domain.Notification
}

// Hub pushes notifications to the websocket connections of online users.
// Offline recipients are skipped silently.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*client]struct{}
	log     zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients: make(map[string]map[*client]struct{}),
		log:     log.With().Str("component", "ws_hub").Logger(),
	}
}

// Serve registers conn for userID and blocks until the connection closes.
func (h *Hub) Serve(userID string, conn *websocket.Conn) {
	c := &client{userID: userID, conn: conn, send: make(chan domain.Notification, sendBuffer)}
	h.add(c)
	defer h.remove(c)

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.readPump(c)
	}()
	h.writePump(c, done)
}

func (h *Hub) Send(_ context.Context, recipientID string, n domain.Notification) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var errs []error
	for c := range h.clients[recipientID] {
		select {
		case c.send <- n:
		default:
			errs = append(errs, ErrClientTooSlow)
		}
	}
	return errors.Join(errs...)
}

// Online reports how many connections userID currently has.
func (h *Hub) Online(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[c.userID] == nil {
		h.clients[c.userID] = make(map[*client]struct{})
	}
	h.clients[c.userID][c] = struct{}{}
	h.log.Debug().Str("user_id", c.userID).Msg("client connected")
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients[c.userID], c)
	if len(h.clients[c.userID]) == 0 {
		delete(h.clients, c.userID)
	}
	c.conn.Close()
	h.log.Debug().Str("user_id", c.userID).Msg("client disconnected")
}

// readPump drains client frames so control messages are processed.
func (h *Hub) readPump(c *client) {
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case n := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(n); err != nil {
				h.log.Warn().Err(err).Str("user_id", c.userID).Msg("failed to push notification")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
