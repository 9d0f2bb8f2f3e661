package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"dominion/internal/domain/campaign"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

var ErrHubClosed = errors.New("feed hub closed")

const (
	sendBuffer   = 256
	writeTimeout = 5 * time.Second
)

// Message is the envelope written to feed subscribers.
type Message struct {
	Type    campaign.LogType  `json:"type"`
	Faction string            `json:"faction_id,omitempty"`
	Entry   campaign.LogEntry `json:"entry"`
}

type client struct {
	conn    *websocket.Conn
	faction string
	send    chan []byte
}

// Hub streams log entries to websocket subscribers. A subscriber that sets
// ?faction=<id> only receives that faction's entries.
type Hub struct {
	logger   zerolog.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		logger: logger.With().Str("component", "feed_hub").Logger(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: map[*client]struct{}{},
	}
}

func (h *Hub) Name() string { return "feed_hub" }

func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) Send(_ context.Context, entries []campaign.LogEntry) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrHubClosed
	}
	for _, e := range entries {
		b, err := json.Marshal(Message{Type: e.Type, Faction: e.FactionID, Entry: e})
		if err != nil {
			return err
		}
		for c := range h.clients {
			if c.faction != "" && c.faction != e.FactionID {
				continue
			}
			select {
			case c.send <- b:
			default:
				// slow subscriber
				h.dropLocked(c)
			}
		}
	}
	return nil
}

// ServeHTTP upgrades the request and registers the subscriber.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}
	c := &client{conn: conn, faction: r.URL.Query().Get("faction"), send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.logger.Debug().Str("faction", c.faction).Msg("feed subscriber joined")

	go h.writePump(c)
	go h.readPump(c)
}

// Close disconnects every subscriber; later sends fail with ErrHubClosed.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		h.dropLocked(c)
	}
}

func (h *Hub) dropLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	h.dropLocked(c)
	h.mu.Unlock()
}

// readPump only drains control frames; subscribers never send data.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		_ = c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Debug().Err(err).Msg("feed subscriber read failed")
			}
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	defer c.conn.Close()
	for b := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
			h.unregister(c)
			return
		}
	}
	_ = c.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))
}
