// apps/versus-server/internal/wshub/hub.go
//
// Topic-based websocket fan-out. Each connection subscribes to one topic
// (e.g. "versus:<matchId>") and receives every message published to it.
// Publishing never blocks: a client whose buffer is full misses the message.

package wshub

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	sendBuffer   = 16
	writeTimeout = 5 * time.Second
)

// Client is one subscribed connection.
type Client struct {
	ID    string
	Topic string
	Conn  *websocket.Conn
	Send  chan []byte
}

// NewClient allocates a client with a buffered send queue.
func NewClient(topic string, conn *websocket.Conn) *Client {
	return &Client{ID: uuid.NewString(), Topic: topic, Conn: conn, Send: make(chan []byte, sendBuffer)}
}

// WritePump drains Send into the connection until ctx ends or Send closes.
func (c *Client) WritePump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-c.Send:
			if !ok {
				return
			}
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.Conn.Write(wctx, websocket.MessageText, msg)
			cancel()
			if err != nil {
				return
			}
		}
	}
}

// Hub tracks clients per topic.
type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[string]*Client
}

func NewHub() *Hub {
	return &Hub{topics: make(map[string]map[string]*Client)}
}

// Register subscribes c to its topic.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	m, ok := h.topics[c.Topic]
	if !ok {
		m = make(map[string]*Client)
		h.topics[c.Topic] = m
	}
	m[c.ID] = c
}

// Unregister removes c and closes its Send channel. Safe to call twice.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	m := h.topics[c.Topic]
	if _, ok := m[c.ID]; !ok {
		return
	}
	close(c.Send)
	delete(m, c.ID)
	if len(m) == 0 {
		delete(h.topics, c.Topic)
	}
}

// Publish sends v as JSON to every client on topic.
func (h *Hub) Publish(topic string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("wshub marshal")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.topics[topic] {
		select {
		case c.Send <- data:
		default:
			log.Debug().Str("topic", topic).Str("client", c.ID).Msg("wshub drop")
		}
	}
}

// Count is the number of clients on topic.
func (h *Hub) Count(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

// Serve upgrades the request, subscribes it to topic, sends initial (if
// non-nil) and blocks until the peer goes away. Incoming messages are ignored.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, topic string, initial any, originPatterns []string) error {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: originPatterns})
	if err != nil {
		return err
	}
	defer conn.CloseNow()

	c := NewClient(topic, conn)
	h.Register(c)
	defer h.Unregister(c)

	if initial != nil {
		if data, err := json.Marshal(initial); err == nil {
			c.Send <- data
		}
	}

	ctx := conn.CloseRead(r.Context())
	log.Debug().Str("topic", topic).Str("client", c.ID).Msg("ws connected")
	c.WritePump(ctx)
	log.Debug().Str("topic", topic).Str("client", c.ID).Msg("ws disconnected")
	return conn.Close(websocket.StatusNormalClosure, "")
}
