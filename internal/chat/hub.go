// Package chat runs per-token message streams with live WebSocket fanout.
package chat

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"sames-backend/internal/domain"
	"sames-backend/internal/observability"
)

const (
	writeWait      = 10 * time.Second
	pingPeriod     = 30 * time.Second
	sendBufferSize = 32
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser clients connect from the launch page directly.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// subscriber is one WebSocket connection listening to a token's chat.
type subscriber struct {
	conn *websocket.Conn
	send chan *domain.ChatMessageWithProfile
}

// Hub fans chat messages out to WebSocket subscribers grouped by token.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[*subscriber]struct{} // token -> subscribers
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*subscriber]struct{})}
}

// Subscribe upgrades the HTTP request to a WebSocket and streams messages
// for the token until the client disconnects. It blocks for the lifetime
// of the connection.
func (h *Hub) Subscribe(w http.ResponseWriter, r *http.Request, tokenAddress string) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	sub := &subscriber{
		conn: conn,
		send: make(chan *domain.ChatMessageWithProfile, sendBufferSize),
	}

	h.register(tokenAddress, sub)
	defer h.unregister(tokenAddress, sub)

	go sub.writeLoop()

	// Read loop: the client sends nothing we care about, but reading is
	// what surfaces the close frame.
	conn.SetPongHandler(func(string) error { return nil })
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return nil
		}
	}
}

// Broadcast delivers a message to every subscriber of its token. Slow
// subscribers with a full buffer are skipped rather than blocking the
// sender.
func (h *Hub) Broadcast(msg *domain.ChatMessageWithProfile) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subs[msg.TokenAddress] {
		select {
		case sub.send <- msg:
		default:
			log.Warn().
				Str("token", msg.TokenAddress).
				Msg("chat subscriber buffer full, dropping message")
		}
	}
}

// Subscribers reports how many connections listen to a token.
func (h *Hub) Subscribers(tokenAddress string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[tokenAddress])
}

func (h *Hub) register(tokenAddress string, sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subs[tokenAddress] == nil {
		h.subs[tokenAddress] = make(map[*subscriber]struct{})
	}
	h.subs[tokenAddress][sub] = struct{}{}
	observability.DefaultMetrics.ChatSubscribers.Inc()
}

func (h *Hub) unregister(tokenAddress string, sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if set, ok := h.subs[tokenAddress]; ok {
		if _, ok := set[sub]; ok {
			delete(set, sub)
			close(sub.send)
			observability.DefaultMetrics.ChatSubscribers.Dec()
		}
		if len(set) == 0 {
			delete(h.subs, tokenAddress)
		}
	}
}

func (s *subscriber) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-s.send:
			if !ok {
				s.conn.SetWriteDeadline(time.Now().Add(writeWait))
				s.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
