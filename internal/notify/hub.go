// Package notify delivers oracle notifications to external consumers: a
// websocket hub for live indexers and a cron-driven webhook dispatcher that
// drains the transactional outbox.
package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"

	"matchoracle/internal/models"
)

// Hub fans notifications out to connected websocket subscribers. Slow
// subscribers drop events rather than block the publisher.
type Hub struct {
	Logger *zap.Logger

	mu   sync.Mutex
	subs map[chan []byte]struct{}
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		Logger: logger,
		subs:   map[chan []byte]struct{}{},
	}
}

func (h *Hub) Publish(n models.Notification) {
	raw, err := json.Marshal(map[string]any{
		"id":         n.ID,
		"event_type": n.EventType,
		"match_id":   n.MatchID,
		"payload":    json.RawMessage(n.Payload),
		"created_at": n.CreatedAt.Format(time.RFC3339Nano),
	})
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- raw:
		default:
		}
	}
}

func (h *Hub) subscribe() chan []byte {
	ch := make(chan []byte, 64)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *Hub) unsubscribe(ch chan []byte) {
	h.mu.Lock()
	delete(h.subs, ch)
	h.mu.Unlock()
}

// ServeWS upgrades the request and streams notifications until the client
// disconnects.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("websocket accept failed", zap.Error(err))
		}
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	ch := h.subscribe()
	defer h.unsubscribe(ch)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-ch:
			writeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			err := conn.Write(writeCtx, websocket.MessageText, msg)
			cancel()
			if err != nil {
				return
			}
		}
	}
}
