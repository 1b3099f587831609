package ws

import (
	"sync"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/chatbook/chatbook-backend/metrics"
)

// Hub is the realtime bus: one room per user id, zero or more live
// connections per room (multi-tab). It is constructed in main and injected
// wherever publishing happens — there is no package-level instance. The room
// registry is a sharded concurrent map, so join/leave/publish may run from
// any goroutine.
type Hub struct {
	rooms *xsync.MapOf[uint, *room]
}

type room struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{rooms: xsync.NewMapOf[uint, *room]()}
}

// Join binds c to its user's room. The user id was fixed at construction
// from the authenticated session; a connection is never rebound.
func (h *Hub) Join(c *Client) {
	r, _ := h.rooms.LoadOrStore(c.userID, &room{clients: make(map[*Client]struct{})})
	r.mu.Lock()
	r.clients[c] = struct{}{}
	r.mu.Unlock()
	metrics.OpenConnections.Inc()
}

// Leave unbinds c. Safe to call more than once; only the first call closes
// the send channel.
func (h *Hub) Leave(c *Client) {
	r, ok := h.rooms.Load(c.userID)
	if !ok {
		return
	}
	r.mu.Lock()
	if _, bound := r.clients[c]; bound {
		delete(r.clients, c)
		close(c.send)
		metrics.OpenConnections.Dec()
	}
	r.mu.Unlock()
}

// Publish delivers msg to every connection bound to userID. Best-effort:
// an unbound user or a full send buffer drops the message — the durable
// notification log is the fallback, so Publish never blocks and never errors.
func (h *Hub) Publish(userID uint, msg []byte) {
	r, ok := h.rooms.Load(userID)
	if !ok {
		metrics.RealtimeDeliveries.WithLabelValues("dropped").Inc()
		return
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for c := range r.clients {
		select {
		case c.send <- msg:
			metrics.RealtimeDeliveries.WithLabelValues("delivered").Inc()
		default:
			metrics.RealtimeDeliveries.WithLabelValues("dropped").Inc()
		}
	}
}

// Close tears down every live connection; their read pumps then unbind
// themselves via Leave.
func (h *Hub) Close() {
	h.rooms.Range(func(_ uint, r *room) bool {
		r.mu.RLock()
		for c := range r.clients {
			if c.conn != nil {
				c.conn.Close()
			}
		}
		r.mu.RUnlock()
		return true
	})
}
