package ws

import (
	"sync"
)

// Hub tracks the live websocket connections of this process so they can
// be closed together on shutdown. Room membership lives in chat.Groups.
type Hub struct {
	mu    sync.RWMutex
	conns map[*clientConn]struct{}
}

func NewHub() *Hub { return &Hub{conns: map[*clientConn]struct{}{}} }

func (h *Hub) add(c *clientConn) {
	h.mu.Lock()
	h.conns[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) remove(c *clientConn) {
	h.mu.Lock()
	delete(h.conns, c)
	h.mu.Unlock()
}

// Len returns the number of open connections.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// CloseAll asks every connection to close and returns how many there were.
func (h *Hub) CloseAll() int {
	// Take a quick snapshot of the current connections
	h.mu.RLock()
	conns := make([]*clientConn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		c.close()
	}
	return len(conns)
}
