package worker

import "sync"

// PageClient is one open page the worker can talk to.
type PageClient interface {
	// Send delivers a message to the page. Fire-and-forget.
	Send(msg Message) error

	// Focus brings the page to the foreground.
	Focus() error

	// URL is the page's current location.
	URL() string
}

// Hub tracks the pages currently attached to the worker and fans messages
// out to them. A client whose Send fails is dropped.
type Hub struct {
	mu      sync.RWMutex
	clients map[PageClient]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[PageClient]struct{})}
}

func (h *Hub) Register(c PageClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

func (h *Hub) Unregister(c PageClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c)
}

// Clients returns a snapshot of the attached pages.
func (h *Hub) Clients() []PageClient {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]PageClient, 0, len(h.clients))
	for c := range h.clients {
		out = append(out, c)
	}
	return out
}

// Broadcast sends msg to every attached page.
func (h *Hub) Broadcast(msg Message) {
	var failed []PageClient
	for _, c := range h.Clients() {
		if err := c.Send(msg); err != nil {
			failed = append(failed, c)
		}
	}
	for _, c := range failed {
		h.Unregister(c)
	}
}
