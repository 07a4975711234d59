package server

import (
	"encoding/json"
	"sync"
)

// hub fans confirmed game states out to the connected WebSocket clients.
// Delivery is best effort: a client with a full send buffer skips the update.
type hub struct {
	mu        sync.Mutex
	clients   map[*client]struct{}
	broadcast chan stateResponse
}

type client struct {
	send chan []byte
}

type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func newHub() *hub {
	return &hub{
		clients:   make(map[*client]struct{}),
		broadcast: make(chan stateResponse, 16),
	}
}

func (h *hub) run(done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case state := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				c.sendJSON(wsMessage{Type: "state", Payload: mustMarshal(state)})
			}
			h.mu.Unlock()
		}
	}
}

func (h *hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *hub) publish(state stateResponse) {
	select {
	case h.broadcast <- state:
	default:
	}
}

func (c *client) sendJSON(msg wsMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func mustMarshal(v any) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}
