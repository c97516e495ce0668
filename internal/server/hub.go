package server

import (
	"context"
	"encoding/json"
	"sync"
)

type wsMessage struct {
	Type    string          `json:"type"`
	MatchID string          `json:"match_id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Hub fans match events out to websocket clients. A client that falls behind
// loses messages rather than stalling the matches.
type Hub struct {
	mu        sync.Mutex
	clients   map[*Client]struct{}
	broadcast chan wsMessage
}

type Client struct {
	send chan []byte
	// matchID limits delivery to one match; empty means every match.
	matchID string
}

func NewHub() *Hub {
	return &Hub{
		clients:   make(map[*Client]struct{}),
		broadcast: make(chan wsMessage, 256),
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-h.broadcast:
			data, err := json.Marshal(msg)
			if err != nil {
				continue
			}
			h.mu.Lock()
			for client := range h.clients {
				if client.matchID == "" || client.matchID == msg.MatchID {
					client.trySend(data)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast queues msg without blocking. It reports false when the queue is
// full and the message was dropped.
func (h *Hub) Broadcast(msg wsMessage) bool {
	select {
	case h.broadcast <- msg:
		return true
	default:
		return false
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *Hub) Subscribe(c *Client, matchID string) {
	h.mu.Lock()
	c.matchID = matchID
	h.mu.Unlock()
}

func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// sendJSON replies to one client outside Run. It is a no-op once the client
// is unregistered.
func (h *Hub) sendJSON(c *Client, msg wsMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		c.trySend(data)
	}
}

func (c *Client) trySend(data []byte) {
	select {
	case c.send <- data:
	default:
	}
}

func mustMarshal(v any) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}
