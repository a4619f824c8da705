package api

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"codeberg.org/mutker/homedash/internal/logger"
	"codeberg.org/mutker/homedash/internal/metrics"
)

const broadcastBuffer = 16

// Message is the envelope pushed to live view clients
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Hub maintains the set of live view clients and broadcasts messages
type Hub struct {
	clients    map[*Client]struct{}
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	count      atomic.Int64
	log        logger.Logger
}

func NewHub(log logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan []byte, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run owns the client set until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.remove(client)
			}
			return

		case client := <-h.register:
			h.clients[client] = struct{}{}
			h.updateCount()
			h.log.Debug().Str("remote", client.remote).Msg("Live view client registered")

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.remove(client)
				h.log.Debug().Str("remote", client.remote).Msg("Live view client unregistered")
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					h.log.Warn().Str("remote", client.remote).Msg("Live view client too slow, removing")
					h.remove(client)
				}
			}
		}
	}
}

func (h *Hub) remove(client *Client) {
	delete(h.clients, client)
	close(client.send)
	h.updateCount()
}

func (h *Hub) updateCount() {
	h.count.Store(int64(len(h.clients)))
	metrics.WebSocketClients.Set(float64(len(h.clients)))
}

// Clients returns the number of registered clients
func (h *Hub) Clients() int {
	return int(h.count.Load())
}

// Register hands a client to the hub. It reports false once the hub stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Broadcast sends a typed message to every client. It never blocks; the
// message is dropped when the hub is saturated or stopped.
func (h *Hub) Broadcast(msgType string, payload any) {
	b, err := Encode(msgType, payload)
	if err != nil {
		h.log.Error().Err(err).Str("type", msgType).Msg("Failed to encode broadcast")
		return
	}

	select {
	case h.broadcast <- b:
	case <-h.done:
	default:
		h.log.Warn().Str("type", msgType).Msg("Broadcast queue full, dropping message")
	}
}

// Encode wraps payload in the live view envelope
func Encode(msgType string, payload any) ([]byte, error) {
	return json.Marshal(Message{Type: msgType, Payload: payload})
}
