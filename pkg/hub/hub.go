// Package hub provides a thread-safe websocket broadcast hub
// using the idiomatic Go channel-based fan-out pattern.
//
// Every client receives each broadcast arm state. Text frames a client sends
// are parsed as protocol messages and passed to the hub's Handler; a non-nil
// reply goes back to that client only.
package hub

import (
	"context"
	"log/slog"
	"sync"

	"github.com/teslashibe/go-planar-arm/internal/log"
	"github.com/teslashibe/go-planar-arm/pkg/metrics"
	"github.com/teslashibe/go-planar-arm/pkg/protocol"
)

// Handler processes a message received from a client.
type Handler interface {
	Handle(msg *protocol.Message) *protocol.Message
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(msg *protocol.Message) *protocol.Message

// Handle calls f(msg).
func (f HandlerFunc) Handle(msg *protocol.Message) *protocol.Message {
	return f(msg)
}

// Hub maintains the set of active clients and broadcasts messages to them
type Hub struct {
	// Name for logging
	name string

	handler Handler

	// Registered clients
	clients map[*Client]bool

	// Inbound messages to broadcast
	broadcast chan []byte

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Guards clients for ClientCount
	mu sync.RWMutex

	// Closed when Run returns
	done chan struct{}

	log *slog.Logger
}

// New creates a new Hub. handler may be nil when clients only listen.
func New(name string, handler Handler) *Hub {
	return &Hub{
		name:       name,
		handler:    handler,
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log.For("hub").With("hub", name),
	}
}

// Run starts the hub's main loop and blocks until ctx is cancelled.
// This should be called in a goroutine
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				client.close()
				delete(h.clients, client)
				metrics.ClientDisconnected()
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()
			metrics.ClientConnected()
			h.log.Info("client connected", "clients", count)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.close()
				metrics.ClientDisconnected()
			}
			count := len(h.clients)
			h.mu.Unlock()
			h.log.Info("client disconnected", "clients", count)

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				if !client.Send(message) {
					// Client's buffer is full - they're too slow
					client.close()
					delete(h.clients, client)
					metrics.ClientDisconnected()
					h.log.Warn("dropped slow client")
				}
			}
			h.mu.Unlock()
			metrics.RecordBroadcast()
		}
	}
}

// Broadcast sends raw JSON to all connected clients
func (h *Hub) Broadcast(data []byte) {
	select {
	case h.broadcast <- data:
	default:
		// Broadcast channel full - drop message
		h.log.Warn("broadcast channel full, dropping message")
	}
}

// BroadcastMessage encodes and broadcasts a protocol message
func (h *Hub) BroadcastMessage(msg *protocol.Message) error {
	data, err := msg.Bytes()
	if err != nil {
		return err
	}
	h.Broadcast(data)
	return nil
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// dispatch parses a frame from c and replies through c.
func (h *Hub) dispatch(c *Client, data []byte) {
	msg, err := protocol.ParseMessage(data)
	if err != nil {
		reply, _ := protocol.NewErrorMessage("", err)
		c.SendMessage(reply)
		return
	}
	if h.handler == nil {
		return
	}
	if reply := h.handler.Handle(msg); reply != nil {
		c.SendMessage(reply)
	}
}
