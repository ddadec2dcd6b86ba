package stream

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/goccy/go-json"

	"github.com/okian/mapty/pkg/metrics"
)

const clientBuffer = 64

var clientIDCounter atomic.Uint64

// Client is one connected page.
type Client struct {
	id   uint64
	send chan []byte
	done chan struct{}
	once sync.Once
}

// ID returns the client's identifier.
func (c *Client) ID() uint64 { return c.id }

// Send returns the outgoing payload channel.
func (c *Client) Send() <-chan []byte { return c.send }

// Done is closed when the client is unregistered.
func (c *Client) Done() <-chan struct{} { return c.done }

// Hub fans messages out to every registered client. Broadcasts to slow
// clients are dropped rather than block the session.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*Client]struct{})}
}

// Register adds a client.
func (h *Hub) Register() *Client {
	c := &Client{
		id:   clientIDCounter.Add(1),
		send: make(chan []byte, clientBuffer),
		done: make(chan struct{}),
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()

	metrics.UpdateStreamClients(n)
	return c
}

// Unregister removes a client and closes its Done channel. Safe to call twice.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	delete(h.clients, c)
	n := len(h.clients)
	h.mu.Unlock()

	c.once.Do(func() { close(c.done) })
	metrics.UpdateStreamClients(n)
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends msg to every client without waiting.
func (h *Hub) Broadcast(msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	metrics.RecordStreamMessage(msg.Type)

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case <-c.done:
		case c.send <- payload:
		default:
			metrics.RecordStreamDropped()
		}
	}
}

// SendTo sends msg to one client, waiting for room in its buffer until ctx
// ends or the client goes away.
func (h *Hub) SendTo(ctx context.Context, c *Client, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	select {
	case <-c.done:
		return ErrClientGone
	default:
	}

	select {
	case c.send <- payload:
		metrics.RecordStreamMessage(msg.Type)
		return nil
	case <-c.done:
		return ErrClientGone
	case <-ctx.Done():
		metrics.RecordStreamDropped()
		return ctx.Err()
	}
}
