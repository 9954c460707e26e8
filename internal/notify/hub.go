// Package notify pushes reload notifications to development tooling over
// WebSocket. Watch mode broadcasts a message after every manifest
// regeneration so connected clients can re-read the prepared scan result.
package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/conneroisu/prescan/logging"
)

// ReloadMessage is sent to every connected client after the manifest has
// been regenerated.
type ReloadMessage struct {
	// Event names what happened, currently always "manifest"
	Event string `json:"event"`
	// Path is the source file that triggered the regeneration, if any
	Path string `json:"path,omitempty"`
	// Time records when the regeneration finished
	Time time.Time `json:"time"`
}

// client is one connected WebSocket peer with its buffered send queue.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub accepts WebSocket connections and broadcasts reload messages to all
// of them. A single goroutine owns the client set; registration,
// unregistration, and broadcasting go through channels so handlers never
// block on each other.
type Hub struct {
	clients map[*client]struct{}

	register   chan *client
	unregister chan *client
	broadcast  chan []byte

	origins []string
	logger  logging.Logger

	ctx          context.Context
	cancel       context.CancelFunc
	shutdownOnce sync.Once

	mu         sync.RWMutex
	count      int
	isShutdown bool
}

const (
	sendQueueSize = 64
	pingInterval  = 30 * time.Second
	writeTimeout  = 10 * time.Second
)

// NewHub creates a hub and starts its run loop. Origins lists additional
// allowed Origin hosts; localhost is always allowed. A nil logger disables
// logging.
func NewHub(origins []string, logger logging.Logger) *Hub {
	if logger == nil {
		logger = logging.Nop()
	}

	ctx, cancel := context.WithCancel(context.Background())

	h := &Hub{
		clients:    make(map[*client]struct{}),
		register:   make(chan *client, 32),
		unregister: make(chan *client, 32),
		broadcast:  make(chan []byte, 256),
		origins:    origins,
		logger:     logger.WithComponent("notify"),
		ctx:        ctx,
		cancel:     cancel,
	}

	go h.run()
	return h
}

// ServeHTTP upgrades the request to a WebSocket connection and keeps it
// registered until the peer disconnects or the hub shuts down.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	down := h.isShutdown
	h.mu.RUnlock()
	if down {
		http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
		return
	}

	if !h.allowedOrigin(r.Header.Get("Origin")) {
		h.logger.Warn(r.Context(), nil, "rejected connection from disallowed origin",
			"origin", r.Header.Get("Origin"), "remote", r.RemoteAddr)
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// The Origin header was validated against the allowlist above
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.logger.Warn(r.Context(), err, "websocket upgrade failed", "remote", r.RemoteAddr)
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, sendQueueSize),
	}

	select {
	case h.register <- c:
	case <-h.ctx.Done():
		conn.Close(websocket.StatusGoingAway, "shutting down")
		return
	}

	go h.writePump(c)
	h.readPump(c)
}

// Broadcast queues a reload message for delivery to every connected client.
// It never blocks; when the hub is saturated the message is dropped.
func (h *Hub) Broadcast(msg ReloadMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error(context.Background(), err, "marshaling reload message")
		return
	}

	select {
	case h.broadcast <- data:
	case <-h.ctx.Done():
	default:
		h.logger.Debug(context.Background(), "broadcast queue full, dropping message")
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}

// Shutdown disconnects all clients and stops the hub. It is safe to call
// more than once.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.shutdownOnce.Do(func() {
		h.mu.Lock()
		h.isShutdown = true
		h.mu.Unlock()

		h.cancel()
		h.logger.Debug(ctx, "notify hub shut down")
	})
	return nil
}

// run owns the client set. It is the only goroutine that touches
// h.clients, so no lock is needed around the map itself.
func (h *Hub) run() {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.setCount(len(h.clients))
			h.logger.Debug(h.ctx, "client connected", "clients", len(h.clients))

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				h.setCount(len(h.clients))
				h.logger.Debug(h.ctx, "client disconnected", "clients", len(h.clients))
			}

		case data := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- data:
				default:
					// Slow client; drop it rather than stall the hub
					delete(h.clients, c)
					close(c.send)
					h.setCount(len(h.clients))
				}
			}

		case <-h.ctx.Done():
			for c := range h.clients {
				close(c.send)
				c.conn.Close(websocket.StatusGoingAway, "shutting down")
			}
			h.clients = make(map[*client]struct{})
			h.setCount(0)
			return
		}
	}
}

func (h *Hub) setCount(n int) {
	h.mu.Lock()
	h.count = n
	h.mu.Unlock()
}

// readPump consumes inbound frames until the peer goes away. Clients are
// not expected to send anything; reading keeps close and ping handling
// responsive.
func (h *Hub) readPump(c *client) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.ctx.Done():
		}
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		if _, _, err := c.conn.Read(h.ctx); err != nil {
			return
		}
	}
}

// writePump delivers queued messages and keeps the connection alive with
// periodic pings.
func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				return
			}
			ctx, cancel := context.WithTimeout(h.ctx, writeTimeout)
			err := c.conn.Write(ctx, websocket.MessageText, data)
			cancel()
			if err != nil {
				return
			}

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(h.ctx, writeTimeout)
			err := c.conn.Ping(ctx)
			cancel()
			if err != nil {
				return
			}

		case <-h.ctx.Done():
			return
		}
	}
}

// allowedOrigin reports whether the Origin header may connect. Requests
// without an Origin header (non-browser clients) are always allowed, as is
// localhost in any form.
func (h *Hub) allowedOrigin(origin string) bool {
	if origin == "" {
		return true
	}

	u, err := url.Parse(origin)
	if err != nil {
		return false
	}

	hostname := u.Hostname()
	if hostname == "localhost" || hostname == "127.0.0.1" || hostname == "::1" {
		return true
	}

	for _, allowed := range h.origins {
		if allowed == u.Host || allowed == hostname {
			return true
		}
	}
	return false
}
