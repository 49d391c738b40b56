// Package live pushes leaderboard snapshots to websocket clients.
package live

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/okian/wikidle/internal/domain/leaderboard"
	"github.com/okian/wikidle/pkg/logger"
	"github.com/okian/wikidle/pkg/metrics"
)

const (
	defaultWriteTimeout = 5 * time.Second
	defaultPingInterval = 30 * time.Second
	defaultSendBuffer   = 4
	maxInboundMessage   = 512
)

// Snapshotter provides the leaderboard sent to a client when it connects.
type Snapshotter interface {
	Leaderboard(ctx context.Context) (leaderboard.Board, error)
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once

	// Until the starting snapshot is queued, published boards land in
	// pending instead of send. Both are guarded by Hub.mu.
	active  bool
	pending []byte
}

func (c *client) close() {
	c.once.Do(func() { close(c.send) })
}

// Hub tracks connected clients and fans snapshots out to them.
type Hub struct {
	snapshots    Snapshotter
	upgrader     websocket.Upgrader
	writeTimeout time.Duration
	pingInterval time.Duration
	sendBuffer   int
	logger       logger.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

// NewHub creates a hub. Clients receive the current leaderboard from
// snapshots on connect, then every published one.
func NewHub(snapshots Snapshotter, opts ...Option) *Hub {
	h := &Hub{
		snapshots:    snapshots,
		upgrader:     websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 4096},
		writeTimeout: defaultWriteTimeout,
		pingInterval: defaultPingInterval,
		sendBuffer:   defaultSendBuffer,
		logger:       logger.Get().Named("live"),
		clients:      make(map[*client]struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeHTTP upgrades the request and streams snapshots until the client
// goes away. The client is registered before the starting snapshot is
// read, so a board published meanwhile follows the snapshot.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	c := &client{send: make(chan []byte, max(h.sendBuffer, 2))}
	if !h.register(c) {
		http.Error(w, "leaderboard unavailable", http.StatusServiceUnavailable)
		return
	}

	board, err := h.snapshots.Leaderboard(ctx)
	if err != nil {
		h.unregister(c)
		h.logger.Error(ctx, "initial snapshot failed", logger.Error(err))
		http.Error(w, "leaderboard unavailable", http.StatusServiceUnavailable)
		return
	}
	first, err := json.Marshal(board)
	if err != nil {
		h.unregister(c)
		http.Error(w, "leaderboard unavailable", http.StatusInternalServerError)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client.
		h.unregister(c)
		h.logger.Warn(ctx, "websocket upgrade failed", logger.Error(err))
		return
	}
	c.conn = conn

	if !h.activate(c, first) {
		_ = conn.Close()
		return
	}

	go h.writePump(c)
	h.readPump(ctx, c)
}

// Publish sends board to every client. A client whose buffer is full is
// disconnected.
func (h *Hub) Publish(ctx context.Context, board leaderboard.Board) {
	msg, err := json.Marshal(board)
	if err != nil {
		h.logger.Error(ctx, "encode snapshot", logger.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if !c.active {
			c.pending = msg
			continue
		}
		select {
		case c.send <- msg:
		default:
			metrics.RecordLiveBroadcastError()
			h.dropLocked(c)
		}
	}
	metrics.RecordLiveBroadcast()
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		h.dropLocked(c)
	}
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	metrics.UpdateLiveClients(len(h.clients))
	return true
}

// activate queues the starting snapshot, then the newest board published
// since registration. It reports false when c was dropped meanwhile.
func (h *Hub) activate(c *client, first []byte) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return false
	}
	c.send <- first
	if c.pending != nil {
		c.send <- c.pending
		c.pending = nil
	}
	c.active = true
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(c)
}

// dropLocked removes c and stops its writer. Caller holds h.mu.
func (h *Hub) dropLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	c.close()
	metrics.UpdateLiveClients(len(h.clients))
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(h.pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				metrics.RecordLiveBroadcastError()
				h.unregister(c)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.unregister(c)
				return
			}
		}
	}
}

// readPump discards inbound frames; it exists to notice disconnects and
// answer control frames.
func (h *Hub) readPump(ctx context.Context, c *client) {
	defer h.unregister(c)

	c.conn.SetReadLimit(maxInboundMessage)
	_ = c.conn.SetReadDeadline(time.Now().Add(2 * h.pingInterval))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(2 * h.pingInterval))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Debug(ctx, "live client closed", logger.Error(err))
			}
			return
		}
	}
}
