package feed

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/whale2d/sim2d/internal/world"
	"go.uber.org/zap"
)

// Body is the wire form of one entity in a frame.
type Body struct {
	Entity   uint32  `json:"entity"`
	Name     string  `json:"name,omitempty"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	VX       float64 `json:"vx"`
	VY       float64 `json:"vy"`
	Grounded bool    `json:"grounded,omitempty"`
}

// Frame is one broadcast tick.
type Frame struct {
	Tick   uint64 `json:"tick"`
	Digest uint64 `json:"digest"`
	Bodies []Body `json:"bodies"`
}

func NewFrame(tick, digest uint64, bodies []world.BodyState) Frame {
	f := Frame{Tick: tick, Digest: digest, Bodies: make([]Body, 0, len(bodies))}
	for _, b := range bodies {
		f.Bodies = append(f.Bodies, Body{
			Entity:   b.Entity.Index(),
			Name:     b.Name,
			X:        b.Position.X,
			Y:        b.Position.Y,
			VX:       b.Velocity.X,
			VY:       b.Velocity.Y,
			Grounded: b.Grounded,
		})
	}
	return f
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Hub fans simulation frames out to websocket spectators. Broadcast is
// called from the simulation goroutine and never blocks: a spectator whose
// queue is full is disconnected.
type Hub struct {
	mu        sync.Mutex
	clients   map[uint64]*client
	nextID    atomic.Uint64
	queueSize int
	log       *zap.Logger
	srv       *http.Server
	closed    bool
}

func NewHub(queueSize int, log *zap.Logger) *Hub {
	if queueSize < 1 {
		queueSize = 1
	}
	return &Hub{
		clients:   make(map[uint64]*client),
		queueSize: queueSize,
		log:       log,
	}
}

// ServeHTTP upgrades a spectator connection.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	closed := h.closed
	h.mu.Unlock()
	if closed {
		http.Error(w, "feed closed", http.StatusServiceUnavailable)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	c := &client{
		id:      h.nextID.Add(1),
		conn:    conn,
		out:     make(chan []byte, h.queueSize),
		closeCh: make(chan struct{}),
		log:     h.log,
	}
	h.mu.Lock()
	if h.closed {
		// Shutdown ran while this connection was upgrading
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[c.id] = c
	h.mu.Unlock()
	h.log.Info("spectator connected", zap.Uint64("id", c.id), zap.String("addr", conn.RemoteAddr().String()))

	go c.writeLoop()
	go func() {
		c.readLoop()
		h.remove(c)
	}()
}

func (h *Hub) remove(c *client) {
	c.close()
	h.mu.Lock()
	delete(h.clients, c.id)
	h.mu.Unlock()
	h.log.Info("spectator disconnected", zap.Uint64("id", c.id))
}

// Clients returns the number of connected spectators.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast encodes the frame once and queues it for every spectator.
func (h *Hub) Broadcast(tick, digest uint64, bodies []world.BodyState) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.clients) == 0 {
		return
	}
	data, err := json.Marshal(NewFrame(tick, digest, bodies))
	if err != nil {
		h.log.Error("encode frame", zap.Error(err))
		return
	}
	for id, c := range h.clients {
		select {
		case c.out <- data:
		default:
			h.log.Warn("spectator queue full, disconnecting", zap.Uint64("id", id))
			c.close()
			delete(h.clients, id)
		}
	}
}

// ListenAndServe serves spectators on addr until Shutdown.
func (h *Hub) ListenAndServe(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", h)
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.srv = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	srv := h.srv
	h.mu.Unlock()

	h.log.Info("spectator feed listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the listener and disconnects every spectator.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	h.closed = true
	srv := h.srv
	for id, c := range h.clients {
		c.close()
		delete(h.clients, id)
	}
	h.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
