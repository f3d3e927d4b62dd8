// Package gateway owns the WebSocket connections accepted by this instance.
package gateway

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/burakmert236/clubscore/common/logger"
)

var (
	// ErrConnectionGone is returned for sockets this hub does not hold,
	// including ones accepted by another instance.
	ErrConnectionGone = errors.New("connection gone")
	ErrSlowConsumer   = errors.New("connection send buffer full")
)

type Config struct {
	WriteTimeout   time.Duration
	ReadTimeout    time.Duration
	PingInterval   time.Duration
	MaxMessageSize int64
	SendBuffer     int
}

func DefaultConfig() Config {
	return Config{
		WriteTimeout:   10 * time.Second,
		ReadTimeout:    60 * time.Second,
		PingInterval:   30 * time.Second,
		MaxMessageSize: 64 * 1024,
		SendBuffer:     256,
	}
}

// withDefaults fills zero fields; a read timeout shorter than the ping
// interval would drop idle sockets between pings.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = def.WriteTimeout
	}
	if c.PingInterval <= 0 {
		c.PingInterval = def.PingInterval
	}
	if c.ReadTimeout <= c.PingInterval {
		c.ReadTimeout = 2 * c.PingInterval
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = def.MaxMessageSize
	}
	if c.SendBuffer <= 0 {
		c.SendBuffer = def.SendBuffer
	}
	return c
}

type Stats struct {
	TotalConnections int            `json:"totalConnections"`
	Clubs            map[string]int `json:"clubs"`
}

type socket struct {
	id     string
	clubId string
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
	once   sync.Once
}

func (s *socket) close() {
	s.once.Do(func() {
		close(s.done)
	})
}

type Hub struct {
	mu      sync.RWMutex
	sockets map[string]*socket
	cfg     Config
	logger  *logger.Logger
}

func NewHub(cfg Config, log *logger.Logger) *Hub {
	return &Hub{
		sockets: make(map[string]*socket),
		cfg:     cfg.withDefaults(),
		logger:  log.With("component", "hub"),
	}
}

func (h *Hub) register(id, clubId string, conn *websocket.Conn) *socket {
	s := &socket{
		id:     id,
		clubId: clubId,
		conn:   conn,
		send:   make(chan []byte, h.cfg.SendBuffer),
		done:   make(chan struct{}),
	}

	h.mu.Lock()
	h.sockets[id] = s
	h.mu.Unlock()

	return s
}

// unregister reports whether the socket was still held.
func (h *Hub) unregister(s *socket) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	current, ok := h.sockets[s.id]
	if !ok || current != s {
		return false
	}
	delete(h.sockets, s.id)
	s.close()
	return true
}

// Send queues payload for the socket's writer. It never blocks on the
// network; a full buffer closes the socket.
func (h *Hub) Send(ctx context.Context, connectionId string, payload []byte) error {
	h.mu.RLock()
	s, ok := h.sockets[connectionId]
	h.mu.RUnlock()
	if !ok {
		return ErrConnectionGone
	}

	select {
	case <-s.done:
		return ErrConnectionGone
	default:
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.done:
		return ErrConnectionGone
	case s.send <- payload:
		return nil
	default:
		h.logger.Warn("Send buffer full, closing connection", "connection_id", connectionId)
		s.close()
		return ErrSlowConsumer
	}
}

func (h *Hub) Stats() Stats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	stats := Stats{TotalConnections: len(h.sockets), Clubs: make(map[string]int)}
	for _, s := range h.sockets {
		stats.Clubs[s.clubId]++
	}
	return stats
}

// Close drops every socket. Their read loops then run the normal
// disconnect path.
func (h *Hub) Close() {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, s := range h.sockets {
		s.close()
	}
}

// writePump is the only goroutine that writes to s.conn.
func (h *Hub) writePump(s *socket) {
	ticker := time.NewTicker(h.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case <-s.done:
			_ = s.conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
			_ = s.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return

		case payload := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
			if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				h.logger.Debug("Write failed", "connection_id", s.id, "error", err)
				s.close()
				return
			}

		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.logger.Debug("Ping failed", "connection_id", s.id, "error", err)
				s.close()
				return
			}
		}
	}
}

// readPump blocks until the peer goes away, handing each text frame to
// onFrame.
func (h *Hub) readPump(s *socket, onFrame func([]byte)) {
	s.conn.SetReadLimit(h.cfg.MaxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(h.cfg.ReadTimeout))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(h.cfg.ReadTimeout))
	})

	for {
		msgType, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				h.logger.Warn("Unexpected close", "connection_id", s.id, "error", err)
			}
			return
		}
		_ = s.conn.SetReadDeadline(time.Now().Add(h.cfg.ReadTimeout))

		if msgType == websocket.TextMessage {
			onFrame(data)
		}
	}
}
