// Package websocket implements the push hub using the actor pattern: a
// single goroutine owns the client set and processes typed commands, while
// per-connection write goroutines absorb slow clients.
package websocket

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jishubasak/tweetpulse/internal/domain"
	"github.com/jishubasak/tweetpulse/internal/metrics"
)

const (
	sendBufferSize = 16
	writeDeadline  = 5 * time.Second
)

// --- Command types ---

type hubCmd interface{ hubCmd() }

type cmdRegister struct {
	conn  *websocket.Conn
	errCh chan error
}

func (cmdRegister) hubCmd() {}

type cmdUnregister struct {
	conn *websocket.Conn
}

func (cmdUnregister) hubCmd() {}

type cmdPublish struct {
	data []byte
}

func (cmdPublish) hubCmd() {}

type cmdClientCount struct {
	replyCh chan int
}

func (cmdClientCount) hubCmd() {}

type cmdStop struct {
	doneCh chan struct{}
}

func (cmdStop) hubCmd() {}

// --- Per-connection writer ---

type clientWriter struct {
	conn   *websocket.Conn
	sendCh chan []byte
	done   chan struct{}
}

func newClientWriter(conn *websocket.Conn) *clientWriter {
	cw := &clientWriter{
		conn:   conn,
		sendCh: make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
	}
	go cw.run()
	return cw
}

func (cw *clientWriter) run() {
	for {
		select {
		case msg, ok := <-cw.sendCh:
			if !ok {
				return
			}
			_ = cw.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := cw.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-cw.done:
			return
		}
	}
}

func (cw *clientWriter) stop() {
	close(cw.done)
	_ = cw.conn.Close()
}

// --- Hub ---

// Hub fans each completed tick frame out to every connected dashboard
// client. It implements domain.FramePublisher.
type Hub struct {
	cmdCh      chan hubCmd
	clients    map[*websocket.Conn]*clientWriter
	maxClients int
}

var _ domain.FramePublisher = (*Hub)(nil)

// NewHub creates and starts the hub actor.
func NewHub(maxClients int) *Hub {
	hub := &Hub{
		cmdCh:      make(chan hubCmd, 256),
		clients:    make(map[*websocket.Conn]*clientWriter),
		maxClients: maxClients,
	}
	go hub.run()
	return hub
}

func (h *Hub) run() {
	for cmd := range h.cmdCh {
		switch c := cmd.(type) {
		case cmdRegister:
			h.handleRegister(c)
		case cmdUnregister:
			h.handleUnregister(c.conn)
		case cmdPublish:
			h.handlePublish(c.data)
		case cmdClientCount:
			c.replyCh <- len(h.clients)
		case cmdStop:
			h.handleStop()
			close(c.doneCh)
			return
		}
	}
}

func (h *Hub) handleRegister(c cmdRegister) {
	if len(h.clients) >= h.maxClients {
		slog.Warn("Rejecting client: max clients reached", "max_clients", h.maxClients)
		_ = c.conn.Close()
		c.errCh <- ErrHubFull
		return
	}
	h.clients[c.conn] = newClientWriter(c.conn)
	metrics.WebSocketClientsCurrent.Set(float64(len(h.clients)))
	slog.Debug("Client registered", "total_clients", len(h.clients))
	c.errCh <- nil
}

func (h *Hub) handleUnregister(conn *websocket.Conn) {
	cw, exists := h.clients[conn]
	if !exists {
		return
	}
	cw.stop()
	delete(h.clients, conn)
	metrics.WebSocketClientsCurrent.Set(float64(len(h.clients)))
	slog.Debug("Client unregistered", "remaining_clients", len(h.clients))
}

func (h *Hub) handlePublish(data []byte) {
	var slow []*websocket.Conn
	for conn, cw := range h.clients {
		select {
		case cw.sendCh <- data:
		default:
			slow = append(slow, conn)
		}
	}
	for _, conn := range slow {
		metrics.WebSocketSlowClientsEvicted.Inc()
		slog.Warn("Disconnecting slow client")
		h.handleUnregister(conn)
	}
}

func (h *Hub) handleStop() {
	for conn, cw := range h.clients {
		cw.stop()
		delete(h.clients, conn)
	}
	metrics.WebSocketClientsCurrent.Set(0)
}

// --- Public API ---

// Register adds a connection to the fan-out set.
func (h *Hub) Register(conn *websocket.Conn) error {
	errCh := make(chan error, 1)
	h.cmdCh <- cmdRegister{conn: conn, errCh: errCh}
	return <-errCh
}

// Unregister removes a connection and closes it.
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.cmdCh <- cmdUnregister{conn: conn}
}

// Publish fans a completed frame out to all clients.
func (h *Hub) Publish(frame *domain.TrendFrame) {
	data, err := json.Marshal(map[string]any{"type": "frame", "frame": frame})
	if err != nil {
		slog.Error("Failed to marshal frame", "error", err)
		return
	}
	h.cmdCh <- cmdPublish{data: data}
}

// ClientCount reports the number of currently connected clients.
func (h *Hub) ClientCount() int {
	replyCh := make(chan int, 1)
	h.cmdCh <- cmdClientCount{replyCh: replyCh}
	return <-replyCh
}

// Stop disconnects all clients and shuts the actor down.
func (h *Hub) Stop() {
	doneCh := make(chan struct{})
	h.cmdCh <- cmdStop{doneCh: doneCh}
	<-doneCh
}
