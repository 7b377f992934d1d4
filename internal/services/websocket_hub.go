package services

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"portfolio-tracker/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	broadcastQueue = 64
)

// WebSocketHub fans ledger events out to every connected client.
type WebSocketHub struct {
	clients    map[*WebSocketClient]bool
	broadcast  chan models.LedgerEvent
	register   chan *WebSocketClient
	unregister chan *WebSocketClient
	done       chan struct{}
	count      atomic.Int64
	log        zerolog.Logger
}

type WebSocketClient struct {
	hub  *WebSocketHub
	conn *websocket.Conn
	send chan []byte
	user string
}

func NewWebSocketHub(log zerolog.Logger) *WebSocketHub {
	return &WebSocketHub{
		clients:    make(map[*WebSocketClient]bool),
		broadcast:  make(chan models.LedgerEvent, broadcastQueue),
		register:   make(chan *WebSocketClient),
		unregister: make(chan *WebSocketClient),
		done:       make(chan struct{}),
		log:        log.With().Str("service", "websocket").Logger(),
	}
}

// Run owns the client set until ctx is done.
func (h *WebSocketHub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			for client := range h.clients {
				h.drop(client)
			}
			return

		case client := <-h.register:
			h.clients[client] = true
			h.count.Store(int64(len(h.clients)))
			h.log.Debug().Str("user", client.user).Int("clients", len(h.clients)).Msg("Client connected")

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
				h.log.Debug().Str("user", client.user).Int("clients", len(h.clients)).Msg("Client disconnected")
			}

		case event := <-h.broadcast:
			message, err := json.Marshal(event)
			if err != nil {
				h.log.Error().Err(err).Msg("Failed to encode ledger event")
				continue
			}

			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					h.drop(client)
				}
			}
		}
	}
}

func (h *WebSocketHub) drop(client *WebSocketClient) {
	delete(h.clients, client)
	close(client.send)
	h.count.Store(int64(len(h.clients)))
}

// Notify queues event for every client. It never blocks; events are dropped
// when the queue is full.
func (h *WebSocketHub) Notify(event models.LedgerEvent) {
	select {
	case h.broadcast <- event:
	default:
		h.log.Warn().Str("reason", event.Reason).Msg("Ledger event queue full, dropping event")
	}
}

// Clients returns the number of connected clients.
func (h *WebSocketHub) Clients() int {
	return int(h.count.Load())
}

func (h *WebSocketHub) RegisterClient(conn *websocket.Conn, user string) *WebSocketClient {
	client := &WebSocketClient{
		hub:  h,
		conn: conn,
		send: make(chan []byte, 256),
		user: user,
	}
	select {
	case h.register <- client:
	case <-h.done:
		close(client.send)
	}
	return client
}

// ReadPump only exists to process pongs and notice closed connections;
// clients have nothing to say.
func (c *WebSocketClient) ReadPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Warn().Err(err).Str("user", c.user).Msg("WebSocket error")
			}
			break
		}
	}
}

func (c *WebSocketClient) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
