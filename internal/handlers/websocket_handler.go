package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"portfolio-tracker/internal/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketHandler struct {
	hub *services.WebSocketHub
	log zerolog.Logger
}

func NewWebSocketHandler(hub *services.WebSocketHub, log zerolog.Logger) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, log: log}
}

// Subscribe upgrades the connection and streams ledger change events.
func (h *WebSocketHandler) Subscribe(c *gin.Context) {
	user := c.GetString("userID")
	if user == "" {
		user = "anonymous"
	}

	// Upgrade writes its own error response on failure.
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to upgrade connection")
		return
	}

	client := h.hub.RegisterClient(conn, user)
	h.log.Debug().Str("user", user).Msg("WebSocket connection established")

	go client.WritePump()
	go client.ReadPump()
}
