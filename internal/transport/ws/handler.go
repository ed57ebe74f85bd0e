package ws

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"bunker/internal/app"
)

// Handler handles WebSocket connections.
type Handler struct {
	registry *app.Registry
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

// NewHandler creates a new WebSocket handler.
func NewHandler(registry *app.Registry, logger zerolog.Logger) *Handler {
	return &Handler{
		registry: registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Allow all origins; the game carries no credentials.
				return true
			},
		},
		logger: logger,
	}
}

// ServeHTTP handles WebSocket upgrade requests. Each connection gets a
// fresh identity; players exist only through create_room/join_room.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	connID := uuid.New().String()
	client := NewClient(conn, h.registry, connID, h.logger)
	h.registry.Connect(connID, client)

	h.logger.Info().Str("connID", connID).Msg("websocket connected")

	client.Run()
}
