package ws

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"bunker/internal/app"
	"bunker/internal/domain"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096

	// Size of the send channel buffer
	sendBufferSize = 256
)

// Client represents a WebSocket client connection.
type Client struct {
	conn     *websocket.Conn
	registry *app.Registry
	connID   string
	send     chan []byte
	done     chan struct{}
	logger   zerolog.Logger
	mu       sync.Mutex
	closed   bool
}

// NewClient creates a new WebSocket client.
func NewClient(conn *websocket.Conn, registry *app.Registry, connID string, logger zerolog.Logger) *Client {
	return &Client{
		conn:     conn,
		registry: registry,
		connID:   connID,
		send:     make(chan []byte, sendBufferSize),
		done:     make(chan struct{}),
		logger:   logger,
	}
}

// Send implements app.Conn. It never blocks; a full buffer drops the
// message.
func (c *Client) Send(event *domain.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	select {
	case c.send <- data:
		return nil
	default:
		c.logger.Warn().Str("connID", c.connID).Msg("send buffer full, message dropped")
		return nil
	}
}

// Close implements app.Conn.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true
	close(c.done)
	return c.conn.Close()
}

// Run starts the client's read and write pumps.
func (c *Client) Run() {
	go c.writePump()
	c.readPump()
}

// readPump pumps messages from the WebSocket connection.
func (c *Client) readPump() {
	defer func() {
		c.registry.Disconnect(c.connID)
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Debug().Err(err).Msg("websocket read error")
			}
			break
		}

		c.handleMessage(message)
	}
}

// writePump pumps messages from the send channel to the connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			return
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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

// handleMessage dispatches an inbound message. Any failure is reported
// back as an error event; nothing propagates.
func (c *Client) handleMessage(data []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.sendError("invalid message format")
		return
	}

	switch msg.Type {
	case MsgCreateRoom:
		c.handleCreateRoom(msg.Payload)
	case MsgJoinRoom:
		c.handleJoinRoom(msg.Payload)
	case MsgToggleReady:
		c.report(c.registry.ToggleReady(c.connID))
	case MsgRevealAttribute:
		c.handleRevealAttribute(msg.Payload)
	case MsgStartGame:
		c.report(c.registry.StartGame(c.connID))
	case MsgNextRound:
		c.report(c.registry.AdvanceRound(c.connID))
	case MsgStartVoting:
		c.report(c.registry.StartVoting(c.connID))
	case MsgCastVote:
		c.handleCastVote(msg.Payload)
	case MsgChatMessage:
		c.handleChatMessage(msg.Payload)
	case MsgLeaveRoom:
		c.registry.LeaveRoom(c.connID)
	case MsgPing:
		// Keepalive only; the pong handler covers liveness.
	default:
		c.sendError("unknown message type")
	}
}

func (c *Client) handleCreateRoom(payload json.RawMessage) {
	var p CreateRoomPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		c.sendError("invalid payload")
		return
	}

	username := strings.TrimSpace(p.Username)
	if username == "" {
		c.sendError("username is required")
		return
	}

	c.report(c.registry.CreateRoom(c.connID, username))
}

func (c *Client) handleJoinRoom(payload json.RawMessage) {
	var p JoinRoomPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		c.sendError("invalid payload")
		return
	}

	username := strings.TrimSpace(p.Username)
	code := strings.ToUpper(strings.TrimSpace(p.RoomCode))
	if username == "" || code == "" {
		c.sendError("room code and username are required")
		return
	}

	c.report(c.registry.JoinRoom(c.connID, code, username))
}

func (c *Client) handleRevealAttribute(payload json.RawMessage) {
	var p RevealAttributePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		c.sendError("invalid payload")
		return
	}

	c.report(c.registry.RevealAttribute(c.connID, domain.Category(p.Attribute)))
}

func (c *Client) handleCastVote(payload json.RawMessage) {
	var p CastVotePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		c.sendError("invalid payload")
		return
	}
	if p.TargetPlayerID == "" {
		c.sendError("target player id is required")
		return
	}

	c.report(c.registry.CastVote(c.connID, p.TargetPlayerID))
}

func (c *Client) handleChatMessage(payload json.RawMessage) {
	var p ChatMessagePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		c.sendError("invalid payload")
		return
	}
	if strings.TrimSpace(p.Message) == "" {
		c.sendError("message is required")
		return
	}

	c.report(c.registry.Chat(c.connID, p.Message, p.Context))
}

// report converts a handler error into an error event for this
// connection. Errors stay local to the offending request.
func (c *Client) report(err error) {
	if err != nil {
		c.sendError(err.Error())
	}
}

// sendError sends an error event to the client.
func (c *Client) sendError(message string) {
	c.Send(domain.NewEvent(domain.EventError, &domain.ErrorPayload{
		Message: message,
	}))
}
