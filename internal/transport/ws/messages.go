package ws

import "encoding/json"

// MessageType represents the type of an inbound WebSocket message.
type MessageType string

// Client → Server message types
const (
	MsgCreateRoom      MessageType = "create_room"
	MsgJoinRoom        MessageType = "join_room"
	MsgToggleReady     MessageType = "toggle_ready"
	MsgRevealAttribute MessageType = "reveal_attribute"
	MsgStartGame       MessageType = "start_game"
	MsgNextRound       MessageType = "next_round"
	MsgStartVoting     MessageType = "start_voting"
	MsgCastVote        MessageType = "cast_vote"
	MsgChatMessage     MessageType = "chat_message"
	MsgLeaveRoom       MessageType = "leave_room"
	MsgPing            MessageType = "ping"
)

// ClientMessage represents a message from client to server.
type ClientMessage struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Client message payloads

// CreateRoomPayload is the payload for create_room.
type CreateRoomPayload struct {
	Username string `json:"username"`
}

// JoinRoomPayload is the payload for join_room.
type JoinRoomPayload struct {
	RoomCode string `json:"roomCode"`
	Username string `json:"username"`
}

// RevealAttributePayload is the payload for reveal_attribute.
type RevealAttributePayload struct {
	Attribute string `json:"attribute"`
}

// CastVotePayload is the payload for cast_vote.
type CastVotePayload struct {
	TargetPlayerID string `json:"targetPlayerId"`
}

// ChatMessagePayload is the payload for chat_message.
type ChatMessagePayload struct {
	Message string `json:"message"`
	Context string `json:"context"`
}
