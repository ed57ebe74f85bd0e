package domain

// EventType represents the type of an outbound session event.
type EventType string

const (
	EventRoomCreated       EventType = "room_created"
	EventRoomJoined        EventType = "room_joined"
	EventPlayerJoined      EventType = "player_joined"
	EventPlayerLeft        EventType = "player_left"
	EventPlayersUpdate     EventType = "players_update"
	EventAttributeRevealed EventType = "attribute_revealed"
	EventGameStarted       EventType = "game_started"
	EventNextRound         EventType = "next_round"
	EventStartVoting       EventType = "start_voting"
	EventPlayerVoted       EventType = "player_voted"
	EventPlayerEliminated  EventType = "player_eliminated"
	EventGameEnded         EventType = "game_ended"
	EventChatMessage       EventType = "chat_message"
	EventError             EventType = "error"
)

// Event is a message pushed to one connection or broadcast to a room.
type Event struct {
	Type    EventType   `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// NewEvent creates a new outbound event.
func NewEvent(eventType EventType, payload interface{}) *Event {
	return &Event{Type: eventType, Payload: payload}
}

// PlayerInfo is the roster snapshot form of a player. The full attribute
// card is included; reveal flags are advisory for client rendering.
type PlayerInfo struct {
	ID         string              `json:"id"`
	Username   string              `json:"username"`
	Attributes map[Category]string `json:"attributes"`
	Revealed   map[Category]bool   `json:"revealed"`
	Ready      bool                `json:"ready"`
	IsHost     bool                `json:"isHost"`
	HasVoted   bool                `json:"hasVoted"`
}

// Payload types for outbound events

// RoomCreatedPayload is sent to the creating connection.
type RoomCreatedPayload struct {
	RoomCode string `json:"roomCode"`
	PlayerID string `json:"playerId"`
}

// RoomJoinedPayload is sent to the joining connection.
type RoomJoinedPayload struct {
	RoomCode string `json:"roomCode"`
	PlayerID string `json:"playerId"`
}

// PlayerJoinedPayload announces a new player to the room.
type PlayerJoinedPayload struct {
	Username string `json:"username"`
}

// PlayerLeftPayload announces a departure to the room.
type PlayerLeftPayload struct {
	Username string `json:"username"`
}

// AttributeRevealedPayload announces a reveal to the room.
type AttributeRevealedPayload struct {
	PlayerID  string   `json:"playerId"`
	Attribute Category `json:"attribute"`
}

// NextRoundPayload announces a round transition.
type NextRoundPayload struct {
	Round int `json:"round"`
}

// PlayerVotedPayload announces an individual vote.
type PlayerVotedPayload struct {
	PlayerID       string `json:"playerId"`
	TargetPlayerID string `json:"targetPlayerId"`
}

// PlayerEliminatedPayload announces a vote resolution.
type PlayerEliminatedPayload struct {
	PlayerID  string `json:"playerId"`
	Username  string `json:"username"`
	VoteCount int    `json:"voteCount"`
}

// GameEndedPayload carries the surviving players.
type GameEndedPayload struct {
	Winners []string `json:"winners"`
}

// ChatMessagePayload carries a relayed chat message.
type ChatMessagePayload struct {
	Username string `json:"username"`
	Message  string `json:"message"`
	Context  string `json:"context,omitempty"`
}

// ErrorPayload is sent to the offending connection only.
type ErrorPayload struct {
	Message string `json:"message"`
}
