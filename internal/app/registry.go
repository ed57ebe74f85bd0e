package app

import (
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"bunker/internal/domain"
)

const (
	// DefaultRoomCodeLength is the default length for room codes
	DefaultRoomCodeLength = 6

	// RoomCodeChars are characters used for room codes (no ambiguous chars)
	RoomCodeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// Settings holds registry-level tunables on top of the game rules.
type Settings struct {
	Rules          domain.Rules
	RoomCodeLength int
	VotingDelay   time.Duration // pause between the final round and automatic voting
	VotingTimeout time.Duration // voting auto-resolves with the votes cast so far
	TeardownGrace time.Duration // delay before a finished room is torn down
}

// DefaultSettings returns the default registry settings.
func DefaultSettings() Settings {
	return Settings{
		Rules:          domain.DefaultRules(),
		RoomCodeLength: DefaultRoomCodeLength,
		VotingDelay:    3 * time.Second,
		VotingTimeout:  60 * time.Second,
		TeardownGrace:  30 * time.Second,
	}
}

// Conn is the messaging collaborator for a single connection. Send is
// fire-and-forget; implementations must not block.
type Conn interface {
	Send(event *domain.Event) error
	Close() error
}

// Registry owns all room and player state. It maps room codes to rooms
// and connection ids to their room, and keeps the two consistent across
// every mutation path. All handlers run to completion under one mutex.
type Registry struct {
	mu      sync.Mutex
	rooms   map[string]*domain.Room
	conns   map[string]string // connection id -> room code
	clients map[string]Conn   // connection id -> outbound channel

	deck     *domain.Deck
	settings Settings
	logger   zerolog.Logger
	done     chan struct{}
}

// NewRegistry creates a room registry.
func NewRegistry(settings Settings, logger zerolog.Logger) *Registry {
	r := &Registry{
		rooms:    make(map[string]*domain.Room),
		conns:    make(map[string]string),
		clients:  make(map[string]Conn),
		deck:     domain.NewDeck(),
		settings: settings,
		logger:   logger,
		done:     make(chan struct{}),
	}
	return r
}

// Connect registers a connection's outbound channel. Called by the
// transport on upgrade, before any session event arrives.
func (r *Registry) Connect(connID string, c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[connID] = c
}

// Disconnect removes the connection and, if it belongs to a room,
// detaches the player exactly as an explicit leave would.
func (r *Registry) Disconnect(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.detachLocked(connID)
	delete(r.clients, connID)
}

// CreateRoom creates a room with the requester as its host.
func (r *Registry) CreateRoom(connID, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	code, err := r.uniqueRoomCode()
	if err != nil {
		return err
	}

	// Nothing can fail past this point, so it is safe to vacate the
	// requester's current seat; a connection holds at most one.
	r.detachLocked(connID)

	room := domain.NewRoom(code, r.settings.Rules)
	player := r.deck.NewPlayer(connID, username)
	if err := room.AddPlayer(player); err != nil {
		return err
	}

	r.rooms[code] = room
	r.conns[connID] = code

	r.logger.Info().Str("roomCode", code).Str("username", username).Msg("room created")

	r.emit(connID, domain.NewEvent(domain.EventRoomCreated, &domain.RoomCreatedPayload{
		RoomCode: code,
		PlayerID: connID,
	}))
	r.broadcast(room, domain.NewEvent(domain.EventPlayersUpdate, room.Snapshot()))

	return nil
}

// JoinRoom admits the requester into an existing room.
func (r *Registry) JoinRoom(connID, code, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[code]
	if !ok {
		return domain.ErrRoomNotFound
	}

	// Admission must be settled before the requester gives up their
	// current seat: a failed join leaves every room untouched.
	if err := room.CanAdmit(username); err != nil {
		return err
	}

	r.detachLocked(connID)

	// Vacating the old seat can destroy the target room if the
	// requester was its last member.
	room, ok = r.rooms[code]
	if !ok {
		return domain.ErrRoomNotFound
	}

	player := r.deck.NewPlayer(connID, username)
	if err := room.AddPlayer(player); err != nil {
		return err
	}
	r.conns[connID] = code

	r.logger.Info().Str("roomCode", code).Str("username", username).Msg("player joined")

	r.emit(connID, domain.NewEvent(domain.EventRoomJoined, &domain.RoomJoinedPayload{
		RoomCode: code,
		PlayerID: connID,
	}))
	r.broadcast(room, domain.NewEvent(domain.EventPlayerJoined, &domain.PlayerJoinedPayload{
		Username: username,
	}))
	r.broadcast(room, domain.NewEvent(domain.EventPlayersUpdate, room.Snapshot()))

	return nil
}

// LeaveRoom detaches the requester from their room. The connection
// itself stays open.
func (r *Registry) LeaveRoom(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.detachLocked(connID)
}

// resolveLocked finds the acting player and their room. A miss is the
// tolerant no-op of the disconnect fault model, never an error.
func (r *Registry) resolveLocked(connID string) (*domain.Room, *domain.Player) {
	code, ok := r.conns[connID]
	if !ok {
		return nil, nil
	}
	room, ok := r.rooms[code]
	if !ok {
		return nil, nil
	}
	player, err := room.Player(connID)
	if err != nil {
		return nil, nil
	}
	return room, player
}

// detachLocked removes the connection's player from its room, promotes
// a new host if needed and destroys the room when it empties.
func (r *Registry) detachLocked(connID string) {
	room, player := r.resolveLocked(connID)
	if room == nil {
		delete(r.conns, connID)
		return
	}

	room.RemovePlayer(player.ID)
	delete(r.conns, connID)

	if room.IsEmpty() {
		delete(r.rooms, room.Code)
		r.logger.Info().Str("roomCode", room.Code).Msg("room destroyed")
		return
	}

	r.broadcast(room, domain.NewEvent(domain.EventPlayerLeft, &domain.PlayerLeftPayload{
		Username: player.Username,
	}))
	r.broadcast(room, domain.NewEvent(domain.EventPlayersUpdate, room.Snapshot()))

	// The departure may have been the last missing vote.
	if room.Voting && room.AllVoted() {
		r.resolveVoteLocked(room)
	}
}

// emit sends an event to one connection, fire-and-forget.
func (r *Registry) emit(connID string, event *domain.Event) {
	client, ok := r.clients[connID]
	if !ok {
		return
	}
	if err := client.Send(event); err != nil {
		r.logger.Debug().Err(err).Str("connID", connID).Msg("failed to send to client")
	}
}

// broadcast sends an event to every player in the room.
func (r *Registry) broadcast(room *domain.Room, event *domain.Event) {
	for _, p := range room.Players {
		r.emit(p.ID, event)
	}
}

// RoomInfo describes a room for the HTTP API.
type RoomInfo struct {
	RoomCode    string    `json:"roomCode"`
	PlayerCount int       `json:"playerCount"`
	GameStarted bool      `json:"gameStarted"`
	CanJoin     bool      `json:"canJoin"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Room returns a room's public description.
func (r *Registry) Room(code string) (RoomInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[code]
	if !ok {
		return RoomInfo{}, domain.ErrRoomNotFound
	}
	return RoomInfo{
		RoomCode:    room.Code,
		PlayerCount: len(room.Players),
		GameStarted: room.GameStarted,
		CanJoin:     !room.GameStarted,
		CreatedAt:   room.CreatedAt,
	}, nil
}

// Stats returns the process-wide room and player counts.
func (r *Registry) Stats() (rooms, players int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, room := range r.rooms {
		players += len(room.Players)
	}
	return len(r.rooms), players
}

// Close shuts down the registry and all connections.
func (r *Registry) Close() {
	select {
	case <-r.done:
		return
	default:
		close(r.done)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, client := range r.clients {
		client.Close()
	}
	r.clients = make(map[string]Conn)
	r.conns = make(map[string]string)
	r.rooms = make(map[string]*domain.Room)
}

// uniqueRoomCode generates a room code not currently in use.
func (r *Registry) uniqueRoomCode() (string, error) {
	for attempts := 0; attempts < 10; attempts++ {
		code := r.generateRoomCode()
		if _, exists := r.rooms[code]; !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("failed to generate unique room code")
}

// generateRoomCode generates a random room code.
func (r *Registry) generateRoomCode() string {
	length := r.settings.RoomCodeLength
	if length <= 0 {
		length = DefaultRoomCodeLength
	}

	b := make([]byte, length)
	rand.Read(b)

	code := make([]byte, length)
	for i := range code {
		code[i] = RoomCodeChars[int(b[i])%len(RoomCodeChars)]
	}

	return string(code)
}
