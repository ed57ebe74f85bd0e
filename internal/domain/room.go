package domain

import (
	"strings"
	"time"
)

// Rules holds configurable game parameters.
type Rules struct {
	MinPlayers        int `json:"minPlayers"`
	MaxRounds         int `json:"maxRounds"`
	SurvivorThreshold int `json:"survivorThreshold"`
}

// DefaultRules returns the default game rules.
func DefaultRules() Rules {
	return Rules{
		MinPlayers:        3,
		MaxRounds:         5,
		SurvivorThreshold: 3,
	}
}

// Room is an isolated game session: a bounded set of players plus the
// shared round, voting and host state.
type Room struct {
	Code    string
	Players []*Player // join order; host succession follows it
	HostID  string

	GameStarted  bool
	CurrentRound int
	Voting       bool

	// Ended latches true when the end-game condition is met; a
	// finished room only waits for teardown.
	Ended bool

	// Generation increments on every phase transition. Deferred
	// transitions capture it when scheduled and become no-ops when a
	// room has moved on before they fire.
	Generation uint64

	Rules     Rules
	CreatedAt time.Time
}

// NewRoom creates an empty room with the given code.
func NewRoom(code string, rules Rules) *Room {
	return &Room{
		Code:      code,
		Players:   make([]*Player, 0, 8),
		Rules:     rules,
		CreatedAt: time.Now(),
	}
}

// CanAdmit checks the admission rules for a prospective player without
// mutating the room.
func (r *Room) CanAdmit(username string) error {
	if r.GameStarted {
		return ErrGameAlreadyStarted
	}
	for _, other := range r.Players {
		if strings.EqualFold(other.Username, username) {
			return ErrDuplicateName
		}
	}
	return nil
}

// AddPlayer admits a player into the room. The first player to join
// becomes host.
func (r *Room) AddPlayer(p *Player) error {
	if err := r.CanAdmit(p.Username); err != nil {
		return err
	}

	if len(r.Players) == 0 {
		p.IsHost = true
		r.HostID = p.ID
	}
	r.Players = append(r.Players, p)

	return nil
}

// RemovePlayer detaches a player from the room. If the host leaves, the
// earliest-joined remaining player is promoted.
func (r *Room) RemovePlayer(playerID string) (*Player, error) {
	idx := -1
	for i, p := range r.Players {
		if p.ID == playerID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrPlayerNotFound
	}

	removed := r.Players[idx]
	r.Players = append(r.Players[:idx], r.Players[idx+1:]...)

	if removed.IsHost && len(r.Players) > 0 {
		next := r.Players[0]
		next.IsHost = true
		r.HostID = next.ID
	}

	return removed, nil
}

// Player returns a player by id.
func (r *Room) Player(playerID string) (*Player, error) {
	for _, p := range r.Players {
		if p.ID == playerID {
			return p, nil
		}
	}
	return nil, ErrPlayerNotFound
}

// IsHost checks if the given player is the host.
func (r *Room) IsHost(playerID string) bool {
	return r.HostID == playerID
}

// IsEmpty reports whether the last player has left.
func (r *Room) IsEmpty() bool {
	return len(r.Players) == 0
}

// ToggleReady flips a player's ready flag. Only meaningful in the lobby.
func (r *Room) ToggleReady(playerID string) error {
	if r.GameStarted {
		return ErrGameAlreadyStarted
	}
	p, err := r.Player(playerID)
	if err != nil {
		return err
	}
	p.Ready = !p.Ready
	return nil
}

// Start begins the game. Host only; requires everyone ready and at
// least MinPlayers present. Succeeds exactly once per room.
func (r *Room) Start(requesterID string) error {
	if !r.IsHost(requesterID) {
		return ErrNotHost
	}
	if r.GameStarted {
		return ErrGameAlreadyStarted
	}
	if len(r.Players) < r.Rules.MinPlayers {
		return ErrInsufficientPlayers
	}
	for _, p := range r.Players {
		if !p.Ready {
			return ErrNotAllReady
		}
	}

	r.GameStarted = true
	r.CurrentRound = 1
	r.Generation++

	return nil
}

// Reveal flips one attribute's reveal flag for the player. Round 1
// permits only the profession; later rounds permit any still-hidden
// category, with no per-round count limit.
func (r *Room) Reveal(playerID string, cat Category) error {
	if !r.GameStarted {
		return ErrGameNotStarted
	}
	p, err := r.Player(playerID)
	if err != nil {
		return err
	}
	if !ValidCategory(string(cat)) {
		return ErrInvalidForRound
	}
	if r.CurrentRound == 1 && cat != CategoryProfession {
		return ErrInvalidForRound
	}
	if p.Revealed[cat] {
		return ErrAlreadyRevealed
	}

	p.Revealed[cat] = true
	p.RevealedThisRound++

	return nil
}

// roundGateMet reports whether the current round's completion criterion
// holds: round 1 requires every player to have revealed their
// profession, later rounds require at least one new reveal per player.
func (r *Room) roundGateMet() bool {
	for _, p := range r.Players {
		if r.CurrentRound == 1 {
			if !p.Revealed[CategoryProfession] {
				return false
			}
		} else if p.RevealedThisRound == 0 {
			return false
		}
	}
	return true
}

// AdvanceRound moves the room to the next round. Host only; the round
// gate is enforced server-side.
func (r *Room) AdvanceRound(requesterID string) error {
	if !r.IsHost(requesterID) {
		return ErrNotHost
	}
	if !r.GameStarted {
		return ErrGameNotStarted
	}
	if r.CurrentRound >= r.Rules.MaxRounds {
		return ErrMaxRoundReached
	}
	if !r.roundGateMet() {
		return ErrRoundGateNotMet
	}

	r.CurrentRound++
	r.Generation++
	for _, p := range r.Players {
		p.RevealedThisRound = 0
	}

	return nil
}

// AtMaxRound reports whether the final round has been reached.
func (r *Room) AtMaxRound() bool {
	return r.CurrentRound >= r.Rules.MaxRounds
}

// StartVoting enters the voting phase on a host's request.
func (r *Room) StartVoting(requesterID string) error {
	if !r.IsHost(requesterID) {
		return ErrNotHost
	}
	if !r.GameStarted {
		return ErrGameNotStarted
	}
	r.BeginVoting()
	return nil
}

// BeginVoting enters the voting phase, clearing every player's vote.
// A no-op when voting is already active or the game has ended.
func (r *Room) BeginVoting() {
	if r.Voting || r.Ended {
		return
	}
	r.Voting = true
	r.Generation++
	for _, p := range r.Players {
		p.Vote = ""
	}
}

// CastVote records a player's elimination target.
func (r *Room) CastVote(voterID, targetID string) error {
	if !r.Voting {
		return ErrVotingNotActive
	}
	voter, err := r.Player(voterID)
	if err != nil {
		return err
	}
	if voterID == targetID {
		return ErrSelfVote
	}
	if _, err := r.Player(targetID); err != nil {
		return ErrTargetNotFound
	}

	voter.Vote = targetID

	return nil
}

// AllVoted reports whether every remaining player has a vote recorded.
func (r *Room) AllVoted() bool {
	for _, p := range r.Players {
		if !p.HasVoted() {
			return false
		}
	}
	return len(r.Players) > 0
}

// ResolveVote tallies the votes, removes the eliminated player and ends
// the voting phase. Ties break deterministically toward the
// earliest-joined target. Returns the eliminated player and their vote
// count.
func (r *Room) ResolveVote() (*Player, int) {
	counts := make(map[string]int, len(r.Players))
	for _, p := range r.Players {
		if p.Vote != "" {
			counts[p.Vote]++
		}
	}

	var eliminated *Player
	maxVotes := 0
	for _, p := range r.Players { // join order fixes ties
		if counts[p.ID] > maxVotes {
			maxVotes = counts[p.ID]
			eliminated = p
		}
	}

	r.Voting = false
	r.Generation++

	if eliminated == nil {
		return nil, 0
	}
	r.RemovePlayer(eliminated.ID)

	return eliminated, maxVotes
}

// Finish marks the game over. The generation bump voids any pending
// phase transition; only the teardown armed after this point may act.
func (r *Room) Finish() {
	if r.Ended {
		return
	}
	r.Ended = true
	r.Generation++
}

// GameOver reports whether the end-game condition holds: a surviving
// subset at or below the threshold, or the final round reached.
func (r *Room) GameOver() bool {
	if !r.GameStarted {
		return false
	}
	return len(r.Players) <= r.Rules.SurvivorThreshold || r.AtMaxRound()
}

// Winners returns the usernames of the surviving players.
func (r *Room) Winners() []string {
	winners := make([]string, 0, len(r.Players))
	for _, p := range r.Players {
		winners = append(winners, p.Username)
	}
	return winners
}

// Snapshot returns the full roster in join order.
func (r *Room) Snapshot() []PlayerInfo {
	players := make([]PlayerInfo, 0, len(r.Players))
	for _, p := range r.Players {
		players = append(players, p.ToInfo())
	}
	return players
}
