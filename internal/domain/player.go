package domain

import "time"

// Player represents a participant in a room.
type Player struct {
	ID       string
	Username string

	// Attributes are drawn once at creation and never change.
	Attributes map[Category]string

	// Revealed flags flip to true one way; they are never reset.
	Revealed map[Category]bool

	// RevealedThisRound counts reveals since the current round began,
	// used by the round-advance gate.
	RevealedThisRound int

	Ready  bool
	IsHost bool

	// Vote holds the current elimination target's id, "" when no vote
	// has been cast this voting phase.
	Vote string

	JoinedAt time.Time
}

func newPlayer(id, username string, attrs map[Category]string, revealed map[Category]bool) *Player {
	return &Player{
		ID:         id,
		Username:   username,
		Attributes: attrs,
		Revealed:   revealed,
		JoinedAt:   time.Now(),
	}
}

// HasRevealed reports whether the category has been revealed.
func (p *Player) HasRevealed(cat Category) bool {
	return p.Revealed[cat]
}

// HasVoted reports whether the player has voted this phase.
func (p *Player) HasVoted() bool {
	return p.Vote != ""
}

// ToInfo converts a Player to its roster snapshot form.
func (p *Player) ToInfo() PlayerInfo {
	attrs := make(map[Category]string, len(p.Attributes))
	for cat, v := range p.Attributes {
		attrs[cat] = v
	}
	revealed := make(map[Category]bool, len(p.Revealed))
	for cat, v := range p.Revealed {
		revealed[cat] = v
	}
	return PlayerInfo{
		ID:         p.ID,
		Username:   p.Username,
		Attributes: attrs,
		Revealed:   revealed,
		Ready:      p.Ready,
		IsHost:     p.IsHost,
		HasVoted:   p.HasVoted(),
	}
}
