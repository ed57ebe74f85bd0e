package app

import (
	"time"

	"bunker/internal/domain"
)

// ToggleReady flips the requester's ready flag in the lobby.
func (r *Registry) ToggleReady(connID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, player := r.resolveLocked(connID)
	if room == nil {
		return nil
	}

	if err := room.ToggleReady(player.ID); err != nil {
		return err
	}

	r.broadcast(room, domain.NewEvent(domain.EventPlayersUpdate, room.Snapshot()))

	return nil
}

// StartGame starts the game on the host's request.
func (r *Registry) StartGame(connID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, player := r.resolveLocked(connID)
	if room == nil {
		return nil
	}

	if err := room.Start(player.ID); err != nil {
		return err
	}

	r.logger.Info().Str("roomCode", room.Code).Int("players", len(room.Players)).Msg("game started")

	r.broadcast(room, domain.NewEvent(domain.EventGameStarted, nil))
	r.broadcast(room, domain.NewEvent(domain.EventPlayersUpdate, room.Snapshot()))

	return nil
}

// RevealAttribute flips one of the requester's attribute reveal flags.
func (r *Registry) RevealAttribute(connID string, cat domain.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, player := r.resolveLocked(connID)
	if room == nil {
		return nil
	}

	if err := room.Reveal(player.ID, cat); err != nil {
		return err
	}

	r.broadcast(room, domain.NewEvent(domain.EventAttributeRevealed, &domain.AttributeRevealedPayload{
		PlayerID:  player.ID,
		Attribute: cat,
	}))
	r.broadcast(room, domain.NewEvent(domain.EventPlayersUpdate, room.Snapshot()))

	return nil
}

// AdvanceRound moves the room to the next round on the host's request.
// Reaching the final round schedules the voting phase.
func (r *Registry) AdvanceRound(connID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, player := r.resolveLocked(connID)
	if room == nil {
		return nil
	}

	if err := room.AdvanceRound(player.ID); err != nil {
		return err
	}

	r.broadcast(room, domain.NewEvent(domain.EventNextRound, &domain.NextRoundPayload{
		Round: room.CurrentRound,
	}))
	r.broadcast(room, domain.NewEvent(domain.EventPlayersUpdate, room.Snapshot()))

	if room.AtMaxRound() {
		r.scheduleAutoVoting(room.Code, room.Generation)
	}

	return nil
}

// StartVoting enters the voting phase on the host's request.
func (r *Registry) StartVoting(connID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, player := r.resolveLocked(connID)
	if room == nil || room.Voting || room.Ended {
		return nil
	}

	if err := room.StartVoting(player.ID); err != nil {
		return err
	}

	r.beginVotingLocked(room)

	return nil
}

// CastVote records the requester's elimination target. Voting resolves
// once every remaining player has voted.
func (r *Registry) CastVote(connID, targetID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, player := r.resolveLocked(connID)
	if room == nil {
		return nil
	}

	if err := room.CastVote(player.ID, targetID); err != nil {
		return err
	}

	r.broadcast(room, domain.NewEvent(domain.EventPlayerVoted, &domain.PlayerVotedPayload{
		PlayerID:       player.ID,
		TargetPlayerID: targetID,
	}))

	if room.AllVoted() {
		r.resolveVoteLocked(room)
	}

	return nil
}

// Chat relays a chat message to the requester's room.
func (r *Registry) Chat(connID, message, context string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, player := r.resolveLocked(connID)
	if room == nil {
		return nil
	}

	r.broadcast(room, domain.NewEvent(domain.EventChatMessage, &domain.ChatMessagePayload{
		Username: player.Username,
		Message:  message,
		Context:  context,
	}))

	return nil
}

// beginVotingLocked announces the voting phase and arms the timeout.
// room.Voting must already be set by the caller's transition.
func (r *Registry) beginVotingLocked(room *domain.Room) {
	r.broadcast(room, domain.NewEvent(domain.EventStartVoting, nil))
	r.broadcast(room, domain.NewEvent(domain.EventPlayersUpdate, room.Snapshot()))

	code, gen := room.Code, room.Generation
	time.AfterFunc(r.settings.VotingTimeout, func() {
		r.autoResolveVote(code, gen)
	})
}

// scheduleAutoVoting arms the round-limit transition into voting.
func (r *Registry) scheduleAutoVoting(code string, gen uint64) {
	time.AfterFunc(r.settings.VotingDelay, func() {
		r.autoBeginVoting(code, gen)
	})
}

// autoBeginVoting is the deferred round-limit transition. The room may
// have been mutated or destroyed since it was scheduled, so it
// re-validates before acting; a stale timer is a no-op.
func (r *Registry) autoBeginVoting(code string, gen uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[code]
	if !ok || room.Generation != gen || room.Voting || !room.GameStarted {
		return
	}

	room.BeginVoting()
	r.beginVotingLocked(room)
}

// autoResolveVote is the deferred voting timeout. If the phase already
// resolved or the room moved on, it is a guarded no-op; otherwise it
// resolves with the votes cast so far.
func (r *Registry) autoResolveVote(code string, gen uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[code]
	if !ok || room.Generation != gen || !room.Voting {
		return
	}

	r.resolveVoteLocked(room)
}

// resolveVoteLocked tallies the vote, detaches the eliminated player
// and runs the end-game check.
func (r *Registry) resolveVoteLocked(room *domain.Room) {
	// The eliminated player still hears the result.
	recipients := make([]string, 0, len(room.Players))
	for _, p := range room.Players {
		recipients = append(recipients, p.ID)
	}

	eliminated, votes := room.ResolveVote()
	if eliminated != nil {
		delete(r.conns, eliminated.ID)

		r.logger.Info().
			Str("roomCode", room.Code).
			Str("username", eliminated.Username).
			Int("votes", votes).
			Msg("player eliminated")

		event := domain.NewEvent(domain.EventPlayerEliminated, &domain.PlayerEliminatedPayload{
			PlayerID:  eliminated.ID,
			Username:  eliminated.Username,
			VoteCount: votes,
		})
		for _, id := range recipients {
			r.emit(id, event)
		}
	}

	r.broadcast(room, domain.NewEvent(domain.EventPlayersUpdate, room.Snapshot()))

	if room.GameOver() {
		r.broadcast(room, domain.NewEvent(domain.EventGameEnded, &domain.GameEndedPayload{
			Winners: room.Winners(),
		}))

		r.logger.Info().Str("roomCode", room.Code).Strs("winners", room.Winners()).Msg("game ended")

		// Latch the end state before arming teardown so no later
		// transition can bump the generation out from under it.
		room.Finish()
		code, gen := room.Code, room.Generation
		time.AfterFunc(r.settings.TeardownGrace, func() {
			r.teardownRoom(code, gen)
		})
	}
}

// teardownRoom is the deferred post-game cleanup. Guarded by the
// generation counter like every other deferred transition.
func (r *Registry) teardownRoom(code string, gen uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[code]
	if !ok || room.Generation != gen {
		return
	}

	for _, p := range room.Players {
		delete(r.conns, p.ID)
	}
	delete(r.rooms, code)

	r.logger.Info().Str("roomCode", code).Msg("room torn down")
}
