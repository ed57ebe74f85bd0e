package domain

import "errors"

// Domain errors
var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrGameAlreadyStarted  = errors.New("game already started")
	ErrGameNotStarted      = errors.New("game has not started")
	ErrDuplicateName       = errors.New("name already taken in this room")
	ErrNotHost             = errors.New("only the host can perform this action")
	ErrNotAllReady         = errors.New("not all players are ready")
	ErrInsufficientPlayers = errors.New("not enough players to start")
	ErrInvalidForRound     = errors.New("attribute cannot be revealed this round")
	ErrAlreadyRevealed     = errors.New("attribute already revealed")
	ErrRoundGateNotMet     = errors.New("round completion criteria not met")
	ErrMaxRoundReached     = errors.New("maximum round reached")
	ErrVotingNotActive     = errors.New("voting is not active")
	ErrSelfVote            = errors.New("cannot vote for yourself")
	ErrTargetNotFound      = errors.New("vote target not found")
	ErrPlayerNotFound      = errors.New("player not found")
)
