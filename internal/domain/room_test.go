package domain

import (
	"errors"
	"fmt"
	"testing"
)

func newTestRoom(t *testing.T, names ...string) *Room {
	t.Helper()
	room := NewRoom("TEST42", DefaultRules())
	deck := NewDeck()
	for i, name := range names {
		p := deck.NewPlayer(fmt.Sprintf("p%d", i+1), name)
		if err := room.AddPlayer(p); err != nil {
			t.Fatalf("add %q: %v", name, err)
		}
	}
	return room
}

func startGame(t *testing.T, room *Room) {
	t.Helper()
	for _, p := range room.Players {
		p.Ready = true
	}
	if err := room.Start(room.HostID); err != nil {
		t.Fatalf("start: %v", err)
	}
}

func TestFirstPlayerBecomesHost(t *testing.T) {
	room := newTestRoom(t, "alice", "bob")

	if room.HostID != "p1" {
		t.Fatalf("host = %q, want p1", room.HostID)
	}
	p, _ := room.Player("p1")
	if !p.IsHost {
		t.Fatal("first player not flagged host")
	}
	p, _ = room.Player("p2")
	if p.IsHost {
		t.Fatal("second player flagged host")
	}
}

func TestAddPlayerDuplicateName(t *testing.T) {
	room := newTestRoom(t, "alice")
	p := NewDeck().NewPlayer("p9", "Alice")

	if err := room.AddPlayer(p); !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("err = %v, want ErrDuplicateName", err)
	}
}

func TestAddPlayerAfterStart(t *testing.T) {
	room := newTestRoom(t, "alice", "bob", "carol")
	startGame(t, room)

	p := NewDeck().NewPlayer("p9", "dave")
	if err := room.AddPlayer(p); !errors.Is(err, ErrGameAlreadyStarted) {
		t.Fatalf("err = %v, want ErrGameAlreadyStarted", err)
	}
}

func TestRemoveHostPromotesEarliestRemaining(t *testing.T) {
	room := newTestRoom(t, "alice", "bob", "carol")

	if _, err := room.RemovePlayer("p1"); err != nil {
		t.Fatalf("remove: %v", err)
	}

	if room.HostID != "p2" {
		t.Fatalf("host = %q, want p2", room.HostID)
	}
	p, _ := room.Player("p2")
	if !p.IsHost {
		t.Fatal("promoted player not flagged host")
	}
}

func TestRemoveLastPlayerEmptiesRoom(t *testing.T) {
	room := newTestRoom(t, "alice")
	room.RemovePlayer("p1")

	if !room.IsEmpty() {
		t.Fatal("room not empty after last player left")
	}
}

func TestStartGating(t *testing.T) {
	room := newTestRoom(t, "alice", "bob")

	if err := room.Start("p2"); !errors.Is(err, ErrNotHost) {
		t.Fatalf("non-host start: %v, want ErrNotHost", err)
	}
	if err := room.Start("p1"); !errors.Is(err, ErrInsufficientPlayers) {
		t.Fatalf("two-player start: %v, want ErrInsufficientPlayers", err)
	}

	p := NewDeck().NewPlayer("p3", "carol")
	room.AddPlayer(p)

	if err := room.Start("p1"); !errors.Is(err, ErrNotAllReady) {
		t.Fatalf("unready start: %v, want ErrNotAllReady", err)
	}

	for _, p := range room.Players {
		p.Ready = true
	}
	if err := room.Start("p1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if !room.GameStarted || room.CurrentRound != 1 {
		t.Fatalf("started=%v round=%d, want true/1", room.GameStarted, room.CurrentRound)
	}

	if err := room.Start("p1"); !errors.Is(err, ErrGameAlreadyStarted) {
		t.Fatalf("restart: %v, want ErrGameAlreadyStarted", err)
	}
	if room.CurrentRound != 1 {
		t.Fatalf("round advanced by failed restart: %d", room.CurrentRound)
	}
}

func TestToggleReadyLobbyOnly(t *testing.T) {
	room := newTestRoom(t, "alice", "bob", "carol")

	if err := room.ToggleReady("p1"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	p, _ := room.Player("p1")
	if !p.Ready {
		t.Fatal("ready flag did not flip")
	}

	startGame(t, room)
	if err := room.ToggleReady("p1"); !errors.Is(err, ErrGameAlreadyStarted) {
		t.Fatalf("toggle after start: %v, want ErrGameAlreadyStarted", err)
	}
}

func TestRevealRoundOnePermitsOnlyProfession(t *testing.T) {
	room := newTestRoom(t, "alice", "bob", "carol")

	if err := room.Reveal("p1", CategoryProfession); !errors.Is(err, ErrGameNotStarted) {
		t.Fatalf("pre-start reveal: %v, want ErrGameNotStarted", err)
	}

	startGame(t, room)

	if err := room.Reveal("p1", CategoryHobby); !errors.Is(err, ErrInvalidForRound) {
		t.Fatalf("hobby in round 1: %v, want ErrInvalidForRound", err)
	}
	if err := room.Reveal("p1", Category("shoeSize")); !errors.Is(err, ErrInvalidForRound) {
		t.Fatalf("unknown category: %v, want ErrInvalidForRound", err)
	}
	if err := room.Reveal("p1", CategoryProfession); err != nil {
		t.Fatalf("profession reveal: %v", err)
	}
	if err := room.Reveal("p1", CategoryProfession); !errors.Is(err, ErrAlreadyRevealed) {
		t.Fatalf("repeat reveal: %v, want ErrAlreadyRevealed", err)
	}
}

func TestRevealDoesNotChangeAttributes(t *testing.T) {
	room := newTestRoom(t, "alice", "bob", "carol")
	startGame(t, room)

	p, _ := room.Player("p1")
	before := make(map[Category]string, len(p.Attributes))
	for cat, v := range p.Attributes {
		before[cat] = v
	}

	room.Reveal("p1", CategoryProfession)
	room.BeginVoting()
	room.CastVote("p1", "p2")

	for cat, v := range before {
		if p.Attributes[cat] != v {
			t.Fatalf("attribute %q changed from %q to %q", cat, v, p.Attributes[cat])
		}
	}
}

func TestAdvanceRoundGate(t *testing.T) {
	room := newTestRoom(t, "alice", "bob", "carol")
	startGame(t, room)

	if err := room.AdvanceRound("p2"); !errors.Is(err, ErrNotHost) {
		t.Fatalf("non-host advance: %v, want ErrNotHost", err)
	}
	if err := room.AdvanceRound("p1"); !errors.Is(err, ErrRoundGateNotMet) {
		t.Fatalf("gate unmet: %v, want ErrRoundGateNotMet", err)
	}

	for _, p := range room.Players {
		if err := room.Reveal(p.ID, CategoryProfession); err != nil {
			t.Fatalf("reveal %s: %v", p.ID, err)
		}
	}
	if err := room.AdvanceRound("p1"); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if room.CurrentRound != 2 {
		t.Fatalf("round = %d, want 2", room.CurrentRound)
	}

	// Round two requires a fresh reveal from everyone.
	if err := room.AdvanceRound("p1"); !errors.Is(err, ErrRoundGateNotMet) {
		t.Fatalf("round 2 gate: %v, want ErrRoundGateNotMet", err)
	}
	for _, p := range room.Players {
		if err := room.Reveal(p.ID, CategoryHobby); err != nil {
			t.Fatalf("reveal hobby %s: %v", p.ID, err)
		}
	}
	if err := room.AdvanceRound("p1"); err != nil {
		t.Fatalf("advance to 3: %v", err)
	}
}

func TestAdvanceRoundCapped(t *testing.T) {
	room := newTestRoom(t, "alice", "bob", "carol")
	room.Rules.MaxRounds = 1
	startGame(t, room)

	for _, p := range room.Players {
		room.Reveal(p.ID, CategoryProfession)
	}
	if err := room.AdvanceRound("p1"); !errors.Is(err, ErrMaxRoundReached) {
		t.Fatalf("advance past max: %v, want ErrMaxRoundReached", err)
	}
}

func TestCastVoteValidation(t *testing.T) {
	room := newTestRoom(t, "alice", "bob", "carol")
	startGame(t, room)

	if err := room.CastVote("p1", "p2"); !errors.Is(err, ErrVotingNotActive) {
		t.Fatalf("vote outside phase: %v, want ErrVotingNotActive", err)
	}

	room.BeginVoting()

	if err := room.CastVote("p1", "p1"); !errors.Is(err, ErrSelfVote) {
		t.Fatalf("self vote: %v, want ErrSelfVote", err)
	}
	if err := room.CastVote("p1", "ghost"); !errors.Is(err, ErrTargetNotFound) {
		t.Fatalf("ghost target: %v, want ErrTargetNotFound", err)
	}
	if err := room.CastVote("p1", "p2"); err != nil {
		t.Fatalf("vote: %v", err)
	}
	if room.AllVoted() {
		t.Fatal("all voted with two votes missing")
	}

	room.CastVote("p2", "p1")
	room.CastVote("p3", "p1")
	if !room.AllVoted() {
		t.Fatal("all voted not detected")
	}
}

func TestResolveVoteMajority(t *testing.T) {
	room := newTestRoom(t, "alice", "bob", "carol")
	startGame(t, room)
	room.BeginVoting()

	room.CastVote("p1", "p2")
	room.CastVote("p2", "p1")
	room.CastVote("p3", "p1")

	eliminated, votes := room.ResolveVote()
	if eliminated == nil || eliminated.ID != "p1" {
		t.Fatalf("eliminated = %v, want p1", eliminated)
	}
	if votes != 2 {
		t.Fatalf("votes = %d, want 2", votes)
	}
	if room.Voting {
		t.Fatal("voting still active after resolution")
	}
	if _, err := room.Player("p1"); !errors.Is(err, ErrPlayerNotFound) {
		t.Fatal("eliminated player still in roster")
	}
}

func TestResolveVoteTieBreaksByJoinOrder(t *testing.T) {
	room := newTestRoom(t, "alice", "bob", "carol", "dave")
	startGame(t, room)
	room.BeginVoting()

	// Two votes each for alice and bob.
	room.CastVote("p1", "p2")
	room.CastVote("p2", "p1")
	room.CastVote("p3", "p1")
	room.CastVote("p4", "p2")

	eliminated, votes := room.ResolveVote()
	if eliminated == nil || eliminated.ID != "p1" {
		t.Fatalf("eliminated = %v, want earliest-joined p1", eliminated)
	}
	if votes != 2 {
		t.Fatalf("votes = %d, want 2", votes)
	}
}

func TestResolveVoteNoVotes(t *testing.T) {
	room := newTestRoom(t, "alice", "bob", "carol")
	startGame(t, room)
	room.BeginVoting()

	eliminated, votes := room.ResolveVote()
	if eliminated != nil || votes != 0 {
		t.Fatalf("got %v/%d, want nil/0", eliminated, votes)
	}
	if room.Voting {
		t.Fatal("voting still active")
	}
	if len(room.Players) != 3 {
		t.Fatalf("roster size = %d, want 3", len(room.Players))
	}
}

func TestBeginVotingClearsVotes(t *testing.T) {
	room := newTestRoom(t, "alice", "bob", "carol", "dave")
	room.Rules.SurvivorThreshold = 1
	startGame(t, room)

	room.BeginVoting()
	room.CastVote("p1", "p2")
	room.CastVote("p2", "p1")
	room.CastVote("p3", "p1")
	room.CastVote("p4", "p1")
	room.ResolveVote()

	room.BeginVoting()
	for _, p := range room.Players {
		if p.HasVoted() {
			t.Fatalf("player %s still has a vote after restart", p.ID)
		}
	}
}

func TestGameOver(t *testing.T) {
	room := newTestRoom(t, "alice", "bob", "carol", "dave")

	if room.GameOver() {
		t.Fatal("game over before start")
	}

	startGame(t, room)
	if room.GameOver() {
		t.Fatal("game over with four players in round 1")
	}

	room.RemovePlayer("p4")
	if !room.GameOver() {
		t.Fatal("game not over at survivor threshold")
	}
}

func TestFinishLatchesRoom(t *testing.T) {
	room := newTestRoom(t, "alice", "bob", "carol")
	startGame(t, room)

	gen := room.Generation
	room.Finish()
	if !room.Ended {
		t.Fatal("room not marked ended")
	}
	if room.Generation != gen+1 {
		t.Fatalf("generation = %d, want %d", room.Generation, gen+1)
	}

	// Finishing twice must not bump the generation again, or a
	// pending teardown would be voided.
	room.Finish()
	if room.Generation != gen+1 {
		t.Fatalf("generation = %d after double finish, want %d", room.Generation, gen+1)
	}

	room.BeginVoting()
	if room.Voting {
		t.Fatal("voting started in a finished room")
	}
	if room.Generation != gen+1 {
		t.Fatalf("generation = %d after voting attempt, want %d", room.Generation, gen+1)
	}
}

func TestSnapshotCarriesFullCard(t *testing.T) {
	room := newTestRoom(t, "alice", "bob", "carol")
	startGame(t, room)
	room.Reveal("p1", CategoryProfession)

	snapshot := room.Snapshot()
	if len(snapshot) != 3 {
		t.Fatalf("snapshot size = %d, want 3", len(snapshot))
	}
	for _, info := range snapshot {
		for _, cat := range Categories {
			if info.Attributes[cat] == "" {
				t.Fatalf("snapshot for %s missing %q", info.ID, cat)
			}
		}
	}
	if !snapshot[0].Revealed[CategoryProfession] {
		t.Fatal("reveal flag missing from snapshot")
	}
	if snapshot[0].Revealed[CategoryHobby] {
		t.Fatal("unrevealed category flagged in snapshot")
	}
}
