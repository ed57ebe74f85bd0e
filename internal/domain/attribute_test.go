package domain

import "testing"

func TestNewPlayerDealsFullCard(t *testing.T) {
	deck := NewDeck()
	p := deck.NewPlayer("p1", "alice")

	if p.ID != "p1" || p.Username != "alice" {
		t.Fatalf("unexpected identity: %q %q", p.ID, p.Username)
	}

	for _, cat := range Categories {
		if p.Attributes[cat] == "" {
			t.Errorf("category %q has no value", cat)
		}
		if p.Revealed[cat] {
			t.Errorf("category %q revealed at creation", cat)
		}
	}

	if p.Ready {
		t.Error("player ready at creation")
	}
	if p.HasVoted() {
		t.Error("player has a vote at creation")
	}
}

func TestDrawReturnsPoolValues(t *testing.T) {
	deck := NewDeck()

	for _, cat := range Categories {
		seen := make(map[string]bool)
		for i := 0; i < 200; i++ {
			v := deck.Draw(cat)
			if v == "" {
				t.Fatalf("empty draw for %q", cat)
			}
			seen[v] = true
		}
		if len(seen) < 2 {
			t.Errorf("draws for %q never varied", cat)
		}
	}
}

func TestValidCategory(t *testing.T) {
	for _, cat := range Categories {
		if !ValidCategory(string(cat)) {
			t.Errorf("%q should be valid", cat)
		}
	}
	if ValidCategory("shoeSize") {
		t.Error("unknown category accepted")
	}
}
