package domain

import "math/rand"

// Category is one axis of a player's secret profile.
type Category string

const (
	CategoryProfession     Category = "profession"
	CategoryHealth         Category = "health"
	CategoryBiology        Category = "biology"
	CategoryHobby          Category = "hobby"
	CategoryLuggage        Category = "luggage"
	CategoryPhobia         Category = "phobia"
	CategoryCharacter      Category = "character"
	CategoryAdditionalInfo Category = "additionalInfo"
)

// Categories lists every attribute category in card order.
var Categories = []Category{
	CategoryProfession,
	CategoryHealth,
	CategoryBiology,
	CategoryHobby,
	CategoryLuggage,
	CategoryPhobia,
	CategoryCharacter,
	CategoryAdditionalInfo,
}

// ValidCategory reports whether s names a known category.
func ValidCategory(s string) bool {
	for _, c := range Categories {
		if Category(s) == c {
			return true
		}
	}
	return false
}

// Deck holds the fixed value pools each attribute is drawn from.
// Pools are non-empty by construction and never mutated after creation.
type Deck struct {
	pools map[Category][]string
}

// NewDeck returns a deck with the standard bunker card pools.
func NewDeck() *Deck {
	return &Deck{pools: map[Category][]string{
		CategoryProfession: {
			"Nuclear engineer", "Cook", "Doctor", "Farmer", "Programmer",
			"Builder", "Teacher", "Soldier", "Scientist", "Electrician",
			"Psychologist", "Mechanic", "Chemist", "Taxidermist", "Astrologer",
		},
		CategoryHealth: {
			"Perfect health", "Chronic asthma", "Dust allergy", "Diabetes",
			"Excellent immune system", "Blind in one eye", "Hypertension",
			"Peanut allergy",
		},
		CategoryBiology: {
			"Male, 18", "Female, 25", "Male, 34", "Female, 42",
			"Nonbinary, 29", "Male, 51", "Female, 63", "Male, 72",
		},
		CategoryHobby: {
			"Gardening", "Playing guitar", "Reading", "Stamp collecting",
			"Cooking", "Astronomy", "Chess", "Photography",
			"Cross-stitching", "Singing",
		},
		CategoryLuggage: {
			"First aid kit", "Toolbox", "Sack of potatoes", "Vegetable seeds",
			"Portable generator", "Wilderness survival handbook",
			"Radio transmitter", "Tent", "Hand-crank flashlight",
			"30-day water supply",
		},
		CategoryPhobia: {
			"Arachnophobia", "Claustrophobia", "Aquaphobia", "Aerophobia",
			"Agoraphobia", "Triskaidekaphobia", "Zoophobia", "Hemophobia",
		},
		CategoryCharacter: {
			"Natural leader", "Panics easily", "Optimist", "Cynic",
			"Great negotiator", "Chronic grumbler", "Incredibly lucky",
			"Allergic to lying", "Vegan", "Snores like a tractor",
		},
		CategoryAdditionalInfo: {
			"Knows morse code", "Speaks four languages", "Former scout",
			"Can pick locks", "Sleepwalks", "Won a hot dog eating contest",
			"Has a twin", "Keeps a diary", "Never misses the news",
			"Owns a bunker blueprint",
		},
	}}
}

// Draw returns a uniform-random value from the category's pool.
func (d *Deck) Draw(cat Category) string {
	pool := d.pools[cat]
	return pool[rand.Intn(len(pool))]
}

// NewPlayer creates a player with a freshly drawn attribute card.
// Every reveal flag starts false; ready and vote state start cleared.
func (d *Deck) NewPlayer(id, username string) *Player {
	attrs := make(map[Category]string, len(Categories))
	revealed := make(map[Category]bool, len(Categories))
	for _, cat := range Categories {
		attrs[cat] = d.Draw(cat)
		revealed[cat] = false
	}
	return newPlayer(id, username, attrs, revealed)
}
