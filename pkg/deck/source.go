package deck

import (
	"errors"
	"sync"
	"time"

	"holdem-server/internal/rng"
)

// Source produces the deck for a new hand
type Source interface {
	NewDeck(tableID string, start time.Time) (*Deck, error)
}

// SeededSource shuffles with a linear-congruential stream seeded from the table ID and start time
//
// NOT CRYPTOGRAPHICALLY SECURE. Anyone who knows the table ID and the hand start time can
// reproduce the deck. Use CryptoSource for real games.
type SeededSource struct{}

// NewDeck returns a deck shuffled from the table seed
func (SeededSource) NewDeck(tableID string, start time.Time) (*Deck, error) {
	d := New()
	d.Shuffle(rng.NewLCGForTable(tableID, start))

	return d, nil
}

// CryptoSource shuffles with crypto/rand
type CryptoSource struct{}

// NewDeck returns a deck shuffled with a cryptographically secure generator
func (CryptoSource) NewDeck(string, time.Time) (*Deck, error) {
	d := New()
	d.Shuffle(rng.Crypto{})

	return d, nil
}

// FixedSource deals pre-arranged sequences, one per hand, for deterministic replays and tests
type FixedSource struct {
	mu    sync.Mutex
	decks []Hand
}

// NewFixedSource returns a source that will deal the decks in order
func NewFixedSource(decks ...Hand) *FixedSource {
	return &FixedSource{decks: decks}
}

// Push appends another sequence
func (f *FixedSource) Push(cards Hand) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.decks = append(f.decks, cards)
}

// NewDeck returns the next pre-arranged deck
func (f *FixedSource) NewDeck(string, time.Time) (*Deck, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.decks) == 0 {
		return nil, errors.New("no fixed decks remaining")
	}

	cards := f.decks[0]
	f.decks = f.decks[1:]

	return NewFromCards(cards)
}
