package deck

import (
	"crypto/sha1" // nolint:gosec
	"encoding/hex"
	"errors"
	"fmt"

	"holdem-server/internal/rng"
)

// ErrEndOfDeck is an error when Draw() is attempted and there are no more cards
var ErrEndOfDeck = errors.New("end of deck reached")

// Deck represents a playing deck
// Dealing is destructive: a drawn card is removed from the front of Cards.
type Deck struct {
	Cards Hand `json:"cards"`
}

// New returns a new deck of cards.
// Important! this deck is unshuffled. You must call the Shuffle() method to shuffle the cards
func New() *Deck {
	cards := make(Hand, 0, 52)
	for _, suit := range Suits {
		for rank := 2; rank <= Ace; rank++ {
			cards = append(cards, Card{Rank: rank, Suit: suit})
		}
	}

	return &Deck{Cards: cards}
}

// NewFromCards returns a deck that deals the supplied cards in order
// The sequence may be shorter than 52 cards, but it cannot contain duplicates or face-down cards.
func NewFromCards(cards Hand) (*Deck, error) {
	seen := make(map[Card]bool, len(cards))
	for _, card := range cards {
		if card.IsZero() {
			return nil, errors.New("deck cannot contain a face-down card")
		}

		if seen[card] {
			return nil, fmt.Errorf("duplicate card in deck: %s", card)
		}

		seen[card] = true
	}

	return &Deck{Cards: cards.Clone()}, nil
}

// Shuffle will shuffle the remaining cards
// It iterates from the last index down to 1 and swaps with a random index in [0, i]
func (d *Deck) Shuffle(gen rng.Generator) {
	for j := len(d.Cards) - 1; j > 0; j-- {
		i := gen.Intn(j + 1)

		d.Cards[i], d.Cards[j] = d.Cards[j], d.Cards[i]
	}
}

// HashCode returns a SHA1 hash code of the deck.
func (d *Deck) HashCode() string {
	hash := sha1.New() // nolint:gosec
	for _, card := range d.Cards {
		_, _ = hash.Write([]byte(card.String()))
	}

	return hex.EncodeToString(hash.Sum(nil))
}

// Draw will draw the next card
// If there are no more cards, an ErrEndOfDeck is returned along with a face-down card.
func (d *Deck) Draw() (Card, error) {
	if len(d.Cards) == 0 {
		return Card{}, ErrEndOfDeck
	}

	card := d.Cards[0]
	d.Cards = d.Cards[1:]

	return card, nil
}

// DrawN draws n cards. Nothing is drawn if fewer than n cards remain
func (d *Deck) DrawN(n int) (Hand, error) {
	if !d.CanDraw(n) {
		return nil, ErrEndOfDeck
	}

	cards := d.Cards[:n].Clone()
	d.Cards = d.Cards[n:]

	return cards, nil
}

// CanDraw returns true if there are {want} cards left in the deck
func (d *Deck) CanDraw(want int) bool {
	return len(d.Cards) >= want
}

// CardsLeft returns the number of cards left in the deck
func (d *Deck) CardsLeft() int {
	return len(d.Cards)
}
