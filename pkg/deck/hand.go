package deck

import "strings"

// Hand represents a collection of cards
type Hand []Card

// AddCard adds a card to the hand
func (h *Hand) AddCard(card Card) {
	*h = append(*h, card)
}

// HasCard returns true if the hand contains the specified card
func (h Hand) HasCard(card Card) bool {
	for _, c := range h {
		if c == card {
			return true
		}
	}

	return false
}

func (h Hand) String() string {
	c := make([]string, len(h))
	for i, card := range h {
		c[i] = CardToString(card)
	}

	return strings.Join(c, ",")
}

// Clone returns a clone of the hand
func (h Hand) Clone() Hand {
	if h == nil {
		return nil
	}

	h2 := make(Hand, len(h))
	copy(h2, h)

	return h2
}

// FaceDown returns a hand of the same size with every card hidden
func (h Hand) FaceDown() Hand {
	if h == nil {
		return nil
	}

	return make(Hand, len(h))
}
