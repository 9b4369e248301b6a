package poker

import (
	"encoding/json"
	"fmt"
)

// Category is a poker hand category, i.e., full house
type Category int

// Constants for hand categories
// A royal flush is the Ace-high straight flush
const (
	HighCard Category = iota
	OnePair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

// String returns the string representation of a category
func (c Category) String() string {
	switch c {
	case HighCard:
		return "High card"
	case OnePair:
		return "Pair"
	case TwoPair:
		return "Two pair"
	case ThreeOfAKind:
		return "Three of a kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full house"
	case FourOfAKind:
		return "Four of a kind"
	case StraightFlush:
		return "Straight flush"
	default:
		panic(fmt.Sprintf("unknown category: %d", c))
	}
}

// MarshalJSON encodes JSON
func (c Category) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}{
		ID:   int(c),
		Name: c.String(),
	})
}

// UnmarshalJSON accepts the object form written by MarshalJSON
func (c *Category) UnmarshalJSON(b []byte) error {
	var v struct {
		ID int `json:"id"`
	}

	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	*c = Category(v.ID)
	return nil
}

// Rank is a comparable hand value: the category, then the tiebreakers lexicographically
type Rank struct {
	Category    Category `json:"category"`
	Tiebreakers []int    `json:"tiebreakers"`
}

// Compare returns 1 if r beats other, -1 if other beats r, and 0 for a tie
func (r Rank) Compare(other Rank) int {
	if r.Category != other.Category {
		if r.Category > other.Category {
			return 1
		}

		return -1
	}

	for i := 0; i < len(r.Tiebreakers) && i < len(other.Tiebreakers); i++ {
		if r.Tiebreakers[i] > other.Tiebreakers[i] {
			return 1
		} else if r.Tiebreakers[i] < other.Tiebreakers[i] {
			return -1
		}
	}

	switch {
	case len(r.Tiebreakers) > len(other.Tiebreakers):
		return 1
	case len(r.Tiebreakers) < len(other.Tiebreakers):
		return -1
	}

	return 0
}

// String describes the rank, i.e., "Straight flush" or "Royal flush"
func (r Rank) String() string {
	if r.Category == StraightFlush && len(r.Tiebreakers) > 0 && r.Tiebreakers[0] == 14 {
		return "Royal flush"
	}

	return r.Category.String()
}
