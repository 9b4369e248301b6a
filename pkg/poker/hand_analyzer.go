package poker

import (
	"sort"

	"holdem-server/pkg/deck"
)

// handSize is the number of cards that make a poker hand
const handSize = 5

type rankGroup struct {
	rank  int
	count int
}

// sortGroups orders by count, then by rank, both descending
type sortGroups []rankGroup

func (s sortGroups) Len() int {
	return len(s)
}

func (s sortGroups) Less(i, j int) bool {
	if s[i].count != s[j].count {
		return s[i].count > s[j].count
	}

	return s[i].rank > s[j].rank
}

func (s sortGroups) Swap(i, j int) {
	s[i], s[j] = s[j], s[i]
}

// analyzeFive ranks exactly five cards
func analyzeFive(cards []deck.Card) Rank {
	ranks := make([]int, len(cards))
	for i, c := range cards {
		ranks[i] = c.Rank
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ranks)))

	isFlush := true
	for _, c := range cards[1:] {
		if c.Suit != cards[0].Suit {
			isFlush = false
			break
		}
	}

	straightHigh, isStraight := straightHighCard(ranks)

	counts := make(map[int]int)
	for _, r := range ranks {
		counts[r]++
	}

	groups := make([]rankGroup, 0, len(counts))
	for r, n := range counts {
		groups = append(groups, rankGroup{rank: r, count: n})
	}
	sort.Sort(sortGroups(groups))

	// grouped is the ranks ordered by group size, which is the tiebreaker order for every
	// category built from pairs, trips, or quads
	grouped := make([]int, len(groups))
	for i, g := range groups {
		grouped[i] = g.rank
	}

	switch {
	case isStraight && isFlush:
		return Rank{Category: StraightFlush, Tiebreakers: []int{straightHigh}}
	case groups[0].count == 4:
		return Rank{Category: FourOfAKind, Tiebreakers: grouped}
	case groups[0].count == 3 && groups[1].count == 2:
		return Rank{Category: FullHouse, Tiebreakers: grouped}
	case isFlush:
		return Rank{Category: Flush, Tiebreakers: ranks}
	case isStraight:
		return Rank{Category: Straight, Tiebreakers: []int{straightHigh}}
	case groups[0].count == 3:
		return Rank{Category: ThreeOfAKind, Tiebreakers: grouped}
	case groups[0].count == 2 && groups[1].count == 2:
		return Rank{Category: TwoPair, Tiebreakers: grouped}
	case groups[0].count == 2:
		return Rank{Category: OnePair, Tiebreakers: grouped}
	}

	return Rank{Category: HighCard, Tiebreakers: ranks}
}

// straightHighCard expects ranks sorted descending
// The wheel (A-2-3-4-5) is a five-high straight
func straightHighCard(ranks []int) (int, bool) {
	for i := 1; i < len(ranks); i++ {
		if ranks[i] == ranks[i-1] {
			return 0, false
		}
	}

	if ranks[0]-ranks[len(ranks)-1] == handSize-1 {
		return ranks[0], true
	}

	if ranks[0] == deck.Ace && ranks[1] == 5 && ranks[len(ranks)-1] == 2 {
		return 5, true
	}

	return 0, false
}
