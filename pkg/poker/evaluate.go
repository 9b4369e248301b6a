package poker

import (
	"errors"
	"fmt"

	"holdem-server/pkg/deck"
)

// ErrNoPlayers is returned when there is nobody to evaluate
var ErrNoPlayers = errors.New("no players to evaluate")

// Result is the best five-card hand that could be made
type Result struct {
	Rank  Rank      `json:"rank"`
	Cards deck.Hand `json:"cards"`
}

// Evaluate finds the best five-card hand from 5 to 7 cards
// Every five-card combination is ranked, which is 21 combinations for seven cards.
func Evaluate(cards deck.Hand) (Result, error) {
	n := len(cards)
	if n < handSize || n > 7 {
		return Result{}, fmt.Errorf("expected 5 to 7 cards, got %d", n)
	}

	seen := make(map[deck.Card]bool, n)
	for _, c := range cards {
		if c.IsZero() {
			return Result{}, errors.New("cannot evaluate a face-down card")
		}

		if seen[c] {
			return Result{}, fmt.Errorf("duplicate card: %s", c)
		}

		seen[c] = true
	}

	var best Result
	found := false
	combo := make([]deck.Card, handSize)

	var walk func(start, depth int)
	walk = func(start, depth int) {
		if depth == handSize {
			rank := analyzeFive(combo)
			if !found || rank.Compare(best.Rank) > 0 {
				best = Result{Rank: rank, Cards: deck.Hand(combo).Clone()}
				found = true
			}

			return
		}

		for i := start; i <= n-(handSize-depth); i++ {
			combo[depth] = cards[i]
			walk(i+1, depth+1)
		}
	}
	walk(0, 0)

	return best, nil
}

// Player is a seat holding hole cards at showdown
type Player struct {
	SeatID    int
	HoleCards deck.Hand
}

// EvaluateWinners returns the seats whose best hand ties for the best
// The seats are returned in the order the players were provided.
func EvaluateWinners(players []Player, community deck.Hand) ([]int, error) {
	if len(players) == 0 {
		return nil, ErrNoPlayers
	}

	ranks := make([]Rank, len(players))
	var best Rank
	for i, p := range players {
		cards := make(deck.Hand, 0, len(p.HoleCards)+len(community))
		cards = append(cards, p.HoleCards...)
		cards = append(cards, community...)

		res, err := Evaluate(cards)
		if err != nil {
			return nil, fmt.Errorf("seat %d: %w", p.SeatID, err)
		}

		ranks[i] = res.Rank
		if i == 0 || res.Rank.Compare(best) > 0 {
			best = res.Rank
		}
	}

	winners := make([]int, 0, 1)
	for i, p := range players {
		if ranks[i].Compare(best) == 0 {
			winners = append(winners, p.SeatID)
		}
	}

	return winners, nil
}
