package holdem

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"holdem-server/pkg/deck"
	"holdem-server/pkg/poker"
)

// settle awards the pots and ends the hand
func (e *Engine) settle(t *Table, events []Event) ([]Event, error) {
	h := t.Hand
	remaining := contenders(t)

	var result *HandResult
	if len(remaining) == 1 {
		result = awardUncontested(t, remaining[0])
	} else {
		var err error
		result, err = showdown(t, remaining)
		if err != nil {
			return nil, err
		}

		events = append(events, e.event(EventShowdown, t, nil, result))
	}

	result.EndedAt = e.now()

	e.handLogger(t).WithFields(logrus.Fields{
		"winners":  result.Winners,
		"showdown": result.Showdown,
	}).Info("hand ended")

	h.Street = Ended
	h.Winners = cloneInts(result.Winners)
	h.setTurn(NoSeat)

	result.Departures = make(map[int]int)
	for i := range t.Seats {
		s := &t.Seats[i]
		if s.IsEmpty() {
			continue
		}

		if s.Leaving {
			result.Departures[s.SeatID] = vacate(s)
			continue
		}

		resetStatus(s)
	}

	if len(result.Departures) == 0 {
		result.Departures = nil
	}

	t.Hand = nil
	t.Status = TableLobby
	t.LastHand = result

	return append(events, e.event(EventHandEnded, t, nil, result)), nil
}

// awardUncontested gives every pot to the last seat standing
// No cards are shown.
func awardUncontested(t *Table, winner int) *HandResult {
	h := t.Hand
	total := h.Pots.Total()
	t.Seat(winner).Stack += total
	h.Pots = nil

	return &HandResult{
		HandID:         h.HandID,
		Winners:        []int{winner},
		Payouts:        map[int]int{winner: total},
		Pots:           []PotResult{{Amount: total, Winners: []int{winner}}},
		CommunityCards: h.CommunityCards.Clone(),
	}
}

// showdown evaluates the remaining hands and awards each pot
// Ties split a pot evenly; leftover chips go one at a time to the winners clockwise from the button.
func showdown(t *Table, remaining []int) (*HandResult, error) {
	h := t.Hand
	h.Street = Showdown

	result := &HandResult{
		HandID:         h.HandID,
		Payouts:        make(map[int]int),
		CommunityCards: h.CommunityCards.Clone(),
		Showdown:       true,
		ShownCards:     make(map[int]deck.Hand),
		HandNames:      make(map[int]string),
	}

	for _, seatID := range remaining {
		result.ShownCards[seatID] = h.HoleCards[seatID].Clone()

		cards := append(h.HoleCards[seatID].Clone(), h.CommunityCards...)
		res, err := poker.Evaluate(cards)
		if err != nil {
			return nil, fmt.Errorf("could not evaluate seat %d: %w", seatID, err)
		}

		result.HandNames[seatID] = res.Rank.String()
	}

	won := make(map[int]bool)
	for _, pot := range mergeDeadPots(h.Pots) {
		players := make([]poker.Player, 0, len(pot.EligibleSeatIDs))
		for _, seatID := range clockwiseAfter(len(t.Seats), h.ButtonSeat, pot.EligibleSeatIDs) {
			players = append(players, poker.Player{SeatID: seatID, HoleCards: h.HoleCards[seatID]})
		}

		winners, err := poker.EvaluateWinners(players, h.CommunityCards)
		if err != nil {
			return nil, fmt.Errorf("could not evaluate pot: %w", err)
		}

		for seatID, chips := range splitPot(pot.Amount, winners) {
			t.Seat(seatID).Stack += chips
			result.Payouts[seatID] += chips
		}

		for _, seatID := range winners {
			won[seatID] = true
		}

		result.Pots = append(result.Pots, PotResult{Amount: pot.Amount, Winners: winners})
	}

	h.Pots = nil
	result.Winners = clockwiseAfter(len(t.Seats), h.ButtonSeat, sortedKeys(won))
	return result, nil
}

// splitPot divides the amount evenly between the winners
// The remainder is handed out a chip at a time in winner order.
func splitPot(amount int, winners []int) map[int]int {
	shares := make(map[int]int, len(winners))
	if len(winners) == 0 {
		return shares
	}

	each := amount / len(winners)
	remainder := amount % len(winners)
	for i, seatID := range winners {
		shares[seatID] = each
		if i < remainder {
			shares[seatID]++
		}
	}

	return shares
}

// resetStatus returns an occupied seat to its between-hands status
func resetStatus(s *Seat) {
	switch {
	case !s.Connected:
		s.Status = SeatDisconnected
	case s.Stack > 0:
		s.Status = SeatActive
	default:
		s.Status = SeatSpectator
	}
}
