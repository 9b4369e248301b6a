package holdem

import (
	"sort"
)

// CallAmount returns the chips the seat owes to match the current bet
func CallAmount(h *Hand, seatID int) int {
	owed := h.CurrentBet - h.RoundContributions[seatID]
	if owed < 0 {
		return 0
	}

	return owed
}

// LegalActions enumerates what the seat may do right now
// An empty list is returned if the seat cannot act.
func LegalActions(h *Hand, seat *Seat) []LegalAction {
	if h == nil || seat == nil || !h.Street.IsBetting() || !seat.CanAct() || !h.IsDealtIn(seat.SeatID) {
		return nil
	}

	actions := []LegalAction{{Type: ActionFold}}

	toCall := CallAmount(h, seat.SeatID)
	if toCall == 0 {
		actions = append(actions, LegalAction{Type: ActionCheck})
	}

	if h.CurrentBet == 0 && seat.Stack > 0 {
		// a stack shorter than the big blind can still bet it all
		actions = append(actions, LegalAction{
			Type: ActionBet,
			Min:  minInt(h.BigBlind, seat.Stack),
			Max:  seat.Stack,
		})
	}

	if toCall > 0 {
		actions = append(actions, LegalAction{
			Type: ActionCall,
			Min:  0,
			Max:  minInt(toCall, seat.Stack),
		})
	}

	if h.CurrentBet > 0 && seat.Stack > toCall && !h.RaiseLockedSeats[seat.SeatID] {
		allIn := seat.Stack + h.RoundContributions[seat.SeatID]
		actions = append(actions, LegalAction{
			Type: ActionRaise,
			Min:  minInt(h.CurrentBet+h.MinRaise, allIn),
			Max:  allIn,
		})
	}

	return actions
}

// ValidateAction checks the action against the seat's legal actions
// It does not check whose turn it is.
func ValidateAction(h *Hand, seat *Seat, a Action) error {
	if h == nil || !h.Street.IsBetting() {
		return ErrHandComplete
	}

	if seat == nil {
		return ErrSeatMissing
	}

	if !seat.CanAct() || !h.IsDealtIn(seat.SeatID) {
		return ErrSeatInactive
	}

	if a == nil {
		return ErrIllegalAction
	}

	var legal *LegalAction
	for _, la := range LegalActions(h, seat) {
		if la.Type == a.Type() {
			la := la
			legal = &la
			break
		}
	}

	if legal == nil {
		return ErrIllegalAction
	}

	amount, ok := actionAmount(a)
	if !ok {
		return nil
	}

	if amount <= 0 {
		return ErrInvalidAmount
	}

	if amount < legal.Min {
		return ErrAmountTooSmall
	}

	if amount > legal.Max {
		return ErrAmountTooLarge
	}

	return nil
}

// CalculatePots splits contributions into a main pot and side pots
// Each distinct contribution level creates a pot. A pot is eligible to the seats that
// contributed at least its level and have not folded.
func CalculatePots(totalContributions map[int]int, folded map[int]bool) Pots {
	levels := make([]int, 0, len(totalContributions))
	seen := make(map[int]bool)
	for _, c := range totalContributions {
		if c > 0 && !seen[c] {
			seen[c] = true
			levels = append(levels, c)
		}
	}
	sort.Ints(levels)

	seats := make([]int, 0, len(totalContributions))
	for seatID := range totalContributions {
		seats = append(seats, seatID)
	}
	sort.Ints(seats)

	pots := make(Pots, 0, len(levels))
	previous := 0
	for _, level := range levels {
		contributors := 0
		eligible := make([]int, 0, len(seats))
		for _, seatID := range seats {
			if totalContributions[seatID] < level {
				continue
			}

			contributors++
			if !folded[seatID] {
				eligible = append(eligible, seatID)
			}
		}

		pots = append(pots, Pot{
			Amount:          (level - previous) * contributors,
			EligibleSeatIDs: eligible,
		})
		previous = level
	}

	return pots
}

// mergeDeadPots folds pots that nobody can win into the next lower pot
// A dead main pot moves up into the next pot instead.
func mergeDeadPots(pots Pots) Pots {
	merged := make(Pots, 0, len(pots))
	carry := 0
	for _, p := range pots {
		if len(p.EligibleSeatIDs) == 0 {
			if len(merged) > 0 {
				merged[len(merged)-1].Amount += p.Amount
			} else {
				carry += p.Amount
			}

			continue
		}

		p.Amount += carry
		carry = 0
		merged = append(merged, Pot{Amount: p.Amount, EligibleSeatIDs: cloneInts(p.EligibleSeatIDs)})
	}

	return merged
}

// TimeoutAction is the action submitted for a seat whose turn expired
func TimeoutAction(h *Hand, seatID int) Action {
	if CallAmount(h, seatID) == 0 {
		return Check{}
	}

	return Fold{}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}

	return b
}
