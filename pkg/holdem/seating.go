package holdem

// JoinSeat seats the occupant with a buy-in
// A buy-in of zero uses the table's starting stack. Joining during a hand makes the
// seat a spectator until the next hand.
func (t *Table) JoinSeat(seatID int, occupantID string, buyIn int) (*Seat, error) {
	if occupantID == "" {
		return nil, ErrSeatUnavailable
	}

	if t.SeatByOccupant(occupantID) != nil {
		return nil, ErrAlreadySeated
	}

	seat := t.Seat(seatID)
	if seat == nil || !seat.IsEmpty() {
		return nil, ErrSeatUnavailable
	}

	if buyIn < 0 {
		return nil, ErrInvalidAmount
	}

	if buyIn == 0 {
		buyIn = t.Config.StartingStack
	}

	seat.OccupantID = occupantID
	seat.Stack = buyIn
	seat.Connected = true
	seat.Leaving = false
	if t.Hand != nil {
		seat.Status = SeatSpectator
	} else {
		seat.Status = SeatActive
	}

	return seat, nil
}

// SetConnected records that the occupant's connection closed or came back
// A disconnected seat is never folded; it stays in the hand and remains on the clock.
func (t *Table) SetConnected(occupantID string, connected bool) (*Seat, error) {
	seat := t.SeatByOccupant(occupantID)
	if seat == nil {
		return nil, ErrNotSeated
	}

	seat.Connected = connected
	if !connected {
		if seat.Status == SeatActive || seat.Status == SeatSpectator {
			seat.Status = SeatDisconnected
		}

		return seat, nil
	}

	if seat.Status != SeatDisconnected {
		return seat, nil
	}

	switch {
	case t.Hand != nil && t.Hand.IsDealtIn(seat.SeatID):
		seat.Status = SeatActive
	case t.Hand != nil:
		seat.Status = SeatSpectator
	default:
		resetStatus(seat)
	}

	return seat, nil
}

// OccupiedSeats returns the number of seats with an occupant
func (t *Table) OccupiedSeats() int {
	n := 0
	for _, s := range t.Seats {
		if !s.IsEmpty() {
			n++
		}
	}

	return n
}

// CanStartHand returns true if enough seats could be dealt into a new hand
func (t *Table) CanStartHand() bool {
	return t.Hand == nil && len(eligibleSeats(t)) >= 2
}
