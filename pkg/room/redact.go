package room

import (
	"holdem-server/pkg/holdem"
)

// Redact returns the view of the table the occupant is entitled to
// The occupant keeps their own hole cards; every other seat's cards and the undealt deck
// are face-down. An empty occupant ID gets the spectator view.
func Redact(t *holdem.Table, occupantID string) *holdem.Table {
	if t == nil {
		return nil
	}

	view := t.Clone()
	if view.Hand == nil {
		return view
	}

	viewer := holdem.NoSeat
	if occupantID != "" {
		if seat := view.SeatByOccupant(occupantID); seat != nil {
			viewer = seat.SeatID
		}
	}

	view.Hand.Deck = view.Hand.Deck.FaceDown()
	for seatID, cards := range view.Hand.HoleCards {
		if seatID != viewer {
			view.Hand.HoleCards[seatID] = cards.FaceDown()
		}
	}

	return view
}

// RedactForAudit returns the table with every hole card and the undealt deck blanked
func RedactForAudit(t *holdem.Table) *holdem.Table {
	return Redact(t, "")
}

// redactEvent returns a copy of the event that is safe to store or broadcast
func redactEvent(ev holdem.Event, version int64) holdem.Event {
	ev.Table = RedactForAudit(ev.Table)
	if ev.Table != nil {
		ev.Table.Version = version
	}

	return ev
}
