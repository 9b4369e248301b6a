package holdem

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"holdem-server/pkg/deck"
)

// EventType is the kind of hand event
type EventType string

// EventType constants
const (
	EventHandStarted EventType = "HandStarted"
	EventActionTaken EventType = "ActionTaken"
	EventShowdown    EventType = "Showdown"
	EventHandEnded   EventType = "HandEnded"
)

// Event is something that happened to a hand
// Table is a full, unredacted copy of the table when the event happened.
type Event struct {
	Type   EventType
	HandID string
	Action *ActionRecord
	Result *HandResult
	Table  *Table
}

// Engine applies the rules of No-Limit Hold'em to a table
// The engine holds no table state and must not be called concurrently for the same table.
type Engine struct {
	logger logrus.FieldLogger
	source deck.Source
	now    func() time.Time
	newID  func() string
}

// NewEngine returns a new engine
func NewEngine(logger logrus.FieldLogger, source deck.Source) *Engine {
	return &Engine{
		logger: logger,
		source: source,
		now:    time.Now,
		newID: func() string {
			return uuid.New().String()
		},
	}
}

// SetClock replaces the clock used for timestamps
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// StartHand deals a new hand
func (e *Engine) StartHand(t *Table) ([]Event, error) {
	if t.Hand != nil {
		return nil, ErrHandInProgress
	}

	eligible := eligibleSeats(t)
	if len(eligible) < 2 {
		return nil, ErrNotEnoughPlayers
	}

	button := eligible[0]
	if t.ButtonSeat != NoSeat {
		button = nextIn(eligible, t.ButtonSeat)
	}

	var sb, bb int
	if len(eligible) == 2 {
		sb = button
		bb = nextIn(eligible, button)
	} else {
		sb = nextIn(eligible, button)
		bb = nextIn(eligible, sb)
	}

	now := e.now()
	d, err := e.source.NewDeck(t.TableID, now)
	if err != nil {
		return nil, fmt.Errorf("could not build deck: %w", err)
	}

	order := clockwiseAfter(len(t.Seats), button, eligible)
	holeCards := make(map[int]deck.Hand, len(order))
	for i := 0; i < 2; i++ {
		for _, seatID := range order {
			card, err := d.Draw()
			if err != nil {
				return nil, fmt.Errorf("could not deal hole cards: %w", err)
			}

			holeCards[seatID] = append(holeCards[seatID], card)
		}
	}

	h := &Hand{
		HandID:             e.newID(),
		ButtonSeat:         button,
		SmallBlindSeat:     sb,
		BigBlindSeat:       bb,
		SmallBlind:         t.Config.SmallBlind,
		BigBlind:           t.Config.BigBlind,
		CommunityCards:     make(deck.Hand, 0, 5),
		Street:             Preflop,
		CurrentTurnSeat:    NoSeat,
		CurrentBet:         t.Config.BigBlind,
		MinRaise:           t.Config.BigBlind,
		RaiseLockedSeats:   make(map[int]bool),
		RoundContributions: make(map[int]int),
		TotalContributions: make(map[int]int),
		ActedSeats:         make(map[int]bool),
		HoleCards:          holeCards,
		DealtSeats:         order,
		StartingStacks:     make(map[int]int),
		StartedAt:          now,
	}

	dealt := make(map[int]bool, len(order))
	for _, seatID := range order {
		dealt[seatID] = true
	}

	for i := range t.Seats {
		s := &t.Seats[i]
		switch {
		case s.IsEmpty():
			continue
		case dealt[s.SeatID]:
			s.Status = SeatActive
			h.StartingStacks[s.SeatID] = s.Stack
			h.RoundContributions[s.SeatID] = 0
			h.TotalContributions[s.SeatID] = 0
		case s.Connected:
			s.Status = SeatSpectator
		default:
			s.Status = SeatDisconnected
		}
	}

	if ante := t.Config.Ante; ante > 0 {
		for _, seatID := range order {
			s := t.Seat(seatID)
			paid := minInt(ante, s.Stack)
			s.Stack -= paid
			h.TotalContributions[seatID] += paid
			if s.Stack == 0 {
				s.Status = SeatAllIn
			}
		}
	}

	postBlind(h, t.Seat(sb), t.Config.SmallBlind)
	postBlind(h, t.Seat(bb), t.Config.BigBlind)

	h.Deck = d.Cards
	h.Pots = CalculatePots(h.TotalContributions, nil)

	t.Hand = h
	t.Status = TableInHand
	t.ButtonSeat = button
	t.HandCount++

	e.handLogger(t).WithFields(logrus.Fields{
		"button":  button,
		"players": len(order),
	}).Info("hand started")

	settle, err := e.progress(t, bb, false)
	if err != nil {
		return nil, err
	}

	events := []Event{e.event(EventHandStarted, t, nil, nil)}
	if settle {
		return e.settle(t, events)
	}

	return events, nil
}

// ApplyAction applies an action for the seat whose turn it is
// A rejected action leaves the table untouched.
func (e *Engine) ApplyAction(t *Table, seatID int, a Action) ([]Event, error) {
	return e.apply(t, seatID, a, false)
}

// ApplyTimeout acts for a seat whose turn expired
// Returns false without changing anything if the turn already moved on.
func (e *Engine) ApplyTimeout(t *Table, handID string, seatID, turnSeq int) ([]Event, bool, error) {
	h := t.Hand
	if h == nil || h.HandID != handID || !h.Street.IsBetting() || h.CurrentTurnSeat != seatID || h.TurnSeq != turnSeq {
		return nil, false, nil
	}

	events, err := e.apply(t, seatID, TimeoutAction(h, seatID), true)
	if err != nil {
		return nil, false, err
	}

	return events, true, nil
}

func (e *Engine) apply(t *Table, seatID int, a Action, auto bool) ([]Event, error) {
	h := t.Hand
	if h == nil || !h.Street.IsBetting() {
		return nil, ErrHandComplete
	}

	seat := t.Seat(seatID)
	if seat == nil {
		return nil, ErrSeatMissing
	}

	if seatID != h.CurrentTurnSeat {
		return nil, ErrNotYourTurn
	}

	if err := ValidateAction(h, seat, a); err != nil {
		return nil, err
	}

	record := applyToHand(t, seat, a)
	record.Auto = auto

	e.handLogger(t).WithFields(logrus.Fields{
		"seatId": seatID,
		"auto":   auto,
	}).Debugf("seat %s", record.LogMessage())

	return e.afterAction(t, seatID, record, false)
}

// LeaveSeat removes the occupant from the table
// Between hands, or when the seat was not dealt in, the seat is vacated at once and its
// stack is returned. Otherwise the seat folds immediately, even out of turn, and is
// vacated when the hand ends.
func (e *Engine) LeaveSeat(t *Table, occupantID string) (int, []Event, error) {
	seat := t.SeatByOccupant(occupantID)
	if seat == nil {
		return 0, nil, ErrNotSeated
	}

	h := t.Hand
	if h == nil || !h.IsDealtIn(seat.SeatID) {
		return vacate(seat), nil, nil
	}

	seat.Leaving = true
	if !seat.CanAct() || !h.Street.IsBetting() {
		return 0, nil, nil
	}

	outOfTurn := h.CurrentTurnSeat != seat.SeatID
	record := applyToHand(t, seat, Fold{})
	events, err := e.afterAction(t, seat.SeatID, record, outOfTurn)
	if err != nil {
		return 0, nil, err
	}

	return 0, events, nil
}

func (e *Engine) afterAction(t *Table, seatID int, record ActionRecord, outOfTurn bool) ([]Event, error) {
	settle, err := e.progress(t, seatID, outOfTurn)
	if err != nil {
		return nil, err
	}

	events := []Event{e.event(EventActionTaken, t, &record, nil)}
	if settle {
		return e.settle(t, events)
	}

	return events, nil
}

// applyToHand moves chips for a validated action
func applyToHand(t *Table, seat *Seat, a Action) ActionRecord {
	h := t.Hand
	record := ActionRecord{SeatID: seat.SeatID, Type: a.Type()}

	switch v := a.(type) {
	case Fold:
		seat.Status = SeatFolded
	case Check:
	case Call:
		paid := minInt(CallAmount(h, seat.SeatID), seat.Stack)
		commit(h, seat, paid)
		record.Amount = paid
	case Bet:
		commit(h, seat, v.Amount)
		h.CurrentBet = h.RoundContributions[seat.SeatID]
		h.MinRaise = v.Amount
		if h.MinRaise < h.BigBlind {
			h.MinRaise = h.BigBlind
		}
		h.RaiseCapped = false
		h.RaiseLockedSeats = make(map[int]bool)
		h.ActedSeats = make(map[int]bool)
		record.Amount = v.Amount
	case Raise:
		increment := v.To - h.CurrentBet
		commit(h, seat, v.To-h.RoundContributions[seat.SeatID])
		if increment >= h.MinRaise {
			h.MinRaise = increment
			h.RaiseCapped = false
			h.RaiseLockedSeats = make(map[int]bool)
		} else {
			// all-in for less than a full raise; whoever already acted may only call or fold
			h.RaiseCapped = true
			for id, acted := range h.ActedSeats {
				if acted {
					h.RaiseLockedSeats[id] = true
				}
			}
		}
		h.CurrentBet = v.To
		h.ActedSeats = make(map[int]bool)
		record.Amount = v.To
	}

	h.ActedSeats[seat.SeatID] = true
	if seat.Status != SeatFolded && seat.Stack == 0 {
		seat.Status = SeatAllIn
		record.AllIn = true
	}

	h.Pots = CalculatePots(h.TotalContributions, foldedSeats(t))
	h.LastAction = &record
	return record
}

func commit(h *Hand, seat *Seat, chips int) {
	seat.Stack -= chips
	h.RoundContributions[seat.SeatID] += chips
	h.TotalContributions[seat.SeatID] += chips
}

func postBlind(h *Hand, seat *Seat, blind int) {
	paid := minInt(blind, seat.Stack)
	commit(h, seat, paid)
	if seat.Stack == 0 {
		seat.Status = SeatAllIn
	}
}

// progress moves the hand along after the betting state changed
// Returns true once the hand is ready to be settled.
func (e *Engine) progress(t *Table, from int, outOfTurn bool) (bool, error) {
	h := t.Hand

	if len(contenders(t)) == 1 {
		return true, nil
	}

	if !roundComplete(t) {
		if outOfTurn && needsToAct(t, h.CurrentTurnSeat) {
			return false, nil
		}

		h.setTurn(nextToAct(t, from))
		return false, nil
	}

	if len(actors(t)) < 2 {
		// nobody is left to bet against, so deal out the board
		for h.Street < River {
			if err := dealStreet(h); err != nil {
				return false, err
			}
		}

		h.setTurn(NoSeat)
		return true, nil
	}

	if h.Street == River {
		h.setTurn(NoSeat)
		return true, nil
	}

	if err := dealStreet(h); err != nil {
		return false, err
	}

	h.CurrentBet = 0
	h.MinRaise = h.BigBlind
	h.RaiseCapped = false
	h.RaiseLockedSeats = make(map[int]bool)
	h.ActedSeats = make(map[int]bool)
	for id := range h.RoundContributions {
		h.RoundContributions[id] = 0
	}

	h.setTurn(nextToAct(t, h.ButtonSeat))

	e.handLogger(t).WithField("board", h.CommunityCards.String()).Debugf("dealt the %s", h.Street)
	return false, nil
}

// dealStreet deals the community cards for the next street
func dealStreet(h *Hand) error {
	n := 1
	if h.Street == Preflop {
		n = 3
	}

	d := &deck.Deck{Cards: h.Deck}
	cards, err := d.DrawN(n)
	if err != nil {
		return fmt.Errorf("could not deal the %s: %w", h.Street+1, err)
	}

	h.Deck = d.Cards
	h.CommunityCards = append(h.CommunityCards, cards...)
	h.Street++
	return nil
}

func (h *Hand) setTurn(seatID int) {
	h.CurrentTurnSeat = seatID
	h.TurnDeadline = nil
	h.TurnSeq++
}

// roundComplete returns true if every seat that can act has acted and matched the bet
func roundComplete(t *Table) bool {
	h := t.Hand
	seats := actors(t)

	switch len(seats) {
	case 0:
		return true
	case 1:
		return h.RoundContributions[seats[0]] >= h.CurrentBet
	}

	for _, seatID := range seats {
		if needsToAct(t, seatID) {
			return false
		}
	}

	return true
}

func needsToAct(t *Table, seatID int) bool {
	h := t.Hand
	seat := t.Seat(seatID)
	if seat == nil || !seat.CanAct() || !h.IsDealtIn(seatID) {
		return false
	}

	return !h.ActedSeats[seatID] || h.RoundContributions[seatID] < h.CurrentBet
}

// nextToAct returns the first seat clockwise after from that owes a decision
func nextToAct(t *Table, from int) int {
	n := len(t.Seats)
	for i := 1; i <= n; i++ {
		seatID := (from + i) % n
		if needsToAct(t, seatID) {
			return seatID
		}
	}

	return NoSeat
}

// actors returns the dealt seats that can still make decisions
func actors(t *Table) []int {
	h := t.Hand
	seats := make([]int, 0, len(h.DealtSeats))
	for _, seatID := range h.DealtSeats {
		if t.Seat(seatID).CanAct() {
			seats = append(seats, seatID)
		}
	}

	return seats
}

// contenders returns the dealt seats that have not folded, clockwise from the button
func contenders(t *Table) []int {
	h := t.Hand
	seats := make([]int, 0, len(h.DealtSeats))
	for _, seatID := range h.DealtSeats {
		if t.Seat(seatID).Status != SeatFolded {
			seats = append(seats, seatID)
		}
	}

	return seats
}

func foldedSeats(t *Table) map[int]bool {
	h := t.Hand
	folded := make(map[int]bool)
	for _, seatID := range h.DealtSeats {
		if t.Seat(seatID).Status == SeatFolded {
			folded[seatID] = true
		}
	}

	return folded
}

// eligibleSeats returns the seats that can be dealt into a new hand in seat order
func eligibleSeats(t *Table) []int {
	seats := make([]int, 0, len(t.Seats))
	for _, s := range t.Seats {
		if !s.IsEmpty() && s.Connected && s.Stack > 0 && !s.Leaving {
			seats = append(seats, s.SeatID)
		}
	}

	return seats
}

// nextIn returns the first seat in sorted seats after the seat, wrapping around
func nextIn(seats []int, after int) int {
	for _, seatID := range seats {
		if seatID > after {
			return seatID
		}
	}

	return seats[0]
}

// clockwiseAfter orders the seats starting with the first one after start
func clockwiseAfter(n, start int, seats []int) []int {
	ordered := make([]int, 0, len(seats))
	for i := 1; i <= n; i++ {
		seatID := (start + i) % n
		for _, s := range seats {
			if s == seatID {
				ordered = append(ordered, s)
				break
			}
		}
	}

	return ordered
}

func vacate(seat *Seat) int {
	cashOut := seat.Stack
	*seat = Seat{SeatID: seat.SeatID, Status: SeatEmpty}
	return cashOut
}

func (e *Engine) event(typ EventType, t *Table, action *ActionRecord, result *HandResult) Event {
	handID := ""
	if t.Hand != nil {
		handID = t.Hand.HandID
	} else if result != nil {
		handID = result.HandID
	}

	var a *ActionRecord
	if action != nil {
		c := *action
		a = &c
	}

	return Event{
		Type:   typ,
		HandID: handID,
		Action: a,
		Result: result.Clone(),
		Table:  t.Clone(),
	}
}

func (e *Engine) handLogger(t *Table) logrus.FieldLogger {
	l := e.logger.WithField("tableId", t.TableID)
	if t.Hand != nil {
		l = l.WithField("handId", t.Hand.HandID)
	}

	return l
}
