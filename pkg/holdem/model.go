package holdem

import (
	"errors"
	"sort"
	"time"

	"holdem-server/pkg/deck"
)

// NoSeat is used when a seat reference is unset, i.e., nobody is on the clock
const NoSeat = -1

// Config is the configuration of a table
type Config struct {
	SmallBlind    int `json:"smallBlind" yaml:"smallBlind"`
	BigBlind      int `json:"bigBlind" yaml:"bigBlind"`
	Ante          int `json:"ante,omitempty" yaml:"ante"`
	MaxPlayers    int `json:"maxPlayers" yaml:"maxPlayers"`
	StartingStack int `json:"startingStack" yaml:"startingStack"`
}

// DefaultConfig returns a 1/2 no-limit table for nine players
func DefaultConfig() Config {
	return Config{
		SmallBlind:    1,
		BigBlind:      2,
		Ante:          0,
		MaxPlayers:    9,
		StartingStack: 200,
	}
}

// Validate ensures the configuration can be played
func (c Config) Validate() error {
	if c.SmallBlind <= 0 {
		return errors.New("small blind must be > 0")
	}

	if c.BigBlind < c.SmallBlind {
		return errors.New("big blind must be >= the small blind")
	}

	if c.Ante < 0 {
		return errors.New("ante must be >= 0")
	}

	if c.MaxPlayers < 2 || c.MaxPlayers > 10 {
		return errors.New("max players must be between 2 and 10")
	}

	if c.StartingStack < c.BigBlind {
		return errors.New("starting stack must be at least the big blind")
	}

	return nil
}

// Seat is a position at the table
// OccupantID and Stack persist across hands.
type Seat struct {
	SeatID     int        `json:"seatId"`
	OccupantID string     `json:"occupantId,omitempty"`
	Stack      int        `json:"stack"`
	Status     SeatStatus `json:"status"`
	Connected  bool       `json:"connected"`

	// Leaving is set when the occupant left during a hand; the seat is vacated when the hand ends
	Leaving bool `json:"leaving,omitempty"`
}

// IsEmpty returns true if nobody occupies the seat
func (s *Seat) IsEmpty() bool {
	return s.OccupantID == ""
}

// CanAct returns true if the seat still makes decisions in the current hand
// A disconnected seat keeps its turn so the turn timer can act for it.
func (s *Seat) CanAct() bool {
	return s.Status == SeatActive || s.Status == SeatDisconnected
}

// Pot is a pool of chips and the seats that may win it
type Pot struct {
	Amount          int   `json:"amount"`
	EligibleSeatIDs []int `json:"eligibleSeatIds"`
}

// IsEligible returns true if the seat can win the pot
func (p Pot) IsEligible(seatID int) bool {
	for _, id := range p.EligibleSeatIDs {
		if id == seatID {
			return true
		}
	}

	return false
}

// Pots is an ordered list of pots, the main pot first
type Pots []Pot

// Total returns the combined total of all pots
func (p Pots) Total() int {
	total := 0
	for _, pot := range p {
		total += pot.Amount
	}

	return total
}

// ActionRecord is an action that was applied to a hand
type ActionRecord struct {
	SeatID int        `json:"seatId"`
	Type   ActionType `json:"type"`
	// Amount is the chips moved for a call or bet, or the new total for a raise
	Amount int  `json:"amount,omitempty"`
	AllIn  bool `json:"allIn,omitempty"`
	// Auto is true if the turn timer submitted the action
	Auto bool `json:"auto,omitempty"`
}

// Hand is the record of a single deal
type Hand struct {
	HandID         string `json:"handId"`
	ButtonSeat     int    `json:"buttonSeat"`
	SmallBlindSeat int    `json:"smallBlindSeat"`
	BigBlindSeat   int    `json:"bigBlindSeat"`
	SmallBlind     int    `json:"smallBlind"`
	BigBlind       int    `json:"bigBlind"`

	CommunityCards deck.Hand `json:"communityCards"`
	Street         Street    `json:"currentStreet"`

	CurrentTurnSeat int `json:"currentTurnSeat"`
	// TurnSeq increments every time the turn is handed out
	TurnSeq      int        `json:"turnSeq"`
	TurnDeadline *time.Time `json:"turnDeadline,omitempty"`

	CurrentBet  int  `json:"currentBet"`
	MinRaise    int  `json:"minRaise"`
	RaiseCapped bool `json:"raiseCapped"`
	// RaiseLockedSeats had acted when the raise cap was set and may only call or fold
	RaiseLockedSeats map[int]bool `json:"raiseLockedSeats"`

	RoundContributions map[int]int  `json:"roundContributions"`
	TotalContributions map[int]int  `json:"totalContributions"`
	ActedSeats         map[int]bool `json:"actedSeats"`
	Pots               Pots         `json:"pots"`

	HoleCards map[int]deck.Hand `json:"holeCards"`
	Deck      deck.Hand         `json:"deck"`
	Winners   []int             `json:"winners,omitempty"`

	// DealtSeats is every seat dealt into the hand in clockwise order from the seat after the button
	DealtSeats     []int         `json:"dealtSeats"`
	StartingStacks map[int]int   `json:"startingStacks"`
	LastAction     *ActionRecord `json:"lastAction,omitempty"`
	StartedAt      time.Time     `json:"startedAt"`
}

// IsDealtIn returns true if the seat received cards this hand
func (h *Hand) IsDealtIn(seatID int) bool {
	_, ok := h.HoleCards[seatID]
	return ok
}

// HandResult summarizes a finished hand
type HandResult struct {
	HandID         string            `json:"handId"`
	Winners        []int             `json:"winners"`
	Payouts        map[int]int       `json:"payouts"`
	Pots           []PotResult       `json:"pots"`
	CommunityCards deck.Hand         `json:"communityCards"`
	Showdown       bool              `json:"showdown"`
	ShownCards     map[int]deck.Hand `json:"shownCards,omitempty"`
	HandNames      map[int]string    `json:"handNames,omitempty"`
	// Departures is the stack returned to each seat that left during the hand
	Departures map[int]int `json:"departures,omitempty"`
	EndedAt    time.Time   `json:"endedAt"`
}

// PotResult is how a single pot was awarded
type PotResult struct {
	Amount  int   `json:"amount"`
	Winners []int `json:"winners"`
}

// Table is the authoritative state of a table
type Table struct {
	TableID string      `json:"tableId"`
	Config  Config      `json:"config"`
	Seats   []Seat      `json:"seats"`
	Status  TableStatus `json:"status"`
	Hand    *Hand       `json:"hand"`
	// Version increments on every committed mutation
	Version int64 `json:"version"`

	// ButtonSeat is the button of the most recent hand
	ButtonSeat int         `json:"buttonSeat"`
	HandCount  int         `json:"handCount"`
	LastHand   *HandResult `json:"lastHand,omitempty"`
}

// NewTable returns a table with every seat empty
func NewTable(tableID string, cfg Config) (*Table, error) {
	if tableID == "" {
		return nil, errors.New("table id is required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	seats := make([]Seat, cfg.MaxPlayers)
	for i := range seats {
		seats[i] = Seat{SeatID: i, Status: SeatEmpty}
	}

	return &Table{
		TableID:    tableID,
		Config:     cfg,
		Seats:      seats,
		Status:     TableLobby,
		ButtonSeat: NoSeat,
	}, nil
}

// Seat returns the seat with the ID, or nil
func (t *Table) Seat(seatID int) *Seat {
	if seatID < 0 || seatID >= len(t.Seats) {
		return nil
	}

	return &t.Seats[seatID]
}

// SeatByOccupant returns the seat held by the occupant, or nil
func (t *Table) SeatByOccupant(occupantID string) *Seat {
	if occupantID == "" {
		return nil
	}

	for i := range t.Seats {
		if t.Seats[i].OccupantID == occupantID {
			return &t.Seats[i]
		}
	}

	return nil
}

// ChipsInPlay returns every chip at the table: stacks plus the chips in unawarded pots
func (t *Table) ChipsInPlay() int {
	total := 0
	for _, s := range t.Seats {
		total += s.Stack
	}

	if t.Hand != nil {
		total += t.Hand.Pots.Total()
	}

	return total
}

// Clone returns a deep copy of the table
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}

	c := *t
	c.Seats = append([]Seat(nil), t.Seats...)
	c.Hand = t.Hand.Clone()
	c.LastHand = t.LastHand.Clone()
	return &c
}

// Clone returns a deep copy of the hand
func (h *Hand) Clone() *Hand {
	if h == nil {
		return nil
	}

	c := *h
	c.CommunityCards = h.CommunityCards.Clone()
	c.Deck = h.Deck.Clone()
	c.RaiseLockedSeats = cloneBoolMap(h.RaiseLockedSeats)
	c.RoundContributions = cloneIntMap(h.RoundContributions)
	c.TotalContributions = cloneIntMap(h.TotalContributions)
	c.ActedSeats = cloneBoolMap(h.ActedSeats)
	c.StartingStacks = cloneIntMap(h.StartingStacks)
	c.HoleCards = cloneCardMap(h.HoleCards)
	c.Winners = cloneInts(h.Winners)
	c.DealtSeats = cloneInts(h.DealtSeats)

	if h.Pots != nil {
		c.Pots = make(Pots, len(h.Pots))
		for i, p := range h.Pots {
			c.Pots[i] = Pot{Amount: p.Amount, EligibleSeatIDs: cloneInts(p.EligibleSeatIDs)}
		}
	}

	if h.LastAction != nil {
		la := *h.LastAction
		c.LastAction = &la
	}

	if h.TurnDeadline != nil {
		d := *h.TurnDeadline
		c.TurnDeadline = &d
	}

	return &c
}

// Clone returns a deep copy of the result
func (r *HandResult) Clone() *HandResult {
	if r == nil {
		return nil
	}

	c := *r
	c.Winners = cloneInts(r.Winners)
	c.Payouts = cloneIntMap(r.Payouts)
	c.Departures = cloneIntMap(r.Departures)
	c.CommunityCards = r.CommunityCards.Clone()
	c.ShownCards = cloneCardMap(r.ShownCards)

	if r.HandNames != nil {
		c.HandNames = make(map[int]string, len(r.HandNames))
		for k, v := range r.HandNames {
			c.HandNames[k] = v
		}
	}

	if r.Pots != nil {
		c.Pots = make([]PotResult, len(r.Pots))
		for i, p := range r.Pots {
			c.Pots[i] = PotResult{Amount: p.Amount, Winners: cloneInts(p.Winners)}
		}
	}

	return &c
}

func cloneInts(s []int) []int {
	if s == nil {
		return nil
	}

	return append([]int(nil), s...)
}

func cloneIntMap(m map[int]int) map[int]int {
	if m == nil {
		return nil
	}

	c := make(map[int]int, len(m))
	for k, v := range m {
		c[k] = v
	}

	return c
}

func cloneBoolMap(m map[int]bool) map[int]bool {
	if m == nil {
		return nil
	}

	c := make(map[int]bool, len(m))
	for k, v := range m {
		c[k] = v
	}

	return c
}

func cloneCardMap(m map[int]deck.Hand) map[int]deck.Hand {
	if m == nil {
		return nil
	}

	c := make(map[int]deck.Hand, len(m))
	for k, v := range m {
		c[k] = v.Clone()
	}

	return c
}

func sortedKeys(m map[int]bool) []int {
	keys := make([]int, 0, len(m))
	for k, ok := range m {
		if ok {
			keys = append(keys, k)
		}
	}

	sort.Ints(keys)
	return keys
}
