package room

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"holdem-server/pkg/deck"
	"holdem-server/pkg/holdem"
	"holdem-server/pkg/protocol"
	"holdem-server/pkg/store"
)

func TestDealer_HandLifecycle(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()

	opts := testOptions()
	p := setupPitBoss(t, opts)
	d := p.Dealer(testTableID)

	seat(t, d, "alice", "bob")

	table, err := d.StartHand(ctx)
	require.NoError(t, err)
	require.NotNil(t, table.Hand)
	a.Equal(int64(4), table.Version)
	a.Equal(0, table.Hand.CurrentTurnSeat)
	if a.NotNil(table.Hand.TurnDeadline, "the turn is on the clock") {
		a.True(table.Hand.TurnDeadline.After(time.Now()))
	}

	// rejected actions are not persisted
	rejected, err := d.ApplyAction(ctx, 1, holdem.Check{})
	a.Equal(holdem.ErrNotYourTurn, err)
	a.Equal(int64(4), rejected.Version)
	a.Equal(int64(4), loadTable(t, p).Version)

	_, err = d.StartHand(ctx)
	a.Equal(holdem.ErrHandInProgress, err)

	table, err = d.ApplyAction(ctx, 0, holdem.Fold{})
	require.NoError(t, err)
	a.Nil(table.Hand)
	a.Equal(int64(5), table.Version)
	if a.NotNil(table.LastHand) {
		a.Equal([]int{1}, table.LastHand.Winners)
	}

	a.Equal(99, table.Seats[0].Stack)
	a.Equal(101, table.Seats[1].Stack)

	entries, err := opts.Log.List(ctx, testTableID, "")
	require.NoError(t, err)
	a.Equal([]holdem.EventType{
		holdem.EventHandStarted,
		holdem.EventActionTaken,
		holdem.EventHandEnded,
	}, eventTypes(entries))

	started := entries[0].Snapshot
	require.NotNil(t, started.Hand)
	for _, cards := range started.Hand.HoleCards {
		a.Equal(deck.Hand{{}, {}}, cards, "audit snapshots never carry hole cards")
	}

	for _, card := range started.Hand.Deck {
		a.True(card.IsZero(), "audit snapshots never carry the deck")
	}

	a.Equal(int64(4), started.Version)
	a.Equal(holdem.ActionFold, entries[1].Action.Type)

	replayed, err := p.Replay(ctx, testTableID)
	require.NoError(t, err)
	a.Nil(replayed.Hand)
	a.Equal(table.Seats, replayed.Seats)
}

func TestDealer_JoinSeat(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()

	opts := testOptions()
	p := setupPitBoss(t, opts)
	d := p.Dealer(testTableID)

	req := protocol.JoinRequest{SeatID: 2, BuyIn: 150, BuyInKey: "buy-in-1"}
	table, err := d.JoinSeat(ctx, "alice", req)
	require.NoError(t, err)
	a.Equal(150, table.Seats[2].Stack)
	a.Equal(int64(2), table.Version)

	// a retried request resumes instead of buying in again
	table, err = d.JoinSeat(ctx, "alice", req)
	a.NoError(err)
	a.Equal(150, table.Seats[2].Stack)
	a.Equal(int64(2), table.Version)

	_, err = d.JoinSeat(ctx, "bob", req)
	a.Equal(holdem.ErrSeatUnavailable, err, "the key belongs to alice")

	_, err = d.JoinSeat(ctx, "bob", protocol.JoinRequest{SeatID: 2, BuyInKey: "buy-in-2"})
	a.Equal(holdem.ErrSeatUnavailable, err)

	// a rejected join releases its key
	_, created, err := opts.Reservations.Reserve(ctx, store.Reservation{Key: "buy-in-2", TableID: testTableID, OccupantID: "bob"}, time.Minute)
	a.NoError(err)
	a.True(created)

	_, err = d.JoinSeat(ctx, "alice", protocol.JoinRequest{SeatID: 3})
	a.Equal(holdem.ErrAlreadySeated, err)

	table, err = d.JoinSeat(ctx, "carol", protocol.JoinRequest{SeatID: 0})
	a.NoError(err)
	a.Equal(100, table.Seats[0].Stack)
}

func TestDealer_LeaveSeat(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()

	p := setupPitBoss(t, testOptions())
	d := p.Dealer(testTableID)
	seat(t, d, "alice", "bob", "carol")

	cashOut, table, err := d.LeaveSeat(ctx, "carol")
	a.NoError(err)
	a.Equal(100, cashOut)
	a.True(table.Seats[2].IsEmpty())

	_, _, err = d.LeaveSeat(ctx, "carol")
	a.Equal(holdem.ErrNotSeated, err)

	_, err = d.StartHand(ctx)
	require.NoError(t, err)

	// leaving mid-hand folds the seat and settles when the hand ends
	cashOut, table, err = d.LeaveSeat(ctx, "bob")
	a.NoError(err)
	a.Equal(0, cashOut)
	a.Nil(table.Hand)
	a.True(table.Seats[1].IsEmpty())
	if a.NotNil(table.LastHand) {
		a.Equal(map[int]int{1: 98}, table.LastHand.Departures)
		a.Equal([]int{0}, table.LastHand.Winners)
	}
}

func TestDealer_Disconnect(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()

	p := setupPitBoss(t, testOptions())
	d := p.Dealer(testTableID)
	seat(t, d, "alice", "bob")

	_, err := d.StartHand(ctx)
	require.NoError(t, err)

	table, err := d.Disconnect(ctx, "alice")
	a.NoError(err)
	a.Equal(holdem.SeatDisconnected, table.Seats[0].Status)
	a.NotNil(table.Hand, "a disconnected seat is not folded")
	a.Equal(0, table.Hand.CurrentTurnSeat)

	version := table.Version
	table, err = d.Disconnect(ctx, "alice")
	a.NoError(err)
	a.Equal(version, table.Version, "nothing changed")

	_, err = d.Disconnect(ctx, "dave")
	a.Equal(holdem.ErrNotSeated, err)
}

func TestDealer_TimerFired(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()

	opts := testOptions()
	p := setupPitBoss(t, opts)
	d := p.Dealer(testTableID)
	seat(t, d, "alice", "bob", "carol")

	table, err := d.StartHand(ctx)
	require.NoError(t, err)
	h := table.Hand

	_, applied, err := d.TimerFired(ctx, h.HandID, h.CurrentTurnSeat, h.TurnSeq-1)
	a.NoError(err)
	a.False(applied, "stale timer")
	a.Equal(table.Version, loadTable(t, p).Version)

	// the seat on the clock acts before the timer is processed
	turn := h.CurrentTurnSeat
	seq := h.TurnSeq
	_, err = d.ApplyAction(ctx, turn, holdem.Call{})
	require.NoError(t, err)

	_, applied, err = d.TimerFired(ctx, h.HandID, turn, seq)
	a.NoError(err)
	a.False(applied, "the action won the race")

	table = loadTable(t, p)
	h = table.Hand
	_, applied, err = d.TimerFired(ctx, h.HandID, h.CurrentTurnSeat, h.TurnSeq)
	a.NoError(err)
	a.True(applied)

	entries, err := opts.Log.List(ctx, testTableID, h.HandID)
	require.NoError(t, err)
	last := entries[len(entries)-1]
	a.Equal(holdem.EventActionTaken, last.Type)
	a.True(last.Action.Auto)
	a.Equal(holdem.ActionFold, last.Action.Type, "the small blind owes a call")
}

func TestDealer_TurnTimeout(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()

	opts := testOptions()
	opts.TurnTimeout = 20 * time.Millisecond
	p := setupPitBoss(t, opts)
	d := p.Dealer(testTableID)
	seat(t, d, "alice", "bob")

	_, err := d.StartHand(ctx)
	require.NoError(t, err)

	a.Eventually(func() bool {
		table := loadTable(t, p)
		return table.Hand == nil && table.LastHand != nil
	}, 2*time.Second, 10*time.Millisecond)

	table := loadTable(t, p)
	a.Equal([]int{1}, table.LastHand.Winners)
	a.Equal(99, table.Seats[0].Stack)
}

func TestDealer_NextHand(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()

	opts := testOptions()
	opts.NextHandDelay = 10 * time.Millisecond
	p := setupPitBoss(t, opts)
	d := p.Dealer(testTableID)
	seat(t, d, "alice", "bob")

	_, err := d.StartHand(ctx)
	require.NoError(t, err)
	_, err = d.ApplyAction(ctx, 0, holdem.Fold{})
	require.NoError(t, err)

	a.Eventually(func() bool {
		table := loadTable(t, p)
		return table.HandCount == 2 && table.Hand != nil
	}, 2*time.Second, 10*time.Millisecond)

	a.Equal(1, loadTable(t, p).Hand.ButtonSeat, "the button moved")
}

type brokenStore struct {
	store.Store
}

func (brokenStore) Load(context.Context, string) (*holdem.Table, error) {
	return nil, errors.New("connection refused")
}

func TestDealer_Unavailable(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()

	opts := testOptions()
	p := setupPitBoss(t, opts)
	p.opts.Store = brokenStore{Store: opts.Store}

	d := p.Dealer(testTableID)
	_, err := d.StartHand(ctx)
	a.True(errors.Is(err, ErrUnavailable))

	var ruleErr holdem.RuleError
	a.False(errors.As(err, &ruleErr), "infrastructure failures are not rule rejections")

	msg := protocol.NewResponse(testTableID, "", nil, nil, err)
	a.Equal(protocol.KeyError, msg.Key)
}

func TestDealer_MissingTable(t *testing.T) {
	p := setupPitBoss(t, testOptions())

	_, err := p.Dealer("table-2").StartHand(context.Background())
	assert.Equal(t, holdem.ErrMissingTable, err)
}

func TestDealer_FailedMutationReturnsStoredTable(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()

	opts := testOptions()
	// enough for the hole cards and nothing else
	opts.Engine = holdem.NewEngine(logrus.StandardLogger(), deck.NewFixedSource(deck.CardsFromString("2c,3d,4h,5s")))
	p := setupPitBoss(t, opts)
	d := p.Dealer(testTableID)

	seat(t, d, "alice", "bob")
	_, err := d.StartHand(ctx)
	require.NoError(t, err)

	table, err := d.ApplyAction(ctx, 0, holdem.Raise{To: 4})
	require.NoError(t, err)
	version := table.Version

	table, err = d.ApplyAction(ctx, 1, holdem.Call{})
	a.ErrorIs(err, deck.ErrEndOfDeck)
	if a.NotNil(table) {
		a.Equal(version, table.Version)
		a.Equal(98, table.Seats[1].Stack)
		a.Equal(1, table.Hand.CurrentTurnSeat)
		a.Equal(holdem.Preflop, table.Hand.Street)
	}

	stored := loadTable(t, p)
	a.Equal(version, stored.Version)
	a.Equal(98, stored.Seats[1].Stack)
}
