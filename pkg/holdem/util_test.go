package holdem

import (
	"fmt"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"holdem-server/pkg/deck"
)

func testConfig() Config {
	return Config{
		SmallBlind:    1,
		BigBlind:      2,
		MaxPlayers:    6,
		StartingStack: 100,
	}
}

// setupTable seats an occupant with each stack, starting at seat 0
func setupTable(t *testing.T, cfg Config, stacks ...int) *Table {
	t.Helper()

	table, err := NewTable("table-1", cfg)
	require.NoError(t, err)

	for i, stack := range stacks {
		_, err := table.JoinSeat(i, fmt.Sprintf("player-%d", i), stack)
		require.NoError(t, err)
	}

	return table
}

func setupEngine(decks ...string) *Engine {
	hands := make([]deck.Hand, len(decks))
	for i, d := range decks {
		hands[i] = deck.CardsFromString(d)
	}

	e := NewEngine(logrus.StandardLogger(), deck.NewFixedSource(hands...))
	e.SetClock(func() time.Time {
		return time.Date(2020, 1, 1, 12, 0, 0, 0, time.UTC)
	})

	ids := 0
	e.newID = func() string {
		ids++
		return fmt.Sprintf("hand-%d", ids)
	}

	return e
}

func startHand(t *testing.T, e *Engine, table *Table) []Event {
	t.Helper()

	events, err := e.StartHand(table)
	require.NoError(t, err)
	return events
}

func assertAction(t *testing.T, e *Engine, table *Table, seatID int, a Action, msgAndArgs ...interface{}) []Event {
	t.Helper()

	events, err := e.ApplyAction(table, seatID, a)
	require.NoError(t, err, msgAndArgs...)
	return events
}

func assertActionFails(t *testing.T, e *Engine, table *Table, seatID int, a Action, expected error) {
	t.Helper()

	before := table.Clone()
	_, err := e.ApplyAction(table, seatID, a)
	assert.Equal(t, expected, err)
	assert.Equal(t, before, table, "a rejected action must not change the table")
}

func stacks(table *Table) []int {
	s := make([]int, len(table.Seats))
	for i, seat := range table.Seats {
		s[i] = seat.Stack
	}

	return s
}

func actionTypes(actions []LegalAction) []ActionType {
	types := make([]ActionType, len(actions))
	for i, a := range actions {
		types[i] = a.Type
	}

	return types
}

func eventTypes(events []Event) []EventType {
	types := make([]EventType, len(events))
	for i, e := range events {
		types[i] = e.Type
	}

	return types
}
