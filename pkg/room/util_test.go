package room

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"holdem-server/pkg/deck"
	"holdem-server/pkg/handlog"
	"holdem-server/pkg/holdem"
	"holdem-server/pkg/protocol"
	"holdem-server/pkg/relay"
	"holdem-server/pkg/store"
)

const testTableID = "table-1"

func testConfig() holdem.Config {
	return holdem.Config{
		SmallBlind:    1,
		BigBlind:      2,
		MaxPlayers:    6,
		StartingStack: 100,
	}
}

func testOptions() Options {
	return Options{
		Store:         store.NewMemoryStore(),
		Locker:        store.NewMemoryLocker(),
		Reservations:  store.NewMemoryReservations(),
		Log:           handlog.NewMemoryLog(),
		Relay:         relay.NewHub().Relay("instance-1"),
		Engine:        holdem.NewEngine(logrus.StandardLogger(), deck.SeededSource{}),
		NextHandDelay: time.Hour,
	}
}

// setupPitBoss starts a pit boss with an empty table
func setupPitBoss(t *testing.T, opts Options) *PitBoss {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	p, err := NewPitBoss(opts)
	require.NoError(t, err)
	require.NoError(t, p.StartShift(ctx))
	t.Cleanup(p.EndShift)

	_, err = p.CreateTable(ctx, testTableID, testConfig())
	require.NoError(t, err)

	return p
}

// seat joins each occupant in seat order
func seat(t *testing.T, d *Dealer, occupants ...string) *holdem.Table {
	t.Helper()

	var table *holdem.Table
	for i, occupant := range occupants {
		var err error
		table, err = d.JoinSeat(context.Background(), occupant, protocol.JoinRequest{SeatID: i})
		require.NoError(t, err)
	}

	return table
}

func loadTable(t *testing.T, p *PitBoss) *holdem.Table {
	t.Helper()

	table, err := p.opts.Store.Load(context.Background(), testTableID)
	require.NoError(t, err)
	return table
}

// nextMessage reads from the client until a message with the key arrives
func nextMessage(t *testing.T, c *Client, key protocol.Key) *protocol.Message {
	t.Helper()

	timeout := time.After(2 * time.Second)
	for {
		select {
		case raw := <-c.SendChan():
			msg, ok := raw.(*protocol.Message)
			require.True(t, ok, "unexpected message type %T", raw)
			if msg.Key == key {
				return msg
			}
		case <-timeout:
			require.FailNow(t, "timed out waiting for message", string(key))
			return nil
		}
	}
}

func eventTypes(entries []handlog.Entry) []holdem.EventType {
	types := make([]holdem.EventType, len(entries))
	for i, e := range entries {
		types[i] = e.Type
	}

	return types
}
