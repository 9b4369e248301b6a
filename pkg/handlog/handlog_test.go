package handlog

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"holdem-server/pkg/db"
	"holdem-server/pkg/holdem"
)

func newEntry(t *testing.T, tableID, handID string, typ holdem.EventType, version int64, seq int) Entry {
	t.Helper()

	table, err := holdem.NewTable(tableID, holdem.DefaultConfig())
	require.NoError(t, err)
	table.Version = version

	return Entry{
		ID:        uuid.New().String(),
		TableID:   tableID,
		HandID:    handID,
		Type:      typ,
		Version:   version,
		Seq:       seq,
		Snapshot:  table,
		CreatedAt: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func testLog(t *testing.T, log Log) {
	a := assert.New(t)
	ctx := context.Background()
	tableID := "table-" + uuid.New().String()

	_, err := Replay(ctx, log, tableID)
	a.Equal(ErrNoEvents, err)

	started := newEntry(t, tableID, "hand-1", holdem.EventHandStarted, 2, 0)
	action := newEntry(t, tableID, "hand-1", holdem.EventActionTaken, 3, 0)
	action.Action = &holdem.ActionRecord{SeatID: 1, Type: holdem.ActionRaise, Amount: 10}
	showdown := newEntry(t, tableID, "hand-1", holdem.EventShowdown, 4, 1)
	ended := newEntry(t, tableID, "hand-1", holdem.EventHandEnded, 4, 2)
	ended.Result = &holdem.HandResult{HandID: "hand-1", Winners: []int{1}, Payouts: map[int]int{1: 13}}
	nextHand := newEntry(t, tableID, "hand-2", holdem.EventHandStarted, 5, 0)

	a.NoError(log.Append(ctx, started))
	a.NoError(log.Append(ctx, action))
	a.NoError(log.Append(ctx, showdown, ended))
	a.Equal(ErrDuplicateEvent, log.Append(ctx, ended))

	entries, err := log.List(ctx, tableID, "hand-1")
	a.NoError(err)
	if a.Len(entries, 4) {
		a.Equal(holdem.EventHandStarted, entries[0].Type)
		a.Equal(holdem.EventActionTaken, entries[1].Type)
		a.Equal(holdem.ActionRaise, entries[1].Action.Type)
		a.Equal(holdem.EventShowdown, entries[2].Type)
		a.Equal(holdem.EventHandEnded, entries[3].Type)
		a.Equal(map[int]int{1: 13}, entries[3].Result.Payouts)
	}

	table, err := Replay(ctx, log, tableID)
	a.NoError(err)
	a.Equal(int64(4), table.Version)

	a.NoError(log.Append(ctx, nextHand))
	entries, err = log.List(ctx, tableID, "")
	a.NoError(err)
	a.Len(entries, 5)

	latest, err := log.Latest(ctx, tableID)
	a.NoError(err)
	a.Equal("hand-2", latest.HandID)
}

func TestMemoryLog(t *testing.T) {
	testLog(t, NewMemoryLog())
}

func TestPostgresLog(t *testing.T) {
	dsn := os.Getenv("HOLDEM_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("HOLDEM_TEST_PG_DSN is not set")
	}

	dbh, err := db.Open(context.Background(), dsn)
	require.NoError(t, err)
	defer dbh.Close()

	require.NoError(t, db.Migrate(dbh, "../../sql"))
	testLog(t, NewPostgresLog(dbh))
}
