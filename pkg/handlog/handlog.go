package handlog

import (
	"context"
	"errors"
	"time"

	"holdem-server/pkg/holdem"
)

// ErrNoEvents is returned when a table has no recorded events
var ErrNoEvents = errors.New("no hand events")

// ErrDuplicateEvent is returned when an event was already appended
var ErrDuplicateEvent = errors.New("duplicate hand event")

// Entry is an append-only audit record of a hand
// Snapshot is always redacted: no hole cards and no undealt deck.
type Entry struct {
	ID      string           `json:"id"`
	TableID string           `json:"tableId"`
	HandID  string           `json:"handId"`
	Type    holdem.EventType `json:"type"`
	// Version is the table version the event was committed with
	Version int64 `json:"version"`
	// Seq orders events committed with the same version
	Seq       int                  `json:"seq"`
	Action    *holdem.ActionRecord `json:"action,omitempty"`
	Result    *holdem.HandResult   `json:"result,omitempty"`
	Snapshot  *holdem.Table        `json:"snapshot"`
	CreatedAt time.Time            `json:"createdAt"`
}

// Log stores hand events
type Log interface {
	// Append records the entries atomically
	Append(ctx context.Context, entries ...Entry) error

	// List returns the table's entries in commit order
	// An empty handID returns every hand.
	List(ctx context.Context, tableID, handID string) ([]Entry, error)

	// Latest returns the most recent entry for the table, or ErrNoEvents
	Latest(ctx context.Context, tableID string) (*Entry, error)
}

// Replay reconstructs the latest state of a table from its log
func Replay(ctx context.Context, log Log, tableID string) (*holdem.Table, error) {
	entry, err := log.Latest(ctx, tableID)
	if err != nil {
		return nil, err
	}

	if entry.Snapshot == nil {
		return nil, ErrNoEvents
	}

	return entry.Snapshot.Clone(), nil
}

func less(a, b Entry) bool {
	if a.Version != b.Version {
		return a.Version < b.Version
	}

	return a.Seq < b.Seq
}
