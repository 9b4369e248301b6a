package store

import (
	"context"
	"errors"
	"time"

	"holdem-server/pkg/holdem"
)

// ErrNotFound is returned when a table does not exist
var ErrNotFound = errors.New("table not found")

// ErrVersionConflict is returned when the stored table changed since it was loaded
var ErrVersionConflict = errors.New("table version conflict")

// ErrLockHeld is returned when a lock could not be acquired before the context ended
var ErrLockHeld = errors.New("lock held by another owner")

// ErrLockNotHeld is returned when releasing a lock that expired or belongs to someone else
var ErrLockNotHeld = errors.New("lock not held")

// Store holds serialized table snapshots
type Store interface {
	// Load returns the table, or ErrNotFound
	Load(ctx context.Context, tableID string) (*holdem.Table, error)

	// Save writes the table if the stored version is expectedVersion
	// An expectedVersion of 0 creates the table.
	Save(ctx context.Context, table *holdem.Table, expectedVersion int64) error

	// List returns the ID of every stored table
	List(ctx context.Context) ([]string, error)
}

// Lock is a held lock
type Lock interface {
	Release(ctx context.Context) error
}

// Locker provides mutual exclusion across server instances
type Locker interface {
	// Acquire blocks until the lock is held or the context ends
	Acquire(ctx context.Context, key string, ttl time.Duration) (Lock, error)
}

// Reservation is an idempotent buy-in
type Reservation struct {
	Key        string    `json:"key"`
	TableID    string    `json:"tableId"`
	SeatID     int       `json:"seatId"`
	OccupantID string    `json:"occupantId"`
	BuyIn      int       `json:"buyIn"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Reservations records buy-in keys so a retried join resumes instead of charging twice
type Reservations interface {
	// Reserve stores the reservation unless its key already exists
	// Returns the stored reservation and true if it was created by this call.
	Reserve(ctx context.Context, r Reservation, ttl time.Duration) (Reservation, bool, error)

	// Release forgets the key
	Release(ctx context.Context, key string) error
}

// lock retry intervals
const (
	minRetryBackoff = 5 * time.Millisecond
	maxRetryBackoff = 250 * time.Millisecond
)

func backoff(attempt int) time.Duration {
	if attempt > 10 {
		return maxRetryBackoff
	}

	d := minRetryBackoff * time.Duration(1<<attempt)
	if d > maxRetryBackoff {
		return maxRetryBackoff
	}

	return d
}

// retry calls try until it succeeds, fails, or the context ends
func retry(ctx context.Context, try func() (bool, error)) error {
	for attempt := 0; ; attempt++ {
		ok, err := try()
		if err != nil {
			return err
		}

		if ok {
			return nil
		}

		select {
		case <-ctx.Done():
			return ErrLockHeld
		case <-time.After(backoff(attempt)):
		}
	}
}
