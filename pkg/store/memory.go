package store

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"holdem-server/pkg/holdem"
)

// MemoryStore is a Store for a single process and for tests
// Tables are kept serialized so callers never share memory with the store.
type MemoryStore struct {
	mu     sync.Mutex
	tables map[string]memoryRecord
}

type memoryRecord struct {
	version int64
	data    []byte
}

// NewMemoryStore returns an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tables: make(map[string]memoryRecord)}
}

// Load returns the table
func (m *MemoryStore) Load(ctx context.Context, tableID string) (*holdem.Table, error) {
	m.mu.Lock()
	rec, ok := m.tables[tableID]
	m.mu.Unlock()

	if !ok {
		return nil, ErrNotFound
	}

	var table holdem.Table
	if err := json.Unmarshal(rec.data, &table); err != nil {
		return nil, err
	}

	return &table, nil
}

// Save writes the table
func (m *MemoryStore) Save(ctx context.Context, table *holdem.Table, expectedVersion int64) error {
	data, err := json.Marshal(table)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.tables[table.TableID]
	if !ok && expectedVersion != 0 {
		return ErrNotFound
	}

	if ok && rec.version != expectedVersion {
		return ErrVersionConflict
	}

	m.tables[table.TableID] = memoryRecord{version: table.Version, data: data}
	return nil
}

// List returns the table IDs in order
func (m *MemoryStore) List(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.tables))
	for id := range m.tables {
		ids = append(ids, id)
	}

	sort.Strings(ids)
	return ids, nil
}

// MemoryLocker is a Locker for a single process
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[string]memoryLock
}

type memoryLock struct {
	token   string
	expires time.Time
}

// NewMemoryLocker returns a new locker
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{locks: make(map[string]memoryLock)}
}

// Acquire waits for the lock
func (m *MemoryLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (Lock, error) {
	token := uuid.New().String()

	err := retry(ctx, func() (bool, error) {
		m.mu.Lock()
		defer m.mu.Unlock()

		now := time.Now()
		if held, ok := m.locks[key]; ok && now.Before(held.expires) {
			return false, nil
		}

		m.locks[key] = memoryLock{token: token, expires: now.Add(ttl)}
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	return &memoryHeldLock{locker: m, key: key, token: token}, nil
}

type memoryHeldLock struct {
	locker *MemoryLocker
	key    string
	token  string
}

func (l *memoryHeldLock) Release(ctx context.Context) error {
	l.locker.mu.Lock()
	defer l.locker.mu.Unlock()

	held, ok := l.locker.locks[l.key]
	if !ok || held.token != l.token {
		return ErrLockNotHeld
	}

	delete(l.locker.locks, l.key)
	return nil
}

// MemoryReservations keeps buy-in keys in memory
type MemoryReservations struct {
	mu           sync.Mutex
	reservations map[string]memoryReservation
}

type memoryReservation struct {
	Reservation
	expires time.Time
}

// NewMemoryReservations returns an empty set of reservations
func NewMemoryReservations() *MemoryReservations {
	return &MemoryReservations{reservations: make(map[string]memoryReservation)}
}

// Reserve stores the reservation unless the key is already reserved
func (m *MemoryReservations) Reserve(ctx context.Context, r Reservation, ttl time.Duration) (Reservation, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	if existing, ok := m.reservations[r.Key]; ok && now.Before(existing.expires) {
		return existing.Reservation, false, nil
	}

	m.reservations[r.Key] = memoryReservation{Reservation: r, expires: now.Add(ttl)}
	return r, true, nil
}

// Release forgets the key
func (m *MemoryReservations) Release(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.reservations, key)
	return nil
}
