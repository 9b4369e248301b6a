package handlog

import (
	"context"
	"sort"
	"sync"
)

// MemoryLog keeps events in memory
type MemoryLog struct {
	mu      sync.Mutex
	entries map[string][]Entry
}

// NewMemoryLog returns an empty log
func NewMemoryLog() *MemoryLog {
	return &MemoryLog{entries: make(map[string][]Entry)}
}

// Append records the entries
func (m *MemoryLog) Append(ctx context.Context, entries ...Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range entries {
		for _, existing := range m.entries[e.TableID] {
			if existing.Version == e.Version && existing.Seq == e.Seq {
				return ErrDuplicateEvent
			}
		}
	}

	for _, e := range entries {
		e.Snapshot = e.Snapshot.Clone()
		list := append(m.entries[e.TableID], e)
		sort.SliceStable(list, func(i, j int) bool {
			return less(list[i], list[j])
		})
		m.entries[e.TableID] = list
	}

	return nil
}

// List returns the entries in commit order
func (m *MemoryLog) List(ctx context.Context, tableID, handID string) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := make([]Entry, 0)
	for _, e := range m.entries[tableID] {
		if handID == "" || e.HandID == handID {
			e.Snapshot = e.Snapshot.Clone()
			entries = append(entries, e)
		}
	}

	return entries, nil
}

// Latest returns the most recent entry
func (m *MemoryLog) Latest(ctx context.Context, tableID string) (*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	list := m.entries[tableID]
	if len(list) == 0 {
		return nil, ErrNoEvents
	}

	e := list[len(list)-1]
	e.Snapshot = e.Snapshot.Clone()
	return &e, nil
}
