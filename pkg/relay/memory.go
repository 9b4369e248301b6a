package relay

import (
	"context"
	"sync"
)

// Hub connects in-process relays, i.e., several instances inside one test
type Hub struct {
	mu          sync.Mutex
	subscribers map[*hubSubscriber]bool
}

type hubSubscriber struct {
	instanceID string
	ch         chan Message
}

// NewHub returns an empty hub
func NewHub() *Hub {
	return &Hub{subscribers: make(map[*hubSubscriber]bool)}
}

// Relay returns a relay for the instance
func (h *Hub) Relay(instanceID string) *MemoryRelay {
	return &MemoryRelay{hub: h, instanceID: instanceID}
}

// MemoryRelay is a Relay attached to a Hub
type MemoryRelay struct {
	hub        *Hub
	instanceID string
}

// InstanceID returns the instance
func (m *MemoryRelay) InstanceID() string {
	return m.instanceID
}

// Publish sends the message to every other instance on the hub
// A subscriber that is not keeping up drops the message.
func (m *MemoryRelay) Publish(ctx context.Context, msg Message) error {
	msg.InstanceID = m.instanceID
	msg.Table = msg.Table.Clone()

	m.hub.mu.Lock()
	defer m.hub.mu.Unlock()

	for sub := range m.hub.subscribers {
		if sub.instanceID == m.instanceID {
			continue
		}

		select {
		case sub.ch <- msg:
		default:
		}
	}

	return nil
}

// Subscribe listens until the context ends
func (m *MemoryRelay) Subscribe(ctx context.Context) (<-chan Message, error) {
	sub := &hubSubscriber{
		instanceID: m.instanceID,
		ch:         make(chan Message, subscriberBuffer),
	}

	m.hub.mu.Lock()
	m.hub.subscribers[sub] = true
	m.hub.mu.Unlock()

	go func() {
		<-ctx.Done()

		m.hub.mu.Lock()
		delete(m.hub.subscribers, sub)
		close(sub.ch)
		m.hub.mu.Unlock()
	}()

	return sub.ch, nil
}
