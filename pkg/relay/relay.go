package relay

import (
	"context"

	"holdem-server/pkg/holdem"
)

// Message is a committed table change
type Message struct {
	// InstanceID is the server instance that committed the change
	InstanceID string        `json:"instanceId"`
	TableID    string        `json:"tableId"`
	Version    int64         `json:"version"`
	Table      *holdem.Table `json:"table"`
}

// Relay shares committed table changes between server instances
// Subscribers never receive messages published by their own instance.
type Relay interface {
	// Publish tags the message with this instance and sends it to every sibling
	Publish(ctx context.Context, msg Message) error

	// Subscribe returns messages from siblings until the context ends
	Subscribe(ctx context.Context) (<-chan Message, error)

	// InstanceID returns the identity used to tag messages
	InstanceID() string
}

const subscriberBuffer = 64
