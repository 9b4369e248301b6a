package relay

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// DefaultChannel is the pub/sub channel for table changes
const DefaultChannel = "holdem:relay"

// RedisRelay is a Relay over Redis pub/sub
type RedisRelay struct {
	client     redis.UniversalClient
	channel    string
	instanceID string
	logger     logrus.FieldLogger
}

// NewRedisRelay returns a relay on the default channel
func NewRedisRelay(client redis.UniversalClient, instanceID string, logger logrus.FieldLogger) *RedisRelay {
	return &RedisRelay{
		client:     client,
		channel:    DefaultChannel,
		instanceID: instanceID,
		logger:     logger.WithField("instanceId", instanceID),
	}
}

// InstanceID returns the instance
func (r *RedisRelay) InstanceID() string {
	return r.instanceID
}

// Publish sends the message to the channel
func (r *RedisRelay) Publish(ctx context.Context, msg Message) error {
	msg.InstanceID = r.instanceID

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	if err := r.client.Publish(ctx, r.channel, data).Err(); err != nil {
		return fmt.Errorf("could not publish table %s: %w", msg.TableID, err)
	}

	return nil
}

// Subscribe listens to the channel until the context ends
func (r *RedisRelay) Subscribe(ctx context.Context) (<-chan Message, error) {
	pubsub := r.client.Subscribe(ctx, r.channel)

	// wait for the subscription to be confirmed
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("could not subscribe to %s: %w", r.channel, err)
	}

	out := make(chan Message, subscriberBuffer)
	go func() {
		defer close(out)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok {
					return
				}

				var msg Message
				if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
					r.logger.WithError(err).Error("could not decode relay message")
					continue
				}

				if msg.InstanceID == r.instanceID {
					continue
				}

				select {
				case out <- msg:
				default:
					r.logger.WithField("tableId", msg.TableID).Warn("relay subscriber is full, dropping message")
				}
			}
		}
	}()

	return out, nil
}
