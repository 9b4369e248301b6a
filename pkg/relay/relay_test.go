package relay

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"holdem-server/pkg/holdem"
	"holdem-server/pkg/store"
)

func receive(t *testing.T, ch <-chan Message) (Message, bool) {
	t.Helper()

	select {
	case msg, ok := <-ch:
		return msg, ok
	case <-time.After(time.Second):
		return Message{}, false
	}
}

func assertNothing(t *testing.T, ch <-chan Message) {
	t.Helper()

	select {
	case msg := <-ch:
		t.Errorf("unexpected message from %s", msg.InstanceID)
	case <-time.After(50 * time.Millisecond):
	}
}

func testRelay(t *testing.T, one, two Relay) {
	a := assert.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fromOne, err := one.Subscribe(ctx)
	require.NoError(t, err)
	fromTwo, err := two.Subscribe(ctx)
	require.NoError(t, err)

	table, err := holdem.NewTable("table-1", holdem.DefaultConfig())
	require.NoError(t, err)
	table.Version = 7

	a.NoError(one.Publish(ctx, Message{TableID: "table-1", Version: 7, Table: table}))

	msg, ok := receive(t, fromTwo)
	a.True(ok)
	a.Equal(one.InstanceID(), msg.InstanceID)
	a.Equal("table-1", msg.TableID)
	a.Equal(int64(7), msg.Version)
	a.Equal(int64(7), msg.Table.Version)

	assertNothing(t, fromOne)
}

func TestMemoryRelay(t *testing.T) {
	hub := NewHub()
	testRelay(t, hub.Relay("one"), hub.Relay("two"))
}

func TestMemoryRelay_ClosesOnCancel(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := hub.Relay("one").Subscribe(ctx)
	require.NoError(t, err)
	cancel()

	_, ok := receive(t, ch)
	assert.False(t, ok)
}

func TestRedisRelay(t *testing.T) {
	addr := os.Getenv("HOLDEM_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("HOLDEM_TEST_REDIS_ADDR is not set")
	}

	client, err := store.NewRedisClient(context.Background(), store.RedisConfig{Addr: addr})
	require.NoError(t, err)
	defer client.Close()

	logger := logrus.StandardLogger()
	testRelay(t, NewRedisRelay(client, "one", logger), NewRedisRelay(client, "two", logger))
}
