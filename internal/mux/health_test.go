package mux

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/bmizerany/assert"

	"holdem-server/pkg/holdem"
	"holdem-server/pkg/store"
)

func TestHealthHandler(t *testing.T) {
	pitBoss := newTestPitBoss(t, testRoomOptions())
	ts := httptest.NewServer(NewMux("v1.2.3", pitBoss, nil, testTableConfig()))
	defer ts.Close()

	var expects healthResponse
	assertGet(t, ts, "/health", &expects, 200)
	assert.Equal(t, "OK", expects.Status)
	assert.Equal(t, "v1.2.3", expects.Version)
	assert.Equal(t, 0, expects.Dealers)

	pitBoss.Dealer("main")
	assertGet(t, ts, "/health", &expects, 200)
	assert.Equal(t, 1, expects.Dealers)
}

type unreachableStore struct {
	store.Store
}

func (unreachableStore) Load(context.Context, string) (*holdem.Table, error) {
	return nil, errors.New("connection refused")
}

func TestHealthHandler_StoreUnavailable(t *testing.T) {
	opts := testRoomOptions()
	opts.Store = unreachableStore{Store: opts.Store}
	ts := httptest.NewServer(NewMux("v1.2.3", newTestPitBoss(t, opts), nil, testTableConfig()))
	defer ts.Close()

	var expects healthResponse
	assertGet(t, ts, "/health", &expects, 503)
	assert.Equal(t, "unavailable", expects.Status)
	assert.Equal(t, "v1.2.3", expects.Version)
}
