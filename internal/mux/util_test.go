package mux

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"holdem-server/internal/jwt"
	"holdem-server/pkg/deck"
	"holdem-server/pkg/handlog"
	"holdem-server/pkg/holdem"
	"holdem-server/pkg/relay"
	"holdem-server/pkg/room"
	"holdem-server/pkg/store"
)

var cbg = context.Background()

const adminID = "admin"

func Test_remoteAddr(t *testing.T) {
	r := &http.Request{RemoteAddr: "127.0.0.1:5000"}
	assert.Equal(t, "127.0.0.1", remoteAddr(r))

	r.RemoteAddr = "[::1]:5000"
	assert.Equal(t, "[::1]", remoteAddr(r))
}

func Test_parsePaginationOptions(t *testing.T) {
	req := func(queryString string) *http.Request {
		req, _ := http.NewRequest(http.MethodGet, "https://example.domain/"+queryString, nil)
		return req
	}

	start, rows, err := parsePaginationOptions(req(""))
	assert.NoError(t, err)
	assert.Equal(t, int64(0), start)
	assert.Equal(t, defaultRows, rows)

	start, rows, err = parsePaginationOptions(req("?start=10&rows=25"))
	assert.NoError(t, err)
	assert.Equal(t, int64(10), start)
	assert.Equal(t, 25, rows)

	start, rows, err = parsePaginationOptions(req("?start=-1&rows=25"))
	assert.EqualError(t, err, "start cannot be less than zero")
	assert.Equal(t, int64(0), start)
	assert.Equal(t, 0, rows)

	start, rows, err = parsePaginationOptions(req("?start=0&rows=0"))
	assert.EqualError(t, err, "rows must be greater than zero")
	assert.Equal(t, int64(0), start)
	assert.Equal(t, 0, rows)

	start, rows, err = parsePaginationOptions(req(fmt.Sprintf("?start=0&rows=%d", maxRows+1)))
	assert.EqualError(t, err, fmt.Sprintf("rows cannot be greater than %d", maxRows))
	assert.Equal(t, int64(0), start)
	assert.Equal(t, 0, rows)
}

var testKey *rsa.PrivateKey

func setupJWT(t *testing.T) {
	t.Helper()

	if testKey == nil {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)
		testKey = key
	}

	jwt.SetKeys(testKey, &testKey.PublicKey)
}

func occupant(t *testing.T, id string) string {
	t.Helper()

	j, err := jwt.Sign(id)
	require.NoError(t, err)
	return j
}

func testTableConfig() holdem.Config {
	return holdem.Config{SmallBlind: 1, BigBlind: 2, MaxPlayers: 6, StartingStack: 100}
}

func testRoomOptions() room.Options {
	return room.Options{
		Store:         store.NewMemoryStore(),
		Locker:        store.NewMemoryLocker(),
		Reservations:  store.NewMemoryReservations(),
		Log:           handlog.NewMemoryLog(),
		Relay:         relay.NewHub().Relay("test"),
		Engine:        holdem.NewEngine(logrus.StandardLogger(), deck.SeededSource{}),
		NextHandDelay: time.Hour,
	}
}

// newTestPitBoss starts a pit boss that ends with the test
func newTestPitBoss(t *testing.T, opts room.Options) *room.PitBoss {
	t.Helper()
	setupJWT(t)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	pitBoss, err := room.NewPitBoss(opts)
	require.NoError(t, err)
	require.NoError(t, pitBoss.StartShift(ctx))
	t.Cleanup(pitBoss.EndShift)

	return pitBoss
}

// newTestMux returns a mux backed by in-memory stores
func newTestMux(t *testing.T) (*Mux, *room.PitBoss) {
	t.Helper()

	pitBoss := newTestPitBoss(t, testRoomOptions())
	return NewMux("", pitBoss, []string{adminID}, testTableConfig()), pitBoss
}

func assertDo(t *testing.T, req *http.Request, respObj interface{}, statusCode int, signedJWT ...string) *http.Response {
	t.Helper()

	if len(signedJWT) > 0 {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", signedJWT[0]))
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Error(err)
		return nil
	}
	defer resp.Body.Close()

	if statusCode != resp.StatusCode {
		b, _ := io.ReadAll(resp.Body)
		t.Log(string(b))
		assert.Equal(t, statusCode, resp.StatusCode)
		return nil
	}

	if respObj != nil {
		if err := json.NewDecoder(resp.Body).Decode(respObj); err != nil {
			t.Error(err)
			return nil
		}
	}

	return resp
}

func assertGetWithResp(t *testing.T, ts *httptest.Server, path string, respObj interface{}, statusCode int, signedJWT ...string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, ts.URL+path, nil)
	if err != nil {
		t.Error(err)
		return nil
	}

	return assertDo(t, req, respObj, statusCode, signedJWT...)
}

func assertGet(t *testing.T, ts *httptest.Server, path string, respObj interface{}, statusCode int, signedJWT ...string) {
	t.Helper()
	if resp := assertGetWithResp(t, ts, path, respObj, statusCode, signedJWT...); resp != nil {
		_ = resp.Body.Close()
	}
}

func assertPostWithResp(t *testing.T, ts *httptest.Server, path string, payload interface{}, respObj interface{}, statusCode int, signedJWT ...string) *http.Response {
	t.Helper()

	var body io.Reader
	switch val := payload.(type) {
	case string:
		body = strings.NewReader(val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			t.Error(err)
			return nil
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequest(http.MethodPost, ts.URL+path, body)
	if err != nil {
		t.Error(err)
		return nil
	}
	req.Header.Set("Content-Type", "application/json")

	return assertDo(t, req, respObj, statusCode, signedJWT...)
}

func assertPost(t *testing.T, ts *httptest.Server, path string, payload interface{}, respObj interface{}, statusCode int, signedJWT ...string) {
	t.Helper()
	if resp := assertPostWithResp(t, ts, path, payload, respObj, statusCode, signedJWT...); resp != nil {
		_ = resp.Body.Close()
	}
}
