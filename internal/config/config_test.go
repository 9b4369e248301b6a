package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"holdem-server/internal/util"
)

func TestInstance(t *testing.T) {
	defer util.SetEnv("HOLDEM_CONFIG_FILE", "testdata/config.yaml")()
	defer util.SetEnv("HOLDEM_JWT_PRIVATE_KEY", "private2.key")()
	defer util.SetEnv("HOLDEM_TIMING_NEXT_HAND_DELAY", "2s")()

	config = Config{}

	a := assert.New(t)
	cfg := Instance()
	a.Equal("redis:6379", cfg.Redis.Addr)
	a.Equal("public.pem", cfg.JWT.PublicKey)
	a.Equal("private2.key", cfg.JWT.PrivateKey)
	a.Equal(15*time.Second, cfg.Timing.TurnTimeout)
	a.Equal(2*time.Second, cfg.Timing.NextHandDelay)
	a.Equal(5*time.Second, cfg.Timing.LockTTL, "defaults fill what the file omits")
	a.Equal(10, cfg.Table.BigBlind)
	a.Equal("debug", cfg.Log.Level)
	a.Equal(ShuffleSeeded, cfg.Shuffle)

	// ensure that it's only loaded once
	defer util.SetEnv("HOLDEM_JWT_PRIVATE_KEY", "private3.key")()
	// ensure we aren't using a pointer
	cfg.JWT.PrivateKey = "bad"
	cfg = Instance()
	a.Equal("private2.key", cfg.JWT.PrivateKey)
}

func TestDefaults(t *testing.T) {
	defer util.SetEnv("HOLDEM_CONFIG_FILE", "testdata/missing.yaml")()

	require.NoError(t, Load())
	cfg := Instance()
	assert.Equal(t, DefaultConfig().Table, cfg.Table)
	assert.Equal(t, 30*time.Second, cfg.Timing.TurnTimeout)
	assert.Equal(t, ShuffleCrypto, cfg.Shuffle)
}

func TestLoad_InvalidShuffle(t *testing.T) {
	defer util.SetEnv("HOLDEM_CONFIG_FILE", "testdata/missing.yaml")()
	defer util.SetEnv("HOLDEM_SHUFFLE", "random")()

	assert.EqualError(t, Load(), `unknown shuffle: "random"`)
}

func TestLoad_InvalidTable(t *testing.T) {
	defer util.SetEnv("HOLDEM_CONFIG_FILE", "testdata/missing.yaml")()
	defer util.SetEnv("HOLDEM_TABLE_BIGBLIND", "0")()

	assert.Error(t, Load())
}
