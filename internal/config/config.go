package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"holdem-server/internal/util"
	"holdem-server/pkg/holdem"
)

// Config provides configuration for the hold'em server
type Config struct {
	loaded         bool
	PGDSN          string `yaml:"pgDsn" envconfig:"pg_dsn"`
	MigrationsPath string `yaml:"migrationsPath" envconfig:"migrations_path"`
	// InstanceID tags relayed changes; a random ID is used when empty
	InstanceID string `yaml:"instanceId" envconfig:"instance_id"`
	// Admins are the occupant IDs allowed to create tables
	Admins []string `yaml:"admins"`
	Redis  struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	}
	JWT struct {
		PublicKey  string `yaml:"publicKey" envconfig:"public_key"`
		PrivateKey string `yaml:"privateKey" envconfig:"private_key"`
	}
	Timing struct {
		TurnTimeout   time.Duration `yaml:"turnTimeout" envconfig:"turn_timeout"`
		NextHandDelay time.Duration `yaml:"nextHandDelay" envconfig:"next_hand_delay"`
		LockTTL       time.Duration `yaml:"lockTtl" envconfig:"lock_ttl"`
		BuyInTTL      time.Duration `yaml:"buyInTtl" envconfig:"buy_in_ttl"`
	}
	// Table is the configuration of tables created without one
	Table holdem.Config `yaml:"table"`
	// Shuffle is ShuffleCrypto or ShuffleSeeded
	Shuffle string `yaml:"shuffle"`
	Log     struct {
		Level              string   `yaml:"level"`
		DisableAccessLogs  bool     `yaml:"disableAccessLogs" envconfig:"disable_access_logs"`
		CORSAllowedOrigins []string `yaml:"corsAllowedOrigins" envconfig:"cors_allowed_origins"`
	}
}

// shuffle modes
const (
	// ShuffleCrypto shuffles every deck with crypto/rand
	ShuffleCrypto = "crypto"
	// ShuffleSeeded derives the shuffle from the table ID and start time
	// It is reproducible and predictable, so it is only meant for development and replays.
	ShuffleSeeded = "seeded"
)

var config Config

// DefaultConfig returns the configuration used for anything the file and environment omit
func DefaultConfig() Config {
	var cfg Config
	cfg.PGDSN = "postgres://postgres@localhost:5432/holdem?sslmode=disable"
	cfg.MigrationsPath = "sql"
	cfg.Redis.Addr = "localhost:6379"
	cfg.JWT.PublicKey = ".keys/public.pem"
	cfg.JWT.PrivateKey = ".keys/private.key"
	cfg.Timing.TurnTimeout = 30 * time.Second
	cfg.Timing.NextHandDelay = 5 * time.Second
	cfg.Timing.LockTTL = 5 * time.Second
	cfg.Timing.BuyInTTL = 24 * time.Hour
	cfg.Table = holdem.DefaultConfig()
	cfg.Shuffle = ShuffleCrypto
	cfg.Log.Level = "info"
	cfg.Log.CORSAllowedOrigins = []string{"http://localhost:3000"}

	return cfg
}

// Instance returns a singleton instance
// If the config hasn't been loaded, it will be loaded
func Instance() Config {
	if !config.loaded {
		if err := Load(); err != nil {
			panic(err)
		}
	}

	return config
}

// Load will load the configuration
// A missing config file is not an error; the defaults and environment are used instead.
func Load() error {
	cfg := DefaultConfig()

	configFile := util.Getenv("HOLDEM_CONFIG_FILE", "config.yaml")
	file, err := os.Open(configFile)
	switch {
	case err == nil:
		defer file.Close()
		if err := yaml.NewDecoder(file).Decode(&cfg); err != nil {
			return err
		}
	case !os.IsNotExist(err):
		return err
	}

	if err := envconfig.Process("holdem", &cfg); err != nil {
		return err
	}

	if err := cfg.Table.Validate(); err != nil {
		return err
	}

	if cfg.Shuffle != ShuffleCrypto && cfg.Shuffle != ShuffleSeeded {
		return fmt.Errorf("unknown shuffle: %q", cfg.Shuffle)
	}

	cfg.loaded = true
	config = cfg
	return nil
}
