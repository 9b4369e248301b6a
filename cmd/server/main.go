package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"holdem-server/internal/config"
	"holdem-server/internal/jwt"
	"holdem-server/internal/mux"
	"holdem-server/internal/util"
	"holdem-server/pkg/db"
	"holdem-server/pkg/deck"
	"holdem-server/pkg/handlog"
	"holdem-server/pkg/holdem"
	"holdem-server/pkg/relay"
	"holdem-server/pkg/room"
	"holdem-server/pkg/store"
)

const readTimeout = time.Second * 5
const writeTimeout = time.Second * 10

// Version is the server version
var Version = "v0.0.0-dev"

var addr = flag.String("addr", ":5000", "the listen address")

func main() {
	flag.Parse()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).Fatal("could not load .env")
	}

	setupLogger()
	cfg := config.Instance()

	// fail fast
	jwt.LoadKeys()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	instanceID := cfg.InstanceID
	if instanceID == "" {
		instanceID = util.NewInstanceID()
	}
	log := logrus.WithField("instance", instanceID)

	dbh, err := db.WaitForDB(ctx, cfg.PGDSN, 10*time.Second)
	if err != nil {
		log.WithError(err).Fatal("could not connect to postgres")
	}
	defer dbh.Close()

	// run the db migrations
	if err := db.Migrate(dbh, cfg.MigrationsPath); err != nil {
		log.WithError(err).Fatal("could not run migrations")
	}

	rdb, err := store.NewRedisClient(ctx, store.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.WithError(err).Fatal("could not connect to redis")
	}
	defer rdb.Close()

	pitBoss, err := room.NewPitBoss(room.Options{
		Store:         store.NewRedisStore(rdb),
		Locker:        store.NewRedisLocker(rdb, instanceID),
		Reservations:  store.NewRedisReservations(rdb),
		Log:           handlog.NewPostgresLog(dbh),
		Relay:         relay.NewRedisRelay(rdb, instanceID, log),
		Engine:        holdem.NewEngine(log, deckSource(cfg.Shuffle)),
		Logger:        log,
		TurnTimeout:   cfg.Timing.TurnTimeout,
		NextHandDelay: cfg.Timing.NextHandDelay,
		LockTTL:       cfg.Timing.LockTTL,
		BuyInTTL:      cfg.Timing.BuyInTTL,
	})
	if err != nil {
		log.WithError(err).Fatal("could not create pit boss")
	}

	if err := pitBoss.StartShift(ctx); err != nil {
		log.WithError(err).Fatal("could not subscribe to relay")
	}

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.Log.CORSAllowedOrigins,
		AllowedHeaders: []string{"Origin", "Accept", "Content-Type", "X-Requested-With", "Authorization"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
	})

	srv := &http.Server{
		Addr:         *addr,
		Handler:      loggingHandler(c.Handler(mux.NewMux(Version, pitBoss, cfg.Admins, cfg.Table))),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()

		pitBoss.EndShift()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.WithField("addr", srv.Addr).Info("listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("server failed")
	}
}

// deckSource returns the shuffle used for new hands
func deckSource(shuffle string) deck.Source {
	if shuffle == config.ShuffleSeeded {
		logrus.Warn("using the seeded shuffle; decks are predictable")
		return deck.SeededSource{}
	}

	return deck.CryptoSource{}
}

func loggingHandler(next http.Handler) http.Handler {
	if config.Instance().Log.DisableAccessLogs {
		return next
	}

	return handlers.CombinedLoggingHandler(os.Stdout, next)
}

func setupLogger() {
	if lvl := config.Instance().Log.Level; lvl != "" {
		level, err := logrus.ParseLevel(lvl)
		if err != nil {
			logrus.WithError(err).Fatal("could not parse level")
		}

		logrus.SetLevel(level)
	}

	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
}
