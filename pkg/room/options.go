package room

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"holdem-server/pkg/handlog"
	"holdem-server/pkg/holdem"
	"holdem-server/pkg/relay"
	"holdem-server/pkg/store"
)

// ErrUnavailable is returned when the table could not be loaded, locked, or persisted
// It is a transport-level failure and never a rule rejection.
var ErrUnavailable = errors.New("table unavailable")

// ErrDealerClosed is returned when an operation reaches a dealer that ended its shift
var ErrDealerClosed = errors.New("dealer closed")

// errNoChange stops a commit without persisting anything
var errNoChange = errors.New("no change")

func unavailable(err error) error {
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}

// default timings
const (
	DefaultTurnTimeout   = 30 * time.Second
	DefaultNextHandDelay = 5 * time.Second
	DefaultLockTTL       = 5 * time.Second
	DefaultBuyInTTL      = 24 * time.Hour
	DefaultIdleTimeout   = time.Minute
)

// Options are the collaborators shared by every dealer
type Options struct {
	Store        store.Store
	Locker       store.Locker
	Reservations store.Reservations
	Log          handlog.Log
	Relay        relay.Relay
	Engine       *holdem.Engine
	Logger       logrus.FieldLogger

	TurnTimeout   time.Duration
	NextHandDelay time.Duration
	LockTTL       time.Duration
	BuyInTTL      time.Duration

	// IdleTimeout is how long a dealer without clients or timers lingers before it is retired
	IdleTimeout time.Duration

	// Now is the clock used for turn deadlines
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = logrus.StandardLogger()
	}

	if o.TurnTimeout <= 0 {
		o.TurnTimeout = DefaultTurnTimeout
	}

	if o.NextHandDelay <= 0 {
		o.NextHandDelay = DefaultNextHandDelay
	}

	if o.LockTTL <= 0 {
		o.LockTTL = DefaultLockTTL
	}

	if o.BuyInTTL <= 0 {
		o.BuyInTTL = DefaultBuyInTTL
	}

	if o.IdleTimeout <= 0 {
		o.IdleTimeout = DefaultIdleTimeout
	}

	if o.Now == nil {
		o.Now = time.Now
	}

	return o
}

func (o Options) validate() error {
	switch {
	case o.Store == nil:
		return errors.New("room: store is required")
	case o.Locker == nil:
		return errors.New("room: locker is required")
	case o.Reservations == nil:
		return errors.New("room: reservations are required")
	case o.Log == nil:
		return errors.New("room: hand log is required")
	case o.Relay == nil:
		return errors.New("room: relay is required")
	case o.Engine == nil:
		return errors.New("room: engine is required")
	}

	return nil
}
