package room

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"holdem-server/pkg/holdem"
	"holdem-server/pkg/protocol"
	"holdem-server/pkg/relay"
)

// Dealer serializes every operation for a single table
// All table mutations, timer firings, and broadcasts run one at a time on the run loop.
type Dealer struct {
	tableID string
	pitBoss *PitBoss
	opts    Options
	logger  logrus.FieldLogger

	clients map[*Client]bool
	lock    sync.RWMutex

	// the fields below are only touched from the run loop
	views     map[*Client]*clientView
	version   int64
	turn      turnKey
	turnTimer *time.Timer
	nextHand  *time.Timer
	idleTimer *time.Timer
	// abandoned is set until a client subscribes and again once the last one leaves
	abandoned bool

	ctx           context.Context
	cancel        context.CancelFunc
	execInRunLoop chan func()
	close         chan bool
	closeOnce     sync.Once
}

// NewDealer creates a new dealer object
// This is called from a blocking state, so it needs to return quickly
func NewDealer(pitBoss *PitBoss, tableID string) *Dealer {
	ctx, cancel := context.WithCancel(context.Background())

	return &Dealer{
		tableID:       tableID,
		pitBoss:       pitBoss,
		opts:          pitBoss.opts,
		logger:        pitBoss.opts.Logger.WithField("tableId", tableID),
		clients:       make(map[*Client]bool),
		views:         make(map[*Client]*clientView),
		ctx:           ctx,
		cancel:        cancel,
		execInRunLoop: make(chan func(), 256),
		close:         make(chan bool),
		abandoned:     true,
	}
}

// TableID returns the table the dealer runs
func (d *Dealer) TableID() string {
	return d.tableID
}

// Clients will return a slice of connected (at the time) clients
func (d *Dealer) Clients() []*Client {
	d.lock.RLock()
	defer d.lock.RUnlock()

	clients := make([]*Client, 0, len(d.clients))
	for client := range d.clients {
		clients = append(clients, client)
	}

	return clients
}

// ClientCount returns the number of connected clients
func (d *Dealer) ClientCount() int {
	d.lock.RLock()
	defer d.lock.RUnlock()

	return len(d.clients)
}

// StartShift starts the run loop
func (d *Dealer) StartShift() {
	go d.runLoop()
}

// EndShift stops the run loop and every pending timer
func (d *Dealer) EndShift() {
	d.closeOnce.Do(func() {
		d.cancel()
		close(d.close)
	})
}

func (d *Dealer) runLoop() {
	d.logger.Debug("creating dealer run loop")
	for {
		select {
		case fn := <-d.execInRunLoop:
			fn()
		case <-d.close:
			d.stopTimers()
			d.logger.Debug("ending dealer run loop")
			return
		}
	}
}

// enqueue schedules fn on the run loop
// Returns false if the dealer has closed.
func (d *Dealer) enqueue(fn func()) bool {
	select {
	case d.execInRunLoop <- fn:
		return true
	case <-d.close:
		return false
	}
}

type opResult struct {
	table *holdem.Table
	data  interface{}
	err   error
}

// call runs fn on the run loop and waits for its result
func (d *Dealer) call(ctx context.Context, fn func(ctx context.Context) opResult) opResult {
	ch := make(chan opResult, 1)
	queued := d.enqueue(func() {
		ch <- fn(ctx)
		d.retireIfIdle()
	})

	if !queued {
		return opResult{err: unavailable(ErrDealerClosed)}
	}

	select {
	case res := <-ch:
		return res
	case <-ctx.Done():
		return opResult{err: ctx.Err()}
	case <-d.close:
		return opResult{err: unavailable(ErrDealerClosed)}
	}
}

// AddClient subscribes the client to the table
// A seated occupant whose seat was disconnected is reconnected, and the client always
// receives a full snapshot.
func (d *Dealer) AddClient(c *Client) {
	d.lock.Lock()
	d.clients[c] = true
	d.lock.Unlock()

	c.dealer = d

	d.enqueue(func() {
		d.abandoned = false
		d.stopIdleTimer()
		d.subscribe(d.ctx, c)
	})
}

// RemoveClient unsubscribes the client
// Returns true if this was the last client. The occupant's seat is marked disconnected
// unless another connection for the same occupant remains.
func (d *Dealer) RemoveClient(c *Client) bool {
	d.lock.Lock()
	delete(d.clients, c)
	remaining := len(d.clients)
	stillConnected := false
	for other := range d.clients {
		if c.OccupantID != "" && other.OccupantID == c.OccupantID {
			stillConnected = true
			break
		}
	}
	d.lock.Unlock()

	d.enqueue(func() {
		delete(d.views, c)
		if remaining == 0 {
			d.abandoned = true
		}

		if c.OccupantID != "" && !stillConnected {
			if _, err := d.disconnect(d.ctx, c.OccupantID); err != nil && err != holdem.ErrNotSeated {
				d.logger.WithError(err).WithField("occupantId", c.OccupantID).Error("could not disconnect seat")
			}
		}

		d.retireIfIdle()
	})

	return remaining == 0
}

// StartHand deals a new hand
func (d *Dealer) StartHand(ctx context.Context) (*holdem.Table, error) {
	res := d.call(ctx, func(ctx context.Context) opResult {
		t, err := d.startHand(ctx, "")
		return opResult{table: t, err: err}
	})

	return res.table, res.err
}

// ApplyAction applies an action for the seat whose turn it is
func (d *Dealer) ApplyAction(ctx context.Context, seatID int, a holdem.Action) (*holdem.Table, error) {
	res := d.call(ctx, func(ctx context.Context) opResult {
		t, err := d.applyAction(ctx, func(*holdem.Table) (int, error) {
			return seatID, nil
		}, a)
		return opResult{table: t, err: err}
	})

	return res.table, res.err
}

// JoinSeat seats the occupant
// A request carrying a buy-in key that was already used resumes the original reservation
// instead of buying in again.
func (d *Dealer) JoinSeat(ctx context.Context, occupantID string, req protocol.JoinRequest) (*holdem.Table, error) {
	res := d.call(ctx, func(ctx context.Context) opResult {
		t, err := d.joinSeat(ctx, occupantID, req)
		return opResult{table: t, err: err}
	})

	return res.table, res.err
}

// LeaveSeat removes the occupant and returns the stack cashed out
// The stack of a seat that leaves mid-hand is reported in the hand result instead.
func (d *Dealer) LeaveSeat(ctx context.Context, occupantID string) (int, *holdem.Table, error) {
	res := d.call(ctx, func(ctx context.Context) opResult {
		cashOut, t, err := d.leaveSeat(ctx, occupantID)
		return opResult{table: t, data: cashOut, err: err}
	})

	cashOut, _ := res.data.(int)
	return cashOut, res.table, res.err
}

// Disconnect marks the occupant's seat as disconnected
func (d *Dealer) Disconnect(ctx context.Context, occupantID string) (*holdem.Table, error) {
	res := d.call(ctx, func(ctx context.Context) opResult {
		t, err := d.disconnect(ctx, occupantID)
		return opResult{table: t, err: err}
	})

	return res.table, res.err
}

// TimerFired acts for the seat whose turn expired
// Returns false if the turn already moved on.
func (d *Dealer) TimerFired(ctx context.Context, handID string, seatID, turnSeq int) (*holdem.Table, bool, error) {
	key := turnKey{handID: handID, seatID: seatID, turnSeq: turnSeq}
	res := d.call(ctx, func(ctx context.Context) opResult {
		t, applied, err := d.timerFired(ctx, key)
		return opResult{table: t, data: applied, err: err}
	})

	applied, _ := res.data.(bool)
	return res.table, applied, res.err
}

// RemoteCommit relays a change committed by a sibling instance to local clients
func (d *Dealer) RemoteCommit(msg relay.Message) {
	d.enqueue(func() {
		d.applyRemote(msg)
	})
}

// ReceivedMessage handles a message from a client
func (d *Dealer) ReceivedMessage(c *Client, msg *protocol.PayloadIn) {
	d.enqueue(func() {
		d.handleMessage(d.ctx, c, msg)
	})
}

func (d *Dealer) idle() bool {
	return d.abandoned && d.ClientCount() == 0 && d.nextHand == nil && d.turnTimer == nil
}

// retireIfIdle hands an abandoned dealer with nothing scheduled back to the pit boss once it
// has been idle for the configured timeout
// Every call restarts the countdown.
func (d *Dealer) retireIfIdle() {
	d.stopIdleTimer()
	if !d.idle() {
		return
	}

	var timer *time.Timer
	timer = time.AfterFunc(d.opts.IdleTimeout, func() {
		d.enqueue(func() {
			if d.idleTimer != timer {
				return
			}

			d.idleTimer = nil
			if d.idle() && d.pitBoss != nil {
				d.pitBoss.retire(d)
			}
		})
	})
	d.idleTimer = timer
}

func (d *Dealer) stopIdleTimer() {
	if d.idleTimer != nil {
		d.idleTimer.Stop()
		d.idleTimer = nil
	}
}
