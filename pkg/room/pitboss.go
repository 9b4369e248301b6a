package room

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"holdem-server/pkg/handlog"
	"holdem-server/pkg/holdem"
	"holdem-server/pkg/relay"
	"holdem-server/pkg/store"
)

// PitBoss is responsible for dispatching clients to the dealer of their table
type PitBoss struct {
	opts   Options
	logger logrus.FieldLogger

	dealers map[string]*Dealer
	lock    sync.Mutex

	retired chan *Dealer
}

// NewPitBoss returns a new dispatch object
func NewPitBoss(opts Options) (*PitBoss, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	opts = opts.withDefaults()
	return &PitBoss{
		opts:    opts,
		logger:  opts.Logger,
		dealers: make(map[string]*Dealer),
		retired: make(chan *Dealer, 256),
	}, nil
}

// StartShift starts the PitBoss run loop
// Changes committed by sibling instances are relayed to local dealers until the context ends.
func (p *PitBoss) StartShift(ctx context.Context) error {
	remote, err := p.opts.Relay.Subscribe(ctx)
	if err != nil {
		return err
	}

	go p.runLoop(ctx, remote)
	return nil
}

func (p *PitBoss) runLoop(ctx context.Context, remote <-chan relay.Message) {
	for {
		select {
		case msg, ok := <-remote:
			if !ok {
				remote = nil
				continue
			}

			if d := p.existingDealer(msg.TableID); d != nil {
				d.RemoteCommit(msg)
			}
		case d := <-p.retired:
			p.lock.Lock()
			if p.dealers[d.tableID] == d && d.ClientCount() == 0 {
				delete(p.dealers, d.tableID)
				d.EndShift()
				p.logger.WithField("tableId", d.tableID).Debug("dealer retired")
			}
			p.lock.Unlock()
		case <-ctx.Done():
			p.EndShift()
			return
		}
	}
}

// EndShift stops every dealer
func (p *PitBoss) EndShift() {
	p.lock.Lock()
	defer p.lock.Unlock()

	for id, d := range p.dealers {
		d.EndShift()
		delete(p.dealers, id)
	}
}

func (p *PitBoss) retire(d *Dealer) {
	select {
	case p.retired <- d:
	default:
	}
}

func (p *PitBoss) existingDealer(tableID string) *Dealer {
	p.lock.Lock()
	defer p.lock.Unlock()

	return p.dealers[tableID]
}

// Dealer returns the dealer for the table, starting one if needed
func (p *PitBoss) Dealer(tableID string) *Dealer {
	p.lock.Lock()
	defer p.lock.Unlock()

	return p.dealerLocked(tableID)
}

func (p *PitBoss) dealerLocked(tableID string) *Dealer {
	d, found := p.dealers[tableID]
	if !found {
		d = NewDealer(p, tableID)
		d.StartShift()
		d.enqueue(d.retireIfIdle)
		p.dealers[tableID] = d
	}

	return d
}

// ClientConnected is called when a client connects to the server
func (p *PitBoss) ClientConnected(client *Client) {
	p.logger.WithField("client", client.String()).Debug("client connected")

	p.lock.Lock()
	defer p.lock.Unlock()

	p.dealerLocked(client.TableID).AddClient(client)
}

// ClientDisconnected is called when a client disconnects from the server
func (p *PitBoss) ClientDisconnected(client *Client) {
	p.logger.WithField("client", client.String()).Debug("client disconnected")
	if client.dealer == nil {
		p.logger.WithField("tableId", client.TableID).WithField("type", "exception").Error("table not found")
		return
	}

	client.dealer.RemoveClient(client)
}

// CreateTable stores a new table
func (p *PitBoss) CreateTable(ctx context.Context, tableID string, cfg holdem.Config) (*holdem.Table, error) {
	t, err := holdem.NewTable(tableID, cfg)
	if err != nil {
		return nil, err
	}

	t.Version = 1
	if err := p.opts.Store.Save(ctx, t, 0); err != nil {
		if errors.Is(err, store.ErrVersionConflict) {
			return nil, ErrTableExists
		}

		return nil, unavailable(err)
	}

	p.logger.WithField("tableId", tableID).Info("created table")
	return t, nil
}

// ErrTableExists is returned when creating a table whose ID is taken
var ErrTableExists = errors.New("table already exists")

// healthCheckTableID is never a valid table ID, so loading it only proves the store answers
const healthCheckTableID = "~health"

// Ping checks that the table store is reachable
func (p *PitBoss) Ping(ctx context.Context) error {
	if _, err := p.opts.Store.Load(ctx, healthCheckTableID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return unavailable(err)
	}

	return nil
}

// DealerCount returns the number of tables with a running dealer on this instance
func (p *PitBoss) DealerCount() int {
	p.lock.Lock()
	defer p.lock.Unlock()

	return len(p.dealers)
}

// Table returns the spectator view of the table
func (p *PitBoss) Table(ctx context.Context, tableID string) (*holdem.Table, error) {
	t, err := p.opts.Store.Load(ctx, tableID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, holdem.ErrMissingTable
		}

		return nil, unavailable(err)
	}

	return Redact(t, ""), nil
}

// Tables returns the ID of every table
func (p *PitBoss) Tables(ctx context.Context) ([]string, error) {
	ids, err := p.opts.Store.List(ctx)
	if err != nil {
		return nil, unavailable(err)
	}

	return ids, nil
}

// HandHistory returns the audit log of a hand
func (p *PitBoss) HandHistory(ctx context.Context, tableID, handID string) ([]handlog.Entry, error) {
	entries, err := p.opts.Log.List(ctx, tableID, handID)
	if err != nil {
		return nil, unavailable(err)
	}

	return entries, nil
}

// Replay reconstructs the latest recorded state of the table from its hand log
func (p *PitBoss) Replay(ctx context.Context, tableID string) (*holdem.Table, error) {
	t, err := handlog.Replay(ctx, p.opts.Log, tableID)
	if err != nil {
		if errors.Is(err, handlog.ErrNoEvents) {
			return nil, err
		}

		return nil, unavailable(err)
	}

	return t, nil
}
