package room

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"holdem-server/pkg/handlog"
	"holdem-server/pkg/holdem"
	"holdem-server/pkg/relay"
	"holdem-server/pkg/store"
)

// mutation changes the table and returns the events it produced
// Returning errNoChange ends the commit without persisting.
type mutation func(t *holdem.Table) ([]holdem.Event, error)

func (d *Dealer) lockKey() string {
	return "table:" + d.tableID
}

// load returns the stored table
func (d *Dealer) load(ctx context.Context) (*holdem.Table, error) {
	t, err := d.opts.Store.Load(ctx, d.tableID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, holdem.ErrMissingTable
		}

		return nil, unavailable(err)
	}

	return t, nil
}

// commit runs the mutation against the latest stored table and publishes the result
// A rejected mutation returns the unchanged table with the rejection. Must only be called
// from the run loop.
func (d *Dealer) commit(ctx context.Context, fn mutation) (*holdem.Table, error) {
	lockCtx, cancel := context.WithTimeout(ctx, d.opts.LockTTL)
	defer cancel()

	lock, err := d.opts.Locker.Acquire(lockCtx, d.lockKey(), d.opts.LockTTL)
	if err != nil {
		return nil, unavailable(err)
	}

	defer func() {
		if err := lock.Release(context.Background()); err != nil {
			d.logger.WithError(err).Warn("could not release table lock")
		}
	}()

	t, err := d.load(ctx)
	if err != nil {
		return nil, err
	}

	expectedVersion := t.Version
	original := t.Clone()
	events, err := fn(t)
	if err != nil {
		// the mutation may have failed halfway; nothing is saved
		return original, err
	}

	d.armDeadline(t)
	t.Version = expectedVersion + 1
	if err := d.opts.Store.Save(ctx, t, expectedVersion); err != nil {
		if errors.Is(err, store.ErrVersionConflict) {
			d.logger.WithField("version", expectedVersion).Error("table changed while locked")
		}

		return nil, unavailable(err)
	}

	log := d.logger.WithField("version", t.Version)
	redacted := make([]holdem.Event, len(events))
	for i, ev := range events {
		redacted[i] = redactEvent(ev, t.Version)
	}

	if err := d.appendEvents(ctx, t, redacted); err != nil {
		log.WithError(err).Error("could not record hand events")
	}

	if err := d.opts.Relay.Publish(ctx, relay.Message{
		TableID: t.TableID,
		Version: t.Version,
		Table:   t,
	}); err != nil {
		log.WithError(err).Error("could not relay table change")
	}

	d.version = t.Version
	d.broadcast(t, redacted)
	d.rearm(t)

	if ended(events) {
		d.scheduleNextHand(t)
	}

	d.retireIfIdle()

	log.WithField("events", len(events)).Debug("committed table")
	return t, nil
}

func (d *Dealer) appendEvents(ctx context.Context, t *holdem.Table, events []holdem.Event) error {
	if len(events) == 0 {
		return nil
	}

	now := d.opts.Now()
	entries := make([]handlog.Entry, len(events))
	for i, ev := range events {
		entries[i] = handlog.Entry{
			ID:        uuid.New().String(),
			TableID:   t.TableID,
			HandID:    ev.HandID,
			Type:      ev.Type,
			Version:   t.Version,
			Seq:       i,
			Action:    ev.Action,
			Result:    ev.Result,
			Snapshot:  ev.Table,
			CreatedAt: now,
		}
	}

	return d.opts.Log.Append(ctx, entries...)
}

func ended(events []holdem.Event) bool {
	for _, ev := range events {
		if ev.Type == holdem.EventHandEnded {
			return true
		}
	}

	return false
}

// applyRemote broadcasts a change committed by another instance
func (d *Dealer) applyRemote(msg relay.Message) {
	if msg.Table == nil || msg.Version <= d.version {
		return
	}

	d.logger.WithFields(logrus.Fields{
		"version":  msg.Version,
		"instance": msg.InstanceID,
	}).Debug("relaying remote change")

	d.version = msg.Version
	d.broadcast(msg.Table, nil)
	d.rearm(msg.Table)
}
