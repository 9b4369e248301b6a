package room

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"holdem-server/pkg/holdem"
	"holdem-server/pkg/protocol"
	"holdem-server/pkg/store"
)

// seatFinder resolves the acting seat against the loaded table
type seatFinder func(t *holdem.Table) (int, error)

func occupantSeat(occupantID string) seatFinder {
	return func(t *holdem.Table) (int, error) {
		if occupantID == "" {
			return holdem.NoSeat, holdem.ErrNotSeated
		}

		seat := t.SeatByOccupant(occupantID)
		if seat == nil {
			return holdem.NoSeat, holdem.ErrNotSeated
		}

		return seat.SeatID, nil
	}
}

// startHand deals a new hand
// A non-empty occupant ID must be seated at the table.
func (d *Dealer) startHand(ctx context.Context, occupantID string) (*holdem.Table, error) {
	d.stopNextHand()

	return d.commit(ctx, func(t *holdem.Table) ([]holdem.Event, error) {
		if occupantID != "" && t.SeatByOccupant(occupantID) == nil {
			return nil, holdem.ErrNotSeated
		}

		return d.opts.Engine.StartHand(t)
	})
}

func (d *Dealer) applyAction(ctx context.Context, find seatFinder, a holdem.Action) (*holdem.Table, error) {
	return d.commit(ctx, func(t *holdem.Table) ([]holdem.Event, error) {
		seatID, err := find(t)
		if err != nil {
			return nil, err
		}

		return d.opts.Engine.ApplyAction(t, seatID, a)
	})
}

func (d *Dealer) joinSeat(ctx context.Context, occupantID string, req protocol.JoinRequest) (*holdem.Table, error) {
	if req.BuyInKey == "" {
		return d.commit(ctx, func(t *holdem.Table) ([]holdem.Event, error) {
			_, err := t.JoinSeat(req.SeatID, occupantID, req.BuyIn)
			return nil, err
		})
	}

	res, created, err := d.opts.Reservations.Reserve(ctx, store.Reservation{
		Key:        req.BuyInKey,
		TableID:    d.tableID,
		SeatID:     req.SeatID,
		OccupantID: occupantID,
		BuyIn:      req.BuyIn,
		CreatedAt:  d.opts.Now(),
	}, d.opts.BuyInTTL)
	if err != nil {
		return nil, unavailable(err)
	}

	if res.OccupantID != occupantID || res.TableID != d.tableID {
		return nil, holdem.ErrSeatUnavailable
	}

	log := d.logger.WithFields(logrus.Fields{
		"occupantId": occupantID,
		"buyInKey":   res.Key,
		"seatId":     res.SeatID,
	})

	t, err := d.commit(ctx, func(t *holdem.Table) ([]holdem.Event, error) {
		if seat := t.SeatByOccupant(occupantID); seat != nil && !created && seat.SeatID == res.SeatID {
			return nil, errNoChange
		}

		_, err := t.JoinSeat(res.SeatID, occupantID, res.BuyIn)
		return nil, err
	})

	switch {
	case errors.Is(err, errNoChange):
		log.Info("resumed buy-in")
		return t, nil
	case err != nil && created:
		var ruleErr holdem.RuleError
		if errors.As(err, &ruleErr) {
			if releaseErr := d.opts.Reservations.Release(ctx, res.Key); releaseErr != nil {
				log.WithError(releaseErr).Warn("could not release buy-in")
			}
		}
	}

	return t, err
}

func (d *Dealer) leaveSeat(ctx context.Context, occupantID string) (int, *holdem.Table, error) {
	cashOut := 0
	t, err := d.commit(ctx, func(t *holdem.Table) ([]holdem.Event, error) {
		c, events, err := d.opts.Engine.LeaveSeat(t, occupantID)
		cashOut = c
		return events, err
	})

	return cashOut, t, err
}

func (d *Dealer) disconnect(ctx context.Context, occupantID string) (*holdem.Table, error) {
	t, err := d.commit(ctx, func(t *holdem.Table) ([]holdem.Event, error) {
		seat := t.SeatByOccupant(occupantID)
		if seat == nil {
			return nil, holdem.ErrNotSeated
		}

		if !seat.Connected {
			return nil, errNoChange
		}

		_, err := t.SetConnected(occupantID, false)
		return nil, err
	})

	if errors.Is(err, errNoChange) {
		return t, nil
	}

	return t, err
}

func (d *Dealer) timerFired(ctx context.Context, key turnKey) (*holdem.Table, bool, error) {
	if key == d.turn {
		d.turnTimer = nil
	}

	t, err := d.commit(ctx, func(t *holdem.Table) ([]holdem.Event, error) {
		events, applied, err := d.opts.Engine.ApplyTimeout(t, key.handID, key.seatID, key.turnSeq)
		if err != nil {
			return nil, err
		}

		if !applied {
			return nil, errNoChange
		}

		return events, nil
	})

	switch {
	case errors.Is(err, errNoChange):
		return t, false, nil
	case err != nil:
		return t, false, err
	}

	return t, true, nil
}

// subscribe reconnects the client's seat and sends it the full state
func (d *Dealer) subscribe(ctx context.Context, c *Client) {
	delete(d.views, c)

	var t *holdem.Table
	var err error
	if c.OccupantID != "" {
		t, err = d.commit(ctx, func(t *holdem.Table) ([]holdem.Event, error) {
			seat := t.SeatByOccupant(c.OccupantID)
			if seat == nil || seat.Connected {
				return nil, errNoChange
			}

			_, err := t.SetConnected(c.OccupantID, true)
			return nil, err
		})

		if errors.Is(err, errNoChange) {
			err = nil
		}
	} else {
		t, err = d.load(ctx)
	}

	if err != nil {
		d.logger.WithError(err).WithField("client", c.String()).Warn("could not subscribe client")
		c.Send(protocol.NewResponse(d.tableID, "", nil, nil, err))
		return
	}

	if t.Version > d.version {
		d.version = t.Version
		d.rearm(t)
	}

	if _, ok := d.views[c]; !ok {
		d.sendView(c, t)
	}

	if seat := t.SeatByOccupant(c.OccupantID); seat != nil && c.OccupantID != "" {
		if msg := protocol.NewHoleCards(t, seat.SeatID); msg != nil {
			c.Send(msg)
		}
	}

	if msg := protocol.NewTimerUpdate(t); msg != nil {
		c.Send(msg)
	}
}

func (d *Dealer) handleMessage(ctx context.Context, c *Client, msg *protocol.PayloadIn) {
	log := d.logger.WithFields(logrus.Fields{
		"client": c.String(),
		"action": msg.Action,
	})

	var t *holdem.Table
	var data interface{}
	var err error

	switch msg.Action {
	case protocol.ActionStartHand:
		if c.OccupantID == "" {
			err = holdem.ErrNotSeated
			break
		}

		t, err = d.startHand(ctx, c.OccupantID)
	case protocol.ActionPlay:
		var a holdem.Action
		if a, err = msg.HoldemAction(); err == nil {
			t, err = d.applyAction(ctx, occupantSeat(c.OccupantID), a)
		}
	case protocol.ActionJoinSeat:
		var req protocol.JoinRequest
		if req, err = msg.JoinRequest(); err == nil {
			t, err = d.joinSeat(ctx, c.OccupantID, req)
		}
	case protocol.ActionLeaveSeat:
		var cashOut int
		cashOut, t, err = d.leaveSeat(ctx, c.OccupantID)
		data = cashOut
	case protocol.ActionRefresh:
		d.subscribe(ctx, c)
		return
	default:
		log.Warn("unknown action")
		err = holdem.ErrIllegalAction
	}

	if err != nil {
		log.WithError(err).Debug("operation rejected")
	}

	c.Send(protocol.NewResponse(d.tableID, msg.Context, Redact(t, c.OccupantID), data, err))
}
