package room

import (
	"time"

	"github.com/sirupsen/logrus"

	"holdem-server/pkg/holdem"
)

// turnKey identifies a single turn of a hand
type turnKey struct {
	handID  string
	seatID  int
	turnSeq int
}

func (k turnKey) isZero() bool {
	return k.handID == ""
}

// currentTurn returns the turn on the clock, or the zero key
func currentTurn(t *holdem.Table) turnKey {
	h := t.Hand
	if h == nil || !h.Street.IsBetting() || h.CurrentTurnSeat == holdem.NoSeat {
		return turnKey{}
	}

	return turnKey{
		handID:  h.HandID,
		seatID:  h.CurrentTurnSeat,
		turnSeq: h.TurnSeq,
	}
}

// armDeadline stamps the deadline of a turn that was just handed out
func (d *Dealer) armDeadline(t *holdem.Table) {
	if currentTurn(t).isZero() || t.Hand.TurnDeadline != nil {
		return
	}

	deadline := d.opts.Now().Add(d.opts.TurnTimeout)
	t.Hand.TurnDeadline = &deadline
}

// rearm points the turn timer at the table's current turn
// A timer that fires is queued on the run loop like any other operation, so it can never
// race an action. A timer for a turn that already moved on is a no-op.
func (d *Dealer) rearm(t *holdem.Table) {
	key := currentTurn(t)
	if key == d.turn {
		return
	}

	d.stopTurnTimer()
	d.turn = key
	if key.isZero() || t.Hand.TurnDeadline == nil {
		return
	}

	delay := t.Hand.TurnDeadline.Sub(d.opts.Now())
	if delay < 0 {
		delay = 0
	}

	d.logger.WithFields(logrus.Fields{
		"handId":  key.handID,
		"seatId":  key.seatID,
		"turnSeq": key.turnSeq,
		"delay":   delay,
	}).Trace("arming turn timer")

	d.turnTimer = time.AfterFunc(delay, func() {
		d.enqueue(func() {
			if _, _, err := d.timerFired(d.ctx, key); err != nil {
				d.logger.WithError(err).WithField("seatId", key.seatID).Error("could not apply timeout")
			}
		})
	})
}

func (d *Dealer) stopTurnTimer() {
	if d.turnTimer != nil {
		d.turnTimer.Stop()
		d.turnTimer = nil
	}
}

// scheduleNextHand starts another hand after the configured delay
func (d *Dealer) scheduleNextHand(t *holdem.Table) {
	d.stopNextHand()
	if !t.CanStartHand() {
		return
	}

	d.logger.WithField("delay", d.opts.NextHandDelay).Debug("scheduling next hand")
	d.nextHand = time.AfterFunc(d.opts.NextHandDelay, func() {
		d.enqueue(func() {
			d.nextHand = nil
			_, err := d.startHand(d.ctx, "")
			switch err {
			case nil:
			case holdem.ErrHandInProgress, holdem.ErrNotEnoughPlayers:
				d.logger.WithError(err).Debug("skipped scheduled hand")
				d.retireIfIdle()
			default:
				d.logger.WithError(err).Error("could not start scheduled hand")
			}
		})
	})
}

func (d *Dealer) stopNextHand() {
	if d.nextHand != nil {
		d.nextHand.Stop()
		d.nextHand = nil
	}
}

func (d *Dealer) stopTimers() {
	d.stopTurnTimer()
	d.stopNextHand()
	d.stopIdleTimer()
}
