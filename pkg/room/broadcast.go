package room

import (
	"encoding/json"

	jsonpatch "github.com/evanphx/json-patch/v5"

	"holdem-server/pkg/holdem"
	"holdem-server/pkg/protocol"
)

// clientView is the last state a client was sent
type clientView struct {
	version int64
	doc     []byte
}

// sendView sends the client its redacted view of the table
// The first view is a full snapshot. Later views are merge patches against the last view
// the client received.
func (d *Dealer) sendView(c *Client, t *holdem.Table) {
	view := Redact(t, c.OccupantID)
	doc, err := json.Marshal(view)
	if err != nil {
		d.logger.WithError(err).Error("could not encode table view")
		return
	}

	var msg *protocol.Message
	prev, ok := d.views[c]
	switch {
	case !ok:
		msg = protocol.NewTableSnapshot(view)
	case prev.version >= view.Version:
		return
	default:
		patch, err := jsonpatch.CreateMergePatch(prev.doc, doc)
		if err != nil {
			d.logger.WithError(err).Warn("could not create patch, sending snapshot")
			msg = protocol.NewTableSnapshot(view)
		} else {
			msg = protocol.NewTablePatch(view, prev.version, patch)
		}
	}

	if !c.Send(msg) {
		// the patch chain is broken, so the next view is a snapshot
		delete(d.views, c)
		d.logger.WithField("client", c.String()).Warn("client is not keeping up")
		return
	}

	d.views[c] = &clientView{version: view.Version, doc: doc}
}

// broadcast sends every client the events and its view of the table
// Events must already be redacted.
func (d *Dealer) broadcast(t *holdem.Table, events []holdem.Event) {
	started := false
	for _, ev := range events {
		if ev.Type == holdem.EventHandStarted {
			started = true
		}
	}

	timer := protocol.NewTimerUpdate(t)
	turnChanged := currentTurn(t) != d.turn

	for _, c := range d.Clients() {
		for _, ev := range events {
			c.Send(protocol.NewHandEvent(t.TableID, ev))
		}

		d.sendView(c, t)

		if started && c.OccupantID != "" {
			if seat := t.SeatByOccupant(c.OccupantID); seat != nil {
				if msg := protocol.NewHoleCards(t, seat.SeatID); msg != nil {
					c.Send(msg)
				}
			}
		}

		if turnChanged && timer != nil {
			c.Send(timer)
		}
	}
}
