package protocol

import (
	"encoding/json"
	"errors"
	"time"

	"holdem-server/pkg/deck"
	"holdem-server/pkg/holdem"
)

// Key identifies an outbound message
type Key string

// outbound message keys
const (
	KeyTableSnapshot Key = "TableSnapshot"
	KeyTablePatch    Key = "TablePatch"
	KeyHoleCards     Key = "HoleCards"
	KeyTimerUpdate   Key = "TimerUpdate"
	KeyHandEvent     Key = "HandEvent"
	KeyResponse      Key = "Response"
	// KeyError is an infrastructure failure, never a rule rejection
	KeyError Key = "Error"
)

// ReasonUnavailable is sent when the table could not be loaded or persisted
const ReasonUnavailable = "unavailable"

// Message is the envelope for everything sent to a client
type Message struct {
	Key     Key         `json:"key"`
	TableID string      `json:"tableId"`
	HandID  string      `json:"handId,omitempty"`
	Data    interface{} `json:"data"`
	Context string      `json:"context,omitempty"`
}

// Patch is a JSON merge patch between two versions of a client's view
type Patch struct {
	FromVersion int64           `json:"fromVersion"`
	ToVersion   int64           `json:"toVersion"`
	Patch       json.RawMessage `json:"patch"`
}

// HoleCards are the private cards of the recipient's seat
type HoleCards struct {
	SeatID int       `json:"seatId"`
	Cards  deck.Hand `json:"cards"`
}

// TimerUpdate announces the seat on the clock
type TimerUpdate struct {
	SeatID   int        `json:"seatId"`
	TurnSeq  int        `json:"turnSeq"`
	Deadline *time.Time `json:"deadline"`
}

// HandEvent is an audit record of a hand
type HandEvent struct {
	Type     holdem.EventType     `json:"type"`
	Action   *holdem.ActionRecord `json:"action,omitempty"`
	Message  string               `json:"message,omitempty"`
	Result   *holdem.HandResult   `json:"result,omitempty"`
	Snapshot *holdem.Table        `json:"snapshot"`
}

// Response answers an inbound operation
type Response struct {
	Accepted bool          `json:"accepted"`
	Reason   string        `json:"reason,omitempty"`
	Table    *holdem.Table `json:"table,omitempty"`
	// Data holds operation specific details, such as a cashed out stack
	Data interface{} `json:"data,omitempty"`
}

// Failure describes an infrastructure failure
type Failure struct {
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

func handID(t *holdem.Table) string {
	if t != nil && t.Hand != nil {
		return t.Hand.HandID
	}

	return ""
}

// NewTableSnapshot returns a full-state message
// The table must already be redacted for the recipient.
func NewTableSnapshot(t *holdem.Table) *Message {
	return &Message{
		Key:     KeyTableSnapshot,
		TableID: t.TableID,
		HandID:  handID(t),
		Data:    t,
	}
}

// NewTablePatch returns a delta message
func NewTablePatch(t *holdem.Table, fromVersion int64, patch []byte) *Message {
	return &Message{
		Key:     KeyTablePatch,
		TableID: t.TableID,
		HandID:  handID(t),
		Data: Patch{
			FromVersion: fromVersion,
			ToVersion:   t.Version,
			Patch:       patch,
		},
	}
}

// NewHoleCards returns the private cards of a seat, or nil if the seat was not dealt in
func NewHoleCards(t *holdem.Table, seatID int) *Message {
	if t.Hand == nil {
		return nil
	}

	cards, ok := t.Hand.HoleCards[seatID]
	if !ok {
		return nil
	}

	return &Message{
		Key:     KeyHoleCards,
		TableID: t.TableID,
		HandID:  t.Hand.HandID,
		Data: HoleCards{
			SeatID: seatID,
			Cards:  cards.Clone(),
		},
	}
}

// NewTimerUpdate returns the current turn, or nil if nobody is on the clock
func NewTimerUpdate(t *holdem.Table) *Message {
	h := t.Hand
	if h == nil || !h.Street.IsBetting() || h.CurrentTurnSeat == holdem.NoSeat {
		return nil
	}

	var deadline *time.Time
	if h.TurnDeadline != nil {
		d := *h.TurnDeadline
		deadline = &d
	}

	return &Message{
		Key:     KeyTimerUpdate,
		TableID: t.TableID,
		HandID:  h.HandID,
		Data: TimerUpdate{
			SeatID:   h.CurrentTurnSeat,
			TurnSeq:  h.TurnSeq,
			Deadline: deadline,
		},
	}
}

// NewHandEvent wraps a redacted engine event
func NewHandEvent(tableID string, ev holdem.Event) *Message {
	data := HandEvent{
		Type:     ev.Type,
		Action:   ev.Action,
		Result:   ev.Result,
		Snapshot: ev.Table,
	}

	if ev.Action != nil {
		data.Message = ev.Action.LogMessage()
	}

	return &Message{
		Key:     KeyHandEvent,
		TableID: tableID,
		HandID:  ev.HandID,
		Data:    data,
	}
}

// NewResponse answers an operation
// A nil error is accepted, a holdem.RuleError is rejected with its reason, and any
// other error is reported as an infrastructure failure under KeyError.
func NewResponse(tableID, ctx string, t *holdem.Table, data interface{}, err error) *Message {
	msg := &Message{
		Key:     KeyResponse,
		TableID: tableID,
		HandID:  handID(t),
		Context: ctx,
	}

	if err == nil {
		msg.Data = Response{Accepted: true, Table: t, Data: data}
		return msg
	}

	var ruleErr holdem.RuleError
	if errors.As(err, &ruleErr) {
		msg.Data = Response{Reason: ruleErr.Reason(), Table: t}
		return msg
	}

	msg.Key = KeyError
	msg.Data = Failure{
		Reason:  ReasonUnavailable,
		Message: err.Error(),
	}

	return msg
}

// IsAccepted returns true if the message is an accepted response
func (m *Message) IsAccepted() bool {
	res, ok := m.Data.(Response)
	return ok && m.Key == KeyResponse && res.Accepted
}
