package protocol

import (
	"holdem-server/pkg/holdem"
)

// inbound actions
const (
	ActionStartHand = "startHand"
	ActionPlay      = "play"
	ActionJoinSeat  = "joinSeat"
	ActionLeaveSeat = "leaveSeat"
	ActionRefresh   = "refresh"
)

// PayloadIn is the format we expect from the client
//
// For ActionPlay the subject is the action type (fold, check, call, bet, raise) and
// bets and raises carry an "amount". ActionJoinSeat carries "seatId", "buyIn" and "buyInKey".
type PayloadIn struct {
	Action         string         `json:"action"`
	Subject        string         `json:"subject"`
	AdditionalData AdditionalData `json:"additionalData"`
	// Context will be passed back on any outgoing message
	Context string `json:"context"`
}

// HoldemAction parses a play payload
func (p *PayloadIn) HoldemAction() (holdem.Action, error) {
	var amount *int
	if v, ok := p.AdditionalData.GetInt("amount"); ok {
		amount = &v
	}

	return holdem.ParseAction(p.Subject, amount)
}

// JoinRequest is a parsed join payload
type JoinRequest struct {
	SeatID   int
	BuyIn    int
	BuyInKey string
}

// JoinRequest parses a join payload
// A missing seat is reported as seat_missing and a negative buy-in as invalid_amount.
func (p *PayloadIn) JoinRequest() (JoinRequest, error) {
	seatID, ok := p.AdditionalData.GetInt("seatId")
	if !ok {
		return JoinRequest{}, holdem.ErrSeatMissing
	}

	buyIn, _ := p.AdditionalData.GetInt("buyIn")
	if buyIn < 0 {
		return JoinRequest{}, holdem.ErrInvalidAmount
	}

	key, _ := p.AdditionalData.GetString("buyInKey")
	return JoinRequest{
		SeatID:   seatID,
		BuyIn:    buyIn,
		BuyInKey: key,
	}, nil
}

// AdditionalData provides additional data in a payload
type AdditionalData map[string]interface{}

// GetString returns a string for the given key
func (a AdditionalData) GetString(key string) (string, bool) {
	s, ok := a[key].(string)
	return s, ok
}

// GetInt returns an integer value for the given key
func (a AdditionalData) GetInt(key string) (int, bool) {
	switch v := a[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	}

	return 0, false
}

// GetBool returns a boolean value for the given key
func (a AdditionalData) GetBool(key string) (bool, bool) {
	boolVal, ok := a[key].(bool)
	if !ok {
		return false, false
	}

	return boolVal, true
}
