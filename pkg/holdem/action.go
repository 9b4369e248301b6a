package holdem

import (
	"encoding/json"
	"fmt"
)

// ActionType identifies a kind of action
type ActionType string

// ActionType constants
const (
	ActionFold  ActionType = "fold"
	ActionCheck ActionType = "check"
	ActionCall  ActionType = "call"
	ActionBet   ActionType = "bet"
	ActionRaise ActionType = "raise"
)

// Action is a decision submitted by a seat
// The set of variants is closed: Fold, Check, Call, Bet, and Raise.
type Action interface {
	Type() ActionType
	isAction()
}

// Fold gives up the hand
type Fold struct{}

// Check passes without adding chips
type Check struct{}

// Call matches the current bet, or goes all-in for less
type Call struct{}

// Bet opens the betting on a street
type Bet struct {
	Amount int
}

// Raise increases the current bet to To, the seat's total for the street
type Raise struct {
	To int
}

// Type returns ActionFold
func (Fold) Type() ActionType { return ActionFold }

// Type returns ActionCheck
func (Check) Type() ActionType { return ActionCheck }

// Type returns ActionCall
func (Call) Type() ActionType { return ActionCall }

// Type returns ActionBet
func (Bet) Type() ActionType { return ActionBet }

// Type returns ActionRaise
func (Raise) Type() ActionType { return ActionRaise }

func (Fold) isAction()  {}
func (Check) isAction() {}
func (Call) isAction()  {}
func (Bet) isAction()   {}
func (Raise) isAction() {}

// ParseAction builds an action from its wire form
// amount is required for a bet or raise and ignored otherwise.
func ParseAction(name string, amount *int) (Action, error) {
	switch ActionType(name) {
	case ActionFold:
		return Fold{}, nil
	case ActionCheck:
		return Check{}, nil
	case ActionCall:
		return Call{}, nil
	case ActionBet:
		if amount == nil {
			return nil, ErrInvalidAmount
		}

		return Bet{Amount: *amount}, nil
	case ActionRaise:
		if amount == nil {
			return nil, ErrInvalidAmount
		}

		return Raise{To: *amount}, nil
	}

	return nil, ErrIllegalAction
}

// actionAmount returns the amount carried by a bet or raise
func actionAmount(a Action) (int, bool) {
	switch v := a.(type) {
	case Bet:
		return v.Amount, true
	case Raise:
		return v.To, true
	}

	return 0, false
}

// LogMessage describes the action for a hand history
func (r ActionRecord) LogMessage() string {
	var msg string
	switch r.Type {
	case ActionFold:
		msg = "folded"
	case ActionCheck:
		msg = "checked"
	case ActionCall:
		msg = fmt.Sprintf("called %d", r.Amount)
	case ActionBet:
		msg = fmt.Sprintf("bet %d", r.Amount)
	case ActionRaise:
		msg = fmt.Sprintf("raised to %d", r.Amount)
	}

	if r.AllIn {
		msg += " and is all-in"
	}

	return msg
}

// LegalAction is an action a seat may take, with bounds for its amount
type LegalAction struct {
	Type ActionType `json:"type"`
	Min  int        `json:"min,omitempty"`
	Max  int        `json:"max,omitempty"`
}

// actionJSON is the wire form of an action
type actionJSON struct {
	Type   ActionType `json:"type"`
	Amount *int       `json:"amount,omitempty"`
}

// MarshalAction encodes an action as {"type":"raise","amount":40}
func MarshalAction(a Action) ([]byte, error) {
	v := actionJSON{Type: a.Type()}
	if amount, ok := actionAmount(a); ok {
		v.Amount = &amount
	}

	return json.Marshal(v)
}

// UnmarshalAction decodes an action written by MarshalAction
func UnmarshalAction(b []byte) (Action, error) {
	var v actionJSON
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, err
	}

	return ParseAction(string(v.Type), v.Amount)
}
