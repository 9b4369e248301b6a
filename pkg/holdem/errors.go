package holdem

// RuleError is a deterministic rejection of an operation
// The value is the reason code reported to the caller.
type RuleError string

func (r RuleError) Error() string {
	return string(r)
}

// Reason returns the reason code
func (r RuleError) Reason() string {
	return string(r)
}

// rule rejections
const (
	ErrNotYourTurn      = RuleError("not_your_turn")
	ErrSeatMissing      = RuleError("seat_missing")
	ErrIllegalAction    = RuleError("illegal_action")
	ErrInvalidAmount    = RuleError("invalid_amount")
	ErrAmountTooSmall   = RuleError("amount_too_small")
	ErrAmountTooLarge   = RuleError("amount_too_large")
	ErrSeatInactive     = RuleError("seat_inactive")
	ErrHandComplete     = RuleError("hand_complete")
	ErrHandInProgress   = RuleError("hand_in_progress")
	ErrNotEnoughPlayers = RuleError("not_enough_players")
)

// resource rejections
const (
	ErrSeatUnavailable = RuleError("seat_unavailable")
	ErrAlreadySeated   = RuleError("already_seated")
	ErrMissingTable    = RuleError("missing_table")
	ErrNotSeated       = RuleError("not_seated")
)
