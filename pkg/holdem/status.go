package holdem

import "fmt"

// Street is the stage of a hand
// Streets only move forward.
type Street int

// Street constants
const (
	Preflop Street = iota
	Flop
	Turn
	River
	Showdown
	Ended
)

var streetNames = []string{"preflop", "flop", "turn", "river", "showdown", "ended"}

func (s Street) String() string {
	if s < 0 || int(s) >= len(streetNames) {
		return fmt.Sprintf("street(%d)", int(s))
	}

	return streetNames[s]
}

// IsBetting returns true if the street has a betting round
func (s Street) IsBetting() bool {
	return s >= Preflop && s <= River
}

// MarshalText encodes the street by name
func (s Street) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a street by name
func (s *Street) UnmarshalText(b []byte) error {
	i, err := indexOf(streetNames, string(b))
	if err != nil {
		return fmt.Errorf("unknown street: %w", err)
	}

	*s = Street(i)
	return nil
}

// SeatStatus is the status of a seat
type SeatStatus int

// SeatStatus constants
const (
	SeatEmpty SeatStatus = iota
	SeatActive
	SeatFolded
	SeatAllIn
	SeatDisconnected
	SeatSpectator
)

var seatStatusNames = []string{"empty", "active", "folded", "all_in", "disconnected", "spectator"}

func (s SeatStatus) String() string {
	if s < 0 || int(s) >= len(seatStatusNames) {
		return fmt.Sprintf("status(%d)", int(s))
	}

	return seatStatusNames[s]
}

// MarshalText encodes the status by name
func (s SeatStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status by name
func (s *SeatStatus) UnmarshalText(b []byte) error {
	i, err := indexOf(seatStatusNames, string(b))
	if err != nil {
		return fmt.Errorf("unknown seat status: %w", err)
	}

	*s = SeatStatus(i)
	return nil
}

// TableStatus is whether the table is between hands or not
type TableStatus int

// TableStatus constants
const (
	TableLobby TableStatus = iota
	TableInHand
)

var tableStatusNames = []string{"lobby", "in_hand"}

func (s TableStatus) String() string {
	if s < 0 || int(s) >= len(tableStatusNames) {
		return fmt.Sprintf("table(%d)", int(s))
	}

	return tableStatusNames[s]
}

// MarshalText encodes the status by name
func (s TableStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status by name
func (s *TableStatus) UnmarshalText(b []byte) error {
	i, err := indexOf(tableStatusNames, string(b))
	if err != nil {
		return fmt.Errorf("unknown table status: %w", err)
	}

	*s = TableStatus(i)
	return nil
}

func indexOf(names []string, name string) (int, error) {
	for i, n := range names {
		if n == name {
			return i, nil
		}
	}

	return 0, fmt.Errorf("%q", name)
}
