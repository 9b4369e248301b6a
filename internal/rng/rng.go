package rng

// Generator provides a simple random number
type Generator interface {
	// Intn will return a random number up to but not including n
	Intn(n int) int
}

// Fixed replays a fixed list of values, wrapping around when exhausted
// Each value is reduced modulo n. This is only useful for tests.
type Fixed []int

// Intn returns the next fixed value
func (f *Fixed) Intn(n int) int {
	if len(*f) == 0 {
		return 0
	}

	v := (*f)[0]
	*f = append((*f)[1:], v)

	return v % n
}
