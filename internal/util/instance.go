package util

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var adjectives = []string{
	"fast", "slow", "quick", "speedy", "trotting", "weaving", "gracious", "healthy", "happy", "funny",
	"red", "blue", "green", "orange", "purple", "fuzzy", "smiling", "tall", "grand", "prime",
}

var animals = []string{
	"dog", "cat", "mouse", "alligator", "shark", "hippo", "giraffe", "antelope", "lion", "tiger",
	"bear", "muskrat", "otter", "dolphin", "hedgehog", "lizard", "okapi", "eagle", "wolf", "panda",
}

// NewInstanceID returns a unique, human-readable identifier for a server process
// The format is <adjective>-<animal>-<8 hex chars>, e.g., happy-otter-1f0c9a2b
func NewInstanceID() string {
	u := uuid.New()

	adjective := adjectives[int(u[0])%len(adjectives)]
	animal := animals[int(u[1])%len(animals)]
	suffix := strings.ReplaceAll(u.String(), "-", "")[:8]

	return fmt.Sprintf("%s-%s-%s", adjective, animal, suffix)
}
