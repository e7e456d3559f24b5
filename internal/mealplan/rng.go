package mealplan

import (
	"math/rand"
	"time"
)

// NewRand returns a random source for Plan. A zero seed draws one from the
// clock; any other value makes the plan reproducible.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}
