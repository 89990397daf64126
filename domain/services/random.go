package services

import (
	"math/rand"

	"incoin/domain/interfaces"
)

type globalRandom struct{}

// NewRandomSource returns the process-wide pseudo random generator
func NewRandomSource() interfaces.RandomSource {
	return globalRandom{}
}

func (globalRandom) Int63n(n int64) int64 { return rand.Int63n(n) }
func (globalRandom) Float64() float64     { return rand.Float64() }

// randInt returns a uniform integer in [min, max]
func randInt(rng interfaces.RandomSource, min, max int64) int64 {
	if max <= min {
		return min
	}
	return min + rng.Int63n(max-min+1)
}

// percentOf returns floor(amount * pct / 100)
func percentOf(amount, pct int64) int64 {
	return amount * pct / 100
}
