package interfaces

import (
	"context"

	"incoin/events"
)

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event) error
}

// Notifier delivers best-effort direct messages to guild members
type Notifier interface {
	DirectMessage(ctx context.Context, userID int64, title, body string) error
}

// RandomSource is the randomness used by economy rules
type RandomSource interface {
	// Int63n returns a uniform value in [0, n)
	Int63n(n int64) int64
	// Float64 returns a uniform value in [0, 1)
	Float64() float64
}
