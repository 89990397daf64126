package testhelpers

import (
	"context"
	"sync"

	"incoin/events"

	"github.com/stretchr/testify/mock"
)

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}

// MockNotifier is a mock implementation of Notifier for testing
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) DirectMessage(ctx context.Context, userID int64, title, body string) error {
	args := m.Called(ctx, userID, title, body)
	return args.Error(0)
}

// RecordingPublisher keeps every published event
type RecordingPublisher struct {
	mu     sync.Mutex
	Events []events.Event
}

func (r *RecordingPublisher) Publish(event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, event)
	return nil
}

// OfType returns the recorded events of one type
func (r *RecordingPublisher) OfType(t events.EventType) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []events.Event
	for _, e := range r.Events {
		if e.Type() == t {
			out = append(out, e)
		}
	}
	return out
}

// ScriptedRandom replays fixed values. Int63n answers are clamped into [0, n).
type ScriptedRandom struct {
	Ints   []int64
	Floats []float64
}

func (r *ScriptedRandom) Int63n(n int64) int64 {
	if len(r.Ints) == 0 {
		return 0
	}
	v := r.Ints[0]
	r.Ints = r.Ints[1:]
	if v < 0 {
		return 0
	}
	if v >= n {
		return n - 1
	}
	return v
}

func (r *ScriptedRandom) Float64() float64 {
	if len(r.Floats) == 0 {
		return 0
	}
	v := r.Floats[0]
	r.Floats = r.Floats[1:]
	return v
}
