package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"incoin/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockMessagePublisher struct {
	mock.Mock
}

func (m *mockMessagePublisher) Publish(ctx context.Context, subject string, data []byte) error {
	args := m.Called(ctx, subject, data)
	return args.Error(0)
}

func TestNATSEventPublisher_Publish(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2025, 6, 5, 12, 0, 0, 0, time.UTC)
	event := events.BalanceChangedEvent{
		GuildID:     123,
		UserID:      456,
		Reason:      events.ReasonWork,
		WalletDelta: 700,
		NewBalance:  1700,
	}

	t.Run("wraps the event in an envelope", func(t *testing.T) {
		client := &mockMessagePublisher{}
		var sent []byte
		client.On("Publish", ctx, "incoin.123.balance_changed", mock.Anything).
			Run(func(args mock.Arguments) { sent = args.Get(2).([]byte) }).
			Return(nil).Once()

		publisher := NewNATSEventPublisher(client, NewEventSubjectMapper())
		publisher.now = func() time.Time { return fixed }
		require.NoError(t, publisher.Publish(ctx, event))
		client.AssertExpectations(t)

		var envelope EventEnvelope
		require.NoError(t, json.Unmarshal(sent, &envelope))
		_, err := uuid.Parse(envelope.EventID)
		assert.NoError(t, err)
		assert.Equal(t, "balance_changed", envelope.EventType)
		assert.Equal(t, int64(123), envelope.GuildID)
		assert.Equal(t, fixed, envelope.Timestamp)
		assert.Equal(t, "incoin", envelope.SourceService)

		var payload events.BalanceChangedEvent
		require.NoError(t, json.Unmarshal(envelope.Payload, &payload))
		assert.Equal(t, event, payload)
	})

	t.Run("ignores a missing stream", func(t *testing.T) {
		client := &mockMessagePublisher{}
		client.On("Publish", ctx, mock.Anything, mock.Anything).Return(errors.New("nats: no response from stream")).Once()

		publisher := NewNATSEventPublisher(client, NewEventSubjectMapper())
		assert.NoError(t, publisher.Publish(ctx, event))
	})

	t.Run("reports other failures", func(t *testing.T) {
		client := &mockMessagePublisher{}
		client.On("Publish", ctx, mock.Anything, mock.Anything).Return(errors.New("connection closed")).Once()

		publisher := NewNATSEventPublisher(client, NewEventSubjectMapper())
		assert.Error(t, publisher.Publish(ctx, event))
	})
}

func TestNATSEventPublisher_Attach(t *testing.T) {
	client := &mockMessagePublisher{}
	done := make(chan struct{})
	client.On("Publish", mock.Anything, "incoin.1.company_deleted", mock.Anything).
		Run(func(mock.Arguments) { close(done) }).
		Return(nil).Once()

	bus := events.NewBus()
	NewNATSEventPublisher(client, NewEventSubjectMapper()).Attach(bus)
	bus.Emit(context.Background(), events.CompanyDeletedEvent{GuildID: 1, CompanyID: "c1"})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("event was not forwarded")
	}
}
