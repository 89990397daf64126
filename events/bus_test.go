package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitTimeout(t *testing.T, wg *sync.WaitGroup) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event handlers")
	}
}

func TestTransactionalBus_Flush(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	tx := NewTransactionalBus(bus)

	var wg sync.WaitGroup
	wg.Add(1)
	received := make(chan BalanceChangedEvent, 1)
	bus.Subscribe(EventTypeBalanceChanged, func(ctx context.Context, event Event) {
		defer wg.Done()
		received <- event.(BalanceChangedEvent)
	})

	require.NoError(t, tx.Publish(BalanceChangedEvent{GuildID: 1, UserID: 2, WalletDelta: 500, Reason: ReasonWork}))
	assert.Equal(t, 1, tx.Pending())

	tx.Flush(context.Background())
	waitTimeout(t, &wg)

	ev := <-received
	assert.Equal(t, int64(500), ev.WalletDelta)
	assert.Equal(t, int64(1), ev.Guild())
	assert.Equal(t, 0, tx.Pending())
}

func TestTransactionalBus_Discard(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	tx := NewTransactionalBus(bus)

	called := make(chan struct{}, 1)
	bus.Subscribe(EventTypeCompanyCreated, func(ctx context.Context, event Event) {
		called <- struct{}{}
	})

	require.NoError(t, tx.Publish(CompanyCreatedEvent{GuildID: 1, CompanyID: "c1"}))
	tx.Discard()
	tx.Flush(context.Background())

	select {
	case <-called:
		t.Fatal("discarded event was delivered")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBus_SubscribeAll(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	var (
		mu    sync.Mutex
		types []EventType
		wg    sync.WaitGroup
	)
	wg.Add(2)
	bus.SubscribeAll(func(ctx context.Context, event Event) {
		defer wg.Done()
		mu.Lock()
		types = append(types, event.Type())
		mu.Unlock()
	})

	bus.Emit(context.Background(), StockPriceUpdatedEvent{GuildID: 1})
	bus.Emit(context.Background(), PenaltyAppliedEvent{GuildID: 1})
	waitTimeout(t, &wg)

	assert.ElementsMatch(t, []EventType{EventTypeStockPriceUpdated, EventTypePenaltyApplied}, types)
}

func TestBus_HandlerPanicIsRecovered(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	var wg sync.WaitGroup
	wg.Add(2)
	bus.Subscribe(EventTypePayrollSettled, func(ctx context.Context, event Event) {
		defer wg.Done()
		panic("boom")
	})
	bus.Subscribe(EventTypePayrollSettled, func(ctx context.Context, event Event) {
		wg.Done()
	})

	bus.Emit(context.Background(), PayrollSettledEvent{GuildID: 1})
	waitTimeout(t, &wg)
}
