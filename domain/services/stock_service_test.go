package services

import (
	"context"
	"testing"
	"time"

	"incoin/domain/entities"
	"incoin/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStockService_UpdatePrices(t *testing.T) {
	ctx := context.Background()

	t.Run("initializes a fresh stock in the band", func(t *testing.T) {
		f := newFixture(t)
		f.seedCompany("c1", "Acme", testUser1ID, 0, 0)
		f.store.Seed(entities.NewStockRecord(testGuildID, "c1"))
		f.random.Ints = []int64{350}

		report, err := NewStockService(f.deps).UpdatePrices(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, report.Updated)

		stock := f.store.Stock(ctx, "c1")
		assert.Equal(t, int64(1000), stock.CurrentPrice)
		assert.Equal(t, testNow, stock.LastUpdateTime)
		assert.Len(t, stock.PriceHistory, 1)
	})

	t.Run("clamps the final price to the ceiling", func(t *testing.T) {
		f := newFixture(t)
		f.seedCompany("c1", "Acme", testUser1ID, 0, 0)
		stock := entities.NewStockRecord(testGuildID, "c1")
		stock.RecordPrice(1480, testNow.Add(-10*time.Minute))
		f.store.Seed(stock)
		f.random.Ints = []int64{200} // -100 + 200 = +100

		_, err := NewStockService(f.deps).UpdatePrices(ctx)
		require.NoError(t, err)
		assert.Equal(t, entities.StockPriceMax, f.store.Stock(ctx, "c1").CurrentPrice)
	})

	t.Run("clamps the final price to the floor", func(t *testing.T) {
		f := newFixture(t)
		f.seedCompany("c1", "Acme", testUser1ID, 0, 0)
		stock := entities.NewStockRecord(testGuildID, "c1")
		stock.RecordPrice(700, testNow.Add(-10*time.Minute))
		f.store.Seed(stock)
		f.random.Ints = []int64{0} // -100

		_, err := NewStockService(f.deps).UpdatePrices(ctx)
		require.NoError(t, err)
		assert.Equal(t, entities.StockPriceMin, f.store.Stock(ctx, "c1").CurrentPrice)

		evs := f.publisher.OfType(events.EventTypeStockPriceUpdated)
		require.Len(t, evs, 1)
		assert.Equal(t, int64(700), evs[0].(events.StockPriceUpdatedEvent).OldPrice)
	})

	t.Run("keeps at most six points from the last hour", func(t *testing.T) {
		f := newFixture(t)
		f.seedCompany("c1", "Acme", testUser1ID, 0, 0)
		stock := entities.NewStockRecord(testGuildID, "c1")
		for i := 8; i >= 1; i-- {
			stock.RecordPrice(1000, testNow.Add(-time.Duration(i)*9*time.Minute))
		}
		f.store.Seed(stock)
		f.random.Ints = []int64{100}

		_, err := NewStockService(f.deps).UpdatePrices(ctx)
		require.NoError(t, err)

		updated := f.store.Stock(ctx, "c1")
		require.Len(t, updated.PriceHistory, entities.StockHistoryLimit)
		assert.Equal(t, testNow, updated.PriceHistory[len(updated.PriceHistory)-1].Timestamp)
		for _, p := range updated.PriceHistory {
			assert.True(t, p.Timestamp.After(testNow.Add(-time.Hour)))
		}
	})

	t.Run("removes stocks of deleted companies", func(t *testing.T) {
		f := newFixture(t)
		orphan := entities.NewStockRecord(testGuildID, "gone")
		orphan.RecordPrice(900, testNow)
		f.store.Seed(orphan)

		report, err := NewStockService(f.deps).UpdatePrices(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"gone"}, report.Removed)
		stocks, _ := f.store.Stocks(ctx)
		assert.Empty(t, stocks)
	})
}

func TestStockService_Trading(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedCompany("c1", "Acme", testUser1ID, 0, 0)
	f.store.SeedUser(testUser2ID, 5000, 0)
	market := NewStockService(f.deps)

	_, err := market.Buy(ctx, testUser2ID, "acme", 6)
	_, ok := AsRuleError(err)
	assert.True(t, ok, "6 shares at 1000 exceed the wallet")

	trade, err := market.Buy(ctx, testUser2ID, "acme", 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), trade.Total)
	assert.Equal(t, int64(3), trade.Holding)
	assert.Equal(t, int64(2000), f.store.User(ctx, testUser2ID).Balance)

	_, err = market.Sell(ctx, testUser2ID, "Acme", 4)
	_, ok = AsRuleError(err)
	assert.True(t, ok)

	trade, err = market.Sell(ctx, testUser2ID, "Acme", 3)
	require.NoError(t, err)
	assert.Equal(t, int64(0), trade.Holding)
	user := f.store.User(ctx, testUser2ID)
	assert.Equal(t, int64(5000), user.Balance)
	assert.NotContains(t, user.Stocks, "c1")

	_, err = market.Buy(ctx, testUser2ID, "Nope", 1)
	_, ok = AsRuleError(err)
	assert.True(t, ok)
}

func TestStockService_GrantRevoke(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedCompany("c1", "Acme", testUser1ID, 0, 0)
	market := NewStockService(f.deps)

	result, err := market.Grant(ctx, testUser2ID, "Acme", 10)
	require.NoError(t, err)
	assert.Equal(t, int64(10), result.Holding)

	_, err = market.Revoke(ctx, testUser2ID, "Acme", 11)
	_, ok := AsRuleError(err)
	assert.True(t, ok)

	result, err = market.Revoke(ctx, testUser2ID, "Acme", 4)
	require.NoError(t, err)
	assert.Equal(t, int64(6), result.Holding)
	assert.Equal(t, int64(4), result.Amount)
}
