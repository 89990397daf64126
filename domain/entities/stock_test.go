package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClampStockPrice(t *testing.T) {
	t.Parallel()

	assert.Equal(t, StockPriceMin, ClampStockPrice(600))
	assert.Equal(t, StockPriceMax, ClampStockPrice(1600))
	assert.Equal(t, int64(1100), ClampStockPrice(1100))
}

func TestStockRecord_RecordPrice(t *testing.T) {
	t.Parallel()

	t.Run("caps history at six points", func(t *testing.T) {
		stock := NewStockRecord(1, "c1")
		start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

		for i := 0; i < 9; i++ {
			stock.RecordPrice(int64(700+i), start.Add(time.Duration(i)*5*time.Minute))
		}

		assert.Len(t, stock.PriceHistory, StockHistoryLimit)
		assert.Equal(t, int64(708), stock.CurrentPrice)
		assert.Equal(t, int64(703), stock.PriceHistory[0].Price)
	})

	t.Run("drops points older than an hour", func(t *testing.T) {
		stock := NewStockRecord(1, "c1")
		start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

		stock.RecordPrice(900, start)
		stock.RecordPrice(950, start.Add(30*time.Minute))
		stock.RecordPrice(1000, start.Add(time.Hour))

		assert.Len(t, stock.PriceHistory, 2)
		for _, p := range stock.PriceHistory {
			assert.True(t, start.Add(time.Hour).Sub(p.Timestamp) < StockHistoryWindow)
		}
	})
}
