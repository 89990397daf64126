package entities

import (
	"sort"
	"time"
)

const (
	StockPriceMin     int64 = 650
	StockPriceMax     int64 = 1500
	StockDefaultPrice int64 = 1000

	// StockMaxDelta bounds a single random-walk step
	StockMaxDelta int64 = 100

	StockHistoryWindow = time.Hour
	StockHistoryLimit  = 6
)

// PricePoint is one entry in a stock's price history
type PricePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Price     int64     `json:"price"`
}

// StockRecord is the synthetic stock of one company
type StockRecord struct {
	GuildID   int64  `json:"-"`
	CompanyID string `json:"-"`

	CurrentPrice   int64        `json:"current_price"`
	PriceHistory   []PricePoint `json:"price_history"`
	LastUpdateTime time.Time    `json:"last_update_time"`

	SchemaVersion int `json:"-"`
}

// NewStockRecord returns the default stock record of a company
func NewStockRecord(guildID int64, companyID string) *StockRecord {
	return &StockRecord{
		GuildID:       guildID,
		CompanyID:     companyID,
		CurrentPrice:  StockDefaultPrice,
		PriceHistory:  []PricePoint{},
		SchemaVersion: CurrentSchemaVersion,
	}
}

// IsInitialized reports whether the price has been set by an update
func (s *StockRecord) IsInitialized() bool {
	return !s.LastUpdateTime.IsZero() && s.CurrentPrice > 0
}

// ClampStockPrice keeps a price inside the allowed trading band
func ClampStockPrice(price int64) int64 {
	if price < StockPriceMin {
		return StockPriceMin
	}
	if price > StockPriceMax {
		return StockPriceMax
	}
	return price
}

// RecordPrice sets the current price and appends it to the history, keeping
// only points from the last hour and at most StockHistoryLimit of them
func (s *StockRecord) RecordPrice(price int64, now time.Time) {
	s.CurrentPrice = price
	s.LastUpdateTime = now

	history := append(s.PriceHistory, PricePoint{Timestamp: now, Price: price})
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].Timestamp.Before(history[j].Timestamp)
	})

	cutoff := now.Add(-StockHistoryWindow)
	kept := make([]PricePoint, 0, len(history))
	for _, p := range history {
		if p.Timestamp.After(cutoff) {
			kept = append(kept, p)
		}
	}
	if len(kept) > StockHistoryLimit {
		kept = kept[len(kept)-StockHistoryLimit:]
	}
	s.PriceHistory = kept
}

// Clone returns a deep copy
func (s *StockRecord) Clone() *StockRecord {
	if s == nil {
		return nil
	}
	cp := *s
	cp.PriceHistory = append([]PricePoint(nil), s.PriceHistory...)
	return &cp
}
