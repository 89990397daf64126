package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("requires discord token outside test environment", func(t *testing.T) {
		t.Setenv("ENVIRONMENT", "production")
		t.Setenv("DISCORD_TOKEN", "")
		t.Setenv("DATABASE_URL", "postgres://localhost:5432")

		_, err := load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "DISCORD_TOKEN")
	})

	t.Run("requires database url outside test environment", func(t *testing.T) {
		t.Setenv("ENVIRONMENT", "production")
		t.Setenv("DISCORD_TOKEN", "token")
		t.Setenv("DATABASE_URL", "")

		_, err := load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "DATABASE_URL")
	})

	t.Run("applies schedule defaults", func(t *testing.T) {
		t.Setenv("ENVIRONMENT", "test")
		t.Setenv("PAYOUT_HOUR", "")
		t.Setenv("INTEREST_WEEKDAY", "")
		t.Setenv("STOCK_UPDATE_INTERVAL", "")

		cfg, err := load()
		require.NoError(t, err)
		assert.Equal(t, 21, cfg.PayoutHour)
		assert.Equal(t, time.Thursday, cfg.InterestWeekday)
		assert.Equal(t, 10*time.Minute, cfg.StockUpdateInterval)
		assert.Equal(t, "Asia/Tokyo", cfg.SettlementTimezone)
		assert.Empty(t, cfg.NATSServers)
	})

	t.Run("parses overrides", func(t *testing.T) {
		t.Setenv("ENVIRONMENT", "test")
		t.Setenv("PAYOUT_HOUR", "9")
		t.Setenv("INTEREST_WEEKDAY", "1")
		t.Setenv("STOCK_UPDATE_INTERVAL", "30s")
		t.Setenv("NATS_SERVERS", "nats://localhost:4222")

		cfg, err := load()
		require.NoError(t, err)
		assert.Equal(t, 9, cfg.PayoutHour)
		assert.Equal(t, time.Monday, cfg.InterestWeekday)
		assert.Equal(t, 30*time.Second, cfg.StockUpdateInterval)
		assert.Equal(t, "nats://localhost:4222", cfg.NATSServers)
	})

	t.Run("rejects out of range payout hour", func(t *testing.T) {
		t.Setenv("ENVIRONMENT", "test")
		t.Setenv("PAYOUT_HOUR", "24")

		_, err := load()
		require.Error(t, err)
	})
}

func TestConfig_Location(t *testing.T) {
	cfg := NewTestConfig()
	assert.Equal(t, "Asia/Tokyo", cfg.Location().String())

	cfg.SettlementTimezone = "Not/AZone"
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestSetTestConfig(t *testing.T) {
	defer ResetConfig()

	cfg := NewTestConfig()
	cfg.DiscordToken = "override"
	SetTestConfig(cfg)

	assert.Same(t, cfg, Get())
}
