package services

import (
	"context"
	"testing"
	"time"

	"incoin/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterestService_ApplyWeekly(t *testing.T) {
	ctx := context.Background()

	t.Run("positive credit earns three percent", func(t *testing.T) {
		f := newFixture(t)
		f.store.SeedUser(testUser1ID, 0, 10000)

		report, err := NewInterestService(f.deps).ApplyWeekly(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, report.Credited)
		assert.Equal(t, int64(300), report.TotalPaid)

		user := f.store.User(ctx, testUser1ID)
		assert.Equal(t, int64(10300), user.BankBalance)
		assert.Equal(t, testNow, user.LastInterestTime)
		assert.Len(t, f.publisher.OfType(events.EventTypeInterestApplied), 1)
	})

	t.Run("negative credit pays ten percent and loses a point", func(t *testing.T) {
		f := newFixture(t)
		user := f.store.SeedUser(testUser1ID, 0, 10000)
		user.CreditPoint = -2
		f.store.Seed(user)

		report, err := NewInterestService(f.deps).ApplyWeekly(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, report.Penalized)

		stored := f.store.User(ctx, testUser1ID)
		assert.Equal(t, int64(9000), stored.BankBalance)
		assert.Equal(t, int64(-3), stored.CreditPoint)
		assert.Equal(t, testNow, stored.LastInterestTime)
	})

	t.Run("credit decrement alone counts as an update", func(t *testing.T) {
		f := newFixture(t)
		user := f.store.SeedUser(testUser1ID, 0, 0)
		user.CreditPoint = -1
		f.store.Seed(user)

		_, err := NewInterestService(f.deps).ApplyWeekly(ctx)
		require.NoError(t, err)

		stored := f.store.User(ctx, testUser1ID)
		assert.Equal(t, int64(-2), stored.CreditPoint)
		assert.Equal(t, testNow, stored.LastInterestTime)
	})

	t.Run("zero interest leaves the timestamp alone", func(t *testing.T) {
		f := newFixture(t)
		f.store.SeedUser(testUser1ID, 0, 33)

		_, err := NewInterestService(f.deps).ApplyWeekly(ctx)
		require.NoError(t, err)

		stored := f.store.User(ctx, testUser1ID)
		assert.Equal(t, int64(33), stored.BankBalance)
		assert.True(t, stored.LastInterestTime.IsZero())
	})

	t.Run("next week is paid even when reached earlier than the week before", func(t *testing.T) {
		f := newFixture(t)
		f.store.SeedUser(testUser1ID, 0, 100000)

		f.deps.Now = func() time.Time { return testNow.Add(2 * time.Second) }
		_, err := NewInterestService(f.deps).ApplyWeekly(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(103000), f.store.User(ctx, testUser1ID).BankBalance)

		f.deps.Now = func() time.Time { return testNow.Add(7*24*time.Hour + time.Second) }
		_, err = NewInterestService(f.deps).ApplyWeekly(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(106090), f.store.User(ctx, testUser1ID).BankBalance)
	})

	t.Run("skips accounts settled within a week", func(t *testing.T) {
		f := newFixture(t)
		user := f.store.SeedUser(testUser1ID, 0, 10000)
		user.LastInterestTime = testNow.Add(-6 * 24 * time.Hour)
		f.store.Seed(user)

		_, err := NewInterestService(f.deps).ApplyWeekly(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(10000), f.store.User(ctx, testUser1ID).BankBalance)
	})

	t.Run("skips unregistered accounts", func(t *testing.T) {
		f := newFixture(t)
		user := f.store.SeedUser(testUser1ID, 0, 10000)
		user.IsRegistered = false
		f.store.Seed(user)

		report, err := NewInterestService(f.deps).ApplyWeekly(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, report.Checked)
		assert.Equal(t, int64(10000), f.store.User(ctx, testUser1ID).BankBalance)
	})
}
