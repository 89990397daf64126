package services

import (
	"context"
	"errors"
	"testing"

	"incoin/domain/entities"
	"incoin/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestPenaltyService_Apply(t *testing.T) {
	ctx := context.Background()

	t.Run("takes from bank first then wallet", func(t *testing.T) {
		f := newFixture(t)
		user := f.store.SeedUser(testUser1ID, 500, 1000)
		user.CreditPoint = -1
		f.store.Seed(user)
		f.random.Ints = []int64{5} // 75 + 5 = 80%
		f.notifier.On("DirectMessage", mock.Anything, testUser1ID, mock.Anything, mock.Anything).Return(nil).Once()

		result, err := NewPenaltyService(f.deps).Apply(ctx, testUser1ID)
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.Equal(t, int64(80), result.Percentage)
		assert.Equal(t, int64(1000), result.FromBank)
		assert.Equal(t, int64(200), result.FromWallet)

		stored := f.store.User(ctx, testUser1ID)
		assert.Equal(t, int64(0), stored.BankBalance)
		assert.Equal(t, int64(300), stored.Balance)
		assert.Equal(t, entities.PenaltyCreditPoint, stored.CreditPoint)
		assert.True(t, stored.PunishedForNegativeCredit)

		assert.Len(t, f.publisher.OfType(events.EventTypePenaltyApplied), 1)
		f.notifier.AssertExpectations(t)
	})

	t.Run("applies once per excursion", func(t *testing.T) {
		f := newFixture(t)
		user := f.store.SeedUser(testUser1ID, 1000, 0)
		user.CreditPoint = -3
		user.PunishedForNegativeCredit = true
		f.store.Seed(user)

		result, err := NewPenaltyService(f.deps).Apply(ctx, testUser1ID)
		require.NoError(t, err)
		assert.Nil(t, result)
		assert.Equal(t, int64(1000), f.store.User(ctx, testUser1ID).Balance)
		f.notifier.AssertNotCalled(t, "DirectMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("recovery rearms the penalty", func(t *testing.T) {
		f := newFixture(t)
		f.allowNotifications()
		user := f.store.SeedUser(testUser1ID, 1000, 0)
		user.CreditPoint = -10
		user.PunishedForNegativeCredit = true
		user.AddCreditPoint(11)
		user.AddCreditPoint(-2)
		f.store.Seed(user)
		f.random.Ints = []int64{0}

		result, err := NewPenaltyService(f.deps).Apply(ctx, testUser1ID)
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.Equal(t, int64(750), result.FromWallet)
	})

	t.Run("skips empty accounts", func(t *testing.T) {
		f := newFixture(t)
		user := f.store.SeedUser(testUser1ID, 0, 0)
		user.CreditPoint = -1
		f.store.Seed(user)

		result, err := NewPenaltyService(f.deps).Apply(ctx, testUser1ID)
		require.NoError(t, err)
		assert.Nil(t, result)
		assert.False(t, f.store.User(ctx, testUser1ID).PunishedForNegativeCredit)
	})

	t.Run("skips non negative credit", func(t *testing.T) {
		f := newFixture(t)
		f.store.SeedUser(testUser1ID, 1000, 1000)

		result, err := NewPenaltyService(f.deps).Apply(ctx, testUser1ID)
		require.NoError(t, err)
		assert.Nil(t, result)
	})

	t.Run("notification failure is swallowed", func(t *testing.T) {
		f := newFixture(t)
		user := f.store.SeedUser(testUser1ID, 100, 0)
		user.CreditPoint = -1
		f.store.Seed(user)
		f.notifier.On("DirectMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("dm closed"))

		result, err := NewPenaltyService(f.deps).Apply(ctx, testUser1ID)
		require.NoError(t, err)
		assert.NotNil(t, result)
	})
}
