package services

import (
	"context"
	"testing"
	"time"

	"incoin/domain/entities"
	"incoin/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestPayrollService_SettleDaily(t *testing.T) {
	ctx := context.Background()

	t.Run("solvent company pays every member", func(t *testing.T) {
		f := newFixture(t)
		f.allowNotifications()
		f.seedCompany("c1", "Acme", testUser1ID, 1000, 1000000, testUser2ID)

		report, err := NewPayrollService(f.deps).SettleDaily(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"c1"}, report.Paid)
		assert.Empty(t, report.Bankrupt)

		company := f.store.Company(ctx, "c1")
		assert.Equal(t, int64(1000000-302000), company.Budget)
		assert.Equal(t, testNow, company.LastPayoutTime)
		assert.Equal(t, int64(1000), f.store.User(ctx, testUser1ID).Balance)
		assert.Equal(t, int64(1000), f.store.User(ctx, testUser2ID).Balance)

		settled := f.publisher.OfType(events.EventTypePayrollSettled)
		require.Len(t, settled, 1)
		assert.Equal(t, int64(302000), settled[0].(events.PayrollSettledEvent).MaintenanceFee)
		f.notifier.AssertNumberOfCalls(t, "DirectMessage", 2)
	})

	t.Run("insolvent company is dissolved without payout", func(t *testing.T) {
		f := newFixture(t)
		f.seedCompany("c1", "Acme", testUser1ID, 1000, 5000, testUser2ID, testUser3ID)
		f.notifier.On("DirectMessage", mock.Anything, testUser1ID, "会社倒産のお知らせ", mock.Anything).Return(nil).Once()
		f.notifier.On("DirectMessage", mock.Anything, testUser2ID, "会社解散のお知らせ", mock.Anything).Return(nil).Once()
		f.notifier.On("DirectMessage", mock.Anything, testUser3ID, "会社解散のお知らせ", mock.Anything).Return(nil).Once()

		report, err := NewPayrollService(f.deps).SettleDaily(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"c1"}, report.Bankrupt)

		assert.Nil(t, f.store.Company(ctx, "c1"))
		for _, id := range []int64{testUser1ID, testUser2ID, testUser3ID} {
			u := f.store.User(ctx, id)
			assert.Empty(t, u.CompanyID)
			assert.Equal(t, entities.JobUnemployed, u.Job)
			assert.Equal(t, int64(0), u.Balance, "no partial payout")
		}

		deleted := f.publisher.OfType(events.EventTypeCompanyDeleted)
		require.Len(t, deleted, 1)
		assert.True(t, deleted[0].(events.CompanyDeletedEvent).Bankrupt)
		f.notifier.AssertExpectations(t)
	})

	t.Run("budget must cover fee plus payout", func(t *testing.T) {
		f := newFixture(t)
		f.allowNotifications()
		// fee 302000 + payout 2000 = 304000
		f.seedCompany("c1", "Acme", testUser1ID, 1000, 303999, testUser2ID)

		report, err := NewPayrollService(f.deps).SettleDaily(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"c1"}, report.Bankrupt)
	})

	t.Run("next day is paid even when reached earlier than the day before", func(t *testing.T) {
		f := newFixture(t)
		f.allowNotifications()
		f.seedCompany("c1", "Acme", testUser1ID, 1000, 1000000, testUser2ID)

		f.deps.Now = func() time.Time { return testNow.Add(500 * time.Millisecond) }
		day1, err := NewPayrollService(f.deps).SettleDaily(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"c1"}, day1.Paid)

		f.deps.Now = func() time.Time { return testNow.Add(24*time.Hour + 300*time.Millisecond) }
		day2, err := NewPayrollService(f.deps).SettleDaily(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"c1"}, day2.Paid)
		assert.Equal(t, int64(2000), f.store.User(ctx, testUser2ID).Balance)
	})

	t.Run("skips companies paid within the last day", func(t *testing.T) {
		f := newFixture(t)
		company := f.seedCompany("c1", "Acme", testUser1ID, 1000, 1000000)
		company.LastPayoutTime = testNow.Add(-23 * time.Hour)
		f.store.Seed(company)

		report, err := NewPayrollService(f.deps).SettleDaily(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, report.Checked)
		assert.Empty(t, report.Paid)
		assert.Equal(t, int64(1000000), f.store.Company(ctx, "c1").Budget)
	})
}
