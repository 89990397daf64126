package services

import (
	"context"
	"testing"

	"incoin/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testChannelID = int64(4242)

func TestChatRewardService_Configure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	rewards := NewChatRewardService(f.deps)

	_, err := rewards.Configure(ctx, testChannelID, 10, 5)
	_, ok := AsRuleError(err)
	assert.True(t, ok)

	_, err = rewards.Configure(ctx, testChannelID, -1, 5)
	_, ok = AsRuleError(err)
	assert.True(t, ok)

	reward, err := rewards.Configure(ctx, testChannelID, 0, 50)
	require.NoError(t, err)
	assert.True(t, reward.IsActive())
	assert.Equal(t, int64(50), f.store.ChannelReward(ctx, testChannelID).Max)
}

func TestChatRewardService_Reward(t *testing.T) {
	ctx := context.Background()

	t.Run("pays within the configured range", func(t *testing.T) {
		f := newFixture(t)
		f.store.SeedUser(testUser1ID, 0, 0)
		f.store.Seed(entities.NewChannelReward(testGuildID, testChannelID, 10, 20))
		f.random.Ints = []int64{5}

		earned, err := NewChatRewardService(f.deps).Reward(ctx, testChannelID, testUser1ID)
		require.NoError(t, err)
		assert.Equal(t, int64(15), earned)
		assert.Equal(t, int64(15), f.store.User(ctx, testUser1ID).Balance)
	})

	t.Run("negative credit keeps thirty percent", func(t *testing.T) {
		f := newFixture(t)
		user := f.store.SeedUser(testUser1ID, 0, 0)
		user.CreditPoint = -1
		f.store.Seed(user, entities.NewChannelReward(testGuildID, testChannelID, 100, 100))

		earned, err := NewChatRewardService(f.deps).Reward(ctx, testChannelID, testUser1ID)
		require.NoError(t, err)
		assert.Equal(t, int64(30), earned)
	})

	t.Run("unconfigured channel pays nothing", func(t *testing.T) {
		f := newFixture(t)
		f.store.SeedUser(testUser1ID, 0, 0)

		earned, err := NewChatRewardService(f.deps).Reward(ctx, testChannelID, testUser1ID)
		require.NoError(t, err)
		assert.Zero(t, earned)
		assert.Empty(t, f.publisher.Events)
		assert.Empty(t, f.store.LockCalls)
	})
}
