package repository

import (
	"context"
	"testing"

	"incoin/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompanyRepository(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	repo := NewCompanyRepository(testDB.DB, 1001)

	company := testutil.CreateTestCompany(1001, 10, "Acme")
	company.AddMember(11, "member")
	company.Password = "secret"

	t.Run("round trip", func(t *testing.T) {
		require.NoError(t, repo.Upsert(ctx, company))

		loaded, err := repo.Get(ctx, company.ID)
		require.NoError(t, err)
		require.NotNil(t, loaded)

		assert.Equal(t, company.ID, loaded.ID)
		assert.Equal(t, "Acme", loaded.Name)
		assert.Equal(t, int64(10), loaded.OwnerID)
		assert.Equal(t, []int64{10, 11}, loaded.MemberIDs())
		assert.Equal(t, "secret", loaded.Password)
		assert.Equal(t, company.Budget, loaded.Budget)
		assert.True(t, company.LastPayoutTime.Equal(loaded.LastPayoutTime))
	})

	t.Run("names are unique per guild ignoring case", func(t *testing.T) {
		dup := testutil.CreateTestCompany(1001, 20, "ACME")
		assert.Error(t, repo.Upsert(ctx, dup))

		elsewhere := testutil.CreateTestCompany(2002, 20, "ACME")
		assert.NoError(t, NewCompanyRepository(testDB.DB, 2002).Upsert(ctx, elsewhere))
	})

	t.Run("list and delete", func(t *testing.T) {
		second := testutil.CreateTestCompany(1001, 30, "Globex")
		require.NoError(t, repo.Upsert(ctx, second))

		companies, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, companies, 2)
		assert.Equal(t, "Acme", companies[0].Name)

		require.NoError(t, repo.Delete(ctx, second.ID))
		loaded, err := repo.Get(ctx, second.ID)
		require.NoError(t, err)
		assert.Nil(t, loaded)
	})
}

func TestStockRepository(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	repo := NewStockRepository(testDB.DB, 1001)

	company := testutil.CreateTestCompany(1001, 10, "Acme")
	stock := testutil.CreateTestStock(1001, company.ID, 800)
	require.NoError(t, repo.Upsert(ctx, stock))

	loaded, err := repo.Get(ctx, company.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, int64(800), loaded.CurrentPrice)
	require.Len(t, loaded.PriceHistory, 1)
	assert.Equal(t, int64(800), loaded.PriceHistory[0].Price)

	stocks, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, stocks, 1)

	require.NoError(t, repo.Delete(ctx, company.ID))
	loaded, err = repo.Get(ctx, company.ID)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestChannelRewardRepository(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	repo := NewChannelRewardRepository(testDB.DB, 1001)

	missing, err := repo.Get(ctx, 555)
	require.NoError(t, err)
	assert.Nil(t, missing)

	reward := testutil.CreateTestChannelReward(1001, 555, 10, 20)
	require.NoError(t, repo.Upsert(ctx, reward))

	reward.Max = 50
	require.NoError(t, repo.Upsert(ctx, reward))

	rewards, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, rewards, 1)
	assert.Equal(t, int64(555), rewards[0].ChannelID)
	assert.Equal(t, int64(10), rewards[0].Min)
	assert.Equal(t, int64(50), rewards[0].Max)
}
