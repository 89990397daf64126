package repository

import (
	"context"
	"testing"
	"time"

	"incoin/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserAccountRepository_Get(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	repo := NewUserAccountRepository(testDB.DB, 1001)

	t.Run("missing user returns nil", func(t *testing.T) {
		user, err := repo.Get(ctx, 42)
		require.NoError(t, err)
		assert.Nil(t, user)
	})

	t.Run("round trip", func(t *testing.T) {
		user := testutil.CreateTestUser(1001, 7, "alice")
		user.CreditPoint = -3
		user.Job = "魚屋"
		user.LastWorkTime = time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
		user.AddStock("5f1c9a3e-4d0b-4c8e-9a53-6c1f2b7d8e90", 12)
		require.NoError(t, repo.Upsert(ctx, user))

		loaded, err := repo.Get(ctx, 7)
		require.NoError(t, err)
		require.NotNil(t, loaded)

		assert.Equal(t, int64(1001), loaded.GuildID)
		assert.Equal(t, int64(7), loaded.UserID)
		assert.Equal(t, "alice", loaded.Username)
		assert.Equal(t, user.Balance, loaded.Balance)
		assert.Equal(t, user.BankBalance, loaded.BankBalance)
		assert.Equal(t, int64(-3), loaded.CreditPoint)
		assert.Equal(t, "魚屋", loaded.Job)
		assert.True(t, loaded.IsRegistered)
		assert.True(t, user.LastWorkTime.Equal(loaded.LastWorkTime))
		assert.Equal(t, int64(12), loaded.StockAmount("5f1c9a3e-4d0b-4c8e-9a53-6c1f2b7d8e90"))
	})
}

func TestUserAccountRepository_Upsert(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	repo := NewUserAccountRepository(testDB.DB, 1001)

	t.Run("merges into existing document", func(t *testing.T) {
		user := testutil.CreateTestUser(1001, 8, "bob")
		require.NoError(t, repo.Upsert(ctx, user))

		// A legacy field written by an older build must survive the merge
		_, err := testDB.DB.Exec(ctx,
			`UPDATE user_accounts SET data = data || '{"legacy_note": "keep"}'::jsonb WHERE guild_id = $1 AND user_id = $2`,
			int64(1001), int64(8))
		require.NoError(t, err)

		user.Balance = 1
		require.NoError(t, repo.Upsert(ctx, user))

		var note string
		err = testDB.DB.QueryRow(ctx,
			`SELECT data->>'legacy_note' FROM user_accounts WHERE guild_id = $1 AND user_id = $2`,
			int64(1001), int64(8)).Scan(&note)
		require.NoError(t, err)
		assert.Equal(t, "keep", note)

		loaded, err := repo.Get(ctx, 8)
		require.NoError(t, err)
		assert.Equal(t, int64(1), loaded.Balance)
	})

	t.Run("guilds are isolated", func(t *testing.T) {
		other := NewUserAccountRepository(testDB.DB, 2002)

		loaded, err := other.Get(ctx, 8)
		require.NoError(t, err)
		assert.Nil(t, loaded)
	})
}

func TestUserAccountRepository_LegacyDocument(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	repo := NewUserAccountRepository(testDB.DB, 1001)

	_, err := testDB.DB.Exec(ctx,
		`INSERT INTO user_accounts (guild_id, user_id, schema_version, data) VALUES ($1, $2, 0, $3)`,
		int64(1001), int64(9), []byte(`{"balance": 250}`))
	require.NoError(t, err)

	user, err := repo.Get(ctx, 9)
	require.NoError(t, err)
	require.NotNil(t, user)

	assert.True(t, user.IsRegistered)
	assert.Equal(t, int64(250), user.Balance)
	assert.Equal(t, int64(5), user.CreditPoint)
}

func TestUserAccountRepository_ListAndDelete(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	repo := NewUserAccountRepository(testDB.DB, 1001)

	for _, id := range []int64{1, 2, 3} {
		require.NoError(t, repo.Upsert(ctx, testutil.CreateTestUser(1001, id, "user")))
	}
	require.NoError(t, NewUserAccountRepository(testDB.DB, 2002).Upsert(ctx, testutil.CreateTestUser(2002, 4, "other")))

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 3)

	require.NoError(t, repo.Delete(ctx, 2))

	users, err = repo.List(ctx)
	require.NoError(t, err)
	ids := make([]int64, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.UserID)
	}
	assert.ElementsMatch(t, []int64{1, 3}, ids)
}
