package services

import (
	"context"
	"testing"

	"incoin/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobService_Change(t *testing.T) {
	ctx := context.Background()

	t.Run("charges the change cost", func(t *testing.T) {
		f := newFixture(t)
		f.store.SeedUser(testUser1ID, 150000, 0)

		user, err := NewJobService(f.deps).Change(ctx, testUser1ID, "お肉屋")
		require.NoError(t, err)
		assert.Equal(t, "お肉屋", user.Job)
		assert.Equal(t, int64(50000), user.Balance)
	})

	t.Run("rejects when the wallet is short", func(t *testing.T) {
		f := newFixture(t)
		f.store.SeedUser(testUser1ID, 99999, 0)

		_, err := NewJobService(f.deps).Change(ctx, testUser1ID, "お肉屋")
		_, ok := AsRuleError(err)
		assert.True(t, ok)
		assert.Equal(t, entities.JobUnemployed, f.store.User(ctx, testUser1ID).Job)
	})

	t.Run("rejects the current job", func(t *testing.T) {
		f := newFixture(t)
		f.store.SeedUser(testUser1ID, 0, 0)

		_, err := NewJobService(f.deps).Change(ctx, testUser1ID, entities.JobUnemployed)
		_, ok := AsRuleError(err)
		assert.True(t, ok)
	})

	t.Run("president cannot change job", func(t *testing.T) {
		f := newFixture(t)
		f.seedCompany("c1", "Acme", testUser1ID, 0, 0)

		_, err := NewJobService(f.deps).Change(ctx, testUser1ID, "お肉屋")
		_, ok := AsRuleError(err)
		assert.True(t, ok)
	})

	t.Run("president is not selectable", func(t *testing.T) {
		f := newFixture(t)
		f.store.SeedUser(testUser1ID, 1<<40, 0)

		_, err := NewJobService(f.deps).Change(ctx, testUser1ID, entities.JobPresident)
		_, ok := AsRuleError(err)
		assert.True(t, ok)
	})
}

func TestJobService_AssignAndRemove(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.store.SeedUser(testUser1ID, 0, 0)
	jobs := NewJobService(f.deps)

	_, err := jobs.Assign(ctx, testUser1ID, "存在しない職業")
	_, ok := AsRuleError(err)
	assert.True(t, ok)

	user, err := jobs.Assign(ctx, testUser1ID, "医者")
	require.NoError(t, err)
	assert.Equal(t, "医者", user.Job)
	assert.Equal(t, int64(0), user.Balance, "admin assignment is free")

	removed, err := jobs.Remove(ctx, testUser1ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = jobs.Remove(ctx, testUser1ID)
	require.NoError(t, err)
	assert.False(t, removed)

	f.seedCompany("c1", "Acme", testUser2ID, 0, 0)
	_, err = jobs.Assign(ctx, testUser2ID, "医者")
	_, ok = AsRuleError(err)
	assert.True(t, ok)
	_, err = jobs.Remove(ctx, testUser2ID)
	_, ok = AsRuleError(err)
	assert.True(t, ok)
}

func TestSelectableJobs(t *testing.T) {
	jobs := SelectableJobs()
	require.NotEmpty(t, jobs)
	assert.Equal(t, entities.JobUnemployed, jobs[0].Name)
	for _, j := range jobs {
		assert.NotEqual(t, entities.JobPresident, j.Name)
	}
	assert.Len(t, Jobs(), len(jobs)+1)
}

func TestIncomeRange(t *testing.T) {
	owner := entities.NewUserAccount(testGuildID, testUser1ID)
	owner.Job = entities.JobPresident
	company := entities.NewCompany(testGuildID, "c1", "Acme", testUser1ID, "alice", 0, "", testNow)
	company.AddMember(testUser2ID, "bob")

	tests := []struct {
		name    string
		job     string
		credit  int64
		company *entities.Company
		wantMin int64
		wantMax int64
	}{
		{name: "unemployed", job: entities.JobUnemployed, wantMin: 1000, wantMax: 1500},
		{name: "fixed range job", job: "医者", wantMin: 140000, wantMax: 175000},
		{name: "youtuber scales with credit", job: JobYoutuber, credit: 4, wantMin: 2000, wantMax: 5000},
		{name: "youtuber without credit", job: JobYoutuber, credit: 0, wantMin: 10, wantMax: 100},
		{name: "president with members", job: entities.JobPresident, company: company, wantMin: 460000, wantMax: 710000},
		{name: "president without company", job: entities.JobPresident, wantMin: 1000, wantMax: 1500},
		{name: "unknown job falls back", job: "宇宙飛行士", wantMin: 1000, wantMax: 1500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := owner.Clone()
			user.Job = tt.job
			user.CreditPoint = tt.credit

			minIncome, maxIncome := IncomeRange(user, tt.company)
			assert.Equal(t, tt.wantMin, minIncome)
			assert.Equal(t, tt.wantMax, maxIncome)
		})
	}
}
