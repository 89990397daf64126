package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistrationService(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	registration := NewRegistrationService(f.deps)

	registered, err := registration.IsRegistered(ctx, testUser1ID)
	require.NoError(t, err)
	assert.False(t, registered)
	_, err = registration.Summary(ctx, testUser1ID)
	_, ok := AsRuleError(err)
	assert.True(t, ok)

	user, err := registration.Register(ctx, testUser1ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	registered, err = registration.IsRegistered(ctx, testUser1ID)
	require.NoError(t, err)
	assert.True(t, registered)

	_, err = registration.Register(ctx, testUser1ID, "alice")
	ruleErr, ok := AsRuleError(err)
	require.True(t, ok)
	assert.Contains(t, ruleErr.Message, "登録済み")
}

func TestRegistrationService_IsRegisteredLoadFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.store.SeedUser(testUser1ID, 0, 0)
	loadErr := errors.New("connection refused")
	f.store.LoadErr = loadErr

	registered, err := NewRegistrationService(f.deps).IsRegistered(ctx, testUser1ID)
	assert.ErrorIs(t, err, loadErr)
	assert.False(t, registered)
	_, isRule := AsRuleError(err)
	assert.False(t, isRule, "a load failure is not a validation error")
}

func TestRegistrationService_Summary(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedCompany("c1", "Acme", testUser1ID, 0, 0)
	dangling := f.store.SeedUser(testUser2ID, 0, 0)
	dangling.CompanyID = "gone"
	dangling.Job = "魚屋"
	f.store.Seed(dangling)
	registration := NewRegistrationService(f.deps)

	summary, err := registration.Summary(ctx, testUser1ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", summary.CompanyName)

	summary, err = registration.Summary(ctx, testUser2ID)
	require.NoError(t, err)
	assert.Empty(t, summary.CompanyName)
	assert.Empty(t, f.store.User(ctx, testUser2ID).CompanyID)
}
