package services

import (
	"context"
	"testing"

	"incoin/domain/entities"
	"incoin/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCompanyService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("founds a company with a priced stock", func(t *testing.T) {
		f := newFixture(t)
		f.store.SeedUser(testUser1ID, 0, 0)
		f.random.Ints = []int64{100}
		f.notifier.On("DirectMessage", mock.Anything, testUser1ID, "会社設立のお知らせ", mock.Anything).Return(nil).Once()

		info, err := NewCompanyService(f.deps).Create(ctx, CreateCompanyInput{
			OwnerID:     testUser1ID,
			OwnerName:   "alice",
			Name:        "  Acme ",
			DailySalary: 5000,
		})
		require.NoError(t, err)
		assert.Equal(t, "Acme", info.Company.Name)
		assert.NotEmpty(t, info.Company.ID)
		assert.Equal(t, []int64{testUser1ID}, info.Company.MemberIDs())
		assert.Equal(t, testNow, info.Company.LastPayoutTime)
		assert.Equal(t, int64(750), info.Stock.CurrentPrice)
		assert.Len(t, info.Stock.PriceHistory, 1)

		owner := f.store.User(ctx, testUser1ID)
		assert.Equal(t, info.Company.ID, owner.CompanyID)
		assert.Equal(t, entities.JobPresident, owner.Job)
		assert.NotNil(t, f.store.Company(ctx, info.Company.ID))
		assert.Len(t, f.publisher.OfType(events.EventTypeCompanyCreated), 1)
		f.notifier.AssertExpectations(t)
	})

	t.Run("names are unique ignoring case", func(t *testing.T) {
		f := newFixture(t)
		f.seedCompany("c1", "Acme", testUser1ID, 0, 0)
		f.store.SeedUser(testUser2ID, 0, 0)

		_, err := NewCompanyService(f.deps).Create(ctx, CreateCompanyInput{OwnerID: testUser2ID, Name: "ACME"})
		_, ok := AsRuleError(err)
		assert.True(t, ok)
	})

	t.Run("members cannot found another company", func(t *testing.T) {
		f := newFixture(t)
		f.seedCompany("c1", "Acme", testUser1ID, 0, 0, testUser2ID)

		_, err := NewCompanyService(f.deps).Create(ctx, CreateCompanyInput{OwnerID: testUser2ID, Name: "Other"})
		_, ok := AsRuleError(err)
		assert.True(t, ok)
	})
}

func TestCompanyService_Join(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name            string
		companyPassword string
		password        string
		wantErr         bool
	}{
		{name: "open company without password", wantErr: false},
		{name: "open company with a password given", password: "x", wantErr: true},
		{name: "protected company without password", companyPassword: "secret", wantErr: true},
		{name: "protected company with wrong password", companyPassword: "secret", password: "Secret", wantErr: true},
		{name: "protected company with right password", companyPassword: "secret", password: "secret", wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			company := f.seedCompany("c1", "Acme", testUser1ID, 0, 0)
			company.Password = tt.companyPassword
			f.store.Seed(company)
			f.store.SeedUser(testUser2ID, 0, 0)

			joined, err := NewCompanyService(f.deps).Join(ctx, testUser2ID, "bob", "acme", tt.password)
			if tt.wantErr {
				_, ok := AsRuleError(err)
				assert.True(t, ok)
				assert.False(t, f.store.Company(ctx, "c1").HasMember(testUser2ID))
				return
			}
			require.NoError(t, err)
			assert.True(t, joined.HasMember(testUser2ID))
			assert.Equal(t, "c1", f.store.User(ctx, testUser2ID).CompanyID)
		})
	}

	t.Run("rejects duplicate membership", func(t *testing.T) {
		f := newFixture(t)
		f.seedCompany("c1", "Acme", testUser1ID, 0, 0, testUser2ID)

		_, err := NewCompanyService(f.deps).Join(ctx, testUser2ID, "bob", "Acme", "")
		ruleErr, ok := AsRuleError(err)
		require.True(t, ok)
		assert.Contains(t, ruleErr.Message, "既にこの会社")
	})

	t.Run("rejects members of another company", func(t *testing.T) {
		f := newFixture(t)
		f.seedCompany("c1", "Acme", testUser1ID, 0, 0, testUser2ID)
		f.seedCompany("c2", "Other", testUser3ID, 0, 0)

		_, err := NewCompanyService(f.deps).Join(ctx, testUser2ID, "bob", "Other", "")
		ruleErr, ok := AsRuleError(err)
		require.True(t, ok)
		assert.Contains(t, ruleErr.Message, "他の会社")
	})
}

func TestCompanyService_Leave(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedCompany("c1", "Acme", testUser1ID, 0, 0, testUser2ID)
	companies := NewCompanyService(f.deps)

	_, err := companies.Leave(ctx, testUser1ID)
	_, ok := AsRuleError(err)
	assert.True(t, ok, "owner cannot leave")

	_, err = companies.Leave(ctx, testUser2ID)
	require.NoError(t, err)

	member := f.store.User(ctx, testUser2ID)
	assert.Empty(t, member.CompanyID)
	assert.Equal(t, entities.JobUnemployed, member.Job)
	assert.False(t, f.store.Company(ctx, "c1").HasMember(testUser2ID))
}

func TestCompanyService_Delete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedCompany("c1", "Acme", testUser1ID, 0, 0, testUser2ID, testUser3ID)
	companies := NewCompanyService(f.deps)

	_, err := companies.Delete(ctx, testUser2ID)
	assert.ErrorIs(t, err, errNotOwner)

	deleted, err := companies.Delete(ctx, testUser1ID)
	require.NoError(t, err)
	assert.Equal(t, "c1", deleted.ID)

	assert.Nil(t, f.store.Company(ctx, "c1"))
	stocks, _ := f.store.Stocks(ctx)
	assert.Empty(t, stocks)
	for _, id := range []int64{testUser1ID, testUser2ID, testUser3ID} {
		u := f.store.User(ctx, id)
		assert.Empty(t, u.CompanyID)
		assert.Equal(t, entities.JobUnemployed, u.Job)
	}

	evs := f.publisher.OfType(events.EventTypeCompanyDeleted)
	require.Len(t, evs, 1)
	assert.False(t, evs[0].(events.CompanyDeletedEvent).Bankrupt)
}

func TestCompanyService_Edit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	company := f.seedCompany("c1", "Acme", testUser1ID, 0, 0)
	company.Password = "secret"
	f.store.Seed(company)
	f.seedCompany("c2", "Other", testUser2ID, 0, 0)
	companies := NewCompanyService(f.deps)

	_, err := companies.Edit(ctx, testUser1ID, EditCompanyInput{})
	_, ok := AsRuleError(err)
	assert.True(t, ok, "needs at least one field")

	taken := "other"
	_, err = companies.Edit(ctx, testUser1ID, EditCompanyInput{Name: &taken})
	_, ok = AsRuleError(err)
	assert.True(t, ok, "name owned by another company")

	sameName := "ACME"
	empty := ""
	salary := int64(2500)
	edited, err := companies.Edit(ctx, testUser1ID, EditCompanyInput{Name: &sameName, Password: &empty, DailySalary: &salary})
	require.NoError(t, err)
	assert.Equal(t, "ACME", edited.Name)
	assert.False(t, edited.IsPasswordProtected())
	assert.Equal(t, int64(2500), edited.DailySalary)
}

func TestCompanyService_Funds(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedCompany("c1", "Acme", testUser1ID, 0, 1000, testUser2ID)
	member := f.store.User(ctx, testUser2ID)
	member.Balance = 500
	f.store.Seed(member)
	companies := NewCompanyService(f.deps)

	company, err := companies.Deposit(ctx, testUser2ID, 500)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), company.Budget)
	assert.Equal(t, int64(0), f.store.User(ctx, testUser2ID).Balance)

	_, err = companies.Withdraw(ctx, testUser2ID, 100)
	assert.ErrorIs(t, err, errNotOwner)

	_, err = companies.Withdraw(ctx, testUser1ID, 1501)
	_, ok := AsRuleError(err)
	assert.True(t, ok)

	company, err = companies.Withdraw(ctx, testUser1ID, 1500)
	require.NoError(t, err)
	assert.Equal(t, int64(0), company.Budget)
	assert.Equal(t, int64(1500), f.store.User(ctx, testUser1ID).Balance)

	company, err = companies.SetAutoDeposit(ctx, testUser1ID, true)
	require.NoError(t, err)
	assert.True(t, company.AutoDeposit)
	assert.True(t, f.store.Company(ctx, "c1").AutoDeposit)

	_, err = companies.SetAutoDeposit(ctx, testUser2ID, false)
	assert.ErrorIs(t, err, errNotOwner)
}

func TestCompanyService_RepairsDanglingMembership(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	user := f.store.SeedUser(testUser1ID, 100, 0)
	user.CompanyID = "gone"
	user.Job = entities.JobPresident
	f.store.Seed(user)

	_, err := NewCompanyService(f.deps).Deposit(ctx, testUser1ID, 10)
	assert.ErrorIs(t, err, errCompanyMissing)

	repaired := f.store.User(ctx, testUser1ID)
	assert.Empty(t, repaired.CompanyID)
	assert.Equal(t, entities.JobUnemployed, repaired.Job)
	assert.Equal(t, int64(100), repaired.Balance)
}
