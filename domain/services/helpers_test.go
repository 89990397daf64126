package services

import (
	"testing"
	"time"

	"incoin/config"
	"incoin/domain/entities"
	"incoin/domain/testhelpers"

	"github.com/stretchr/testify/mock"
)

// Test constants for consistent test data
const (
	testGuildID = int64(555555555)
	testUser1ID = int64(100)
	testUser2ID = int64(200)
	testUser3ID = int64(300)
)

var testNow = time.Date(2025, 6, 5, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store     *testhelpers.MemoryStore
	publisher *testhelpers.RecordingPublisher
	notifier  *testhelpers.MockNotifier
	random    *testhelpers.ScriptedRandom
	deps      Dependencies
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	config.SetTestConfig(config.NewTestConfig())
	t.Cleanup(config.ResetConfig)

	f := &fixture{
		store:     testhelpers.NewMemoryStore(testGuildID),
		publisher: &testhelpers.RecordingPublisher{},
		notifier:  &testhelpers.MockNotifier{},
		random:    &testhelpers.ScriptedRandom{},
	}
	f.deps = Dependencies{
		Store:     f.store,
		Publisher: f.publisher,
		Notifier:  f.notifier,
		Random:    f.random,
		Now:       func() time.Time { return testNow },
	}
	return f
}

// allowNotifications accepts any direct message
func (f *fixture) allowNotifications() {
	f.notifier.On("DirectMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
}

// seedCompany stores a company owned by ownerID with the given extra members,
// wiring the member accounts to it
func (f *fixture) seedCompany(id, name string, ownerID int64, salary, budget int64, members ...int64) *entities.Company {
	company := entities.NewCompany(testGuildID, id, name, ownerID, "owner", salary, "", testNow.Add(-25*time.Hour))
	company.Budget = budget

	owner := f.store.SeedUser(ownerID, 0, 0)
	owner.CompanyID = id
	owner.Job = entities.JobPresident
	f.store.Seed(owner)

	for _, memberID := range members {
		company.AddMember(memberID, "member")
		member := f.store.SeedUser(memberID, 0, 0)
		member.CompanyID = id
		member.Job = "魚屋"
		f.store.Seed(member)
	}

	stock := entities.NewStockRecord(testGuildID, id)
	stock.RecordPrice(1000, testNow.Add(-10*time.Minute))
	f.store.Seed(company, stock)
	return company
}
