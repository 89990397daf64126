package testhelpers

import (
	"context"
	"sort"
	"sync"

	"incoin/domain/entities"
)

// MemoryStore is an in-memory RecordStore for service tests
type MemoryStore struct {
	guildID int64

	mu        sync.Mutex
	users     map[int64]*entities.UserAccount
	companies map[string]*entities.Company
	stocks    map[string]*entities.StockRecord
	rewards   map[int64]*entities.ChannelReward

	// WriteErr, when set, is returned by every Put and Delete after the
	// in-memory state was updated
	WriteErr error
	// LoadErr, when set, is returned by LoadUser
	LoadErr error
	// LockCalls records the key sets passed to Lock
	LockCalls [][]string
}

// NewMemoryStore creates an empty store for guildID
func NewMemoryStore(guildID int64) *MemoryStore {
	return &MemoryStore{
		guildID:   guildID,
		users:     make(map[int64]*entities.UserAccount),
		companies: make(map[string]*entities.Company),
		stocks:    make(map[string]*entities.StockRecord),
		rewards:   make(map[int64]*entities.ChannelReward),
	}
}

func (m *MemoryStore) GuildID() int64 {
	return m.guildID
}

func (m *MemoryStore) User(_ context.Context, userID int64) *entities.UserAccount {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[userID]; ok {
		return u.Clone()
	}
	return entities.NewUserAccount(m.guildID, userID)
}

func (m *MemoryStore) LoadUser(ctx context.Context, userID int64) (*entities.UserAccount, error) {
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	return m.User(ctx, userID), nil
}

func (m *MemoryStore) PutUser(_ context.Context, user *entities.UserAccount) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.UserID] = user.Clone()
	return m.WriteErr
}

func (m *MemoryStore) Users(_ context.Context) ([]*entities.UserAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	users := make([]*entities.UserAccount, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, u.Clone())
	}
	sort.Slice(users, func(i, j int) bool { return users[i].UserID < users[j].UserID })
	return users, nil
}

func (m *MemoryStore) Company(_ context.Context, companyID string) *entities.Company {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.companies[companyID].Clone()
}

func (m *MemoryStore) PutCompany(_ context.Context, company *entities.Company) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.companies[company.ID] = company.Clone()
	return m.WriteErr
}

func (m *MemoryStore) DeleteCompany(_ context.Context, companyID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.companies, companyID)
	delete(m.stocks, companyID)
	return m.WriteErr
}

func (m *MemoryStore) Companies(_ context.Context) ([]*entities.Company, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	companies := make([]*entities.Company, 0, len(m.companies))
	for _, c := range m.companies {
		companies = append(companies, c.Clone())
	}
	sort.Slice(companies, func(i, j int) bool { return companies[i].ID < companies[j].ID })
	return companies, nil
}

func (m *MemoryStore) Stock(_ context.Context, companyID string) *entities.StockRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.stocks[companyID]; ok {
		return s.Clone()
	}
	return entities.NewStockRecord(m.guildID, companyID)
}

func (m *MemoryStore) PutStock(_ context.Context, stock *entities.StockRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stocks[stock.CompanyID] = stock.Clone()
	return m.WriteErr
}

func (m *MemoryStore) DeleteStock(_ context.Context, companyID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.stocks, companyID)
	return m.WriteErr
}

func (m *MemoryStore) Stocks(_ context.Context) ([]*entities.StockRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stocks := make([]*entities.StockRecord, 0, len(m.stocks))
	for _, s := range m.stocks {
		stocks = append(stocks, s.Clone())
	}
	sort.Slice(stocks, func(i, j int) bool { return stocks[i].CompanyID < stocks[j].CompanyID })
	return stocks, nil
}

func (m *MemoryStore) ChannelReward(_ context.Context, channelID int64) *entities.ChannelReward {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rewards[channelID].Clone()
}

func (m *MemoryStore) PutChannelReward(_ context.Context, reward *entities.ChannelReward) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rewards[reward.ChannelID] = reward.Clone()
	return m.WriteErr
}

// Lock records the requested keys without blocking
func (m *MemoryStore) Lock(keys ...string) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LockCalls = append(m.LockCalls, append([]string(nil), keys...))
	return func() {}
}

// SeedUser stores a registered account with the given balances
func (m *MemoryStore) SeedUser(userID, balance, bank int64) *entities.UserAccount {
	user := entities.NewUserAccount(m.guildID, userID)
	user.IsRegistered = true
	user.Username = "user"
	user.Balance = balance
	user.BankBalance = bank
	m.mu.Lock()
	m.users[userID] = user.Clone()
	m.mu.Unlock()
	return user
}

// Seed stores records as they are
func (m *MemoryStore) Seed(records ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range records {
		switch v := r.(type) {
		case *entities.UserAccount:
			m.users[v.UserID] = v.Clone()
		case *entities.Company:
			m.companies[v.ID] = v.Clone()
		case *entities.StockRecord:
			m.stocks[v.CompanyID] = v.Clone()
		case *entities.ChannelReward:
			m.rewards[v.ChannelID] = v.Clone()
		}
	}
}
