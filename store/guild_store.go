package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"incoin/domain/entities"
	"incoin/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// ErrUnavailable is returned when writing a record whose remote copy could
// not be loaded, so the default stand-in must not overwrite it
var ErrUnavailable = errors.New("record store unavailable")

// GuildStore caches one guild's records in front of the remote store
type GuildStore struct {
	guildID    int64
	uowFactory interfaces.UnitOfWorkFactory
	observer   Observer
	locks      *keyedMutex

	mu          sync.RWMutex
	users       map[int64]*entities.UserAccount
	failedUsers map[int64]struct{}
	companies   map[string]*entities.Company
	stocks      map[string]*entities.StockRecord
	// a nil value records that the channel has no reward configured
	rewards    map[int64]*entities.ChannelReward
	lastResync time.Time
}

func newGuildStore(guildID int64, uowFactory interfaces.UnitOfWorkFactory, observer Observer) *GuildStore {
	g := &GuildStore{
		guildID:    guildID,
		uowFactory: uowFactory,
		observer:   observer,
		locks:      newKeyedMutex(),
	}
	g.reset()
	return g
}

func (g *GuildStore) reset() {
	g.users = make(map[int64]*entities.UserAccount)
	g.failedUsers = make(map[int64]struct{})
	g.companies = make(map[string]*entities.Company)
	g.stocks = make(map[string]*entities.StockRecord)
	g.rewards = make(map[int64]*entities.ChannelReward)
}

// GuildID returns the guild this store serves
func (g *GuildStore) GuildID() int64 {
	return g.guildID
}

// Lock serializes access to the given record keys
func (g *GuildStore) Lock(keys ...string) func() {
	return g.locks.Lock(keys...)
}

// withUnitOfWork runs fn in a transaction and reports the outcome to the observer
func (g *GuildStore) withUnitOfWork(ctx context.Context, operation string, fn func(uow interfaces.UnitOfWork) error) (err error) {
	start := time.Now()
	defer func() {
		g.observer.RecordStoreOperation(ctx, operation, time.Since(start), err)
	}()

	uow := g.uowFactory.CreateForGuild(g.guildID)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := fn(uow); err != nil {
		return err
	}
	return uow.Commit()
}

// User returns the account of userID. A load failure is logged and answered
// with a default account that is not cached.
func (g *GuildStore) User(ctx context.Context, userID int64) *entities.UserAccount {
	user, err := g.LoadUser(ctx, userID)
	if err != nil {
		log.WithFields(log.Fields{
			"guild_id": g.guildID,
			"user_id":  userID,
			"error":    err,
		}).Error("Failed to load user, using defaults")
		return entities.NewUserAccount(g.guildID, userID)
	}
	return user
}

// LoadUser returns the account of userID, or an error wrapping ErrUnavailable
// when the remote copy cannot be read
func (g *GuildStore) LoadUser(ctx context.Context, userID int64) (*entities.UserAccount, error) {
	g.mu.RLock()
	cached, ok := g.users[userID]
	g.mu.RUnlock()
	if ok {
		return cached.Clone(), nil
	}

	var loaded *entities.UserAccount
	err := g.withUnitOfWork(ctx, "get_user", func(uow interfaces.UnitOfWork) error {
		var err error
		loaded, err = uow.UserAccountRepository().Get(ctx, userID)
		return err
	})
	if err != nil {
		g.mu.Lock()
		g.failedUsers[userID] = struct{}{}
		g.mu.Unlock()
		return nil, fmt.Errorf("load user %d in guild %d: %w: %w", userID, g.guildID, ErrUnavailable, err)
	}

	if loaded == nil {
		loaded = entities.NewUserAccount(g.guildID, userID)
	}

	g.mu.Lock()
	delete(g.failedUsers, userID)
	// Another goroutine may have written while we were loading
	if current, ok := g.users[userID]; ok {
		g.mu.Unlock()
		return current.Clone(), nil
	}
	g.users[userID] = loaded
	g.mu.Unlock()

	return loaded.Clone(), nil
}

// PutUser caches the account and persists it when it is registered
func (g *GuildStore) PutUser(ctx context.Context, user *entities.UserAccount) error {
	g.mu.Lock()
	if _, failed := g.failedUsers[user.UserID]; failed {
		g.mu.Unlock()
		return fmt.Errorf("user %d in guild %d: %w", user.UserID, g.guildID, ErrUnavailable)
	}
	g.users[user.UserID] = user.Clone()
	g.mu.Unlock()

	if !user.IsRegistered {
		return nil
	}

	return g.withUnitOfWork(ctx, "put_user", func(uow interfaces.UnitOfWork) error {
		return uow.UserAccountRepository().Upsert(ctx, user)
	})
}

// ReloadUser drops the cached account and loads it again from the remote store
func (g *GuildStore) ReloadUser(ctx context.Context, userID int64) *entities.UserAccount {
	g.mu.Lock()
	delete(g.users, userID)
	delete(g.failedUsers, userID)
	g.mu.Unlock()

	return g.User(ctx, userID)
}

// Users lists every stored account and refreshes the cache with them
func (g *GuildStore) Users(ctx context.Context) ([]*entities.UserAccount, error) {
	var users []*entities.UserAccount
	err := g.withUnitOfWork(ctx, "list_users", func(uow interfaces.UnitOfWork) error {
		var err error
		users, err = uow.UserAccountRepository().List(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	for _, u := range users {
		g.users[u.UserID] = u.Clone()
		delete(g.failedUsers, u.UserID)
	}
	g.mu.Unlock()

	return users, nil
}

// Company returns the company or nil when it does not exist or cannot be loaded
func (g *GuildStore) Company(ctx context.Context, companyID string) *entities.Company {
	if companyID == "" {
		return nil
	}

	g.mu.RLock()
	cached, ok := g.companies[companyID]
	g.mu.RUnlock()
	if ok {
		return cached.Clone()
	}

	var loaded *entities.Company
	err := g.withUnitOfWork(ctx, "get_company", func(uow interfaces.UnitOfWork) error {
		var err error
		loaded, err = uow.CompanyRepository().Get(ctx, companyID)
		return err
	})
	if err != nil {
		log.WithFields(log.Fields{
			"guild_id":   g.guildID,
			"company_id": companyID,
			"error":      err,
		}).Error("Failed to load company")
		return nil
	}
	if loaded == nil {
		return nil
	}

	g.mu.Lock()
	g.companies[companyID] = loaded
	g.mu.Unlock()

	return loaded.Clone()
}

// PutCompany caches and persists the company
func (g *GuildStore) PutCompany(ctx context.Context, company *entities.Company) error {
	g.mu.Lock()
	g.companies[company.ID] = company.Clone()
	g.mu.Unlock()

	return g.withUnitOfWork(ctx, "put_company", func(uow interfaces.UnitOfWork) error {
		return uow.CompanyRepository().Upsert(ctx, company)
	})
}

// DeleteCompany removes the company and its stock record from cache and remote store
func (g *GuildStore) DeleteCompany(ctx context.Context, companyID string) error {
	g.mu.Lock()
	delete(g.companies, companyID)
	delete(g.stocks, companyID)
	g.mu.Unlock()

	return g.withUnitOfWork(ctx, "delete_company", func(uow interfaces.UnitOfWork) error {
		if err := uow.StockRepository().Delete(ctx, companyID); err != nil {
			return err
		}
		return uow.CompanyRepository().Delete(ctx, companyID)
	})
}

// Companies lists every company and refreshes the cache with them
func (g *GuildStore) Companies(ctx context.Context) ([]*entities.Company, error) {
	var companies []*entities.Company
	err := g.withUnitOfWork(ctx, "list_companies", func(uow interfaces.UnitOfWork) error {
		var err error
		companies, err = uow.CompanyRepository().List(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	g.companies = make(map[string]*entities.Company, len(companies))
	for _, c := range companies {
		g.companies[c.ID] = c.Clone()
	}
	g.mu.Unlock()

	return companies, nil
}

// Stock returns the stock record of a company, or its default when none is stored
func (g *GuildStore) Stock(ctx context.Context, companyID string) *entities.StockRecord {
	g.mu.RLock()
	cached, ok := g.stocks[companyID]
	g.mu.RUnlock()
	if ok {
		return cached.Clone()
	}

	var loaded *entities.StockRecord
	err := g.withUnitOfWork(ctx, "get_stock", func(uow interfaces.UnitOfWork) error {
		var err error
		loaded, err = uow.StockRepository().Get(ctx, companyID)
		return err
	})
	if err != nil {
		log.WithFields(log.Fields{
			"guild_id":   g.guildID,
			"company_id": companyID,
			"error":      err,
		}).Error("Failed to load stock, using defaults")
		return entities.NewStockRecord(g.guildID, companyID)
	}
	if loaded == nil {
		return entities.NewStockRecord(g.guildID, companyID)
	}

	g.mu.Lock()
	g.stocks[companyID] = loaded
	g.mu.Unlock()

	return loaded.Clone()
}

// PutStock caches and persists the stock record
func (g *GuildStore) PutStock(ctx context.Context, stock *entities.StockRecord) error {
	g.mu.Lock()
	g.stocks[stock.CompanyID] = stock.Clone()
	g.mu.Unlock()

	return g.withUnitOfWork(ctx, "put_stock", func(uow interfaces.UnitOfWork) error {
		return uow.StockRepository().Upsert(ctx, stock)
	})
}

// DeleteStock removes a stock record from cache and remote store
func (g *GuildStore) DeleteStock(ctx context.Context, companyID string) error {
	g.mu.Lock()
	delete(g.stocks, companyID)
	g.mu.Unlock()

	return g.withUnitOfWork(ctx, "delete_stock", func(uow interfaces.UnitOfWork) error {
		return uow.StockRepository().Delete(ctx, companyID)
	})
}

// Stocks lists every stock record and refreshes the cache with them
func (g *GuildStore) Stocks(ctx context.Context) ([]*entities.StockRecord, error) {
	var stocks []*entities.StockRecord
	err := g.withUnitOfWork(ctx, "list_stocks", func(uow interfaces.UnitOfWork) error {
		var err error
		stocks, err = uow.StockRepository().List(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	g.stocks = make(map[string]*entities.StockRecord, len(stocks))
	for _, s := range stocks {
		g.stocks[s.CompanyID] = s.Clone()
	}
	g.mu.Unlock()

	return stocks, nil
}

// ChannelReward returns the reward config of a channel or nil when there is none
func (g *GuildStore) ChannelReward(ctx context.Context, channelID int64) *entities.ChannelReward {
	g.mu.RLock()
	cached, ok := g.rewards[channelID]
	g.mu.RUnlock()
	if ok {
		return cached.Clone()
	}

	var loaded *entities.ChannelReward
	err := g.withUnitOfWork(ctx, "get_channel_reward", func(uow interfaces.UnitOfWork) error {
		var err error
		loaded, err = uow.ChannelRewardRepository().Get(ctx, channelID)
		return err
	})
	if err != nil {
		log.WithFields(log.Fields{
			"guild_id":   g.guildID,
			"channel_id": channelID,
			"error":      err,
		}).Error("Failed to load channel reward")
		return nil
	}

	g.mu.Lock()
	g.rewards[channelID] = loaded
	g.mu.Unlock()

	return loaded.Clone()
}

// PutChannelReward caches and persists a channel reward config
func (g *GuildStore) PutChannelReward(ctx context.Context, reward *entities.ChannelReward) error {
	g.mu.Lock()
	g.rewards[reward.ChannelID] = reward.Clone()
	g.mu.Unlock()

	return g.withUnitOfWork(ctx, "put_channel_reward", func(uow interfaces.UnitOfWork) error {
		return uow.ChannelRewardRepository().Upsert(ctx, reward)
	})
}

// ResyncReport summarizes a full reload of the guild
type ResyncReport struct {
	Users          int
	Companies      int
	Stocks         int
	ChannelRewards int
	// RepairedUsers lost a company reference that pointed nowhere
	RepairedUsers []int64
	// RemovedStocks belonged to companies that no longer exist
	RemovedStocks []string
}

// Resync drops the cache, reloads every collection from the remote store and
// repairs references to deleted companies
func (g *GuildStore) Resync(ctx context.Context) (*ResyncReport, error) {
	var (
		users     []*entities.UserAccount
		companies []*entities.Company
		stocks    []*entities.StockRecord
		rewards   []*entities.ChannelReward
	)
	err := g.withUnitOfWork(ctx, "resync", func(uow interfaces.UnitOfWork) error {
		var err error
		if users, err = uow.UserAccountRepository().List(ctx); err != nil {
			return err
		}
		if companies, err = uow.CompanyRepository().List(ctx); err != nil {
			return err
		}
		if stocks, err = uow.StockRepository().List(ctx); err != nil {
			return err
		}
		rewards, err = uow.ChannelRewardRepository().List(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to resync guild %d: %w", g.guildID, err)
	}

	g.mu.Lock()
	g.reset()
	for _, u := range users {
		g.users[u.UserID] = u.Clone()
	}
	for _, c := range companies {
		g.companies[c.ID] = c.Clone()
	}
	for _, s := range stocks {
		g.stocks[s.CompanyID] = s.Clone()
	}
	for _, r := range rewards {
		g.rewards[r.ChannelID] = r.Clone()
	}
	g.lastResync = time.Now()
	g.mu.Unlock()

	report := &ResyncReport{
		Users:          len(users),
		Companies:      len(companies),
		Stocks:         len(stocks),
		ChannelRewards: len(rewards),
	}

	known := make(map[string]struct{}, len(companies))
	for _, c := range companies {
		known[c.ID] = struct{}{}
	}

	var errs []error
	for _, u := range users {
		if !u.HasCompany() {
			continue
		}
		if _, ok := known[u.CompanyID]; ok {
			continue
		}
		if err := g.repairUser(ctx, u.UserID, known); err != nil {
			errs = append(errs, err)
			continue
		}
		report.RepairedUsers = append(report.RepairedUsers, u.UserID)
	}

	for _, s := range stocks {
		if _, ok := known[s.CompanyID]; ok {
			continue
		}
		unlock := g.Lock(interfaces.StockLockKey(s.CompanyID))
		err := g.DeleteStock(ctx, s.CompanyID)
		unlock()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		report.RemovedStocks = append(report.RemovedStocks, s.CompanyID)
	}

	log.WithFields(log.Fields{
		"guild_id":        g.guildID,
		"users":           report.Users,
		"companies":       report.Companies,
		"stocks":          report.Stocks,
		"channel_rewards": report.ChannelRewards,
		"repaired_users":  len(report.RepairedUsers),
		"removed_stocks":  len(report.RemovedStocks),
	}).Info("Guild records resynced")

	return report, errors.Join(errs...)
}

func (g *GuildStore) repairUser(ctx context.Context, userID int64, known map[string]struct{}) error {
	unlock := g.Lock(interfaces.UserLockKey(userID))
	defer unlock()

	user := g.User(ctx, userID)
	if _, ok := known[user.CompanyID]; ok || !user.HasCompany() {
		return nil
	}
	user.LeaveCompany()
	return g.PutUser(ctx, user)
}

// GuildStats describes what a guild currently holds in memory
type GuildStats struct {
	GuildID        int64     `json:"guild_id"`
	Users          int       `json:"users"`
	Companies      int       `json:"companies"`
	Stocks         int       `json:"stocks"`
	ChannelRewards int       `json:"channel_rewards"`
	HeldLocks      int       `json:"held_locks"`
	LastResync     time.Time `json:"last_resync"`
}

// Stats reports the cache contents
func (g *GuildStore) Stats() GuildStats {
	g.mu.RLock()
	defer g.mu.RUnlock()

	rewards := 0
	for _, r := range g.rewards {
		if r != nil {
			rewards++
		}
	}

	return GuildStats{
		GuildID:        g.guildID,
		Users:          len(g.users),
		Companies:      len(g.companies),
		Stocks:         len(g.stocks),
		ChannelRewards: rewards,
		HeldLocks:      g.locks.size(),
		LastResync:     g.lastResync,
	}
}
