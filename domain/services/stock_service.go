package services

import (
	"context"
	"errors"
	"fmt"

	"incoin/domain/entities"
	"incoin/domain/interfaces"
	"incoin/domain/utils"
	"incoin/events"

	log "github.com/sirupsen/logrus"
)

// StockService runs the synthetic stock market
type StockService struct {
	deps Dependencies
}

// NewStockService creates a new stock service
func NewStockService(deps Dependencies) *StockService {
	return &StockService{deps: deps}
}

// StockUpdateReport summarizes one price update pass
type StockUpdateReport struct {
	Updated int
	Removed []string
}

// TradeResult describes a completed buy or sell
type TradeResult struct {
	Company *entities.Company
	Amount  int64
	Price   int64
	Total   int64
	Holding int64
	User    *entities.UserAccount
}

// UpdatePrices moves every company's stock one random-walk step and removes
// stock records of companies that no longer exist
func (s *StockService) UpdatePrices(ctx context.Context) (*StockUpdateReport, error) {
	companies, err := s.deps.Store.Companies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}

	report := &StockUpdateReport{}
	known := make(map[string]struct{}, len(companies))
	var (
		errs []error
		evs  []events.Event
	)
	for _, c := range companies {
		known[c.ID] = struct{}{}
		ev, err := s.updatePrice(ctx, c.ID)
		if err != nil {
			log.WithFields(log.Fields{
				"guild_id":   s.deps.Store.GuildID(),
				"company_id": c.ID,
				"error":      err,
			}).Error("Failed to update stock price")
			errs = append(errs, err)
			continue
		}
		report.Updated++
		evs = append(evs, ev)
	}

	stocks, err := s.deps.Store.Stocks(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("failed to list stocks: %w", err))
	}
	for _, st := range stocks {
		if _, ok := known[st.CompanyID]; ok {
			continue
		}
		unlock := s.deps.Store.Lock(interfaces.StockLockKey(st.CompanyID))
		err := s.deps.Store.DeleteStock(ctx, st.CompanyID)
		unlock()
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to delete orphan stock %s: %w", st.CompanyID, err))
			continue
		}
		report.Removed = append(report.Removed, st.CompanyID)
	}

	if err := s.deps.publish(evs...); err != nil {
		errs = append(errs, err)
	}
	return report, errors.Join(errs...)
}

func (s *StockService) updatePrice(ctx context.Context, companyID string) (events.Event, error) {
	unlock := s.deps.Store.Lock(interfaces.StockLockKey(companyID))
	defer unlock()

	now := s.deps.now()
	stock := s.deps.Store.Stock(ctx, companyID)
	oldPrice := stock.CurrentPrice

	var price int64
	if !stock.IsInitialized() {
		price = randInt(s.deps.Random, entities.StockPriceMin, entities.StockPriceMax)
	} else {
		price = entities.ClampStockPrice(stock.CurrentPrice + randInt(s.deps.Random, -entities.StockMaxDelta, entities.StockMaxDelta))
	}
	stock.RecordPrice(price, now)

	if err := s.deps.Store.PutStock(ctx, stock); err != nil {
		return nil, err
	}
	return events.StockPriceUpdatedEvent{
		GuildID:   stock.GuildID,
		CompanyID: companyID,
		OldPrice:  oldPrice,
		NewPrice:  price,
		UpdatedAt: now,
	}, nil
}

// Quote returns a company's stock record
func (s *StockService) Quote(ctx context.Context, companyName string) (*CompanyInfo, error) {
	company, err := s.findCompany(ctx, companyName)
	if err != nil {
		return nil, err
	}
	return &CompanyInfo{Company: company, Stock: s.deps.Store.Stock(ctx, company.ID)}, nil
}

// Buy purchases shares at the current price
func (s *StockService) Buy(ctx context.Context, userID int64, companyName string, amount int64) (*TradeResult, error) {
	return s.trade(ctx, userID, companyName, amount, func(user *entities.UserAccount, company *entities.Company, total int64) error {
		if user.Balance < total {
			return newRuleError("所持金が足りません。（必要: %s いんコイン）", utils.FormatCoins(total))
		}
		user.AddBalance(-total)
		user.AddStock(company.ID, amount)
		return nil
	})
}

// Sell sells shares at the current price
func (s *StockService) Sell(ctx context.Context, userID int64, companyName string, amount int64) (*TradeResult, error) {
	return s.trade(ctx, userID, companyName, amount, func(user *entities.UserAccount, company *entities.Company, total int64) error {
		if user.StockAmount(company.ID) < amount {
			return newRuleError("保有している株が足りません。（保有: %d 株）", user.StockAmount(company.ID))
		}
		user.AddStock(company.ID, -amount)
		user.AddBalance(total)
		return nil
	})
}

// Grant gives shares to a user without charge
func (s *StockService) Grant(ctx context.Context, userID int64, companyName string, amount int64) (*TradeResult, error) {
	return s.adjust(ctx, userID, companyName, amount)
}

// Revoke takes shares from a user, who must hold at least amount
func (s *StockService) Revoke(ctx context.Context, userID int64, companyName string, amount int64) (*TradeResult, error) {
	return s.adjust(ctx, userID, companyName, -amount)
}

func (s *StockService) adjust(ctx context.Context, userID int64, companyName string, delta int64) (*TradeResult, error) {
	if delta == 0 {
		return nil, newRuleError("株数は1以上を指定してください。")
	}
	company, err := s.findCompany(ctx, companyName)
	if err != nil {
		return nil, err
	}

	unlock := s.deps.Store.Lock(interfaces.UserLockKey(userID))
	defer unlock()

	user := s.deps.Store.User(ctx, userID)
	if delta < 0 && user.StockAmount(company.ID) < -delta {
		return nil, newRuleError("対象ユーザーの保有株が足りません。（保有: %d 株）", user.StockAmount(company.ID))
	}
	user.AddStock(company.ID, delta)
	if err := s.deps.saveUsers(ctx, user); err != nil {
		return nil, err
	}

	return &TradeResult{
		Company: company,
		Amount:  max(delta, -delta),
		Holding: user.StockAmount(company.ID),
		User:    user,
	}, nil
}

func (s *StockService) trade(ctx context.Context, userID int64, companyName string, amount int64, apply func(*entities.UserAccount, *entities.Company, int64) error) (*TradeResult, error) {
	if amount < 1 {
		return nil, newRuleError("株数は1以上を指定してください。")
	}
	company, err := s.findCompany(ctx, companyName)
	if err != nil {
		return nil, err
	}

	unlock := s.deps.Store.Lock(interfaces.UserLockKey(userID), interfaces.StockLockKey(company.ID))
	defer unlock()

	price := s.deps.Store.Stock(ctx, company.ID).CurrentPrice
	total := price * amount

	user := s.deps.Store.User(ctx, userID)
	walletBefore, bankBefore := user.Balance, user.BankBalance
	if err := apply(user, company, total); err != nil {
		return nil, err
	}
	if err := s.deps.saveUsers(ctx, user); err != nil {
		return nil, err
	}
	if err := s.deps.publish(balanceChanged(user, events.ReasonStockTrade, walletBefore, bankBefore)); err != nil {
		return nil, err
	}

	return &TradeResult{
		Company: company,
		Amount:  amount,
		Price:   price,
		Total:   total,
		Holding: user.StockAmount(company.ID),
		User:    user,
	}, nil
}

func (s *StockService) findCompany(ctx context.Context, name string) (*entities.Company, error) {
	return NewCompanyService(s.deps).FindByName(ctx, name)
}
