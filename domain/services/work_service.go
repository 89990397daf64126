package services

import (
	"context"
	"math"
	"time"

	"incoin/domain/entities"
	"incoin/events"
)

// WorkCooldown is the minimum time between two work commands
const WorkCooldown = 2 * time.Hour

// WorkService pays users for working their job
type WorkService struct {
	deps Dependencies
}

// NewWorkService creates a new work service
func NewWorkService(deps Dependencies) *WorkService {
	return &WorkService{deps: deps}
}

// WorkResult describes one completed shift
type WorkResult struct {
	Income int64
	Job    string
	// CompanyName is set when the income went to the company budget
	CompanyName string
	// CompanyBudget is the budget after the deposit
	CompanyBudget int64
	User          *entities.UserAccount
}

// Deposited reports whether the income was routed to the company
func (r *WorkResult) Deposited() bool {
	return r.CompanyName != ""
}

// Work pays the user's job income, honoring the company auto deposit setting
func (s *WorkService) Work(ctx context.Context, userID int64) (*WorkResult, error) {
	user, company, unlock := s.deps.lockUserWithCompany(ctx, userID)
	defer unlock()

	now := s.deps.now()
	if !user.LastWorkTime.IsZero() {
		if elapsed := now.Sub(user.LastWorkTime); elapsed < WorkCooldown {
			minutes := int64(math.Ceil((WorkCooldown - elapsed).Minutes()))
			return nil, newRuleError("まだ働けません。あと %d 分待ってください。", minutes)
		}
	}

	income := JobIncome(s.deps.Random, user, company)
	result := &WorkResult{Income: income, Job: user.Job}

	walletBefore, bankBefore := user.Balance, user.BankBalance
	if company != nil && company.AutoDeposit && company.HasMember(userID) {
		company.Budget += income
		result.CompanyName = company.Name
		result.CompanyBudget = company.Budget
	} else {
		user.AddBalance(income)
	}
	user.AddCreditPoint(1)
	user.LastWorkTime = now

	if err := s.deps.saveUsers(ctx, user); err != nil {
		return nil, err
	}
	if result.Deposited() {
		if err := s.deps.saveCompany(ctx, company); err != nil {
			return nil, err
		}
	}

	if !result.Deposited() {
		if err := s.deps.publish(balanceChanged(user, events.ReasonWork, walletBefore, bankBefore)); err != nil {
			return nil, err
		}
	}

	result.User = user
	return result, nil
}
