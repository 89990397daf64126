package services

import (
	"context"
	"fmt"
	"strings"

	"incoin/config"
	"incoin/domain/entities"
	"incoin/domain/interfaces"
	"incoin/domain/utils"
	"incoin/events"

	"github.com/google/uuid"
)

var errCompanyMissing = &RuleError{Message: "所属していた会社が見つからなかったため、所属情報をリセットしました。"}

// CompanyService manages the company lifecycle
type CompanyService struct {
	deps Dependencies
}

// NewCompanyService creates a new company service
func NewCompanyService(deps Dependencies) *CompanyService {
	return &CompanyService{deps: deps}
}

// CreateCompanyInput holds the parameters of a new company
type CreateCompanyInput struct {
	OwnerID     int64
	OwnerName   string
	Name        string
	DailySalary int64
	Password    string
}

// EditCompanyInput holds the fields to change; nil fields stay as they are
type EditCompanyInput struct {
	Name        *string
	DailySalary *int64
	// Password set to the empty string removes the password
	Password *string
}

// CompanyInfo is a company together with its stock
type CompanyInfo struct {
	Company *entities.Company
	Stock   *entities.StockRecord
}

// Create founds a company owned by the requester, who becomes its president
func (s *CompanyService) Create(ctx context.Context, input CreateCompanyInput) (*CompanyInfo, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, newRuleError("会社名を入力してください。")
	}
	if input.DailySalary < 0 {
		return nil, newRuleError("日給は0以上を指定してください。")
	}

	unlock := s.deps.Store.Lock(interfaces.UserLockKey(input.OwnerID), interfaces.CompanyNamesLockKey)
	defer unlock()

	owner := s.deps.Store.User(ctx, input.OwnerID)
	if owner.HasCompany() {
		if s.deps.Store.Company(ctx, owner.CompanyID) != nil {
			return nil, newRuleError("既に会社に所属しています。")
		}
		owner.LeaveCompany()
	}

	if err := s.ensureNameAvailable(ctx, name, ""); err != nil {
		return nil, err
	}

	now := s.deps.now()
	company := entities.NewCompany(s.deps.Store.GuildID(), uuid.NewString(), name, input.OwnerID, input.OwnerName, input.DailySalary, input.Password, now)

	stock := entities.NewStockRecord(company.GuildID, company.ID)
	stock.RecordPrice(randInt(s.deps.Random, entities.StockPriceMin, entities.StockPriceMax), now)

	owner.CompanyID = company.ID
	owner.Job = entities.JobPresident

	if err := s.deps.saveCompany(ctx, company); err != nil {
		return nil, err
	}
	if err := s.deps.Store.PutStock(ctx, stock); err != nil {
		return nil, fmt.Errorf("failed to save stock of company %s: %w", company.ID, err)
	}
	if err := s.deps.saveUsers(ctx, owner); err != nil {
		return nil, err
	}

	if err := s.deps.publish(events.CompanyCreatedEvent{
		GuildID:      company.GuildID,
		CompanyID:    company.ID,
		Name:         company.Name,
		OwnerID:      company.OwnerID,
		DailySalary:  company.DailySalary,
		InitialPrice: stock.CurrentPrice,
	}); err != nil {
		return nil, err
	}

	s.deps.notify(ctx, input.OwnerID, "会社設立のお知らせ",
		fmt.Sprintf("会社「%s」を設立しました。\n毎日%d:00に維持費として **日給×人数 + %s** いんコインが会社の資金から引き落とされます。\n資金が足りない場合、会社は倒産します。",
			company.Name, config.Get().PayoutHour, utils.FormatCoins(entities.MaintenanceOverhead)))

	return &CompanyInfo{Company: company, Stock: stock}, nil
}

// Edit changes the settings of the requester's company
func (s *CompanyService) Edit(ctx context.Context, ownerID int64, input EditCompanyInput) (*entities.Company, error) {
	if input.Name == nil && input.DailySalary == nil && input.Password == nil {
		return nil, newRuleError("変更する項目を1つ以上指定してください。")
	}

	user, company, unlock := s.deps.lockUserWithCompany(ctx, ownerID, interfaces.CompanyNamesLockKey)
	defer unlock()

	company, err := s.requireCompany(ctx, user, company)
	if err != nil {
		return nil, err
	}
	if !company.IsOwner(ownerID) {
		return nil, errNotOwner
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, newRuleError("会社名を入力してください。")
		}
		if err := s.ensureNameAvailable(ctx, name, company.ID); err != nil {
			return nil, err
		}
		company.Name = name
	}
	if input.DailySalary != nil {
		if *input.DailySalary < 0 {
			return nil, newRuleError("日給は0以上を指定してください。")
		}
		company.DailySalary = *input.DailySalary
	}
	if input.Password != nil {
		company.Password = *input.Password
	}

	if err := s.deps.saveCompany(ctx, company); err != nil {
		return nil, err
	}
	return company, nil
}

// Deposit moves money from a member's wallet into the company budget
func (s *CompanyService) Deposit(ctx context.Context, userID, amount int64) (*entities.Company, error) {
	if amount < 1 {
		return nil, errInvalidAmount
	}

	user, company, unlock := s.deps.lockUserWithCompany(ctx, userID)
	defer unlock()

	company, err := s.requireCompany(ctx, user, company)
	if err != nil {
		return nil, err
	}
	if user.Balance < amount {
		return nil, errInsufficientFunds
	}

	walletBefore, bankBefore := user.Balance, user.BankBalance
	user.AddBalance(-amount)
	company.Budget += amount

	if err := s.deps.saveUsers(ctx, user); err != nil {
		return nil, err
	}
	if err := s.deps.saveCompany(ctx, company); err != nil {
		return nil, err
	}
	if err := s.deps.publish(balanceChanged(user, events.ReasonCompanyDeposit, walletBefore, bankBefore)); err != nil {
		return nil, err
	}
	return company, nil
}

// Withdraw moves money from the company budget to the owner's wallet
func (s *CompanyService) Withdraw(ctx context.Context, ownerID, amount int64) (*entities.Company, error) {
	if amount < 1 {
		return nil, errInvalidAmount
	}

	user, company, unlock := s.deps.lockUserWithCompany(ctx, ownerID)
	defer unlock()

	company, err := s.requireCompany(ctx, user, company)
	if err != nil {
		return nil, err
	}
	if !company.IsOwner(ownerID) {
		return nil, errNotOwner
	}
	if company.Budget < amount {
		return nil, newRuleError("会社の資金が足りません。（残高: %s いんコイン）", utils.FormatCoins(company.Budget))
	}

	walletBefore, bankBefore := user.Balance, user.BankBalance
	company.Budget -= amount
	user.AddBalance(amount)

	if err := s.deps.saveCompany(ctx, company); err != nil {
		return nil, err
	}
	if err := s.deps.saveUsers(ctx, user); err != nil {
		return nil, err
	}
	if err := s.deps.publish(balanceChanged(user, events.ReasonCompanyWithdraw, walletBefore, bankBefore)); err != nil {
		return nil, err
	}
	return company, nil
}

// SetAutoDeposit sets whether member work income goes to the budget
func (s *CompanyService) SetAutoDeposit(ctx context.Context, ownerID int64, enabled bool) (*entities.Company, error) {
	user, company, unlock := s.deps.lockUserWithCompany(ctx, ownerID)
	defer unlock()

	company, err := s.requireCompany(ctx, user, company)
	if err != nil {
		return nil, err
	}
	if !company.IsOwner(ownerID) {
		return nil, errNotOwner
	}

	company.AutoDeposit = enabled
	if err := s.deps.saveCompany(ctx, company); err != nil {
		return nil, err
	}
	return company, nil
}

// Join adds the user to the named company. An empty password means none was given.
func (s *CompanyService) Join(ctx context.Context, userID int64, username, companyName, password string) (*entities.Company, error) {
	target, err := s.FindByName(ctx, companyName)
	if err != nil {
		return nil, err
	}

	unlock := s.deps.Store.Lock(interfaces.UserLockKey(userID), interfaces.CompanyLockKey(target.ID))
	defer unlock()

	company := s.deps.Store.Company(ctx, target.ID)
	if company == nil {
		return nil, newRuleError("「%s」という会社は見つかりません。", companyName)
	}

	user := s.deps.Store.User(ctx, userID)
	if company.HasMember(userID) || user.CompanyID == company.ID {
		return nil, newRuleError("既にこの会社に所属しています。")
	}
	if user.HasCompany() {
		if s.deps.Store.Company(ctx, user.CompanyID) != nil {
			return nil, newRuleError("既に他の会社に所属しています。")
		}
		user.LeaveCompany()
	}

	switch {
	case company.IsPasswordProtected() && password == "":
		return nil, newRuleError("この会社に参加するにはパスワードが必要です。")
	case company.IsPasswordProtected() && password != company.Password:
		return nil, newRuleError("パスワードが違います。")
	case !company.IsPasswordProtected() && password != "":
		return nil, newRuleError("この会社にはパスワードが設定されていません。")
	}

	company.AddMember(userID, username)
	user.CompanyID = company.ID

	if err := s.deps.saveCompany(ctx, company); err != nil {
		return nil, err
	}
	if err := s.deps.saveUsers(ctx, user); err != nil {
		return nil, err
	}
	return company, nil
}

// Leave removes a member from their company. Owners cannot leave; ownership
// transfer does not exist, so they have to delete the company instead.
func (s *CompanyService) Leave(ctx context.Context, userID int64) (*entities.Company, error) {
	user, company, unlock := s.deps.lockUserWithCompany(ctx, userID)
	defer unlock()

	company, err := s.requireCompany(ctx, user, company)
	if err != nil {
		return nil, err
	}
	if company.IsOwner(userID) {
		return nil, newRuleError("社長は会社を退職できません。会社を削除してください。")
	}

	company.RemoveMember(userID)
	user.LeaveCompany()

	if err := s.deps.saveCompany(ctx, company); err != nil {
		return nil, err
	}
	if err := s.deps.saveUsers(ctx, user); err != nil {
		return nil, err
	}
	return company, nil
}

// Delete dissolves the requester's company
func (s *CompanyService) Delete(ctx context.Context, ownerID int64) (*entities.Company, error) {
	user, company, unlock := s.deps.lockUserWithCompany(ctx, ownerID)
	company, err := s.requireCompany(ctx, user, company)
	unlock()
	if err != nil {
		return nil, err
	}
	if !company.IsOwner(ownerID) {
		return nil, errNotOwner
	}

	company, unlock = s.deps.lockCompanyMembers(ctx, company.ID)
	defer unlock()
	if company == nil {
		return nil, errNoCompany
	}
	if !company.IsOwner(ownerID) {
		return nil, errNotOwner
	}

	if err := dissolveCompany(ctx, s.deps, company); err != nil {
		return nil, err
	}
	if err := s.deps.publish(events.CompanyDeletedEvent{
		GuildID:   company.GuildID,
		CompanyID: company.ID,
		Name:      company.Name,
		Members:   company.MemberIDs(),
	}); err != nil {
		return nil, err
	}
	return company, nil
}

// Info returns the named company, or the user's own when name is empty
func (s *CompanyService) Info(ctx context.Context, userID int64, name string) (*CompanyInfo, error) {
	var company *entities.Company
	if strings.TrimSpace(name) != "" {
		found, err := s.FindByName(ctx, name)
		if err != nil {
			return nil, err
		}
		company = found
	} else {
		user := s.deps.Store.User(ctx, userID)
		if !user.HasCompany() {
			return nil, errNoCompany
		}
		company = s.deps.Store.Company(ctx, user.CompanyID)
		if company == nil {
			unlock := s.deps.Store.Lock(interfaces.UserLockKey(userID))
			defer unlock()
			_, err := s.requireCompany(ctx, s.deps.Store.User(ctx, userID), nil)
			return nil, err
		}
	}

	return &CompanyInfo{
		Company: company,
		Stock:   s.deps.Store.Stock(ctx, company.ID),
	}, nil
}

// FindByName looks a company up by case-insensitive name
func (s *CompanyService) FindByName(ctx context.Context, name string) (*entities.Company, error) {
	companies, err := s.deps.Store.Companies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	name = strings.TrimSpace(name)
	for _, c := range companies {
		if c.NameEquals(name) {
			return c, nil
		}
	}
	return nil, newRuleError("「%s」という会社は見つかりません。", name)
}

// Names lists every company name, for autocompletion
func (s *CompanyService) Names(ctx context.Context) ([]string, error) {
	companies, err := s.deps.Store.Companies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	names := make([]string, 0, len(companies))
	for _, c := range companies {
		names = append(names, c.Name)
	}
	return names, nil
}

func (s *CompanyService) ensureNameAvailable(ctx context.Context, name, exceptID string) error {
	companies, err := s.deps.Store.Companies(ctx)
	if err != nil {
		return fmt.Errorf("failed to list companies: %w", err)
	}
	for _, c := range companies {
		if c.ID != exceptID && c.NameEquals(name) {
			return newRuleError("「%s」という名前の会社は既に存在します。", name)
		}
	}
	return nil
}

// requireCompany returns the user's company. A user pointing at a company
// that no longer exists is detached from it. The caller must hold the user lock.
func (s *CompanyService) requireCompany(ctx context.Context, user *entities.UserAccount, company *entities.Company) (*entities.Company, error) {
	if company != nil {
		return company, nil
	}
	if !user.HasCompany() {
		return nil, errNoCompany
	}

	user.LeaveCompany()
	if err := s.deps.saveUsers(ctx, user); err != nil {
		return nil, err
	}
	return nil, errCompanyMissing
}

// dissolveCompany detaches every member and deletes the company with its
// stock. The caller must hold the locks of lockCompanyMembers.
func dissolveCompany(ctx context.Context, deps Dependencies, company *entities.Company) error {
	for id := range memberSet(company) {
		member := deps.Store.User(ctx, id)
		if member.CompanyID != company.ID {
			continue
		}
		member.LeaveCompany()
		if err := deps.saveUsers(ctx, member); err != nil {
			return err
		}
	}

	if err := deps.Store.DeleteCompany(ctx, company.ID); err != nil {
		return fmt.Errorf("failed to delete company %s: %w", company.ID, err)
	}
	return nil
}
