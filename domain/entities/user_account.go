package entities

import (
	"time"
)

const (
	// JobUnemployed is the job every account starts with
	JobUnemployed = "無職"
	// JobPresident is reserved for company owners
	JobPresident = "社長"

	// DefaultUsername is shown for accounts that never registered a name
	DefaultUsername = "不明なユーザー"

	// DefaultCreditPoint is the credit score of a fresh account
	DefaultCreditPoint int64 = 5
	// PenaltyCreditPoint is the score an account is reset to by the negative credit penalty
	PenaltyCreditPoint int64 = -10
)

// UserAccount is a member's economy state within one guild
type UserAccount struct {
	GuildID int64 `json:"-"`
	UserID  int64 `json:"-"`

	Username                  string           `json:"username"`
	Balance                   int64            `json:"balance"`
	BankBalance               int64            `json:"bank_balance"`
	CreditPoint               int64            `json:"credit_point"`
	LastWorkTime              time.Time        `json:"last_work_time"`
	LastRobTime               time.Time        `json:"last_rob_time"`
	LastInterestTime          time.Time        `json:"last_interest_time"`
	PunishedForNegativeCredit bool             `json:"punished_for_negative_credit"`
	Job                       string           `json:"job"`
	IsRegistered              bool             `json:"is_registered"`
	CompanyID                 string           `json:"company_id"`
	Stocks                    map[string]int64 `json:"stocks"`

	SchemaVersion int `json:"-"`
}

// NewUserAccount returns the default account for a user that has no stored record
func NewUserAccount(guildID, userID int64) *UserAccount {
	return &UserAccount{
		GuildID:       guildID,
		UserID:        userID,
		Username:      DefaultUsername,
		CreditPoint:   DefaultCreditPoint,
		Job:           JobUnemployed,
		Stocks:        make(map[string]int64),
		SchemaVersion: CurrentSchemaVersion,
	}
}

// AddBalance changes the wallet by delta, saturating at zero
func (u *UserAccount) AddBalance(delta int64) {
	u.Balance = clampNonNegative(u.Balance + delta)
}

// AddBankBalance changes the bank balance by delta, saturating at zero
func (u *UserAccount) AddBankBalance(delta int64) {
	u.BankBalance = clampNonNegative(u.BankBalance + delta)
}

// AddCreditPoint changes the credit score. Recovering from a negative score
// clears the punishment flag so a later excursion is punished again.
func (u *UserAccount) AddCreditPoint(delta int64) {
	before := u.CreditPoint
	u.CreditPoint += delta
	if before < 0 && u.CreditPoint >= 0 {
		u.PunishedForNegativeCredit = false
	}
}

// TotalAssets is wallet plus bank
func (u *UserAccount) TotalAssets() int64 {
	return u.Balance + u.BankBalance
}

// HasCompany reports whether the account belongs to a company
func (u *UserAccount) HasCompany() bool {
	return u.CompanyID != ""
}

// LeaveCompany detaches the account from its company and makes it unemployed
func (u *UserAccount) LeaveCompany() {
	u.CompanyID = ""
	u.Job = JobUnemployed
}

// StockAmount returns the number of shares held in a company
func (u *UserAccount) StockAmount(companyID string) int64 {
	return u.Stocks[companyID]
}

// AddStock changes a stock position, dropping it once it reaches zero
func (u *UserAccount) AddStock(companyID string, delta int64) {
	if u.Stocks == nil {
		u.Stocks = make(map[string]int64)
	}
	amount := u.Stocks[companyID] + delta
	if amount <= 0 {
		delete(u.Stocks, companyID)
		return
	}
	u.Stocks[companyID] = amount
}

// Clone returns a deep copy
func (u *UserAccount) Clone() *UserAccount {
	if u == nil {
		return nil
	}
	c := *u
	c.Stocks = make(map[string]int64, len(u.Stocks))
	for k, v := range u.Stocks {
		c.Stocks[k] = v
	}
	return &c
}

func clampNonNegative(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
