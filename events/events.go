package events

import "time"

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChanged    EventType = "balance_changed"
	EventTypePenaltyApplied    EventType = "penalty_applied"
	EventTypeInterestApplied   EventType = "interest_applied"
	EventTypeCompanyCreated    EventType = "company_created"
	EventTypeCompanyDeleted    EventType = "company_deleted"
	EventTypePayrollSettled    EventType = "payroll_settled"
	EventTypeStockPriceUpdated EventType = "stock_price_updated"
)

// AllEventTypes lists every event type, in declaration order
var AllEventTypes = []EventType{
	EventTypeBalanceChanged,
	EventTypePenaltyApplied,
	EventTypeInterestApplied,
	EventTypeCompanyCreated,
	EventTypeCompanyDeleted,
	EventTypePayrollSettled,
	EventTypeStockPriceUpdated,
}

// Event is the base interface for all events
type Event interface {
	Type() EventType
	Guild() int64
}

// ChangeReason tells why a balance moved
type ChangeReason string

const (
	ReasonWork            ChangeReason = "work"
	ReasonGamble          ChangeReason = "gamble"
	ReasonRob             ChangeReason = "rob"
	ReasonDeposit         ChangeReason = "deposit"
	ReasonWithdraw        ChangeReason = "withdraw"
	ReasonTransfer        ChangeReason = "transfer"
	ReasonAdmin           ChangeReason = "admin"
	ReasonChatReward      ChangeReason = "chat_reward"
	ReasonJobChange       ChangeReason = "job_change"
	ReasonStockTrade      ChangeReason = "stock_trade"
	ReasonCompanyDeposit  ChangeReason = "company_deposit"
	ReasonCompanyWithdraw ChangeReason = "company_withdraw"
	ReasonPayroll         ChangeReason = "payroll"
	ReasonPenalty         ChangeReason = "penalty"
	ReasonInterest        ChangeReason = "interest"
)

// BalanceChangedEvent is emitted whenever a wallet or bank balance moves
type BalanceChangedEvent struct {
	GuildID        int64        `json:"guild_id"`
	UserID         int64        `json:"user_id"`
	Reason         ChangeReason `json:"reason"`
	WalletDelta    int64        `json:"wallet_delta"`
	BankDelta      int64        `json:"bank_delta"`
	NewBalance     int64        `json:"new_balance"`
	NewBankBalance int64        `json:"new_bank_balance"`
}

func (e BalanceChangedEvent) Type() EventType { return EventTypeBalanceChanged }
func (e BalanceChangedEvent) Guild() int64    { return e.GuildID }

// PenaltyAppliedEvent records a negative credit penalty
type PenaltyAppliedEvent struct {
	GuildID      int64 `json:"guild_id"`
	UserID       int64 `json:"user_id"`
	Percentage   int64 `json:"percentage"`
	FromBank     int64 `json:"from_bank"`
	FromWallet   int64 `json:"from_wallet"`
	CreditPoints int64 `json:"credit_points"`
}

func (e PenaltyAppliedEvent) Type() EventType { return EventTypePenaltyApplied }
func (e PenaltyAppliedEvent) Guild() int64    { return e.GuildID }

// InterestAppliedEvent records one user's weekly settlement
type InterestAppliedEvent struct {
	GuildID     int64 `json:"guild_id"`
	UserID      int64 `json:"user_id"`
	BankDelta   int64 `json:"bank_delta"`
	CreditDelta int64 `json:"credit_delta"`
}

func (e InterestAppliedEvent) Type() EventType { return EventTypeInterestApplied }
func (e InterestAppliedEvent) Guild() int64    { return e.GuildID }

// CompanyCreatedEvent is emitted when a company is founded
type CompanyCreatedEvent struct {
	GuildID      int64  `json:"guild_id"`
	CompanyID    string `json:"company_id"`
	Name         string `json:"name"`
	OwnerID      int64  `json:"owner_id"`
	DailySalary  int64  `json:"daily_salary"`
	InitialPrice int64  `json:"initial_price"`
}

func (e CompanyCreatedEvent) Type() EventType { return EventTypeCompanyCreated }
func (e CompanyCreatedEvent) Guild() int64    { return e.GuildID }

// CompanyDeletedEvent is emitted when a company is removed
type CompanyDeletedEvent struct {
	GuildID   int64   `json:"guild_id"`
	CompanyID string  `json:"company_id"`
	Name      string  `json:"name"`
	Members   []int64 `json:"members"`
	Bankrupt  bool    `json:"bankrupt"`
}

func (e CompanyDeletedEvent) Type() EventType { return EventTypeCompanyDeleted }
func (e CompanyDeletedEvent) Guild() int64    { return e.GuildID }

// PayrollSettledEvent is emitted after a solvent company paid its members
type PayrollSettledEvent struct {
	GuildID        int64     `json:"guild_id"`
	CompanyID      string    `json:"company_id"`
	MaintenanceFee int64     `json:"maintenance_fee"`
	SalaryPaid     int64     `json:"salary_paid"`
	Members        int       `json:"members"`
	RemainingFunds int64     `json:"remaining_funds"`
	SettledAt      time.Time `json:"settled_at"`
}

func (e PayrollSettledEvent) Type() EventType { return EventTypePayrollSettled }
func (e PayrollSettledEvent) Guild() int64    { return e.GuildID }

// StockPriceUpdatedEvent is emitted for every random-walk step
type StockPriceUpdatedEvent struct {
	GuildID   int64     `json:"guild_id"`
	CompanyID string    `json:"company_id"`
	OldPrice  int64     `json:"old_price"`
	NewPrice  int64     `json:"new_price"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (e StockPriceUpdatedEvent) Type() EventType { return EventTypeStockPriceUpdated }
func (e StockPriceUpdatedEvent) Guild() int64    { return e.GuildID }
