package interfaces

import (
	"context"

	"incoin/domain/entities"
)

// UserAccountRepository is the remote store for user accounts of one guild.
// Get returns nil, nil when no record exists.
type UserAccountRepository interface {
	Get(ctx context.Context, userID int64) (*entities.UserAccount, error)
	// Upsert writes the account, merging its fields into any stored document
	Upsert(ctx context.Context, user *entities.UserAccount) error
	Delete(ctx context.Context, userID int64) error
	List(ctx context.Context) ([]*entities.UserAccount, error)
}

// CompanyRepository is the remote store for companies of one guild
type CompanyRepository interface {
	Get(ctx context.Context, companyID string) (*entities.Company, error)
	Upsert(ctx context.Context, company *entities.Company) error
	Delete(ctx context.Context, companyID string) error
	List(ctx context.Context) ([]*entities.Company, error)
}

// StockRepository is the remote store for company stocks of one guild
type StockRepository interface {
	Get(ctx context.Context, companyID string) (*entities.StockRecord, error)
	Upsert(ctx context.Context, stock *entities.StockRecord) error
	Delete(ctx context.Context, companyID string) error
	List(ctx context.Context) ([]*entities.StockRecord, error)
}

// ChannelRewardRepository is the remote store for chat reward settings of one guild
type ChannelRewardRepository interface {
	Get(ctx context.Context, channelID int64) (*entities.ChannelReward, error)
	Upsert(ctx context.Context, reward *entities.ChannelReward) error
	Delete(ctx context.Context, channelID int64) error
	List(ctx context.Context) ([]*entities.ChannelReward, error)
}

// UnitOfWork groups guild-scoped repository calls into one transaction
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserAccountRepository() UserAccountRepository
	CompanyRepository() CompanyRepository
	StockRepository() StockRepository
	ChannelRewardRepository() ChannelRewardRepository
}

// UnitOfWorkFactory creates guild-scoped units of work
type UnitOfWorkFactory interface {
	CreateForGuild(guildID int64) UnitOfWork
}
