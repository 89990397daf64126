package interfaces

import (
	"context"
	"fmt"

	"incoin/domain/entities"
)

// RecordStore is the cached view of one guild's economy records.
//
// Reads never fail: a record that cannot be loaded is replaced by its
// default. Writes always update the cache and return the persistence result.
// Returned records are copies; changes only take effect through a Put call.
type RecordStore interface {
	GuildID() int64

	User(ctx context.Context, userID int64) *entities.UserAccount
	// LoadUser is User without the fallback: a load failure is returned
	// instead of being replaced by a default account
	LoadUser(ctx context.Context, userID int64) (*entities.UserAccount, error)
	PutUser(ctx context.Context, user *entities.UserAccount) error
	Users(ctx context.Context) ([]*entities.UserAccount, error)

	// Company returns nil when the company does not exist
	Company(ctx context.Context, companyID string) *entities.Company
	PutCompany(ctx context.Context, company *entities.Company) error
	// DeleteCompany removes the company together with its stock record
	DeleteCompany(ctx context.Context, companyID string) error
	Companies(ctx context.Context) ([]*entities.Company, error)

	Stock(ctx context.Context, companyID string) *entities.StockRecord
	PutStock(ctx context.Context, stock *entities.StockRecord) error
	DeleteStock(ctx context.Context, companyID string) error
	Stocks(ctx context.Context) ([]*entities.StockRecord, error)

	// ChannelReward returns nil when the channel has no reward configured
	ChannelReward(ctx context.Context, channelID int64) *entities.ChannelReward
	PutChannelReward(ctx context.Context, reward *entities.ChannelReward) error

	// Lock serializes access to the given record keys and returns the unlock func.
	// All keys must be requested in a single call.
	Lock(keys ...string) func()
}

// UserLockKey is the Lock key guarding a user account
func UserLockKey(userID int64) string {
	return fmt.Sprintf("user:%d", userID)
}

// CompanyLockKey is the Lock key guarding a company record
func CompanyLockKey(companyID string) string {
	return "company:" + companyID
}

// StockLockKey is the Lock key guarding a stock record
func StockLockKey(companyID string) string {
	return "stock:" + companyID
}

// ChannelRewardLockKey is the Lock key guarding a channel reward config
func ChannelRewardLockKey(channelID int64) string {
	return fmt.Sprintf("channel:%d", channelID)
}

// CompanyNamesLockKey guards the set of company names of a guild
const CompanyNamesLockKey = "company-names"
