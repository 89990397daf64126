package testutil

import (
	"time"

	"incoin/domain/entities"

	"github.com/google/uuid"
)

// CreateTestUser returns a registered account with some money
func CreateTestUser(guildID, userID int64, username string) *entities.UserAccount {
	user := entities.NewUserAccount(guildID, userID)
	user.Username = username
	user.IsRegistered = true
	user.Balance = 100000
	user.BankBalance = 50000
	return user
}

// CreateTestCompany returns a company owned by ownerID with a fresh uuid
func CreateTestCompany(guildID, ownerID int64, name string) *entities.Company {
	company := entities.NewCompany(guildID, uuid.NewString(), name, ownerID, "owner", 1000, "", time.Now().UTC().Truncate(time.Millisecond))
	company.Budget = 500000
	return company
}

// CreateTestStock returns an initialized stock record for a company
func CreateTestStock(guildID int64, companyID string, price int64) *entities.StockRecord {
	stock := entities.NewStockRecord(guildID, companyID)
	stock.RecordPrice(price, time.Now().UTC().Truncate(time.Millisecond))
	return stock
}

// CreateTestChannelReward returns a reward config for a channel
func CreateTestChannelReward(guildID, channelID, min, max int64) *entities.ChannelReward {
	return entities.NewChannelReward(guildID, channelID, min, max)
}
