package entities

import (
	"encoding/json"
	"fmt"
)

// CurrentSchemaVersion is the document layout written by this build.
//
// Version history:
//
//	0: documents written before versioning; users may lack is_registered
//	1: explicit is_registered, stock positions keyed by company id
const CurrentSchemaVersion = 1

// DecodeUserAccount builds an account from a stored document. Fields missing
// from the document keep their defaults and older layouts are upgraded.
func DecodeUserAccount(guildID, userID int64, version int, data []byte) (*UserAccount, error) {
	user := NewUserAccount(guildID, userID)
	if err := json.Unmarshal(data, user); err != nil {
		return nil, fmt.Errorf("failed to decode user %d in guild %d: %w", userID, guildID, err)
	}

	if version < 1 {
		var keys map[string]json.RawMessage
		if err := json.Unmarshal(data, &keys); err != nil {
			return nil, fmt.Errorf("failed to inspect user %d in guild %d: %w", userID, guildID, err)
		}
		// Accounts created before registration existed count as registered
		if _, ok := keys["is_registered"]; !ok {
			user.IsRegistered = true
		}
	}

	user.Balance = clampNonNegative(user.Balance)
	user.BankBalance = clampNonNegative(user.BankBalance)
	if user.Job == "" {
		user.Job = JobUnemployed
	}
	if user.Username == "" {
		user.Username = DefaultUsername
	}
	if user.Stocks == nil {
		user.Stocks = make(map[string]int64)
	}
	for companyID, amount := range user.Stocks {
		if amount <= 0 {
			delete(user.Stocks, companyID)
		}
	}

	user.SchemaVersion = CurrentSchemaVersion
	return user, nil
}

// DecodeCompany builds a company from a stored document
func DecodeCompany(guildID int64, companyID string, version int, data []byte) (*Company, error) {
	company := &Company{GuildID: guildID, ID: companyID}
	if err := json.Unmarshal(data, company); err != nil {
		return nil, fmt.Errorf("failed to decode company %s in guild %d: %w", companyID, guildID, err)
	}
	if company.Members == nil {
		company.Members = []CompanyMember{}
	}
	if company.DailySalary < 0 {
		company.DailySalary = 0
	}
	company.SchemaVersion = CurrentSchemaVersion
	return company, nil
}

// DecodeStockRecord builds a stock record from a stored document
func DecodeStockRecord(guildID int64, companyID string, version int, data []byte) (*StockRecord, error) {
	stock := NewStockRecord(guildID, companyID)
	if err := json.Unmarshal(data, stock); err != nil {
		return nil, fmt.Errorf("failed to decode stock %s in guild %d: %w", companyID, guildID, err)
	}
	if stock.PriceHistory == nil {
		stock.PriceHistory = []PricePoint{}
	}
	stock.SchemaVersion = CurrentSchemaVersion
	return stock, nil
}

// DecodeChannelReward builds a channel reward from a stored document
func DecodeChannelReward(guildID, channelID int64, version int, data []byte) (*ChannelReward, error) {
	reward := NewChannelReward(guildID, channelID, 0, 0)
	if err := json.Unmarshal(data, reward); err != nil {
		return nil, fmt.Errorf("failed to decode channel reward %d in guild %d: %w", channelID, guildID, err)
	}
	reward.SchemaVersion = CurrentSchemaVersion
	return reward, nil
}

// Encode serializes any record document for storage
func Encode(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}
	return data, nil
}
