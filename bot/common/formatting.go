package common

import (
	"fmt"
	"strconv"

	"incoin/domain/utils"
)

// FormatCoins formats an amount with thousand separators and the currency name
func FormatCoins(amount int64) string {
	return fmt.Sprintf("%s %s", utils.FormatCoins(amount), CurrencyName)
}

// FormatBoldCoins formats an amount for embed descriptions
func FormatBoldCoins(amount int64) string {
	return fmt.Sprintf("**%s** %s", utils.FormatCoins(amount), CurrencyName)
}

// FormatPercent formats a share in [0,1] as a whole percentage
func FormatPercent(rate float64) string {
	return fmt.Sprintf("%.0f%%", rate*100)
}

// FormatUserID converts an int64 user ID to string
func FormatUserID(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

// ParseID converts a Discord snowflake to int64
func ParseID(id string) (int64, error) {
	return strconv.ParseInt(id, 10, 64)
}

// GetUserMention returns a Discord mention string for a user
func GetUserMention(userID int64) string {
	return "<@" + FormatUserID(userID) + ">"
}

// OnOff renders a toggle state
func OnOff(enabled bool) string {
	if enabled {
		return "ON"
	}
	return "OFF"
}
