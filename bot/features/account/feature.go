package account

import (
	"context"

	"incoin/bot/common"
	"incoin/domain/entities"
	"incoin/store"
)

// RecordLoader reloads cached records from the remote store
type RecordLoader interface {
	ReloadUser(ctx context.Context, guildID, userID int64) *entities.UserAccount
	Resync(ctx context.Context, guildID int64) (*store.ResyncReport, error)
}

// Feature handles sign-up and account inspection commands
type Feature struct {
	loader RecordLoader
}

// New creates the account feature
func New(loader RecordLoader) *Feature {
	return &Feature{loader: loader}
}

// HandleCommand routes /register, /money and /load
func (f *Feature) HandleCommand(cmd *common.Command) error {
	switch cmd.Name() {
	case "register":
		return f.handleRegister(cmd)
	case "load":
		return f.handleLoad(cmd)
	}

	switch cmd.Subcommand() {
	case "help":
		return f.handleHelp(cmd)
	case "balance":
		return f.handleBalance(cmd)
	case "info":
		return f.handleInfo(cmd)
	}
	return common.NewUserError("不明なサブコマンドです。", "Unknown money subcommand")
}

// StoreLoader adapts the cache service to RecordLoader
type StoreLoader struct {
	Stores *store.Service
}

// ReloadUser drops the cached account and reads it again
func (l StoreLoader) ReloadUser(ctx context.Context, guildID, userID int64) *entities.UserAccount {
	return l.Stores.Guild(guildID).ReloadUser(ctx, userID)
}

// Resync reloads the whole guild
func (l StoreLoader) Resync(ctx context.Context, guildID int64) (*store.ResyncReport, error) {
	return l.Stores.Resync(ctx, guildID)
}
