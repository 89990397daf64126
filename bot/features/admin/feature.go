package admin

import (
	"incoin/bot/common"
)

// Feature holds the administrator-only money commands
type Feature struct{}

// New creates the admin feature
func New() *Feature {
	return &Feature{}
}

// HandleCommand routes /add-money and /remove-money
func (f *Feature) HandleCommand(cmd *common.Command) error {
	if !cmd.IsAdmin {
		return common.NewUserError("このコマンドを実行するには管理者権限が必要です。", "Admin command without permission")
	}
	return f.handleAdjust(cmd, cmd.Name() == "remove-money")
}
