package income

import (
	"incoin/bot/common"
)

// Feature handles the ways of earning coins: work, gambling and robbing
type Feature struct{}

// New creates the income feature
func New() *Feature {
	return &Feature{}
}

// HandleCommand routes /work, /gambling and /rob
func (f *Feature) HandleCommand(cmd *common.Command) error {
	switch cmd.Name() {
	case "work":
		return f.handleWork(cmd)
	case "gambling":
		return f.handleGambling(cmd)
	case "rob":
		return f.handleRob(cmd)
	}
	return common.NewUserError("不明なコマンドです。", "Unknown income command")
}
