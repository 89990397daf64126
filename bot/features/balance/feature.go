package balance

import (
	"incoin/bot/common"
)

// Feature moves money between the wallet and the bank
type Feature struct{}

// New creates the balance feature
func New() *Feature {
	return &Feature{}
}

// HandleCommand routes /deposit and /withdraw
func (f *Feature) HandleCommand(cmd *common.Command) error {
	amount, _ := cmd.Int("amount")
	switch cmd.Name() {
	case "deposit":
		return f.handleDeposit(cmd, amount)
	default:
		return f.handleWithdraw(cmd, amount)
	}
}
