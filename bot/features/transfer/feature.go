package transfer

import (
	"incoin/bot/common"
)

type Feature struct{}

func New() *Feature {
	return &Feature{}
}

func (f *Feature) HandleCommand(cmd *common.Command) error {
	return f.handleGiveMoney(cmd)
}
