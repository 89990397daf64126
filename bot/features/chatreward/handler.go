package chatreward

import (
	"fmt"

	"incoin/bot/common"
	"incoin/domain/utils"
)

func (f *Feature) handleChannelMoney(cmd *common.Command) error {
	channel := cmd.ChannelOption("channel")
	if channel == nil {
		return common.NewUserError("チャンネルを指定してください。", "channel-money without channel")
	}
	channelID, err := common.ParseID(channel.ID)
	if err != nil {
		return common.NewSystemError(err, "Failed to parse channel ID")
	}

	minAmount, _ := cmd.Int("min")
	maxAmount, _ := cmd.Int("max")
	if _, err := cmd.Services.ChatRewards.Configure(cmd.Ctx, channelID, minAmount, maxAmount); err != nil {
		return common.FromServiceError(err, "Failed to configure chat reward")
	}

	name := channel.Name
	if name == "" {
		name = "<#" + channel.ID + ">"
	}
	return cmd.Reply(cmd.Embed("チャンネル報酬設定",
		fmt.Sprintf("%s でのチャット報酬を %s いんコインから %s いんコインに設定しました。",
			name, utils.FormatCoins(minAmount), utils.FormatCoins(maxAmount)),
		common.ColorSuccess))
}
