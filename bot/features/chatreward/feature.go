package chatreward

import (
	"context"

	"incoin/bot/common"

	log "github.com/sirupsen/logrus"
)

// Feature pays passive income for chat messages in configured channels
type Feature struct{}

// New creates the chat reward feature
func New() *Feature {
	return &Feature{}
}

// HandleCommand handles /channel-money
func (f *Feature) HandleCommand(cmd *common.Command) error {
	if !cmd.IsAdmin {
		return common.NewUserError("このコマンドを実行するには管理者権限が必要です。", "channel-money without permission")
	}
	return f.handleChannelMoney(cmd)
}

// HandleMessage rewards the author of a guild message. Unconfigured
// channels cost nothing.
func (f *Feature) HandleMessage(ctx context.Context, svc *common.Services, channelID, userID int64) {
	earned, err := svc.ChatRewards.Reward(ctx, channelID, userID)
	if err != nil {
		log.WithFields(log.Fields{
			"guild_id":   svc.Deps.Store.GuildID(),
			"channel_id": channelID,
			"user_id":    userID,
			"error":      err,
		}).Error("Failed to pay chat reward")
		return
	}
	if earned > 0 {
		log.WithFields(log.Fields{
			"guild_id":   svc.Deps.Store.GuildID(),
			"channel_id": channelID,
			"user_id":    userID,
			"earned":     earned,
		}).Debug("Chat reward paid")
	}
}
