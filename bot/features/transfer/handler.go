package transfer

import (
	"fmt"

	"incoin/bot/common"
	"incoin/domain/utils"

	log "github.com/sirupsen/logrus"
)

func (f *Feature) handleGiveMoney(cmd *common.Command) error {
	amount, _ := cmd.Int("amount")

	targets, err := common.ResolveTargets(cmd)
	if err != nil {
		return err
	}

	result, err := cmd.Services.Ledger.Give(cmd.Ctx, cmd.UserID, targets.UserIDs, amount)
	if err != nil {
		return common.FromServiceError(err, "Transfer rejected")
	}

	log.WithFields(log.Fields{
		"guild_id":   cmd.GuildID,
		"giver_id":   cmd.UserID,
		"recipients": len(result.Recipients),
		"amount":     amount,
		"total":      result.Total,
	}).Info("Coins transferred")

	var description string
	if targets.IsRole {
		description = fmt.Sprintf("%s ロールの %d 人のメンバーにそれぞれ %s いんコインを渡しました。",
			targets.Label, len(result.Recipients), utils.FormatCoins(amount))
	} else {
		description = fmt.Sprintf("%s に %s いんコインを渡しました。", targets.Label, utils.FormatCoins(amount))
	}

	embed := cmd.Embed("いんコイン送金完了", description, common.ColorSuccess)
	common.AddField(embed, "合計", common.FormatCoins(result.Total), true)
	common.AddField(embed, cmd.User.Username+" の現在の残高", common.FormatCoins(result.Giver.Balance), true)
	return cmd.Reply(embed)
}
