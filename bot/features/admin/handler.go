package admin

import (
	"fmt"

	"incoin/bot/common"
	"incoin/domain/utils"

	log "github.com/sirupsen/logrus"
)

func (f *Feature) handleAdjust(cmd *common.Command, remove bool) error {
	amount, _ := cmd.Int("amount")
	if amount < 1 {
		return common.NewUserError("金額は1以上を指定してください。", "Non-positive admin amount")
	}

	targets, err := common.ResolveTargets(cmd)
	if err != nil {
		return err
	}

	delta := amount
	title, verb := "いんコイン追加", "追加"
	if remove {
		delta = -amount
		title, verb = "いんコイン削除", "削除"
	}

	updated, err := cmd.Services.Ledger.AdminAdjust(cmd.Ctx, targets.UserIDs, delta)
	if err != nil {
		return common.FromServiceError(err, "Admin adjustment failed")
	}

	log.WithFields(log.Fields{
		"guild_id": cmd.GuildID,
		"admin_id": cmd.UserID,
		"targets":  len(updated),
		"delta":    delta,
	}).Info("Admin adjusted balances")

	particle := "に"
	if remove {
		particle = "から"
	}

	var description string
	if targets.IsRole {
		description = fmt.Sprintf("%s ロールの %d 人のメンバー%s %s いんコインを%sしました。",
			targets.Label, len(updated), particle, utils.FormatCoins(amount), verb)
	} else {
		description = fmt.Sprintf("%s %s %s いんコインを%sしました。\n現在の残高: %s",
			targets.Label, particle, utils.FormatCoins(amount), verb, common.FormatCoins(updated[0].Balance))
	}

	color := common.ColorSuccess
	if remove {
		color = common.ColorDanger
	}
	return cmd.Reply(cmd.Embed(title, description, color))
}
