package balance

import (
	"fmt"

	"incoin/bot/common"
	"incoin/domain/entities"
	"incoin/domain/utils"

	"github.com/bwmarrin/discordgo"
)

func (f *Feature) handleDeposit(cmd *common.Command, amount int64) error {
	user, err := cmd.Services.Ledger.Deposit(cmd.Ctx, cmd.UserID, amount)
	if err != nil {
		return common.FromServiceError(err, "Failed to deposit")
	}
	return cmd.Reply(balanceEmbed(cmd, "預金完了",
		fmt.Sprintf("%s いんコインを銀行に預けました。", utils.FormatCoins(amount)), user))
}

func (f *Feature) handleWithdraw(cmd *common.Command, amount int64) error {
	user, err := cmd.Services.Ledger.Withdraw(cmd.Ctx, cmd.UserID, amount)
	if err != nil {
		return common.FromServiceError(err, "Failed to withdraw")
	}
	return cmd.Reply(balanceEmbed(cmd, "引き出し完了",
		fmt.Sprintf("%s いんコインを銀行から引き出しました。", utils.FormatCoins(amount)), user))
}

func balanceEmbed(cmd *common.Command, title, description string, user *entities.UserAccount) *discordgo.MessageEmbed {
	embed := cmd.Embed(title, description, common.ColorSuccess)
	common.AddField(embed, "現在の所持金", common.FormatCoins(user.Balance), true)
	common.AddField(embed, "現在の銀行残高", common.FormatCoins(user.BankBalance), true)
	return embed
}
