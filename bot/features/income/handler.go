package income

import (
	"fmt"
	"strconv"

	"incoin/bot/common"
	"incoin/domain/utils"
)

func (f *Feature) handleWork(cmd *common.Command) error {
	result, err := cmd.Services.Work.Work(cmd.Ctx, cmd.UserID)
	if err != nil {
		return common.FromServiceError(err, "Work rejected")
	}

	description := fmt.Sprintf("お疲れ様です！ %s いんコインを獲得しました。", utils.FormatCoins(result.Income))
	if result.Deposited() {
		description += fmt.Sprintf("\nこの金額は、自動で会社「%s」の予算に入金されました。", result.CompanyName)
	}

	embed := cmd.Embed("お仕事結果", description, common.ColorSuccess)
	common.AddField(embed, "職業", result.Job, false)
	if result.Deposited() {
		common.AddField(embed, "あなたの所持金", common.FormatCoins(result.User.Balance), false)
		common.AddField(embed, "会社の予算", common.FormatCoins(result.CompanyBudget), false)
	} else {
		common.AddField(embed, "現在の残高", common.FormatCoins(result.User.Balance), false)
	}
	common.AddField(embed, "信用ポイント", strconv.FormatInt(result.User.CreditPoint, 10), false)
	return cmd.Reply(embed)
}

func (f *Feature) handleGambling(cmd *common.Command) error {
	bet, _ := cmd.Int("amount")
	result, err := cmd.Services.Gambling.Gamble(cmd.Ctx, cmd.UserID, bet)
	if err != nil {
		return common.FromServiceError(err, "Gamble rejected")
	}

	multiplier := fmt.Sprintf("%.2f", result.Multiplier)
	var (
		description string
		color       int
	)
	if result.Won() {
		description = fmt.Sprintf("あたり！ %s いんコインが %s 倍になり、%s いんコインを獲得しました！",
			utils.FormatCoins(result.Bet), multiplier, utils.FormatCoins(result.Payout))
		color = common.ColorSuccess
	} else {
		description = fmt.Sprintf("はずれ... %s いんコインが %s 倍になり、%s いんコインになりました。",
			utils.FormatCoins(result.Bet), multiplier, utils.FormatCoins(result.Payout))
		color = common.ColorDanger
	}

	embed := cmd.Embed("いんコインギャンブル結果", description, color)
	common.AddField(embed, "賭け金", common.FormatCoins(result.Bet), true)
	common.AddField(embed, "倍率", multiplier+" 倍", true)
	common.AddField(embed, "獲得/損失", common.FormatCoins(result.Payout-result.Bet), true)
	common.AddField(embed, "現在の残高", common.FormatCoins(result.User.Balance), false)
	return cmd.Reply(embed)
}

func (f *Feature) handleRob(cmd *common.Command) error {
	target := cmd.UserOption("target")
	if target == nil {
		return common.NewUserError("盗む相手を指定してください。", "Rob without target")
	}
	targetID, err := common.ParseID(target.ID)
	if err != nil {
		return common.NewSystemError(err, "Failed to parse rob target ID")
	}

	result, err := cmd.Services.Gambling.Rob(cmd.Ctx, cmd.UserID, targetID, target.Bot)
	if err != nil {
		return common.FromServiceError(err, "Rob rejected")
	}

	if result.Success {
		embed := cmd.Embed("強盗結果",
			fmt.Sprintf("強盗成功！ %s さんから %s を盗みました！", target.Username, common.FormatBoldCoins(result.Amount)),
			common.ColorSuccess)
		common.AddField(embed, cmd.User.Username+" の現在の残高", common.FormatCoins(result.Robber.Balance), true)
		common.AddField(embed, target.Username+" の現在の残高", common.FormatCoins(result.Target.Balance), true)
		common.AddField(embed, "あなたの信用ポイント", strconv.FormatInt(result.Robber.CreditPoint, 10), false)
		return cmd.Reply(embed)
	}

	embed := cmd.Embed("強盗結果",
		fmt.Sprintf("強盗失敗... %s さんからいんコインを盗むことができませんでした。\n罰金として %s を失いました。",
			target.Username, common.FormatBoldCoins(result.Amount)),
		common.ColorDanger)
	common.AddField(embed, cmd.User.Username+" の現在の残高", common.FormatCoins(result.Robber.Balance), false)
	common.AddField(embed, "あなたの信用ポイント", strconv.FormatInt(result.Robber.CreditPoint, 10), false)
	return cmd.Reply(embed)
}
