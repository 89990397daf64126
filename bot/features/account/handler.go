package account

import (
	"fmt"
	"strconv"

	"incoin/bot/common"
	"incoin/domain/services"
	"incoin/domain/utils"

	log "github.com/sirupsen/logrus"
)

var moneyHelp = []struct{ name, value string }{
	{"/money balance [user]", "自分または他のユーザーの所持金を表示します。"},
	{"/money info", "自分の所持金、銀行残高、信用ポイントを表示します。"},
	{"/deposit <amount>", "所持金を銀行に預けます。"},
	{"/withdraw <amount>", "銀行から所持金を引き出します。"},
	{"/work", "2時間に1回、いんコインを稼ぎます。信用ポイントが1増えます。"},
	{"/rob <target>", "他のユーザーの所持金を盗みます。成功すると信用ポイントが5減り、失敗すると3減ります。"},
	{"/gambling <amount>", "いんコインを賭けてギャンブルをします。負けると信用ポイントが1減ります。"},
	{"/give-money <amount> <user|role>", "他のユーザーまたはロールのメンバーにいんコインを渡します。"},
	{"/company help", "会社関連のコマンドヘルプを表示します。"},
	{"/stock help", "株関連のコマンドヘルプを表示します。"},
}

func (f *Feature) handleRegister(cmd *common.Command) error {
	_, err := cmd.Services.Registration.Register(cmd.Ctx, cmd.UserID, cmd.User.Username)
	if err != nil {
		return common.FromServiceError(err, "Failed to register user")
	}

	log.WithFields(log.Fields{
		"guild_id": cmd.GuildID,
		"user_id":  cmd.UserID,
		"username": cmd.User.Username,
	}).Info("User registered")

	return cmd.Reply(cmd.Embed("登録完了", "いんコインシステムへの登録が完了しました！これであなたのデータは自動的に保存されます。", common.ColorSuccess))
}

func (f *Feature) handleHelp(cmd *common.Command) error {
	embed := cmd.Embed("いんコインコマンドヘルプ", "利用可能なコマンドとその説明です。", common.ColorHelp)
	for _, h := range moneyHelp {
		common.AddField(embed, h.name, h.value, false)
	}
	return cmd.Reply(embed)
}

func (f *Feature) handleBalance(cmd *common.Command) error {
	target := cmd.User
	if u := cmd.UserOption("user"); u != nil {
		target = u
	}
	targetID, err := common.ParseID(target.ID)
	if err != nil {
		return common.NewSystemError(err, "Failed to parse target user ID")
	}

	user := cmd.Services.Deps.Store.User(cmd.Ctx, targetID)
	embed := cmd.Embed("いんコイン残高",
		fmt.Sprintf("%s さんの現在のいんコイン残高は %s です。", target.Username, common.FormatBoldCoins(user.Balance)),
		common.ColorBalance)
	return cmd.Reply(embed)
}

func (f *Feature) handleInfo(cmd *common.Command) error {
	user := cmd.Services.Deps.Store.User(cmd.Ctx, cmd.UserID)
	embed := cmd.Embed(fmt.Sprintf("%s さんの情報", cmd.User.Username), "", common.ColorInfo)
	common.AddField(embed, "現在の所持金", common.FormatCoins(user.Balance), false)
	common.AddField(embed, "現在の銀行残高", common.FormatCoins(user.BankBalance), false)
	common.AddField(embed, "信用ポイント", strconv.FormatInt(user.CreditPoint, 10), false)
	return cmd.Reply(embed)
}

func (f *Feature) handleLoad(cmd *common.Command) error {
	if all, _ := cmd.Bool("guild_data"); all {
		return f.handleLoadGuild(cmd)
	}

	target := cmd.User
	if u := cmd.UserOption("user"); u != nil {
		target = u
	}
	targetID, err := common.ParseID(target.ID)
	if err != nil {
		return common.NewSystemError(err, "Failed to parse target user ID")
	}

	f.loader.ReloadUser(cmd.Ctx, cmd.GuildID, targetID)
	summary, err := cmd.Services.Registration.Summary(cmd.Ctx, targetID)
	if err != nil {
		if _, ok := services.AsRuleError(err); ok {
			if targetID == cmd.UserID {
				return common.NewUserError("あなたはいんコインシステムに登録されていません。`/register` コマンドで登録してください。", "Load of unregistered user")
			}
			return common.NewUserError(fmt.Sprintf("%s さんはいんコインシステムに登録されていません。", target.Username), "Load of unregistered user")
		}
		return common.FromServiceError(err, "Failed to load account")
	}

	company := "なし"
	if summary.CompanyName != "" {
		company = summary.CompanyName
	}

	user := summary.User
	embed := cmd.Embed(fmt.Sprintf("%s さんのいんコイン情報", target.Username), "", common.ColorSuccess)
	common.AddField(embed, "所持金", common.FormatCoins(user.Balance), false)
	common.AddField(embed, "銀行残高", common.FormatCoins(user.BankBalance), false)
	common.AddField(embed, "信用ポイント", strconv.FormatInt(user.CreditPoint, 10), false)
	common.AddField(embed, "職業", user.Job, false)
	common.AddField(embed, "所属会社", company, false)
	return cmd.Reply(embed)
}

func (f *Feature) handleLoadGuild(cmd *common.Command) error {
	if !cmd.IsAdmin {
		return common.NewUserError("このコマンドで全てのギルド情報を再取得するには管理者権限が必要です。", "Guild load without admin permission")
	}
	if cmd.UserOption("user") != nil {
		return common.NewUserError("「全てのギルドデータ」と特定のユーザーを同時に指定することはできません。", "Guild load with a user")
	}

	report, err := f.loader.Resync(cmd.Ctx, cmd.GuildID)
	if report == nil {
		return common.NewSystemError(err, "Failed to resync guild")
	}
	if err != nil {
		// Records were reloaded but some repairs failed
		log.WithFields(log.Fields{
			"guild_id": cmd.GuildID,
			"error":    err,
		}).Warn("Guild resync finished with errors")
	}

	guildName := "このギルド"
	if g, stateErr := cmd.Session.State.Guild(cmd.Interaction.GuildID); stateErr == nil {
		guildName = g.Name
	}

	embed := cmd.Embed(fmt.Sprintf("ギルド「%s」のいんコイン情報一括再取得", guildName),
		fmt.Sprintf("データベースから**%s人分**のユーザー情報、**%s件**の会社情報、**%s件**の株情報、**%s件**のチャンネル報酬情報を全て再取得し、キャッシュを更新しました。",
			utils.FormatCoins(int64(report.Users)),
			utils.FormatCoins(int64(report.Companies)),
			utils.FormatCoins(int64(report.Stocks)),
			utils.FormatCoins(int64(report.ChannelRewards))),
		common.ColorSuccess)
	if n := len(report.RepairedUsers) + len(report.RemovedStocks); n > 0 {
		common.AddField(embed, "修復", fmt.Sprintf("存在しない会社への参照を %d 件修復しました。", n), false)
	}
	return cmd.Reply(embed)
}
