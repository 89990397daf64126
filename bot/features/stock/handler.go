package stock

import (
	"bytes"
	"errors"
	"fmt"

	"incoin/bot/common"
	"incoin/domain/utils"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

var stockHelp = []struct{ name, value string }{
	{"/stock add <会社名> <株数> <ユーザー>", "管理者のみ、指定したユーザーに会社の株を付与します。"},
	{"/stock remove <会社名> <株数> <ユーザー>", "管理者のみ、指定したユーザーから会社の株を削除します。"},
	{"/stock buy <会社名> <株数>", "会社の株を購入します。"},
	{"/stock sell <会社名> <株数>", "会社の株を売却します。"},
	{"/stock info <会社名>", "指定した会社の現在の株価と過去1時間の推移を表示します。"},
}

func (f *Feature) handleHelp(cmd *common.Command) error {
	embed := cmd.Embed("株コマンドヘルプ", "株関連の利用可能なコマンドとその説明です。", common.ColorInfo)
	for _, h := range stockHelp {
		common.AddField(embed, h.name, h.value, false)
	}
	return cmd.Reply(embed)
}

func (f *Feature) handleAdjust(cmd *common.Command, revoke bool) error {
	if !cmd.IsAdmin {
		return common.NewUserError("このコマンドを実行するには管理者権限が必要です。", "stock adjust without permission")
	}
	companyName, _ := cmd.String("company")
	amount, _ := cmd.Int("amount")
	target := cmd.UserOption("user")
	if target == nil {
		return common.NewUserError("ユーザーを指定してください。", "stock adjust without user")
	}
	targetID, err := common.ParseID(target.ID)
	if err != nil {
		return common.NewSystemError(err, "Failed to parse target user ID")
	}

	adjust := cmd.Services.Stocks.Grant
	title, format := "株付与完了", "%s に会社「%s」の株を **%s** 株付与しました。"
	if revoke {
		adjust = cmd.Services.Stocks.Revoke
		title, format = "株削除完了", "%s から会社「%s」の株を **%s** 株削除しました。"
	}

	result, err := adjust(cmd.Ctx, targetID, companyName, amount)
	if err != nil {
		return common.FromServiceError(err, "Stock adjustment rejected")
	}

	log.WithFields(log.Fields{
		"guild_id":   cmd.GuildID,
		"admin_id":   cmd.UserID,
		"target_id":  targetID,
		"company_id": result.Company.ID,
		"amount":     amount,
		"revoke":     revoke,
	}).Info("Admin adjusted stock holding")

	embed := cmd.Embed(title,
		fmt.Sprintf(format, target.Username, result.Company.Name, utils.FormatCoins(amount)), common.ColorStock)
	common.AddField(embed, fmt.Sprintf("%s の株保有数", target.Username),
		fmt.Sprintf("会社「%s」: %s 株", result.Company.Name, utils.FormatCoins(result.Holding)), false)
	return cmd.Reply(embed)
}

func (f *Feature) handleTrade(cmd *common.Command, sell bool) error {
	companyName, _ := cmd.String("company")
	amount, _ := cmd.Int("amount")

	trade := cmd.Services.Stocks.Buy
	if sell {
		trade = cmd.Services.Stocks.Sell
	}
	result, err := trade(cmd.Ctx, cmd.UserID, companyName, amount)
	if err != nil {
		return common.FromServiceError(err, "Stock trade rejected")
	}

	var title, description string
	if sell {
		title = "株売却完了"
		description = fmt.Sprintf("会社「%s」の株を **%s** 株売却しました。\n収益: %s（@%s いんコイン/株）",
			result.Company.Name, utils.FormatCoins(amount), common.FormatBoldCoins(result.Total), utils.FormatCoins(result.Price))
	} else {
		title = "株購入完了"
		description = fmt.Sprintf("会社「%s」の株を **%s** 株購入しました。\n費用: %s（@%s いんコイン/株）",
			result.Company.Name, utils.FormatCoins(amount), common.FormatBoldCoins(result.Total), utils.FormatCoins(result.Price))
	}

	embed := cmd.Embed(title, description, common.ColorStock)
	common.AddField(embed, fmt.Sprintf("あなたの %s 株保有数", result.Company.Name),
		fmt.Sprintf("%s 株", utils.FormatCoins(result.Holding)), false)
	common.AddField(embed, "現在の所持金", common.FormatCoins(result.User.Balance), false)
	return cmd.Reply(embed)
}

func (f *Feature) handleInfo(cmd *common.Command) error {
	companyName, _ := cmd.String("company")
	info, err := cmd.Services.Stocks.Quote(cmd.Ctx, companyName)
	if err != nil {
		return common.FromServiceError(err, "Stock quote rejected")
	}
	if info.Stock == nil || info.Stock.CurrentPrice <= 0 {
		return common.NewUserError(fmt.Sprintf("会社「%s」の株価情報が見つかりませんでした。", info.Company.Name), "Stock record missing")
	}
	stock := info.Stock

	embed := cmd.Embed(fmt.Sprintf("会社「%s」の株価情報", info.Company.Name), "", common.ColorWarning)
	common.AddField(embed, "現在の株価", common.FormatCoins(stock.CurrentPrice), false)

	png, err := f.charts.Render(stock.PriceHistory)
	switch {
	case errors.Is(err, ErrNotEnoughHistory):
		value := "現在、株価履歴データがありません。"
		if len(stock.PriceHistory) == 1 {
			value = fmt.Sprintf("過去1時間のデータが不足しています。現在の価格: %s", common.FormatCoins(stock.CurrentPrice))
		}
		common.AddField(embed, "過去1時間の推移", value, false)
		return cmd.Reply(embed)
	case err != nil:
		log.WithFields(log.Fields{
			"guild_id":   cmd.GuildID,
			"company_id": info.Company.ID,
			"error":      err,
		}).Warn("Failed to render stock chart")
		return cmd.Reply(embed)
	}

	const fileName = "stock.png"
	embed.Image = &discordgo.MessageEmbedImage{URL: "attachment://" + fileName}
	return cmd.ReplyWithFile(embed, fileName, "image/png", bytes.NewReader(png))
}
