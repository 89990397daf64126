package company

import (
	"fmt"
	"strings"

	"incoin/bot/common"
	"incoin/domain/entities"
	"incoin/domain/services"

	log "github.com/sirupsen/logrus"
)

var companyHelp = []struct{ name, value string }{
	{"/company add <会社名> <日給> [パスワード]", "新しい会社を作成します。あなたが社長になります。"},
	{"/company edit [新しい会社名] [新しいパスワード] [日給]", "会社の情報を変更します。パスワードに空白を指定すると削除されます。(社長のみ)"},
	{"/company deposit <金額>", "あなたの所持金から会社予算に預け入れます。"},
	{"/company withdraw <金額>", "会社の予算からあなたの所持金に引き出します。(社長のみ)"},
	{"/company alldeposit <true|false>", "workコマンドで得た収益を自動で会社予算に入れるか設定します。(社長のみ)"},
	{"/company join <会社名> [パスワード]", "指定した会社に参加します。毎日日給が支払われます。"},
	{"/company info [会社名]", "自分の所属する会社、または指定した会社の情報を表示します。"},
	{"/company leave", "所属している会社を辞めます。(社長以外)"},
	{"/company delete", "あなたの会社を削除します。会社のいんコインは消滅します。(社長のみ)"},
}

func (f *Feature) handleHelp(cmd *common.Command) error {
	embed := cmd.Embed("会社コマンドヘルプ", "会社関連の利用可能なコマンドとその説明です。", common.ColorInfo)
	for _, h := range companyHelp {
		common.AddField(embed, h.name, h.value, false)
	}
	return cmd.Reply(embed)
}

func (f *Feature) handleAdd(cmd *common.Command) error {
	name, _ := cmd.String("name")
	salary, _ := cmd.Int("daily_salary")
	password, _ := cmd.String("password")

	info, err := cmd.Services.Companies.Create(cmd.Ctx, services.CreateCompanyInput{
		OwnerID:     cmd.UserID,
		OwnerName:   cmd.User.Username,
		Name:        name,
		DailySalary: salary,
		Password:    password,
	})
	if err != nil {
		return common.FromServiceError(err, "Company creation rejected")
	}

	log.WithFields(log.Fields{
		"guild_id":   cmd.GuildID,
		"owner_id":   cmd.UserID,
		"company_id": info.Company.ID,
		"salary":     salary,
	}).Info("Company created")

	passwordLine := "パスワードは設定されていません。"
	if info.Company.IsPasswordProtected() {
		passwordLine = "パスワードが設定されました。"
	}
	embed := cmd.Embed("会社設立成功！",
		fmt.Sprintf("会社「**%s**」を設立しました！あなたが社長です。\n日給: %s\n%s\n会社ID: `%s`",
			info.Company.Name, common.FormatCoins(info.Company.DailySalary), passwordLine, info.Company.ID),
		common.ColorSuccess)
	if info.Stock != nil {
		common.AddField(embed, "初期株価", common.FormatCoins(info.Stock.CurrentPrice), true)
	}
	return cmd.Reply(embed)
}

func (f *Feature) handleEdit(cmd *common.Command) error {
	var input services.EditCompanyInput
	var lines []string

	if name, ok := cmd.String("new_name"); ok {
		input.Name = &name
		lines = append(lines, fmt.Sprintf("会社名を「**%s**」に変更しました。", strings.TrimSpace(name)))
	}
	if password, ok := cmd.String("new_password"); ok {
		password = strings.TrimSpace(password)
		input.Password = &password
		if password == "" {
			lines = append(lines, "会社のパスワードを削除しました。")
		} else {
			lines = append(lines, "会社のパスワードを更新しました。")
		}
	}
	if salary, ok := cmd.Int("daily_salary"); ok {
		input.DailySalary = &salary
		lines = append(lines, fmt.Sprintf("日給を %s に変更しました。", common.FormatCoins(salary)))
	}

	if _, err := cmd.Services.Companies.Edit(cmd.Ctx, cmd.UserID, input); err != nil {
		return common.FromServiceError(err, "Company edit rejected")
	}
	return cmd.Reply(cmd.Embed("会社情報更新完了！", strings.Join(lines, "\n"), common.ColorSuccess))
}

func (f *Feature) handleDeposit(cmd *common.Command) error {
	amount, _ := cmd.Int("amount")
	company, err := cmd.Services.Companies.Deposit(cmd.Ctx, cmd.UserID, amount)
	if err != nil {
		return common.FromServiceError(err, "Company deposit rejected")
	}
	user := cmd.Services.Deps.Store.User(cmd.Ctx, cmd.UserID)
	return cmd.Reply(cmd.Embed("会社予算に預け入れ",
		fmt.Sprintf("%s を会社「%s」の予算に預け入れました。\n現在の会社予算: %s\nあなたの所持金: %s",
			common.FormatCoins(amount), company.Name, common.FormatCoins(company.Budget), common.FormatCoins(user.Balance)),
		common.ColorSuccess))
}

func (f *Feature) handleWithdraw(cmd *common.Command) error {
	amount, _ := cmd.Int("amount")
	company, err := cmd.Services.Companies.Withdraw(cmd.Ctx, cmd.UserID, amount)
	if err != nil {
		return common.FromServiceError(err, "Company withdrawal rejected")
	}
	user := cmd.Services.Deps.Store.User(cmd.Ctx, cmd.UserID)
	return cmd.Reply(cmd.Embed("会社予算から引き出し",
		fmt.Sprintf("%s を会社「%s」の予算から引き出しました。\n現在の会社予算: %s\nあなたの所持金: %s",
			common.FormatCoins(amount), company.Name, common.FormatCoins(company.Budget), common.FormatCoins(user.Balance)),
		common.ColorSuccess))
}

func (f *Feature) handleAutoDeposit(cmd *common.Command) error {
	toggle, _ := cmd.Bool("toggle")
	company, err := cmd.Services.Companies.SetAutoDeposit(cmd.Ctx, cmd.UserID, toggle)
	if err != nil {
		return common.FromServiceError(err, "Auto deposit change rejected")
	}
	return cmd.Reply(cmd.Embed("自動入金設定",
		fmt.Sprintf("会社「%s」のworkコマンド自動入金を **%s** に設定しました。", company.Name, common.OnOff(company.AutoDeposit)),
		common.ColorSuccess))
}

func (f *Feature) handleJoin(cmd *common.Command) error {
	name, _ := cmd.String("company_name")
	password, _ := cmd.String("password")

	company, err := cmd.Services.Companies.Join(cmd.Ctx, cmd.UserID, cmd.User.Username, name, password)
	if err != nil {
		return common.FromServiceError(err, "Company join rejected")
	}
	return cmd.Reply(cmd.Embed("会社に参加成功！",
		fmt.Sprintf("会社「**%s**」に参加しました！\n日給: %s", company.Name, common.FormatCoins(company.DailySalary)),
		common.ColorSuccess))
}

func (f *Feature) handleInfo(cmd *common.Command) error {
	name, _ := cmd.String("company_name")
	info, err := cmd.Services.Companies.Info(cmd.Ctx, cmd.UserID, name)
	if err != nil {
		return common.FromServiceError(err, "Company info rejected")
	}
	company := info.Company

	embed := cmd.Embed(fmt.Sprintf("会社「%s（日給 %s）」の情報", company.Name, common.FormatCoins(company.DailySalary)), "", common.ColorCompany)
	common.AddField(embed, "社長", common.DisplayName(cmd.Session, cmd.Interaction.GuildID, company.OwnerID, ownerName(company)), true)
	common.AddField(embed, "日給", common.FormatCoins(company.DailySalary), true)
	common.AddField(embed, "現在の予算", common.FormatCoins(company.Budget), false)
	common.AddField(embed, "自動入金", common.OnOff(company.AutoDeposit), true)
	common.AddField(embed, "パスワード設定", hasPassword(company), true)
	common.AddField(embed, "メンバー数", fmt.Sprintf("%d 人", len(company.Members)), true)
	common.AddField(embed, "毎日の維持費", common.FormatCoins(company.MaintenanceFee()), false)
	common.AddField(embed, "メンバーリスト", memberList(company), false)
	if info.Stock != nil {
		common.AddField(embed, "現在の株価", common.FormatCoins(info.Stock.CurrentPrice), true)
	}
	return cmd.Reply(embed)
}

func (f *Feature) handleDelete(cmd *common.Command) error {
	company, err := cmd.Services.Companies.Delete(cmd.Ctx, cmd.UserID)
	if err != nil {
		return common.FromServiceError(err, "Company deletion rejected")
	}

	log.WithFields(log.Fields{
		"guild_id":   cmd.GuildID,
		"owner_id":   cmd.UserID,
		"company_id": company.ID,
		"members":    len(company.Members),
	}).Info("Company deleted")

	return cmd.Reply(cmd.Embed("会社削除完了",
		fmt.Sprintf("会社「**%s**」を削除しました。会社のいんコインは全て消滅しました。", company.Name),
		common.ColorDanger))
}

func (f *Feature) handleLeave(cmd *common.Command) error {
	company, err := cmd.Services.Companies.Leave(cmd.Ctx, cmd.UserID)
	if err != nil {
		return common.FromServiceError(err, "Company leave rejected")
	}
	return cmd.Reply(cmd.Embed("会社を辞めました",
		fmt.Sprintf("あなたは会社「**%s**」を辞めました。\nあなたの職業は「%s」に戻りました。", company.Name, entities.JobUnemployed),
		common.ColorWarning))
}

func ownerName(company *entities.Company) string {
	for _, m := range company.Members {
		if m.ID == company.OwnerID {
			return m.Username
		}
	}
	return "不明なユーザー"
}

func hasPassword(company *entities.Company) string {
	if company.IsPasswordProtected() {
		return "あり"
	}
	return "なし"
}

func memberList(company *entities.Company) string {
	if len(company.Members) == 0 {
		return "なし"
	}
	lines := make([]string, 0, len(company.Members))
	for _, m := range company.Members {
		lines = append(lines, "- "+m.Username)
	}
	return strings.Join(lines, "\n")
}
