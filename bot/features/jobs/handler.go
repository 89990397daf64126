package jobs

import (
	"fmt"
	"strings"

	"incoin/bot/common"
	"incoin/domain/entities"
	"incoin/domain/services"
	"incoin/domain/utils"

	log "github.com/sirupsen/logrus"
)

func (f *Feature) handleAssign(cmd *common.Command) error {
	if !cmd.IsAdmin {
		return common.NewUserError("このコマンドを実行するには管理者権限が必要です。", "jobs assign without permission")
	}
	target := cmd.UserOption("user")
	jobName, _ := cmd.String("job_name")
	if target == nil {
		return common.NewUserError("ユーザーを指定してください。", "jobs assign without user")
	}
	targetID, err := common.ParseID(target.ID)
	if err != nil {
		return common.NewSystemError(err, "Failed to parse target user ID")
	}

	if _, err := cmd.Services.Jobs.Assign(cmd.Ctx, targetID, jobName); err != nil {
		return common.FromServiceError(err, "Job assignment rejected")
	}

	log.WithFields(log.Fields{
		"guild_id":  cmd.GuildID,
		"admin_id":  cmd.UserID,
		"target_id": targetID,
		"job":       jobName,
	}).Info("Job assigned")

	return cmd.Reply(cmd.Embed("職業割り当て",
		fmt.Sprintf("%s に職業 **%s** を割り当てました。", target.Username, jobName), common.ColorSuccess))
}

func (f *Feature) handleRemove(cmd *common.Command) error {
	if !cmd.IsAdmin {
		return common.NewUserError("このコマンドを実行するには管理者権限が必要です。", "jobs remove without permission")
	}
	target := cmd.UserOption("user")
	if target == nil {
		return common.NewUserError("ユーザーを指定してください。", "jobs remove without user")
	}
	targetID, err := common.ParseID(target.ID)
	if err != nil {
		return common.NewSystemError(err, "Failed to parse target user ID")
	}

	removed, err := cmd.Services.Jobs.Remove(cmd.Ctx, targetID)
	if err != nil {
		return common.FromServiceError(err, "Job removal rejected")
	}
	if !removed {
		return common.NewUserError(fmt.Sprintf("%s には現在、職業が割り当てられていません。", target.Username), "Target already unemployed")
	}

	return cmd.Reply(cmd.Embed("職業削除",
		fmt.Sprintf("%s から職業を削除し、「%s」に戻しました。", target.Username, entities.JobUnemployed), common.ColorSuccess))
}

func (f *Feature) handleList(cmd *common.Command) error {
	var b strings.Builder
	for _, job := range cmd.Services.Jobs.List() {
		fmt.Fprintf(&b, "**%s**: %s", job.Name, describeJob(job))
		if job.Selectable && job.ChangeCost > 0 {
			fmt.Fprintf(&b, " (転職費用 %s)", common.FormatCoins(job.ChangeCost))
		}
		b.WriteString("\n")
	}
	return cmd.Reply(cmd.Embed("設定されている職業一覧", b.String(), common.ColorInfo))
}

func describeJob(job services.Job) string {
	switch job.Name {
	case services.JobYoutuber:
		return "信用ポイントに応じて変動 (信用が0より高い場合は 信用ポイント×500 ～ 信用ポイント×1,250、信用が0以下の場合は 10 ～ 100 いんコイン)"
	case entities.JobPresident:
		return "会社メンバー数に応じて変動 (400,000 ～ 650,000 + 会社人数×30,000 いんコイン)"
	case entities.JobUnemployed:
		return fmt.Sprintf("%s ～ %s いんコイン (初期状態)", utils.FormatCoins(job.MinIncome), utils.FormatCoins(job.MaxIncome))
	}
	return fmt.Sprintf("%s ～ %s いんコイン", utils.FormatCoins(job.MinIncome), utils.FormatCoins(job.MaxIncome))
}

func (f *Feature) handleMyJob(cmd *common.Command) error {
	summary, err := cmd.Services.Registration.Summary(cmd.Ctx, cmd.UserID)
	if err != nil {
		return common.FromServiceError(err, "Failed to read account")
	}
	user := summary.User

	var company *entities.Company
	if user.HasCompany() {
		company = cmd.Services.Deps.Store.Company(cmd.Ctx, user.CompanyID)
	}
	minIncome, maxIncome := services.IncomeRange(user, company)

	description := fmt.Sprintf("あなたの現在の職業は **%s** です。\n/work で約 %s ～ %s いんコインを獲得できます。",
		user.Job, utils.FormatCoins(minIncome), utils.FormatCoins(maxIncome))
	switch {
	case user.Job == services.JobYoutuber:
		description += fmt.Sprintf("\n(現在の信用ポイント %d の場合)", user.CreditPoint)
	case user.Job == entities.JobPresident && company != nil:
		description += fmt.Sprintf("\n(現在の会社メンバー数: %d人)", len(company.Members))
	}
	return cmd.Reply(cmd.Embed("現在の職業", description, common.ColorInfo))
}

func (f *Feature) handleChange(cmd *common.Command) error {
	jobName, _ := cmd.String("job_name")
	job, ok := services.LookupJob(jobName)
	if !ok {
		return common.NewUserError(fmt.Sprintf("職業 **%s** は存在しません。/jobs list で確認してください。", jobName), "Unknown job requested")
	}

	user, err := cmd.Services.Jobs.Change(cmd.Ctx, cmd.UserID, jobName)
	if err != nil {
		return common.FromServiceError(err, "Job change rejected")
	}

	embed := cmd.Embed("転職成功！",
		fmt.Sprintf("あなたは **%s** に転職しました！\n費用として %s を支払いました。", job.Name, common.FormatBoldCoins(job.ChangeCost)),
		common.ColorSuccess)
	common.AddField(embed, "現在の所持金", common.FormatCoins(user.Balance), false)
	return cmd.Reply(embed)
}
