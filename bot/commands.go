package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

var (
	adminPermission int64 = discordgo.PermissionAdministrator
	guildOnly             = false
	minOne                = 1.0
	minZero               = 0.0
)

func intOption(name, description string, minValue *float64, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        name,
		Description: description,
		Required:    required,
		MinValue:    minValue,
	}
}

func amountOption(description string) *discordgo.ApplicationCommandOption {
	return intOption("amount", description, &minOne, true)
}

func userOption(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        name,
		Description: description,
		Required:    required,
	}
}

func stringOption(name, description string, required, autocomplete bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:         discordgo.ApplicationCommandOptionString,
		Name:         name,
		Description:  description,
		Required:     required,
		Autocomplete: autocomplete,
	}
}

func subcommand(name, description string, options ...*discordgo.ApplicationCommandOption) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommand,
		Name:        name,
		Description: description,
		Options:     options,
	}
}

// targetCommand builds the amount plus user-or-role commands
func targetCommand(name, description, verb string, admin bool) *discordgo.ApplicationCommand {
	cmd := &discordgo.ApplicationCommand{
		Name:         name,
		Description:  description,
		DMPermission: &guildOnly,
		Options: []*discordgo.ApplicationCommandOption{
			amountOption(verb + "いんコインの金額"),
			userOption("user", "いんコインを"+verb+"ユーザー", false),
			{
				Type:        discordgo.ApplicationCommandOptionRole,
				Name:        "role",
				Description: "いんコインを" + verb + "ロールのメンバー",
				Required:    false,
			},
		},
	}
	if admin {
		cmd.DefaultMemberPermissions = &adminPermission
	}
	return cmd
}

// slashCommands is the full command surface
func slashCommands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:         "register",
			Description:  "いんコインシステムに登録します。登録しないとデータは保存されません。",
			DMPermission: &guildOnly,
		},
		{
			Name:         "money",
			Description:  "いんコイン関連のコマンドです。",
			DMPermission: &guildOnly,
			Options: []*discordgo.ApplicationCommandOption{
				subcommand("help", "いんコイン関連のコマンドヘルプを表示します。"),
				subcommand("balance", "自分または他のユーザーの所持金を表示します。",
					userOption("user", "残高を確認したいユーザー", false)),
				subcommand("info", "自分の現在の残高、銀行残高、信用ポイントを表示します。"),
			},
		},
		{
			Name:         "work",
			Description:  "2時間に1回、いんコインを稼ぎます。",
			DMPermission: &guildOnly,
		},
		{
			Name:         "gambling",
			Description:  "いんコインを賭けてギャンブルをします。",
			DMPermission: &guildOnly,
			Options: []*discordgo.ApplicationCommandOption{
				amountOption("賭けるいんコインの金額"),
			},
		},
		{
			Name:         "rob",
			Description:  "他のユーザーからいんコインを盗みます。",
			DMPermission: &guildOnly,
			Options: []*discordgo.ApplicationCommandOption{
				userOption("target", "盗む相手のユーザー", true),
			},
		},
		{
			Name:         "deposit",
			Description:  "所持金を銀行に預けます。",
			DMPermission: &guildOnly,
			Options: []*discordgo.ApplicationCommandOption{
				amountOption("預ける金額"),
			},
		},
		{
			Name:         "withdraw",
			Description:  "銀行からお金を引き出します。",
			DMPermission: &guildOnly,
			Options: []*discordgo.ApplicationCommandOption{
				amountOption("引き出す金額"),
			},
		},
		targetCommand("add-money", "指定したユーザーまたはロールにいんコインを追加します。(管理者のみ)", "追加する", true),
		targetCommand("remove-money", "指定したユーザーまたはロールからいんコインを削除します。(管理者のみ)", "削除する", true),
		targetCommand("give-money", "他のユーザーまたはロールのメンバーにいんコインを渡します。", "渡す", false),
		{
			Name:                     "channel-money",
			Description:              "指定したチャンネルでのチャットに報酬を設定します。(管理者のみ)",
			DefaultMemberPermissions: &adminPermission,
			DMPermission:             &guildOnly,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:         discordgo.ApplicationCommandOptionChannel,
					Name:         "channel",
					Description:  "報酬を設定するチャンネル",
					Required:     true,
					ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
				},
				intOption("min", "チャットで獲得できる最低いんコイン", &minZero, true),
				intOption("max", "チャットで獲得できる最大いんコイン", &minZero, true),
			},
		},
		{
			Name:         "jobs",
			Description:  "職業関連のコマンドです。",
			DMPermission: &guildOnly,
			Options: []*discordgo.ApplicationCommandOption{
				subcommand("assign", "ユーザーに職業を割り当てます。(管理者のみ)",
					userOption("user", "職業を割り当てるユーザー", true),
					stringOption("job_name", "割り当てる職業名", true, true)),
				subcommand("remove", "ユーザーから職業を削除します。(管理者のみ)",
					userOption("user", "職業を削除するユーザー", true)),
				subcommand("list", "設定されている職業の一覧を表示します。"),
				subcommand("my-job", "自分の現在の職業を表示します。"),
			},
		},
		{
			Name:         "job-change",
			Description:  "職業を変更します。費用がかかります。",
			DMPermission: &guildOnly,
			Options: []*discordgo.ApplicationCommandOption{
				stringOption("job_name", "変更したい職業名", true, true),
			},
		},
		{
			Name:         "load",
			Description:  "最新のいんコイン情報を取得します。",
			DMPermission: &guildOnly,
			Options: []*discordgo.ApplicationCommandOption{
				userOption("user", "情報を取得したいユーザー", false),
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "guild_data",
					Description: "このギルドの全てのユーザーと会社のいんコイン情報を再取得します。(管理者のみ)",
					Required:    false,
				},
			},
		},
		{
			Name:         "company",
			Description:  "会社関連のコマンドです。",
			DMPermission: &guildOnly,
			Options: []*discordgo.ApplicationCommandOption{
				subcommand("help", "会社関連のコマンドヘルプを表示します。"),
				subcommand("add", "新しい会社を作成します。",
					stringOption("name", "会社名", true, false),
					intOption("daily_salary", "メンバーへの日給", &minZero, true),
					stringOption("password", "会社参加用のパスワード (任意)", false, false)),
				subcommand("edit", "会社の情報（名前、パスワード、日給）を変更します。(社長のみ)",
					stringOption("new_name", "新しい会社名", false, false),
					stringOption("new_password", "新しい会社パスワード (空白で削除)", false, false),
					intOption("daily_salary", "新しい日給", &minZero, false)),
				subcommand("deposit", "会社の予算に資金を預け入れます。",
					amountOption("預け入れる金額")),
				subcommand("withdraw", "会社の予算から資金を引き出します。(社長のみ)",
					amountOption("引き出す金額")),
				subcommand("alldeposit", "workコマンドの収益を自動で会社予算に入れるか設定します。(社長のみ)",
					&discordgo.ApplicationCommandOption{
						Type:        discordgo.ApplicationCommandOptionBoolean,
						Name:        "toggle",
						Description: "自動入金をONにするかOFFにするか",
						Required:    true,
					}),
				subcommand("join", "会社に参加します。",
					stringOption("company_name", "参加したい会社名", true, true),
					stringOption("password", "会社参加用のパスワード (必要な場合)", false, false)),
				subcommand("info", "自分または指定した会社の情報を表示します。",
					stringOption("company_name", "情報を表示したい会社名 (未指定で自分の会社)", false, true)),
				subcommand("delete", "自分の会社を削除します。(社長のみ)"),
				subcommand("leave", "所属している会社を辞めます。"),
			},
		},
		{
			Name:         "stock",
			Description:  "会社の株を取引します。",
			DMPermission: &guildOnly,
			Options: []*discordgo.ApplicationCommandOption{
				subcommand("help", "株関連のコマンドヘルプを表示します。"),
				subcommand("add", "ユーザーに株を付与します。(管理者のみ)",
					stringOption("company", "株を付与する会社名", true, true),
					intOption("amount", "付与する株数", &minOne, true),
					userOption("user", "株を付与するユーザー", true)),
				subcommand("remove", "ユーザーから株を削除します。(管理者のみ)",
					stringOption("company", "株を削除する会社名", true, true),
					intOption("amount", "削除する株数", &minOne, true),
					userOption("user", "株を削除するユーザー", true)),
				subcommand("buy", "会社の株を購入します。",
					stringOption("company", "購入したい会社名", true, true),
					intOption("amount", "購入する株数", &minOne, true)),
				subcommand("sell", "会社の株を売却します。",
					stringOption("company", "売却したい会社名", true, true),
					intOption("amount", "売却する株数", &minOne, true)),
				subcommand("info", "会社の株情報を表示します。",
					stringOption("company", "情報を表示したい会社名", true, true)),
			},
		},
	}
}

// registerCommands registers all slash commands with Discord
func (b *Bot) registerCommands() error {
	commands := slashCommands()
	if _, err := b.session.ApplicationCommandBulkOverwrite(b.session.State.User.ID, "", commands); err != nil {
		return fmt.Errorf("cannot create commands: %w", err)
	}
	return nil
}
