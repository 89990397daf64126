package company

import (
	"context"
	"fmt"
	"strings"

	"incoin/bot/common"
	"incoin/domain/utils"

	"github.com/bwmarrin/discordgo"
)

// Feature handles the /company command group
type Feature struct{}

// New creates the company feature
func New() *Feature {
	return &Feature{}
}

// HandleCommand routes /company subcommands
func (f *Feature) HandleCommand(cmd *common.Command) error {
	switch cmd.Subcommand() {
	case "help":
		return f.handleHelp(cmd)
	case "add":
		return f.handleAdd(cmd)
	case "edit":
		return f.handleEdit(cmd)
	case "deposit":
		return f.handleDeposit(cmd)
	case "withdraw":
		return f.handleWithdraw(cmd)
	case "alldeposit":
		return f.handleAutoDeposit(cmd)
	case "join":
		return f.handleJoin(cmd)
	case "info":
		return f.handleInfo(cmd)
	case "delete":
		return f.handleDelete(cmd)
	case "leave":
		return f.handleLeave(cmd)
	}
	return common.NewUserError("不明なサブコマンドです。", "Unknown company subcommand")
}

// Choices suggests company names for the company_name option
func (f *Feature) Choices(ctx context.Context, svc *common.Services, typed string) ([]*discordgo.ApplicationCommandOptionChoice, error) {
	companies, err := svc.Deps.Store.Companies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}

	typed = strings.ToLower(strings.TrimSpace(typed))
	var choices []*discordgo.ApplicationCommandOptionChoice
	for _, c := range companies {
		if typed != "" && !strings.Contains(strings.ToLower(c.Name), typed) {
			continue
		}
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  fmt.Sprintf("%s（日給 %sコイン）", c.Name, utils.FormatCoins(c.DailySalary)),
			Value: c.Name,
		})
		if len(choices) == common.MaxAutocompleteChoices {
			break
		}
	}
	return choices, nil
}
