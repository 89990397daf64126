package stock

import (
	"context"
	"fmt"
	"strings"

	"incoin/bot/common"
	"incoin/domain/entities"
	"incoin/domain/utils"

	"github.com/bwmarrin/discordgo"
)

// Feature handles the /stock command group
type Feature struct {
	charts *ChartGenerator
}

// New creates the stock feature
func New(charts *ChartGenerator) *Feature {
	return &Feature{charts: charts}
}

// HandleCommand routes /stock subcommands
func (f *Feature) HandleCommand(cmd *common.Command) error {
	switch cmd.Subcommand() {
	case "help":
		return f.handleHelp(cmd)
	case "add":
		return f.handleAdjust(cmd, false)
	case "remove":
		return f.handleAdjust(cmd, true)
	case "buy":
		return f.handleTrade(cmd, false)
	case "sell":
		return f.handleTrade(cmd, true)
	case "info":
		return f.handleInfo(cmd)
	}
	return common.NewUserError("不明なサブコマンドです。", "Unknown stock subcommand")
}

// Choices suggests companies together with their current share price
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
		price := entities.StockDefaultPrice
		if stock := svc.Deps.Store.Stock(ctx, c.ID); stock != nil {
			price = stock.CurrentPrice
		}
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  fmt.Sprintf("%s (株価: %sいんコイン)", c.Name, utils.FormatCoins(price)),
			Value: c.Name,
		})
		if len(choices) == common.MaxAutocompleteChoices {
			break
		}
	}
	return choices, nil
}
