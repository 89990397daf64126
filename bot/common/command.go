package common

import (
	"context"
	"io"

	"incoin/domain/services"

	"github.com/bwmarrin/discordgo"
)

// Command is one deferred slash command invocation inside a guild
type Command struct {
	Ctx         context.Context
	Session     *discordgo.Session
	Interaction *discordgo.InteractionCreate

	GuildID  int64
	UserID   int64
	User     *discordgo.User
	IsAdmin  bool
	Services *Services
}

// Services are the economy services bound to one guild and one command
type Services struct {
	Deps         services.Dependencies
	Ledger       *services.LedgerService
	Work         *services.WorkService
	Jobs         *services.JobService
	Companies    *services.CompanyService
	Stocks       *services.StockService
	Gambling     *services.GamblingService
	ChatRewards  *services.ChatRewardService
	Registration *services.RegistrationService
	Penalty      *services.PenaltyService
}

// NewServices wires every economy service onto deps
func NewServices(deps services.Dependencies) *Services {
	return &Services{
		Deps:         deps,
		Ledger:       services.NewLedgerService(deps),
		Work:         services.NewWorkService(deps),
		Jobs:         services.NewJobService(deps),
		Companies:    services.NewCompanyService(deps),
		Stocks:       services.NewStockService(deps),
		Gambling:     services.NewGamblingService(deps),
		ChatRewards:  services.NewChatRewardService(deps),
		Registration: services.NewRegistrationService(deps),
		Penalty:      services.NewPenaltyService(deps),
	}
}

// Name returns the top level command name
func (c *Command) Name() string {
	return c.Interaction.ApplicationCommandData().Name
}

// Subcommand returns the invoked subcommand name, or "" for flat commands
func (c *Command) Subcommand() string {
	return SubcommandName(c.Interaction.ApplicationCommandData().Options)
}

// Options returns the options of the invoked (sub)command keyed by name
func (c *Command) Options() map[string]*discordgo.ApplicationCommandInteractionDataOption {
	return OptionMap(c.Interaction.ApplicationCommandData().Options)
}

// String returns a string option
func (c *Command) String(name string) (string, bool) {
	opt, ok := c.Options()[name]
	if !ok {
		return "", false
	}
	return opt.StringValue(), true
}

// Int returns an integer option
func (c *Command) Int(name string) (int64, bool) {
	opt, ok := c.Options()[name]
	if !ok {
		return 0, false
	}
	return opt.IntValue(), true
}

// Bool returns a boolean option
func (c *Command) Bool(name string) (bool, bool) {
	opt, ok := c.Options()[name]
	if !ok {
		return false, false
	}
	return opt.BoolValue(), true
}

// UserOption returns a user option, resolved from the interaction payload when possible
func (c *Command) UserOption(name string) *discordgo.User {
	opt, ok := c.Options()[name]
	if !ok {
		return nil
	}
	id, _ := opt.Value.(string)
	if resolved := c.Interaction.ApplicationCommandData().Resolved; resolved != nil {
		if user, ok := resolved.Users[id]; ok {
			return user
		}
	}
	return opt.UserValue(nil)
}

// RoleOption returns a role option
func (c *Command) RoleOption(name string) *discordgo.Role {
	opt, ok := c.Options()[name]
	if !ok {
		return nil
	}
	id, _ := opt.Value.(string)
	if resolved := c.Interaction.ApplicationCommandData().Resolved; resolved != nil {
		if role, ok := resolved.Roles[id]; ok {
			return role
		}
	}
	return &discordgo.Role{ID: id}
}

// ChannelOption returns a channel option
func (c *Command) ChannelOption(name string) *discordgo.Channel {
	opt, ok := c.Options()[name]
	if !ok {
		return nil
	}
	id, _ := opt.Value.(string)
	if resolved := c.Interaction.ApplicationCommandData().Resolved; resolved != nil {
		if channel, ok := resolved.Channels[id]; ok {
			return channel
		}
	}
	return &discordgo.Channel{ID: id}
}

// Embed builds a reply embed footed with the invoking user
func (c *Command) Embed(title, description string, color int) *discordgo.MessageEmbed {
	return NewEmbed(c.User, title, description, color)
}

// Reply replaces the deferred response with an embed
func (c *Command) Reply(embed *discordgo.MessageEmbed) error {
	if err := EditWithEmbed(c.Session, c.Interaction, embed); err != nil {
		return NewSystemError(err, "Failed to send command response")
	}
	return nil
}

// ReplyWithFile replaces the deferred response with an embed and an attachment
func (c *Command) ReplyWithFile(embed *discordgo.MessageEmbed, name, contentType string, r io.Reader) error {
	if err := EditWithFile(c.Session, c.Interaction, embed, name, contentType, r); err != nil {
		return NewSystemError(err, "Failed to send command response with attachment")
	}
	return nil
}

// ReplyText replaces the deferred response with plain text
func (c *Command) ReplyText(content string) error {
	if err := EditWithContent(c.Session, c.Interaction, content); err != nil {
		return NewSystemError(err, "Failed to send command response")
	}
	return nil
}

// SubcommandName returns the name of the first subcommand option, if any
func SubcommandName(options []*discordgo.ApplicationCommandInteractionDataOption) string {
	if len(options) > 0 && options[0].Type == discordgo.ApplicationCommandOptionSubCommand {
		return options[0].Name
	}
	return ""
}

// OptionMap flattens the options of a command or its subcommand by name
func OptionMap(options []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	if len(options) > 0 && options[0].Type == discordgo.ApplicationCommandOptionSubCommand {
		options = options[0].Options
	}
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}

// FocusedOption returns the option an autocomplete request is typing into
func FocusedOption(options []*discordgo.ApplicationCommandInteractionDataOption) *discordgo.ApplicationCommandInteractionDataOption {
	for _, opt := range OptionMap(options) {
		if opt.Focused {
			return opt
		}
	}
	return nil
}
