package common

import (
	"errors"
	"fmt"
	"testing"

	"incoin/domain/services"
	"incoin/store"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatCoins(t *testing.T) {
	assert.Equal(t, "1,234,567 いんコイン", FormatCoins(1234567))
	assert.Equal(t, "**0** いんコイン", FormatBoldCoins(0))
	assert.Equal(t, "65%", FormatPercent(0.65))
}

func TestOptionMap(t *testing.T) {
	flat := []*discordgo.ApplicationCommandInteractionDataOption{
		{Name: "amount", Type: discordgo.ApplicationCommandOptionInteger, Value: float64(10)},
	}
	assert.Empty(t, SubcommandName(flat))
	assert.Equal(t, int64(10), OptionMap(flat)["amount"].IntValue())

	nested := []*discordgo.ApplicationCommandInteractionDataOption{{
		Name: "join",
		Type: discordgo.ApplicationCommandOptionSubCommand,
		Options: []*discordgo.ApplicationCommandInteractionDataOption{
			{Name: "company_name", Type: discordgo.ApplicationCommandOptionString, Value: "Acme", Focused: true},
		},
	}}
	assert.Equal(t, "join", SubcommandName(nested))
	assert.Equal(t, "Acme", OptionMap(nested)["company_name"].StringValue())

	focused := FocusedOption(nested)
	require.NotNil(t, focused)
	assert.Equal(t, "company_name", focused.Name)
}

func TestFilterRoleMembers(t *testing.T) {
	members := []*discordgo.Member{
		{User: &discordgo.User{ID: "1"}, Roles: []string{"r1", "r2"}},
		{User: &discordgo.User{ID: "2", Bot: true}, Roles: []string{"r1"}},
		{User: &discordgo.User{ID: "3"}, Roles: []string{"r2"}},
		{Roles: []string{"r1"}},
	}
	assert.Equal(t, []int64{1}, FilterRoleMembers(members, "r1"))
	assert.Equal(t, []int64{1, 3}, FilterRoleMembers(members, "r2"))
}

func TestFromServiceError(t *testing.T) {
	assert.NoError(t, FromServiceError(nil, "noop"))

	ruleErr := &services.RuleError{Message: "所持金が足りません。"}
	err := FromServiceError(fmt.Errorf("wrapped: %w", ruleErr), "Deposit rejected")
	var botErr *BotError
	require.True(t, errors.As(err, &botErr))
	assert.Equal(t, "所持金が足りません。", botErr.UserMessage)
	assert.True(t, IsUserError(err))

	err = FromServiceError(fmt.Errorf("save: %w", store.ErrUnavailable), "Deposit failed")
	require.True(t, errors.As(err, &botErr))
	assert.Equal(t, unavailableErrorMessage, botErr.UserMessage)
	assert.False(t, IsUserError(err))

	err = FromServiceError(errors.New("boom"), "Deposit failed")
	require.True(t, errors.As(err, &botErr))
	assert.Equal(t, systemErrorMessage, botErr.UserMessage)

	original := NewUserError("x", "y")
	assert.Same(t, original, FromServiceError(original, "ignored"))
}

func TestIsAdministrator(t *testing.T) {
	admin := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Member: &discordgo.Member{Permissions: discordgo.PermissionAdministrator | discordgo.PermissionSendMessages},
	}}
	user := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Member: &discordgo.Member{Permissions: discordgo.PermissionSendMessages},
	}}
	assert.True(t, IsAdministrator(admin))
	assert.False(t, IsAdministrator(user))
	assert.False(t, IsAdministrator(&discordgo.InteractionCreate{Interaction: &discordgo.Interaction{}}))
}
