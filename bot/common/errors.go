package common

import (
	"errors"
	"fmt"

	"incoin/domain/services"
	"incoin/store"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const (
	systemErrorMessage      = "エラーが発生しました。しばらくしてからもう一度お試しください。"
	unavailableErrorMessage = "データベースに接続できませんでした。数秒待ってからもう一度お試しください。"
)

// BotError represents a structured error with user-facing and internal messages
type BotError struct {
	UserMessage string      // Message shown to Discord user
	LogMessage  string      // Internal message for logging
	Ephemeral   bool        // Whether the error message should be ephemeral
	Err         error       // Underlying error
	Context     interface{} // Additional context for logging
}

// Error implements the error interface
func (e *BotError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.LogMessage, e.Err)
	}
	return e.LogMessage
}

// Unwrap returns the underlying error
func (e *BotError) Unwrap() error {
	return e.Err
}

// NewUserError creates an error for user-caused issues (validation, insufficient funds, etc)
func NewUserError(userMessage string, logMessage string) *BotError {
	return &BotError{
		UserMessage: userMessage,
		LogMessage:  logMessage,
		Ephemeral:   true,
	}
}

// NewSystemError creates an error for system issues (database, unexpected state, etc)
func NewSystemError(err error, logMessage string) *BotError {
	userMessage := systemErrorMessage
	if errors.Is(err, store.ErrUnavailable) {
		userMessage = unavailableErrorMessage
	}
	return &BotError{
		UserMessage: userMessage,
		LogMessage:  logMessage,
		Ephemeral:   true,
		Err:         err,
	}
}

// FromServiceError converts an error returned by an economy service. Rule
// violations become user errors, everything else is a system error.
func FromServiceError(err error, logMessage string) error {
	if err == nil {
		return nil
	}
	if ruleErr, ok := services.AsRuleError(err); ok {
		botErr := NewUserError(ruleErr.Message, logMessage)
		botErr.Err = err
		return botErr
	}
	var botErr *BotError
	if errors.As(err, &botErr) {
		return err
	}
	return NewSystemError(err, logMessage)
}

// IsUserError reports whether err was caused by the user rather than the system
func IsUserError(err error) bool {
	var botErr *BotError
	return errors.As(err, &botErr) && botErr.UserMessage != systemErrorMessage && botErr.UserMessage != unavailableErrorMessage
}

// RespondWithError sends an error message as an interaction response
func RespondWithError(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: fmt.Sprintf("❌ %s", message),
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Errorf("Error sending error response: %v", err)
	}
}

// EditWithError replaces a deferred response with an error message
func EditWithError(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	content := fmt.Sprintf("❌ %s", message)
	_, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Content: &content,
		Embeds:  &[]*discordgo.MessageEmbed{},
	})
	if err != nil {
		log.Errorf("Error editing deferred response with error: %v", err)
	}
}

// HandleError processes a BotError and responds appropriately
func HandleError(s *discordgo.Session, i *discordgo.InteractionCreate, err error, deferred bool) {
	userID := ""
	if i.Member != nil && i.Member.User != nil {
		userID = i.Member.User.ID
	}

	message := systemErrorMessage
	var botErr *BotError
	if errors.As(err, &botErr) {
		fields := log.Fields{
			"user_id":      userID,
			"guild_id":     i.GuildID,
			"command":      i.ApplicationCommandData().Name,
			"error":        botErr.Error(),
			"user_message": botErr.UserMessage,
			"context":      botErr.Context,
		}
		if IsUserError(botErr) {
			log.WithFields(fields).Debug(botErr.LogMessage)
		} else {
			log.WithFields(fields).Error(botErr.LogMessage)
		}
		message = botErr.UserMessage
	} else {
		// Unexpected error - log full details but show generic message to user
		log.WithFields(log.Fields{
			"user_id":  userID,
			"guild_id": i.GuildID,
			"command":  i.ApplicationCommandData().Name,
			"error":    err.Error(),
		}).Error("Unexpected error in bot command")
	}

	if deferred {
		EditWithError(s, i, message)
	} else {
		RespondWithError(s, i, message)
	}
}
