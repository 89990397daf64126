package bot

import (
	"context"
	"fmt"
	"time"

	"incoin/bot/common"

	"github.com/bwmarrin/discordgo"
)

// DirectMessageNotifier sends economy notices as DM embeds
type DirectMessageNotifier struct {
	session *discordgo.Session
}

// NewDirectMessageNotifier creates a notifier on the given session
func NewDirectMessageNotifier(session *discordgo.Session) *DirectMessageNotifier {
	return &DirectMessageNotifier{session: session}
}

// DirectMessage opens a DM channel with the user and posts one embed
func (n *DirectMessageNotifier) DirectMessage(ctx context.Context, userID int64, title, body string) error {
	channel, err := n.session.UserChannelCreate(common.FormatUserID(userID), discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to open DM channel with %d: %w", userID, err)
	}

	embed := &discordgo.MessageEmbed{
		Title:       title,
		Description: body,
		Color:       common.ColorPrimary,
		Timestamp:   time.Now().Format(time.RFC3339),
	}
	if _, err := n.session.ChannelMessageSendEmbed(channel.ID, embed, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to send DM to %d: %w", userID, err)
	}
	return nil
}
