package utils

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// DirectMessenger is the part of *discordgo.Session needed to DM a user.
type DirectMessenger interface {
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// SendPrivateEmbedMessage sends a direct message with an embed to a user.
// Users with closed DMs surface as an error; callers usually just log it.
func SendPrivateEmbedMessage(s DirectMessenger, userID string, embed *discordgo.MessageEmbed) error {
	channel, err := s.UserChannelCreate(userID)
	if err != nil {
		return fmt.Errorf("creating private channel with user %s: %w", userID, err)
	}
	if _, err := s.ChannelMessageSendEmbed(channel.ID, embed); err != nil {
		return fmt.Errorf("sending private message to user %s: %w", userID, err)
	}
	return nil
}
