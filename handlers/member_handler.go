package handlers

import (
	"context"
	"fmt"
	"time"

	"orion-bot/commands"

	"github.com/bwmarrin/discordgo"
)

func handleAFK(ctx context.Context, d *commands.Deps, c commands.Caller, data discordgo.ApplicationCommandInteractionData) (*commands.Reply, error) {
	sub, opts := subcommand(data)
	switch sub {
	case "set":
		return d.AFKSet(ctx, c, opts.String("message"))
	case "clear":
		return d.AFKClear(ctx, c)
	}
	return nil, fmt.Errorf("unknown afk subcommand %q", sub)
}

func handleRep(ctx context.Context, d *commands.Deps, c commands.Caller, data discordgo.ApplicationCommandInteractionData) (*commands.Reply, error) {
	opts := commandOptions(data)
	args := commands.RepArgs{Reason: opts.String("reason")}
	if u := opts.User("user"); u != nil {
		args.TargetID = u.ID
		args.TargetBot = u.Bot
	}
	return d.Rep(ctx, c, args)
}

func handleLanguage(ctx context.Context, d *commands.Deps, c commands.Caller, data discordgo.ApplicationCommandInteractionData) (*commands.Reply, error) {
	opts := commandOptions(data)
	return d.Language(ctx, c, commands.LanguageArgs{Code: opts.String("code"), ShowAll: opts.Bool("show_all")})
}

func handleInformation(ctx context.Context, d *commands.Deps, c commands.Caller, _ discordgo.ApplicationCommandInteractionData) (*commands.Reply, error) {
	return d.Information(ctx, c)
}

func handleCoinflip(ctx context.Context, d *commands.Deps, c commands.Caller, _ discordgo.ApplicationCommandInteractionData) (*commands.Reply, error) {
	return d.Coinflip(ctx, c)
}

func handleDice(ctx context.Context, d *commands.Deps, c commands.Caller, _ discordgo.ApplicationCommandInteractionData) (*commands.Reply, error) {
	return d.Dice(ctx, c)
}

// afkMessage feeds guild messages to the AFK listener.
func afkMessage(s *discordgo.Session, m *discordgo.MessageCreate, d *commands.Deps) {
	if m.Author == nil || m.GuildID == "" || m.Interaction != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	info := commands.MessageInfo{GuildID: m.GuildID, AuthorID: m.Author.ID, Bot: m.Author.Bot}
	for _, u := range m.Mentions {
		name := u.GlobalName
		if name == "" {
			name = u.Username
		}
		info.Mentions = append(info.Mentions, commands.Mention{ID: u.ID, Name: name})
	}

	notes, cleared := d.AFKNotes(ctx, info)
	for idx, note := range notes {
		msg, err := s.ChannelMessageSendEmbed(m.ChannelID, note, discordgo.WithContext(ctx))
		if err != nil {
			continue
		}
		// the welcome back note cleans itself up
		if idx == 0 && cleared {
			channelID, msgID := m.ChannelID, msg.ID
			time.AfterFunc(10*time.Second, func() {
				_ = s.ChannelMessageDelete(channelID, msgID)
			})
		}
	}
}
