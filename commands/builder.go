package commands

import (
	"orion-bot/commands/defs"

	"github.com/bwmarrin/discordgo"
)

// GenerateCommands returns the static list of slash commands registered for every guild.
func GenerateCommands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		defs.Lock,
		defs.Unlock,
		defs.Slowmode,
		defs.Warn,
		defs.Warnings,
		defs.Moderation,
		defs.Remind,
		defs.Schedule,
		defs.Timers,
		defs.AFK,
		defs.Rep,
		defs.Language,
		defs.Information,
		defs.Coinflip,
		defs.Dice,
	}
}
