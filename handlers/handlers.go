package handlers

import (
	"fmt"

	"orion-bot/bot"
	"orion-bot/utils"

	"github.com/bwmarrin/discordgo"
)

func Register(b *bot.Bot) {
	b.CommandHandlers = commandHandlers(b)
	addHandlers(b)
}

func addHandlers(b *bot.Bot) {
	log := utils.Module("handlers")

	b.Session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Info().Str("user", r.User.Username).Int("guilds", len(r.Guilds)).Msg("Logged in")
		b.SetBotID(r.User.ID)
		b.RefreshCommands()
		if err := utils.LogInfo(s, b.GetConfig().LogChannelID, "System", "Startup",
			fmt.Sprintf("%s is online in %d guilds.", b.GetConfig().BotName, len(r.Guilds))); err != nil {
			log.Warn().Err(err).Msg("Failed to send startup log")
		}
	})
	b.Session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		handleInteractionCreate(s, i, b)
	})
	b.Session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		afkMessage(s, m, b.Deps)
	})
}
