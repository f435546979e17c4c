package defs

import "github.com/bwmarrin/discordgo"

var AFK = &discordgo.ApplicationCommand{
	Name:         "afk",
	Description:  "Set or clear your AFK status",
	DMPermission: &guildOnly,
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "set",
			Description: "Set your AFK status with a message",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "message", Description: "Shown to people who mention you", Required: true},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "clear",
			Description: "Clear your AFK status",
		},
	},
}

var Rep = &discordgo.ApplicationCommand{
	Name:         "rep",
	Description:  "Give a reputation point to a user",
	DMPermission: &guildOnly,
	Options: []*discordgo.ApplicationCommandOption{
		{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "The member you want to give a point to", Required: true},
		{Type: discordgo.ApplicationCommandOptionString, Name: "reason", Description: "A short message explaining why"},
	},
}

var Language = &discordgo.ApplicationCommand{
	Name:        "language",
	Description: "Change your language preference",
	DescriptionLocalizations: &map[discordgo.Locale]string{
		discordgo.SpanishES: "Cambia tu idioma preferido",
	},
	Options: []*discordgo.ApplicationCommandOption{
		{Type: discordgo.ApplicationCommandOptionString, Name: "code", Description: "Language code (e.g. en, es). Omit to see your current setting", Autocomplete: true},
		{Type: discordgo.ApplicationCommandOptionBoolean, Name: "show_all", Description: "List all available languages"},
	},
}

var Information = &discordgo.ApplicationCommand{
	Name:        "information",
	Description: "Shows bot and system information",
}
