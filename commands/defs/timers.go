package defs

import "github.com/bwmarrin/discordgo"

const timeHint = "e.g. 1h30m, 2d, 14:30, 25/12/2024 15:00 (UTC)"

var Remind = &discordgo.ApplicationCommand{
	Name:        "remind",
	Description: "Set a reminder",
	DescriptionLocalizations: &map[discordgo.Locale]string{
		discordgo.SpanishES: "Crea un recordatorio",
	},
	Options: []*discordgo.ApplicationCommandOption{
		{Type: discordgo.ApplicationCommandOptionString, Name: "when", Description: timeHint, Required: true},
		{Type: discordgo.ApplicationCommandOptionString, Name: "what", Description: "What to remind you about", Required: true},
	},
}

var Schedule = &discordgo.ApplicationCommand{
	Name:         "schedule",
	Description:  "Create a scheduled event announcement",
	DMPermission: &guildOnly,
	Options: []*discordgo.ApplicationCommandOption{
		{Type: discordgo.ApplicationCommandOptionString, Name: "title", Description: "Event title", Required: true},
		{Type: discordgo.ApplicationCommandOptionString, Name: "time", Description: timeHint, Required: true},
		{
			Type:         discordgo.ApplicationCommandOptionChannel,
			Name:         "channel",
			Description:  "Channel to announce in (defaults to this one)",
			ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText, discordgo.ChannelTypeGuildNews},
		},
	},
}

var Timers = &discordgo.ApplicationCommand{
	Name:        "timers",
	Description: "List your pending reminders and scheduled events",
}
