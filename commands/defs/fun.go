package defs

import "github.com/bwmarrin/discordgo"

var Coinflip = &discordgo.ApplicationCommand{
	Name:        "coinflip",
	Description: "Flip a coin - heads or tails!",
	DescriptionLocalizations: &map[discordgo.Locale]string{
		discordgo.SpanishES: "Lanza una moneda: ¡cara o cruz!",
	},
}

var Dice = &discordgo.ApplicationCommand{
	Name:        "dice",
	Description: "Roll a dice - 1-6!",
	DescriptionLocalizations: &map[discordgo.Locale]string{
		discordgo.SpanishES: "Tira un dado: ¡del 1 al 6!",
	},
}
