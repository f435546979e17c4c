package handlers

import (
	"strings"

	"orion-bot/commands"
	"orion-bot/utils"

	"github.com/bwmarrin/discordgo"
)

// maxChoices is the platform's limit on autocomplete suggestions.
const maxChoices = 25

func handleAutocomplete(s *discordgo.Session, i *discordgo.InteractionCreate, d *commands.Deps) {
	data := i.ApplicationCommandData()

	var choices []*discordgo.ApplicationCommandOptionChoice
	switch data.Name {
	case "language":
		for _, opt := range data.Options {
			if opt.Name == "code" && opt.Focused {
				query, _ := opt.Value.(string)
				choices = languageChoices(d, query)
			}
		}
	default:
		return
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{Choices: choices},
	})
	if err != nil {
		log := utils.Module("handlers")
		log.Warn().Err(err).Str("command", data.Name).Msg("Failed to respond to autocomplete")
	}
}

// languageChoices lists bundled languages whose code or display name contains query.
func languageChoices(d *commands.Deps, query string) []*discordgo.ApplicationCommandOptionChoice {
	query = strings.ToLower(strings.TrimSpace(query))
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0)
	for _, code := range d.Tr.Languages() {
		name := code
		if n := d.Tr.Translate(code, "language.self_name", nil); n != "language.self_name" {
			name = n + " (" + code + ")"
		}
		if query != "" && !strings.Contains(strings.ToLower(name), query) {
			continue
		}
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: name, Value: code})
		if len(choices) == maxChoices {
			break
		}
	}
	return choices
}
