package handlers

import (
	"context"
	"time"

	"orion-bot/bot"
	"orion-bot/commands"
	"orion-bot/metrics"
	"orion-bot/utils"

	"github.com/bwmarrin/discordgo"
)

const commandTimeout = 30 * time.Second

type commandFunc func(ctx context.Context, d *commands.Deps, c commands.Caller, data discordgo.ApplicationCommandInteractionData) (*commands.Reply, error)

type route struct {
	run       commandFunc
	ephemeral bool
}

var routes = map[string]route{
	"lock":        {run: handleLock},
	"unlock":      {run: handleUnlock},
	"slowmode":    {run: handleSlowmode},
	"warn":        {run: handleWarn},
	"warnings":    {run: handleWarnings},
	"moderation":  {run: handleModeration, ephemeral: true},
	"remind":      {run: handleRemind},
	"schedule":    {run: handleSchedule},
	"timers":      {run: handleTimers, ephemeral: true},
	"afk":         {run: handleAFK},
	"rep":         {run: handleRep},
	"language":    {run: handleLanguage, ephemeral: true},
	"information": {run: handleInformation},
	"coinflip":    {run: handleCoinflip},
	"dice":        {run: handleDice},
}

func commandHandlers(b *bot.Bot) map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	handlers := make(map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate), len(routes))
	for name, rt := range routes {
		name, rt := name, rt
		handlers[name] = func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			runCommand(s, i, b, name, rt)
		}
	}
	return handlers
}

func newCaller(ctx context.Context, d *commands.Deps, i *discordgo.InteractionCreate) commands.Caller {
	c := commands.Caller{GuildID: i.GuildID, ChannelID: i.ChannelID}
	if i.Member != nil {
		c.Permissions = i.Member.Permissions
		if i.Member.User != nil {
			c.UserID = i.Member.User.ID
		}
	} else if i.User != nil {
		c.UserID = i.User.ID
	}
	c.Owner = utils.IsOwner(d.Config.OwnerIDs, c.UserID)
	c.Lang = d.Tr.UserLanguage(ctx, c.UserID)
	return c
}

// runCommand defers the interaction, runs the command and edits the deferred
// response with its reply or a localized error.
func runCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, name string, rt route) {
	log := utils.Module("commands").With().Str("command", name).Str("guild", i.GuildID).Logger()
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if err := utils.DeferResponse(s, i, rt.ephemeral); err != nil {
		log.Error().Err(err).Msg("Failed to defer interaction")
		metrics.CommandsTotal.WithLabelValues(name, "defer_error").Inc()
		return
	}

	d := b.Deps
	c := newCaller(ctx, d, i)
	reply, err := rt.run(ctx, d, c, i.ApplicationCommandData())
	if err != nil {
		msg, expected := d.Localize(c.Lang, err)
		if expected {
			log.Debug().Err(err).Msg("Command rejected")
			metrics.CommandsTotal.WithLabelValues(name, "rejected").Inc()
		} else {
			log.Error().Err(err).Str("user", c.UserID).Msg("Command failed")
			metrics.CommandsTotal.WithLabelValues(name, "error").Inc()
			if logErr := utils.LogError(s, b.GetConfig().LogChannelID, "Commands", name, err.Error()); logErr != nil {
				log.Warn().Err(logErr).Msg("Failed to post error to log channel")
			}
		}
		utils.SendFollowUpError(s, i.Interaction, msg)
		return
	}

	metrics.CommandsTotal.WithLabelValues(name, "ok").Inc()
	utils.SendFollowUp(s, i.Interaction, reply.Content, reply.Embeds)
}
