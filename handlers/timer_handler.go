package handlers

import (
	"context"

	"orion-bot/commands"

	"github.com/bwmarrin/discordgo"
)

func handleRemind(ctx context.Context, d *commands.Deps, c commands.Caller, data discordgo.ApplicationCommandInteractionData) (*commands.Reply, error) {
	opts := commandOptions(data)
	return d.Remind(ctx, c, commands.RemindArgs{When: opts.String("when"), What: opts.String("what")})
}

func handleSchedule(ctx context.Context, d *commands.Deps, c commands.Caller, data discordgo.ApplicationCommandInteractionData) (*commands.Reply, error) {
	opts := commandOptions(data)
	return d.Schedule(ctx, c, commands.ScheduleArgs{
		Title:     opts.String("title"),
		When:      opts.String("time"),
		ChannelID: opts.String("channel"),
	})
}

func handleTimers(ctx context.Context, d *commands.Deps, c commands.Caller, _ discordgo.ApplicationCommandInteractionData) (*commands.Reply, error) {
	return d.Timers(ctx, c)
}
