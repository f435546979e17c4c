package handlers

import (
	"context"
	"fmt"

	"orion-bot/commands"
	"orion-bot/model"

	"github.com/bwmarrin/discordgo"
)

func handleLock(ctx context.Context, d *commands.Deps, c commands.Caller, data discordgo.ApplicationCommandInteractionData) (*commands.Reply, error) {
	opts := commandOptions(data)
	return d.Lock(ctx, c, commands.LockArgs{Duration: opts.String("duration"), Reason: opts.String("reason")})
}

func handleUnlock(ctx context.Context, d *commands.Deps, c commands.Caller, data discordgo.ApplicationCommandInteractionData) (*commands.Reply, error) {
	return d.Unlock(ctx, c, commands.UnlockArgs{Reason: commandOptions(data).String("reason")})
}

func handleSlowmode(ctx context.Context, d *commands.Deps, c commands.Caller, data discordgo.ApplicationCommandInteractionData) (*commands.Reply, error) {
	opts := commandOptions(data)
	return d.Slowmode(ctx, c, commands.SlowmodeArgs{Duration: opts.String("duration"), Reason: opts.String("reason")})
}

func handleWarn(ctx context.Context, d *commands.Deps, c commands.Caller, data discordgo.ApplicationCommandInteractionData) (*commands.Reply, error) {
	return d.Warn(ctx, c, warnArgs(commandOptions(data)))
}

// warnArgs reads the options shared by /warn and /warnings add.
func warnArgs(opts options) commands.WarnArgs {
	args := commands.WarnArgs{Reason: opts.String("reason")}
	if u := opts.User("user"); u != nil {
		args.TargetID = u.ID
	}
	if a := opts.Attachment("attachment"); a != nil {
		args.Attachment = &model.Attachment{ID: a.ID, Filename: a.Filename, URL: a.URL}
	}
	return args
}

func handleWarnings(ctx context.Context, d *commands.Deps, c commands.Caller, data discordgo.ApplicationCommandInteractionData) (*commands.Reply, error) {
	sub, opts := subcommand(data)
	userID := ""
	if u := opts.User("user"); u != nil {
		userID = u.ID
	}
	switch sub {
	case "add":
		return d.Warn(ctx, c, warnArgs(opts))
	case "list":
		return d.WarningsList(ctx, c, userID)
	case "case":
		return d.WarningsCase(ctx, c, opts.Int("case_id"))
	case "remove":
		return d.WarningsRemove(ctx, c, opts.Int("case_id"))
	case "clear":
		return d.WarningsClear(ctx, c, userID)
	case "edit":
		return d.WarningsEdit(ctx, c, opts.Int("case_id"), opts.String("reason"))
	}
	return nil, fmt.Errorf("unknown warnings subcommand %q", sub)
}

func handleModeration(ctx context.Context, d *commands.Deps, c commands.Caller, data discordgo.ApplicationCommandInteractionData) (*commands.Reply, error) {
	sub, opts := subcommand(data)
	switch sub {
	case "", "show":
		return d.ModerationShow(ctx, c)
	case "setup":
		return d.ModerationSetup(ctx, c, commands.SetupArgs{
			LogsChannelID: opts.StringPtr("logs_channel"),
			CreateChannel: opts.Bool("create_channel"),
			ChannelName:   opts.String("channel_name"),
			CategoryID:    opts.String("category"),
			LogWarnings:   opts.BoolPtr("log_warnings"),
			LogLocks:      opts.BoolPtr("log_locks"),
			LogSlowmode:   opts.BoolPtr("log_slowmode"),
			NotifyDM:      opts.BoolPtr("notify_dm"),
		})
	case "testlog":
		return d.ModerationTestLog(ctx, c)
	}
	return nil, fmt.Errorf("unknown moderation subcommand %q", sub)
}
