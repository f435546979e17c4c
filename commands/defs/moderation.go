package defs

import "github.com/bwmarrin/discordgo"

var (
	manageChannels int64 = discordgo.PermissionManageChannels
	manageLocks    int64 = discordgo.PermissionManageChannels | discordgo.PermissionManageRoles
	moderate       int64 = discordgo.PermissionModerateMembers
	manageGuild    int64 = discordgo.PermissionManageGuild
	guildOnly            = false
)

var Lock = &discordgo.ApplicationCommand{
	Name:        "lock",
	Description: "Lock the current channel with an optional duration and reason",
	DescriptionLocalizations: &map[discordgo.Locale]string{
		discordgo.SpanishES: "Bloquea el canal actual con duración y motivo opcionales",
	},
	DefaultMemberPermissions: &manageLocks,
	DMPermission:             &guildOnly,
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "duration",
			Description: "e.g. 10m, 2h, 1d, 14:30 or 25/12/2024 15:00",
			Required:    false,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "reason",
			Description: "Reason for locking",
			Required:    false,
		},
	},
}

var Unlock = &discordgo.ApplicationCommand{
	Name:        "unlock",
	Description: "Unlock the current channel and optionally state a reason",
	DescriptionLocalizations: &map[discordgo.Locale]string{
		discordgo.SpanishES: "Desbloquea el canal actual",
	},
	DefaultMemberPermissions: &manageLocks,
	DMPermission:             &guildOnly,
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "reason",
			Description: "Reason for unlocking",
			Required:    false,
		},
	},
}

var Slowmode = &discordgo.ApplicationCommand{
	Name:        "slowmode",
	Description: "Set the slowmode of the current channel",
	DescriptionLocalizations: &map[discordgo.Locale]string{
		discordgo.SpanishES: "Configura el modo lento del canal actual",
	},
	DefaultMemberPermissions: &manageChannels,
	DMPermission:             &guildOnly,
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "duration",
			Description: "off, 30, 30s, 5m or 1h (max 6h)",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "reason",
			Description: "Reason for the change",
			Required:    false,
		},
	},
}

var Warn = &discordgo.ApplicationCommand{
	Name:        "warn",
	Description: "Warn a member",
	DescriptionLocalizations: &map[discordgo.Locale]string{
		discordgo.SpanishES: "Advierte a un miembro",
	},
	DefaultMemberPermissions: &moderate,
	DMPermission:             &guildOnly,
	Options:                  warnOptions(),
}

// warnOptions is shared by /warn and /warnings add.
func warnOptions() []*discordgo.ApplicationCommandOption {
	return []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "Member to warn",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "reason",
			Description: "Why the member is being warned",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionAttachment,
			Name:        "attachment",
			Description: "Optional evidence",
			Required:    false,
		},
	}
}

func caseOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        "case_id",
		Description: "Case number",
		Required:    true,
		MinValue:    &minCase,
	}
}

var minCase = 1.0

var Warnings = &discordgo.ApplicationCommand{
	Name:                     "warnings",
	Description:              "View and manage warnings",
	DefaultMemberPermissions: &moderate,
	DMPermission:             &guildOnly,
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "add",
			Description: "Add a warning to a member",
			Options:     warnOptions(),
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "list",
			Description: "List a member's warnings",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "Member to look up", Required: true},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "case",
			Description: "Show a single warning",
			Options:     []*discordgo.ApplicationCommandOption{caseOption()},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "remove",
			Description: "Delete a warning",
			Options:     []*discordgo.ApplicationCommandOption{caseOption()},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "clear",
			Description: "Delete all of a member's warnings",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "Member to clear", Required: true},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "edit",
			Description: "Change a warning's reason",
			Options: []*discordgo.ApplicationCommandOption{
				caseOption(),
				{Type: discordgo.ApplicationCommandOptionString, Name: "reason", Description: "New reason", Required: true},
			},
		},
	},
}

var Moderation = &discordgo.ApplicationCommand{
	Name:                     "moderation",
	Description:              "Moderation setup and settings",
	DefaultMemberPermissions: &manageGuild,
	DMPermission:             &guildOnly,
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "show",
			Description: "Show the current moderation settings",
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "setup",
			Description: "Configure the log channel and what gets logged",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:         discordgo.ApplicationCommandOptionChannel,
					Name:         "logs_channel",
					Description:  "Existing channel for moderation logs",
					ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
				},
				{Type: discordgo.ApplicationCommandOptionBoolean, Name: "create_channel", Description: "Create a private log channel"},
				{Type: discordgo.ApplicationCommandOptionString, Name: "channel_name", Description: "Name for a created channel"},
				{
					Type:         discordgo.ApplicationCommandOptionChannel,
					Name:         "category",
					Description:  "Category for a created channel",
					ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildCategory},
				},
				{Type: discordgo.ApplicationCommandOptionBoolean, Name: "log_warnings", Description: "Log warnings"},
				{Type: discordgo.ApplicationCommandOptionBoolean, Name: "log_locks", Description: "Log locks and unlocks"},
				{Type: discordgo.ApplicationCommandOptionBoolean, Name: "log_slowmode", Description: "Log slowmode changes"},
				{Type: discordgo.ApplicationCommandOptionBoolean, Name: "notify_dm", Description: "DM members when they are warned"},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "testlog",
			Description: "Send a test entry to the log channel",
		},
	},
}
