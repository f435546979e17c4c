package utils

import (
	"slices"

	"github.com/bwmarrin/discordgo"
)

var permissionNames = []struct {
	bit  int64
	name string
}{
	{discordgo.PermissionAdministrator, "Administrator"},
	{discordgo.PermissionManageChannels, "Manage Channels"},
	{discordgo.PermissionManageRoles, "Manage Roles"},
	{discordgo.PermissionManageGuild, "Manage Server"},
	{discordgo.PermissionModerateMembers, "Moderate Members"},
	{discordgo.PermissionManageMessages, "Manage Messages"},
	{discordgo.PermissionSendMessages, "Send Messages"},
	{discordgo.PermissionEmbedLinks, "Embed Links"},
}

// MissingPermissions returns the names of the bits in required that
// have lacks. Administrator satisfies everything.
func MissingPermissions(have, required int64) []string {
	if have&discordgo.PermissionAdministrator != 0 {
		return nil
	}
	var missing []string
	for _, p := range permissionNames {
		if required&p.bit != 0 && have&p.bit == 0 {
			missing = append(missing, p.name)
		}
	}
	return missing
}

// IsOwner reports whether userID is one of the configured bot owners.
func IsOwner(ownerIDs []string, userID string) bool {
	return slices.Contains(ownerIDs, userID)
}
