package moderation

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/bwmarrin/discordgo"
)

// ErrPlatform wraps failures returned by the chat platform.
var ErrPlatform = errors.New("platform request failed")

// Platform is the subset of *discordgo.Session the moderation services use.
type Platform interface {
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	GuildRoles(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Role, error)
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
	Guild(guildID string, options ...discordgo.RequestOption) (*discordgo.Guild, error)
	ChannelPermissionSet(channelID, targetID string, targetType discordgo.PermissionOverwriteType, allow, deny int64, options ...discordgo.RequestOption) error
	ChannelPermissionDelete(channelID, targetID string, options ...discordgo.RequestOption) error
	GuildChannelCreateComplex(guildID string, data discordgo.GuildChannelCreateData, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelEdit(channelID string, data *discordgo.ChannelEdit, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
}

var _ Platform = (*discordgo.Session)(nil)

func platformErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrPlatform, err)
}

func requestOptions(ctx context.Context, reason string) []discordgo.RequestOption {
	opts := []discordgo.RequestOption{discordgo.WithContext(ctx)}
	if reason != "" {
		opts = append(opts, discordgo.WithAuditLogReason(reason))
	}
	return opts
}

// roleAbove reports whether a outranks b in the guild hierarchy. Equal
// positions are broken by id, older (smaller) snowflakes ranking higher.
func roleAbove(a, b *discordgo.Role) bool {
	if a.Position != b.Position {
		return a.Position > b.Position
	}
	return snowflakeLess(a.ID, b.ID)
}

func snowflakeLess(a, b string) bool {
	x, errA := strconv.ParseUint(a, 10, 64)
	y, errB := strconv.ParseUint(b, 10, 64)
	if errA != nil || errB != nil {
		return a < b
	}
	return x < y
}

// topRole returns the member's highest role, or the @everyone role when the
// member has no other roles.
func topRole(guildID string, member *discordgo.Member, roles []*discordgo.Role) *discordgo.Role {
	held := make(map[string]struct{}, len(member.Roles))
	for _, id := range member.Roles {
		held[id] = struct{}{}
	}

	var top *discordgo.Role
	for _, r := range roles {
		if _, ok := held[r.ID]; !ok && r.ID != guildID {
			continue
		}
		if top == nil || roleAbove(r, top) {
			top = r
		}
	}
	if top == nil {
		top = &discordgo.Role{ID: guildID, Position: 0}
	}
	return top
}

// memberOutranks reports whether actor's top role is strictly above target's.
func memberOutranks(guildID string, actor, target *discordgo.Member, roles []*discordgo.Role) bool {
	return roleAbove(topRole(guildID, actor, roles), topRole(guildID, target, roles))
}
