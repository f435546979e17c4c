package moderation

import (
	"errors"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// fakePlatform keeps channels, roles and members in memory and records sends.
type fakePlatform struct {
	mu       sync.Mutex
	guild    *discordgo.Guild
	roles    []*discordgo.Role
	members  map[string]*discordgo.Member
	channels map[string]*discordgo.Channel

	failRoles   map[string]bool
	failChannel bool
	failDM      bool

	sent      []sentMessage
	edits     []*discordgo.ChannelEdit
	permCalls int
}

type sentMessage struct {
	ChannelID string
	Content   string
	Embed     *discordgo.MessageEmbed
}

func newFakePlatform(guildID, ownerID string) *fakePlatform {
	return &fakePlatform{
		guild:     &discordgo.Guild{ID: guildID, OwnerID: ownerID},
		roles:     []*discordgo.Role{{ID: guildID, Name: "@everyone", Position: 0}},
		members:   make(map[string]*discordgo.Member),
		channels:  make(map[string]*discordgo.Channel),
		failRoles: make(map[string]bool),
	}
}

func (f *fakePlatform) addRole(id string, position int) {
	f.roles = append(f.roles, &discordgo.Role{ID: id, Name: id, Position: position})
}

func (f *fakePlatform) addMember(userID string, bot bool, roles ...string) {
	f.members[userID] = &discordgo.Member{User: &discordgo.User{ID: userID, Bot: bot}, Roles: roles}
}

func (f *fakePlatform) addChannel(id string, overwrites ...*discordgo.PermissionOverwrite) {
	f.channels[id] = &discordgo.Channel{ID: id, GuildID: f.guild.ID, PermissionOverwrites: overwrites}
}

func (f *fakePlatform) overwrite(channelID, roleID string) *discordgo.PermissionOverwrite {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.channels[channelID].PermissionOverwrites {
		if o.ID == roleID {
			c := *o
			return &c
		}
	}
	return nil
}

func (f *fakePlatform) Channel(channelID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failChannel {
		return nil, errors.New("channel unavailable")
	}
	c, ok := f.channels[channelID]
	if !ok {
		return nil, fmt.Errorf("unknown channel %s", channelID)
	}
	clone := *c
	clone.PermissionOverwrites = nil
	for _, o := range c.PermissionOverwrites {
		oc := *o
		clone.PermissionOverwrites = append(clone.PermissionOverwrites, &oc)
	}
	return &clone, nil
}

func (f *fakePlatform) GuildRoles(string, ...discordgo.RequestOption) ([]*discordgo.Role, error) {
	return f.roles, nil
}

func (f *fakePlatform) GuildMember(_ string, userID string, _ ...discordgo.RequestOption) (*discordgo.Member, error) {
	m, ok := f.members[userID]
	if !ok {
		return nil, fmt.Errorf("unknown member %s", userID)
	}
	return m, nil
}

func (f *fakePlatform) Guild(string, ...discordgo.RequestOption) (*discordgo.Guild, error) {
	return f.guild, nil
}

func (f *fakePlatform) ChannelPermissionSet(channelID, targetID string, targetType discordgo.PermissionOverwriteType, allow, deny int64, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.permCalls++
	if f.failRoles[targetID] {
		return errors.New("missing access")
	}
	c := f.channels[channelID]
	for _, o := range c.PermissionOverwrites {
		if o.ID == targetID {
			o.Allow, o.Deny = allow, deny
			return nil
		}
	}
	c.PermissionOverwrites = append(c.PermissionOverwrites, &discordgo.PermissionOverwrite{ID: targetID, Type: targetType, Allow: allow, Deny: deny})
	return nil
}

func (f *fakePlatform) ChannelPermissionDelete(channelID, targetID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.permCalls++
	if f.failRoles[targetID] {
		return errors.New("missing access")
	}
	c := f.channels[channelID]
	kept := c.PermissionOverwrites[:0]
	for _, o := range c.PermissionOverwrites {
		if o.ID != targetID {
			kept = append(kept, o)
		}
	}
	c.PermissionOverwrites = kept
	return nil
}

func (f *fakePlatform) ChannelEdit(channelID string, data *discordgo.ChannelEdit, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, data)
	return f.channels[channelID], nil
}

func (f *fakePlatform) ChannelMessageSend(channelID, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{ChannelID: channelID, Content: content})
	return &discordgo.Message{ChannelID: channelID, Content: content}, nil
}

func (f *fakePlatform) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDM && len(channelID) > 3 && channelID[:3] == "dm-" {
		return nil, errors.New("cannot send messages to this user")
	}
	f.sent = append(f.sent, sentMessage{ChannelID: channelID, Embed: embed})
	return &discordgo.Message{ChannelID: channelID}, nil
}

func (f *fakePlatform) UserChannelCreate(recipientID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	return &discordgo.Channel{ID: "dm-" + recipientID}, nil
}

func (f *fakePlatform) sentTo(channelID string) []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sentMessage
	for _, m := range f.sent {
		if m.ChannelID == channelID {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakePlatform) GuildChannelCreateComplex(guildID string, data discordgo.GuildChannelCreateData, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := &discordgo.Channel{ID: "created-" + data.Name, GuildID: guildID, Name: data.Name, ParentID: data.ParentID}
	for _, o := range data.PermissionOverwrites {
		oc := *o
		c.PermissionOverwrites = append(c.PermissionOverwrites, &oc)
	}
	f.channels[c.ID] = c
	return c, nil
}
