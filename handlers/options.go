package handlers

import (
	"github.com/bwmarrin/discordgo"
)

// options indexes one level of interaction options by name and keeps the
// resolved users, channels and attachments for lookups.
type options struct {
	byName   map[string]*discordgo.ApplicationCommandInteractionDataOption
	resolved *discordgo.ApplicationCommandInteractionDataResolved
}

func newOptions(opts []*discordgo.ApplicationCommandInteractionDataOption, resolved *discordgo.ApplicationCommandInteractionDataResolved) options {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(opts))
	for _, opt := range opts {
		m[opt.Name] = opt
	}
	return options{byName: m, resolved: resolved}
}

// commandOptions returns the top-level options of data.
func commandOptions(data discordgo.ApplicationCommandInteractionData) options {
	return newOptions(data.Options, data.Resolved)
}

// subcommand returns the invoked subcommand name and its options.
func subcommand(data discordgo.ApplicationCommandInteractionData) (string, options) {
	for _, opt := range data.Options {
		if opt.Type == discordgo.ApplicationCommandOptionSubCommand {
			return opt.Name, newOptions(opt.Options, data.Resolved)
		}
	}
	return "", newOptions(nil, data.Resolved)
}

func (o options) String(name string) string {
	if opt, ok := o.byName[name]; ok {
		if v, ok := opt.Value.(string); ok {
			return v
		}
	}
	return ""
}

func (o options) Int(name string) int64 {
	if opt, ok := o.byName[name]; ok {
		if v, ok := opt.Value.(float64); ok {
			return int64(v)
		}
	}
	return 0
}

func (o options) Bool(name string) bool {
	v := o.BoolPtr(name)
	return v != nil && *v
}

// BoolPtr is nil when the option was not given.
func (o options) BoolPtr(name string) *bool {
	if opt, ok := o.byName[name]; ok {
		if v, ok := opt.Value.(bool); ok {
			return &v
		}
	}
	return nil
}

// StringPtr is nil when the option was not given.
func (o options) StringPtr(name string) *string {
	if _, ok := o.byName[name]; !ok {
		return nil
	}
	v := o.String(name)
	return &v
}

// User returns the resolved user for a user option. Only the ID is set when
// the interaction did not carry resolved data.
func (o options) User(name string) *discordgo.User {
	id := o.String(name)
	if id == "" {
		return nil
	}
	if o.resolved != nil {
		if u, ok := o.resolved.Users[id]; ok {
			return u
		}
	}
	return &discordgo.User{ID: id}
}

func (o options) Attachment(name string) *discordgo.MessageAttachment {
	id := o.String(name)
	if id == "" || o.resolved == nil {
		return nil
	}
	return o.resolved.Attachments[id]
}
