// Package commands implements the bot's slash commands independently of the
// gateway: handlers parse interaction options into arguments, call one of the
// methods on Deps and render the returned Reply.
package commands

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"orion-bot/i18n"
	"orion-bot/model"
	"orion-bot/moderation"
	"orion-bot/tasks/delivery"
	"orion-bot/utils"
	"orion-bot/utils/database"

	"github.com/bwmarrin/discordgo"
)

// Caller identifies who invoked a command and where.
type Caller struct {
	GuildID   string
	ChannelID string
	UserID    string
	// Permissions are the caller's resolved permissions in ChannelID.
	Permissions int64
	Lang        string
	// Owner is set for configured bot owners, who pass every permission check.
	Owner bool
}

// Reply is what a command sends back to the invoking user.
type Reply struct {
	Content   string
	Embeds    []*discordgo.MessageEmbed
	Ephemeral bool
}

func embedReply(e *discordgo.MessageEmbed) *Reply {
	return &Reply{Embeds: []*discordgo.MessageEmbed{e}}
}

// UserError is an expected failure shown to the user as a localized message.
type UserError struct {
	Key    string
	Params i18n.Params
	Err    error
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Key, e.Err)
	}
	return e.Key
}

func (e *UserError) Unwrap() error { return e.Err }

func userErr(key string, params i18n.Params, err error) *UserError {
	return &UserError{Key: key, Params: params, Err: err}
}

// Deps carries everything the commands need.
type Deps struct {
	Platform  moderation.Platform
	Store     *database.Store
	Locks     *moderation.LockManager
	ModLog    *moderation.ModLog
	Warnings  *moderation.WarningService
	Notes     *moderation.Notes
	Tr        *i18n.Translator
	Reminders *delivery.Engine[model.Reminder]
	Schedules *delivery.Engine[model.Schedule]
	Config    *model.Config
	BotID     func() string
	Latency   func() time.Duration
	Now       func() time.Time
	// Rand returns a value in [0, n); nil uses math/rand.
	Rand func(n int) int
}

func (d *Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d *Deps) randN(n int) int {
	if d.Rand != nil {
		return d.Rand(n)
	}
	return rand.Intn(n)
}

func (d *Deps) botID() string {
	if d.BotID != nil {
		return d.BotID()
	}
	return ""
}

func (d *Deps) t(c Caller, key string, params i18n.Params) string {
	return d.Tr.Translate(c.Lang, key, params)
}

func (d *Deps) color() int {
	return d.Notes.Color()
}

func (d *Deps) emoji(name string) string {
	if e := d.Config.Emoji(name); e != "" {
		return e + " "
	}
	return ""
}

// requirePermissions fails with a localized list of what the caller lacks.
func requirePermissions(c Caller, required int64) error {
	if c.Owner {
		return nil
	}
	missing := utils.MissingPermissions(c.Permissions, required)
	if len(missing) == 0 {
		return nil
	}
	return userErr("errors.missing_permissions", i18n.Params{"missing": strings.Join(missing, ", ")}, nil)
}

var errorKeys = []struct {
	err error
	key string
}{
	{utils.ErrUnparseableTime, "errors.invalid_time_format"},
	{utils.ErrDeadlineNotInFuture, "errors.time_not_in_future"},
	{moderation.ErrAlreadyLocked, "moderation.already_locked"},
	{moderation.ErrNothingToLock, "moderation.nothing_to_lock"},
	{moderation.ErrEmptyReason, "moderation.reason_required"},
	{moderation.ErrCannotWarnSelf, "moderation.cannot_warn_self"},
	{moderation.ErrCannotWarnBot, "moderation.cannot_warn_bot"},
	{moderation.ErrCannotWarnOwner, "moderation.cannot_warn_owner"},
	{moderation.ErrTargetOutranks, "moderation.cannot_warn_higher"},
	{moderation.ErrBotOutranked, "moderation.bot_cannot_warn_higher"},
	{moderation.ErrNoLogChannel, "moderation.no_logs_channel"},
	{database.ErrNotFound, "errors.not_found"},
	{moderation.ErrPlatform, "errors.external_action_failed"},
}

// Localize turns an error returned by a command into the message shown to the
// user. Unexpected errors get a generic message; the caller logs them.
func (d *Deps) Localize(lang string, err error) (msg string, expected bool) {
	var ue *UserError
	if errors.As(err, &ue) {
		return d.Tr.Translate(lang, ue.Key, ue.Params), true
	}
	for _, ek := range errorKeys {
		if errors.Is(err, ek.err) {
			return d.Tr.Translate(lang, ek.key, nil), ek.err != moderation.ErrPlatform
		}
	}
	return d.Tr.Translate(lang, "errors.generic", nil), false
}

// FormatHM renders a duration as "1h 5m", the form used for remaining times.
func FormatHM(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Minute)
	return fmt.Sprintf("%dh %dm", total/60, total%60)
}

func (d *Deps) onOff(c Caller, v bool) string {
	if v {
		return d.t(c, "generic.on", nil)
	}
	return d.t(c, "generic.off", nil)
}
