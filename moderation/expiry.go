package moderation

import (
	"context"
	"errors"

	"orion-bot/model"
	"orion-bot/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

// LockExpiry resolves expired locks for the sweeper: it releases the lock
// through the lock manager, posts a note into the reopened channel and,
// when enabled, records the release in the guild's moderation log.
type LockExpiry struct {
	locks   *LockManager
	modlog  *ModLog
	notes   *Notes
	sender  utils.EmbedSender
	lang    func() string
	logAuto bool
	log     zerolog.Logger
}

// NewLockExpiry wires the expiry resolver. logAuto controls whether automatic
// releases are also written to the moderation log (still gated by the
// guild's log_locks toggle).
func NewLockExpiry(locks *LockManager, modlog *ModLog, notes *Notes, sender utils.EmbedSender, lang func() string, logAuto bool) *LockExpiry {
	return &LockExpiry{
		locks:   locks,
		modlog:  modlog,
		notes:   notes,
		sender:  sender,
		lang:    lang,
		logAuto: logAuto,
		log:     utils.Module("lock_expiry"),
	}
}

// Resolve releases one expired lock. A lock that was already released
// elsewhere is not an error.
func (e *LockExpiry) Resolve(ctx context.Context, rec model.LockRecord) error {
	res, err := e.locks.ReleaseExpired(ctx, rec)
	if errors.Is(err, ErrLockNotActive) {
		e.log.Debug().Int64("record", rec.ID).Msg("Lock already released")
		return nil
	}
	if err != nil {
		return err
	}

	lang := e.lang()
	if _, err := e.sender.ChannelMessageSendEmbed(rec.ChannelID, e.notes.UnlockedNote(lang, true), discordgo.WithContext(ctx)); err != nil {
		e.log.Warn().Err(err).Str("channel", rec.ChannelID).Msg("Failed to post auto-unlock note")
	}
	if e.logAuto {
		entry := e.notes.Unlocked(lang, rec.ChannelID, e.notes.tr.Translate(lang, "moderation.auto_unlocked_note", nil), "")
		e.modlog.Post(ctx, rec.GuildID, LogLocks, entry)
	}
	if len(res.Failed) > 0 {
		e.log.Warn().Str("channel", rec.ChannelID).Str("roles", Failures(res.Failed)).Msg("Auto-unlock left some roles unrestored")
	}
	return nil
}
