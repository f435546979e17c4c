package moderation

import (
	"context"
	"errors"
	"strings"
	"time"

	"orion-bot/model"
	"orion-bot/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

var (
	ErrEmptyReason     = errors.New("warning reason is empty")
	ErrCannotWarnSelf  = errors.New("cannot warn yourself")
	ErrCannotWarnBot   = errors.New("cannot warn a bot")
	ErrCannotWarnOwner = errors.New("cannot warn the server owner")
	ErrTargetOutranks  = errors.New("target's top role is not below the moderator's")
	ErrBotOutranked    = errors.New("target's top role is not below the bot's")
)

// WarningStore is the persistence the warning service needs.
type WarningStore interface {
	Add(ctx context.Context, w *model.Warning) error
	ByUser(ctx context.Context, guildID, userID string) ([]model.Warning, error)
	ByCase(ctx context.Context, guildID string, caseID int64) (*model.Warning, error)
	DeleteCase(ctx context.Context, guildID string, caseID int64) (*model.Warning, error)
	ClearUser(ctx context.Context, guildID, userID string) (int64, error)
	UpdateReason(ctx context.Context, guildID string, caseID int64, reason string) (*model.Warning, error)
	CountUser(ctx context.Context, guildID, userID string) (int64, error)
}

type WarnRequest struct {
	GuildID     string
	ModeratorID string
	TargetID    string
	BotID       string
	Reason      string
	Attachment  *model.Attachment
}

type WarnResult struct {
	Warning *model.Warning
	Total   int64
}

// WarningService issues and manages member warnings.
type WarningService struct {
	platform Platform
	store    WarningStore
	now      func() time.Time
	log      zerolog.Logger
}

func NewWarningService(platform Platform, store WarningStore) *WarningService {
	return &WarningService{platform: platform, store: store, now: time.Now, log: utils.Module("warnings")}
}

// CheckTarget enforces who may be warned: not yourself, not a bot, not the
// owner, and only members ranked below both the moderator (unless the
// moderator owns the guild) and the bot.
func (s *WarningService) CheckTarget(ctx context.Context, guildID, moderatorID, targetID, botID string) error {
	if moderatorID == targetID {
		return ErrCannotWarnSelf
	}
	target, err := s.platform.GuildMember(guildID, targetID, discordgo.WithContext(ctx))
	if err != nil {
		return platformErr("fetch member", err)
	}
	if target.User != nil && target.User.Bot {
		return ErrCannotWarnBot
	}
	guild, err := s.platform.Guild(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return platformErr("fetch guild", err)
	}
	if guild.OwnerID == targetID {
		return ErrCannotWarnOwner
	}

	roles, err := s.platform.GuildRoles(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return platformErr("fetch roles", err)
	}
	if guild.OwnerID != moderatorID {
		moderator, err := s.platform.GuildMember(guildID, moderatorID, discordgo.WithContext(ctx))
		if err != nil {
			return platformErr("fetch moderator", err)
		}
		if !memberOutranks(guildID, moderator, target, roles) {
			return ErrTargetOutranks
		}
	}
	if botID != "" {
		bot, err := s.platform.GuildMember(guildID, botID, discordgo.WithContext(ctx))
		if err != nil {
			return platformErr("fetch bot member", err)
		}
		if !memberOutranks(guildID, bot, target, roles) {
			return ErrBotOutranked
		}
	}
	return nil
}

// Warn validates the target, assigns a case id and stores the warning.
func (s *WarningService) Warn(ctx context.Context, req WarnRequest) (*WarnResult, error) {
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, ErrEmptyReason
	}
	if err := s.CheckTarget(ctx, req.GuildID, req.ModeratorID, req.TargetID, req.BotID); err != nil {
		return nil, err
	}

	w := &model.Warning{
		GuildID:     req.GuildID,
		UserID:      req.TargetID,
		ModeratorID: req.ModeratorID,
		Reason:      reason,
		CreatedAt:   model.NewUnixTime(s.now()),
		Attachment:  req.Attachment,
	}
	if err := s.store.Add(ctx, w); err != nil {
		return nil, err
	}
	total, err := s.store.CountUser(ctx, req.GuildID, req.TargetID)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("guild", req.GuildID).Str("user", req.TargetID).Int64("case", w.CaseID).Msg("Warning issued")
	return &WarnResult{Warning: w, Total: total}, nil
}

// NotifyMember DMs the warned member. Closed DMs are common and only logged.
func (s *WarningService) NotifyMember(userID string, embed *discordgo.MessageEmbed) bool {
	if err := utils.SendPrivateEmbedMessage(s.platform, userID, embed); err != nil {
		s.log.Debug().Err(err).Str("user", userID).Msg("Could not DM warned member")
		return false
	}
	return true
}

func (s *WarningService) List(ctx context.Context, guildID, userID string) ([]model.Warning, error) {
	return s.store.ByUser(ctx, guildID, userID)
}

func (s *WarningService) Case(ctx context.Context, guildID string, caseID int64) (*model.Warning, error) {
	return s.store.ByCase(ctx, guildID, caseID)
}

func (s *WarningService) Remove(ctx context.Context, guildID string, caseID int64) (*model.Warning, error) {
	return s.store.DeleteCase(ctx, guildID, caseID)
}

func (s *WarningService) Clear(ctx context.Context, guildID, userID string) (int64, error) {
	return s.store.ClearUser(ctx, guildID, userID)
}

func (s *WarningService) Edit(ctx context.Context, guildID string, caseID int64, reason string) (*model.Warning, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrEmptyReason
	}
	return s.store.UpdateReason(ctx, guildID, caseID, reason)
}
