package bot

import (
	"fmt"
	"sync/atomic"

	"orion-bot/commands"
	"orion-bot/i18n"
	"orion-bot/model"
	"orion-bot/moderation"
	"orion-bot/tasks"
	"orion-bot/tasks/delivery"
	"orion-bot/utils"
	"orion-bot/utils/database"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

type Bot struct {
	Session            *discordgo.Session
	Store              *database.Store
	Deps               *commands.Deps
	RegisteredCommands []*discordgo.ApplicationCommand
	CommandHandlers    map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate)
	config             atomic.Value // *model.Config
	botID              atomic.Value // string
	scheduler          *Scheduler
	log                zerolog.Logger
}

func (b *Bot) GetConfig() *model.Config {
	return b.config.Load().(*model.Config)
}

func (b *Bot) GetSession() *discordgo.Session {
	return b.Session
}

// SetBotID records the bot user's id once the gateway reports it.
func (b *Bot) SetBotID(id string) {
	b.botID.Store(id)
}

func (b *Bot) BotID() string {
	id, _ := b.botID.Load().(string)
	return id
}

// New builds the session and every service the commands and sweepers share.
// The store is owned by the bot from here on and closed by Close.
func New(cfg *model.Config, store *database.Store) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, err
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentMessageContent
	dg.StateEnabled = false

	tr, err := i18n.New(cfg.DefaultLanguage, store.Members())
	if err != nil {
		return nil, fmt.Errorf("failed to load translations: %w", err)
	}
	if cfg.LocalesDir != "" {
		if err := tr.LoadDir(cfg.LocalesDir); err != nil {
			return nil, fmt.Errorf("failed to load translations from %s: %w", cfg.LocalesDir, err)
		}
	}

	b := &Bot{
		Session: dg,
		Store:   store,
		log:     utils.Module("bot"),
	}
	b.config.Store(cfg)

	color := utils.ParseHexColor(cfg.EmbedColor)
	notes := moderation.NewNotes(tr, color)
	locks := moderation.NewLockManager(dg, store.Locks(), b.BotID)
	modlog := moderation.NewModLog(dg, store.Settings())
	announcer := tasks.NewAnnouncer(dg, tr, color)

	reminders := delivery.New[model.Reminder]("reminder", store.Reminders(), announcer.Reminder, cfg.SweepRecordTimeout)
	schedules := delivery.New[model.Schedule]("schedule", store.Schedules(), announcer.Schedule, cfg.SweepRecordTimeout)

	b.Deps = &commands.Deps{
		Platform:  dg,
		Store:     store,
		Locks:     locks,
		ModLog:    modlog,
		Warnings:  moderation.NewWarningService(dg, store.Warnings()),
		Notes:     notes,
		Tr:        tr,
		Reminders: reminders,
		Schedules: schedules,
		Config:    cfg,
		BotID:     b.BotID,
		Latency:   dg.HeartbeatLatency,
	}

	expiry := moderation.NewLockExpiry(locks, modlog, notes, dg, tr.DefaultLanguage, cfg.AutoUnlockLog)
	b.scheduler = NewScheduler(b, store.Locks(), expiry, reminders, schedules)
	return b, nil
}

// RefreshCommands overwrites the registered slash commands. With a dev guild
// configured the commands are registered there only, otherwise globally.
func (b *Bot) RefreshCommands() {
	cfg := b.GetConfig()
	appID := cfg.AppID
	if appID == "" {
		appID = b.BotID()
	}

	cmds := commands.GenerateCommands()
	b.log.Info().Int("count", len(cmds)).Str("guild", cfg.DevGuildID).Msg("Registering commands")
	registered, err := b.Session.ApplicationCommandBulkOverwrite(appID, cfg.DevGuildID, cmds)
	if err != nil {
		b.log.Error().Err(err).Msg("Cannot register commands")
		return
	}
	b.RegisteredCommands = registered
}

// Close stops background work, then the gateway, then the store.
func (b *Bot) Close() {
	b.log.Info().Msg("Gracefully shutting down.")
	b.scheduler.Stop()
	if err := b.Session.Close(); err != nil {
		b.log.Warn().Err(err).Msg("Error closing session")
	}
	if err := b.Store.Close(); err != nil {
		b.log.Warn().Err(err).Msg("Error closing database")
	}
}
