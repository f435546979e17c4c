package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"orion-bot/model"
	"orion-bot/utils"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	ErrMissingToken      = errors.New("BOT_TOKEN is not set")
	ErrUnsupportedDriver = errors.New("unsupported DATABASE_DRIVER")
	ErrMissingDSN        = errors.New("DATABASE_DSN is required for postgres")
)

// Load reads .env and config.toml from the working directory, then applies
// environment overrides.
func Load() (*model.Config, error) {
	return LoadFrom(".")
}

// LoadFrom is Load with an explicit directory for .env and config.toml.
func LoadFrom(dir string) (*model.Config, error) {
	log := utils.Module("config")

	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil {
		log.Info().Msg(".env file not found, relying on environment variables")
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(dir)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config.toml: %w", err)
		}
		log.Debug().Msg("config.toml not found, using defaults")
	}

	cfg := &model.Config{
		BotToken:     v.GetString("bot_token"),
		AppID:        v.GetString("app_id"),
		LogChannelID: v.GetString("log_channel_id"),
		DevGuildID:   v.GetString("dev_guild_id"),

		BotName:    v.GetString("bot.name"),
		EmbedColor: v.GetString("colors.embeds"),
		OwnerIDs:   splitIDs(v.GetStringSlice("owners.ids")),
		Emojis:     v.GetStringMapString("emojis"),

		DatabaseDriver: normalizeDriver(v.GetString("database_driver")),
		DatabaseDSN:    v.GetString("database_dsn"),

		LocalesDir:      v.GetString("locales_dir"),
		DefaultLanguage: strings.ToLower(v.GetString("default_language")),

		SweepInterval:      v.GetDuration("sweep_interval"),
		SweepRecordTimeout: v.GetDuration("sweep_record_timeout"),
		AutoUnlockLog:      v.GetBool("auto_unlock_log"),

		MetricsAddr: v.GetString("metrics_addr"),
		LogLevel:    v.GetString("log_level"),
		LogFormat:   v.GetString("log_format"),
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	if cfg.LogChannelID == "" {
		log.Warn().Msg("LOG_CHANNEL_ID not set, channel logging will be disabled")
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("bot.name", "Orion")
	v.SetDefault("colors.embeds", "#5865F2")
	v.SetDefault("database_driver", "sqlite3")
	v.SetDefault("default_language", "en")
	v.SetDefault("sweep_interval", 30*time.Second)
	v.SetDefault("sweep_record_timeout", 15*time.Second)
	v.SetDefault("auto_unlock_log", true)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
}

func validate(cfg *model.Config) error {
	if cfg.BotToken == "" {
		return ErrMissingToken
	}
	switch cfg.DatabaseDriver {
	case "sqlite3":
		if cfg.DatabaseDSN == "" {
			cfg.DatabaseDSN = "data/orion.db"
		}
	case "postgres":
		if cfg.DatabaseDSN == "" {
			return ErrMissingDSN
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedDriver, cfg.DatabaseDriver)
	}
	if cfg.SweepInterval < 0 || cfg.SweepRecordTimeout < 0 {
		return errors.New("sweep durations must not be negative")
	}
	if cfg.SweepRecordTimeout == 0 {
		cfg.SweepRecordTimeout = 15 * time.Second
	}
	return nil
}

func normalizeDriver(driver string) string {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "sqlite", "sqlite3":
		return "sqlite3"
	case "postgres", "postgresql", "pg":
		return "postgres"
	default:
		return driver
	}
}

// splitIDs accepts both TOML arrays and comma separated env values.
func splitIDs(raw []string) []string {
	var ids []string
	for _, item := range raw {
		for _, id := range strings.Split(item, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids
}
