package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads; viper ignores empty values.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"BOT_TOKEN", "APP_ID", "LOG_CHANNEL_ID", "DEV_GUILD_ID",
		"BOT_NAME", "COLORS_EMBEDS", "OWNERS_IDS",
		"DATABASE_DRIVER", "DATABASE_DSN", "LOCALES_DIR", "DEFAULT_LANGUAGE",
		"SWEEP_INTERVAL", "SWEEP_RECORD_TIMEOUT", "AUTO_UNLOCK_LOG",
		"METRICS_ADDR", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("BOT_TOKEN", "token")

	cfg, err := LoadFrom(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "token", cfg.BotToken)
	assert.Equal(t, "Orion", cfg.BotName)
	assert.Equal(t, "sqlite3", cfg.DatabaseDriver)
	assert.Equal(t, "data/orion.db", cfg.DatabaseDSN)
	assert.Equal(t, "en", cfg.DefaultLanguage)
	assert.Equal(t, 30*time.Second, cfg.SweepInterval)
	assert.Equal(t, 15*time.Second, cfg.SweepRecordTimeout)
	assert.True(t, cfg.AutoUnlockLog)
	assert.Empty(t, cfg.OwnerIDs)
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	toml := `
[bot]
name = "Nova"

[colors]
embeds = "#ff0000"

[owners]
ids = ["1", "2"]

[emojis]
lock = "L"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(toml), 0o644))

	t.Setenv("BOT_TOKEN", "token")
	t.Setenv("DATABASE_DRIVER", "postgresql")
	t.Setenv("DATABASE_DSN", "postgres://localhost/orion")
	t.Setenv("SWEEP_INTERVAL", "10s")
	t.Setenv("AUTO_UNLOCK_LOG", "false")
	t.Setenv("DEFAULT_LANGUAGE", "ES")

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, "Nova", cfg.BotName)
	assert.Equal(t, "#ff0000", cfg.EmbedColor)
	assert.Equal(t, []string{"1", "2"}, cfg.OwnerIDs)
	assert.Equal(t, "L", cfg.Emoji("lock"))
	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.Equal(t, 10*time.Second, cfg.SweepInterval)
	assert.False(t, cfg.AutoUnlockLog)
	assert.Equal(t, "es", cfg.DefaultLanguage)
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	require.NoError(t, os.Unsetenv("BOT_TOKEN"))
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("BOT_TOKEN=from-dotenv\n"), 0o644))

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.BotToken)
}

func TestLoadValidation(t *testing.T) {
	t.Run("missing token", func(t *testing.T) {
		clearEnv(t)
		_, err := LoadFrom(t.TempDir())
		assert.ErrorIs(t, err, ErrMissingToken)
	})

	t.Run("unknown driver", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("BOT_TOKEN", "token")
		t.Setenv("DATABASE_DRIVER", "mysql")
		_, err := LoadFrom(t.TempDir())
		assert.ErrorIs(t, err, ErrUnsupportedDriver)
	})

	t.Run("postgres without dsn", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("BOT_TOKEN", "token")
		t.Setenv("DATABASE_DRIVER", "postgres")
		_, err := LoadFrom(t.TempDir())
		assert.ErrorIs(t, err, ErrMissingDSN)
	})
}

func TestSplitIDs(t *testing.T) {
	assert.Equal(t, []string{"1", "2", "3"}, splitIDs([]string{"1, 2", "", "3"}))
	assert.Nil(t, splitIDs(nil))
}
