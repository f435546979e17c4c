package model

import "time"

// Config 存储应用程序的配置
type Config struct {
	BotToken     string
	AppID        string
	LogChannelID string
	DevGuildID   string

	BotName    string
	EmbedColor string
	OwnerIDs   []string
	Emojis     map[string]string

	DatabaseDriver string
	DatabaseDSN    string

	LocalesDir      string
	DefaultLanguage string

	SweepInterval      time.Duration
	SweepRecordTimeout time.Duration
	AutoUnlockLog      bool

	MetricsAddr string
	LogLevel    string
	LogFormat   string
}

// Emoji returns the configured emoji for name, or an empty string.
func (c *Config) Emoji(name string) string {
	if c == nil || c.Emojis == nil {
		return ""
	}
	return c.Emojis[name]
}
