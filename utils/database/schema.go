package database

// schema is applied in order on startup. {{id}} expands to the driver's
// auto-increment primary key. Timestamps are unix milliseconds.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS channel_locks (
		id {{id}},
		guild_id TEXT NOT NULL,
		channel_id TEXT NOT NULL,
		moderator_id TEXT NOT NULL,
		action TEXT NOT NULL,
		reason TEXT NOT NULL DEFAULT '',
		previous_overwrites TEXT NOT NULL DEFAULT '[]',
		created_at BIGINT NOT NULL,
		expires_at BIGINT,
		active BOOLEAN NOT NULL DEFAULT FALSE,
		released_at BIGINT,
		auto_released BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	// One active lock per channel.
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_channel_locks_active
		ON channel_locks (guild_id, channel_id) WHERE active = TRUE`,
	`CREATE INDEX IF NOT EXISTS idx_channel_locks_expiry
		ON channel_locks (expires_at) WHERE active = TRUE`,

	`CREATE TABLE IF NOT EXISTS reminders (
		id {{id}},
		user_id TEXT NOT NULL,
		channel_id TEXT NOT NULL,
		message TEXT NOT NULL,
		remind_at BIGINT NOT NULL,
		created_at BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reminders_due ON reminders (remind_at)`,

	`CREATE TABLE IF NOT EXISTS schedules (
		id {{id}},
		user_id TEXT NOT NULL,
		channel_id TEXT NOT NULL,
		title TEXT NOT NULL,
		scheduled_at BIGINT NOT NULL,
		created_at BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_schedules_due ON schedules (scheduled_at)`,

	`CREATE TABLE IF NOT EXISTS warnings (
		id {{id}},
		guild_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		moderator_id TEXT NOT NULL,
		reason TEXT NOT NULL,
		created_at BIGINT NOT NULL,
		case_id BIGINT NOT NULL,
		attachment TEXT
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_warnings_case ON warnings (guild_id, case_id)`,
	`CREATE INDEX IF NOT EXISTS idx_warnings_user ON warnings (guild_id, user_id)`,
	`CREATE TABLE IF NOT EXISTS warning_counters (
		guild_id TEXT NOT NULL PRIMARY KEY,
		seq BIGINT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS moderation_settings (
		guild_id TEXT NOT NULL PRIMARY KEY,
		logs_channel_id TEXT NOT NULL DEFAULT '',
		log_warnings BOOLEAN NOT NULL DEFAULT TRUE,
		log_locks BOOLEAN NOT NULL DEFAULT TRUE,
		log_slowmode BOOLEAN NOT NULL DEFAULT TRUE,
		notify_dm BOOLEAN NOT NULL DEFAULT TRUE
	)`,

	`CREATE TABLE IF NOT EXISTS afk (
		user_id TEXT NOT NULL PRIMARY KEY,
		message TEXT NOT NULL,
		set_at BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS reputation (
		user_id TEXT NOT NULL PRIMARY KEY,
		points BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS rep_cooldowns (
		user_id TEXT NOT NULL PRIMARY KEY,
		last_given_at BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS user_language_preferences (
		user_id TEXT NOT NULL PRIMARY KEY,
		language TEXT NOT NULL
	)`,
}
