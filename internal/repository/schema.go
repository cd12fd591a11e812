package repository

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id               UUID PRIMARY KEY,
		provider         TEXT NOT NULL,
		provider_user_id TEXT NOT NULL,
		email            TEXT NOT NULL,
		display_name     TEXT NOT NULL DEFAULT '',
		avatar_url       TEXT,
		created_at       TIMESTAMPTZ NOT NULL,
		last_login_at    TIMESTAMPTZ NOT NULL,
		updated_at       TIMESTAMPTZ NOT NULL,
		UNIQUE (provider, provider_user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS login_events (
		id             UUID PRIMARY KEY,
		user_reference TEXT NOT NULL,
		provider       TEXT NOT NULL,
		success        BOOLEAN NOT NULL,
		ip_address     TEXT NOT NULL DEFAULT '',
		user_agent     TEXT NOT NULL DEFAULT '',
		occurred_at    TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_login_events_user_time
		ON login_events (provider, user_reference, occurred_at DESC)`,
}

// The sqlite driver only parses columns declared TIMESTAMP/DATETIME/DATE back into time.Time.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id               TEXT PRIMARY KEY,
		provider         TEXT NOT NULL,
		provider_user_id TEXT NOT NULL,
		email            TEXT NOT NULL,
		display_name     TEXT NOT NULL DEFAULT '',
		avatar_url       TEXT,
		created_at       TIMESTAMP NOT NULL,
		last_login_at    TIMESTAMP NOT NULL,
		updated_at       TIMESTAMP NOT NULL,
		UNIQUE (provider, provider_user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS login_events (
		id             TEXT PRIMARY KEY,
		user_reference TEXT NOT NULL,
		provider       TEXT NOT NULL,
		success        BOOLEAN NOT NULL,
		ip_address     TEXT NOT NULL DEFAULT '',
		user_agent     TEXT NOT NULL DEFAULT '',
		occurred_at    TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_login_events_user_time
		ON login_events (provider, user_reference, occurred_at DESC)`,
}
