// ABOUTME: Database schema definitions and migrations
// ABOUTME: Handles SQLite table creation and initialization
package db

import (
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS contacts (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT,
	phone TEXT,
	company TEXT,
	category TEXT NOT NULL DEFAULT 'professional' CHECK(category IN ('personal', 'professional', 'client', 'vendor')),
	birthday DATETIME,
	work_anniversary DATETIME,
	notes TEXT,
	welcome_posted INTEGER NOT NULL DEFAULT 0,
	last_contacted_at DATETIME,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_contacts_email ON contacts(email);
CREATE INDEX IF NOT EXISTS idx_contacts_category ON contacts(category);

CREATE TABLE IF NOT EXISTS contact_cadence (
	contact_id TEXT PRIMARY KEY,
	cadence_days INTEGER NOT NULL DEFAULT 30,
	relationship_strength TEXT NOT NULL DEFAULT 'medium' CHECK(relationship_strength IN ('weak', 'medium', 'strong')),
	priority_score REAL NOT NULL DEFAULT 0,
	last_interaction_date DATETIME,
	next_followup_date DATETIME,
	FOREIGN KEY (contact_id) REFERENCES contacts(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_contact_cadence_priority ON contact_cadence(priority_score DESC);

CREATE TABLE IF NOT EXISTS interactions (
	id TEXT PRIMARY KEY,
	contact_id TEXT NOT NULL,
	type TEXT NOT NULL CHECK(type IN ('call', 'email', 'meeting', 'other')),
	notes TEXT,
	sentiment TEXT CHECK(sentiment IN ('positive', 'neutral', 'negative')),
	timestamp DATETIME NOT NULL,
	FOREIGN KEY (contact_id) REFERENCES contacts(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_interactions_contact ON interactions(contact_id);
CREATE INDEX IF NOT EXISTS idx_interactions_timestamp ON interactions(timestamp DESC);

CREATE TABLE IF NOT EXISTS posts (
	id TEXT PRIMARY KEY,
	content TEXT NOT NULL,
	platforms TEXT NOT NULL,
	ai_generated INTEGER NOT NULL DEFAULT 0,
	source TEXT NOT NULL CHECK(source IN ('composer', 'automation', 'responder')),
	rule_name TEXT,
	status TEXT NOT NULL CHECK(status IN ('draft', 'scheduled', 'published', 'partial', 'failed')),
	scheduled_at DATETIME,
	created_at DATETIME NOT NULL,
	published_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_posts_status ON posts(status);

CREATE TABLE IF NOT EXISTS post_results (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	post_id TEXT NOT NULL,
	platform TEXT NOT NULL,
	success INTEGER NOT NULL,
	remote_id TEXT,
	url TEXT,
	error TEXT,
	error_kind TEXT,
	attempts INTEGER NOT NULL DEFAULT 0,
	fallback_logged INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	FOREIGN KEY (post_id) REFERENCES posts(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_post_results_post ON post_results(post_id);

CREATE TABLE IF NOT EXISTS platform_credentials (
	platform TEXT PRIMARY KEY CHECK(platform IN ('twitter', 'linkedin', 'facebook', 'instagram')),
	access_token TEXT NOT NULL,
	account_id TEXT,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS fallback_log (
	id TEXT PRIMARY KEY,
	post_id TEXT,
	platform TEXT NOT NULL,
	content TEXT NOT NULL,
	error TEXT NOT NULL,
	error_kind TEXT NOT NULL,
	recipient TEXT,
	notified INTEGER NOT NULL DEFAULT 0,
	notify_error TEXT,
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_fallback_log_created ON fallback_log(created_at DESC);

CREATE TABLE IF NOT EXISTS automation_log (
	id TEXT PRIMARY KEY,
	rule_name TEXT NOT NULL,
	contact_id TEXT NOT NULL DEFAULT '',
	dedup_key TEXT NOT NULL,
	post_id TEXT,
	fired_at DATETIME NOT NULL,
	UNIQUE(rule_name, contact_id, dedup_key)
);

CREATE TABLE IF NOT EXISTS responses (
	id TEXT PRIMARY KEY,
	mention_id TEXT NOT NULL,
	platform TEXT NOT NULL,
	author TEXT,
	keyword TEXT NOT NULL,
	category TEXT NOT NULL,
	text TEXT NOT NULL,
	status TEXT NOT NULL CHECK(status IN ('pending', 'sent', 'rejected', 'failed')),
	error TEXT,
	created_at DATETIME NOT NULL,
	decided_at DATETIME,
	UNIQUE(platform, mention_id)
);

CREATE INDEX IF NOT EXISTS idx_responses_status ON responses(status);

CREATE TABLE IF NOT EXISTS processed_mentions (
	platform TEXT NOT NULL,
	mention_id TEXT NOT NULL,
	processed_at DATETIME NOT NULL,
	PRIMARY KEY (platform, mention_id)
);

CREATE TABLE IF NOT EXISTS sync_state (
	service TEXT PRIMARY KEY,
	last_sync_time DATETIME,
	last_sync_token TEXT,
	status TEXT CHECK(status IN ('idle', 'syncing', 'error')),
	error_message TEXT,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS sync_log (
	id TEXT PRIMARY KEY,
	source_service TEXT NOT NULL,
	source_id TEXT NOT NULL,
	entity_type TEXT NOT NULL,
	entity_id TEXT NOT NULL,
	imported_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	metadata TEXT,
	UNIQUE(source_service, source_id)
);

CREATE INDEX IF NOT EXISTS idx_sync_log_source ON sync_log(source_service, source_id);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
