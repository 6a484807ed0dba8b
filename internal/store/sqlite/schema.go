package sqlite

// Timestamps are stored as unix seconds.
const ddl = `
CREATE TABLE IF NOT EXISTS users (
	id         TEXT PRIMARY KEY,
	email      TEXT NOT NULL UNIQUE,
	name       TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL DEFAULT (unixepoch())
);

CREATE TABLE IF NOT EXISTS sessions (
	token_hash TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	expires_at INTEGER NOT NULL,
	created_at INTEGER NOT NULL DEFAULT (unixepoch())
);
CREATE INDEX IF NOT EXISTS sessions_expires_at_idx ON sessions (expires_at);

CREATE TABLE IF NOT EXISTS merchants (
	id   TEXT PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS merchant_memberships (
	user_id     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	merchant_id TEXT NOT NULL REFERENCES merchants(id) ON DELETE CASCADE,
	role        TEXT NOT NULL DEFAULT 'staff',
	status      TEXT NOT NULL DEFAULT 'active',
	PRIMARY KEY (user_id, merchant_id)
);

CREATE TABLE IF NOT EXISTS locations (
	id          TEXT PRIMARY KEY,
	merchant_id TEXT NOT NULL REFERENCES merchants(id) ON DELETE CASCADE,
	name        TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS allergens (
	id          TEXT PRIMARY KEY,
	location_id TEXT NOT NULL REFERENCES locations(id) ON DELETE CASCADE,
	name        TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS menu_items (
	id          TEXT PRIMARY KEY,
	location_id TEXT NOT NULL REFERENCES locations(id) ON DELETE CASCADE,
	name        TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS menu_item_allergens (
	menu_item_id TEXT NOT NULL REFERENCES menu_items(id) ON DELETE CASCADE,
	allergen_id  TEXT NOT NULL REFERENCES allergens(id) ON DELETE CASCADE,
	PRIMARY KEY (menu_item_id, allergen_id)
);

CREATE TABLE IF NOT EXISTS audit_log (
	id          TEXT PRIMARY KEY,
	action      TEXT NOT NULL,
	severity    TEXT NOT NULL,
	user_id     TEXT NOT NULL DEFAULT '',
	entity_type TEXT NOT NULL DEFAULT '',
	entity_id   TEXT NOT NULL DEFAULT '',
	ip_address  TEXT NOT NULL DEFAULT '',
	user_agent  TEXT NOT NULL DEFAULT '',
	reason      TEXT NOT NULL DEFAULT '',
	created_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS audit_log_created_at_idx ON audit_log (created_at DESC);
CREATE INDEX IF NOT EXISTS audit_log_user_created_at_idx ON audit_log (user_id, created_at DESC);
`
