package migrations

// V1Schema contains the base tables and indexes
const V1Schema = `
CREATE TABLE IF NOT EXISTS feeds (
	id integer primary key autoincrement,
	name text not null,
	url text not null unique,
	created_at text not null
);

CREATE TABLE IF NOT EXISTS runs (
	id integer primary key autoincrement,
	started_at text not null,
	finished_at text,
	feeds_ok integer not null default 0,
	feeds_failed integer not null default 0,
	items_seen integer not null default 0,
	items_upserted integer not null default 0,
	error text
);

CREATE TABLE IF NOT EXISTS items (
	id integer primary key autoincrement,
	feed_id integer not null,
	title text,
	link text not null unique,
	published text,
	summary text,
	fetched_at text not null,
	FOREIGN KEY (feed_id) REFERENCES feeds (id)
);

CREATE INDEX IF NOT EXISTS idx_items_feed_id ON items (feed_id);
CREATE INDEX IF NOT EXISTS idx_items_published ON items (published);
`
