package migrations

import "strings"

// Full-text index over items, kept in sync by triggers
// The "%MODULE%" placeholder is replaced with the virtual table module
const fullTextSchemaTpl = `
CREATE VIRTUAL TABLE IF NOT EXISTS items_fts USING %MODULE%(
	title, summary, link,
	content='items',
	content_rowid='id'
);

CREATE TRIGGER IF NOT EXISTS items_ai AFTER INSERT ON items BEGIN
	INSERT INTO items_fts (rowid, title, summary, link)
	VALUES (new.id, COALESCE(new.title, ''), COALESCE(new.summary, ''), COALESCE(new.link, ''));
END;

CREATE TRIGGER IF NOT EXISTS items_ad AFTER DELETE ON items BEGIN
	INSERT INTO items_fts (items_fts, rowid, title, summary, link)
	VALUES ('delete', old.id, COALESCE(old.title, ''), COALESCE(old.summary, ''), COALESCE(old.link, ''));
END;

CREATE TRIGGER IF NOT EXISTS items_au AFTER UPDATE ON items BEGIN
	INSERT INTO items_fts (items_fts, rowid, title, summary, link)
	VALUES ('delete', old.id, COALESCE(old.title, ''), COALESCE(old.summary, ''), COALESCE(old.link, ''));
	INSERT INTO items_fts (rowid, title, summary, link)
	VALUES (new.id, COALESCE(new.title, ''), COALESCE(new.summary, ''), COALESCE(new.link, ''));
END;
`

func fullTextSchema(module string) string {
	return strings.ReplaceAll(fullTextSchemaTpl, "%MODULE%", module)
}
