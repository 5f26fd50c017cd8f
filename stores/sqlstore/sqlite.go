package sqlstore

import (
	"strings"

	_ "modernc.org/sqlite"
)

var sqliteDialect = dialect{
	name:   "sqlite",
	driver: "sqlite",
	createTable: `CREATE TABLE IF NOT EXISTS design_kv (
		store_key TEXT PRIMARY KEY,
		store_value BLOB NOT NULL,
		updated_at INTEGER NOT NULL
	);`,
	upsert: `INSERT INTO design_kv (store_key, store_value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(store_key) DO UPDATE SET store_value = excluded.store_value, updated_at = excluded.updated_at`,
	get:    `SELECT store_value FROM design_kv WHERE store_key = ?`,
	remove: `DELETE FROM design_kv WHERE store_key = ?`,
	list:   `SELECT store_key FROM design_kv`,
}

// OpenSQLite opens (creating if needed) a SQLite database file.
func OpenSQLite(dataSourceName string) (*sqlStore, error) {
	dsn := dataSourceName
	if !strings.Contains(dsn, "?") {
		dsn += "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}
	s, err := open(sqliteDialect, dsn)
	if err != nil {
		return nil, err
	}
	// a single writer avoids SQLITE_BUSY under concurrent saves
	s.db.SetMaxOpenConns(1)
	return s, nil
}
