package sqlstore

import (
	"fmt"

	_ "github.com/lib/pq"
)

var postgresDialect = dialect{
	name:   "postgres",
	driver: "postgres",
	createTable: `CREATE TABLE IF NOT EXISTS design_kv (
		store_key TEXT PRIMARY KEY,
		store_value BYTEA NOT NULL,
		updated_at BIGINT NOT NULL
	)`,
	upsert: `INSERT INTO design_kv (store_key, store_value, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (store_key) DO UPDATE SET store_value = EXCLUDED.store_value, updated_at = EXCLUDED.updated_at`,
	get:    `SELECT store_value FROM design_kv WHERE store_key = $1`,
	remove: `DELETE FROM design_kv WHERE store_key = $1`,
	list:   `SELECT store_key FROM design_kv`,
}

// PostgresDSN builds a lib/pq connection string.
func PostgresDSN(user, password, host string, port int, database, sslMode string) string {
	if port == 0 {
		port = 5432
	}
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, database, sslMode,
	)
}

// OpenPostgres connects to Postgres using a lib/pq DSN or URL.
func OpenPostgres(dsn string) (*sqlStore, error) {
	return open(postgresDialect, dsn)
}
