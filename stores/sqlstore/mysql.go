package sqlstore

import (
	"fmt"

	_ "github.com/go-sql-driver/mysql"
)

var mysqlDialect = dialect{
	name:   "mysql",
	driver: "mysql",
	createTable: `CREATE TABLE IF NOT EXISTS design_kv (
		store_key VARCHAR(512) NOT NULL PRIMARY KEY,
		store_value LONGBLOB NOT NULL,
		updated_at BIGINT NOT NULL
	) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin`,
	upsert: `INSERT INTO design_kv (store_key, store_value, updated_at) VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE store_value = VALUES(store_value), updated_at = VALUES(updated_at)`,
	get:    `SELECT store_value FROM design_kv WHERE store_key = ?`,
	remove: `DELETE FROM design_kv WHERE store_key = ?`,
	list:   `SELECT store_key FROM design_kv`,
}

// MySQLDSN builds a go-sql-driver DSN.
// Format: user:password@tcp(host:port)/dbname?parseTime=true
func MySQLDSN(user, password, host string, port int, database string) string {
	if port == 0 {
		port = 3306
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4",
		user, password, host, port, database,
	)
}

// OpenMySQL connects to MySQL using a go-sql-driver DSN.
func OpenMySQL(dsn string) (*sqlStore, error) {
	return open(mysqlDialect, dsn)
}
