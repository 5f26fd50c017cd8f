// Package sqlstore keeps key-value pairs in a single SQL table. SQLite, MySQL
// and Postgres share the implementation and differ only in their dialect.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"canva-clone/core"

	"github.com/sirupsen/logrus"
)

const tableName = "design_kv"

type dialect struct {
	name        string
	driver      string
	createTable string
	// upsert takes key, value and updated_at, in that order.
	upsert string
	get    string
	remove string
	list   string
}

type sqlStore struct {
	db *sql.DB
	d  dialect
}

func open(d dialect, dsn string) (*sqlStore, error) {
	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.name, err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(10 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := db.ExecContext(ctx, d.createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create %s table: %w", tableName, err)
	}
	logrus.WithFields(logrus.Fields{"dialect": d.name, "table": tableName}).Debug("SQL store ready")
	return &sqlStore{db: db, d: d}, nil
}

func (s *sqlStore) Get(ctx context.Context, key string) ([]byte, error) {
	log := logrus.WithFields(logrus.Fields{"key": key, "dialect": s.d.name})

	var value []byte
	err := s.db.QueryRowContext(ctx, s.d.get, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("Key not found")
			return nil, core.ErrNotFound
		}
		log.WithError(err).Error("Failed to read value")
		return nil, err
	}
	if value == nil {
		value = []byte{}
	}
	return value, nil
}

func (s *sqlStore) Set(ctx context.Context, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	_, err := s.db.ExecContext(ctx, s.d.upsert, key, value, time.Now().UnixMilli())
	if err != nil {
		logrus.WithFields(logrus.Fields{"key": key, "dialect": s.d.name}).WithError(err).Error("Failed to write value")
		return err
	}
	return nil
}

func (s *sqlStore) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, s.d.remove, key); err != nil {
		logrus.WithFields(logrus.Fields{"key": key, "dialect": s.d.name}).WithError(err).Error("Failed to remove value")
		return err
	}
	return nil
}

// List filters in Go so the result does not depend on the database's
// collation or LIKE escaping rules.
func (s *sqlStore) List(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, s.d.list)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *sqlStore) Close() error {
	return s.db.Close()
}
