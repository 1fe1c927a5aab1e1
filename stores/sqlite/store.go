package sqlite

import (
	"context"
	"database/sql"
	"log"
	"time"

	"kotochan-birthday/core"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

type sqliteKV struct {
	db *sql.DB
}

// NewKV creates a new SQLite-based store.
func NewKV(dataSourceName string) *sqliteKV {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		log.Fatalf("failed to open sqlite database: %v", err)
	}

	// expires_at is unix seconds; 0 means the key never expires. Expired
	// rows are dropped lazily on read.
	kvTableStmt := `
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		expires_at INTEGER NOT NULL DEFAULT 0
	);`
	if _, err = db.Exec(kvTableStmt); err != nil {
		log.Fatalf("failed to create kv table: %v", err)
	}

	return &sqliteKV{db}
}

func (s *sqliteKV) Get(ctx context.Context, key string) ([]byte, error) {
	var (
		value     []byte
		expiresAt int64
	)
	err := s.db.QueryRowContext(ctx, "SELECT value, expires_at FROM kv WHERE key = ?", key).Scan(&value, &expiresAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, core.ErrKeyNotFound
		}
		logrus.WithFields(logrus.Fields{"key": key, "error": err}).Error("Failed to read key")
		return nil, err
	}

	if expiresAt > 0 && time.Now().Unix() >= expiresAt {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", key); err != nil {
			logrus.WithFields(logrus.Fields{"key": key, "error": err}).Warn("Failed to drop expired key")
		}
		return nil, core.ErrKeyNotFound
	}

	return value, nil
}

func (s *sqliteKV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var expiresAt int64
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl).Unix()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO kv (key, value, expires_at) VALUES (?, ?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at",
		key, value, expiresAt)
	if err != nil {
		logrus.WithFields(logrus.Fields{"key": key, "error": err}).Error("Failed to write key")
	}
	return err
}

func (s *sqliteKV) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", key)
	return err
}
