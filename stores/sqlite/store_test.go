package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"kotochan-birthday/core"
)

func setupTestKV(t *testing.T) *sqliteKV {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	return NewKV(dbPath)
}

func TestNewKV_TableCreated(t *testing.T) {
	kv := setupTestKV(t)

	var tableName string
	err := kv.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='kv'").Scan(&tableName)
	if err != nil {
		t.Fatalf("kv table not created: %v", err)
	}
}

func TestSetGetDelete(t *testing.T) {
	kv := setupTestKV(t)
	ctx := context.Background()

	if err := kv.Set(ctx, "app:settings", []byte(`{"theme":"stars"}`), 0); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	got, err := kv.Get(ctx, "app:settings")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if string(got) != `{"theme":"stars"}` {
		t.Errorf("Get() = %q", got)
	}

	if err := kv.Delete(ctx, "app:settings"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err := kv.Get(ctx, "app:settings"); !errors.Is(err, core.ErrKeyNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrKeyNotFound", err)
	}
}

func TestGetMissingKey(t *testing.T) {
	kv := setupTestKV(t)

	if _, err := kv.Get(context.Background(), "missing"); !errors.Is(err, core.ErrKeyNotFound) {
		t.Errorf("Get() error = %v, want ErrKeyNotFound", err)
	}
}

func TestSetUpsert(t *testing.T) {
	kv := setupTestKV(t)
	ctx := context.Background()

	kv.Set(ctx, "k", []byte("first"), 0)
	if err := kv.Set(ctx, "k", []byte("second"), 0); err != nil {
		t.Fatalf("Set() upsert failed: %v", err)
	}

	got, err := kv.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if string(got) != "second" {
		t.Errorf("Get() = %q, want %q", got, "second")
	}
}

func TestExpiredKeyIsDroppedOnRead(t *testing.T) {
	kv := setupTestKV(t)
	ctx := context.Background()

	// Write a row that expired a minute ago.
	expiresAt := time.Now().Add(-time.Minute).Unix()
	if _, err := kv.db.Exec("INSERT INTO kv (key, value, expires_at) VALUES (?, ?, ?)", "session:old", []byte("{}"), expiresAt); err != nil {
		t.Fatalf("failed to seed expired row: %v", err)
	}

	if _, err := kv.Get(ctx, "session:old"); !errors.Is(err, core.ErrKeyNotFound) {
		t.Fatalf("Get() of expired key error = %v, want ErrKeyNotFound", err)
	}

	// The row itself must be gone.
	var count int
	if err := kv.db.QueryRow("SELECT COUNT(*) FROM kv WHERE key = 'session:old'").Scan(&count); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expired row still present, count = %d", count)
	}
}

func TestZeroTTLNeverExpires(t *testing.T) {
	kv := setupTestKV(t)
	ctx := context.Background()

	if err := kv.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	var expiresAt int64
	if err := kv.db.QueryRow("SELECT expires_at FROM kv WHERE key = 'k'").Scan(&expiresAt); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if expiresAt != 0 {
		t.Errorf("expires_at = %d, want 0", expiresAt)
	}
}
