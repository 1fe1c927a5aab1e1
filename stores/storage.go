package stores

import (
	"context"
	"os"
	"time"

	"kotochan-birthday/stores/badger"
	"kotochan-birthday/stores/memory"
	"kotochan-birthday/stores/sqlite"

	"github.com/sirupsen/logrus"
)

// KV is the key-value store behind sessions, settings and the content lists.
// Values are opaque JSON documents. Get returns core.ErrKeyNotFound on a
// miss; any other error means the backend is unreachable and the caller is
// expected to fall back to its per-call-site default.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)

	// Set writes a value. A zero ttl means the key never expires.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// Keys used across the app. Sessions, photos and drawings additionally get
// per-item keys built with the prefix helpers below.
const (
	KeySettings    = "app:settings"
	KeyPhotoList   = "album:photos"
	KeyDrawingList = "drawings:list"
	sessionPrefix  = "session:"
	photoPrefix    = "photo:"
	drawingPrefix  = "drawing:"
)

func SessionKey(id string) string { return sessionPrefix + id }
func PhotoKey(id string) string   { return photoPrefix + id }
func DrawingKey(id string) string { return drawingPrefix + id }

// GetKV selects a KV backend based on the STORAGE_TYPE environment variable.
func GetKV() KV {
	storageType := os.Getenv("STORAGE_TYPE")
	var kv KV

	storageField := logrus.Fields{
		"storageType": storageType,
	}

	switch storageType {
	case "sqlite":
		dataSourceName := os.Getenv("DATA_SOURCE_NAME")
		if dataSourceName == "" {
			dataSourceName = "kotochan.db" // Default filename
		}
		storageField["dataSourceName"] = dataSourceName
		kv = sqlite.NewKV(dataSourceName)
	case "badger":
		dbPath := os.Getenv("BADGER_PATH")
		if dbPath == "" {
			dbPath = "./data/badger" // Default path
		}
		storageField["dbPath"] = dbPath
		kv = badger.NewKV(dbPath)
	default:
		kv = memory.NewKV()
		storageField["storageType"] = "in-memory"
	}
	logrus.WithFields(storageField).Info("Use storage")
	return kv
}
