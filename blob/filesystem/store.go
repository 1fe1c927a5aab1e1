package filesystem

import (
	"context"
	"fmt"
	"log"
	"os"
	"path"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

type Store struct {
	basePath string
}

// NewStore creates a filesystem-backed blob store. Files land under
// basePath and are served by the router under /uploads/.
func NewStore(basePath string) *Store {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		log.Fatalf("failed to create uploads directory: %v", err)
	}
	return &Store{basePath: basePath}
}

// safeKey rejects keys that would escape the uploads directory.
func safeKey(key string) (string, error) {
	if key == "" || key == "." || key == ".." {
		return "", fmt.Errorf("invalid blob key: must not be empty or a dot directory")
	}
	if path.Base(key) != key {
		return "", fmt.Errorf("invalid blob key: must not be a path")
	}
	return key, nil
}

func (s *Store) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	key, err := safeKey(key)
	if err != nil {
		return "", err
	}

	filePath := filepath.Join(s.basePath, key)
	if err := os.WriteFile(filePath, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write blob %s: %w", key, err)
	}

	logrus.WithFields(logrus.Fields{
		"key":         key,
		"data_length": len(data),
	}).Info("Blob written")

	return "/uploads/" + key, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	key, err := safeKey(key)
	if err != nil {
		return err
	}

	if err := os.Remove(filepath.Join(s.basePath, key)); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete blob %s: %w", key, err)
	}
	return nil
}

// BasePath exposes the uploads directory so the router can serve it.
func (s *Store) BasePath() string {
	return s.basePath
}
