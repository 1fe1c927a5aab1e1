package blob

import (
	"context"
	"os"

	"kotochan-birthday/blob/filesystem"
	"kotochan-birthday/blob/s3"

	"github.com/sirupsen/logrus"
)

// Store holds uploaded photo files. Put returns the public URL the album
// serves the image from.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// GetStore selects a blob backend based on the BLOB_STORAGE_TYPE
// environment variable.
func GetStore() Store {
	storageType := os.Getenv("BLOB_STORAGE_TYPE")
	var store Store

	storageField := logrus.Fields{
		"blobStorageType": storageType,
	}

	switch storageType {
	case "s3":
		bucketName := os.Getenv("S3_BUCKET_NAME")
		if bucketName == "" {
			logrus.Fatal("S3_BUCKET_NAME environment variable must be set for s3 blob storage")
		}
		storageField["bucketName"] = bucketName
		store = s3.NewStore(bucketName)
	default:
		basePath := os.Getenv("UPLOADS_PATH")
		if basePath == "" {
			basePath = "./data/uploads" // Default path
		}
		storageField["basePath"] = basePath
		storageField["blobStorageType"] = "filesystem"
		store = filesystem.NewStore(basePath)
	}
	logrus.WithFields(storageField).Info("Use blob storage")
	return store
}
