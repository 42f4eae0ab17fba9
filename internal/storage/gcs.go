package storage

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"

	"cloud.google.com/go/storage"
)

// GCSUploader writes to a Cloud Storage bucket, typically the Firebase
// project's default bucket.
type GCSUploader struct {
	bucket *storage.BucketHandle
	name   string
}

func NewGCSUploader(bucket *storage.BucketHandle, name string) *GCSUploader {
	return &GCSUploader{bucket: bucket, name: name}
}

func (u *GCSUploader) Upload(ctx context.Context, file *multipart.FileHeader, key string) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	writer := u.bucket.Object(key).NewWriter(ctx)
	writer.ContentType = file.Header.Get("Content-Type")
	if _, err = io.Copy(writer, src); err != nil {
		_ = writer.Close()
		return "", fmt.Errorf("gcs copy: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("gcs close: %w", err)
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", u.name, key), nil
}
