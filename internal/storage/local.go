package storage

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// LocalUploader writes under basePath; the files are served at publicURL.
type LocalUploader struct {
	basePath  string
	publicURL string
	log       *zap.Logger
}

func NewLocalUploader(basePath, publicURL string, log *zap.Logger) (*LocalUploader, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &LocalUploader{basePath: basePath, publicURL: strings.TrimRight(publicURL, "/"), log: log}, nil
}

func (u *LocalUploader) BasePath() string { return u.basePath }

func (u *LocalUploader) Upload(_ context.Context, file *multipart.FileHeader, key string) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	fullPath := filepath.Join(u.basePath, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("create dir: %w", err)
	}

	dst, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()

	if _, err = io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("save file: %w", err)
	}

	u.log.Info("File uploaded", zap.String("path", fullPath))
	return u.publicURL + "/" + key, nil
}
