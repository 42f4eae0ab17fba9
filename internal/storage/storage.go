// Package storage uploads user media and returns its public URL.
package storage

import (
	"context"
	"fmt"
	"mime/multipart"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Uploader stores file under key.
type Uploader interface {
	Upload(ctx context.Context, file *multipart.FileHeader, key string) (string, error)
}

// Folders by media kind.
var folders = map[string]string{
	"profile": "profiles",
	"post":    "posts",
	"story":   "stories",
	"product": "products",
}

// ObjectKey builds "<folder>/<user>/<yyyy>/<mm>/<uuid><ext>" for a kind.
func ObjectKey(kind string, userID uint, filename string) (string, error) {
	folder, ok := folders[kind]
	if !ok {
		return "", fmt.Errorf("unknown media kind %q", kind)
	}
	ext := strings.ToLower(filepath.Ext(filename))
	now := time.Now().UTC()
	return path.Join(folder, fmt.Sprint(userID), now.Format("2006"), now.Format("01"), uuid.NewString()+ext), nil
}

// MediaType classifies an upload by its content type.
func MediaType(contentType string) string {
	if strings.HasPrefix(contentType, "video/") {
		return "video"
	}
	return "image"
}
