package file

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// MaxReceiptSize caps uploaded receipt images.
const MaxReceiptSize int64 = 10 << 20

// Storage writes and removes objects by key.
type Storage interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
	Delete(ctx context.Context, key string) error
}

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// DetectImage sniffs data and returns its content type when it is a
// supported image.
func DetectImage(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyFile
	}
	if int64(len(data)) > MaxReceiptSize {
		return "", ErrFileTooLarge
	}
	contentType := http.DetectContentType(data)
	if _, ok := imageExtensions[contentType]; !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}
	return contentType, nil
}

// ReceiptKey returns a fresh object key under the user's receipt prefix.
func ReceiptKey(userID uuid.UUID, contentType string) string {
	return fmt.Sprintf("receipts/%s/%s%s", userID, uuid.New(), imageExtensions[contentType])
}

func cleanKey(key string) (string, error) {
	key = strings.TrimPrefix(key, "/")
	if key == "" || strings.Contains(key, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return key, nil
}
