package domain

import (
	"errors"
	"path"
	"strings"
	"time"
)

var (
	ErrFileNameRequired = errors.New("file name is required")
	ErrStorageKeyEmpty  = errors.New("storage key is required")
)

// File is an uploaded media object. The bytes live in media storage under
// StorageKey; the row only holds metadata.
type File struct {
	ID           string    `json:"id"`
	OriginalName string    `json:"original_name"`
	StorageKey   string    `json:"storage_key"`
	MimeType     string    `json:"mime_type"`
	Size         int64     `json:"size"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewFile creates file metadata for an object already written to storage.
func NewFile(originalName, storageKey, mimeType string, size int64) (*File, error) {
	originalName = path.Base(strings.ReplaceAll(strings.TrimSpace(originalName), "\\", "/"))
	if originalName == "" || originalName == "." || originalName == "/" {
		return nil, ErrFileNameRequired
	}
	if storageKey == "" {
		return nil, ErrStorageKeyEmpty
	}
	return &File{
		ID:           NewID(PrefixFile),
		OriginalName: originalName,
		StorageKey:   storageKey,
		MimeType:     mimeType,
		Size:         size,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// URL returns the public URL of the file under base (e.g. "/media").
func (f File) URL(base string) string {
	return strings.TrimRight(base, "/") + "/" + f.StorageKey
}

// IsImage reports whether the file is an image.
func (f File) IsImage() bool {
	return strings.HasPrefix(f.MimeType, "image/")
}
