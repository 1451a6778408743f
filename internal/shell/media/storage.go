// Package media stores uploaded file content on an afero filesystem.
// File metadata lives in the store; this package only handles bytes.
package media

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

var (
	// ErrTooLarge is returned when an upload exceeds the size limit.
	ErrTooLarge = errors.New("file exceeds the upload size limit")

	// ErrUnsupportedType is returned when the sniffed MIME type is not allowed.
	ErrUnsupportedType = errors.New("file type is not allowed")

	// ErrInvalidKey is returned for storage keys that escape the media root.
	ErrInvalidKey = errors.New("invalid storage key")

	// ErrEmpty is returned for zero-byte uploads.
	ErrEmpty = errors.New("file is empty")
)

// DefaultAllowedTypes lists the MIME prefixes accepted by default.
var DefaultAllowedTypes = []string{"image/", "video/", "application/pdf"}

// Config configures media storage.
type Config struct {
	// MaxBytes is the upload size limit. Default: 10 MiB.
	MaxBytes int64

	// AllowedTypes are MIME type prefixes accepted on upload.
	// Default: DefaultAllowedTypes.
	AllowedTypes []string
}

// Object describes a stored upload.
type Object struct {
	Key      string
	MimeType string
	Size     int64
}

// Storage writes and reads media objects under keys of the form
// yyyy/mm/<uuid><ext>.
type Storage struct {
	fs      afero.Fs
	config  Config
	nowFunc func() time.Time
}

// NewStorage creates storage over fs.
func NewStorage(fs afero.Fs, config Config) *Storage {
	if config.MaxBytes <= 0 {
		config.MaxBytes = 10 << 20
	}
	if len(config.AllowedTypes) == 0 {
		config.AllowedTypes = DefaultAllowedTypes
	}
	return &Storage{
		fs:      fs,
		config:  config,
		nowFunc: time.Now,
	}
}

// NewDiskStorage creates storage rooted at dir on the local disk.
func NewDiskStorage(dir string, config Config) (*Storage, error) {
	if dir == "" {
		return nil, errors.New("media directory is required")
	}
	osFs := afero.NewOsFs()
	if err := osFs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create media directory: %w", err)
	}
	return NewStorage(afero.NewBasePathFs(osFs, dir), config), nil
}

// MaxBytes returns the configured upload limit.
func (s *Storage) MaxBytes() int64 {
	return s.config.MaxBytes
}

// Save writes r under a new key. The extension is taken from name; the MIME
// type is sniffed from the content.
func (s *Storage) Save(name string, r io.Reader) (*Object, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]
	if n == 0 {
		return nil, ErrEmpty
	}

	ext := extension(name)
	mimeType := DetectType(head, ext)
	if !s.allowed(mimeType) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, mimeType)
	}

	now := s.nowFunc().UTC()
	key := fmt.Sprintf("%04d/%02d/%s%s", now.Year(), int(now.Month()), uuid.NewString(), ext)
	if err := s.fs.MkdirAll(path.Dir(key), 0o755); err != nil {
		return nil, fmt.Errorf("create media directory: %w", err)
	}

	f, err := s.fs.OpenFile(key, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create media file: %w", err)
	}

	body := io.MultiReader(bytes.NewReader(head), r)
	written, err := io.Copy(f, io.LimitReader(body, s.config.MaxBytes+1))
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && written > s.config.MaxBytes {
		err = ErrTooLarge
	}
	if err != nil {
		_ = s.fs.Remove(key)
		if errors.Is(err, ErrTooLarge) {
			return nil, err
		}
		return nil, fmt.Errorf("write media file: %w", err)
	}

	return &Object{Key: key, MimeType: mimeType, Size: written}, nil
}

// Open returns the object stored under key.
func (s *Storage) Open(key string) (afero.File, os.FileInfo, error) {
	clean, err := cleanKey(key)
	if err != nil {
		return nil, nil, err
	}
	f, err := s.fs.Open(clean)
	if err != nil {
		return nil, nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	if info.IsDir() {
		f.Close()
		return nil, nil, os.ErrNotExist
	}
	return f, info, nil
}

// Remove deletes the object stored under key. Missing objects are not an
// error.
func (s *Storage) Remove(key string) error {
	clean, err := cleanKey(key)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(clean); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *Storage) allowed(mimeType string) bool {
	for _, prefix := range s.config.AllowedTypes {
		if strings.HasPrefix(mimeType, prefix) {
			return true
		}
	}
	return false
}

// DetectType sniffs the MIME type of content. When sniffing is inconclusive
// the type registered for ext is used instead.
func DetectType(head []byte, ext string) string {
	detected := baseType(http.DetectContentType(head))
	switch detected {
	case "application/octet-stream", "text/plain", "text/xml":
		if byExt := baseType(mime.TypeByExtension(ext)); byExt != "" {
			return byExt
		}
	}
	return detected
}

func baseType(t string) string {
	if i := strings.IndexByte(t, ';'); i >= 0 {
		t = t[:i]
	}
	return strings.TrimSpace(strings.ToLower(t))
}

// extension returns the lowercased extension of name if it is short and
// alphanumeric, else "".
func extension(name string) string {
	ext := strings.ToLower(path.Ext(strings.ReplaceAll(name, "\\", "/")))
	if len(ext) < 2 || len(ext) > 10 {
		return ""
	}
	for _, c := range ext[1:] {
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') {
			return ""
		}
	}
	return ext
}

func cleanKey(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return "", ErrInvalidKey
	}
	clean := path.Clean(key)
	if clean != key || clean == "." || strings.HasPrefix(clean, "../") || clean == ".." {
		return "", ErrInvalidKey
	}
	return clean, nil
}
