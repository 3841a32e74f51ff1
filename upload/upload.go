// Package upload validates image uploads and hands them to a blob store.
package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// MaxSize is the largest accepted upload in bytes.
const MaxSize int64 = 10 * 1024 * 1024

// URLPrefix is the public path stored names are served under.
const URLPrefix = "/uploads/"

var allowedExtensions = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"gif":  true,
	"webp": true,
}

var (
	ErrNoFile        = errors.New("no file uploaded")
	ErrInvalidFormat = errors.New("invalid file type, only JPG, PNG, GIF and WebP files are allowed")
	ErrTooLarge      = errors.New("file too large, maximum size is 10MB")
	ErrInvalidName   = errors.New("invalid file name")
	ErrNotFound      = errors.New("file not found")
)

// Blob is a stored file opened for reading.
type Blob struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
}

// Store persists uploaded files under flat names.
type Store interface {
	Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, name string) (Blob, error)
}

// File is an incoming upload. Size is the size the client declared.
type File struct {
	Name string
	Size int64
	Body io.Reader
}

type Uploader struct {
	Store   Store
	MaxSize int64
	Now     func() time.Time
}

func NewUploader(store Store) *Uploader {
	return &Uploader{Store: store, MaxSize: MaxSize, Now: time.Now}
}

func (u *Uploader) limit() int64 {
	if u.MaxSize <= 0 {
		return MaxSize
	}
	return u.MaxSize
}

// Save validates f and stores it under a generated name, returning its public
// URL. Size and format are checked before anything reaches the store.
func (u *Uploader) Save(ctx context.Context, f File, prefix string) (string, error) {
	if f.Body == nil {
		return "", ErrNoFile
	}
	maxSize := u.limit()
	if f.Size > maxSize {
		return "", ErrTooLarge
	}

	ext := Extension(f.Name)
	if !allowedExtensions[ext] {
		return "", ErrInvalidFormat
	}

	data, err := io.ReadAll(io.LimitReader(f.Body, maxSize+1))
	if err != nil {
		return "", fmt.Errorf("error reading upload: %w", err)
	}
	if int64(len(data)) > maxSize {
		return "", ErrTooLarge
	}
	if len(data) == 0 {
		return "", ErrNoFile
	}

	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return "", ErrInvalidFormat
	}

	now := time.Now
	if u.Now != nil {
		now = u.Now
	}
	name := fmt.Sprintf("%s_%d_%s.%s", Prefix(prefix), now().UnixMilli(), uuid.NewString(), ext)

	if err := u.Store.Put(ctx, name, bytes.NewReader(data), int64(len(data)), mtype.String()); err != nil {
		return "", fmt.Errorf("error storing upload: %w", err)
	}
	return URLPrefix + name, nil
}

// Extension returns the lower-cased extension of name without the dot.
func Extension(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

// Prefix reduces a caller supplied context to a lower-case ASCII word,
// defaulting to "event".
func Prefix(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || len(s) > 32 {
		return "event"
	}
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return "event"
		}
	}
	return s
}

// ValidName rejects names that could address anything outside the store's
// flat namespace.
func ValidName(name string) error {
	if name == "" || name == "." || strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return ErrInvalidName
	}
	return nil
}
