package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
)

// DiskStore keeps uploads as files in a single directory.
type DiskStore struct {
	Dir string
}

func (ds DiskStore) Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) error {
	if err := ValidName(name); err != nil {
		return err
	}
	if err := os.MkdirAll(ds.Dir, 0o755); err != nil {
		return fmt.Errorf("error creating upload dir: %w", err)
	}

	tmp, err := os.CreateTemp(ds.Dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("error creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return fmt.Errorf("error writing upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("error writing upload: %w", err)
	}
	return os.Rename(tmp.Name(), filepath.Join(ds.Dir, name))
}

func (ds DiskStore) Open(ctx context.Context, name string) (Blob, error) {
	if err := ValidName(name); err != nil {
		return Blob{}, err
	}
	path := filepath.Join(ds.Dir, name)

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Blob{}, ErrNotFound
		}
		return Blob{}, fmt.Errorf("error opening upload: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return Blob{}, fmt.Errorf("error reading upload: %w", err)
	}

	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		f.Close()
		return Blob{}, fmt.Errorf("error reading upload: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return Blob{}, fmt.Errorf("error reading upload: %w", err)
	}

	return Blob{Body: f, ContentType: mtype.String(), Size: info.Size()}, nil
}
