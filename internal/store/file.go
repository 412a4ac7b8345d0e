package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"trademind/internal/errors"
)

var safeKey = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// FileKV stores each key as its own JSON file inside a directory.
type FileKV struct {
	dir string
}

// NewFileKV creates the directory if needed and returns a FileKV rooted there.
func NewFileKV(dir string) (*FileKV, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, errors.NewStorageError("file", "open", dir, err)
	}
	return &FileKV{dir: dir}, nil
}

func (f *FileKV) path(key string) (string, error) {
	if !safeKey.MatchString(key) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(f.dir, key+".json"), nil
}

// Get implements KV.
func (f *FileKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	p, err := f.path(key)
	if err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(p)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.NewStorageError("file", "get", key, err)
	}
	return data, true, nil
}

// Set writes through a temp file and rename so a crash never leaves a torn snapshot.
func (f *FileKV) Set(_ context.Context, key string, value []byte) error {
	p, err := f.path(key)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(f.dir, key+".*.tmp")
	if err != nil {
		return errors.NewStorageError("file", "set", key, err)
	}
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.NewStorageError("file", "set", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errors.NewStorageError("file", "set", key, err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		os.Remove(tmp.Name())
		return errors.NewStorageError("file", "set", key, err)
	}
	return nil
}

// Close implements KV.
func (f *FileKV) Close() error { return nil }
