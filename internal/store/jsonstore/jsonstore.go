// Package jsonstore keeps the serialized task list in a single human-readable
// file, one file per storage key.
package jsonstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Store keeps one value per key in <dir>/<key>.json. Values that are valid
// JSON are written indented, so Read returns an equivalent document rather
// than the exact bytes passed to Write; anything else is stored verbatim.
// No locking; one local writer at a time.
type Store struct {
	dir string
	key string
}

// New stores the value for key in dir/<key>.json. dir is created on first write.
func New(dir, key string) *Store {
	return &Store{dir: dir, key: key}
}

// Path returns the backing file.
func (s *Store) Path() string {
	return filepath.Join(s.dir, s.key+".json")
}

func (s *Store) Read(ctx context.Context) (string, bool, error) {
	b, err := os.ReadFile(s.Path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read file: %w", err)
	}
	return string(b), true, nil
}

// Write replaces the file through a temp file and rename so readers never see
// a half-written list. Valid JSON is indented for hand editing; anything else
// is written verbatim.
func (s *Store) Write(ctx context.Context, value string) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	b := []byte(value)
	var buf bytes.Buffer
	if err := json.Indent(&buf, b, "", "  "); err == nil {
		b = buf.Bytes()
	}

	tmp, err := os.CreateTemp(s.dir, "."+s.key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path()); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
