package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/adrg/xdg"
)

// DefaultStateFile is the XDG state path used when no file is configured.
const DefaultStateFile = "grouptabs/state.json"

// File is a Store persisted as a single JSON object, one member per key.
// Every Set rewrites the file through a temp file and rename.
type File struct {
	mu   sync.Mutex
	path string
}

// NewFile returns a File store at path. A missing file reads as empty.
func NewFile(path string) *File {
	return &File{path: path}
}

// OpenDefault returns a File store at the XDG state location, creating the
// parent directory.
func OpenDefault() (*File, error) {
	path, err := xdg.StateFile(DefaultStateFile)
	if err != nil {
		return nil, fmt.Errorf("resolve state file: %w", err)
	}
	return NewFile(path), nil
}

// Path returns the backing file path.
func (f *File) Path() string {
	return f.path
}

// Get reads key from disk.
func (f *File) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.readLocked()
	if err != nil {
		return nil, err
	}

	v, ok := data[key]
	if !ok {
		return nil, fmt.Errorf("get %s: %w", key, ErrNotFound)
	}
	return v, nil
}

// Set writes key to disk.
func (f *File) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !json.Valid(value) {
		return fmt.Errorf("set %s: value is not valid JSON", key)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.readLocked()
	if err != nil {
		return err
	}
	data[key] = json.RawMessage(append([]byte(nil), value...))

	return f.writeLocked(data)
}

// readLocked loads the whole object. Must be called with mu held.
func (f *File) readLocked() (map[string]json.RawMessage, error) {
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return make(map[string]json.RawMessage), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state file: %w", err)
	}

	data := make(map[string]json.RawMessage)
	if len(raw) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode state file %s: %w", f.path, err)
	}
	return data, nil
}

// writeLocked replaces the file atomically. Must be called with mu held.
func (f *File) writeLocked(data map[string]json.RawMessage) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state file: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".state-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}
