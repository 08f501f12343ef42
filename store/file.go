package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// File persists state as a single JSON document. Saves write to a temp
// file in the same directory and rename over the target, so readers never
// observe a partial write.
type File struct {
	path string
}

// NewFile returns a file-backed store at path. The file is created on the
// first Save.
func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) Load(ctx context.Context) (StateRecord, error) {
	_ = ctx // no cancellation point for a local read

	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return StateRecord{}, ErrNotFound
		}
		return StateRecord{}, fmt.Errorf("read state file: %w", err)
	}

	var rec StateRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return StateRecord{}, fmt.Errorf("parse state file %s: %w", f.path, err)
	}
	return rec, nil
}

func (f *File) Save(ctx context.Context, rec StateRecord) error {
	_ = ctx

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".state-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp state file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp state file: %w", err)
	}

	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}

func (f *File) Close() error { return nil }
