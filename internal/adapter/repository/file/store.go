// Package file provides JSON-document repositories rooted in a data
// directory. Each repository keeps its working set in memory and
// rewrites its document atomically on every mutation, so a crash never
// leaves a half-written file behind.
package file

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/auralplayer/aural/internal/domain"
)

// writeJSON marshals v and atomically replaces the file at path via a
// temp file and rename.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return domain.NewRepositoryError("write", path, "marshal failed", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return domain.NewRepositoryError("write", path, "create data dir failed", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return domain.NewRepositoryError("write", path, "create temp file failed", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return domain.NewRepositoryError("write", path, "write temp file failed", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return domain.NewRepositoryError("write", path, "close temp file failed", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return domain.NewRepositoryError("write", path, "rename failed", err)
	}
	return nil
}

// readJSON unmarshals the file at path into v. A missing file returns
// os.ErrNotExist untouched so callers can fall back to an empty store.
func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return err
		}
		return domain.NewRepositoryError("read", path, "read failed", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return domain.NewRepositoryError("read", path, "unmarshal failed", err)
	}
	return nil
}
