package fs

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const (
	// TempFilePrefix starts the name of every in-flight note write. The
	// leading dot keeps it out of listings and watcher events.
	TempFilePrefix = ".brain-tmp-"
)

// writeFileAtomic writes data to a hidden sibling of filename and renames it
// into place, so readers never observe a partially written note. An existing
// note keeps its permissions; perm applies to new notes only.
func writeFileAtomic(filename string, data []byte, perm os.FileMode) error {
	if info, err := os.Stat(filename); err == nil {
		if info.IsDir() {
			return fmt.Errorf("cannot replace folder %s with a note", filename)
		}
		perm = info.Mode().Perm()
	}

	dir := filepath.Dir(filename)
	tmp, err := os.CreateTemp(dir, TempFilePrefix+filepath.Base(filename)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once renamed

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, filename); err != nil {
		return fmt.Errorf("failed to move note into place at %s: %w", filename, err)
	}
	return syncDir(dir)
}

// syncDir flushes the folder entry so the rename survives a crash.
// Windows cannot fsync directories.
func syncDir(dir string) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	d, err := os.Open(dir)
	if err != nil {
		return fmt.Errorf("failed to open folder %s: %w", dir, err)
	}
	defer d.Close()
	if err := d.Sync(); err != nil {
		return fmt.Errorf("failed to sync folder %s: %w", dir, err)
	}
	return nil
}
