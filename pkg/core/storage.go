package core

import (
	"context"
	"time"
)

// FileInfo is the subset of file attributes the store relies on.
type FileInfo struct {
	IsDir   bool
	Size    int64
	ModTime time.Time
}

// Storage defines the contract for the byte-level persistence of a vault.
// Paths are absolute and have already been validated by a PathGuard.
// Adhering to this interface keeps the store independent of the
// underlying storage mechanism.
//
// Missing paths must be reported with an error satisfying
// errors.Is(err, fs.ErrNotExist).
type Storage interface {
	// ReadFile returns the exact bytes stored at path.
	ReadFile(ctx context.Context, path string) ([]byte, error)

	// WriteFile persists data at path, creating parent directories.
	WriteFile(ctx context.Context, path string, data []byte) error

	// Remove deletes the file at path.
	Remove(ctx context.Context, path string) error

	// Stat reports whether path exists and what it is.
	Stat(ctx context.Context, path string) (FileInfo, error)

	// Walk returns the files under root whose root-relative, slash-separated
	// path matches the doublestar pattern (e.g. "**/*.md").
	Walk(ctx context.Context, root, pattern string) ([]string, error)
}

// Watcher streams changes to the notes of a vault until ctx is done.
type Watcher interface {
	Watch(ctx context.Context) (<-chan Event, error)
}
