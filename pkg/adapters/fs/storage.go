package fs

import (
	"context"
	"fmt"
	"io"
	iofs "io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/jnalv414/my-second-brain/pkg/core"
)

const (
	defaultFilePerm = 0644
	defaultDirPerm  = 0755
)

// Config holds the configuration for the filesystem storage.
type Config struct {
	Logger   *slog.Logger
	FilePerm os.FileMode
	DirPerm  os.FileMode
}

// Storage implements core.Storage on the local filesystem.
// Writes go through a temp file and a rename.
type Storage struct {
	config Config
	logger *slog.Logger

	reads   atomic.Int64
	writes  atomic.Int64
	removes atomic.Int64
	walks   atomic.Int64
}

// NewStorage creates a new filesystem storage.
func NewStorage(config Config) *Storage {
	if config.FilePerm == 0 {
		config.FilePerm = defaultFilePerm
	}
	if config.DirPerm == 0 {
		config.DirPerm = defaultDirPerm
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Storage{config: config, logger: logger}
}

// ReadFile implements core.Storage.
func (s *Storage) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.reads.Add(1)
	return os.ReadFile(path)
}

// WriteFile implements core.Storage.
func (s *Storage) WriteFile(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), s.config.DirPerm); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := writeFileAtomic(path, data, s.config.FilePerm); err != nil {
		return err
	}
	s.writes.Add(1)
	s.logger.Debug("file written", "path", path, "bytes", len(data))
	return nil
}

// Remove implements core.Storage.
func (s *Storage) Remove(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return err
	}
	s.removes.Add(1)
	s.logger.Debug("file removed", "path", path)
	return nil
}

// Stat implements core.Storage.
func (s *Storage) Stat(ctx context.Context, path string) (core.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return core.FileInfo{}, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return core.FileInfo{}, err
	}
	return core.FileInfo{
		IsDir:   info.IsDir(),
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// Walk implements core.Storage. Matches are relative to root and
// slash-separated; directories are never returned.
func (s *Storage) Walk(ctx context.Context, root, pattern string) ([]string, error) {
	s.walks.Add(1)

	var matches []string
	err := doublestar.GlobWalk(os.DirFS(root), pattern, func(path string, d iofs.DirEntry) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		matches = append(matches, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	return matches, nil
}

var _ core.Storage = (*Storage)(nil)
