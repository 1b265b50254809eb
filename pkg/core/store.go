package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"
)

const (
	// DefaultExtension is the file extension of notes.
	DefaultExtension = ".md"
	// DefaultHiddenPrefix marks filenames excluded from listing.
	DefaultHiddenPrefix = "."
	// DefaultScanWorkers bounds concurrent reads during a corpus scan.
	DefaultScanWorkers = 8
)

// StoreConfig holds the configuration for a Store.
type StoreConfig struct {
	Guard        *PathGuard
	Storage      Storage
	Logger       *slog.Logger
	Extension    string // e.g. ".md"
	HiddenPrefix string // e.g. "."
	Cache        bool   // keep decoded notes in memory, keyed by file fingerprint
	ScanWorkers  int
}

// Store implements guarded CRUD over the notes of a vault.
// It holds no state about the corpus other than the optional fingerprint
// cache: every call goes back to the Storage.
type Store struct {
	guard   *PathGuard
	storage Storage
	logger  *slog.Logger
	cache   *noteCache
	config  StoreConfig
}

// NewStore creates a Store from config, filling in defaults.
func NewStore(config StoreConfig) *Store {
	if config.Extension == "" {
		config.Extension = DefaultExtension
	}
	if !strings.HasPrefix(config.Extension, ".") {
		config.Extension = "." + config.Extension
	}
	if config.HiddenPrefix == "" {
		config.HiddenPrefix = DefaultHiddenPrefix
	}
	if config.ScanWorkers <= 0 {
		config.ScanWorkers = DefaultScanWorkers
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s := &Store{
		guard:   config.Guard,
		storage: config.Storage,
		logger:  logger,
		config:  config,
	}
	if config.Cache {
		s.cache = newNoteCache()
	}
	return s
}

// Root returns the canonical vault root.
func (s *Store) Root() string {
	return s.guard.Root()
}

// Read loads the note at the vault-relative path.
//
// It returns ErrPathTraversal for paths escaping the vault. A missing file,
// a directory, or a file that cannot be decoded yields (nil, nil); decode
// problems are logged and never propagated.
func (s *Store) Read(ctx context.Context, relativePath string) (*Note, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	abs, err := s.guard.Validate(relativePath)
	if err != nil {
		return nil, err
	}

	info, err := s.storage.Stat(ctx, abs)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Error("vault.read_note.failed", "path", relativePath, "error", err)
		}
		return nil, nil
	}
	if info.IsDir {
		return nil, nil
	}

	if s.cache != nil {
		if note, hit := s.cache.Get(abs, info); hit {
			return note, nil
		}
	}

	note, err := s.load(ctx, abs, info)
	if err != nil {
		s.logger.Error("vault.read_note.failed", "path", relativePath, "error", err)
		return nil, nil
	}

	if s.cache != nil {
		s.cache.Set(abs, info, *note)
	}
	return note, nil
}

func (s *Store) load(ctx context.Context, abs string, info FileInfo) (*Note, error) {
	data, err := s.storage.ReadFile(ctx, abs)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: not valid UTF-8", ErrDecode)
	}

	fields, body, err := Decode(string(data))
	if err != nil {
		return nil, err
	}

	rel, err := s.guard.Rel(abs)
	if err != nil {
		return nil, err
	}

	meta := MetadataFromFields(fields)
	title := meta.Title
	if title == "" {
		title = Stem(rel)
	}

	return &Note{
		Path:       rel,
		Title:      title,
		Content:    body,
		Metadata:   meta,
		ModifiedAt: info.ModTime,
	}, nil
}

// Write creates or replaces the note at the vault-relative path and returns
// it as read back from storage. Parent directories are created as needed.
func (s *Store) Write(ctx context.Context, relativePath, content string, fields map[string]any) (*Note, error) {
	abs, err := s.guard.Validate(relativePath)
	if err != nil {
		return nil, err
	}

	if abs == s.guard.Root() {
		return nil, fmt.Errorf("%w: vault root", ErrNotANote)
	}
	if info, err := s.storage.Stat(ctx, abs); err == nil && info.IsDir {
		return nil, fmt.Errorf("%w: %s", ErrNotANote, relativePath)
	}

	raw, err := Encode(content, fields)
	if err != nil {
		return nil, err
	}

	if err := s.storage.WriteFile(ctx, abs, []byte(raw)); err != nil {
		return nil, fmt.Errorf("failed to write note %s: %w", relativePath, err)
	}
	if s.cache != nil {
		s.cache.Delete(abs)
	}

	s.logger.Info("vault.write_note.completed", "path", relativePath)

	note, err := s.Read(ctx, relativePath)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, fmt.Errorf("%w: %s", ErrInternalConsistency, relativePath)
	}
	return note, nil
}

// Delete removes the note at the vault-relative path.
// It reports false when there was no file to remove.
func (s *Store) Delete(ctx context.Context, relativePath string) (bool, error) {
	abs, err := s.guard.Validate(relativePath)
	if err != nil {
		return false, err
	}

	info, err := s.storage.Stat(ctx, abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat note %s: %w", relativePath, err)
	}
	if info.IsDir {
		return false, nil
	}

	if err := s.storage.Remove(ctx, abs); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to remove note %s: %w", relativePath, err)
	}
	if s.cache != nil {
		s.cache.Delete(abs)
	}

	s.logger.Info("vault.delete_note.completed", "path", relativePath)
	return true, nil
}

// List returns the vault-relative paths of all notes under folder, sorted.
// Files whose name starts with the hidden prefix are skipped. The empty
// folder means the whole vault.
func (s *Store) List(ctx context.Context, folder string) ([]string, error) {
	abs, err := s.guard.Validate(folder)
	if err != nil {
		return nil, err
	}

	notes := []string{}

	info, err := s.storage.Stat(ctx, abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return notes, nil
		}
		return nil, fmt.Errorf("failed to stat folder %s: %w", folder, err)
	}
	if !info.IsDir {
		return notes, nil
	}

	base, err := s.guard.Rel(abs)
	if err != nil {
		return nil, err
	}

	matches, err := s.storage.Walk(ctx, abs, "**/*"+s.config.Extension)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}

	for _, m := range matches {
		if strings.HasPrefix(path.Base(m), s.config.HiddenPrefix) {
			continue
		}
		notes = append(notes, path.Join(base, m))
	}

	sort.Strings(notes)
	return notes, nil
}

// Scan reads every note of the vault. Results follow List order; notes that
// cannot be read are skipped.
func (s *Store) Scan(ctx context.Context) ([]*Note, error) {
	paths, err := s.List(ctx, "")
	if err != nil {
		return nil, err
	}

	read := make([]*Note, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.ScanWorkers)
	for i, p := range paths {
		g.Go(func() error {
			note, err := s.Read(gctx, p)
			if err != nil {
				return err
			}
			read[i] = note
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	notes := make([]*Note, 0, len(read))
	for _, n := range read {
		if n != nil {
			notes = append(notes, n)
		}
	}
	return notes, nil
}

// Stem returns the filename of a slash-separated path without its extension.
func Stem(p string) string {
	base := path.Base(p)
	return strings.TrimSuffix(base, path.Ext(base))
}
