package brain

import (
	"log/slog"
	"time"

	"github.com/jnalv414/my-second-brain/internal/platform"
	"github.com/jnalv414/my-second-brain/pkg/core"
	"github.com/jnalv414/my-second-brain/pkg/links"
	"github.com/jnalv414/my-second-brain/pkg/search"
	"github.com/jnalv414/my-second-brain/pkg/typed"
	"github.com/jnalv414/my-second-brain/pkg/vault"
)

// --- Types ---

// Service is the vault service returned by New.
type Service = vault.Service

// Note is a decoded note.
type Note = core.Note

// NoteMetadata holds the frontmatter of a note.
type NoteMetadata = core.NoteMetadata

// NoteRef names a note in link query results.
type NoteRef = core.NoteRef

// Link is a parsed wikilink.
type Link = links.Link

// Graph is a snapshot of the links between all notes.
type Graph = links.Graph

// SearchResult is a scored search hit.
type SearchResult = search.Result

// Event is a change notification from Watch.
type Event = core.Event

// --- Errors ---

var (
	ErrPathTraversal       = core.ErrPathTraversal
	ErrVaultNotFound       = core.ErrVaultNotFound
	ErrInternalConsistency = core.ErrInternalConsistency
	ErrWatchUnavailable    = core.ErrWatchUnavailable
	ErrNotANote            = core.ErrNotANote
	ErrNoteExists          = core.ErrNoteExists
)

// --- Configuration ---

// Option defines a functional option for configuring a vault.
type Option = platform.Option

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithStorage injects a custom storage backend.
func WithStorage(storage core.Storage) Option {
	return platform.WithStorage(storage)
}

// WithExtension sets the note file extension.
func WithExtension(ext string) Option {
	return platform.WithExtension(ext)
}

// WithHiddenPrefix sets the filename prefix that hides a note from listing.
func WithHiddenPrefix(prefix string) Option {
	return platform.WithHiddenPrefix(prefix)
}

// WithCache enables the in-memory note cache.
func WithCache(enabled bool) Option {
	return platform.WithCache(enabled)
}

// WithScanWorkers bounds the concurrent reads of a corpus scan.
func WithScanWorkers(n int) Option {
	return platform.WithScanWorkers(n)
}

// WithAutoInit creates the vault directory if it does not exist.
func WithAutoInit(auto bool) Option {
	return platform.WithAutoInit(auto)
}

// WithWatcher enables or disables the filesystem watcher.
func WithWatcher(enabled bool) Option {
	return platform.WithWatcher(enabled)
}

// WithWatchDebounce sets the watcher's coalescing window.
func WithWatchDebounce(d time.Duration) Option {
	return platform.WithWatchDebounce(d)
}

// WithWatcherErrorHandler registers a callback for runtime watcher failures.
func WithWatcherErrorHandler(fn func(error)) Option {
	return platform.WithWatcherErrorHandler(fn)
}

// WithDefaultMaxResults sets the default search result limit.
func WithDefaultMaxResults(n int) Option {
	return platform.WithDefaultMaxResults(n)
}

// --- Factory ---

// New opens the vault at path.
func New(path string, opts ...Option) (*Service, error) {
	return platform.New(path, opts...)
}

// FindRoot looks upwards from dir for a directory marked as a vault.
func FindRoot(dir string) (string, error) {
	return platform.FindRoot(dir)
}

// Typed returns a view of the vault's notes with frontmatter decoded into T.
func Typed[T any](svc *Service) *typed.Repository[T] {
	return typed.NewRepository[T](svc)
}
