package platform

import (
	"log/slog"
	"time"

	"github.com/jnalv414/my-second-brain/pkg/core"
)

// options holds the internal configuration for a vault service.
type options struct {
	storage             core.Storage
	logger              *slog.Logger
	extension           string
	hiddenPrefix        string
	cache               bool
	scanWorkers         int
	autoInit            bool
	watch               bool
	watchDebounce       time.Duration
	watcherErrorHandler func(error)
	defaultMaxResults   int
}

// Option defines a functional option for configuring the vault service.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		extension:    core.DefaultExtension,
		hiddenPrefix: core.DefaultHiddenPrefix,
		watch:        true,
	}
}

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithStorage injects a custom storage backend (e.g. in-memory for tests).
// Watching is disabled for injected storage since there is no directory
// to observe.
func WithStorage(storage core.Storage) Option {
	return func(o *options) {
		o.storage = storage
	}
}

// WithExtension sets the note file extension. Defaults to ".md".
func WithExtension(ext string) Option {
	return func(o *options) {
		o.extension = ext
	}
}

// WithHiddenPrefix sets the filename prefix that hides a note from listing.
// Defaults to ".".
func WithHiddenPrefix(prefix string) Option {
	return func(o *options) {
		o.hiddenPrefix = prefix
	}
}

// WithCache keeps decoded notes in memory while their file fingerprint
// (size, mtime) is unchanged.
func WithCache(enabled bool) Option {
	return func(o *options) {
		o.cache = enabled
	}
}

// WithScanWorkers bounds the concurrent reads of a corpus scan.
func WithScanWorkers(n int) Option {
	return func(o *options) {
		o.scanWorkers = n
	}
}

// WithAutoInit creates the vault directory if it does not exist.
func WithAutoInit(auto bool) Option {
	return func(o *options) {
		o.autoInit = auto
	}
}

// WithWatcher enables or disables the filesystem watcher. Enabled by default.
func WithWatcher(enabled bool) Option {
	return func(o *options) {
		o.watch = enabled
	}
}

// WithWatchDebounce sets how long bursts of changes on one note are
// coalesced before an event is emitted.
func WithWatchDebounce(d time.Duration) Option {
	return func(o *options) {
		o.watchDebounce = d
	}
}

// WithWatcherErrorHandler registers a callback for runtime watcher failures
// (e.g. permission denied) which are otherwise only logged.
func WithWatcherErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.watcherErrorHandler = fn
	}
}

// WithDefaultMaxResults sets the search result limit used when a caller
// passes zero.
func WithDefaultMaxResults(n int) Option {
	return func(o *options) {
		o.defaultMaxResults = n
	}
}
