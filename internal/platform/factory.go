package platform

import (
	"fmt"
	"os"
	"strings"

	"github.com/jnalv414/my-second-brain/pkg/adapters/fs"
	"github.com/jnalv414/my-second-brain/pkg/core"
	"github.com/jnalv414/my-second-brain/pkg/vault"
)

// New wires a vault service rooted at path.
//
//	svc, err := brain.New("~/Documents/Obsidian", brain.WithCache(true))
func New(path string, opts ...Option) (*vault.Service, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	resolved, err := ExpandPath(path)
	if err != nil {
		return nil, err
	}

	if o.autoInit {
		if err := os.MkdirAll(resolved, 0755); err != nil {
			return nil, fmt.Errorf("failed to create vault directory: %w", err)
		}
	}

	guard, err := core.NewPathGuard(resolved)
	if err != nil {
		return nil, err
	}

	storage := o.storage
	injected := storage != nil
	if !injected {
		storage = fs.NewStorage(fs.Config{Logger: o.logger})
	}

	store := core.NewStore(core.StoreConfig{
		Guard:        guard,
		Storage:      storage,
		Logger:       o.logger,
		Extension:    o.extension,
		HiddenPrefix: o.hiddenPrefix,
		Cache:        o.cache,
		ScanWorkers:  o.scanWorkers,
	})

	ext := o.extension
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	var watcher core.Watcher
	if o.watch && !injected {
		watcher = fs.NewWatcher(fs.WatcherConfig{
			Root:         guard.Root(),
			Extension:    ext,
			HiddenPrefix: o.hiddenPrefix,
			Debounce:     o.watchDebounce,
			Logger:       o.logger,
			ErrorHandler: o.watcherErrorHandler,
		})
	}

	if o.logger != nil {
		o.logger.Debug("vault opened", "root", guard.Root(), "cache", o.cache, "watch", watcher != nil)
	}

	return vault.NewService(vault.Config{
		Store:             store,
		Watcher:           watcher,
		Logger:            o.logger,
		DefaultMaxResults: o.defaultMaxResults,
	}), nil
}
