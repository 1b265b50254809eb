package fs

import (
	"context"
	"fmt"
	"io"
	iofs "io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/lifecycle/pkg/core/worker"
	"github.com/fsnotify/fsnotify"

	"github.com/jnalv414/my-second-brain/pkg/core"
)

const (
	defaultDebounce = 50 * time.Millisecond
	eventBufferSize = 64
)

// WatcherConfig holds the configuration for a vault Watcher.
type WatcherConfig struct {
	Root         string // canonical vault root
	Extension    string
	HiddenPrefix string
	Debounce     time.Duration
	Logger       *slog.Logger
	ErrorHandler func(error)
}

// Watcher reports note changes under a vault root as core.Events.
type Watcher struct {
	config WatcherConfig
	logger *slog.Logger

	mu        sync.RWMutex
	active    bool
	dirs      int
	emitted   int64
	lastEvent *time.Time
}

// NewWatcher creates a Watcher. Nothing is watched until Watch is called.
func NewWatcher(config WatcherConfig) *Watcher {
	if config.Extension == "" {
		config.Extension = core.DefaultExtension
	}
	if config.HiddenPrefix == "" {
		config.HiddenPrefix = core.DefaultHiddenPrefix
	}
	if config.Debounce <= 0 {
		config.Debounce = defaultDebounce
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Watcher{config: config, logger: logger}
}

// Watch starts a watch worker and returns its event stream.
// The channel is closed once ctx is cancelled and the worker has drained.
func (w *Watcher) Watch(ctx context.Context) (<-chan core.Event, error) {
	events := make(chan core.Event, eventBufferSize)
	ww := newWatchWorker(w, events)
	if err := ww.Start(ctx); err != nil {
		return nil, err
	}
	return events, nil
}

func (w *Watcher) setActive(active bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.active = active
}

func (w *Watcher) recordEvent() {
	w.mu.Lock()
	defer w.mu.Unlock()
	now := time.Now()
	w.emitted++
	w.lastEvent = &now
}

func (w *Watcher) hidden(name string) bool {
	return strings.HasPrefix(filepath.Base(name), w.config.HiddenPrefix)
}

// recursiveAdd watches dir and every non-hidden directory below it.
func (w *Watcher) recursiveAdd(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.config.Root && w.hidden(path) {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		w.mu.Lock()
		w.dirs++
		w.mu.Unlock()
		return nil
	})
}

// resolve maps an absolute filesystem name to a note path, reporting false
// for files that are not notes.
func (w *Watcher) resolve(name string) (string, bool) {
	if filepath.Ext(name) != w.config.Extension || w.hidden(name) {
		return "", false
	}
	rel, err := filepath.Rel(w.config.Root, name)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func mapEventType(event fsnotify.Event) core.EventType {
	switch {
	case event.Has(fsnotify.Create):
		return core.EventCreate
	case event.Has(fsnotify.Write):
		return core.EventModify
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return core.EventDelete
	}
	return ""
}

type watchWorker struct {
	*worker.BaseWorker
	owner     *Watcher
	events    chan core.Event
	watcher   *fsnotify.Watcher
	debouncer *debouncer
	cancel    context.CancelFunc
}

func newWatchWorker(owner *Watcher, events chan core.Event) *watchWorker {
	return &watchWorker{
		BaseWorker: worker.NewBaseWorker("vault-watcher"),
		owner:      owner,
		events:     events,
	}
}

func (w *watchWorker) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	status := w.State().Status
	if status != worker.StatusCreated && status != worker.StatusPending {
		return fmt.Errorf("watcher already started (status: %s)", status)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := w.owner.recursiveAdd(watcher, w.owner.config.Root); err != nil {
		_ = watcher.Close()
		return err
	}

	w.watcher = watcher
	w.debouncer = newDebouncer(w.owner.config.Debounce)
	w.owner.setActive(true)

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.SetStatus(worker.StatusRunning)
	return w.StartFunc(runCtx, w.run)
}

func (w *watchWorker) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.StopRequested = true
		w.cancel()
	}
	return w.BaseWorker.Stop(ctx)
}

func (w *watchWorker) State() worker.State {
	return w.ExportState(func(s *worker.State) {
		s.Metadata = map[string]string{
			worker.MetadataType: string(worker.TypeGoroutine),
		}
	})
}

func (w *watchWorker) run(ctx context.Context) (err error) {
	logger := w.owner.logger
	defer func() {
		if recovered := recover(); recovered != nil {
			panicErr := fmt.Errorf("watcher panic: %v", recovered)
			if logger.Enabled(ctx, slog.LevelDebug) {
				logger.Error("vault.watch.panic", "error", panicErr, "stack", string(debug.Stack()))
			} else {
				logger.Error("vault.watch.panic", "error", panicErr)
			}
			err = panicErr
		}
	}()
	defer close(w.events)
	defer w.owner.setActive(false)
	defer w.watcher.Close()

	err = w.mainEventLoop(ctx)

	// All in-flight flushes must finish before the events channel closes.
	w.debouncer.stopAndWait(5 * time.Second)
	return err
}

func (w *watchWorker) mainEventLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			w.processFilesystemEvent(ctx, event)

		case wErr, ok := <-w.watcher.Errors:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			w.handleWatcherError(wErr)
		}
	}
}

func (w *watchWorker) processFilesystemEvent(ctx context.Context, event fsnotify.Event) {
	w.owner.logger.Debug("vault.watch.raw_event", "name", event.Name, "op", event.Op.String())

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			w.addDirectory(ctx, event.Name)
			return
		}
	}

	path, ok := w.owner.resolve(event.Name)
	if !ok {
		return
	}
	eType := mapEventType(event)
	if eType == "" {
		return
	}

	w.sendEvent(ctx, core.Event{
		Type:      eType,
		Path:      path,
		Timestamp: time.Now().Unix(),
	})
}

// addDirectory starts watching a newly created directory and reports the
// notes that were written into it before the watch was in place.
func (w *watchWorker) addDirectory(ctx context.Context, dir string) {
	if w.owner.hidden(dir) {
		return
	}
	if err := w.owner.recursiveAdd(w.watcher, dir); err != nil {
		w.handleWatcherError(err)
		return
	}

	_ = filepath.WalkDir(dir, func(name string, d iofs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if name != dir && w.owner.hidden(name) {
				return filepath.SkipDir
			}
			return nil
		}
		if path, ok := w.owner.resolve(name); ok {
			w.sendEvent(ctx, core.Event{Type: core.EventCreate, Path: path, Timestamp: time.Now().Unix()})
		}
		return nil
	})
}

// sendEvent enqueues an event via the debouncer, protecting against channel
// closure during shutdown.
func (w *watchWorker) sendEvent(ctx context.Context, event core.Event) {
	w.debouncer.add(event, func(e core.Event) {
		defer func() {
			_ = recover()
		}()
		select {
		case w.events <- e:
			w.owner.recordEvent()
			w.owner.logger.Debug("vault.watch.event", "type", string(e.Type), "path", e.Path)
		case <-ctx.Done():
		}
	})
}

func (w *watchWorker) handleWatcherError(err error) {
	w.owner.logger.Error("vault.watch.failed", "error", err)
	if w.owner.config.ErrorHandler != nil {
		w.owner.config.ErrorHandler(err)
	}
}
