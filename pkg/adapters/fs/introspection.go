package fs

import (
	"time"

	"github.com/aretw0/introspection"
)

// StorageState exposes internal state for observability.
type StorageState struct {
	Reads    int64  `json:"reads"`
	Writes   int64  `json:"writes"`
	Removes  int64  `json:"removes"`
	Walks    int64  `json:"walks"`
	FilePerm string `json:"file_perm"`
}

// State implements introspection.Introspectable.
func (s *Storage) State() any {
	return StorageState{
		Reads:    s.reads.Load(),
		Writes:   s.writes.Load(),
		Removes:  s.removes.Load(),
		Walks:    s.walks.Load(),
		FilePerm: s.config.FilePerm.String(),
	}
}

// ComponentType implements introspection.Component.
func (s *Storage) ComponentType() string {
	return "filesystem"
}

// WatcherState exposes internal state for observability.
type WatcherState struct {
	Root          string     `json:"root"`
	Active        bool       `json:"active"`
	WatchedDirs   int        `json:"watched_dirs"`
	EventsEmitted int64      `json:"events_emitted"`
	LastEvent     *time.Time `json:"last_event,omitempty"`
}

// State implements introspection.Introspectable.
func (w *Watcher) State() any {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return WatcherState{
		Root:          w.config.Root,
		Active:        w.active,
		WatchedDirs:   w.dirs,
		EventsEmitted: w.emitted,
		LastEvent:     w.lastEvent,
	}
}

// ComponentType implements introspection.Component.
func (w *Watcher) ComponentType() string {
	return "watcher"
}

var _ introspection.Introspectable = (*Storage)(nil)
var _ introspection.Component = (*Storage)(nil)
var _ introspection.Introspectable = (*Watcher)(nil)
var _ introspection.Component = (*Watcher)(nil)
