package core

import (
	"maps"
	"slices"
	"sync"
	"time"
)

// cacheEntry is a decoded note together with the file fingerprint it was
// decoded from.
type cacheEntry struct {
	note    Note
	size    int64
	modTime time.Time
}

// noteCache keeps decoded notes in memory, keyed by absolute path.
// An entry is only served while the file fingerprint (size, mtime) still
// matches; writes and deletes made through the store drop the entry.
type noteCache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
}

func newNoteCache() *noteCache {
	return &noteCache{entries: make(map[string]*cacheEntry)}
}

// Get retrieves a deep copy of the cached note if the fingerprint is fresh.
func (c *noteCache) Get(path string, info FileInfo) (*Note, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[path]
	if !ok {
		return nil, false
	}
	if entry.size != info.Size || !entry.modTime.Equal(info.ModTime) {
		return nil, false
	}

	note := cloneNote(entry.note)
	return &note, true
}

// Set stores a deep copy of note for the given fingerprint.
func (c *noteCache) Set(path string, info FileInfo, note Note) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[path] = &cacheEntry{
		note:    cloneNote(note),
		size:    info.Size,
		modTime: info.ModTime,
	}
}

// Delete removes a single entry from the cache.
func (c *noteCache) Delete(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, path)
}

// Len returns the number of entries in the cache.
func (c *noteCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// cloneNote copies note so that callers cannot mutate cached state through
// its slices or nested metadata values.
func cloneNote(note Note) Note {
	note.Metadata.Tags = slices.Clone(note.Metadata.Tags)
	note.Metadata.Aliases = slices.Clone(note.Metadata.Aliases)
	if note.Metadata.Extra != nil {
		extra := maps.Clone(note.Metadata.Extra)
		for k, v := range extra {
			extra[k] = cloneValue(v)
		}
		note.Metadata.Extra = extra
	}
	return note
}

// cloneValue deep-copies the container types the YAML decoder produces.
func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = cloneValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return slices.Clone(val)
	default:
		return v
	}
}
