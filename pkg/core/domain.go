// Package core holds the vault domain: notes, their metadata, the path
// guard that keeps every access inside the vault root, the frontmatter codec
// and the note store built on top of a Storage collaborator.
package core

import "time"

// NoteMetadata is the parsed frontmatter of a note.
// Empty strings mean the field was absent.
type NoteMetadata struct {
	Tags     []string       `json:"tags"`
	Aliases  []string       `json:"aliases"`
	Created  string         `json:"created,omitempty"`
	Modified string         `json:"modified,omitempty"`
	Title    string         `json:"title,omitempty"`
	Extra    map[string]any `json:"extra,omitempty"`
}

// Note is a document of the vault, identified by its path.
type Note struct {
	Path       string       `json:"path"` // slash-separated, relative to the vault root
	Title      string       `json:"title"`
	Content    string       `json:"content"` // body only, never the metadata block
	Metadata   NoteMetadata `json:"metadata"`
	ModifiedAt time.Time    `json:"modified_at"`
}

// NoteRef is the {name, path} pair returned by link queries.
type NoteRef struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// EventType represents the type of change in the vault.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// Event represents a change to a note file.
type Event struct {
	Type      EventType `json:"type"`
	Path      string    `json:"path"`
	Timestamp int64     `json:"timestamp"` // Unix timestamp
}

func (e Event) String() string {
	return string(e.Type) + " " + e.Path
}
