// Package vault exposes the operations of a second-brain vault: guarded
// note CRUD, link resolution, search and change watching.
package vault

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/jnalv414/my-second-brain/pkg/core"
	"github.com/jnalv414/my-second-brain/pkg/links"
	"github.com/jnalv414/my-second-brain/pkg/search"
)

// Config wires a Service. Store is required; Watcher is optional.
type Config struct {
	Store             *core.Store
	Watcher           core.Watcher
	Logger            *slog.Logger
	DefaultMaxResults int
}

// Service is the single entry point used by the CLI, HTTP and MCP adapters.
type Service struct {
	store    *core.Store
	watcher  core.Watcher
	resolver *links.Resolver
	engine   *search.Engine
	logger   *slog.Logger
}

// NewService creates a Service.
func NewService(config Config) *Service {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		store:    config.Store,
		watcher:  config.Watcher,
		resolver: links.NewResolver(config.Store, logger),
		engine:   search.NewEngine(config.Store, logger, config.DefaultMaxResults),
		logger:   logger,
	}
}

// Root returns the canonical vault root.
func (s *Service) Root() string {
	return s.store.Root()
}

// ReadNote returns the note at path, or nil if there is none.
func (s *Service) ReadNote(ctx context.Context, path string) (*core.Note, error) {
	return s.store.Read(ctx, path)
}

// WriteNote creates or replaces the note at path.
func (s *Service) WriteNote(ctx context.Context, path, content string, fields map[string]any) (*core.Note, error) {
	return s.store.Write(ctx, path, content, fields)
}

// DeleteNote removes the note at path and reports whether it existed.
func (s *Service) DeleteNote(ctx context.Context, path string) (bool, error) {
	return s.store.Delete(ctx, path)
}

// RenameNote moves the note at from to to and rewrites the wikilinks that
// named its old stem, keeping their heading and alias. It returns the moved
// note, or nil if from does not exist, and the number of notes rewritten.
func (s *Service) RenameNote(ctx context.Context, from, to string) (*core.Note, int, error) {
	note, err := s.store.Read(ctx, from)
	if err != nil || note == nil {
		return nil, 0, err
	}

	existing, err := s.store.Read(ctx, to)
	if err != nil {
		return nil, 0, err
	}
	if existing != nil && existing.Path != note.Path {
		return nil, 0, fmt.Errorf("%w: %s", core.ErrNoteExists, to)
	}

	moved, err := s.store.Write(ctx, to, note.Content, note.Metadata.Fields())
	if err != nil {
		return nil, 0, err
	}
	if moved.Path != note.Path {
		if _, err := s.store.Delete(ctx, note.Path); err != nil {
			return nil, 0, fmt.Errorf("failed to remove %s after rename: %w", note.Path, err)
		}
	}

	oldName, newName := core.Stem(note.Path), core.Stem(moved.Path)
	if oldName == newName {
		s.logger.Info("vault.rename_note.completed", "from", note.Path, "to", moved.Path, "rewritten", 0)
		return moved, 0, nil
	}

	notes, err := s.store.Scan(ctx)
	if err != nil {
		return nil, 0, err
	}

	rewritten := 0
	for _, n := range notes {
		changed := false
		content := links.Rewrite(n.Content, func(l links.Link) string {
			if !strings.EqualFold(l.Target, oldName) {
				return l.Raw
			}
			changed = true
			l.Target = newName
			return links.Format(l)
		})
		if !changed {
			continue
		}

		updated, err := s.store.Write(ctx, n.Path, content, n.Metadata.Fields())
		if err != nil {
			return nil, rewritten, fmt.Errorf("failed to rewrite links in %s: %w", n.Path, err)
		}
		if updated.Path == moved.Path {
			moved = updated
		}
		rewritten++
	}

	s.logger.Info("vault.rename_note.completed", "from", note.Path, "to", moved.Path, "rewritten", rewritten)
	return moved, rewritten, nil
}

// ListNotes returns the sorted note paths under folder.
func (s *Service) ListNotes(ctx context.Context, folder string) ([]string, error) {
	return s.store.List(ctx, folder)
}

// SearchNotes runs a full-text search. maxResults <= 0 uses the default.
func (s *Service) SearchNotes(ctx context.Context, query string, maxResults int) ([]search.Result, error) {
	return s.engine.Search(ctx, query, maxResults)
}

// SuggestNotes fuzzy-matches query against note names.
func (s *Service) SuggestNotes(ctx context.Context, query string, limit int) ([]string, error) {
	return s.engine.Suggest(ctx, query, limit)
}

// GetBacklinks returns the notes that link to name.
func (s *Service) GetBacklinks(ctx context.Context, name string) ([]core.NoteRef, error) {
	return s.resolver.Backlinks(ctx, name)
}

// GetOutgoingLinks returns the existing notes the note at path links to.
func (s *Service) GetOutgoingLinks(ctx context.Context, path string) ([]core.NoteRef, error) {
	return s.resolver.OutgoingLinks(ctx, path)
}

// ExtractLinks parses the wikilinks in content.
func (s *Service) ExtractLinks(content string) []links.Link {
	return links.Extract(content)
}

// BuildGraph builds the full link graph of the vault.
func (s *Service) BuildGraph(ctx context.Context) (*links.Graph, error) {
	return s.resolver.BuildGraph(ctx)
}

// Watch streams note changes until ctx is done.
func (s *Service) Watch(ctx context.Context) (<-chan core.Event, error) {
	if s.watcher == nil {
		return nil, core.ErrWatchUnavailable
	}
	return s.watcher.Watch(ctx)
}
