// Package typed gives a struct-shaped view of note frontmatter.
package typed

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jnalv414/my-second-brain/pkg/core"
)

// Notes is the subset of the vault service a Repository needs.
type Notes interface {
	ReadNote(ctx context.Context, path string) (*core.Note, error)
	WriteNote(ctx context.Context, path, content string, fields map[string]any) (*core.Note, error)
	DeleteNote(ctx context.Context, path string) (bool, error)
	ListNotes(ctx context.Context, folder string) ([]string, error)
}

// NoteModel is a note whose frontmatter is decoded into T.
type NoteModel[T any] struct {
	Path    string
	Title   string
	Content string
	Data    T        // frontmatter, decoded through its JSON tags
	Saver   Saver[T] // set by the Repository that produced the model
}

// Saver persists a NoteModel.
type Saver[T any] interface {
	Save(ctx context.Context, note *NoteModel[T]) error
}

// Save persists the note using the attached saver.
func (n *NoteModel[T]) Save(ctx context.Context) error {
	if n.Saver == nil {
		return fmt.Errorf("note %s is detached (missing Saver)", n.Path)
	}
	return n.Saver.Save(ctx, n)
}

// Repository reads and writes notes whose frontmatter has the shape of T.
type Repository[T any] struct {
	notes Notes
}

// NewRepository creates a typed view over notes.
func NewRepository[T any](notes Notes) *Repository[T] {
	return &Repository[T]{notes: notes}
}

// Save writes the note, encoding Data as its frontmatter.
func (r *Repository[T]) Save(ctx context.Context, note *NoteModel[T]) error {
	data, err := json.Marshal(note.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal typed data: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("failed to convert typed data to fields: %w", err)
	}

	if note.Saver == nil {
		note.Saver = r
	}

	written, err := r.notes.WriteNote(ctx, note.Path, note.Content, fields)
	if err != nil {
		return err
	}
	note.Title = written.Title
	return nil
}

// Get reads the note at path. It returns nil when there is none.
func (r *Repository[T]) Get(ctx context.Context, path string) (*NoteModel[T], error) {
	note, err := r.notes.ReadNote(ctx, path)
	if err != nil || note == nil {
		return nil, err
	}
	return fromNote(note, r)
}

// List reads every note under folder.
func (r *Repository[T]) List(ctx context.Context, folder string) ([]*NoteModel[T], error) {
	paths, err := r.notes.ListNotes(ctx, folder)
	if err != nil {
		return nil, err
	}

	result := make([]*NoteModel[T], 0, len(paths))
	for _, p := range paths {
		model, err := r.Get(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("failed to process note %s: %w", p, err)
		}
		if model != nil {
			result = append(result, model)
		}
	}
	return result, nil
}

// Delete removes the note at path and reports whether it existed.
func (r *Repository[T]) Delete(ctx context.Context, path string) (bool, error) {
	return r.notes.DeleteNote(ctx, path)
}

func fromNote[T any](note *core.Note, saver Saver[T]) (*NoteModel[T], error) {
	raw, err := json.Marshal(note.Metadata.Fields())
	if err != nil {
		return nil, fmt.Errorf("metadata marshal failed: %w", err)
	}

	var data T
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("unmarshal to target type failed: %w", err)
	}

	return &NoteModel[T]{
		Path:    note.Path,
		Title:   note.Title,
		Content: note.Content,
		Data:    data,
		Saver:   saver,
	}, nil
}
