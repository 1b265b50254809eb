package links

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/jnalv414/my-second-brain/pkg/core"
)

// Resolver answers link queries by re-reading the corpus on every call.
type Resolver struct {
	corpus core.Corpus
	logger *slog.Logger
}

// NewResolver creates a Resolver over corpus.
func NewResolver(corpus core.Corpus, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Resolver{corpus: corpus, logger: logger}
}

// Backlinks returns the notes linking to name, matched case-insensitively
// against link targets. A note is reported once, on its first matching link.
func (r *Resolver) Backlinks(ctx context.Context, name string) ([]core.NoteRef, error) {
	notes, err := r.corpus.Scan(ctx)
	if err != nil {
		return nil, err
	}

	want := strings.ToLower(name)
	refs := []core.NoteRef{}
	for _, note := range notes {
		for _, link := range Extract(note.Content) {
			if strings.ToLower(link.Target) == want {
				refs = append(refs, core.NoteRef{Name: note.Title, Path: note.Path})
				break
			}
		}
	}
	return refs, nil
}

// OutgoingLinks returns the resolvable links of the note at path. Each link
// resolves to the first note, in list order, whose filename stem matches
// the target case-insensitively; unresolved links are dropped.
func (r *Resolver) OutgoingLinks(ctx context.Context, path string) ([]core.NoteRef, error) {
	note, err := r.corpus.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	refs := []core.NoteRef{}
	if note == nil {
		return refs, nil
	}

	found := Extract(note.Content)
	if len(found) == 0 {
		return refs, nil
	}

	paths, err := r.corpus.List(ctx, "")
	if err != nil {
		return nil, err
	}
	byStem := stemIndex(paths)

	for _, link := range found {
		if target, ok := byStem[strings.ToLower(link.Target)]; ok {
			refs = append(refs, core.NoteRef{Name: link.Target, Path: target})
		}
	}
	return refs, nil
}

// stemIndex maps lowercased stems to the first path carrying them.
func stemIndex(paths []string) map[string]string {
	index := make(map[string]string, len(paths))
	for _, p := range paths {
		key := strings.ToLower(core.Stem(p))
		if _, taken := index[key]; !taken {
			index[key] = p
		}
	}
	return index
}
