package search

import (
	"context"

	"github.com/sahilm/fuzzy"
	"github.com/samber/lo"

	"github.com/jnalv414/my-second-brain/pkg/core"
)

// Suggest fuzzy-matches query against note names and returns the paths of
// the best matches, best first.
func (e *Engine) Suggest(ctx context.Context, query string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = e.maxResults
	}

	paths, err := e.corpus.List(ctx, "")
	if err != nil {
		return nil, err
	}
	stems := lo.Map(paths, func(p string, _ int) string {
		return core.Stem(p)
	})

	suggestions := []string{}
	for _, m := range fuzzy.Find(query, stems) {
		suggestions = append(suggestions, paths[m.Index])
		if len(suggestions) == limit {
			break
		}
	}
	return suggestions, nil
}
