// Package search implements scored full-text search over the notes of a
// vault.
package search

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strings"
	"unicode"

	"github.com/jnalv414/my-second-brain/pkg/core"
)

const (
	// DefaultMaxResults applies when a caller asks for zero or fewer results.
	DefaultMaxResults = 10
	// ContextChars is the number of characters kept on each side of a match.
	ContextChars = 100
	// MaxExcerpts caps the excerpts attached to a result.
	MaxExcerpts = 3
)

// Result is a matching note with its relevance in [0, 1].
type Result struct {
	Note     *core.Note `json:"note"`
	Score    float64    `json:"score"`
	Excerpts []string   `json:"excerpts"`
}

// Engine scores every note of the corpus against a query.
type Engine struct {
	corpus     core.Corpus
	logger     *slog.Logger
	maxResults int
}

// NewEngine creates an Engine. defaultMax replaces DefaultMaxResults when
// positive.
func NewEngine(corpus core.Corpus, logger *slog.Logger, defaultMax int) *Engine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if defaultMax <= 0 {
		defaultMax = DefaultMaxResults
	}
	return &Engine{corpus: corpus, logger: logger, maxResults: defaultMax}
}

// Search returns the notes matching any whitespace-separated term of query,
// best first. A title hit counts double. Notes with equal scores keep their
// list order.
func (e *Engine) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	if maxResults <= 0 {
		maxResults = e.maxResults
	}

	results := []Result{}
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return results, nil
	}

	notes, err := e.corpus.Scan(ctx)
	if err != nil {
		return nil, err
	}

	for _, note := range notes {
		title := strings.ToLower(note.Title)
		content := strings.ToLower(note.Content)

		var titleHits, contentHits int
		for _, term := range terms {
			if strings.Contains(title, term) {
				titleHits++
			}
			if strings.Contains(content, term) {
				contentHits++
			}
		}
		if titleHits == 0 && contentHits == 0 {
			continue
		}

		score := float64(titleHits*2+contentHits) / float64(len(terms)*3)
		if score > 1 {
			score = 1
		}

		results = append(results, Result{
			Note:     note,
			Score:    score,
			Excerpts: Excerpts(note.Content, terms),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > maxResults {
		results = results[:maxResults]
	}

	e.logger.Info("vault.search.completed", "query", query, "results", len(results))
	return results, nil
}

// Excerpts cuts, for each term in order, the text around its first
// case-insensitive occurrence in content. Clipped sides are marked with
// "...". Terms are expected in lower case.
func Excerpts(content string, terms []string) []string {
	excerpts := []string{}
	text := []rune(content)
	lower := make([]rune, len(text))
	for i, r := range text {
		lower[i] = unicode.ToLower(r)
	}

	for _, term := range terms {
		needle := []rune(term)
		idx := indexRunes(lower, needle)
		if idx < 0 {
			continue
		}

		start := max(0, idx-ContextChars)
		end := min(len(text), idx+len(needle)+ContextChars)

		excerpt := string(text[start:end])
		if start > 0 {
			excerpt = "..." + excerpt
		}
		if end < len(text) {
			excerpt += "..."
		}
		excerpts = append(excerpts, excerpt)
		if len(excerpts) == MaxExcerpts {
			break
		}
	}
	return excerpts
}

func indexRunes(haystack, needle []rune) int {
	if len(needle) == 0 {
		return 0
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		match := true
		for j, r := range needle {
			if haystack[i+j] != r {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
