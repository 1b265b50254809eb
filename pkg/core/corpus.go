package core

import "context"

// Corpus is the read side of a vault as seen by link resolution and search.
// *Store implements it.
type Corpus interface {
	List(ctx context.Context, folder string) ([]string, error)
	Read(ctx context.Context, path string) (*Note, error)
	Scan(ctx context.Context) ([]*Note, error)
}

var _ Corpus = (*Store)(nil)
