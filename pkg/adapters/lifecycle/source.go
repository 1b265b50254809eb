package lifecycle

import (
	"context"
	"strings"

	"github.com/aretw0/lifecycle"

	"github.com/jnalv414/my-second-brain/pkg/core"
)

// SourceOption narrows the vault events a source emits.
type SourceOption func(*vaultSource)

// WithFolder only emits events for notes under the vault-relative folder.
func WithFolder(folder string) SourceOption {
	return func(s *vaultSource) {
		folder = strings.Trim(folder, "/")
		if folder != "" {
			s.folder = folder + "/"
		}
	}
}

// WithEventTypes only emits events of the given types.
// No types means every type.
func WithEventTypes(types ...core.EventType) SourceOption {
	return func(s *vaultSource) {
		for _, t := range types {
			s.types[core.EventType(strings.ToUpper(string(t)))] = true
		}
	}
}

type vaultSource struct {
	events <-chan core.Event
	out    chan lifecycle.Event
	folder string
	types  map[core.EventType]bool
}

// NewSource creates a lifecycle.Source that emits vault change events.
// core.Event satisfies lifecycle.Event through its String method.
func NewSource(events <-chan core.Event, opts ...SourceOption) lifecycle.Source {
	s := &vaultSource{
		events: events,
		out:    make(chan lifecycle.Event),
		types:  make(map[core.EventType]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *vaultSource) Events() <-chan lifecycle.Event {
	return s.out
}

func (s *vaultSource) accepts(e core.Event) bool {
	if e.Path == "" {
		return false
	}
	if s.folder != "" && !strings.HasPrefix(e.Path, s.folder) {
		return false
	}
	return len(s.types) == 0 || s.types[e.Type]
}

// Start forwards matching events until ctx is done or the vault stream closes.
func (s *vaultSource) Start(ctx context.Context) error {
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-s.events:
				if !ok {
					return nil
				}
				if !s.accepts(e) {
					continue
				}
				select {
				case s.out <- e:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return nil
}
