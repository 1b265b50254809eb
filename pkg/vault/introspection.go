package vault

import (
	"github.com/aretw0/introspection"
)

// ServiceState exposes internal state for observability.
type ServiceState struct {
	Root    string `json:"root"`
	Store   any    `json:"store"`
	Watcher any    `json:"watcher,omitempty"`
}

// State implements introspection.Introspectable.
func (s *Service) State() any {
	state := ServiceState{
		Root:  s.store.Root(),
		Store: s.store.State(),
	}
	if in, ok := s.watcher.(introspection.Introspectable); ok {
		state.Watcher = in.State()
	}
	return state
}

// ComponentType implements introspection.Component.
func (s *Service) ComponentType() string {
	return "service"
}

var _ introspection.Introspectable = (*Service)(nil)
var _ introspection.Component = (*Service)(nil)
