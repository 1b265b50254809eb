package core

import (
	"github.com/aretw0/introspection"
)

// StoreState exposes internal state for observability.
type StoreState struct {
	Root         string `json:"root"`
	Extension    string `json:"extension"`
	HiddenPrefix string `json:"hidden_prefix"`
	CacheEnabled bool   `json:"cache_enabled"`
	CacheSize    int    `json:"cache_size"`
	ScanWorkers  int    `json:"scan_workers"`
	StorageType  string `json:"storage_type"`
	Storage      any    `json:"storage,omitempty"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	storageType := "storage"
	if comp, ok := s.storage.(introspection.Component); ok {
		storageType = comp.ComponentType()
	}

	state := StoreState{
		Root:         s.guard.Root(),
		Extension:    s.config.Extension,
		HiddenPrefix: s.config.HiddenPrefix,
		CacheEnabled: s.cache != nil,
		ScanWorkers:  s.config.ScanWorkers,
		StorageType:  storageType,
	}
	if in, ok := s.storage.(introspection.Introspectable); ok {
		state.Storage = in.State()
	}
	if s.cache != nil {
		state.CacheSize = s.cache.Len()
	}
	return state
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "store"
}

var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)
