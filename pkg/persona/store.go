package persona

import (
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// StoreOptions configures a Store.
type StoreOptions struct {
	// Embedded is the lowest-priority layer, usually the compiled-in catalog.
	Embedded map[string]Config
	// Loader supplies user and project directory personas. Optional.
	Loader *Loader
	// PersonaFiles are JSON/JSON5 persona files layered above Embedded.
	PersonaFiles []string
	// DisabledTools are stripped from every persona's tool permissions.
	DisabledTools []string
	// OnReload is called with each newly published registry.
	OnReload func(*Registry)
	Logger   *zap.Logger
}

// Store publishes the current Registry. Each Reload builds a complete new
// registry and swaps it in atomically; readers never see a partial table.
type Store struct {
	opts StoreOptions
	log  *zap.Logger

	reloadMu sync.Mutex
	current  atomic.Pointer[Registry]
}

// NewStore builds the initial registry. It fails if the first load fails.
func NewStore(opts StoreOptions) (*Store, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{opts: opts, log: log}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Registry returns the currently published registry.
func (s *Store) Registry() *Registry {
	return s.current.Load()
}

// Lookup is shorthand for s.Registry().Lookup(name).
func (s *Store) Lookup(name string) (Config, error) {
	return s.Registry().Lookup(name)
}

// Reload rebuilds the registry from all sources. On error the previously
// published registry stays in place.
func (s *Store) Reload() error {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	layers := []map[string]Config{s.opts.Embedded}
	for _, path := range s.opts.PersonaFiles {
		defs, err := LoadPersonaFile(path)
		if err != nil {
			return fmt.Errorf("reloading personas: %w", err)
		}
		layers = append(layers, defs)
	}
	if s.opts.Loader != nil {
		defs, err := s.opts.Loader.LoadAll()
		if err != nil {
			return fmt.Errorf("reloading personas: %w", err)
		}
		layers = append(layers, defs)
	}

	merged := Resolve(layers...)
	if len(s.opts.DisabledTools) > 0 {
		for name, def := range merged {
			merged[name] = def.WithoutTools(s.opts.DisabledTools)
		}
	}

	reg := NewRegistry(merged)
	prev := s.current.Swap(reg)
	if prev == nil {
		s.log.Debug("persona registry loaded", zap.Int("personas", reg.Len()))
	} else {
		s.log.Info("persona registry reloaded",
			zap.Int("personas", reg.Len()),
			zap.Int("previous", prev.Len()))
	}
	if s.opts.OnReload != nil {
		s.opts.OnReload(reg)
	}
	return nil
}
