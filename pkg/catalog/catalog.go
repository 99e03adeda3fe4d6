// Package catalog embeds the built-in persona tree and serves it as a registry.
package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"sync"

	"github.com/selvaggiesteban/hands-on-ai-sub000/pkg/persona"
)

// Root is the directory of the embedded persona tree.
const Root = "agents"

//go:embed agents
var agentFiles embed.FS

var (
	loadOnce sync.Once
	loadErr  error
	registry *persona.Registry
)

// FS returns the embedded persona tree rooted at agents/.
func FS() fs.FS {
	sub, err := fs.Sub(agentFiles, Root)
	if err != nil {
		panic(err) // the directory is embedded at build time
	}
	return sub
}

// Load parses the embedded catalog once and returns a copy of it keyed by
// persona name. All entries carry persona.SourceEmbedded.
func Load() (map[string]persona.Config, error) {
	reg, err := Registry()
	if err != nil {
		return nil, err
	}
	return reg.Map(), nil
}

// Registry returns the process-wide registry of embedded personas. The
// registry is shared; it is immutable, so no copy is made.
func Registry() (*persona.Registry, error) {
	loadOnce.Do(func() {
		var defs map[string]persona.Config
		defs, loadErr = persona.LoadFS(agentFiles, Root, persona.SourceEmbedded, persona.PriorityEmbedded, nil)
		if loadErr == nil && len(defs) == 0 {
			loadErr = fmt.Errorf("embedded catalog %s is empty", Root)
		}
		if loadErr == nil {
			registry = persona.NewRegistry(defs)
		}
	})
	return registry, loadErr
}

// Lookup finds an embedded persona by name.
func Lookup(name string) (persona.Config, error) {
	reg, err := Registry()
	if err != nil {
		return persona.Config{}, err
	}
	return reg.Lookup(name)
}
