package persona

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownPersona is returned (wrapped) when a lookup key is absent.
var ErrUnknownPersona = errors.New("unknown persona")

// UnknownPersonaError reports a failed lookup together with close matches.
type UnknownPersonaError struct {
	Name        string
	Suggestions []string
}

func (e *UnknownPersonaError) Error() string {
	if len(e.Suggestions) == 0 {
		return fmt.Sprintf("unknown persona %q", e.Name)
	}
	return fmt.Sprintf("unknown persona %q (did you mean %s?)", e.Name, strings.Join(e.Suggestions, ", "))
}

func (e *UnknownPersonaError) Unwrap() error { return ErrUnknownPersona }

// Registry is an immutable name -> Config table. It has no mutation API;
// all accessors return copies, so it is safe for concurrent use.
type Registry struct {
	byName  map[string]Config
	byIdent map[string][]string // identifier -> names (more than one = collision)
	names   []string
}

// NewRegistry builds a registry from defs. The map is copied; later changes
// to defs or its records do not affect the registry.
func NewRegistry(defs map[string]Config) *Registry {
	r := &Registry{
		byName:  make(map[string]Config, len(defs)),
		byIdent: make(map[string][]string, len(defs)),
		names:   make([]string, 0, len(defs)),
	}
	for name, def := range defs {
		r.byName[name] = def.Clone()
		r.names = append(r.names, name)
	}
	sort.Strings(r.names)
	for _, name := range r.names {
		id := Identifier(name)
		r.byIdent[id] = append(r.byIdent[id], name)
	}
	return r
}

// Lookup returns the persona registered under name. The exact identifier form
// ("BACKEND_DEVELOPER") is accepted when it maps to exactly one persona; other
// spellings are not normalized.
// A miss returns an *UnknownPersonaError wrapping ErrUnknownPersona.
func (r *Registry) Lookup(name string) (Config, error) {
	if def, ok := r.byName[name]; ok {
		return def.Clone(), nil
	}
	if name == Identifier(name) {
		if names := r.byIdent[name]; len(names) == 1 {
			return r.byName[names[0]].Clone(), nil
		}
	}
	return Config{}, &UnknownPersonaError{Name: name, Suggestions: r.suggest(name, 3)}
}

// MustLookup is like Lookup but panics on a miss. Intended for package-level
// initialization with names known to be present.
func (r *Registry) MustLookup(name string) Config {
	def, err := r.Lookup(name)
	if err != nil {
		panic(err)
	}
	return def
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.byName[name]
	return ok
}

// Len returns the number of personas.
func (r *Registry) Len() int {
	return len(r.byName)
}

// Names returns all persona names in sorted order.
func (r *Registry) Names() []string {
	return cloneStrings(r.names)
}

// List returns all personas sorted by name.
func (r *Registry) List() []Config {
	out := make([]Config, 0, len(r.names))
	for _, name := range r.names {
		out = append(out, r.byName[name].Clone())
	}
	return out
}

// Map returns a copy of the underlying table.
func (r *Registry) Map() map[string]Config {
	out := make(map[string]Config, len(r.byName))
	for name, def := range r.byName {
		out[name] = def.Clone()
	}
	return out
}

// Categories returns the distinct categories in sorted order.
func (r *Registry) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, name := range r.names {
		cat := r.byName[name].Category()
		if cat == "" || seen[cat] {
			continue
		}
		seen[cat] = true
		out = append(out, cat)
	}
	sort.Strings(out)
	return out
}

// ByCategory returns the personas in category, sorted by name.
func (r *Registry) ByCategory(category string) []Config {
	var out []Config
	for _, name := range r.names {
		if def := r.byName[name]; def.Category() == category {
			out = append(out, def.Clone())
		}
	}
	return out
}

// suggest returns up to limit registered names closest to name by edit distance.
func (r *Registry) suggest(name string, limit int) []string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil
	}
	maxDist := len(name)/3 + 1

	type candidate struct {
		name string
		dist int
	}
	var cands []candidate
	for _, n := range r.names {
		d := levenshtein(name, n)
		if strings.Contains(n, name) {
			d = min(d, 1)
		}
		if d <= maxDist {
			cands = append(cands, candidate{n, d})
		}
	}
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].dist < cands[j].dist
	})

	var out []string
	for i := 0; i < len(cands) && i < limit; i++ {
		out = append(out, cands[i].name)
	}
	return out
}

func levenshtein(a, b string) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
