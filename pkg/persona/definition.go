// Package persona defines subagent persona records and the immutable
// registry that serves them by name, along with the Markdown codec, loaders
// and integrity checks used to build it.
package persona

import "maps"

// Source identifies where a persona definition came from.
type Source int

const (
	SourceEmbedded Source = iota // compiled into the binary
	SourceCLI                    // JSON/JSON5 persona file
	SourceUser                   // user persona directory
	SourceProject                // project persona directory
)

// Default priorities per source. Higher overrides lower on merge.
const (
	PriorityEmbedded = 0
	PriorityCLI      = 5
	PriorityUser     = 20
	PriorityProject  = 30
)

// String returns a human-readable label for the source.
func (s Source) String() string {
	switch s {
	case SourceEmbedded:
		return "embedded"
	case SourceCLI:
		return "cli"
	case SourceUser:
		return "user"
	case SourceProject:
		return "project"
	default:
		return "unknown"
	}
}

// Well-known metadata keys.
const (
	MetaCategory = "category"
	MetaModel    = "model"
)

// Config is a single persona record.
type Config struct {
	Type            string            `json:"type" yaml:"type"`
	Description     string            `json:"description" yaml:"description"`
	Capabilities    []string          `json:"capabilities" yaml:"capabilities"`
	ToolPermissions []string          `json:"tool_permissions" yaml:"tool_permissions"`
	SystemPrompt    string            `json:"system_prompt" yaml:"system_prompt"`
	Metadata        map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`

	// Loader metadata (not serialized)
	Source   Source `json:"-" yaml:"-"`
	Priority int    `json:"-" yaml:"-"`
	FilePath string `json:"-" yaml:"-"`
}

// Category returns the catalog category, or "" when none was recorded.
func (c Config) Category() string {
	return c.Metadata[MetaCategory]
}

// Model returns the preferred model alias or ID, or "" to inherit.
func (c Config) Model() string {
	return c.Metadata[MetaModel]
}

// Clone returns a deep copy of c.
func (c Config) Clone() Config {
	out := c
	out.Capabilities = cloneStrings(c.Capabilities)
	out.ToolPermissions = cloneStrings(c.ToolPermissions)
	if c.Metadata != nil {
		out.Metadata = maps.Clone(c.Metadata)
	}
	return out
}

// withSource returns a copy of c tagged with the given source and priority.
func (c Config) withSource(source Source, priority int) Config {
	c.Source = source
	c.Priority = priority
	return c
}

func cloneStrings(ss []string) []string {
	if ss == nil {
		return nil
	}
	out := make([]string, len(ss))
	copy(out, ss)
	return out
}
