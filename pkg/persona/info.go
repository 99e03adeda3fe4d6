package persona

// Info is a one-line summary of a persona for listings.
type Info struct {
	Name        string   `json:"name" yaml:"name"`
	Category    string   `json:"category,omitempty" yaml:"category,omitempty"`
	Description string   `json:"description" yaml:"description"`
	Model       string   `json:"model,omitempty" yaml:"model,omitempty"`
	Tools       []string `json:"tools" yaml:"tools"`
	Source      string   `json:"source" yaml:"source"`
	FilePath    string   `json:"file_path,omitempty" yaml:"file_path,omitempty"`
}

// InfoOf summarizes c.
func InfoOf(c Config) Info {
	return Info{
		Name:        c.Type,
		Category:    c.Category(),
		Description: c.Description,
		Model:       c.Model(),
		Tools:       cloneStrings(c.ToolPermissions),
		Source:      c.Source.String(),
		FilePath:    c.FilePath,
	}
}

// ListInfo returns summaries of every persona in reg, sorted by name.
// A non-empty category restricts the listing to that category.
func ListInfo(reg *Registry, category string) []Info {
	var defs []Config
	if category == "" {
		defs = reg.List()
	} else {
		defs = reg.ByCategory(category)
	}
	out := make([]Info, 0, len(defs))
	for _, d := range defs {
		out = append(out, InfoOf(d))
	}
	return out
}
