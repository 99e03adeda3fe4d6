package persona

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"
)

// uncategorized is used for imported files that sit directly in the source root.
const uncategorized = "uncategorized"

// ImportSummary reports the outcome of ImportTree.
type ImportSummary struct {
	Imported   []string          `json:"imported"`
	Skipped    map[string]string `json:"skipped,omitempty"` // name -> reason
	Categories map[string]int    `json:"categories"`
}

// ImportTree reads a foreign subagent tree laid out as <category>/<name>.md
// (for example an awesome-claude-code-subagents checkout), normalizes every
// definition and writes it to dst/<category>/<name>.md. Definitions that fail
// validation are skipped and reported. Existing files in dst are overwritten.
func ImportTree(src, dst string, log *zap.Logger) (*ImportSummary, error) {
	if log == nil {
		log = zap.NewNop()
	}
	info, err := os.Stat(src)
	if err != nil {
		return nil, fmt.Errorf("import source: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("import source %s is not a directory", src)
	}

	defs, err := LoadFS(os.DirFS(src), ".", SourceProject, PriorityProject, log)
	if err != nil {
		return nil, fmt.Errorf("importing %s: %w", src, err)
	}

	return WriteTree(defs, dst, log)
}

// WriteTree validates defs and writes each valid definition to
// dst/<category>/<name>.md, using "uncategorized" when a definition has no
// category. Invalid definitions are skipped and reported in the summary.
// Existing files are overwritten.
func WriteTree(defs map[string]Config, dst string, log *zap.Logger) (*ImportSummary, error) {
	if log == nil {
		log = zap.NewNop()
	}
	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)

	summary := &ImportSummary{Categories: make(map[string]int)}
	for _, name := range names {
		def := defs[name]
		if err := ValidateConfig(name, def); err != nil {
			if summary.Skipped == nil {
				summary.Skipped = make(map[string]string)
			}
			summary.Skipped[name] = err.Error()
			log.Warn("skipping persona", zap.String("name", name), zap.Error(err))
			continue
		}

		category := def.Category()
		if category == "" {
			category = uncategorized
		}
		data, err := Render(def)
		if err != nil {
			return summary, err
		}
		out := filepath.Join(dst, category, name+".md")
		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return summary, fmt.Errorf("creating %s: %w", filepath.Dir(out), err)
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return summary, fmt.Errorf("writing %s: %w", out, err)
		}

		summary.Imported = append(summary.Imported, name)
		summary.Categories[category]++
		log.Debug("imported persona", zap.String("name", name), zap.String("path", out))
	}
	return summary, nil
}
