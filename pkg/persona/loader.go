package persona

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"
)

// categoryPrefix matches ordering prefixes such as "01-" on category directories.
var categoryPrefix = regexp.MustCompile(`^\d+[-_]`)

// Loader discovers persona definitions in user and project directories.
type Loader struct {
	userDir    string
	projectDir string
	log        *zap.Logger
}

// NewLoader creates a Loader. Either directory may be empty to skip it.
// A nil logger discards output.
func NewLoader(userDir, projectDir string, log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{
		userDir:    userDir,
		projectDir: projectDir,
		log:        log,
	}
}

// Dirs returns the directories this loader scans, skipping empty ones.
func (l *Loader) Dirs() []string {
	var dirs []string
	if l.userDir != "" {
		dirs = append(dirs, l.userDir)
	}
	if l.projectDir != "" {
		dirs = append(dirs, l.projectDir)
	}
	return dirs
}

// LoadAll loads every file-based persona. Missing directories are skipped.
// Project definitions override user definitions with the same name.
func (l *Loader) LoadAll() (map[string]Config, error) {
	result := make(map[string]Config)

	scan := func(dir string, source Source, priority int) error {
		if dir == "" {
			return nil
		}
		info, err := os.Stat(dir)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return fmt.Errorf("stat persona dir %s: %w", dir, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("persona dir %s is not a directory", dir)
		}
		defs, err := LoadFS(os.DirFS(dir), ".", source, priority, l.log.With(zap.String("dir", dir)))
		if err != nil {
			return err
		}
		for name, def := range defs {
			def.FilePath = filepath.Join(dir, filepath.FromSlash(def.FilePath))
			result[name] = def
		}
		return nil
	}

	if err := scan(l.userDir, SourceUser, PriorityUser); err != nil {
		return nil, err
	}
	if err := scan(l.projectDir, SourceProject, PriorityProject); err != nil {
		return nil, err
	}
	return result, nil
}

// LoadFS parses every .md file below root in fsys. README files and files
// that fail to parse are skipped with a warning. When a name appears twice,
// the first file in lexical path order wins.
func LoadFS(fsys fs.FS, root string, source Source, priority int, log *zap.Logger) (map[string]Config, error) {
	if log == nil {
		log = zap.NewNop()
	}

	pattern := "**/*.md"
	if root != "" && root != "." {
		pattern = path.Join(root, pattern)
	}
	matches, err := doublestar.Glob(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("globbing %s: %w", pattern, err)
	}
	sort.Strings(matches)

	result := make(map[string]Config, len(matches))
	for _, p := range matches {
		if strings.EqualFold(path.Base(p), "README.md") {
			continue
		}

		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			log.Warn("skipping unreadable persona file", zap.String("path", p), zap.Error(err))
			continue
		}
		def, err := ParseContent(data, p)
		if err != nil {
			log.Warn("skipping invalid persona file", zap.String("path", p), zap.Error(err))
			continue
		}

		if def.Category() == "" {
			rel := strings.TrimPrefix(p, strings.TrimSuffix(root, "/")+"/")
			if cat := categoryFromPath(rel); cat != "" {
				if def.Metadata == nil {
					def.Metadata = make(map[string]string)
				}
				def.Metadata[MetaCategory] = cat
			}
		}

		if prev, ok := result[def.Type]; ok {
			log.Warn("duplicate persona name",
				zap.String("name", def.Type),
				zap.String("kept", prev.FilePath),
				zap.String("skipped", p))
			continue
		}
		result[def.Type] = def.withSource(source, priority)
	}
	return result, nil
}

// categoryFromPath derives a category from the directory of a relative file
// path: "01-core-development/api-designer.md" -> "core-development".
func categoryFromPath(rel string) string {
	dir := path.Dir(rel)
	if dir == "." || dir == "/" {
		return ""
	}
	return categoryPrefix.ReplaceAllString(path.Base(dir), "")
}
