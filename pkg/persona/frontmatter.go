package persona

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	ErrNoFrontmatter      = errors.New("no frontmatter found")
	ErrMissingDescription = errors.New("missing required field 'description'")
)

// Frontmatter keys with a dedicated meaning. Every other scalar key is kept in Metadata.
const (
	keyName         = "name"
	keyDescription  = "description"
	keyTools        = "tools"
	keyCapabilities = "capabilities"
)

// reservedKey reports whether key has a dedicated field and so must not
// appear in Metadata.
func reservedKey(key string) bool {
	switch key {
	case keyName, keyDescription, keyTools, keyCapabilities:
		return true
	}
	return false
}

// frontmatterData represents the YAML frontmatter fields in a persona .md file.
type frontmatterData struct {
	Name         string         `yaml:"name"`
	Description  string         `yaml:"description"`
	Tools        flexStringList `yaml:"tools"`
	Capabilities flexStringList `yaml:"capabilities"`
}

// flexStringList handles YAML that can be either a comma-separated string or a list.
// e.g., "Read, Glob, Grep" or ["Read", "Glob", "Grep"]
type flexStringList []string

func (f *flexStringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var list []string
		if err := value.Decode(&list); err != nil {
			return err
		}
		*f = list
		return nil
	case yaml.ScalarNode:
		*f = splitList(value.Value)
		return nil
	default:
		return fmt.Errorf("expected string or list, got YAML kind %d", value.Kind)
	}
}

// splitList splits on commas that are not inside parentheses, so that
// "read, task(a,b)" yields two entries.
func splitList(s string) []string {
	var (
		result []string
		depth  int
		start  int
	)
	emit := func(part string) {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				emit(s[start:i])
				start = i + 1
			}
		}
	}
	emit(s[start:])
	return result
}

// splitFrontmatter extracts YAML frontmatter and body from Markdown content.
// Frontmatter is delimited by "---" lines at the start of the file.
func splitFrontmatter(data []byte) (yamlPart []byte, body string) {
	content := string(data)

	if !strings.HasPrefix(content, "---") {
		return nil, content
	}

	rest := content[3:]
	if len(rest) > 0 && rest[0] == '\n' {
		rest = rest[1:]
	} else if len(rest) > 1 && rest[0] == '\r' && rest[1] == '\n' {
		rest = rest[2:]
	}

	endIdx := strings.Index(rest, "\n---")
	if endIdx < 0 {
		return nil, content
	}

	yamlContent := strings.TrimSuffix(rest[:endIdx], "\r")
	remaining := rest[endIdx+4:]

	if len(remaining) > 0 && remaining[0] == '\n' {
		remaining = remaining[1:]
	} else if len(remaining) > 1 && remaining[0] == '\r' && remaining[1] == '\n' {
		remaining = remaining[2:]
	}

	return []byte(yamlContent), remaining
}

// ParseFile reads a persona definition from a Markdown file with YAML frontmatter.
func ParseFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading persona file %s: %w", path, err)
	}
	return ParseContent(data, path)
}

// ParseContent parses a persona definition from raw content with an associated file path.
// The path is used for error messages and to derive the name when frontmatter omits it.
func ParseContent(data []byte, filePath string) (*Config, error) {
	yamlPart, body := splitFrontmatter(data)
	if len(yamlPart) == 0 {
		return nil, fmt.Errorf("%s: %w", filePath, ErrNoFrontmatter)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(yamlPart, &root); err != nil {
		return nil, fmt.Errorf("parsing YAML in %s: %w", filePath, err)
	}
	var fm frontmatterData
	if err := root.Decode(&fm); err != nil {
		return nil, fmt.Errorf("parsing YAML in %s: %w", filePath, err)
	}

	if fm.Name == "" {
		base := filepath.Base(filePath)
		fm.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if fm.Description == "" {
		return nil, fmt.Errorf("%s: %w", filePath, ErrMissingDescription)
	}

	tools := NormalizeTools(fm.Tools)
	caps := NormalizeTools(fm.Capabilities)
	if len(caps) == 0 {
		caps = cloneStrings(tools)
	}

	return &Config{
		Type:            fm.Name,
		Description:     strings.TrimSpace(fm.Description),
		Capabilities:    caps,
		ToolPermissions: tools,
		SystemPrompt:    strings.TrimSpace(body),
		Metadata:        extraMetadata(&root),
		FilePath:        filePath,
	}, nil
}

// extraMetadata collects scalar frontmatter values that have no dedicated field.
// Lists are flattened to a comma-separated string; nested maps are skipped.
func extraMetadata(root *yaml.Node) map[string]string {
	doc := root
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		doc = doc.Content[0]
	}
	if doc.Kind != yaml.MappingNode {
		return nil
	}

	var meta map[string]string
	for i := 0; i+1 < len(doc.Content); i += 2 {
		key, val := doc.Content[i].Value, doc.Content[i+1]
		if reservedKey(key) {
			continue
		}

		var value string
		switch val.Kind {
		case yaml.ScalarNode:
			value = val.Value
		case yaml.SequenceNode:
			parts := make([]string, 0, len(val.Content))
			for _, item := range val.Content {
				if item.Kind == yaml.ScalarNode {
					parts = append(parts, item.Value)
				}
			}
			value = strings.Join(parts, ", ")
		default:
			continue
		}
		if meta == nil {
			meta = make(map[string]string)
		}
		meta[key] = value
	}
	return meta
}

// Render writes c in the Markdown+frontmatter format read by ParseContent.
func Render(c Config) ([]byte, error) {
	doc := &yaml.Node{Kind: yaml.MappingNode}
	add := func(key, value string) {
		doc.Content = append(doc.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value},
		)
	}

	add(keyName, c.Type)
	add(keyDescription, c.Description)
	add(keyTools, strings.Join(c.ToolPermissions, ", "))
	if !slices.Equal(c.Capabilities, c.ToolPermissions) {
		add(keyCapabilities, strings.Join(c.Capabilities, ", "))
	}

	keys := make([]string, 0, len(c.Metadata))
	for k := range c.Metadata {
		if !reservedKey(k) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		add(k, c.Metadata[k])
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encoding frontmatter for %s: %w", c.Type, err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding frontmatter for %s: %w", c.Type, err)
	}
	buf.WriteString("---\n\n")
	buf.WriteString(strings.TrimSpace(c.SystemPrompt))
	buf.WriteString("\n")
	return buf.Bytes(), nil
}
