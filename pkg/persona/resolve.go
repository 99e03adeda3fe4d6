package persona

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"

	json5 "github.com/yosuke-furukawa/json5/encoding/json5"
)

// Resolve merges persona definitions from multiple sources. Layers are applied
// in order; a definition replaces an earlier one with the same name when its
// priority is greater than or equal to the existing one.
func Resolve(layers ...map[string]Config) map[string]Config {
	result := make(map[string]Config)
	for _, layer := range layers {
		for name, def := range layer {
			if existing, ok := result[name]; ok && def.Priority < existing.Priority {
				continue
			}
			result[name] = def
		}
	}
	return result
}

// ParseJSONPersonas parses persona definitions from a JSON object of
// name -> Config. Missing types default to the key and missing capabilities
// default to the tool permissions.
func ParseJSONPersonas(data []byte) (map[string]Config, error) {
	var raw map[string]Config
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing persona JSON: %w", err)
	}
	return fromRaw(raw), nil
}

// ParseJSON5Personas is ParseJSONPersonas for hand-edited files: comments,
// trailing commas and unquoted keys are accepted.
func ParseJSON5Personas(data []byte) (map[string]Config, error) {
	var raw map[string]Config
	if err := json5.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing persona JSON5: %w", err)
	}
	return fromRaw(raw), nil
}

// LoadPersonaFile reads a .json or .json5 persona file.
func LoadPersonaFile(path string) (map[string]Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading persona file %s: %w", path, err)
	}

	var defs map[string]Config
	if strings.EqualFold(filepath.Ext(path), ".json5") {
		defs, err = ParseJSON5Personas(data)
	} else {
		defs, err = ParseJSONPersonas(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for name, def := range defs {
		def.FilePath = path
		defs[name] = def
	}
	return defs, nil
}

func fromRaw(raw map[string]Config) map[string]Config {
	result := make(map[string]Config, len(raw))
	for name, def := range raw {
		if def.Type == "" {
			def.Type = name
		}
		def.ToolPermissions = NormalizeTools(def.ToolPermissions)
		def.Capabilities = NormalizeTools(def.Capabilities)
		if len(def.Capabilities) == 0 {
			def.Capabilities = cloneStrings(def.ToolPermissions)
		}
		def.Metadata = withoutReserved(def.Metadata)
		result[name] = def.withSource(SourceCLI, PriorityCLI)
	}
	return result
}

// withoutReserved drops metadata entries that shadow dedicated fields.
func withoutReserved(meta map[string]string) map[string]string {
	for k := range meta {
		if reservedKey(k) {
			meta = maps.Clone(meta)
			maps.DeleteFunc(meta, func(k, _ string) bool { return reservedKey(k) })
			break
		}
	}
	return meta
}
