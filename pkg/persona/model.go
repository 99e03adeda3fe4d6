package persona

import "sync"

// ModelInherit means "use whatever model the parent runtime uses".
const ModelInherit = "inherit"

// modelAliases maps short names to full model IDs.
var modelAliases = map[string]string{
	"sonnet": "claude-sonnet-4-5-20250929",
	"opus":   "claude-opus-4-5-20251101",
	"haiku":  "claude-haiku-4-5-20251001",
}

var aliasMu sync.RWMutex

// RegisterModelAlias adds or overwrites a model alias at runtime.
func RegisterModelAlias(alias, fullModelID string) {
	aliasMu.Lock()
	defer aliasMu.Unlock()
	modelAliases[alias] = fullModelID
}

// ModelAliases returns a snapshot copy of the current alias map.
func ModelAliases() map[string]string {
	aliasMu.RLock()
	defer aliasMu.RUnlock()
	result := make(map[string]string, len(modelAliases))
	for k, v := range modelAliases {
		result[k] = v
	}
	return result
}

// ResolveModel determines the model to run c with.
// Priority: override > persona metadata > fallback. "inherit" defers to the fallback.
func ResolveModel(c Config, override, fallback string) string {
	if override != "" && override != ModelInherit {
		return ExpandModelAlias(override)
	}
	if m := c.Model(); m != "" && m != ModelInherit {
		return ExpandModelAlias(m)
	}
	return fallback
}

// ExpandModelAlias expands a short alias to its full model ID.
// Returns the input unchanged if it's not a known alias.
func ExpandModelAlias(alias string) string {
	aliasMu.RLock()
	defer aliasMu.RUnlock()
	if full, ok := modelAliases[alias]; ok {
		return full
	}
	return alias
}
