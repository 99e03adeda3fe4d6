package persona

import (
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Tool names understood by the agent runtimes that consume this catalog.
const (
	ToolRead         = "read"
	ToolWrite        = "write"
	ToolEdit         = "edit"
	ToolMultiEdit    = "multiedit"
	ToolBash         = "bash"
	ToolGlob         = "glob"
	ToolGrep         = "grep"
	ToolLS           = "ls"
	ToolWebFetch     = "webfetch"
	ToolWebSearch    = "websearch"
	ToolTask         = "task"
	ToolTodoWrite    = "todowrite"
	ToolNotebookEdit = "notebookedit"
	ToolNotebookRead = "notebookread"

	// ToolAll grants every tool.
	ToolAll = "*"
)

var knownTools = map[string]bool{
	ToolRead:         true,
	ToolWrite:        true,
	ToolEdit:         true,
	ToolMultiEdit:    true,
	ToolBash:         true,
	ToolGlob:         true,
	ToolGrep:         true,
	ToolLS:           true,
	ToolWebFetch:     true,
	ToolWebSearch:    true,
	ToolTask:         true,
	ToolTodoWrite:    true,
	ToolNotebookEdit: true,
	ToolNotebookRead: true,
}

// KnownTools returns the closed set of tool names in sorted order.
func KnownTools() []string {
	out := make([]string, 0, len(knownTools))
	for name := range knownTools {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// NormalizeTool lower-cases and trims a tool name. The arguments of a
// task(...) entry keep their case.
func NormalizeTool(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.IndexByte(name, '('); i > 0 && strings.HasSuffix(name, ")") {
		return strings.ToLower(name[:i]) + name[i:]
	}
	return strings.ToLower(name)
}

// NormalizeTools normalizes every entry and drops blanks and duplicates, keeping order.
func NormalizeTools(tools []string) []string {
	var out []string
	seen := make(map[string]bool, len(tools))
	for _, t := range tools {
		n := NormalizeTool(t)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// IsKnownTool reports whether name is a known tool, the wildcard, a valid
// glob (e.g. "mcp__github__*"), or a task(...) restriction.
func IsKnownTool(name string) bool {
	if name == ToolAll || knownTools[name] {
		return true
	}
	if isTaskEntry(name) {
		return true
	}
	if strings.ContainsAny(name, "*?[{") {
		return doublestar.ValidatePattern(name)
	}
	return false
}

// Allows reports whether c's tool permissions grant the named tool.
func (c Config) Allows(tool string) bool {
	tool = NormalizeTool(tool)
	for _, perm := range c.ToolPermissions {
		if perm == ToolAll || perm == tool {
			return true
		}
		if isTaskEntry(perm) && tool == ToolTask {
			return true
		}
		if ok, err := doublestar.Match(perm, tool); err == nil && ok {
			return true
		}
	}
	return false
}

// TaskRestriction describes which personas a persona may delegate to.
type TaskRestriction struct {
	Unrestricted bool     // true = any persona
	AllowedTypes []string // specific personas allowed (when Unrestricted is false)
}

// ParseTaskRestriction extracts task and task(type1,type2) entries from the tools list.
// Returns the parsed restriction and the remaining (non-task) tool names.
// A nil restriction means the persona may not delegate at all.
func ParseTaskRestriction(tools []string) (*TaskRestriction, []string) {
	var remaining []string
	var allowedTypes []string
	hasTask := false

	for _, t := range tools {
		t = strings.TrimSpace(t)
		if t == ToolTask || t == ToolAll {
			return &TaskRestriction{Unrestricted: true}, filterOut(tools, isTaskEntry)
		}
		if strings.HasPrefix(t, ToolTask+"(") && strings.HasSuffix(t, ")") {
			hasTask = true
			inner := t[len(ToolTask)+1 : len(t)-1]
			for _, typ := range strings.Split(inner, ",") {
				typ = strings.TrimSpace(typ)
				if typ != "" {
					allowedTypes = append(allowedTypes, typ)
				}
			}
		} else {
			remaining = append(remaining, t)
		}
	}

	if !hasTask {
		return nil, tools
	}

	return &TaskRestriction{AllowedTypes: allowedTypes}, remaining
}

// isTaskEntry returns true if the string is a task or task(...) entry.
func isTaskEntry(s string) bool {
	s = strings.TrimSpace(s)
	return s == ToolTask || (strings.HasPrefix(s, ToolTask+"(") && strings.HasSuffix(s, ")"))
}

// ResolveTools determines the final tool set for a persona running under a
// parent runtime. If allowed is non-empty (and not the wildcard), only those
// tools are used, intersected with parent. Then disallowed tools are removed.
func ResolveTools(allowed, disallowed, parentTools []string) []string {
	var base []string

	if len(allowed) > 0 && !slices.Contains(allowed, ToolAll) {
		parentSet := toSet(NormalizeTools(parentTools))
		for _, t := range NormalizeTools(allowed) {
			if isTaskEntry(t) {
				t = ToolTask
			}
			if parentSet[t] {
				base = append(base, t)
			}
		}
		base = NormalizeTools(base)
	} else {
		base = NormalizeTools(parentTools)
	}

	if len(disallowed) > 0 {
		disallowedSet := toSet(NormalizeTools(disallowed))
		base = filterFunc(base, func(s string) bool {
			return !disallowedSet[s]
		})
	}

	return base
}

// WithoutTools returns a copy of c with the given tools removed from its
// permissions. Disabling "task" also drops task(...) entries. If nothing
// would remain, the permissions are left unchanged.
func (c Config) WithoutTools(disabled []string) Config {
	out := c.Clone()
	if len(disabled) == 0 {
		return out
	}
	disabledSet := toSet(NormalizeTools(disabled))
	filtered := filterFunc(out.ToolPermissions, func(s string) bool {
		if disabledSet[ToolTask] && isTaskEntry(s) {
			return false
		}
		return !disabledSet[s]
	})
	if len(filtered) > 0 {
		out.ToolPermissions = filtered
	}
	return out
}

// filterOut returns tools that don't match the predicate.
func filterOut(tools []string, pred func(string) bool) []string {
	var result []string
	for _, t := range tools {
		if !pred(t) {
			result = append(result, t)
		}
	}
	return result
}

// filterFunc returns tools that match the predicate.
func filterFunc(tools []string, pred func(string) bool) []string {
	var result []string
	for _, t := range tools {
		if pred(t) {
			result = append(result, t)
		}
	}
	return result
}

// toSet converts a string slice to a set.
func toSet(ss []string) map[string]bool {
	m := make(map[string]bool, len(ss))
	for _, s := range ss {
		m[s] = true
	}
	return m
}
