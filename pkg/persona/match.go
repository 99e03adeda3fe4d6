package persona

import (
	"sort"
	"strings"
	"unicode"
)

// FallbackPersona is returned by Match when no persona scores above zero.
const FallbackPersona = "fullstack-developer"

// coreKeywords routes common task vocabulary to the core roles.
var coreKeywords = map[string][]string{
	"frontend-developer":     {"ui", "component", "react", "css", "frontend", "button", "form"},
	"backend-developer":      {"api", "endpoint", "database", "server", "backend", "route"},
	"security-engineer":      {"security", "auth", "vulnerability", "encrypt", "owasp"},
	"code-reviewer":          {"review", "check", "audit", "quality"},
	"documentation-engineer": {"document", "readme", "docs", "comment"},
}

// Keyword and token weights. A core keyword is a strong signal; a word from
// the persona name is stronger than one from its description.
const (
	weightKeyword     = 3
	weightNameToken   = 2
	weightDescription = 1
)

// stopWords are ignored when tokenizing names and descriptions.
var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "the": true, "for": true, "with": true, "of": true,
	"in": true, "to": true, "on": true, "or": true, "expert": true, "specialist": true,
	"developer": true, "engineer": true, "pro": true, "use": true, "when": true, "is": true,
}

// MatchResult is one scored candidate for a task.
type MatchResult struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// Match finds personas relevant to a free-text task description. Results are
// sorted by score (descending) then name. At most limit results are returned;
// limit <= 0 means no limit. When nothing scores, the fallback persona is
// returned if registered.
func Match(reg *Registry, task string, limit int) []MatchResult {
	words := tokenize(task)
	if len(words) == 0 {
		return fallback(reg)
	}
	taskLower := strings.ToLower(task)

	var results []MatchResult
	for _, name := range reg.names {
		def := reg.byName[name]
		score := 0

		for _, kw := range coreKeywords[name] {
			if words[kw] || (len(kw) > 3 && strings.Contains(taskLower, kw)) {
				score += weightKeyword
			}
		}
		for tok := range tokenize(name) {
			if words[tok] {
				score += weightNameToken
			}
		}
		for tok := range tokenize(def.Description) {
			if words[tok] {
				score += weightDescription
			}
		}

		if score > 0 {
			results = append(results, MatchResult{Name: name, Score: score})
		}
	}

	if len(results) == 0 {
		return fallback(reg)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Name < results[j].Name
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

func fallback(reg *Registry) []MatchResult {
	if reg.Has(FallbackPersona) {
		return []MatchResult{{Name: FallbackPersona}}
	}
	return nil
}

// tokenize splits s into a set of lower-case words, dropping stop words and
// single characters.
func tokenize(s string) map[string]bool {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#'
	})
	out := make(map[string]bool, len(fields))
	for _, f := range fields {
		if len(f) < 2 || stopWords[f] {
			continue
		}
		out[f] = true
	}
	return out
}
