package persona

import (
	"go/token"
	"regexp"
	"strings"
)

var namePattern = regexp.MustCompile(`^[a-z0-9]+(?:[-.][a-z0-9]+)*$`)

// ValidName reports whether name is usable as a persona key: lower-case
// alphanumeric words joined by '-' or '.' (e.g. "powershell-5.1-expert").
func ValidName(name string) bool {
	return namePattern.MatchString(name)
}

// Identifier returns the upper snake-case identifier for a persona name,
// e.g. "dotnet-framework-4.8-expert" -> "DOTNET_FRAMEWORK_4_8_EXPERT".
// Runs of separators collapse to a single underscore.
func Identifier(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	pendingSep := false
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r >= 'a' && r <= 'z':
			r -= 'a' - 'A'
			fallthrough
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
		default:
			pendingSep = true
		}
	}
	return b.String()
}

// validIdentifier reports whether id can be used as an exported Go identifier.
func validIdentifier(id string) bool {
	return token.IsIdentifier(id) && token.IsExported(id)
}
