package persona

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ValidationError describes one integrity problem in a persona record.
type ValidationError struct {
	Persona string
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("persona %q: %s: %s", e.Persona, e.Field, e.Message)
}

// Validate checks every record in reg and returns all problems joined with
// errors.Join, or nil when the catalog is clean.
func Validate(reg *Registry) error {
	var errs []error
	for _, name := range reg.names {
		errs = append(errs, validateConfig(name, reg.byName[name], reg)...)
	}
	ids := make([]string, 0, len(reg.byIdent))
	for id := range reg.byIdent {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if names := reg.byIdent[id]; len(names) > 1 {
			errs = append(errs, &ValidationError{
				Persona: strings.Join(names, ", "),
				Field:   "identifier",
				Message: fmt.Sprintf("names collide on identifier %s", id),
			})
		}
	}
	return errors.Join(errs...)
}

// ValidateConfig checks a single record outside of any registry. Task
// restrictions are not resolved against other personas.
func ValidateConfig(name string, c Config) error {
	return errors.Join(validateConfig(name, c, nil)...)
}

func validateConfig(name string, c Config, reg *Registry) []error {
	var errs []error
	fail := func(field, format string, args ...any) {
		errs = append(errs, &ValidationError{Persona: name, Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if !ValidName(name) {
		fail("name", "%q is not a valid persona name", name)
	}
	if id := Identifier(name); !validIdentifier(id) {
		fail("identifier", "%q is not a valid identifier", id)
	}
	if c.Type != name {
		fail("type", "type %q does not match key %q", c.Type, name)
	}
	if strings.TrimSpace(c.Description) == "" {
		fail("description", "must not be empty")
	}
	if strings.TrimSpace(c.SystemPrompt) == "" {
		fail("system_prompt", "must not be empty")
	}

	checkTools := func(field string, tools []string) {
		if len(tools) == 0 {
			fail(field, "must not be empty")
			return
		}
		for _, t := range tools {
			if !IsKnownTool(t) {
				fail(field, "unknown tool %q", t)
			}
		}
	}
	checkTools("capabilities", c.Capabilities)
	checkTools("tool_permissions", c.ToolPermissions)

	if reg != nil {
		if tr, _ := ParseTaskRestriction(c.ToolPermissions); tr != nil && !tr.Unrestricted {
			for _, typ := range tr.AllowedTypes {
				if !reg.Has(typ) {
					fail("tool_permissions", "task restriction names unknown persona %q", typ)
				}
			}
		}
	}
	return errs
}
