package persona

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func testDef(name, category string, tools ...string) Config {
	if len(tools) == 0 {
		tools = []string{"read"}
	}
	c := Config{
		Type:            name,
		Description:     name + " persona",
		Capabilities:    cloneStrings(tools),
		ToolPermissions: tools,
		SystemPrompt:    "You are " + name + ".",
	}
	if category != "" {
		c.Metadata = map[string]string{MetaCategory: category}
	}
	return c
}

func testRegistry() *Registry {
	return NewRegistry(map[string]Config{
		"backend-developer":           testDef("backend-developer", "core-development"),
		"frontend-developer":          testDef("frontend-developer", "core-development"),
		"fullstack-developer":         testDef("fullstack-developer", "core-development"),
		"dotnet-framework-4.8-expert": testDef("dotnet-framework-4.8-expert", "language-specialists"),
		"powershell-5.1-expert":       testDef("powershell-5.1-expert", "language-specialists"),
		"loose":                       testDef("loose", ""),
	})
}

func TestRegistry_Lookup(t *testing.T) {
	reg := testRegistry()
	def, err := reg.Lookup("backend-developer")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if def.Type != "backend-developer" {
		t.Errorf("Type = %q", def.Type)
	}
}

func TestRegistry_LookupIdentifier(t *testing.T) {
	reg := testRegistry()
	for id, want := range map[string]string{
		"DOTNET_FRAMEWORK_4_8_EXPERT": "dotnet-framework-4.8-expert",
		"POWERSHELL_5_1_EXPERT":       "powershell-5.1-expert",
		"BACKEND_DEVELOPER":           "backend-developer",
	} {
		def, err := reg.Lookup(id)
		if err != nil {
			t.Errorf("Lookup(%q): %v", id, err)
			continue
		}
		if def.Type != want {
			t.Errorf("Lookup(%q).Type = %q, want %q", id, def.Type, want)
		}
	}
}

func TestRegistry_LookupUnknown(t *testing.T) {
	reg := testRegistry()
	_, err := reg.Lookup("backend-develper")
	if !errors.Is(err, ErrUnknownPersona) {
		t.Fatalf("err = %v, want ErrUnknownPersona", err)
	}
	var upe *UnknownPersonaError
	if !errors.As(err, &upe) {
		t.Fatalf("err is %T, want *UnknownPersonaError", err)
	}
	if upe.Name != "backend-develper" {
		t.Errorf("Name = %q", upe.Name)
	}
	if len(upe.Suggestions) == 0 || upe.Suggestions[0] != "backend-developer" {
		t.Errorf("Suggestions = %v, want backend-developer first", upe.Suggestions)
	}

	_, err = reg.Lookup("zzzzzzzzzzzz")
	if !errors.Is(err, ErrUnknownPersona) {
		t.Errorf("err = %v, want ErrUnknownPersona", err)
	}
	if errors.As(err, &upe) && len(upe.Suggestions) != 0 {
		t.Errorf("unexpected suggestions %v", upe.Suggestions)
	}
}

func TestRegistry_LookupOnlyExactForms(t *testing.T) {
	reg := testRegistry()
	for _, name := range []string{
		"Backend Developer",
		"backend_developer",
		" backend-developer",
		"Backend-Developer",
		"backend developer",
	} {
		if _, err := reg.Lookup(name); !errors.Is(err, ErrUnknownPersona) {
			t.Errorf("Lookup(%q) = %v, want ErrUnknownPersona", name, err)
		}
	}
}

func TestRegistry_LookupAmbiguousIdentifier(t *testing.T) {
	reg := NewRegistry(map[string]Config{
		"a-b": testDef("a-b", ""),
		"a.b": testDef("a.b", ""),
	})
	if _, err := reg.Lookup("A_B"); !errors.Is(err, ErrUnknownPersona) {
		t.Errorf("ambiguous identifier should not resolve, err = %v", err)
	}
}

func TestRegistry_Immutable(t *testing.T) {
	src := map[string]Config{"backend-developer": testDef("backend-developer", "core-development")}
	reg := NewRegistry(src)

	// Mutating the source map and its records must not leak into the registry.
	src["backend-developer"].ToolPermissions[0] = "bash"
	delete(src, "backend-developer")
	src["intruder"] = testDef("intruder", "")

	if reg.Has("intruder") || !reg.Has("backend-developer") {
		t.Fatal("registry reflects changes to its source map")
	}
	def := reg.MustLookup("backend-developer")
	if def.ToolPermissions[0] != "read" {
		t.Errorf("registry record shares slices with source: %v", def.ToolPermissions)
	}

	// Mutating a returned record must not leak either.
	def.ToolPermissions[0] = "write"
	def.Metadata[MetaCategory] = "hacked"
	again := reg.MustLookup("backend-developer")
	if again.ToolPermissions[0] != "read" || again.Category() != "core-development" {
		t.Errorf("registry record mutated through Lookup result: %+v", again)
	}

	names := reg.Names()
	names[0] = "zzz"
	if reg.Names()[0] == "zzz" {
		t.Error("Names exposes internal slice")
	}
}

func TestRegistry_ListingsSorted(t *testing.T) {
	reg := testRegistry()
	want := []string{
		"backend-developer", "dotnet-framework-4.8-expert", "frontend-developer",
		"fullstack-developer", "loose", "powershell-5.1-expert",
	}
	if diff := cmp.Diff(want, reg.Names()); diff != "" {
		t.Errorf("Names (-want +got):\n%s", diff)
	}
	var listed []string
	for _, def := range reg.List() {
		listed = append(listed, def.Type)
	}
	if diff := cmp.Diff(want, listed); diff != "" {
		t.Errorf("List (-want +got):\n%s", diff)
	}
	if reg.Len() != len(want) {
		t.Errorf("Len = %d", reg.Len())
	}
}

func TestRegistry_Categories(t *testing.T) {
	reg := testRegistry()
	if diff := cmp.Diff([]string{"core-development", "language-specialists"}, reg.Categories()); diff != "" {
		t.Errorf("Categories (-want +got):\n%s", diff)
	}
	if got := len(reg.ByCategory("core-development")); got != 3 {
		t.Errorf("ByCategory(core-development) = %d personas, want 3", got)
	}
	if got := reg.ByCategory("missing"); got != nil {
		t.Errorf("ByCategory(missing) = %v, want nil", got)
	}
}

func TestRegistry_MustLookupPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustLookup did not panic on unknown name")
		}
	}()
	testRegistry().MustLookup("nope")
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
		{"golang-pro", "golang-pro", 0},
	}
	for _, tt := range tests {
		if got := levenshtein(tt.a, tt.b); got != tt.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
