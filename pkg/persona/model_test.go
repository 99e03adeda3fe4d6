package persona

import "testing"

func TestResolveModel(t *testing.T) {
	withModel := func(m string) Config {
		c := testDef("x", "")
		c.Metadata = map[string]string{MetaModel: m}
		return c
	}
	tests := []struct {
		name     string
		cfg      Config
		override string
		want     string
	}{
		{"override wins", withModel("haiku"), "opus", ExpandModelAlias("opus")},
		{"persona model", withModel("sonnet"), "", ExpandModelAlias("sonnet")},
		{"inherit falls back", withModel(ModelInherit), "", "parent-model"},
		{"inherit override uses persona", withModel("haiku"), ModelInherit, ExpandModelAlias("haiku")},
		{"no model", testDef("x", ""), "", "parent-model"},
		{"full id passes through", withModel("custom-model-1"), "", "custom-model-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveModel(tt.cfg, tt.override, "parent-model"); got != tt.want {
				t.Errorf("ResolveModel = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRegisterModelAlias(t *testing.T) {
	RegisterModelAlias("test-alias", "test-model-full")
	if got := ExpandModelAlias("test-alias"); got != "test-model-full" {
		t.Errorf("ExpandModelAlias = %q", got)
	}

	snapshot := ModelAliases()
	snapshot["test-alias"] = "mutated"
	if got := ExpandModelAlias("test-alias"); got != "test-model-full" {
		t.Error("ModelAliases returned the live map")
	}
	if ExpandModelAlias("sonnet") == "sonnet" {
		t.Error("built-in sonnet alias missing")
	}
}
