package persona

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func matchRegistry() *Registry {
	def := func(name, desc string) Config {
		c := testDef(name, "")
		c.Description = desc
		return c
	}
	return NewRegistry(map[string]Config{
		"backend-developer":   def("backend-developer", "Builds server-side APIs and services"),
		"frontend-developer":  def("frontend-developer", "Builds React user interfaces"),
		"fullstack-developer": def("fullstack-developer", "End-to-end feature delivery"),
		"kubernetes-specialist": def("kubernetes-specialist",
			"Designs and operates Kubernetes clusters"),
		"code-reviewer": def("code-reviewer", "Reviews code changes"),
	})
}

func TestMatch_CoreKeywords(t *testing.T) {
	got := Match(matchRegistry(), "Add a REST endpoint for the orders API", 1)
	if len(got) != 1 || got[0].Name != "backend-developer" {
		t.Errorf("Match = %+v, want backend-developer", got)
	}

	got = Match(matchRegistry(), "Fix the CSS on the login form component", 1)
	if len(got) != 1 || got[0].Name != "frontend-developer" {
		t.Errorf("Match = %+v, want frontend-developer", got)
	}
}

func TestMatch_NameAndDescription(t *testing.T) {
	got := Match(matchRegistry(), "scale our kubernetes clusters", 0)
	if len(got) == 0 || got[0].Name != "kubernetes-specialist" {
		t.Fatalf("Match = %+v, want kubernetes-specialist first", got)
	}
	// name token (2) + description tokens "kubernetes" and "clusters" (1 each)
	if got[0].Score != 4 {
		t.Errorf("Score = %d, want 4", got[0].Score)
	}
}

func TestMatch_DescriptionOnly(t *testing.T) {
	got := Match(matchRegistry(), "who operates clusters", 0)
	want := []MatchResult{{Name: "kubernetes-specialist", Score: 2}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Match (-want +got):\n%s", diff)
	}
}

func TestMatch_OrderAndLimit(t *testing.T) {
	got := Match(matchRegistry(), "builds", 0)
	want := []MatchResult{
		{Name: "backend-developer", Score: 1},
		{Name: "frontend-developer", Score: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Match (-want +got):\n%s", diff)
	}
	if got := Match(matchRegistry(), "builds", 1); len(got) != 1 {
		t.Errorf("limit 1 returned %d results", len(got))
	}
}

func TestMatch_Fallback(t *testing.T) {
	want := []MatchResult{{Name: FallbackPersona}}
	if diff := cmp.Diff(want, Match(matchRegistry(), "xyzzy plugh", 3)); diff != "" {
		t.Errorf("Match (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, Match(matchRegistry(), "   ", 3)); diff != "" {
		t.Errorf("Match on blank task (-want +got):\n%s", diff)
	}

	noFallback := NewRegistry(map[string]Config{"solo": testDef("solo", "")})
	if got := Match(noFallback, "xyzzy", 3); got != nil {
		t.Errorf("Match without fallback = %+v, want nil", got)
	}
}

func TestTokenize(t *testing.T) {
	got := tokenize("The C++ and C# engineer, a Go expert!")
	for _, want := range []string{"c++", "c#", "go"} {
		if !got[want] {
			t.Errorf("tokenize missing %q: %v", want, got)
		}
	}
	for _, stop := range []string{"the", "and", "engineer", "a", "expert"} {
		if got[stop] {
			t.Errorf("tokenize kept stop word %q", stop)
		}
	}
}
