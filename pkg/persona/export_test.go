package persona

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestDocument_RoundTrip(t *testing.T) {
	reg := testRegistry()
	now := time.Date(2025, 3, 1, 12, 30, 45, 999, time.UTC)
	doc := NewDocument(reg, now)
	if doc.Version != DocumentVersion {
		t.Errorf("Version = %d", doc.Version)
	}
	if !doc.GeneratedAt.Equal(now.Truncate(time.Second)) {
		t.Errorf("GeneratedAt = %v", doc.GeneratedAt)
	}

	ignore := cmpopts.IgnoreFields(Config{}, "Source", "Priority", "FilePath")
	for _, format := range []string{FormatJSON, FormatYAML} {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			if err := EncodeDocument(doc, format, &buf); err != nil {
				t.Fatalf("EncodeDocument: %v", err)
			}
			got, err := DecodeDocument(&buf, format)
			if err != nil {
				t.Fatalf("DecodeDocument: %v", err)
			}
			if diff := cmp.Diff(doc, got, ignore); diff != "" {
				t.Errorf("round trip (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDocument_Map(t *testing.T) {
	doc := NewDocument(testRegistry(), time.Now())
	m := doc.Map()
	if len(m) != testRegistry().Len() {
		t.Fatalf("Map has %d entries", len(m))
	}
	if def := m["loose"]; def.Source != SourceCLI || def.Priority != PriorityCLI {
		t.Errorf("loose = %+v, want cli source", def)
	}
}

func TestDecodeDocument_Errors(t *testing.T) {
	if _, err := DecodeDocument(strings.NewReader(`{"version": 99, "personas": []}`), FormatJSON); err == nil ||
		!strings.Contains(err.Error(), "newer") {
		t.Errorf("expected newer version error, got %v", err)
	}
	if _, err := DecodeDocument(strings.NewReader(`{}`), "toml"); err == nil {
		t.Error("expected unsupported format error")
	}
	if _, err := DecodeDocument(strings.NewReader("personas: [oops"), FormatYAML); err == nil {
		t.Error("expected YAML error")
	}
	if err := EncodeDocument(Document{}, "xml", &bytes.Buffer{}); err == nil {
		t.Error("expected unsupported encode format error")
	}
}

func TestImportDocument(t *testing.T) {
	in := `version: 1
personas:
  - type: helper
    description: Helps
    tool_permissions: [Read, BASH]
    system_prompt: Help.
`
	defs, err := ImportDocument(strings.NewReader(in), FormatYAML)
	if err != nil {
		t.Fatalf("ImportDocument: %v", err)
	}
	got := defs["helper"]
	if diff := cmp.Diff([]string{"read", "bash"}, got.ToolPermissions); diff != "" {
		t.Errorf("tools (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(got.ToolPermissions, got.Capabilities); diff != "" {
		t.Errorf("capabilities should default to tools (-tools +caps):\n%s", diff)
	}
	if got.Source != SourceCLI {
		t.Errorf("Source = %v", got.Source)
	}

	_, err = ImportDocument(strings.NewReader(`{"version": 1, "personas": [{"description": "x"}]}`), FormatJSON)
	if err == nil {
		t.Error("expected error for persona without type")
	}
}

func TestExport(t *testing.T) {
	var buf bytes.Buffer
	if err := Export(testRegistry(), FormatJSON, &buf); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !strings.Contains(buf.String(), `"type": "powershell-5.1-expert"`) {
		t.Errorf("export missing persona:\n%s", buf.String())
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]string{
		"out.yaml":     FormatYAML,
		"out.yml":      FormatYAML,
		"out.json":     FormatJSON,
		"no-extension": FormatJSON,
	}
	for in, want := range tests {
		if got := FormatFromPath(in); got != want {
			t.Errorf("FormatFromPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestWriteFileLocked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "catalog.json")
	if err := WriteFileLocked(path, []byte("first"), 0o600); err != nil {
		t.Fatalf("WriteFileLocked: %v", err)
	}
	if err := WriteFileLocked(path, []byte("second"), 0o644); err != nil {
		t.Fatalf("WriteFileLocked (overwrite): %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "second" {
		t.Errorf("content = %q, want second", data)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".catalog.json.") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestImportDocument_DropsShadowingMetadata(t *testing.T) {
	in := `{"version": 1, "personas": [{
		"type": "helper",
		"description": "Helps",
		"tool_permissions": ["read"],
		"system_prompt": "Help.",
		"metadata": {"tools": "bash", "model": "haiku"}
	}]}`
	defs, err := ImportDocument(strings.NewReader(in), FormatJSON)
	if err != nil {
		t.Fatalf("ImportDocument: %v", err)
	}
	got := defs["helper"]
	if diff := cmp.Diff(map[string]string{"model": "haiku"}, got.Metadata); diff != "" {
		t.Errorf("metadata (-want +got):\n%s", diff)
	}
	if got.Priority != PriorityCLI {
		t.Errorf("Priority = %d, want %d", got.Priority, PriorityCLI)
	}
	if _, err := Render(got); err != nil {
		t.Errorf("Render: %v", err)
	}
}
