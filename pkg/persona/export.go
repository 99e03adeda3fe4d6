package persona

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"
)

// DocumentVersion is the current export document version.
const DocumentVersion = 1

// Export formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Document is the serialized form of a whole catalog.
type Document struct {
	Version     int       `json:"version" yaml:"version"`
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
	Personas    []Config  `json:"personas" yaml:"personas"`
}

// NewDocument snapshots reg into a Document with personas sorted by name.
func NewDocument(reg *Registry, now time.Time) Document {
	return Document{
		Version:     DocumentVersion,
		GeneratedAt: now.UTC().Truncate(time.Second),
		Personas:    reg.List(),
	}
}

// Export encodes reg as a Document in the given format.
func Export(reg *Registry, format string, w io.Writer) error {
	return EncodeDocument(NewDocument(reg, time.Now()), format, w)
}

// EncodeDocument writes doc in the given format.
func EncodeDocument(doc Document, format string, w io.Writer) error {
	switch format {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encoding JSON document: %w", err)
		}
		return nil
	case FormatYAML, "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encoding YAML document: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// DecodeDocument reads a Document in the given format.
func DecodeDocument(r io.Reader, format string) (Document, error) {
	var doc Document
	switch format {
	case FormatJSON, "":
		if err := json.NewDecoder(r).Decode(&doc); err != nil {
			return Document{}, fmt.Errorf("decoding JSON document: %w", err)
		}
	case FormatYAML, "yml":
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
			return Document{}, fmt.Errorf("decoding YAML document: %w", err)
		}
	default:
		return Document{}, fmt.Errorf("unsupported document format %q", format)
	}
	if doc.Version > DocumentVersion {
		return Document{}, fmt.Errorf("document version %d is newer than supported version %d", doc.Version, DocumentVersion)
	}
	return doc, nil
}

// Map returns the document's personas keyed by type, tagged as CLI-sourced.
func (d Document) Map() map[string]Config {
	out := make(map[string]Config, len(d.Personas))
	for _, p := range d.Personas {
		out[p.Type] = p.withSource(SourceCLI, PriorityCLI)
	}
	return out
}

// ImportDocument reads an exported document and returns its personas with
// tools normalized, ready to be layered with Resolve.
func ImportDocument(r io.Reader, format string) (map[string]Config, error) {
	doc, err := DecodeDocument(r, format)
	if err != nil {
		return nil, err
	}
	for _, p := range doc.Personas {
		if p.Type == "" {
			return nil, fmt.Errorf("document persona without type")
		}
	}
	return fromRaw(doc.Map()), nil
}

// FormatFromPath guesses an export format from a file extension.
func FormatFromPath(path string) string {
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// WriteFileLocked writes data to path under an advisory file lock
// (path + ".lock") and replaces the target atomically via rename.
func WriteFileLocked(path string, data []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}

	fl := flock.New(path + ".lock")
	if err := fl.Lock(); err != nil {
		return fmt.Errorf("locking %s: %w", path, err)
	}
	defer fl.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := io.Copy(tmp, bytes.NewReader(data)); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
