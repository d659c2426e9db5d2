package codec

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Importer parses a topology document from a wire format.
type Importer interface {
	Parse(r io.Reader) (*Document, error)
	Format() string
}

// Exporter writes a topology document in a wire format.
type Exporter interface {
	Export(doc *Document, w io.Writer) error
	Format() string
}

// ImporterFor returns the importer registered for format.
func ImporterFor(format string) (Importer, error) {
	switch strings.ToLower(format) {
	case "json":
		return NewJSONCodec(), nil
	case "yaml", "yml":
		return NewYAMLCodec(), nil
	default:
		return nil, fmt.Errorf("no importer for format %q", format)
	}
}

// ExporterFor returns the exporter registered for format.
func ExporterFor(format string) (Exporter, error) {
	switch strings.ToLower(format) {
	case "json":
		return NewJSONCodec(), nil
	case "yaml", "yml":
		return NewYAMLCodec(), nil
	case "ansible", "ansible-inventory":
		return NewAnsibleCodec(), nil
	default:
		return nil, fmt.Errorf("no exporter for format %q", format)
	}
}

// FormatFromPath guesses a wire format from a file extension.
// Unknown extensions default to json.
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}
