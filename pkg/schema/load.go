package schema

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Format identifies the encoding of a schema document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Parse decodes a schema document.
func Parse(data []byte, format Format) (Schema, error) {
	var s Schema
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, err
		}
	case FormatJSON, "":
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("schema: unsupported format %q", format)
	}
	return s, nil
}

// Marshal encodes a schema document.
func Marshal(s Schema, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(s)
	case FormatJSON, "":
		return json.MarshalIndent(s, "", "  ")
	default:
		return nil, fmt.Errorf("schema: unsupported format %q", format)
	}
}

// FormatFromPath infers the document format from its extension, defaulting to
// JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// LoadFile reads and parses a schema document from disk.
func LoadFile(path string) (Schema, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("schema: read %s: %w", path, err)
	}
	return decode(path, data)
}

// LoadFS reads and parses a schema document from fsys.
func LoadFS(fsys fs.FS, name string) (Schema, error) {
	if fsys == nil {
		return nil, fmt.Errorf("schema: filesystem is nil")
	}
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("schema: read %s: %w", name, err)
	}
	return decode(name, data)
}

func decode(location string, data []byte) (Schema, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("schema: %s is empty", location)
	}
	s, err := Parse(data, FormatFromPath(location))
	if err != nil {
		return nil, fmt.Errorf("schema: parse %s: %w", location, err)
	}
	return s, nil
}
