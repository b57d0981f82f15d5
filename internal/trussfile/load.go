package trussfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alexiusacademia/gotruss/internal/truss"
	"gopkg.in/yaml.v3"
)

// Format identifies a file encoding
type Format string

const (
	FormatYAML  Format = "yaml"
	FormatJSON  Format = "json"
	FormatEntry Format = "entry" // whitespace-separated text
)

// ParseFormat converts a name into a Format
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	case "entry", "txt", "text":
		return FormatEntry, nil
	}
	return "", fmt.Errorf("unknown format %q (expected yaml, json or entry)", s)
}

// FormatOf picks the format from a file extension
func FormatOf(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("%s: cannot detect format without a file extension", path)
	}
	return ParseFormat(ext)
}

// Decode parses a structure document. The entry format has no document form
// and must go through ParseEntry.
func Decode(data []byte, format Format) (*Document, error) {
	var doc Document
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decoding yaml: %w", err)
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decoding json: %w", err)
		}
	default:
		return nil, fmt.Errorf("format %q has no document form", format)
	}
	return &doc, nil
}

// Parse decodes and builds a structure from data in the given format
func Parse(data []byte, format Format) (*truss.Structure, error) {
	if format == FormatEntry {
		return ParseEntry(bytes.NewReader(data))
	}
	doc, err := Decode(data, format)
	if err != nil {
		return nil, err
	}
	return doc.Build()
}

// Load reads a structure from a file, picking the format from its extension
func Load(path string) (*truss.Structure, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	return LoadAs(path, format)
}

// LoadAs reads a structure from a file in an explicit format
func LoadAs(path string, format Format) (*truss.Structure, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Encode writes a document in YAML or JSON
func Encode(doc *Document, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(doc)
	case FormatJSON:
		return json.MarshalIndent(doc, "", "  ")
	}
	return nil, fmt.Errorf("format %q has no document form", format)
}
