package fixture

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed sample_menu.yaml
var sampleMenuYAML []byte

// Document is the content served by the fixture backend. Sections are kept
// as loosely typed YAML so a fixture can also describe malformed payloads
// when exercising the storefront's schema checks.
type Document struct {
	Sections []any                    `yaml:"sections"`
	Venues   map[string]map[string]any `yaml:"venues"`
}

// Venue returns the payload for the venue endpoint.
func (d Document) Venue(id string) (map[string]any, bool) {
	venue, ok := d.Venues[strings.TrimSpace(id)]
	return venue, ok
}

// MenuPayload returns the payload for the menu endpoint.
func (d Document) MenuPayload() map[string]any {
	sections := d.Sections
	if sections == nil {
		sections = []any{}
	}
	return map[string]any{"sections": sections}
}

// LoadDocument reads a fixture file, or the bundled sample when path is empty.
func LoadDocument(path string) (Document, error) {
	data := sampleMenuYAML
	source := "bundled sample"
	if strings.TrimSpace(path) != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Document{}, fmt.Errorf("fixture: read %s: %w", path, err)
		}
		data = raw
		source = path
	}
	doc, err := ParseDocument(data)
	if err != nil {
		return Document{}, fmt.Errorf("fixture: %s: %w", source, err)
	}
	return doc, nil
}

// ParseDocument decodes fixture YAML.
func ParseDocument(data []byte) (Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("parse: %w", err)
	}
	if len(doc.Venues) == 0 {
		return Document{}, fmt.Errorf("at least one venue is required")
	}
	return doc, nil
}
