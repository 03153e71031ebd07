// Package locale loads user-facing strings from a YAML catalog keyed by
// section and key, with named-field interpolation.
package locale

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Fields holds named values interpolated into a message template.
type Fields map[string]string

// Catalog is an immutable set of message templates.
type Catalog struct {
	sections map[string]map[string]string
}

// Load reads a catalog from a YAML file laid out as section -> key -> template.
func Load(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read strings catalog: %v", err)
	}
	return Parse(raw)
}

// Parse builds a catalog from YAML bytes.
func Parse(raw []byte) (*Catalog, error) {
	sections := make(map[string]map[string]string)
	if err := yaml.Unmarshal(raw, &sections); err != nil {
		return nil, fmt.Errorf("failed to parse strings catalog: %v", err)
	}
	return &Catalog{sections: sections}, nil
}

// Get returns the raw template for (section, key). A missing entry returns a
// placeholder naming the key so broken wiring is visible instead of silent.
func (c *Catalog) Get(section, key string) string {
	if s, ok := c.sections[section]; ok {
		if tmpl, ok := s[key]; ok {
			return tmpl
		}
	}
	return fmt.Sprintf("<%s.%s>", section, key)
}

// Format returns the template for (section, key) with every {name} placeholder
// replaced by the corresponding field value.
func (c *Catalog) Format(section, key string, fields Fields) string {
	tmpl := c.Get(section, key)
	for name, value := range fields {
		tmpl = strings.ReplaceAll(tmpl, "{"+name+"}", value)
	}
	return tmpl
}
