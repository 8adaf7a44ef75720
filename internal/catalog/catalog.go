// SPDX-License-Identifier: Apache-2.0

// Package catalog loads the ordered list of canonical field names a
// submission is resolved against. Names are taken verbatim; nothing here
// rewrites or "fixes" them.
package catalog

import (
	"os"

	"github.com/goccy/go-yaml"
	"github.com/rotisserie/eris"
)

// Field is one canonical field. A bare YAML string is accepted as a field
// with only a name.
type Field struct {
	Name        string `json:"name" yaml:"name"`
	Required    bool   `json:"required,omitempty" yaml:"required,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

func (f *Field) UnmarshalYAML(unmarshal func(any) error) error {
	var raw any
	if err := unmarshal(&raw); err != nil {
		return err
	}
	if name, ok := raw.(string); ok {
		*f = Field{Name: name}
		return nil
	}
	type plain Field
	return unmarshal((*plain)(f))
}

// Catalog is an ordered set of canonical fields.
type Catalog struct {
	Name   string  `json:"name,omitempty" yaml:"name,omitempty"`
	Fields []Field `json:"fields" yaml:"fields"`
}

// Load reads and validates a catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to read catalog %s", path)
	}
	cat, err := Parse(data)
	if err != nil {
		return nil, eris.Wrapf(err, "catalog %s", path)
	}
	return cat, nil
}

// Parse decodes and validates a YAML or JSON catalog document.
func Parse(data []byte) (*Catalog, error) {
	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, eris.Wrap(err, "failed to parse catalog")
	}
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return &cat, nil
}

// FromNames builds a catalog of optional fields, e.g. from CLI flags.
func FromNames(names ...string) *Catalog {
	cat := &Catalog{Fields: make([]Field, 0, len(names))}
	for _, n := range names {
		cat.Fields = append(cat.Fields, Field{Name: n})
	}
	return cat
}

// Names returns the canonical names in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.Fields))
	for i, f := range c.Fields {
		names[i] = f.Name
	}
	return names
}

// Required returns the names of required fields in catalog order.
func (c *Catalog) Required() []string {
	var names []string
	for _, f := range c.Fields {
		if f.Required {
			names = append(names, f.Name)
		}
	}
	return names
}
