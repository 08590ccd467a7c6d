// Package taxonomy holds the static lookup tables used to normalize tasks:
// the label mapping, priority ordinals and the workflow stage sequence.
package taxonomy

import (
	_ "embed"
	"fmt"
	"io"
	"maps"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed taxonomy.yaml
var defaultAsset []byte

// Taxonomy is the immutable set of tables a normalization run uses
type Taxonomy struct {
	Version    int               `yaml:"version"`
	Categories []string          `yaml:"categories"`
	Ambiguous  string            `yaml:"ambiguous"`
	Labels     map[string]string `yaml:"labels"`
	Priorities map[string]int    `yaml:"priorities"`
	Flow       []string          `yaml:"flow"`
	Parking    []string          `yaml:"parking"`
}

var loadDefault = sync.OnceValues(func() (*Taxonomy, error) {
	return Parse(defaultAsset)
})

// Default returns a copy of the taxonomy shipped with the binary
func Default() *Taxonomy {
	t, err := loadDefault()
	if err != nil {
		panic(fmt.Sprintf("embedded taxonomy is invalid: %v", err))
	}
	return t.Clone()
}

// Load decodes and validates a taxonomy from r
func Load(r io.Reader) (*Taxonomy, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read taxonomy: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML taxonomy document
func Parse(data []byte) (*Taxonomy, error) {
	var t Taxonomy
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to decode taxonomy: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Validate checks that the tables are internally consistent
func (t *Taxonomy) Validate() error {
	if len(t.Categories) == 0 {
		return fmt.Errorf("taxonomy has no categories")
	}
	if t.Ambiguous != "" && !slices.Contains(t.Categories, t.Ambiguous) {
		return fmt.Errorf("ambiguous category %q is not a category", t.Ambiguous)
	}
	for raw, category := range t.Labels {
		if !slices.Contains(t.Categories, category) {
			return fmt.Errorf("label %q maps to unknown category %q", raw, category)
		}
	}
	// A canonical label must map to itself or normalizing twice would change it.
	for _, category := range t.Categories {
		if mapped, ok := t.Labels[category]; ok && mapped != category && category != t.Ambiguous {
			return fmt.Errorf("category %q maps to %q", category, mapped)
		}
	}
	if len(t.Priorities) == 0 {
		return fmt.Errorf("taxonomy has no priorities")
	}
	if len(t.Flow) == 0 {
		return fmt.Errorf("taxonomy has no workflow stages")
	}
	for _, stage := range t.Parking {
		if slices.Contains(t.Flow, stage) {
			return fmt.Errorf("parking stage %q is part of the workflow", stage)
		}
	}
	return nil
}

// Clone returns a deep copy of t
func (t *Taxonomy) Clone() *Taxonomy {
	return &Taxonomy{
		Version:    t.Version,
		Categories: slices.Clone(t.Categories),
		Ambiguous:  t.Ambiguous,
		Labels:     maps.Clone(t.Labels),
		Priorities: maps.Clone(t.Priorities),
		Flow:       slices.Clone(t.Flow),
		Parking:    slices.Clone(t.Parking),
	}
}
