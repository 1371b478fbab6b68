// Package defaults carries the bundled content dataset the site ships
// with. The store falls back to it whenever nothing usable has been
// persisted, and the reset operation restores it wholesale.
package defaults

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/magma-studio/atelier/internal/content"
)

//go:embed defaults.yaml
var raw []byte

type dataset struct {
	content.Document `yaml:",inline"`
	Categories       []string `yaml:"categories"`
}

func load() (*dataset, error) {
	var ds dataset
	if err := yaml.Unmarshal(raw, &ds); err != nil {
		return nil, fmt.Errorf("failed to parse bundled dataset: %w", err)
	}
	if ds.SchemaVersion != content.SchemaVersion {
		return nil, fmt.Errorf("bundled dataset has schema version %d, want %d", ds.SchemaVersion, content.SchemaVersion)
	}
	return &ds, nil
}

// Document returns a fresh copy of the bundled bilingual document.
func Document() (*content.Document, error) {
	ds, err := load()
	if err != nil {
		return nil, err
	}
	return ds.Document.Clone(), nil
}

// Categories returns a fresh copy of the bundled category list.
func Categories() ([]string, error) {
	ds, err := load()
	if err != nil {
		return nil, err
	}
	return append([]string(nil), ds.Categories...), nil
}
