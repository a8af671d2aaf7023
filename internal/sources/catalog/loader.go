package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Loader reads a categories.yaml file
type Loader struct {
	filePath string
}

// NewLoader creates a new catalog loader
func NewLoader(filePath string) *Loader {
	return &Loader{filePath: filePath}
}

// Path returns the file the loader reads
func (l *Loader) Path() string { return l.filePath }

// Load reads, parses and validates the catalog file
func (l *Loader) Load() (*Catalog, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates catalog YAML
func Parse(data []byte) (*Catalog, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog yaml: %w", err)
	}
	return New(file)
}
