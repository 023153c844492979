// Package pipeline loads the stage pipeline from a YAML file and keeps it
// current while the file changes.
package pipeline

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/weidustudio/studio/internal/planner"
)

// Load reads and validates a pipeline file. Unknown keys are rejected so
// typos do not silently fall back to defaults.
func Load(path string) (planner.Pipeline, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return planner.Pipeline{}, fmt.Errorf("failed to read pipeline %s: %w", path, err)
	}
	return Parse(b)
}

func Parse(b []byte) (planner.Pipeline, error) {
	var p planner.Pipeline
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return planner.Pipeline{}, fmt.Errorf("%w: %w", planner.ErrInvalidPipeline, err)
	}
	if err := p.Validate(); err != nil {
		return planner.Pipeline{}, err
	}
	return p, nil
}
