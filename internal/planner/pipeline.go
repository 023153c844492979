package planner

import (
	"errors"
	"fmt"
)

// Stage is one step of the per-project pipeline. Task ids are
// "<project id>-<Key>".
type Stage struct {
	Key      string   `yaml:"key" json:"key"`
	Type     TaskType `yaml:"type" json:"type"`
	Days     int      `yaml:"days" json:"days"`
	Priority int      `yaml:"priority" json:"priority"`
	// Skills defaults to the stage type.
	Skills []string `yaml:"skills,omitempty" json:"skills,omitempty"`
	// After lists stage keys this stage waits for. Nil means the previous
	// stage; an empty list means none.
	After []string `yaml:"after,omitempty" json:"after,omitempty"`
}

type Pipeline struct {
	Stages []Stage `yaml:"stages" json:"stages"`
}

// DefaultPipeline is design, then plumbing and electrical, then carpentry,
// then painting.
func DefaultPipeline() Pipeline {
	return Pipeline{Stages: []Stage{
		{Key: "design", Type: TaskTypeDesign, Days: 7, Priority: 8},
		{Key: "water", Type: TaskTypePlumbingElectrical, Days: 5, Priority: 7},
		{Key: "wood", Type: TaskTypeCarpentry, Days: 10, Priority: 6},
		{Key: "paint", Type: TaskTypePainting, Days: 5, Priority: 5},
	}}
}

var ErrInvalidPipeline = errors.New("invalid pipeline")

// Validate checks stage keys and durations. Cycles between stages are not
// rejected here; the sorter reports them per run.
func (p Pipeline) Validate() error {
	if len(p.Stages) == 0 {
		return fmt.Errorf("%w: no stages", ErrInvalidPipeline)
	}
	keys := make(map[string]struct{}, len(p.Stages))
	for i, s := range p.Stages {
		if s.Key == "" {
			return fmt.Errorf("%w: stage %d has no key", ErrInvalidPipeline, i)
		}
		if _, dup := keys[s.Key]; dup {
			return fmt.Errorf("%w: duplicate stage %q", ErrInvalidPipeline, s.Key)
		}
		keys[s.Key] = struct{}{}
		if s.Type == "" {
			return fmt.Errorf("%w: stage %q has no type", ErrInvalidPipeline, s.Key)
		}
		if s.Days < 1 {
			return fmt.Errorf("%w: stage %q must last at least one day", ErrInvalidPipeline, s.Key)
		}
	}
	for _, s := range p.Stages {
		for _, a := range s.After {
			if _, ok := keys[a]; !ok {
				return fmt.Errorf("%w: stage %q waits for unknown stage %q", ErrInvalidPipeline, s.Key, a)
			}
		}
	}
	return nil
}

func (s Stage) skills() []string {
	if len(s.Skills) > 0 {
		return append([]string(nil), s.Skills...)
	}
	return []string{string(s.Type)}
}
