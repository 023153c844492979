package worker

import (
	"slices"
	"time"

	"github.com/weidustudio/studio/internal/planner"
	"github.com/weidustudio/studio/pkg/validation"
)

type Worker struct {
	ID            string    `yaml:"id" json:"id"`
	Name          string    `yaml:"name" json:"name" validate:"required,max=100"`
	Role          string    `yaml:"role" json:"role" validate:"max=100"`
	Skills        []string  `yaml:"skills" json:"skills" validate:"dive,required"`
	MaxConcurrent int       `yaml:"max_concurrent" json:"max_concurrent" validate:"min=1,max=100"`
	CreatedAt     time.Time `yaml:"created_at" json:"created_at"`
	UpdatedAt     time.Time `yaml:"updated_at" json:"updated_at"`
}

func (w *Worker) Validate() error {
	return validation.Struct(w, "invalid worker")
}

// Resource is the worker as the planner sees it.
func (w *Worker) Resource() planner.Worker {
	return planner.Worker{
		ID:            w.ID,
		Name:          w.Name,
		Skills:        slices.Clone(w.Skills),
		MaxConcurrent: w.MaxConcurrent,
	}
}

func Resources(workers []*Worker) []planner.Worker {
	out := make([]planner.Worker, len(workers))
	for i, w := range workers {
		out[i] = w.Resource()
	}
	return out
}
