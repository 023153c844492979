package project

import (
	"time"

	"github.com/weidustudio/studio/internal/planner"
	"github.com/weidustudio/studio/pkg/validation"
)

type Project struct {
	ID          string    `yaml:"id" json:"id"`
	Title       string    `yaml:"title" json:"title" validate:"max=200"`
	Category    string    `yaml:"category" json:"category" validate:"max=100"`
	Location    string    `yaml:"location" json:"location" validate:"max=200"`
	Area        string    `yaml:"area" json:"area" validate:"max=50"`
	Description string    `yaml:"description" json:"description"`
	Published   bool      `yaml:"published" json:"published"`
	CreatedAt   time.Time `yaml:"created_at" json:"created_at"`
	UpdatedAt   time.Time `yaml:"updated_at" json:"updated_at"`
}

func (p *Project) Validate() error {
	return validation.Struct(p, "invalid project")
}

func (p *Project) Ref() planner.ProjectRef {
	return planner.ProjectRef{ID: p.ID, Title: p.Title}
}
