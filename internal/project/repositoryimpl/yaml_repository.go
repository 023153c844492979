package repositoryimpl

import (
	"context"

	"github.com/weidustudio/studio/internal/project"
	"github.com/weidustudio/studio/pkg/storage"
	"github.com/weidustudio/studio/pkg/yamlstore"
)

const projectsPrefix = "projects"

type YAMLRepository struct {
	docs *yamlstore.Collection[project.Project]
}

func NewYAMLRepository(s storage.Storage) *YAMLRepository {
	return &YAMLRepository{docs: yamlstore.New[project.Project](s, projectsPrefix, "project")}
}

func (r *YAMLRepository) Create(ctx context.Context, p *project.Project) error {
	return r.docs.Create(ctx, p.ID, p)
}

func (r *YAMLRepository) Get(ctx context.Context, id string) (*project.Project, error) {
	return r.docs.Get(ctx, id)
}

// List pages through projects newest first.
func (r *YAMLRepository) List(ctx context.Context, limit, offset int) ([]*project.Project, int, error) {
	all, err := r.docs.List(ctx)
	if err != nil {
		return nil, 0, err
	}
	total := len(all)
	for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
		all[i], all[j] = all[j], all[i]
	}
	if offset >= len(all) {
		return nil, total, nil
	}
	all = all[offset:]
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, total, nil
}

func (r *YAMLRepository) Update(ctx context.Context, p *project.Project) error {
	return r.docs.Update(ctx, p.ID, p)
}

func (r *YAMLRepository) Delete(ctx context.Context, id string) error {
	return r.docs.Delete(ctx, id)
}
