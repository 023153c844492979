package project

import (
	"context"
	"fmt"

	"github.com/weidustudio/studio/internal/planner"
	"github.com/weidustudio/studio/pkg/cerr"
)

type Repository interface {
	Create(ctx context.Context, p *Project) error
	Get(ctx context.Context, id string) (*Project, error)
	List(ctx context.Context, limit, offset int) ([]*Project, int, error)
	Update(ctx context.Context, p *Project) error
	Delete(ctx context.Context, id string) error
}

// Refs resolves ids to planner references in the given order. Duplicate
// ids are collapsed; an unknown id is a NotFound error.
func Refs(ctx context.Context, repo Repository, ids []string) ([]planner.ProjectRef, error) {
	refs := make([]planner.ProjectRef, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		p, err := repo.Get(ctx, id)
		if err != nil {
			if cerr.IsCode(err, cerr.NotFound) {
				return nil, cerr.NewError(cerr.NotFound, fmt.Sprintf("project %s not found", id), err)
			}
			return nil, err
		}
		refs = append(refs, p.Ref())
	}
	return refs, nil
}
