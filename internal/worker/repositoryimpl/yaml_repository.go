package repositoryimpl

import (
	"cmp"
	"context"
	"slices"

	"github.com/weidustudio/studio/internal/worker"
	"github.com/weidustudio/studio/pkg/storage"
	"github.com/weidustudio/studio/pkg/yamlstore"
)

const workersPrefix = "workers"

// YAMLRepository keeps workers/<id>.yaml.
type YAMLRepository struct {
	docs *yamlstore.Collection[worker.Worker]
}

func NewYAMLRepository(s storage.Storage) *YAMLRepository {
	return &YAMLRepository{docs: yamlstore.New[worker.Worker](s, workersPrefix, "worker")}
}

func (r *YAMLRepository) Create(ctx context.Context, w *worker.Worker) error {
	return r.docs.Create(ctx, w.ID, w)
}

func (r *YAMLRepository) Get(ctx context.Context, id string) (*worker.Worker, error) {
	return r.docs.Get(ctx, id)
}

// List returns the roster in creation order, ties broken by id. Ids may be
// chosen by clients, so file order is not enough.
func (r *YAMLRepository) List(ctx context.Context) ([]*worker.Worker, error) {
	workers, err := r.docs.List(ctx)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(workers, func(a, b *worker.Worker) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.ID, b.ID))
	})
	return workers, nil
}

func (r *YAMLRepository) Update(ctx context.Context, w *worker.Worker) error {
	return r.docs.Update(ctx, w.ID, w)
}

func (r *YAMLRepository) Delete(ctx context.Context, id string) error {
	return r.docs.Delete(ctx, id)
}
