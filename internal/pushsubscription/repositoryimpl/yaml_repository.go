package repositoryimpl

import (
	"context"

	"github.com/weidustudio/studio/internal/pushsubscription"
	"github.com/weidustudio/studio/pkg/cerr"
	"github.com/weidustudio/studio/pkg/storage"
	"github.com/weidustudio/studio/pkg/yamlstore"
)

const pushSubscriptionsPrefix = "push_subscriptions"

type YAMLRepository struct {
	docs *yamlstore.Collection[pushsubscription.Subscription]
}

func NewYAMLRepository(s storage.Storage) *YAMLRepository {
	return &YAMLRepository{docs: yamlstore.New[pushsubscription.Subscription](s, pushSubscriptionsPrefix, "push subscription")}
}

func (r *YAMLRepository) Create(ctx context.Context, s *pushsubscription.Subscription) error {
	return r.docs.Create(ctx, s.ID, s)
}

func (r *YAMLRepository) Get(ctx context.Context, id string) (*pushsubscription.Subscription, error) {
	return r.docs.Get(ctx, id)
}

func (r *YAMLRepository) List(ctx context.Context) ([]*pushsubscription.Subscription, error) {
	return r.docs.List(ctx)
}

func (r *YAMLRepository) Update(ctx context.Context, s *pushsubscription.Subscription) error {
	return r.docs.Update(ctx, s.ID, s)
}

func (r *YAMLRepository) Delete(ctx context.Context, id string) error {
	return r.docs.Delete(ctx, id)
}

func (r *YAMLRepository) FindByEndpoint(ctx context.Context, endpoint string) (*pushsubscription.Subscription, error) {
	all, err := r.docs.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, s := range all {
		if s.Endpoint == endpoint {
			return s, nil
		}
	}
	return nil, cerr.NewError(cerr.NotFound, "push subscription not found", nil)
}
