package pushsubscription

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/weidustudio/studio/pkg/cerr"
)

type Repository interface {
	Create(ctx context.Context, s *Subscription) error
	Get(ctx context.Context, id string) (*Subscription, error)
	List(ctx context.Context) ([]*Subscription, error)
	Update(ctx context.Context, s *Subscription) error
	Delete(ctx context.Context, id string) error
	// FindByEndpoint returns NotFound when no subscription uses endpoint.
	FindByEndpoint(ctx context.Context, endpoint string) (*Subscription, error)
}

// Register stores sub, or refreshes the keys of the subscription already
// registered for the same endpoint. Browsers re-register freely, so this
// is idempotent.
func Register(ctx context.Context, repo Repository, sub *Subscription, now time.Time) (*Subscription, error) {
	if err := sub.Validate(); err != nil {
		return nil, err
	}
	existing, err := repo.FindByEndpoint(ctx, sub.Endpoint)
	switch {
	case err == nil:
		existing.P256dhKey = sub.P256dhKey
		existing.AuthKey = sub.AuthKey
		existing.UserAgent = sub.UserAgent
		if err := repo.Update(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	case !cerr.IsCode(err, cerr.NotFound):
		return nil, err
	}
	sub.ID = ulid.Make().String()
	sub.CreatedAt = now
	if err := repo.Create(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func Unregister(ctx context.Context, repo Repository, endpoint string) error {
	if endpoint == "" {
		return cerr.NewError(cerr.InvalidArgument, "endpoint is required", nil)
	}
	s, err := repo.FindByEndpoint(ctx, endpoint)
	if err != nil {
		return err
	}
	return repo.Delete(ctx, s.ID)
}
