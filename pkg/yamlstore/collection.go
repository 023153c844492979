// Package yamlstore keeps one YAML document per record under a storage
// prefix, e.g. workers/<id>.yaml.
package yamlstore

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/weidustudio/studio/pkg/cerr"
	"github.com/weidustudio/studio/pkg/storage"
)

type Collection[T any] struct {
	storage storage.Storage
	prefix  string
	name    string
}

// New returns a collection of T stored under prefix. name is used in
// error messages ("worker not found").
func New[T any](s storage.Storage, prefix, name string) *Collection[T] {
	return &Collection[T]{storage: s, prefix: prefix, name: name}
}

func (c *Collection[T]) path(id string) string {
	return fmt.Sprintf("%s/%s.yaml", c.prefix, id)
}

// Create fails with AlreadyExists when id is taken.
func (c *Collection[T]) Create(ctx context.Context, id string, v *T) error {
	exists, err := c.storage.Exists(ctx, c.path(id))
	if err != nil {
		return cerr.WrapStorageWriteError(c.name, err)
	}
	if exists {
		return cerr.NewError(cerr.AlreadyExists, c.name+" already exists", nil)
	}
	return c.Put(ctx, id, v)
}

// Update fails with NotFound when id does not exist.
func (c *Collection[T]) Update(ctx context.Context, id string, v *T) error {
	exists, err := c.storage.Exists(ctx, c.path(id))
	if err != nil {
		return cerr.WrapStorageWriteError(c.name, err)
	}
	if !exists {
		return cerr.NewError(cerr.NotFound, c.name+" not found", nil)
	}
	return c.Put(ctx, id, v)
}

// Put writes v whether or not id exists.
func (c *Collection[T]) Put(ctx context.Context, id string, v *T) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to marshal %s: %w", c.name, err))
	}
	if err := c.storage.Write(ctx, c.path(id), data); err != nil {
		return cerr.WrapStorageWriteError(c.name, err)
	}
	return nil
}

func (c *Collection[T]) Get(ctx context.Context, id string) (*T, error) {
	data, err := c.storage.Read(ctx, c.path(id))
	if err != nil {
		return nil, cerr.WrapStorageReadError(c.name, err)
	}
	var v T
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to unmarshal %s: %w", c.name, err))
	}
	return &v, nil
}

// List returns every record ordered by id. Unreadable documents are
// skipped.
func (c *Collection[T]) List(ctx context.Context) ([]*T, error) {
	paths, err := c.storage.List(ctx, c.prefix)
	if err != nil {
		return nil, cerr.WrapStorageReadError(c.name, err)
	}
	sort.Strings(paths)

	out := make([]*T, 0, len(paths))
	for _, p := range paths {
		if !strings.HasSuffix(p, ".yaml") {
			continue
		}
		data, err := c.storage.Read(ctx, p)
		if err != nil {
			continue
		}
		var v T
		if err := yaml.Unmarshal(data, &v); err != nil {
			continue
		}
		out = append(out, &v)
	}
	return out, nil
}

func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	if err := c.storage.Delete(ctx, c.path(id)); err != nil {
		return cerr.WrapStorageDeleteError(c.name, err)
	}
	return nil
}

// Remove deletes id, treating a missing record as already removed.
func (c *Collection[T]) Remove(ctx context.Context, id string) error {
	err := c.Delete(ctx, id)
	if cerr.IsCode(err, cerr.NotFound) {
		return nil
	}
	return err
}
