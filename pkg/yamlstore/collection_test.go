package yamlstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weidustudio/studio/pkg/cerr"
	"github.com/weidustudio/studio/pkg/storage"
)

type record struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

func TestCollection(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStorage()
	c := New[record](store, "records", "record")

	require.NoError(t, c.Create(ctx, "b", &record{ID: "b", Name: "second"}))
	require.NoError(t, c.Create(ctx, "a", &record{ID: "a", Name: "first"}))
	assert.True(t, cerr.IsCode(c.Create(ctx, "a", &record{ID: "a"}), cerr.AlreadyExists))

	got, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "first", got.Name)

	require.NoError(t, store.Write(ctx, "records/broken.yaml", []byte("- just\n- a list\n")))
	all, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].ID)
	assert.Equal(t, "b", all[1].ID)

	assert.True(t, cerr.IsCode(c.Update(ctx, "zzz", &record{ID: "zzz"}), cerr.NotFound))
	require.NoError(t, c.Update(ctx, "a", &record{ID: "a", Name: "renamed"}))
	got, err = c.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name)

	require.NoError(t, c.Delete(ctx, "a"))
	_, err = c.Get(ctx, "a")
	assert.True(t, cerr.IsCode(err, cerr.NotFound))
	assert.True(t, cerr.IsCode(c.Delete(ctx, "a"), cerr.NotFound))
	assert.NoError(t, c.Remove(ctx, "a"))
}
