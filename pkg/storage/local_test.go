package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Write(ctx, "workers/01.yaml", []byte("name: a\n")))

	ok, err := s.Exists(ctx, "workers/01.yaml")
	require.NoError(t, err)
	assert.True(t, ok)

	data, err := s.Read(ctx, "workers/01.yaml")
	require.NoError(t, err)
	assert.Equal(t, "name: a\n", string(data))

	require.NoError(t, s.Write(ctx, "workers/01.yaml", []byte("name: b\n")))
	data, err = s.Read(ctx, "workers/01.yaml")
	require.NoError(t, err)
	assert.Equal(t, "name: b\n", string(data))
}

func TestLocalStorage_NotFound(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = s.Read(ctx, "missing.yaml")
	assert.ErrorIs(t, err, ErrNotFound)

	err = s.Delete(ctx, "missing.yaml")
	assert.ErrorIs(t, err, ErrNotFound)

	ok, err := s.Exists(ctx, "missing.yaml")
	require.NoError(t, err)
	assert.False(t, ok)

	paths, err := s.List(ctx, "nothing-here")
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestLocalStorage_ListSortedAndFlat(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s, err := NewLocalStorage(root)
	require.NoError(t, err)

	require.NoError(t, s.Write(ctx, "schedules/p2.yaml", []byte("x")))
	require.NoError(t, s.Write(ctx, "schedules/p1.yaml", []byte("x")))
	require.NoError(t, s.Write(ctx, "schedules/nested/p3.yaml", []byte("x")))
	// Leftover from an interrupted write.
	require.NoError(t, os.WriteFile(filepath.Join(root, "schedules", "p4.yaml.123.tmp"), []byte("x"), 0o644))

	paths, err := s.List(ctx, "schedules")
	require.NoError(t, err)
	assert.Equal(t, []string{"schedules/p1.yaml", "schedules/p2.yaml"}, paths)
}

func TestLocalStorage_PathCannotEscapeRoot(t *testing.T) {
	ctx := context.Background()
	parent := t.TempDir()
	root := filepath.Join(parent, "root")
	s, err := NewLocalStorage(root)
	require.NoError(t, err)

	require.NoError(t, s.Write(ctx, "../outside.yaml", []byte("x")))

	_, err = os.Stat(filepath.Join(parent, "outside.yaml"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(root, "outside.yaml"))
	assert.NoError(t, err)
}
