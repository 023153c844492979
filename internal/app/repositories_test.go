package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weidustudio/studio/internal/config"
	"github.com/weidustudio/studio/internal/worker"
)

func TestOpenRepositories(t *testing.T) {
	dir := t.TempDir()
	envs := map[string]*config.StorageEnv{
		"local":  {Type: "local", BaseDir: filepath.Join(dir, "data")},
		"sqlite": {Type: "sqlite", DatabaseDSN: "file:" + filepath.Join(dir, "studio.db")},
	}
	for name, env := range envs {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repos, err := OpenRepositories(ctx, env, time.UTC)
			require.NoError(t, err)
			defer repos.Close()

			n, err := worker.SeedDefaults(ctx, repos.Workers, time.Now)
			require.NoError(t, err)
			assert.Equal(t, 4, n)

			workers, err := repos.Store().ListWorkers(ctx)
			require.NoError(t, err)
			assert.Len(t, workers, 4)
		})
	}
}

func TestOpenRepositories_UnknownType(t *testing.T) {
	_, err := OpenRepositories(context.Background(), &config.StorageEnv{Type: "floppy"}, time.UTC)
	assert.Error(t, err)
}
