package repositoryimpl

import (
	"context"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weidustudio/studio/internal/database"
	"github.com/weidustudio/studio/internal/project"
	"github.com/weidustudio/studio/pkg/cerr"
	"github.com/weidustudio/studio/pkg/storage"
)

func repositories(t *testing.T) map[string]project.Repository {
	t.Helper()
	db, err := database.OpenMemory(context.Background(), "projects_"+ulid.Make().String())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	gormRepo, err := NewGormRepository(db)
	require.NoError(t, err)
	return map[string]project.Repository{
		"yaml": NewYAMLRepository(storage.NewMemoryStorage()),
		"gorm": gormRepo,
	}
}

func TestRepository(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
			for i, title := range []string{"Loft", "Villa", "Studio"} {
				ts := base.Add(time.Duration(i) * time.Hour)
				require.NoError(t, repo.Create(ctx, &project.Project{
					ID:        ulid.MustNew(ulid.Timestamp(ts), ulid.DefaultEntropy()).String(),
					Title:     title,
					CreatedAt: ts,
					UpdatedAt: ts,
				}))
			}

			page, total, err := repo.List(ctx, 2, 0)
			require.NoError(t, err)
			assert.Equal(t, 3, total)
			require.Len(t, page, 2)
			assert.Equal(t, "Studio", page[0].Title)
			assert.Equal(t, "Villa", page[1].Title)

			page, _, err = repo.List(ctx, 0, 2)
			require.NoError(t, err)
			require.Len(t, page, 1)
			assert.Equal(t, "Loft", page[0].Title)

			loft := page[0]
			refs, err := project.Refs(ctx, repo, []string{loft.ID, loft.ID})
			require.NoError(t, err)
			assert.Equal(t, []string{loft.ID}, []string{refs[0].ID})
			assert.Len(t, refs, 1)

			_, err = project.Refs(ctx, repo, []string{"missing"})
			assert.True(t, cerr.IsCode(err, cerr.NotFound))

			loft.Title = "Loft II"
			require.NoError(t, repo.Update(ctx, loft))
			got, err := repo.Get(ctx, loft.ID)
			require.NoError(t, err)
			assert.Equal(t, "Loft II", got.Title)

			require.NoError(t, repo.Delete(ctx, loft.ID))
			assert.True(t, cerr.IsCode(repo.Delete(ctx, loft.ID), cerr.NotFound))
		})
	}
}
