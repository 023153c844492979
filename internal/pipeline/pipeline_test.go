package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weidustudio/studio/internal/planner"
)

const twoStages = `stages:
  - key: survey
    type: design
    days: 2
    priority: 9
  - key: tiling
    type: carpentry
    days: 4
    priority: 3
    skills: [carpentry, tiling]
`

func TestParse(t *testing.T) {
	p, err := Parse([]byte(twoStages))
	require.NoError(t, err)
	assert.Equal(t, planner.Pipeline{Stages: []planner.Stage{
		{Key: "survey", Type: planner.TaskTypeDesign, Days: 2, Priority: 9},
		{Key: "tiling", Type: planner.TaskTypeCarpentry, Days: 4, Priority: 3, Skills: []string{"carpentry", "tiling"}},
	}}, p)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown field", "stages:\n  - key: a\n    type: design\n    days: 1\n    colour: red\n"},
		{"no stages", "stages: []\n"},
		{"zero days", "stages:\n  - key: a\n    type: design\n    days: 0\n"},
		{"unknown after", "stages:\n  - key: a\n    type: design\n    days: 1\n    after: [b]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.ErrorIs(t, err, planner.ErrInvalidPipeline)
		})
	}
}

func TestWatcher_FallsBackToDefault(t *testing.T) {
	w := NewWatcher(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, planner.DefaultPipeline(), w.Pipeline())
	assert.False(t, w.FromFile())
}

func TestWatcher_Reloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	require.NoError(t, os.WriteFile(path, []byte(twoStages), 0o644))

	w := NewWatcher(path)
	require.True(t, w.FromFile())
	assert.Len(t, w.Pipeline().Stages, 2)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	// Give the watcher a moment to register the directory.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("stages:\n  - key: only\n    type: painting\n    days: 3\n"), 0o644))
	assert.Eventually(t, func() bool {
		st := w.Pipeline().Stages
		return len(st) == 1 && st[0].Key == "only"
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte("stages: nope\n"), 0o644))
	assert.Eventually(t, func() bool { return !w.FromFile() }, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, planner.DefaultPipeline(), w.Pipeline())
}
