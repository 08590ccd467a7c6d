package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/clintrovert/taskfeatures/internal/config"
)

const snapshot = `{
  "organizations": [{"_id": "o1", "name": "acme", "teams": ["t1"]}],
  "teams": [{"_id": "t1", "projects": ["p1"]}],
  "projects": [{"_id": "p1"}],
  "tasks": [{
    "_id": "a", "project": "p1", "status": "Accepted", "title": "one",
    "points": {"total": 2, "done": 1}, "updatedAt": "2024-01-01T00:00:00Z"
  }]
}`

func TestOpenStore(t *testing.T) {
	t.Run("Should open a snapshot", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "dump.json")
		require.NoError(t, os.WriteFile(path, []byte(snapshot), 0o600))
		logger := zaptest.NewLogger(t)
		cfg := &config.Config{SnapshotPath: path}

		s, closeStore, err := OpenStore(context.Background(), cfg, logger)
		require.NoError(t, err)
		defer closeStore()

		out, err := NewPipeline(cfg, s, logger).Run(context.Background(), []string{"acme"})
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, "a", out[0].ID)
		assert.Equal(t, 2.0, out[0].ExpectedPoints)
	})

	t.Run("Should fail without a store", func(t *testing.T) {
		_, _, err := OpenStore(context.Background(), &config.Config{}, zaptest.NewLogger(t))
		assert.ErrorIs(t, err, ErrNoStore)
	})

	t.Run("Should fail on a missing snapshot", func(t *testing.T) {
		cfg := &config.Config{SnapshotPath: filepath.Join(t.TempDir(), "missing.json")}
		_, _, err := OpenStore(context.Background(), cfg, zaptest.NewLogger(t))
		assert.ErrorContains(t, err, "failed to open snapshot")
	})
}
