package local

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/poiesic/talentrank/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIndex(t *testing.T, dim int) *Index {
	t.Helper()
	idx, err := New(&index.Config{Dimension: dim})
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	return idx
}

func TestNewWithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	idx, err := New(&index.Config{Dimension: 2}, WithLogger(logger))
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })

	// Badger must log through the configured logger, not the default one.
	adapter, ok := idx.db.Opts().Logger.(*badgerLoggerAdapter)
	require.True(t, ok)
	assert.Same(t, idx.logger, adapter.logger)

	adapter.Infof("reloading %s", "snapshot")
	assert.Contains(t, buf.String(), "component=local-index")
	assert.Contains(t, buf.String(), "reloading snapshot")
}

func TestUpsert(t *testing.T) {
	ctx := context.Background()

	t.Run("stores and replaces by id", func(t *testing.T) {
		idx := newTestIndex(t, 3)

		require.NoError(t, idx.Upsert(ctx, &index.Record{
			Id:     "a",
			Vector: []float32{1, 0, 0},
		}))
		require.NoError(t, idx.Upsert(ctx, &index.Record{
			Id:       "a",
			Vector:   []float32{0, 1, 0},
			Metadata: map[string]string{"v": "2"},
		}))

		stats, err := idx.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, stats.TotalVectors)

		matches, err := idx.Query(ctx, []float32{0, 1, 0}, 1)
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, "a", matches[0].Id)
		assert.InDelta(t, 1.0, matches[0].Score, 1e-6)
		assert.Equal(t, "2", matches[0].Metadata["v"])
	})

	t.Run("rejects empty id", func(t *testing.T) {
		idx := newTestIndex(t, 3)

		err := idx.Upsert(ctx, &index.Record{Vector: []float32{1, 0, 0}})
		assert.ErrorIs(t, err, index.ErrEmptyRecordID)

		err = idx.Upsert(ctx, nil)
		assert.ErrorIs(t, err, index.ErrEmptyRecordID)
	})

	t.Run("rejects wrong dimension", func(t *testing.T) {
		idx := newTestIndex(t, 3)

		err := idx.Upsert(ctx, &index.Record{Id: "a", Vector: []float32{1, 0}})
		assert.ErrorIs(t, err, index.ErrDimensionMismatch)
	})

	t.Run("copies caller slices", func(t *testing.T) {
		idx := newTestIndex(t, 2)

		vec := []float32{1, 0}
		require.NoError(t, idx.Upsert(ctx, &index.Record{Id: "a", Vector: vec}))
		vec[0] = -1

		matches, err := idx.Query(ctx, []float32{1, 0}, 1)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, matches[0].Score, 1e-6)
	})
}

func TestUpsertBatch(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t, 2)

	results, err := idx.UpsertBatch(ctx, []*index.Record{
		{Id: "good", Vector: []float32{1, 0}},
		{Id: "bad-dim", Vector: []float32{1, 0, 0}},
		{Id: "", Vector: []float32{0, 1}},
		{Id: "also-good", Vector: []float32{0, 1}},
	})
	require.NoError(t, err)
	require.Len(t, results, 4)

	assert.NoError(t, results[0].Err)
	assert.ErrorIs(t, results[1].Err, index.ErrDimensionMismatch)
	assert.ErrorIs(t, results[2].Err, index.ErrEmptyRecordID)
	assert.NoError(t, results[3].Err)

	stats, err := idx.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalVectors)
}

func TestQuery(t *testing.T) {
	ctx := context.Background()

	t.Run("orders by descending similarity", func(t *testing.T) {
		idx := newTestIndex(t, 2)

		require.NoError(t, idx.Upsert(ctx, &index.Record{Id: "east", Vector: []float32{1, 0}}))
		require.NoError(t, idx.Upsert(ctx, &index.Record{Id: "north", Vector: []float32{0, 1}}))
		require.NoError(t, idx.Upsert(ctx, &index.Record{Id: "northeast", Vector: []float32{1, 1}}))

		matches, err := idx.Query(ctx, []float32{1, 0}, 10)
		require.NoError(t, err)
		require.Len(t, matches, 3)
		assert.Equal(t, "east", matches[0].Id)
		assert.Equal(t, "northeast", matches[1].Id)
		assert.Equal(t, "north", matches[2].Id)
	})

	t.Run("breaks ties by ascending id", func(t *testing.T) {
		idx := newTestIndex(t, 2)

		require.NoError(t, idx.Upsert(ctx, &index.Record{Id: "b", Vector: []float32{1, 0}}))
		require.NoError(t, idx.Upsert(ctx, &index.Record{Id: "a", Vector: []float32{1, 0}}))
		require.NoError(t, idx.Upsert(ctx, &index.Record{Id: "c", Vector: []float32{1, 0}}))

		matches, err := idx.Query(ctx, []float32{1, 0}, 10)
		require.NoError(t, err)
		require.Len(t, matches, 3)
		assert.Equal(t, "a", matches[0].Id)
		assert.Equal(t, "b", matches[1].Id)
		assert.Equal(t, "c", matches[2].Id)
	})

	t.Run("truncates to k", func(t *testing.T) {
		idx := newTestIndex(t, 2)

		require.NoError(t, idx.Upsert(ctx, &index.Record{Id: "a", Vector: []float32{1, 0}}))
		require.NoError(t, idx.Upsert(ctx, &index.Record{Id: "b", Vector: []float32{0, 1}}))

		matches, err := idx.Query(ctx, []float32{1, 0}, 1)
		require.NoError(t, err)
		assert.Len(t, matches, 1)
	})

	t.Run("rejects non-positive k", func(t *testing.T) {
		idx := newTestIndex(t, 2)

		_, err := idx.Query(ctx, []float32{1, 0}, 0)
		assert.ErrorIs(t, err, index.ErrInvalidQuery)
	})

	t.Run("rejects wrong dimension", func(t *testing.T) {
		idx := newTestIndex(t, 2)

		_, err := idx.Query(ctx, []float32{1, 0, 0}, 1)
		assert.ErrorIs(t, err, index.ErrDimensionMismatch)
	})

	t.Run("zero vector scores zero", func(t *testing.T) {
		idx := newTestIndex(t, 2)

		require.NoError(t, idx.Upsert(ctx, &index.Record{Id: "zero", Vector: []float32{0, 0}}))

		matches, err := idx.Query(ctx, []float32{1, 0}, 1)
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Zero(t, matches[0].Score)
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t, 2)

	require.NoError(t, idx.Upsert(ctx, &index.Record{Id: "a", Vector: []float32{1, 0}}))

	require.NoError(t, idx.Delete(ctx, "a"))
	require.NoError(t, idx.Delete(ctx, "a")) // missing id is a no-op
	require.NoError(t, idx.Delete(ctx, "never-existed"))

	stats, err := idx.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalVectors)
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t, 4)

	stats, err := idx.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, "local", stats.Backend)
	assert.Equal(t, 4, stats.Dimension)
	assert.Zero(t, stats.TotalVectors)
}

func TestClose(t *testing.T) {
	ctx := context.Background()
	idx, err := New(&index.Config{Dimension: 2})
	require.NoError(t, err)

	require.NoError(t, idx.Close())
	require.NoError(t, idx.Close()) // idempotent

	assert.ErrorIs(t, idx.Upsert(ctx, &index.Record{Id: "a", Vector: []float32{1, 0}}), index.ErrIndexClosed)
	_, err = idx.Query(ctx, []float32{1, 0}, 1)
	assert.ErrorIs(t, err, index.ErrIndexClosed)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{2, 0}, []float32{5, 0}), 1e-6)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-6)
	assert.InDelta(t, -1.0, cosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-6)
	assert.Zero(t, cosineSimilarity([]float32{0, 0}, []float32{1, 0}))
}
