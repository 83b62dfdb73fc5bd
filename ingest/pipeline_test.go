package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/talentrank/ai/mock"
	"github.com/poiesic/talentrank/core"
	"github.com/poiesic/talentrank/index"
	"github.com/poiesic/talentrank/index/local"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPipeline(t *testing.T, embedder *mock.MockEmbedder, opts ...Option) (*Pipeline, *local.Index) {
	t.Helper()
	idx, err := local.New(&index.Config{Dimension: mock.DefaultDimension})
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })

	p, err := NewPipeline(embedder, idx, opts...)
	require.NoError(t, err)
	t.Cleanup(p.Release)
	return p, idx
}

func TestNewPipeline(t *testing.T) {
	t.Run("requires embedder", func(t *testing.T) {
		_, err := NewPipeline(nil, nil)
		assert.ErrorIs(t, err, ErrEmbedderRequired)
	})

	t.Run("requires index", func(t *testing.T) {
		_, err := NewPipeline(mock.NewMockEmbedder(), nil)
		assert.ErrorIs(t, err, ErrIndexRequired)
	})
}

func TestIngest(t *testing.T) {
	ctx := context.Background()

	t.Run("loads candidates into the index", func(t *testing.T) {
		embedder := mock.NewMockEmbedder()
		p, idx := newTestPipeline(t, embedder)

		candidates := []*core.CandidateProfile{
			{Id: "ada", Skills: []string{"go", "python"}, ExperienceYears: 6, Education: core.EducationMaster},
			{Id: "bob", Narrative: "Frontend engineer"},
		}

		results, err := p.Ingest(ctx, candidates)
		require.NoError(t, err)
		require.Len(t, results, 2)
		for _, result := range results {
			assert.NoError(t, result.Err)
		}

		stats, err := idx.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, stats.TotalVectors)

		// Metadata round-trips through the index.
		query, err := embedder.EmbedText(ctx, candidates[0].ProfileText())
		require.NoError(t, err)
		matches, err := idx.Query(ctx, query, 1)
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, "ada", matches[0].Id)
		assert.Equal(t, "go,python", matches[0].Metadata["skills"])
		assert.Equal(t, "6", matches[0].Metadata["experience_years"])
		assert.Equal(t, "master", matches[0].Metadata["education"])
	})

	t.Run("generates identifier from content", func(t *testing.T) {
		p, _ := newTestPipeline(t, mock.NewMockEmbedder())

		candidate := &core.CandidateProfile{Narrative: "Anonymous candidate"}
		results, err := p.Ingest(ctx, []*core.CandidateProfile{candidate})
		require.NoError(t, err)
		require.Len(t, results, 1)
		require.NoError(t, results[0].Err)
		assert.NotEmpty(t, results[0].CandidateId)

		// Same content, same identifier.
		again, err := p.Ingest(ctx, []*core.CandidateProfile{{Narrative: "Anonymous candidate"}})
		require.NoError(t, err)
		assert.Equal(t, results[0].CandidateId, again[0].CandidateId)
	})

	t.Run("invalid candidates fail individually", func(t *testing.T) {
		p, idx := newTestPipeline(t, mock.NewMockEmbedder())

		results, err := p.Ingest(ctx, []*core.CandidateProfile{
			{Id: "good", Narrative: "fine"},
			{Id: "bad", ExperienceYears: -3},
			nil,
		})
		require.NoError(t, err)
		require.Len(t, results, 3)

		assert.NoError(t, results[0].Err)
		assert.ErrorIs(t, results[1].Err, core.ErrInvalidCandidate)
		assert.ErrorIs(t, results[2].Err, core.ErrInvalidCandidate)

		stats, err := idx.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, stats.TotalVectors)
	})

	t.Run("embedding failure marks the whole batch", func(t *testing.T) {
		boom := errors.New("model unavailable")
		embedder := mock.NewMockEmbedder()
		embedder.EmbedTextsFunc = func(_ context.Context, _ []string) ([][]float32, error) {
			return nil, boom
		}
		p, _ := newTestPipeline(t, embedder, WithRetry(2, time.Millisecond))

		results, err := p.Ingest(ctx, []*core.CandidateProfile{
			{Id: "a", Narrative: "x"},
			{Id: "b", Narrative: "y"},
		})
		require.NoError(t, err)
		for _, result := range results {
			assert.ErrorIs(t, result.Err, boom)
		}
	})

	t.Run("retries transient embedding failures", func(t *testing.T) {
		calls := 0
		embedder := mock.NewMockEmbedder()
		embedder.EmbedTextsFunc = func(_ context.Context, texts []string) ([][]float32, error) {
			calls++
			if calls == 1 {
				return nil, errors.New("transient")
			}
			vectors := make([][]float32, len(texts))
			for i := range texts {
				vectors[i] = make([]float32, mock.DefaultDimension)
				vectors[i][0] = 1
			}
			return vectors, nil
		}
		p, _ := newTestPipeline(t, embedder, WithRetry(3, time.Millisecond))

		results, err := p.Ingest(ctx, []*core.CandidateProfile{{Id: "a", Narrative: "x"}})
		require.NoError(t, err)
		require.NoError(t, results[0].Err)
		assert.Equal(t, 2, calls)
	})

	t.Run("splits into batches", func(t *testing.T) {
		batches := 0
		embedder := mock.NewMockEmbedder()
		embedder.EmbedTextsFunc = func(_ context.Context, texts []string) ([][]float32, error) {
			batches++
			assert.LessOrEqual(t, len(texts), 2)
			vectors := make([][]float32, len(texts))
			for i := range texts {
				vectors[i] = make([]float32, mock.DefaultDimension)
				vectors[i][0] = 1
			}
			return vectors, nil
		}
		p, idx := newTestPipeline(t, embedder, WithBatchSize(2), WithPoolSize(1))

		candidates := make([]*core.CandidateProfile, 5)
		for i := range candidates {
			candidates[i] = &core.CandidateProfile{Id: string(rune('a' + i)), Narrative: "n"}
		}
		results, err := p.Ingest(ctx, candidates)
		require.NoError(t, err)
		for _, result := range results {
			assert.NoError(t, result.Err)
		}
		assert.Equal(t, 3, batches)

		stats, err := idx.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 5, stats.TotalVectors)
	})
}

func TestCandidateMetadata(t *testing.T) {
	t.Run("full profile", func(t *testing.T) {
		metadata := candidateMetadata(&core.CandidateProfile{
			Skills:          []string{"go", "aws"},
			ExperienceYears: 2.5,
			Education:       core.EducationBachelor,
		})
		assert.Equal(t, map[string]string{
			"skills":           "go,aws",
			"experience_years": "2.5",
			"education":        "bachelor",
		}, metadata)
	})

	t.Run("empty profile yields nil", func(t *testing.T) {
		assert.Nil(t, candidateMetadata(&core.CandidateProfile{Id: "a"}))
	})
}
