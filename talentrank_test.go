package talentrank

import (
	"context"
	"testing"

	"github.com/poiesic/talentrank/ai/mock"
	"github.com/poiesic/talentrank/core"
	"github.com/poiesic/talentrank/index"
	"github.com/poiesic/talentrank/match"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, opts ...EngineOption) *Engine {
	t.Helper()
	opts = append([]EngineOption{WithEmbedder(mock.NewMockEmbedder())}, opts...)
	engine, err := NewEngine(context.Background(),
		&index.Config{Dimension: mock.DefaultDimension}, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { engine.Close() })
	return engine
}

func TestNewEngine(t *testing.T) {
	t.Run("local backend without remote config", func(t *testing.T) {
		engine := newTestEngine(t)

		stats, err := engine.Stats(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "local", stats.Backend)
	})

	t.Run("invalid weights fail construction", func(t *testing.T) {
		_, err := NewEngine(context.Background(),
			&index.Config{Dimension: mock.DefaultDimension},
			WithEmbedder(mock.NewMockEmbedder()),
			WithWeights(match.Weights{Skill: 2}))
		assert.ErrorIs(t, err, match.ErrInvalidWeights)
	})

	t.Run("invalid index config fails construction", func(t *testing.T) {
		_, err := NewEngine(context.Background(), &index.Config{},
			WithEmbedder(mock.NewMockEmbedder()))
		assert.Error(t, err)
	})
}

func TestEngineRank(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t)

	candidates := []*core.CandidateProfile{
		{Id: "junior", Skills: []string{"python"}, ExperienceYears: 1},
		{Id: "senior", Skills: []string{"python", "aws"}, ExperienceYears: 7, Education: core.EducationMaster},
	}

	result, err := engine.Rank(ctx, candidates,
		"Python and AWS engineer, 5+ years of experience, Master's degree required")
	require.NoError(t, err)
	require.Len(t, result.Ranked, 2)
	assert.Empty(t, result.Failures)
	assert.Equal(t, "senior", result.Ranked[0].Candidate.Id)
	assert.Equal(t, "junior", result.Ranked[1].Candidate.Id)

	top := result.Ranked[0].Breakdown
	assert.True(t, top.HasRequiredDegree)
	assert.Equal(t, 5.0, top.RequiredExperience)
}

func TestEngineExtractRequirements(t *testing.T) {
	engine := newTestEngine(t, WithSkillVocabulary("cobol"))

	req := engine.ExtractRequirements("COBOL maintainer, minimum of 10 years")
	assert.Equal(t, []string{"cobol"}, req.Skills)
	assert.Equal(t, 10.0, req.MinExperienceYears)
}

func TestEngineIngestAndSearch(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t)

	candidates := []*core.CandidateProfile{
		{Id: "ada", Skills: []string{"go"}, Narrative: "Distributed systems engineer"},
		{Id: "bob", Skills: []string{"react"}, Narrative: "Frontend developer"},
	}

	results, err := engine.IngestCandidates(ctx, candidates)
	require.NoError(t, err)
	for _, result := range results {
		require.NoError(t, result.Err)
	}

	stats, err := engine.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalVectors)

	// The mock embedder is deterministic, so a candidate's own profile text
	// is its nearest neighbor.
	matches, err := engine.SearchCandidates(ctx, candidates[0].ProfileText(), 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "ada", matches[0].Id)
}

func TestEnginePersistRestore(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t)

	_, err := engine.IngestCandidates(ctx, []*core.CandidateProfile{
		{Id: "ada", Narrative: "engineer"},
	})
	require.NoError(t, err)

	require.NoError(t, engine.Persist(ctx))
	require.NoError(t, engine.Index().Delete(ctx, "ada"))
	require.NoError(t, engine.Restore(ctx))

	stats, err := engine.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalVectors)
}
