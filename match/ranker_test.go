package match

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/poiesic/talentrank/ai/mock"
	"github.com/poiesic/talentrank/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRanker(t *testing.T, embedder *mock.MockEmbedder, opts ...RankerOption) *Ranker {
	t.Helper()
	scorer, err := NewScorer(embedder, DefaultWeights())
	require.NoError(t, err)
	ranker, err := NewRanker(scorer, opts...)
	require.NoError(t, err)
	t.Cleanup(ranker.Release)
	return ranker
}

func TestNewRanker(t *testing.T) {
	_, err := NewRanker(nil)
	assert.ErrorIs(t, err, ErrScorerRequired)
}

func TestRankOrdering(t *testing.T) {
	ctx := context.Background()
	ranker := newTestRanker(t, mock.NewMockEmbedder())

	requirements := &core.RequirementSet{
		Skills:             []string{"go", "aws"},
		MinExperienceYears: 5,
	}
	candidates := []*core.CandidateProfile{
		{Id: "junior", Skills: []string{"go"}, ExperienceYears: 1},
		{Id: "senior", Skills: []string{"go", "aws"}, ExperienceYears: 8},
		{Id: "mid", Skills: []string{"go", "aws"}, ExperienceYears: 3},
	}

	result, err := ranker.Rank(ctx, candidates, requirements)
	require.NoError(t, err)
	require.Len(t, result.Ranked, 3)
	assert.Empty(t, result.Failures)

	assert.Equal(t, "senior", result.Ranked[0].Candidate.Id)
	assert.Equal(t, "mid", result.Ranked[1].Candidate.Id)
	assert.Equal(t, "junior", result.Ranked[2].Candidate.Id)

	for i := 1; i < len(result.Ranked); i++ {
		assert.GreaterOrEqual(t,
			result.Ranked[i-1].Breakdown.FinalScore,
			result.Ranked[i].Breakdown.FinalScore)
	}
}

func TestRankTieBreakByInputOrder(t *testing.T) {
	ctx := context.Background()
	ranker := newTestRanker(t, mock.NewMockEmbedder())

	// Identical profiles score identically; input order must decide.
	requirements := &core.RequirementSet{Skills: []string{"go"}}
	candidates := []*core.CandidateProfile{
		{Id: "first", Skills: []string{"go"}},
		{Id: "second", Skills: []string{"go"}},
		{Id: "third", Skills: []string{"go"}},
	}

	result, err := ranker.Rank(ctx, candidates, requirements)
	require.NoError(t, err)
	require.Len(t, result.Ranked, 3)
	assert.Equal(t, "first", result.Ranked[0].Candidate.Id)
	assert.Equal(t, "second", result.Ranked[1].Candidate.Id)
	assert.Equal(t, "third", result.Ranked[2].Candidate.Id)
}

func TestRankIdempotent(t *testing.T) {
	ctx := context.Background()
	ranker := newTestRanker(t, mock.NewMockEmbedder())

	requirements := &core.RequirementSet{
		Description: "Go engineer",
		Skills:      []string{"go", "kubernetes"},
	}
	candidates := []*core.CandidateProfile{
		{Id: "a", Skills: []string{"go"}, Narrative: "gopher"},
		{Id: "b", Skills: []string{"go", "kubernetes"}, Narrative: "platform"},
		{Id: "c", Skills: []string{"kubernetes"}, Narrative: "ops"},
	}

	first, err := ranker.Rank(ctx, candidates, requirements)
	require.NoError(t, err)

	// Re-rank the already-sorted output; order must not change.
	sorted := make([]*core.CandidateProfile, len(first.Ranked))
	for i, entry := range first.Ranked {
		sorted[i] = entry.Candidate
	}
	second, err := ranker.Rank(ctx, sorted, requirements)
	require.NoError(t, err)

	require.Len(t, second.Ranked, len(first.Ranked))
	for i := range first.Ranked {
		assert.Equal(t, first.Ranked[i].Candidate.Id, second.Ranked[i].Candidate.Id)
		assert.Equal(t, first.Ranked[i].Breakdown.FinalScore, second.Ranked[i].Breakdown.FinalScore)
	}
}

func TestRankSurfacesPerCandidateFailures(t *testing.T) {
	ctx := context.Background()
	ranker := newTestRanker(t, mock.NewMockEmbedder())

	requirements := &core.RequirementSet{Skills: []string{"go"}}
	candidates := []*core.CandidateProfile{
		{Id: "good", Skills: []string{"go"}},
		{Id: "bad", ExperienceYears: -2},
		{Id: "also-good", Skills: []string{"go"}},
	}

	result, err := ranker.Rank(ctx, candidates, requirements)
	require.NoError(t, err)

	require.Len(t, result.Ranked, 2)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "bad", result.Failures[0].Candidate.Id)
	assert.ErrorIs(t, result.Failures[0].Err, core.ErrInvalidCandidate)
}

func TestRankDescriptionEmbeddingFailureFailsBatch(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("model unavailable")

	m := mock.NewMockEmbedder()
	m.EmbedTextFunc = func(_ context.Context, _ string) ([]float32, error) {
		return nil, boom
	}
	ranker := newTestRanker(t, m)

	_, err := ranker.Rank(ctx, []*core.CandidateProfile{{Id: "a"}},
		&core.RequirementSet{Description: "desc"})
	assert.ErrorIs(t, err, boom)
}

// recordingMonitor collects monitor callbacks for assertions.
type recordingMonitor struct {
	mu      sync.Mutex
	started bool
	scored  []string
	failed  []string
	ranked  int
}

var _ RankMonitor = (*recordingMonitor)(nil)

func (r *recordingMonitor) Start(_ string, _ int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = true
}

func (r *recordingMonitor) Scored(candidate *core.CandidateProfile, _ *core.ScoreBreakdown) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scored = append(r.scored, candidate.Id)
}

func (r *recordingMonitor) Failed(candidate *core.CandidateProfile, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = append(r.failed, candidate.Id)
}

func (r *recordingMonitor) Finish(ranked []*RankedCandidate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ranked = len(ranked)
}

func TestRankMonitorCallbacks(t *testing.T) {
	ctx := context.Background()
	monitor := &recordingMonitor{}
	ranker := newTestRanker(t, mock.NewMockEmbedder(), WithMonitor(monitor))

	candidates := []*core.CandidateProfile{
		{Id: "good", Skills: []string{"go"}},
		{Id: "bad", ExperienceYears: -1},
	}

	_, err := ranker.Rank(ctx, candidates, &core.RequirementSet{Skills: []string{"go"}})
	require.NoError(t, err)

	assert.True(t, monitor.started)
	assert.Equal(t, []string{"good"}, monitor.scored)
	assert.Equal(t, []string{"bad"}, monitor.failed)
	assert.Equal(t, 1, monitor.ranked)
}

func TestRankEmptyBatch(t *testing.T) {
	ctx := context.Background()
	ranker := newTestRanker(t, mock.NewMockEmbedder())

	result, err := ranker.Rank(ctx, nil, &core.RequirementSet{})
	require.NoError(t, err)
	assert.Empty(t, result.Ranked)
	assert.Empty(t, result.Failures)
}
