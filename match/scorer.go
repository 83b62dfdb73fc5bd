package match

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/poiesic/talentrank/ai"
	"github.com/poiesic/talentrank/core"
)

// ClampStrategy controls how raw cosine similarity in [-1, 1] is mapped into
// the [0, 1] range before blending.
type ClampStrategy int

const (
	// ClampDirect floors negative similarity at 0 and keeps positive
	// similarity as-is. This is the default.
	ClampDirect ClampStrategy = iota

	// ClampShift maps linearly via (cosine + 1) / 2, preserving ordering
	// across the whole [-1, 1] range.
	ClampShift
)

// DefaultExperienceCeiling caps the experience ratio bonus for candidates
// exceeding the required threshold.
const DefaultExperienceCeiling = 1.2

// Scorer blends four independent signals into one score per candidate. Each
// Score call is a pure function of its inputs aside from the read-only
// embedder state, so a single Scorer is safe for concurrent use.
type Scorer struct {
	embedder ai.Embedder
	weights  Weights
	ceiling  float64
	clamp    ClampStrategy
	logger   *slog.Logger
}

// ScorerOption configures a Scorer.
type ScorerOption func(*Scorer) error

// WithExperienceCeiling sets the cap on the experience ratio.
// Default is DefaultExperienceCeiling.
func WithExperienceCeiling(ceiling float64) ScorerOption {
	return func(s *Scorer) error {
		if ceiling < 1.0 {
			return fmt.Errorf("%w: got %g", ErrInvalidCeiling, ceiling)
		}
		s.ceiling = ceiling
		return nil
	}
}

// WithClampStrategy sets how cosine similarity maps into [0, 1].
// Default is ClampDirect.
func WithClampStrategy(strategy ClampStrategy) ScorerOption {
	return func(s *Scorer) error {
		s.clamp = strategy
		return nil
	}
}

// WithScorerLogger sets a custom logger.
// Default is slog.Default().
func WithScorerLogger(logger *slog.Logger) ScorerOption {
	return func(s *Scorer) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger.With("component", "scorer")
		return nil
	}
}

// NewScorer creates a scorer. The weight configuration is validated here;
// an invalid configuration fails construction rather than every call.
func NewScorer(embedder ai.Embedder, weights Weights, opts ...ScorerOption) (*Scorer, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if err := weights.Validate(); err != nil {
		return nil, err
	}

	s := &Scorer{
		embedder: embedder,
		weights:  weights,
		ceiling:  DefaultExperienceCeiling,
		clamp:    ClampDirect,
		logger:   slog.Default().With("component", "scorer"),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Score computes the full breakdown for one candidate against a requirement
// set. An embedding failure fails this candidate only.
func (s *Scorer) Score(ctx context.Context, candidate *core.CandidateProfile, requirements *core.RequirementSet) (*core.ScoreBreakdown, error) {
	queryVector, err := s.embedDescription(ctx, requirements)
	if err != nil {
		return nil, err
	}
	return s.scoreWithQueryVector(ctx, candidate, requirements, queryVector)
}

// embedDescription embeds the requirement description once per scoring pass.
// A nil vector means no description text was provided.
func (s *Scorer) embedDescription(ctx context.Context, requirements *core.RequirementSet) ([]float32, error) {
	if requirements == nil {
		return nil, ErrRequirementsRequired
	}
	if requirements.Description == "" {
		return nil, nil
	}
	vector, err := s.embedder.EmbedText(ctx, requirements.Description)
	if err != nil {
		return nil, fmt.Errorf("embedding description: %w", err)
	}
	return vector, nil
}

// scoreWithQueryVector scores against a pre-embedded description. The Ranker
// uses this to embed the description once for a whole batch.
func (s *Scorer) scoreWithQueryVector(ctx context.Context, candidate *core.CandidateProfile, requirements *core.RequirementSet, queryVector []float32) (*core.ScoreBreakdown, error) {
	if requirements == nil {
		return nil, ErrRequirementsRequired
	}
	if err := core.ValidateCandidateProfile(candidate); err != nil {
		return nil, err
	}

	skillScore, matched, missing := skillOverlap(candidate.Skills, requirements.Skills)
	experienceScore := s.experienceScore(candidate.ExperienceYears, requirements.MinExperienceYears)

	educationScore := 1.0
	if requirements.HasEducationRequirement() && !candidate.Education.Satisfies(requirements.MinEducation) {
		educationScore = 0.0
	}

	semanticScore, err := s.semanticScore(ctx, candidate, queryVector)
	if err != nil {
		return nil, fmt.Errorf("scoring candidate %s: %w", candidate.Id, err)
	}

	finalScore := s.weights.Skill*skillScore +
		s.weights.Experience*experienceScore +
		s.weights.Education*educationScore +
		s.weights.Semantic*semanticScore

	s.logger.Debug("scored candidate",
		"candidate", candidate.Id,
		"final", finalScore,
		"skill", skillScore,
		"experience", experienceScore,
		"education", educationScore,
		"semantic", semanticScore)

	return &core.ScoreBreakdown{
		FinalScore:              finalScore,
		SkillMatchScore:         skillScore,
		ExperienceScore:         experienceScore,
		EducationScore:          educationScore,
		SemanticSimilarityScore: semanticScore,
		MatchedSkills:           matched,
		MissingSkills:           missing,
		ExperienceYears:         candidate.ExperienceYears,
		RequiredExperience:      requirements.MinExperienceYears,
		HasRequiredDegree:       educationScore > 0,
	}, nil
}

// skillOverlap computes Jaccard similarity between candidate and required
// skills: |intersection| / |candidate ∪ required|. An empty requirement is
// trivially satisfied with 1.0. Matched and missing partition the required
// set.
func skillOverlap(candidateSkills, requiredSkills []string) (float64, []string, []string) {
	required := core.NormalizeSkills(requiredSkills)
	if len(required) == 0 {
		return 1.0, nil, nil
	}

	candidate := core.NormalizeSkills(candidateSkills)
	candidateSet := make(map[string]bool, len(candidate))
	for _, skill := range candidate {
		candidateSet[skill] = true
	}

	var matched, missing []string
	for _, skill := range required {
		if candidateSet[skill] {
			matched = append(matched, skill)
		} else {
			missing = append(missing, skill)
		}
	}

	unionSize := len(candidate) + len(missing)
	return float64(len(matched)) / float64(unionSize), matched, missing
}

// experienceScore is the ratio of candidate experience to the required
// threshold, capped at the configured ceiling. No threshold means full score;
// a threshold with no candidate experience means zero.
func (s *Scorer) experienceScore(candidateYears, requiredYears float64) float64 {
	if requiredYears <= 0 {
		return 1.0
	}
	if candidateYears <= 0 {
		return 0.0
	}
	return math.Min(candidateYears/requiredYears, s.ceiling)
}

// semanticScore embeds the candidate text and compares it to the description
// vector. A nil description vector yields a neutral 1.0, consistent with the
// other unspecified-requirement signals.
func (s *Scorer) semanticScore(ctx context.Context, candidate *core.CandidateProfile, queryVector []float32) (float64, error) {
	if queryVector == nil {
		return 1.0, nil
	}

	candidateVector, err := s.embedder.EmbedText(ctx, candidate.ProfileText())
	if err != nil {
		return 0, fmt.Errorf("embedding candidate text: %w", err)
	}

	cosine := cosineSimilarity(queryVector, candidateVector)
	switch s.clamp {
	case ClampShift:
		return (cosine + 1) / 2, nil
	default:
		return math.Max(0, math.Min(1, cosine)), nil
	}
}

// cosineSimilarity calculates the cosine similarity of two vectors.
// A zero vector has similarity 0 with everything.
func cosineSimilarity(a, b []float32) float64 {
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < minLen; i++ {
		dot += float64(a[i]) * float64(b[i])
	}
	for _, v := range a {
		normA += float64(v) * float64(v)
	}
	for _, v := range b {
		normB += float64(v) * float64(v)
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
