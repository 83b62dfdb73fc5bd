package core

import (
	"encoding/binary"
	"fmt"
	"sort"
	"strings"

	"github.com/go-crypt/x/blake2b"
)

// IDFromContent generates a deterministic identifier from text content using
// BLAKE2b hashing. Identical content always produces the same identifier.
func IDFromContent(text string) string {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return fmt.Sprintf("%016x", binary.LittleEndian.Uint64(sum))
}

// EducationLevel is an ordinal degree attainment level.
// Levels form a total order: None < Associate < Bachelor < Master < Doctorate.
type EducationLevel int

const (
	// EducationNone means no degree attainment. As a requirement it means
	// "no education requirement" and is satisfied by every candidate.
	EducationNone EducationLevel = iota
	// EducationAssociate represents an associate degree.
	EducationAssociate
	// EducationBachelor represents a bachelor's degree.
	EducationBachelor
	// EducationMaster represents a master's degree.
	EducationMaster
	// EducationDoctorate represents a doctorate (PhD or equivalent).
	EducationDoctorate
)

// String returns a human-readable name for the level.
func (l EducationLevel) String() string {
	switch l {
	case EducationNone:
		return "none"
	case EducationAssociate:
		return "associate"
	case EducationBachelor:
		return "bachelor"
	case EducationMaster:
		return "master"
	case EducationDoctorate:
		return "doctorate"
	default:
		return fmt.Sprintf("education(%d)", int(l))
	}
}

// Satisfies reports whether the level meets or exceeds the required level.
func (l EducationLevel) Satisfies(required EducationLevel) bool {
	return l >= required
}

// CandidateProfile is a parsed candidate document. Profiles are produced by an
// external extraction collaborator and consumed read-only by the scoring core.
type CandidateProfile struct {
	Id              string
	Skills          []string // normalized lowercase tokens, deduplicated
	ExperienceYears float64  // 0 when not stated
	Education       EducationLevel
	Narrative       string // free-text summary, may be empty
}

// ProfileText builds the searchable text used for embedding a candidate.
// Sections are concatenated in a fixed order so the output is deterministic.
func (c *CandidateProfile) ProfileText() string {
	parts := make([]string, 0, 4)
	if c.Narrative != "" {
		parts = append(parts, "Summary: "+c.Narrative)
	}
	if len(c.Skills) > 0 {
		parts = append(parts, "Skills: "+strings.Join(c.Skills, ", "))
	}
	if c.ExperienceYears > 0 {
		parts = append(parts, fmt.Sprintf("Experience: %g years", c.ExperienceYears))
	}
	if c.Education != EducationNone {
		parts = append(parts, "Education: "+c.Education.String())
	}
	return strings.Join(parts, " | ")
}

// NormalizeSkills lowercases, trims, deduplicates and sorts skill tokens.
// Empty tokens are discarded.
func NormalizeSkills(skills []string) []string {
	seen := make(map[string]bool, len(skills))
	out := make([]string, 0, len(skills))
	for _, skill := range skills {
		token := strings.ToLower(strings.TrimSpace(skill))
		if token == "" || seen[token] {
			continue
		}
		seen[token] = true
		out = append(out, token)
	}
	sort.Strings(out)
	return out
}

// RequirementSet is the structured form of a target description. It is derived
// once per scoring pass and treated as immutable afterwards.
type RequirementSet struct {
	Description        string   // the raw description text, retained for embedding
	Skills             []string // required skill tokens, may be empty
	MinExperienceYears float64  // 0 means not specified
	MinEducation       EducationLevel
}

// HasSkillRequirement reports whether any skills are required.
func (r *RequirementSet) HasSkillRequirement() bool {
	return len(r.Skills) > 0
}

// HasExperienceRequirement reports whether a minimum experience is specified.
func (r *RequirementSet) HasExperienceRequirement() bool {
	return r.MinExperienceYears > 0
}

// HasEducationRequirement reports whether a minimum education level is specified.
func (r *RequirementSet) HasEducationRequirement() bool {
	return r.MinEducation > EducationNone
}

// ScoreBreakdown holds the four sub-scores and the blended final score for one
// (candidate, requirement set) pair. Breakdowns are created once per scoring
// call and never mutated; re-scoring produces a new instance.
//
// The JSON field set is the flat export contract consumed by downstream
// reporting collaborators.
type ScoreBreakdown struct {
	FinalScore              float64 `json:"final_score"`
	SkillMatchScore         float64 `json:"skill_match_score"`
	ExperienceScore         float64 `json:"experience_score"`
	EducationScore          float64 `json:"education_score"`
	SemanticSimilarityScore float64 `json:"semantic_similarity_score"`

	MatchedSkills      []string `json:"matched_skills"`
	MissingSkills      []string `json:"missing_skills"`
	ExperienceYears    float64  `json:"experience_years"`
	RequiredExperience float64  `json:"required_experience"`
	HasRequiredDegree  bool     `json:"has_required_degree"`
}
