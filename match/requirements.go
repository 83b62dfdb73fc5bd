package match

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/poiesic/talentrank/core"
)

// defaultSkillVocabulary is the built-in set of recognized skill tokens.
// Extractors can extend it with NewExtractor.
var defaultSkillVocabulary = []string{
	// Programming languages
	"python", "java", "javascript", "typescript", "c++", "c#", "ruby", "go",
	"rust", "php", "swift", "kotlin", "scala", "matlab", "perl",

	// Web frameworks
	"react", "angular", "vue", "django", "flask", "spring", "express",
	"node.js", "next.js", "fastapi", "asp.net", "laravel",

	// Databases
	"sql", "mysql", "postgresql", "mongodb", "redis", "elasticsearch",
	"dynamodb", "cassandra", "oracle", "sqlite",

	// Cloud and infrastructure
	"aws", "azure", "gcp", "docker", "kubernetes", "jenkins", "terraform",
	"ansible", "ci/cd", "git", "github", "gitlab",

	// Data and ML
	"machine learning", "deep learning", "nlp", "computer vision",
	"tensorflow", "pytorch", "scikit-learn", "pandas", "numpy",
	"spark", "hadoop", "kafka",

	// Process and tooling
	"agile", "scrum", "jira", "rest api", "graphql", "microservices",
	"testing", "unit testing", "tdd",
}

var experiencePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d+(?:\.\d+)?)\+?\s*years?\s+(?:of\s+)?experience`),
	regexp.MustCompile(`experience[:\s]+(\d+(?:\.\d+)?)\+?\s*years?`),
	regexp.MustCompile(`minimum\s+(?:of\s+)?(\d+(?:\.\d+)?)\+?\s*years?`),
	regexp.MustCompile(`at\s+least\s+(\d+(?:\.\d+)?)\+?\s*years?`),
}

// degreePatterns maps keyword patterns to education levels, highest first.
// Extraction picks the highest level whose keyword appears in the description.
var degreePatterns = []struct {
	level core.EducationLevel
	re    *regexp.Regexp
}{
	{core.EducationDoctorate, tokenPattern("phd", "ph.d", "doctorate", "doctoral")},
	{core.EducationMaster, tokenPattern("master", "masters", "mba", "msc", "m.s")},
	{core.EducationBachelor, tokenPattern("bachelor", "bachelors", "bsc", "b.s", "b.a")},
	{core.EducationAssociate, tokenPattern("associate degree", "associate's")},
}

// tokenPattern builds a word-boundary alternation over the tokens. Tokens may
// contain symbols ("c++", "m.s"), so the boundary is anything that is not a
// letter or digit rather than regexp \b.
func tokenPattern(tokens ...string) *regexp.Regexp {
	quoted := make([]string, len(tokens))
	for i, token := range tokens {
		quoted[i] = regexp.QuoteMeta(token)
	}
	return regexp.MustCompile(`(?:^|[^a-z0-9])(?:` + strings.Join(quoted, "|") + `)(?:[^a-z0-9]|$)`)
}

// skillPattern matches one vocabulary token at word boundaries.
type skillPattern struct {
	token string
	re    *regexp.Regexp
}

func compileSkillPatterns(tokens []string) []skillPattern {
	patterns := make([]skillPattern, 0, len(tokens))
	seen := make(map[string]bool, len(tokens))
	for _, token := range tokens {
		token = strings.ToLower(strings.TrimSpace(token))
		if token == "" || seen[token] {
			continue
		}
		seen[token] = true
		patterns = append(patterns, skillPattern{token: token, re: tokenPattern(token)})
	}
	return patterns
}

// Extractor parses free-text descriptions into structured requirement sets.
// Extraction never fails; text with no recognizable signals yields an empty
// requirement set.
type Extractor struct {
	patterns []skillPattern
}

// NewExtractor creates an extractor over the built-in skill vocabulary plus
// any extra tokens.
func NewExtractor(extraVocabulary ...string) *Extractor {
	vocabulary := make([]string, 0, len(defaultSkillVocabulary)+len(extraVocabulary))
	vocabulary = append(vocabulary, defaultSkillVocabulary...)
	vocabulary = append(vocabulary, extraVocabulary...)
	return &Extractor{patterns: compileSkillPatterns(vocabulary)}
}

// Extract derives a requirement set from a description.
func (e *Extractor) Extract(description string) *core.RequirementSet {
	lower := strings.ToLower(description)
	return &core.RequirementSet{
		Description:        description,
		Skills:             e.extractSkills(lower),
		MinExperienceYears: extractExperience(lower),
		MinEducation:       extractEducation(lower),
	}
}

func (e *Extractor) extractSkills(lower string) []string {
	var found []string
	for _, pattern := range e.patterns {
		if pattern.re.MatchString(lower) {
			found = append(found, pattern.token)
		}
	}
	return core.NormalizeSkills(found)
}

// extractExperience takes the maximum across every matched pattern so that
// "3 years in X, 5+ years overall" yields 5.
func extractExperience(lower string) float64 {
	var max float64
	for _, pattern := range experiencePatterns {
		for _, groups := range pattern.FindAllStringSubmatch(lower, -1) {
			years, err := strconv.ParseFloat(groups[1], 64)
			if err != nil {
				continue
			}
			if years > max {
				max = years
			}
		}
	}
	return max
}

func extractEducation(lower string) core.EducationLevel {
	for _, entry := range degreePatterns {
		if entry.re.MatchString(lower) {
			return entry.level
		}
	}
	return core.EducationNone
}
