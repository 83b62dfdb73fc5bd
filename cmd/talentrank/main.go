// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/talentrank"
	"github.com/poiesic/talentrank/ai"
	"github.com/poiesic/talentrank/core"
	"github.com/poiesic/talentrank/index"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "talentrank",
		Usage: "Rank candidate profiles against a target description",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:  "embedding-host",
				Usage: "Embedding service host URL",
				Value: "http://localhost:11434/v1",
			},
			&cli.StringFlag{
				Name:  "embedding-model",
				Usage: "Embedding model name",
				Value: "embeddinggemma",
			},
			&cli.IntFlag{
				Name:  "dimension",
				Usage: "Embedding vector dimensionality",
				Value: 384,
			},
			&cli.StringFlag{
				Name:  "db",
				Usage: "Path to the local index snapshot directory",
				Value: "./talentrank_db",
			},
			&cli.StringFlag{
				Name:    "pinecone-api-key",
				Usage:   "Pinecone API key (enables the remote index backend)",
				EnvVars: []string{"PINECONE_API_KEY"},
			},
			&cli.StringFlag{
				Name:  "pinecone-index",
				Usage: "Pinecone index name",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "rank",
				Usage:     "Rank candidates from a JSON file against a description",
				ArgsUsage: "<description>",
				Action:    rankCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "candidates",
						Aliases:  []string{"c"},
						Usage:    "Path to a JSON file with an array of candidate profiles",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "top",
						Usage: "Show only the top N candidates (0 shows all)",
					},
				},
			},
			{
				Name:   "ingest",
				Usage:  "Embed candidates from a JSON file into the vector index",
				Action: ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "candidates",
						Aliases:  []string{"c"},
						Usage:    "Path to a JSON file with an array of candidate profiles",
						Required: true,
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Search ingested candidates by free-text query",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"k"},
						Usage:   "Maximum number of results",
						Value:   5,
					},
				},
			},
			{
				Name:   "stats",
				Usage:  "Show vector index statistics",
				Action: statsCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// candidateFile is the JSON shape accepted by rank and ingest.
type candidateFile struct {
	Id              string   `json:"id"`
	Skills          []string `json:"skills"`
	ExperienceYears float64  `json:"experience_years"`
	Education       string   `json:"education"`
	Narrative       string   `json:"narrative"`
}

func loadCandidates(path string) ([]*core.CandidateProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read candidates file: %w", err)
	}

	var entries []candidateFile
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse candidates file: %w", err)
	}

	candidates := make([]*core.CandidateProfile, len(entries))
	for i, entry := range entries {
		level, err := parseEducation(entry.Education)
		if err != nil {
			return nil, fmt.Errorf("candidate %d: %w", i, err)
		}
		candidates[i] = &core.CandidateProfile{
			Id:              entry.Id,
			Skills:          core.NormalizeSkills(entry.Skills),
			ExperienceYears: entry.ExperienceYears,
			Education:       level,
			Narrative:       entry.Narrative,
		}
	}
	return candidates, nil
}

func parseEducation(value string) (core.EducationLevel, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "none":
		return core.EducationNone, nil
	case "associate":
		return core.EducationAssociate, nil
	case "bachelor":
		return core.EducationBachelor, nil
	case "master":
		return core.EducationMaster, nil
	case "doctorate", "phd":
		return core.EducationDoctorate, nil
	default:
		return core.EducationNone, fmt.Errorf("unknown education level %q", value)
	}
}

func newEngine(ctx context.Context, c *cli.Context) (*talentrank.Engine, error) {
	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithEmbeddingDimension(c.Int("dimension")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	indexConfig := &index.Config{
		Dimension: aiConfig.EmbeddingDimension,
		Path:      c.String("db"),
	}
	if key := c.String("pinecone-api-key"); key != "" {
		indexConfig.Remote = &index.RemoteConfig{
			APIKey:    key,
			IndexName: c.String("pinecone-index"),
		}
	}

	return talentrank.NewEngine(ctx, indexConfig, talentrank.WithAIConfig(aiConfig))
}

func rankCommand(c *cli.Context) error {
	description := strings.Join(c.Args().Slice(), " ")
	if description == "" {
		return fmt.Errorf("description argument is required")
	}

	candidates, err := loadCandidates(c.String("candidates"))
	if err != nil {
		return err
	}

	ctx := context.Background()
	engine, err := newEngine(ctx, c)
	if err != nil {
		return err
	}
	defer engine.Close()

	requirements := engine.ExtractRequirements(description)
	fmt.Fprintf(os.Stderr, "Required skills: %s\n", strings.Join(requirements.Skills, ", "))
	fmt.Fprintf(os.Stderr, "Required experience: %g years\n", requirements.MinExperienceYears)
	fmt.Fprintf(os.Stderr, "Required education: %s\n\n", requirements.MinEducation)

	result, err := engine.RankWithRequirements(ctx, candidates, requirements)
	if err != nil {
		return fmt.Errorf("ranking failed: %w", err)
	}

	ranked := result.Ranked
	if top := c.Int("top"); top > 0 && top < len(ranked) {
		ranked = ranked[:top]
	}

	for i, entry := range ranked {
		b := entry.Breakdown
		fmt.Printf("%d: %s [%.3f] skills=%.2f experience=%.2f education=%.2f semantic=%.2f\n",
			i+1, entry.Candidate.Id, b.FinalScore,
			b.SkillMatchScore, b.ExperienceScore, b.EducationScore, b.SemanticSimilarityScore)
		if len(b.MissingSkills) > 0 {
			fmt.Printf("   missing: %s\n", strings.Join(b.MissingSkills, ", "))
		}
	}

	for _, failure := range result.Failures {
		fmt.Fprintf(os.Stderr, "failed: %s: %v\n", failure.Candidate.Id, failure.Err)
	}
	return nil
}

func ingestCommand(c *cli.Context) error {
	candidates, err := loadCandidates(c.String("candidates"))
	if err != nil {
		return err
	}

	ctx := context.Background()
	engine, err := newEngine(ctx, c)
	if err != nil {
		return err
	}
	defer engine.Close()

	results, err := engine.IngestCandidates(ctx, candidates)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	ingested := 0
	for _, result := range results {
		if result.Err != nil {
			fmt.Fprintf(os.Stderr, "failed: %s: %v\n", result.CandidateId, result.Err)
			continue
		}
		ingested++
	}

	if err := engine.Persist(ctx); err != nil {
		return fmt.Errorf("failed to persist index: %w", err)
	}

	fmt.Printf("Ingested %d of %d candidates\n", ingested, len(results))
	return nil
}

func searchCommand(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")
	if query == "" {
		return fmt.Errorf("query argument is required")
	}

	ctx := context.Background()
	engine, err := newEngine(ctx, c)
	if err != nil {
		return err
	}
	defer engine.Close()

	if err := engine.Restore(ctx); err != nil {
		slog.Warn("no usable index snapshot", "err", err)
	}

	matches, err := engine.SearchCandidates(ctx, query, c.Int("limit"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	fmt.Printf("Found %d hits\n", len(matches))
	for i, hit := range matches {
		fmt.Printf("%d: %s [%.3f]", i, hit.Id, hit.Score)
		if skills, ok := hit.Metadata["skills"]; ok {
			fmt.Printf(" skills=%s", skills)
		}
		fmt.Println()
	}
	return nil
}

func statsCommand(c *cli.Context) error {
	ctx := context.Background()
	engine, err := newEngine(ctx, c)
	if err != nil {
		return err
	}
	defer engine.Close()

	if err := engine.Restore(ctx); err != nil {
		slog.Warn("no usable index snapshot", "err", err)
	}

	stats, err := engine.Stats(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Backend: %s\n", stats.Backend)
	fmt.Printf("Dimension: %d\n", stats.Dimension)
	fmt.Printf("Vectors: %d\n", stats.TotalVectors)
	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
