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


package talentrank

import (
	"context"
	"log/slog"

	"github.com/poiesic/talentrank/ai"
	"github.com/poiesic/talentrank/ai/openai"
	"github.com/poiesic/talentrank/core"
	"github.com/poiesic/talentrank/index"
	"github.com/poiesic/talentrank/index/local"
	"github.com/poiesic/talentrank/index/pinecone"
	"github.com/poiesic/talentrank/ingest"
	"github.com/poiesic/talentrank/match"
)

// Engine wires the embedder, vector index, extractor, scorer, ranker and
// ingestion pipeline together behind one facade. The index backend is chosen
// once at construction: remote when credentials are configured and
// initialization succeeds, local otherwise.
type Engine struct {
	embedder  ai.Embedder
	idx       index.Index
	extractor *match.Extractor
	ranker    *match.Ranker
	pipeline  *ingest.Pipeline
	logger    *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	aiConfig   *ai.Config
	weights    match.Weights
	embedder   ai.Embedder
	vocabulary []string
	scorerOpts []match.ScorerOption
	rankerOpts []match.RankerOption
}

// WithAIConfig sets the embedding service configuration.
func WithAIConfig(cfg *ai.Config) EngineOption {
	return func(o *engineOptions) {
		o.aiConfig = cfg
	}
}

// WithWeights sets the scoring weight configuration.
// Default is match.DefaultWeights().
func WithWeights(weights match.Weights) EngineOption {
	return func(o *engineOptions) {
		o.weights = weights
	}
}

// WithEmbedder substitutes a custom embedder, bypassing the embedding
// service. Intended for tests.
func WithEmbedder(embedder ai.Embedder) EngineOption {
	return func(o *engineOptions) {
		o.embedder = embedder
	}
}

// WithSkillVocabulary extends the requirement extractor's skill vocabulary.
func WithSkillVocabulary(tokens ...string) EngineOption {
	return func(o *engineOptions) {
		o.vocabulary = append(o.vocabulary, tokens...)
	}
}

// WithScorerOptions forwards options to the scorer.
func WithScorerOptions(opts ...match.ScorerOption) EngineOption {
	return func(o *engineOptions) {
		o.scorerOpts = append(o.scorerOpts, opts...)
	}
}

// WithRankerOptions forwards options to the ranker.
func WithRankerOptions(opts ...match.RankerOption) EngineOption {
	return func(o *engineOptions) {
		o.rankerOpts = append(o.rankerOpts, opts...)
	}
}

// NewEngine creates an engine over the given index configuration.
//
// When remote index credentials are present, a failure to initialize the
// remote backend falls back to the local variant unless Remote.Required is
// set, in which case construction fails. The choice is made once here and
// never re-evaluated per call.
func NewEngine(ctx context.Context, indexCfg *index.Config, opts ...EngineOption) (*Engine, error) {
	options := &engineOptions{
		aiConfig: ai.DefaultConfig(),
		weights:  match.DefaultWeights(),
	}
	for _, opt := range opts {
		opt(options)
	}

	embedder := options.embedder
	if embedder == nil {
		var err error
		embedder, err = openai.NewEmbedder(options.aiConfig)
		if err != nil {
			return nil, err
		}
	}

	logger := slog.Default().With("component", "engine")

	idx, err := openIndex(ctx, indexCfg, logger)
	if err != nil {
		return nil, err
	}

	scorer, err := match.NewScorer(embedder, options.weights, options.scorerOpts...)
	if err != nil {
		idx.Close()
		return nil, err
	}

	ranker, err := match.NewRanker(scorer, options.rankerOpts...)
	if err != nil {
		idx.Close()
		return nil, err
	}

	pipeline, err := ingest.NewPipeline(embedder, idx)
	if err != nil {
		ranker.Release()
		idx.Close()
		return nil, err
	}

	return &Engine{
		embedder:  embedder,
		idx:       idx,
		extractor: match.NewExtractor(options.vocabulary...),
		ranker:    ranker,
		pipeline:  pipeline,
		logger:    logger,
	}, nil
}

// openIndex selects the index backend.
func openIndex(ctx context.Context, cfg *index.Config, logger *slog.Logger) (index.Index, error) {
	if cfg.HasRemote() {
		remote, err := pinecone.New(ctx, cfg)
		if err == nil {
			return remote, nil
		}
		if cfg.Remote.Required {
			return nil, err
		}
		logger.Warn("remote index unavailable, using local index", "err", err)
	}
	return local.New(cfg)
}

// ExtractRequirements parses a free-text description into a requirement set.
func (e *Engine) ExtractRequirements(description string) *core.RequirementSet {
	return e.extractor.Extract(description)
}

// Rank extracts requirements from the description and ranks the candidates
// against them.
func (e *Engine) Rank(ctx context.Context, candidates []*core.CandidateProfile, description string) (*match.RankResult, error) {
	return e.ranker.Rank(ctx, candidates, e.extractor.Extract(description))
}

// RankWithRequirements ranks candidates against an already-built requirement
// set.
func (e *Engine) RankWithRequirements(ctx context.Context, candidates []*core.CandidateProfile, requirements *core.RequirementSet) (*match.RankResult, error) {
	return e.ranker.Rank(ctx, candidates, requirements)
}

// IngestCandidates embeds candidate profiles and loads them into the index.
func (e *Engine) IngestCandidates(ctx context.Context, candidates []*core.CandidateProfile) ([]ingest.Result, error) {
	return e.pipeline.Ingest(ctx, candidates)
}

// SearchCandidates embeds the query text and returns the k nearest ingested
// candidates.
func (e *Engine) SearchCandidates(ctx context.Context, query string, k int) ([]index.Match, error) {
	vector, err := e.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, err
	}
	return e.idx.Query(ctx, ingest.NormalizeVector(vector), k)
}

// Persist saves the index state. A no-op on the remote backend.
func (e *Engine) Persist(ctx context.Context) error {
	return e.idx.Persist(ctx)
}

// Restore reloads the index state. A no-op on the remote backend.
func (e *Engine) Restore(ctx context.Context) error {
	return e.idx.Restore(ctx)
}

// Stats reports index statistics.
func (e *Engine) Stats(ctx context.Context) (*index.Stats, error) {
	return e.idx.Stats(ctx)
}

// Index exposes the underlying vector index.
func (e *Engine) Index() index.Index {
	return e.idx
}

// Close releases worker pools and closes the index.
func (e *Engine) Close() error {
	e.ranker.Release()
	e.pipeline.Release()

	if err := e.idx.Close(); err != nil {
		e.logger.Error("error closing index", "err", err)
		return err
	}
	return nil
}
