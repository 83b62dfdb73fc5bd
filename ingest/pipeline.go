package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/talentrank/ai"
	"github.com/poiesic/talentrank/core"
	"github.com/poiesic/talentrank/index"
)

const (
	defaultBatchSize      = 32
	defaultMaxRetries     = 3
	defaultRetryBaseDelay = 500 * time.Millisecond
)

// Pipeline embeds candidate profiles and loads them into a vector index.
// Batches are embedded and upserted concurrently on a bounded worker pool.
type Pipeline struct {
	embedder       ai.Embedder
	idx            index.Index
	pool           *ants.Pool
	batchSize      int
	maxRetries     int
	retryBaseDelay time.Duration
	logger         *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent batch processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		if p.pool != nil {
			p.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithBatchSize sets how many candidates are embedded per model call.
// Default is 32.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		p.batchSize = size
		return nil
	}
}

// WithRetry sets the retry policy for embedding calls.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(p *Pipeline) error {
		if maxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		p.maxRetries = maxAttempts
		p.retryBaseDelay = baseDelay
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger.With("component", "ingest")
		return nil
	}
}

// NewPipeline creates an ingestion pipeline.
func NewPipeline(embedder ai.Embedder, idx index.Index, opts ...Option) (*Pipeline, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if idx == nil {
		return nil, ErrIndexRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		embedder:       embedder,
		idx:            idx,
		pool:           pool,
		batchSize:      defaultBatchSize,
		maxRetries:     defaultMaxRetries,
		retryBaseDelay: defaultRetryBaseDelay,
		logger:         slog.Default().With("component", "ingest"),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			p.Release()
			return nil, err
		}
	}
	return p, nil
}

// Result reports the outcome of ingesting one candidate. CandidateId carries
// the generated identifier when the profile arrived without one.
type Result struct {
	CandidateId string
	Err         error
}

// Ingest embeds every candidate's profile text and upserts the vectors with
// metadata into the index. Outcomes are reported per candidate in input
// order; a failed batch marks only its own candidates.
func (p *Pipeline) Ingest(ctx context.Context, candidates []*core.CandidateProfile) ([]Result, error) {
	results := make([]Result, len(candidates))

	// Resolve identifiers up front so results are meaningful even when a
	// batch fails.
	prepared := make([]*core.CandidateProfile, len(candidates))
	for i, candidate := range candidates {
		if candidate == nil {
			results[i].Err = fmt.Errorf("%w: candidate is nil", core.ErrInvalidCandidate)
			continue
		}
		resolved := *candidate
		if resolved.Id == "" {
			resolved.Id = core.IDFromContent(resolved.ProfileText())
		}
		results[i].CandidateId = resolved.Id

		if err := core.ValidateCandidateProfile(&resolved); err != nil {
			results[i].Err = err
			continue
		}
		prepared[i] = &resolved
	}

	var wg sync.WaitGroup
	for start := 0; start < len(prepared); start += p.batchSize {
		end := start + p.batchSize
		if end > len(prepared) {
			end = len(prepared)
		}

		batchStart, batchEnd := start, end
		wg.Add(1)
		task := func() {
			defer wg.Done()
			p.processBatch(ctx, prepared[batchStart:batchEnd], results[batchStart:batchEnd])
		}
		if err := p.pool.Submit(task); err != nil {
			// Pool unavailable; process on the calling goroutine.
			task()
		}
	}
	wg.Wait()

	return results, nil
}

// processBatch embeds one slice of candidates and upserts their records.
// Entries already marked failed by validation are skipped.
func (p *Pipeline) processBatch(ctx context.Context, batch []*core.CandidateProfile, results []Result) {
	valid := make([]*core.CandidateProfile, 0, len(batch))
	positions := make([]int, 0, len(batch))
	texts := make([]string, 0, len(batch))
	for i, candidate := range batch {
		if candidate == nil {
			continue
		}
		valid = append(valid, candidate)
		positions = append(positions, i)
		texts = append(texts, candidate.ProfileText())
	}
	if len(valid) == 0 {
		return
	}

	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = p.embedder.EmbedTexts(ctx, texts)
		return err
	}, p.maxRetries, p.retryBaseDelay)
	if err != nil {
		err = fmt.Errorf("failed to generate embeddings after %d attempts: %w", p.maxRetries, err)
		p.failBatch(results, positions, err)
		return
	}
	if len(embeddings) != len(valid) {
		err = fmt.Errorf("embedding count mismatch: expected %d, got %d", len(valid), len(embeddings))
		p.failBatch(results, positions, err)
		return
	}

	records := make([]*index.Record, len(valid))
	for i, candidate := range valid {
		records[i] = &index.Record{
			Id:       candidate.Id,
			Vector:   NormalizeVector(embeddings[i]),
			Metadata: candidateMetadata(candidate),
		}
	}

	upserts, err := p.idx.UpsertBatch(ctx, records)
	if err != nil {
		p.failBatch(results, positions, err)
		return
	}
	for i, upsert := range upserts {
		if upsert.Err != nil {
			results[positions[i]].Err = upsert.Err
		}
	}
}

func (p *Pipeline) failBatch(results []Result, positions []int, err error) {
	p.logger.Error("batch ingestion failed", "count", len(positions), "err", err)
	for _, pos := range positions {
		results[pos].Err = err
	}
}

// candidateMetadata flattens a profile into the string-valued metadata stored
// alongside its vector.
func candidateMetadata(candidate *core.CandidateProfile) map[string]string {
	metadata := make(map[string]string, 3)
	if len(candidate.Skills) > 0 {
		metadata["skills"] = strings.Join(candidate.Skills, ",")
	}
	if candidate.ExperienceYears > 0 {
		metadata["experience_years"] = strconv.FormatFloat(candidate.ExperienceYears, 'g', -1, 64)
	}
	if candidate.Education != core.EducationNone {
		metadata["education"] = candidate.Education.String()
	}
	if len(metadata) == 0 {
		return nil
	}
	return metadata
}

// Release releases the worker pool. The pipeline should not be used after
// calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
