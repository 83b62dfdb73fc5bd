package match

import (
	"context"
	"log/slog"
	"runtime"
	"sort"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/talentrank/core"
)

// RankedCandidate pairs a candidate with its score breakdown.
type RankedCandidate struct {
	Candidate *core.CandidateProfile
	Breakdown *core.ScoreBreakdown
}

// CandidateFailure reports a candidate whose scoring attempt failed.
type CandidateFailure struct {
	Candidate *core.CandidateProfile
	Err       error
}

// RankResult holds the outcome of one ranking pass. Every input candidate
// appears in exactly one of the two lists; failures are never silently
// dropped from the output.
type RankResult struct {
	Ranked   []*RankedCandidate
	Failures []*CandidateFailure
}

// Ranker scores candidate batches concurrently and orders them by final
// score descending. Ties are broken by original input position, so ranking
// is deterministic and idempotent for identical inputs.
type Ranker struct {
	scorer  *Scorer
	pool    *ants.Pool
	monitor RankMonitor
	logger  *slog.Logger
}

// RankerOption configures a Ranker.
type RankerOption func(*Ranker) error

// WithPoolSize sets the worker pool size for concurrent scoring.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) RankerOption {
	return func(r *Ranker) error {
		if size < 1 {
			size = 1
		}
		if r.pool != nil {
			r.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		r.pool = pool
		return nil
	}
}

// WithMonitor sets a monitor to observe ranking passes.
func WithMonitor(monitor RankMonitor) RankerOption {
	return func(r *Ranker) error {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		r.monitor = monitor
		return nil
	}
}

// WithRankerLogger sets a custom logger.
// Default is slog.Default().
func WithRankerLogger(logger *slog.Logger) RankerOption {
	return func(r *Ranker) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger.With("component", "ranker")
		return nil
	}
}

// NewRanker creates a ranker over the given scorer.
func NewRanker(scorer *Scorer, opts ...RankerOption) (*Ranker, error) {
	if scorer == nil {
		return nil, ErrScorerRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	r := &Ranker{
		scorer:  scorer,
		pool:    pool,
		monitor: &noopMonitor{},
		logger:  slog.Default().With("component", "ranker"),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			r.Release()
			return nil, err
		}
	}
	return r, nil
}

// Rank scores every candidate against the requirements and returns them
// ordered by final score descending. A failure scoring one candidate does
// not block the others; failed candidates are reported in the result. A
// failure embedding the description itself fails the whole batch, since no
// candidate can be scored without it.
func (r *Ranker) Rank(ctx context.Context, candidates []*core.CandidateProfile, requirements *core.RequirementSet) (*RankResult, error) {
	if requirements == nil {
		return nil, ErrRequirementsRequired
	}
	r.monitor.Start(requirements.Description, len(candidates))

	queryVector, err := r.scorer.embedDescription(ctx, requirements)
	if err != nil {
		return nil, err
	}

	type outcome struct {
		breakdown *core.ScoreBreakdown
		err       error
	}
	outcomes := make([]outcome, len(candidates))

	var wg sync.WaitGroup
	for i, candidate := range candidates {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			breakdown, err := r.scorer.scoreWithQueryVector(ctx, candidate, requirements, queryVector)
			outcomes[i] = outcome{breakdown: breakdown, err: err}
			if err != nil {
				r.monitor.Failed(candidate, err)
			} else {
				r.monitor.Scored(candidate, breakdown)
			}
		}
		if err := r.pool.Submit(task); err != nil {
			// Pool unavailable; score on the calling goroutine.
			task()
		}
	}
	wg.Wait()

	result := &RankResult{}
	type positioned struct {
		ranked   *RankedCandidate
		position int
	}
	scored := make([]positioned, 0, len(candidates))

	for i, candidate := range candidates {
		if outcomes[i].err != nil {
			r.logger.Warn("candidate scoring failed", "candidate", candidate.Id, "err", outcomes[i].err)
			result.Failures = append(result.Failures, &CandidateFailure{
				Candidate: candidate,
				Err:       outcomes[i].err,
			})
			continue
		}
		scored = append(scored, positioned{
			ranked:   &RankedCandidate{Candidate: candidate, Breakdown: outcomes[i].breakdown},
			position: i,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].ranked.Breakdown.FinalScore != scored[j].ranked.Breakdown.FinalScore {
			return scored[i].ranked.Breakdown.FinalScore > scored[j].ranked.Breakdown.FinalScore
		}
		return scored[i].position < scored[j].position
	})

	result.Ranked = make([]*RankedCandidate, len(scored))
	for i, entry := range scored {
		result.Ranked[i] = entry.ranked
	}

	r.monitor.Finish(result.Ranked)
	return result, nil
}

// Release releases the worker pool. The ranker should not be used after
// calling Release.
func (r *Ranker) Release() {
	if r.pool != nil {
		r.pool.Release()
	}
}
