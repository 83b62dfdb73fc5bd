package local

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"sort"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/poiesic/talentrank/index"
)

// Index is the local in-process variant of index.Index.
type Index struct {
	mu      sync.RWMutex
	records map[string]*index.Record
	closed  bool

	dim    int
	db     *badger.DB
	logger *slog.Logger
}

var _ index.Index = (*Index)(nil)

// Option configures an Index.
type Option func(*Index) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Index) error {
		if logger == nil {
			logger = slog.Default()
		}
		l.logger = logger.With("component", "local-index")
		return nil
	}
}

// badgerLoggerAdapter adapts slog.Logger to the badger.Logger interface.
type badgerLoggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Info(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

// New creates a local index. An empty cfg.Path keeps snapshot storage in
// memory, which is useful for tests; otherwise the directory is created if
// it does not exist.
func New(cfg *index.Config, opts ...Option) (*Index, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var badgerOpts badger.Options
	if cfg.Path == "" {
		badgerOpts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		info, err := os.Stat(cfg.Path)
		if err != nil {
			if os.IsNotExist(err) {
				if err := os.MkdirAll(cfg.Path, 0755); err != nil {
					return nil, err
				}
				info, err = os.Stat(cfg.Path)
				if err != nil {
					return nil, err
				}
			} else {
				return nil, err
			}
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", cfg.Path)
		}
		badgerOpts = badger.DefaultOptions(cfg.Path)
	}

	l := &Index{
		records: make(map[string]*index.Record),
		dim:     cfg.Dimension,
		logger:  slog.Default().With("component", "local-index"),
	}

	// Options must run before the database opens so Badger logs through the
	// configured logger.
	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}

	badgerOpts.Logger = &badgerLoggerAdapter{logger: l.logger}
	badgerOpts.Compression = options.None

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, err
	}
	l.db = db

	return l, nil
}

// Upsert stores a record, replacing any prior record with the same
// identifier. The record is copied; callers may reuse their slices.
func (l *Index) Upsert(ctx context.Context, record *index.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if record == nil || record.Id == "" {
		return index.ErrEmptyRecordID
	}
	if len(record.Vector) != l.dim {
		return fmt.Errorf("%w: got %d, index dimension %d",
			index.ErrDimensionMismatch, len(record.Vector), l.dim)
	}

	stored := copyRecord(record)

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return index.ErrIndexClosed
	}
	l.records[stored.Id] = stored
	return nil
}

// UpsertBatch stores multiple records with per-item outcomes. Entries applied
// before a failure or cancellation stay in place.
func (l *Index) UpsertBatch(ctx context.Context, records []*index.Record) ([]index.UpsertResult, error) {
	results := make([]index.UpsertResult, len(records))
	for i, record := range records {
		id := ""
		if record != nil {
			id = record.Id
		}
		results[i] = index.UpsertResult{Id: id, Err: l.Upsert(ctx, record)}
	}
	return results, nil
}

// Query returns up to k records most similar to the vector, ordered by
// descending cosine similarity with ascending-id tie-break.
func (l *Index) Query(ctx context.Context, vector []float32, k int) ([]index.Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive", index.ErrInvalidQuery)
	}
	if len(vector) != l.dim {
		return nil, fmt.Errorf("%w: got %d, index dimension %d",
			index.ErrDimensionMismatch, len(vector), l.dim)
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return nil, index.ErrIndexClosed
	}

	matches := make([]index.Match, 0, len(l.records))
	for _, record := range l.records {
		matches = append(matches, index.Match{
			Id:       record.Id,
			Score:    cosineSimilarity(vector, record.Vector),
			Metadata: copyMetadata(record.Metadata),
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Id < matches[j].Id
	})

	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// Delete removes a record by identifier. Missing identifiers are a no-op.
func (l *Index) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return index.ErrIndexClosed
	}
	delete(l.records, id)
	return nil
}

// Stats reports the backend kind, dimension and vector count.
func (l *Index) Stats(ctx context.Context) (*index.Stats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return nil, index.ErrIndexClosed
	}
	return &index.Stats{
		Backend:      "local",
		Dimension:    l.dim,
		TotalVectors: len(l.records),
	}, nil
}

// Close closes the snapshot database. The in-memory state is discarded;
// call Persist first to keep it.
func (l *Index) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	return l.db.Close()
}

// cosineSimilarity calculates the cosine similarity of two vectors.
// A zero vector has similarity 0 with everything.
func cosineSimilarity(a, b []float32) float32 {
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
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

func copyRecord(record *index.Record) *index.Record {
	out := &index.Record{Id: record.Id}
	out.Vector = make([]float32, len(record.Vector))
	copy(out.Vector, record.Vector)
	out.Metadata = copyMetadata(record.Metadata)
	return out
}

func copyMetadata(metadata map[string]string) map[string]string {
	if metadata == nil {
		return nil
	}
	out := make(map[string]string, len(metadata))
	for k, v := range metadata {
		out[k] = v
	}
	return out
}
