package pinecone

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/pinecone-io/go-pinecone/v2/pinecone"
	"github.com/poiesic/talentrank/index"
)

// Index is the remote variant of index.Index backed by Pinecone.
type Index struct {
	conn   *pinecone.IndexConnection
	dim    int
	closed bool
	logger *slog.Logger
}

var _ index.Index = (*Index)(nil)

// Option configures an Index.
type Option func(*Index) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Index) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger.With("component", "pinecone-index")
		return nil
	}
}

// New connects to the configured Pinecone index, creating a serverless index
// with the cosine metric when none exists yet.
func New(ctx context.Context, cfg *index.Config, opts ...Option) (*Index, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !cfg.HasRemote() {
		return nil, fmt.Errorf("%w: no remote credentials configured", index.ErrBackendUnavailable)
	}
	remote := cfg.Remote.Normalized()

	client, err := pinecone.NewClient(pinecone.NewClientParams{
		ApiKey: remote.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", index.ErrBackendUnavailable, err)
	}

	desc, err := client.DescribeIndex(ctx, remote.IndexName)
	if err != nil {
		desc, err = createIndex(ctx, client, &remote, cfg.Dimension)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", index.ErrBackendUnavailable, err)
		}
	}
	if desc.Dimension != int32(cfg.Dimension) {
		return nil, fmt.Errorf("%w: remote index dimension %d, configured %d",
			index.ErrBackendUnavailable, desc.Dimension, cfg.Dimension)
	}

	conn, err := client.Index(pinecone.NewIndexConnParams{
		Host:      desc.Host,
		Namespace: remote.Namespace,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", index.ErrBackendUnavailable, err)
	}

	p := &Index{
		conn:   conn,
		dim:    cfg.Dimension,
		logger: slog.Default().With("component", "pinecone-index"),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			conn.Close()
			return nil, err
		}
	}

	p.logger.Info("connected to remote index",
		"index", remote.IndexName, "namespace", remote.Namespace, "dimension", cfg.Dimension)
	return p, nil
}

func createIndex(ctx context.Context, client *pinecone.Client, remote *index.RemoteConfig, dim int) (*pinecone.Index, error) {
	_, err := client.CreateServerlessIndex(ctx, &pinecone.CreateServerlessIndexRequest{
		Name:      remote.IndexName,
		Dimension: int32(dim),
		Metric:    pinecone.Cosine,
		Cloud:     pinecone.Cloud(remote.Cloud),
		Region:    remote.Region,
	})
	if err != nil {
		return nil, err
	}
	return client.DescribeIndex(ctx, remote.IndexName)
}

// Upsert stores a record, replacing any prior record with the same
// identifier.
func (p *Index) Upsert(ctx context.Context, record *index.Record) error {
	if p.closed {
		return index.ErrIndexClosed
	}
	vec, err := p.toVector(record)
	if err != nil {
		return err
	}

	_, err = p.conn.UpsertVectors(ctx, []*pinecone.Vector{vec})
	return err
}

// UpsertBatch stores multiple records in one request. Records that fail local
// validation are reported per item and excluded from the request; a transport
// failure marks every submitted record.
func (p *Index) UpsertBatch(ctx context.Context, records []*index.Record) ([]index.UpsertResult, error) {
	if p.closed {
		return nil, index.ErrIndexClosed
	}

	results := make([]index.UpsertResult, len(records))
	vectors := make([]*pinecone.Vector, 0, len(records))
	submitted := make([]int, 0, len(records))

	for i, record := range records {
		id := ""
		if record != nil {
			id = record.Id
		}
		results[i] = index.UpsertResult{Id: id}

		vec, err := p.toVector(record)
		if err != nil {
			results[i].Err = err
			continue
		}
		vectors = append(vectors, vec)
		submitted = append(submitted, i)
	}

	if len(vectors) > 0 {
		if _, err := p.conn.UpsertVectors(ctx, vectors); err != nil {
			for _, i := range submitted {
				results[i].Err = err
			}
		}
	}
	return results, nil
}

func (p *Index) toVector(record *index.Record) (*pinecone.Vector, error) {
	if record == nil || record.Id == "" {
		return nil, index.ErrEmptyRecordID
	}
	if len(record.Vector) != p.dim {
		return nil, fmt.Errorf("%w: got %d, index dimension %d",
			index.ErrDimensionMismatch, len(record.Vector), p.dim)
	}
	metadata, err := metadataToProto(record.Metadata)
	if err != nil {
		return nil, err
	}
	values := make([]float32, len(record.Vector))
	copy(values, record.Vector)
	return &pinecone.Vector{
		Id:       record.Id,
		Values:   values,
		Metadata: metadata,
	}, nil
}

// Query returns up to k records most similar to the vector, ordered by
// descending cosine similarity with ascending-id tie-break.
func (p *Index) Query(ctx context.Context, vector []float32, k int) ([]index.Match, error) {
	if p.closed {
		return nil, index.ErrIndexClosed
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive", index.ErrInvalidQuery)
	}
	if len(vector) != p.dim {
		return nil, fmt.Errorf("%w: got %d, index dimension %d",
			index.ErrDimensionMismatch, len(vector), p.dim)
	}

	resp, err := p.conn.QueryByVectorValues(ctx, &pinecone.QueryByVectorValuesRequest{
		Vector:          vector,
		TopK:            uint32(k),
		IncludeMetadata: true,
	})
	if err != nil {
		return nil, err
	}

	matches := make([]index.Match, 0, len(resp.Matches))
	for _, scored := range resp.Matches {
		if scored == nil || scored.Vector == nil {
			continue
		}
		matches = append(matches, index.Match{
			Id:       scored.Vector.Id,
			Score:    scored.Score,
			Metadata: metadataFromProto(scored.Vector.Metadata),
		})
	}

	// The service orders by score; pin down equal-score ordering.
	sort.SliceStable(matches, func(i, j int) bool {
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

// Delete removes a record by identifier. Missing identifiers are a no-op on
// the service side.
func (p *Index) Delete(ctx context.Context, id string) error {
	if p.closed {
		return index.ErrIndexClosed
	}
	return p.conn.DeleteVectorsById(ctx, []string{id})
}

// Persist is a no-op; the service is durable on its own.
func (p *Index) Persist(ctx context.Context) error {
	if p.closed {
		return index.ErrIndexClosed
	}
	return nil
}

// Restore is a no-op; the service is durable on its own.
func (p *Index) Restore(ctx context.Context) error {
	if p.closed {
		return index.ErrIndexClosed
	}
	return nil
}

// Stats reports the backend kind, dimension and vector count.
func (p *Index) Stats(ctx context.Context) (*index.Stats, error) {
	if p.closed {
		return nil, index.ErrIndexClosed
	}
	resp, err := p.conn.DescribeIndexStats(ctx)
	if err != nil {
		return nil, err
	}
	return &index.Stats{
		Backend:      "pinecone",
		Dimension:    p.dim,
		TotalVectors: int(resp.TotalVectorCount),
	}, nil
}

// Close closes the service connection.
func (p *Index) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	return p.conn.Close()
}
