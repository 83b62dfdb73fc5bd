package index

import "context"

// Record is a stored vector with its identifier and opaque metadata.
// Records are owned exclusively by the index; an upsert with an existing
// identifier replaces the prior record wholesale.
type Record struct {
	Id       string
	Vector   []float32
	Metadata map[string]string
}

// Match is a single query result.
type Match struct {
	Id       string
	Score    float32 // cosine similarity, in [-1, 1]
	Metadata map[string]string
}

// UpsertResult is the per-item outcome of a batch upsert.
type UpsertResult struct {
	Id  string
	Err error // nil on success
}

// Stats describes the state of an index.
type Stats struct {
	Backend      string // "local" or "pinecone"
	Dimension    int
	TotalVectors int
}

// Index provides nearest-neighbor search over embedding vectors.
// Implementations must be safe for concurrent use. Concurrent upserts to
// distinct identifiers are independent; a query concurrent with an upsert of
// the same identifier may observe either the pre- or post-upsert state.
type Index interface {
	// Upsert stores a record, replacing any prior record with the same
	// identifier. The vector must match the index dimension.
	Upsert(ctx context.Context, record *Record) error

	// UpsertBatch stores multiple records with no atomicity guarantee across
	// the batch: entries applied before a failure stay in place. The returned
	// slice holds one result per input record, in input order. The error is
	// non-nil only when the batch could not be attempted at all.
	UpsertBatch(ctx context.Context, records []*Record) ([]UpsertResult, error)

	// Query returns up to k records most similar to the vector, ordered by
	// descending similarity. Ties are broken by ascending identifier so that
	// identical inputs always produce identical output.
	Query(ctx context.Context, vector []float32, k int) ([]Match, error)

	// Delete removes a record by identifier. Deleting a non-existent
	// identifier is a no-op, not an error.
	Delete(ctx context.Context, id string) error

	// Persist writes the index contents to durable storage. For the remote
	// variant durability is service-side and Persist is a no-op.
	Persist(ctx context.Context) error

	// Restore reloads the index contents from durable storage, replacing the
	// in-memory state. A no-op for the remote variant.
	Restore(ctx context.Context) error

	// Stats reports the backend kind, dimension and vector count.
	Stats(ctx context.Context) (*Stats, error)

	// Close releases resources held by the index.
	Close() error
}
