// Package index defines the vector index abstraction used for nearest-neighbor
// search over candidate embeddings.
//
// Two variants implement the Index interface:
//
//   - index/local: an in-process index with durable BadgerDB snapshots
//   - index/pinecone: a remote index backed by the managed Pinecone service
//
// The variant is selected once at construction time. A remote call failure
// surfaces as an error to the caller of that operation; there is no implicit
// fallback to the local variant mid-session.
//
// The index stores Records keyed by string identifier. Upserting an existing
// identifier replaces the prior vector and metadata entirely (last-write-wins,
// no field-level merge). Similarity is cosine, in [-1, 1]; callers typically
// clamp to [0, 1] before blending into a score.
package index
