// Package ingest loads candidate profiles into the vector index.
//
// The pipeline builds each candidate's profile text, batch-embeds it with
// retry, normalizes the vectors to unit length and upserts them with
// per-candidate outcomes. Batches are processed on a bounded worker pool.
package ingest
