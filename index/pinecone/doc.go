// Package pinecone implements index.Index against the managed Pinecone
// service.
//
// The serverless index is created lazily on first use when it does not exist,
// sized to the configured dimension with the cosine metric. Durability is the
// service's concern, so Persist and Restore are no-ops here.
package pinecone
