package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity
// comparison. Implementations must be thread-safe for concurrent use, and
// must honor context cancellation and deadlines on every call.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector has the model's fixed dimensionality. An empty
	// input produces a model-defined vector, never an error.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a
	// batch. The result is semantically equivalent to repeated EmbedText
	// calls; outputs are in the same order as the inputs.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}
