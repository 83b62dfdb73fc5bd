package ingest

import "math"

// NormalizeVector scales an embedding to unit length before it is stored or
// queried, so cosine similarity against indexed candidates is well behaved
// regardless of the embedding model's output magnitude. The input slice is
// left untouched; a zero vector (which cannot be normalized) comes back as a
// fresh zero vector.
func NormalizeVector(v []float32) []float32 {
	if len(v) == 0 {
		return v
	}

	var sum float64
	for _, val := range v {
		sum += float64(val) * float64(val)
	}

	out := make([]float32, len(v))
	magnitude := math.Sqrt(sum)
	if magnitude == 0 {
		return out
	}
	for i, val := range v {
		out[i] = float32(float64(val) / magnitude)
	}
	return out
}
