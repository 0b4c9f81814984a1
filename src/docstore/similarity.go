package docstore

import "math"

// CosineSimilarity returns the cosine similarity of two vectors. Mismatched
// lengths, empty vectors, and zero-norm vectors all score 0.
func CosineSimilarity(left, right []float64) float64 {
	if len(left) == 0 || len(right) == 0 || len(left) != len(right) {
		return 0
	}

	var dot, normLeft, normRight float64
	for i := range left {
		dot += left[i] * right[i]
		normLeft += left[i] * left[i]
		normRight += right[i] * right[i]
	}
	if normLeft == 0 || normRight == 0 {
		return 0
	}
	return dot / (math.Sqrt(normLeft) * math.Sqrt(normRight))
}
