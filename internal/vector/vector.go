// Package vector provides the similarity maths used by the embedding store.
package vector

import "math"

// Cosine returns the cosine similarity of a and b in [-1, 1].
// Vectors of different length or with zero magnitude have similarity 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	switch {
	case math.IsNaN(sim):
		return 0
	case sim > 1:
		return 1
	case sim < -1:
		return -1
	}
	return sim
}

// Magnitude returns the Euclidean norm of v.
func Magnitude(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// RunningAverage folds values left to right as acc = (acc + x) / 2.
// The result depends on the order of values.
func RunningAverage(values ...float64) float64 {
	if len(values) == 0 {
		return 0
	}
	acc := values[0]
	for _, x := range values[1:] {
		acc = (acc + x) / 2
	}
	return acc
}
