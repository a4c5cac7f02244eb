// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

package recommend

import (
	"math"
)

// SimilarityFunc computes the full pairwise similarity matrix of vectors.
type SimilarityFunc func(vectors []Vector) [][]float64

// Cosine returns the cosine similarity of a and b.
// A zero vector is dissimilar to everything, including itself.
func Cosine(a, b Vector) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	// Iterate the smaller vector.
	if len(a) > len(b) {
		a, b = b, a
	}

	var dot, normA, normB float64
	for k, va := range a {
		if vb, ok := b[k]; ok {
			dot += va * vb
		}
		normA += va * va
	}
	for _, vb := range b {
		normB += vb * vb
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return clamp01(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

// CosineMatrix returns the symmetric cosine similarity matrix of vectors.
// The diagonal is 1 for non-zero vectors.
func CosineMatrix(vectors []Vector) [][]float64 {
	n := len(vectors)
	sim := make([][]float64, n)
	for i := range sim {
		sim[i] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		if len(vectors[i]) > 0 {
			sim[i][i] = 1
		}
		for j := i + 1; j < n; j++ {
			s := Cosine(vectors[i], vectors[j])
			sim[i][j] = s
			sim[j][i] = s
		}
	}
	return sim
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
