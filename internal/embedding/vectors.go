package embedding

import "math"

// L2Normalize scales vec to unit length in place and returns it. A zero
// vector is returned unchanged.
func L2Normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return vec
	}
	norm := math.Sqrt(sum)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
	return vec
}

// NormalizeDim corrects a vector whose length disagrees with the collection's
// configured dimension: shorter vectors are zero-padded, longer vectors are
// truncated, and the result is renormalized. Mismatches indicate upstream
// configuration drift and should be logged by the caller.
func NormalizeDim(vec []float32, dim int) []float32 {
	if dim <= 0 || len(vec) == dim {
		return vec
	}
	out := make([]float32, dim)
	copy(out, vec)
	return L2Normalize(out)
}
