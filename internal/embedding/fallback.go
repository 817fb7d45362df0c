package embedding

import (
	"hash/fnv"
	"math"
	"strings"
)

// emptyTextSeed keeps pseudo-embeddings for empty or whitespace-only input
// stable across calls without hashing the (empty) content.
const emptyTextSeed uint64 = 0x9e3779b97f4a7c15

// FallbackVector derives a deterministic unit vector of the given dimension
// from the input text. It is used when every embedding provider fails: the
// same text always maps to the same vector, and distinct texts map to
// distinct vectors with overwhelming probability, which is enough to keep
// similarity ranking functional in degraded mode. It is not a semantic
// embedding and makes no uniqueness guarantee.
func FallbackVector(text string, dim int) []float32 {
	if dim <= 0 {
		return nil
	}

	trimmed := strings.TrimSpace(text)

	seed := emptyTextSeed
	var length, words float64
	if trimmed != "" {
		h := fnv.New64a()
		_, _ = h.Write([]byte(trimmed))
		seed = h.Sum64()

		fields := strings.Fields(trimmed)
		length = float64(len(trimmed))
		words = float64(len(fields))

		// Fold per-word hashes into the seed so texts sharing a prefix
		// still diverge.
		for i, w := range fields {
			wh := fnv.New64a()
			_, _ = wh.Write([]byte(w))
			seed ^= wh.Sum64() << uint(i%13)
		}
	}

	vec := make([]float32, dim)
	base := float64(seed%1000003) / 1000003.0
	for i := 0; i < dim; i++ {
		x := base*float64(i+1) + length*0.001 + words*0.01
		// Alternate trig projections decorrelate neighboring dimensions.
		if i%2 == 0 {
			vec[i] = float32(math.Sin(x))
		} else {
			vec[i] = float32(math.Cos(x))
		}
	}

	return L2Normalize(vec)
}
