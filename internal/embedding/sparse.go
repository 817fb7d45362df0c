package embedding

import (
	"hash/fnv"
	"math"
	"sort"

	"discourse-ai/internal/textprep"
)

// SparseVector is an index→weight mapping over a fixed vocabulary space,
// compared by dot product. Indices are unique and sorted ascending.
type SparseVector struct {
	Indices []uint32
	Values  []float32
}

// IsEmpty reports whether the sparse vector carries no signal.
func (v SparseVector) IsEmpty() bool {
	return len(v.Indices) == 0
}

// HashSparse encodes text as a sparse term vector: each non-stopword token is
// hashed into one of vocabSize slots and weighted by its term frequency, then
// the weights are L2-normalized. Hash collisions merge unrelated terms into
// one slot; at the vocabulary sizes in use this is rare enough to accept.
func HashSparse(text string, vocabSize int) SparseVector {
	if vocabSize <= 0 {
		return SparseVector{}
	}

	tokens := textprep.FilterStopwords(textprep.Tokenize(text))
	if len(tokens) == 0 {
		return SparseVector{}
	}

	weights := make(map[uint32]float32, len(tokens))
	for _, token := range tokens {
		h := fnv.New32a()
		_, _ = h.Write([]byte(token))
		slot := h.Sum32() % uint32(vocabSize)
		weights[slot]++
	}

	return SparseFromMap(weights)
}

// SparseFromMap builds a normalized SparseVector from an index→weight map.
func SparseFromMap(weights map[uint32]float32) SparseVector {
	if len(weights) == 0 {
		return SparseVector{}
	}

	indices := make([]uint32, 0, len(weights))
	for idx := range weights {
		indices = append(indices, idx)
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })

	var sum float64
	for _, w := range weights {
		sum += float64(w) * float64(w)
	}
	norm := float32(math.Sqrt(sum))

	values := make([]float32, len(indices))
	for i, idx := range indices {
		values[i] = weights[idx] / norm
	}

	return SparseVector{Indices: indices, Values: values}
}
