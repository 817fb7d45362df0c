package recommend

import (
	"hash/fnv"

	"discourse-ai/internal/embedding"
)

// Activity multipliers for the factorization-style vector. More active users
// get a sharper vector, low-activity users a damped one.
var activityMultipliers = map[string]float32{
	ActivityLow:    0.8,
	ActivityMedium: 1.0,
	ActivityHigh:   1.2,
}

// SparseProfileVector encodes the profile's (post id -> rating) pairs as a
// sparse vector over the shared hashed vocabulary. Two users who rated the
// same posts land on the same slots, which is what makes profile-to-profile
// similarity search work.
func SparseProfileVector(p *Profile, vocabSize int) embedding.SparseVector {
	if vocabSize <= 0 {
		return embedding.SparseVector{}
	}
	weights := make(map[uint32]float32, len(p.Interactions))
	for _, in := range p.Interactions {
		if in.Rating <= 0 {
			continue
		}
		weights[slotFor(in.PostID, vocabSize)] += float32(in.Rating)
	}
	return embedding.SparseFromMap(weights)
}

// FactorizationVector builds a fixed-length dense vector standing in for
// learned latent factors: the first half carries category-preference scores,
// the second half interaction weights modulated by their index, the whole
// scaled by the activity multiplier and unit-normalized.
func FactorizationVector(p *Profile, dim int) []float32 {
	if dim <= 0 {
		return nil
	}
	vec := make([]float32, dim)
	half := dim / 2
	if half == 0 {
		half = dim
	}

	for categoryID, score := range p.CategoryScores {
		vec[slotFor(categoryID, half)] += float32(score)
	}
	if rest := dim - half; rest > 0 {
		for i, in := range p.Interactions {
			slot := half + int(slotFor(in.PostID, rest))
			vec[slot] += float32(in.Rating) / float32(1+i%7)
		}
	}

	multiplier := activityMultipliers[p.ActivityLevel]
	if multiplier == 0 {
		multiplier = 1
	}
	for i := range vec {
		vec[i] *= multiplier
	}
	return embedding.L2Normalize(vec)
}

// slotFor hashes an id into a slot in [0, buckets).
func slotFor(id string, buckets int) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return h.Sum32() % uint32(buckets)
}
