package vectorstore

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

// pointID maps an external entity id to a store-native point id. UUIDs pass
// through unchanged; anything else is hashed to a positive integer.
func (s *QdrantStore) pointID(id string) *qdrant.PointId {
	if _, err := uuid.Parse(id); err == nil {
		return qdrant.NewID(id)
	}
	return qdrant.NewIDNum(s.ids.numericID(id))
}

// idTable tracks hash→external-id assignments so collisions are detected and
// logged instead of silently merging two entities. The hash itself is a
// polynomial rolling hash, which is collision-prone at scale; detection here
// at least makes the failure visible.
type idTable struct {
	mu   sync.Mutex
	seen map[uint64]string
}

func newIDTable() *idTable {
	return &idTable{seen: make(map[uint64]string)}
}

func (t *idTable) numericID(id string) uint64 {
	h := rollingHash(id)

	t.mu.Lock()
	defer t.mu.Unlock()
	if prev, ok := t.seen[h]; ok {
		if prev != id {
			slog.Warn("point id hash collision, entities will overwrite each other",
				"hash", h, "existing_id", prev, "new_id", id)
		}
		return h
	}
	t.seen[h] = id
	return h
}

// rollingHash is a base-31 polynomial hash folded to a positive value.
func rollingHash(s string) uint64 {
	var h uint64
	for _, r := range s {
		h = h*31 + uint64(r)
	}
	// Qdrant numeric point ids are unsigned, but keep clear of the sign
	// bit so ids survive round-trips through signed integer columns.
	return h & 0x7fffffffffffffff
}
