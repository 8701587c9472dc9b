package rag

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"

	"GoRAGWorkshop/app/faults"
)

var _ VectorStore = &MemoryStore{}

// MemoryStore is a brute-force cosine store for local runs and tests.
type MemoryStore struct {
	mu         sync.RWMutex
	collection string
	dimension  int
	ids        []string
	vectors    [][]float32
	segments   []Segment
}

func NewMemoryStore(collection string) *MemoryStore {
	return &MemoryStore{collection: collection}
}

func (s *MemoryStore) Collection() string {
	return s.collection
}

func (s *MemoryStore) EnsureCollection(_ context.Context, dimension int) (bool, error) {
	if dimension <= 0 {
		return false, faults.Configuration("ensure collection", errors.New("dimension must be positive"))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dimension == 0 {
		s.dimension = dimension
		return false, nil
	}
	if s.dimension != dimension {
		return true, faults.DimensionMismatch("collection "+s.collection, dimension, s.dimension)
	}
	return true, nil
}

func (s *MemoryStore) Upsert(_ context.Context, records []Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		if s.dimension == 0 {
			s.dimension = len(r.Vector)
		}
		if len(r.Vector) != s.dimension {
			return faults.DimensionMismatch("upsert "+s.collection, s.dimension, len(r.Vector))
		}
	}
	for _, r := range records {
		s.ids = append(s.ids, uuid.New().String())
		s.vectors = append(s.vectors, r.Vector)
		s.segments = append(s.segments, r.Segment)
	}
	return nil
}

func (s *MemoryStore) Query(_ context.Context, vector []float32, k int) ([]ScoredSegment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.dimension > 0 && len(vector) != s.dimension {
		return nil, faults.DimensionMismatch("query "+s.collection, s.dimension, len(vector))
	}

	scored := make([]ScoredSegment, len(s.vectors))
	for i := range s.vectors {
		scored[i] = ScoredSegment{ID: s.ids[i], Segment: s.segments[i], Score: cosine(s.vectors[i], vector)}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if k >= 0 && k < len(scored) {
		scored = scored[:k]
	}
	return scored, nil
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vectors)
}

func (s *MemoryStore) Close() error {
	return nil
}

func cosine(a, b []float32) float32 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}
