// Package memory provides in-memory implementations of the storage
// ports for tests and development. Semantics match the SQLite adapter;
// nothing survives process exit.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hardwick-labs/paperbase/internal/core/domain"
	"github.com/hardwick-labs/paperbase/internal/core/ports/driven"
)

// Ensure the store implements the port.
var _ driven.VectorStore = (*VectorStore)(nil)
var _ driven.VectorStoreOpener = (*VectorStoreOpener)(nil)

// VectorStoreOpener hands out in-memory stores keyed by path, so the
// same "location" always resolves to the same store within a process.
type VectorStoreOpener struct {
	mu        sync.Mutex
	dimension int
	stores    map[string]*VectorStore
}

// NewVectorStoreOpener creates an opener for stores of the given dimension.
func NewVectorStoreOpener(dimension int) *VectorStoreOpener {
	return &VectorStoreOpener{
		dimension: dimension,
		stores:    make(map[string]*VectorStore),
	}
}

// Open returns the store registered at path, creating it if needed.
func (o *VectorStoreOpener) Open(path string) (driven.VectorStore, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	store, ok := o.stores[path]
	if !ok {
		store = &VectorStore{dimension: o.dimension}
		o.stores[path] = store
	}
	return store, nil
}

type entry struct {
	passage domain.Passage
	vector  []float32
}

// VectorStore is an in-memory passage and vector store.
type VectorStore struct {
	mu        sync.RWMutex
	dimension int
	entries   []entry
	nextID    int64
}

// InsertBatch stores passages and vectors, assigning sequential ids.
// Either every pair is stored or none is.
func (s *VectorStore) InsertBatch(_ context.Context, passages []domain.Passage, vectors [][]float32) ([]int64, error) {
	if len(passages) != len(vectors) {
		return nil, fmt.Errorf("%w: %d passages, %d vectors", domain.ErrInvalidInput, len(passages), len(vectors))
	}
	for i, v := range vectors {
		if len(v) != s.dimension {
			return nil, fmt.Errorf("%w: vector %d has %d dimensions, store has %d",
				domain.ErrDimensionMismatch, i, len(v), s.dimension)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int64, 0, len(passages))
	for i, passage := range passages {
		s.nextID++
		passage.ID = s.nextID
		vector := make([]float32, len(vectors[i]))
		copy(vector, vectors[i])
		s.entries = append(s.entries, entry{passage: passage, vector: vector})
		ids = append(ids, passage.ID)
	}
	return ids, nil
}

// Search returns up to topK entries by ascending squared Euclidean
// distance to query.
func (s *VectorStore) Search(_ context.Context, query []float32, topK int) ([]domain.SearchHit, error) {
	if topK < 1 {
		return nil, fmt.Errorf("%w: topK must be positive, got %d", domain.ErrInvalidInput, topK)
	}
	if len(query) != s.dimension {
		return nil, fmt.Errorf("%w: query has %d dimensions, store has %d",
			domain.ErrDimensionMismatch, len(query), s.dimension)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	hits := make([]domain.SearchHit, 0, len(s.entries))
	for _, e := range s.entries {
		var sum float64
		for i := range query {
			d := float64(query[i]) - float64(e.vector[i])
			sum += d * d
		}
		hits = append(hits, domain.SearchHit{Passage: e.passage, Distance: sum})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Distance != hits[j].Distance {
			return hits[i].Distance < hits[j].Distance
		}
		return hits[i].ID < hits[j].ID
	})
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

// Count returns the number of stored passages.
func (s *VectorStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.entries)), nil
}

// Close is a no-op for the in-memory store.
func (s *VectorStore) Close() error {
	return nil
}
