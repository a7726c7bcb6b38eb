package driven

import (
	"context"

	"github.com/hardwick-labs/paperbase/internal/core/domain"
)

// VectorStore persists passages alongside their embedding vectors and
// answers nearest-neighbour queries. One store holds one document's
// passages; there is no cross-document state.
//
// The insertion protocol guarantees a passage never exists without its
// vector: both rows are written in the same transaction.
type VectorStore interface {
	// InsertBatch stores passages and their vectors as one transaction
	// and returns the assigned identifiers in input order.
	// len(vectors) must equal len(passages) and every vector must match
	// the store's dimension.
	InsertBatch(ctx context.Context, passages []domain.Passage, vectors [][]float32) ([]int64, error)

	// Search returns up to topK stored passages ordered by ascending
	// distance to the query vector. topK must be positive; fewer than
	// topK results are returned when fewer passages exist.
	Search(ctx context.Context, query []float32, topK int) ([]domain.SearchHit, error)

	// Count returns the number of stored passages.
	Count(ctx context.Context) (int64, error)

	// Close releases the underlying connection. Stores are opened once
	// per logical unit of work and closed on every exit path.
	Close() error
}

// VectorStoreOpener creates or reopens the vector store at a location.
// Opening is idempotent: an existing store is validated (dimension and
// distance metric must match) rather than recreated.
type VectorStoreOpener interface {
	Open(path string) (VectorStore, error)
}
