package services

import (
	"context"
	"fmt"

	"github.com/hardwick-labs/paperbase/internal/core/domain"
	"github.com/hardwick-labs/paperbase/internal/core/ports/driven"
)

// DefaultEmbedBatchSize is the maximum number of texts sent to the
// embedding provider in one call, chosen conservatively below the
// provider's documented maximum.
const DefaultEmbedBatchSize = 512

// EmbeddingBatcher groups texts into bounded batches for the embedding
// service and concatenates results in submission order. Batches run
// sequentially; a failure on any batch aborts the whole operation with
// no partial-batch retry.
type EmbeddingBatcher struct {
	service   driven.EmbeddingService
	batchSize int
}

// BatcherOption configures an EmbeddingBatcher.
type BatcherOption func(*EmbeddingBatcher)

// WithBatchSize overrides the per-call batch size limit.
func WithBatchSize(n int) BatcherOption {
	return func(b *EmbeddingBatcher) {
		if n > 0 {
			b.batchSize = n
		}
	}
}

// NewEmbeddingBatcher creates a batcher over the given service.
func NewEmbeddingBatcher(service driven.EmbeddingService, opts ...BatcherOption) *EmbeddingBatcher {
	b := &EmbeddingBatcher{
		service:   service,
		batchSize: DefaultEmbedBatchSize,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// EmbedAll returns one vector per input text, preserving input order
// exactly: vector i corresponds to text i.
func (b *EmbeddingBatcher) EmbedAll(ctx context.Context, texts []string) ([][]float32, error) {
	if b.service == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if len(texts) == 0 {
		return nil, nil
	}

	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += b.batchSize {
		end := min(start+b.batchSize, len(texts))
		batch, err := b.service.EmbedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("embedding batch %d-%d: %w", start, end-1, err)
		}
		if len(batch) != end-start {
			return nil, fmt.Errorf("embedding batch %d-%d: got %d vectors for %d inputs",
				start, end-1, len(batch), end-start)
		}
		vectors = append(vectors, batch...)
	}
	return vectors, nil
}

// EmbedQuery embeds a single query string as a one-element batch.
func (b *EmbeddingBatcher) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := b.EmbedAll(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// Dimensions returns the vector size of the underlying service.
func (b *EmbeddingBatcher) Dimensions() int {
	if b.service == nil {
		return 0
	}
	return b.service.Dimensions()
}
