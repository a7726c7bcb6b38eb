package services

import (
	"context"
	"fmt"

	"github.com/hardwick-labs/paperbase/internal/core/domain"
	"github.com/hardwick-labs/paperbase/internal/core/ports/driven"
	"github.com/hardwick-labs/paperbase/internal/core/ports/driving"
	"github.com/hardwick-labs/paperbase/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.Retriever = (*RetrievalService)(nil)

// RetrievalService answers free-text queries against one document's
// vector store. It shares the embedding batcher and store opener with
// the ingestion pipeline but is strictly read-only.
type RetrievalService struct {
	library driven.Library
	batcher *EmbeddingBatcher
	stores  driven.VectorStoreOpener
}

// NewRetrievalService creates a retrieval service.
func NewRetrievalService(
	library driven.Library,
	batcher *EmbeddingBatcher,
	stores driven.VectorStoreOpener,
) *RetrievalService {
	return &RetrievalService{
		library: library,
		batcher: batcher,
		stores:  stores,
	}
}

// Retrieve embeds the query and returns the topK nearest passages,
// closest first. topK values below 1 fall back to driving.DefaultTopK.
// A document with no stored passages yields an empty result and no
// error; embedding or store failures are returned as errors.
func (s *RetrievalService) Retrieve(ctx context.Context, slug, query string, topK int) ([]domain.SearchHit, error) {
	if topK <= 0 {
		topK = driving.DefaultTopK
	}
	if !s.library.Exists(slug) {
		return nil, fmt.Errorf("document %q: %w", slug, domain.ErrNotFound)
	}

	store, err := s.stores.Open(s.library.StorePath(slug))
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	count, err := store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count passages: %w", err)
	}
	if count == 0 {
		return []domain.SearchHit{}, nil
	}

	vector, err := s.batcher.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := store.Search(ctx, vector, topK)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	logger.Debug("[%s] query returned %d hits", slug, len(hits))
	return hits, nil
}
