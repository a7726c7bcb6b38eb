package driving

import (
	"context"

	"github.com/hardwick-labs/paperbase/internal/core/domain"
)

// DefaultTopK is the number of passages returned when the caller does
// not ask for a specific count.
const DefaultTopK = 5

// Retriever answers free-text queries against one document's passages.
// It is read-only and safe to call concurrently with ingestion of other
// documents; querying a document still being ingested may observe a
// partially populated store.
type Retriever interface {
	// Retrieve embeds query and returns the topK nearest passages,
	// closest first. An empty result means the document has no
	// passages; failures embedding the query or reaching the store
	// surface as errors, never as a silent empty result.
	Retrieve(ctx context.Context, slug, query string, topK int) ([]domain.SearchHit, error)
}
