package driving

import "context"

// Ingestor runs the full ingestion pipeline for one stored document:
// extract, describe images, segment, embed, persist, mark ready.
//
// One call is one unit of work. Calls for different slugs may run
// concurrently; there is no shared mutable state between documents.
// A failed ingestion is not retried anywhere in the stack - re-trigger
// it by adding the document again under a fresh slug.
type Ingestor interface {
	Ingest(ctx context.Context, slug string) error
}
