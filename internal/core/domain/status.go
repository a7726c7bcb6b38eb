package domain

import "fmt"

// Status is the ingestion lifecycle stage of a document.
//
// Stages are strictly ordered. Each stage is persisted to the status
// record on entry so progress is observable while ingestion runs and the
// last entered stage survives a crash as a durable marker.
type Status string

// Ingestion lifecycle stages, in pipeline order.
const (
	// StatusQueued means the document is stored but ingestion has not started.
	StatusQueued Status = "queued"

	// StatusExtracting means text extraction from the source file is running.
	StatusExtracting Status = "extracting"

	// StatusDescribingImages means extracted figures are being described.
	StatusDescribingImages Status = "describing_images"

	// StatusChunking means extracted text is being segmented into passages.
	StatusChunking Status = "chunking"

	// StatusEmbedding means passage vectors are being generated and stored.
	StatusEmbedding Status = "embedding"

	// StatusReady means ingestion completed and the document is searchable.
	StatusReady Status = "ready"

	// StatusFailed means ingestion aborted; the record carries the error.
	StatusFailed Status = "failed"
)

// transitions is the set of permitted stage edges. The only skip allowed
// is chunking -> ready, taken when segmentation produces zero passages
// and there is nothing to embed.
var transitions = map[Status][]Status{
	StatusQueued:           {StatusExtracting},
	StatusExtracting:       {StatusDescribingImages},
	StatusDescribingImages: {StatusChunking},
	StatusChunking:         {StatusEmbedding, StatusReady},
	StatusEmbedding:        {StatusReady},
}

// ParseStatus validates a raw status string.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusQueued, StatusExtracting, StatusDescribingImages,
		StatusChunking, StatusEmbedding, StatusReady, StatusFailed:
		return Status(s), nil
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrInvalidInput, s)
}

// Terminal reports whether no further stage may follow s.
func (s Status) Terminal() bool {
	return s == StatusReady || s == StatusFailed
}

// CanTransitionTo reports whether moving from s to next is a legal
// status update. Re-entering the current stage is allowed so that
// metadata merges (title, page count) do not count as transitions.
// Any non-terminal stage may move to failed.
func (s Status) CanTransitionTo(next Status) bool {
	if s == next {
		return !s.Terminal()
	}
	if next == StatusFailed {
		return !s.Terminal()
	}
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}
