package domain

// StatusRecord is the persisted, externally observable state of one
// ingested document. It is rewritten atomically as a whole on every
// update and merged field-wise, so values written by earlier stages
// (title, page count) survive later updates.
type StatusRecord struct {
	// Slug is the filesystem-safe document identifier.
	Slug string `json:"slug"`

	// Status is the last entered ingestion stage.
	Status Status `json:"status"`

	// Title is the human-readable title, resolved during extraction.
	Title string `json:"title,omitempty"`

	// Pages is the source page count, known once extraction starts.
	Pages int `json:"pages,omitempty"`

	// Chunks is the number of stored passages. Set on completion;
	// zero is a valid value, hence the pointer.
	Chunks *int `json:"chunks,omitempty"`

	// Images is the number of extracted figures. Set on completion.
	Images *int `json:"images,omitempty"`

	// Error is a short failure summary, set only with StatusFailed.
	Error string `json:"error,omitempty"`
}

// ImageRecord describes one figure extracted from a document.
// Image records are informational only; they are not used in retrieval.
type ImageRecord struct {
	// Filename is the figure-numbered, slugified name under the
	// document's img/ directory, e.g. "fig2-training-loss-curve.png".
	Filename string `json:"filename"`

	// Page is the 1-based source page.
	Page int `json:"page"`

	// Description is the short natural-language description the
	// filename was derived from.
	Description string `json:"description"`
}
