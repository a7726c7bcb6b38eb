package domain

// Passage is a contiguous span of document text, the unit of retrieval.
// Passage text is always trimmed and non-empty; whitespace-only content
// never becomes a passage.
type Passage struct {
	// ID is assigned by the vector store on insertion and increases
	// monotonically within a document.
	ID int64 `json:"id"`

	// Text is the trimmed passage content.
	Text string `json:"text"`

	// Page is the 1-based page that was active when the passage
	// started accumulating, not where it ends.
	Page int `json:"page"`

	// BlockIndex is the running count of non-empty text blocks at the
	// moment the passage started. It is a locator and tie-break only;
	// it carries no ordering guarantee across documents.
	BlockIndex int `json:"block_index"`
}

// SearchHit is one nearest-neighbour result for a query vector.
type SearchHit struct {
	Passage

	// Distance is the raw metric value reported by the vector store.
	// Lower means more similar; values pass through unmodified.
	Distance float64 `json:"distance"`
}
