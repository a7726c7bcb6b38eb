package driven

import (
	"context"

	"github.com/hardwick-labs/paperbase/internal/core/domain"
)

// DocumentExtractor turns a source file into page-annotated text blocks
// and raw images. Implementations are expected to preserve layout order:
// identical input bytes must always yield identical output, because
// segmentation boundaries derive from it.
type DocumentExtractor interface {
	// Extract reads the file at path. A document with no extractable
	// text is returned with empty pages, not an error.
	Extract(ctx context.Context, path string) (*domain.ExtractedDocument, error)
}
