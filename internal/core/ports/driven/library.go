package driven

import (
	"context"
	"io"

	"github.com/hardwick-labs/paperbase/internal/core/domain"
)

// Library manages the per-document directory layout on disk: one
// directory per slug holding the source file, status record, fulltext,
// vector store and extracted figures.
//
// Slug uniqueness is enforced at Add time, which by construction
// prevents two ingestion runs for the same slug: a new upload never
// reuses an existing slug.
type Library interface {
	// Add stores a new source document and returns its unique slug,
	// derived from originalName with a numeric suffix on collision.
	Add(ctx context.Context, originalName string, content io.Reader) (string, error)

	// Exists reports whether a document directory exists for slug.
	Exists(slug string) bool

	// List returns the slugs of all stored documents, sorted.
	List(ctx context.Context) ([]string, error)

	// DocumentPath returns the path of the stored source file.
	DocumentPath(slug string) string

	// StorePath returns the path of the document's vector store.
	StorePath(slug string) string

	// WriteFulltext stores the page-marked plain text companion.
	WriteFulltext(slug string, text string) error

	// SaveImage stores an extracted figure under the img/ directory.
	SaveImage(slug string, filename string, data []byte) error

	// WriteManifest stores the figure manifest (images.json).
	WriteManifest(slug string, images []domain.ImageRecord) error
}
