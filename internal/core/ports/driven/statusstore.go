package driven

import (
	"context"

	"github.com/hardwick-labs/paperbase/internal/core/domain"
)

// StatusStore persists one status record per document. Records are
// rewritten atomically as a whole on every update so concurrent readers
// always observe an internally consistent snapshot.
type StatusStore interface {
	// Create writes the initial record for a new document.
	Create(ctx context.Context, rec domain.StatusRecord) error

	// Read returns the current record, or domain.ErrNotFound.
	Read(ctx context.Context, slug string) (*domain.StatusRecord, error)

	// Update applies mutate to the current record under read-merge-write
	// semantics: fields written by earlier stages survive. A status
	// change that is not a permitted transition is rejected with
	// domain.ErrInvalidTransition and nothing is written.
	Update(ctx context.Context, slug string, mutate func(*domain.StatusRecord)) error
}
