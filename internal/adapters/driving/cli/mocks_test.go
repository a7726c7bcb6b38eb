package cli

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hardwick-labs/paperbase/internal/adapters/driven/storage/file"
	"github.com/hardwick-labs/paperbase/internal/core/domain"
)

// mockIngestor records the slugs it was asked to ingest.
type mockIngestor struct {
	slugs []string
	err   error
}

func (m *mockIngestor) Ingest(_ context.Context, slug string) error {
	m.slugs = append(m.slugs, slug)
	if m.err != nil {
		return m.err
	}
	return nil
}

// mockRetriever returns canned hits or an error.
type mockRetriever struct {
	hits []domain.SearchHit
	err  error
}

func (m *mockRetriever) Retrieve(context.Context, string, string, int) ([]domain.SearchHit, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.hits, nil
}

// setupTestServices wires real file storage in a temp dir with mocked
// pipeline collaborators, restoring the previous wiring on cleanup.
func setupTestServices(t *testing.T) (*mockIngestor, *mockRetriever) {
	t.Helper()

	lib, err := file.NewLibrary(filepath.Join(t.TempDir(), "docs"))
	require.NoError(t, err)

	oldLibrary := library
	oldStatuses := statusStore
	oldIngestor := ingestor
	oldRetriever := retriever

	ing := &mockIngestor{}
	ret := &mockRetriever{
		hits: []domain.SearchHit{
			{Passage: domain.Passage{ID: 1, Text: "the attention mechanism", Page: 2}, Distance: 0.5},
		},
	}
	library = lib
	statusStore = file.NewStatusStore(lib.Root())
	ingestor = ing
	retriever = ret

	t.Cleanup(func() {
		library = oldLibrary
		statusStore = oldStatuses
		ingestor = oldIngestor
		retriever = oldRetriever
	})
	return ing, ret
}
