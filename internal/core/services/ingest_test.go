package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hardwick-labs/paperbase/internal/adapters/driven/storage/file"
	"github.com/hardwick-labs/paperbase/internal/adapters/driven/storage/memory"
	"github.com/hardwick-labs/paperbase/internal/core/domain"
)

const testDims = 2

// pipelineEnv wires a pipeline over real file storage in a temp
// directory, with stubbed extraction, description and embedding.
type pipelineEnv struct {
	pipeline  *IngestPipeline
	library   *file.Library
	statuses  *file.StatusStore
	stores    *memory.VectorStoreOpener
	embedder  *stubEmbedder
	describer *stubDescriber
}

func setupPipeline(t *testing.T, extractor *stubExtractor) *pipelineEnv {
	t.Helper()

	lib, err := file.NewLibrary(filepath.Join(t.TempDir(), "docs"))
	require.NoError(t, err)

	env := &pipelineEnv{
		library:   lib,
		statuses:  file.NewStatusStore(lib.Root()),
		stores:    memory.NewVectorStoreOpener(testDims),
		embedder:  newStubEmbedder(testDims),
		describer: &stubDescriber{description: "neural network diagram"},
	}
	env.pipeline = NewIngestPipeline(
		lib,
		env.statuses,
		extractor,
		env.describer,
		NewEmbeddingBatcher(env.embedder),
		NewSegmenter(),
		env.stores,
	)
	return env
}

// addDocument stores a placeholder source file with a queued record.
func (e *pipelineEnv) addDocument(t *testing.T, name string) string {
	t.Helper()
	ctx := context.Background()

	slug, err := e.library.Add(ctx, name, strings.NewReader("%PDF-1.4"))
	require.NoError(t, err)
	require.NoError(t, e.statuses.Create(ctx, domain.StatusRecord{
		Slug:   slug,
		Status: domain.StatusQueued,
	}))
	return slug
}

func TestIngest_TwoPageDocumentSplitsLongText(t *testing.T) {
	extractor := &stubExtractor{doc: &domain.ExtractedDocument{
		Title: "Long Paper",
		Pages: []domain.Page{
			{Number: 1, Blocks: []domain.Block{wordsBlock(450, bodyFontSize)}},
			{Number: 2, Blocks: []domain.Block{wordsBlock(150, bodyFontSize)}},
		},
	}}
	env := setupPipeline(t, extractor)
	ctx := context.Background()
	slug := env.addDocument(t, "long-paper.pdf")

	require.NoError(t, env.pipeline.Ingest(ctx, slug))

	rec, err := env.statuses.Read(ctx, slug)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusReady, rec.Status)
	assert.Equal(t, "Long Paper", rec.Title)
	assert.Equal(t, 2, rec.Pages)
	require.NotNil(t, rec.Chunks)
	assert.Equal(t, 2, *rec.Chunks)

	store, err := env.stores.Open(env.library.StorePath(slug))
	require.NoError(t, err)
	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	// First passage took the length cut, the remainder was flushed.
	hits, err := store.Search(ctx, make([]float32, testDims), 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	texts := map[int64]string{hits[0].ID: hits[0].Text, hits[1].ID: hits[1].Text}
	assert.GreaterOrEqual(t, wordCount(texts[1]), DefaultMaxPassageWords)
	assert.Equal(t, 150, wordCount(texts[2]))

	fulltext, err := os.ReadFile(filepath.Join(env.library.Root(), slug, "fulltext.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(fulltext), "--- PAGE 1 ---")
	assert.Contains(t, string(fulltext), "--- PAGE 2 ---")
}

func TestIngest_ExtractingRecordedBeforeExtractionRuns(t *testing.T) {
	extractor := &stubExtractor{doc: &domain.ExtractedDocument{
		Pages: []domain.Page{
			{Number: 1, Blocks: []domain.Block{wordsBlock(20, bodyFontSize)}},
		},
	}}
	env := setupPipeline(t, extractor)
	ctx := context.Background()
	slug := env.addDocument(t, "slow scan.pdf")

	// A reader polling mid-extraction must already see the stage.
	var observed domain.Status
	extractor.onExtract = func() {
		rec, err := env.statuses.Read(ctx, slug)
		require.NoError(t, err)
		observed = rec.Status
	}

	require.NoError(t, env.pipeline.Ingest(ctx, slug))

	assert.Equal(t, domain.StatusExtracting, observed)

	// Title and page count still land via the same-stage merge.
	rec, err := env.statuses.Read(ctx, slug)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusReady, rec.Status)
	assert.Equal(t, "Slow Scan", rec.Title)
	assert.Equal(t, 1, rec.Pages)
}

func TestIngest_NoTextReachesReadyWithoutEmbedding(t *testing.T) {
	extractor := &stubExtractor{doc: &domain.ExtractedDocument{
		Pages: []domain.Page{{Number: 1}, {Number: 2}},
	}}
	env := setupPipeline(t, extractor)
	ctx := context.Background()
	slug := env.addDocument(t, "scanned.pdf")

	require.NoError(t, env.pipeline.Ingest(ctx, slug))

	rec, err := env.statuses.Read(ctx, slug)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusReady, rec.Status)
	require.NotNil(t, rec.Chunks)
	assert.Equal(t, 0, *rec.Chunks)

	// The embedding provider was never contacted.
	assert.Empty(t, env.embedder.batches)
}

func TestIngest_TitleFallsBackToSlug(t *testing.T) {
	extractor := &stubExtractor{doc: &domain.ExtractedDocument{
		Pages: []domain.Page{{Number: 1, Blocks: []domain.Block{wordsBlock(10, bodyFontSize)}}},
	}}
	env := setupPipeline(t, extractor)
	ctx := context.Background()
	slug := env.addDocument(t, "attention paper.pdf")

	require.NoError(t, env.pipeline.Ingest(ctx, slug))

	rec, err := env.statuses.Read(ctx, slug)
	require.NoError(t, err)
	assert.Equal(t, "Attention Paper", rec.Title)
}

func TestIngest_ExtractionFailureMarksFailed(t *testing.T) {
	extractor := &stubExtractor{err: errors.New("corrupt xref table")}
	env := setupPipeline(t, extractor)
	ctx := context.Background()
	slug := env.addDocument(t, "broken.pdf")

	err := env.pipeline.Ingest(ctx, slug)
	require.Error(t, err)

	rec, readErr := env.statuses.Read(ctx, slug)
	require.NoError(t, readErr)
	assert.Equal(t, domain.StatusFailed, rec.Status)
	assert.Contains(t, rec.Error, "corrupt xref table")
}

func TestIngest_EmbeddingFailureMarksFailed(t *testing.T) {
	extractor := &stubExtractor{doc: &domain.ExtractedDocument{
		Pages: []domain.Page{{Number: 1, Blocks: []domain.Block{wordsBlock(10, bodyFontSize)}}},
	}}
	env := setupPipeline(t, extractor)
	env.embedder.failOn = 1
	ctx := context.Background()
	slug := env.addDocument(t, "paper.pdf")

	err := env.pipeline.Ingest(ctx, slug)
	require.Error(t, err)

	rec, readErr := env.statuses.Read(ctx, slug)
	require.NoError(t, readErr)
	assert.Equal(t, domain.StatusFailed, rec.Status)
	assert.Contains(t, rec.Error, "embed")
}

func TestIngest_UnknownDocument(t *testing.T) {
	env := setupPipeline(t, &stubExtractor{doc: &domain.ExtractedDocument{}})

	err := env.pipeline.Ingest(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIngest_ImagesFilteredDescribedAndNamed(t *testing.T) {
	extractor := &stubExtractor{doc: &domain.ExtractedDocument{
		Pages: []domain.Page{{Number: 1, Blocks: []domain.Block{wordsBlock(10, bodyFontSize)}}},
		Images: []domain.ImageBlob{
			{Page: 1, Ext: "png", Data: make([]byte, 100)},  // below size floor
			{Page: 1, Ext: "png", Data: make([]byte, 6000)}, // kept
			{Page: 2, Ext: "jpeg", Data: make([]byte, 7000)},
		},
	}}
	env := setupPipeline(t, extractor)
	ctx := context.Background()
	slug := env.addDocument(t, "figures.pdf")

	require.NoError(t, env.pipeline.Ingest(ctx, slug))

	rec, err := env.statuses.Read(ctx, slug)
	require.NoError(t, err)
	require.NotNil(t, rec.Images)
	assert.Equal(t, 2, *rec.Images)

	// Only the two large images reached the describer.
	assert.Equal(t, 2, env.describer.calls)

	img := filepath.Join(env.library.Root(), slug, "img", "fig1-neural-network-diagram.png")
	_, err = os.Stat(img)
	assert.NoError(t, err)
	img = filepath.Join(env.library.Root(), slug, "img", "fig2-neural-network-diagram.jpeg")
	_, err = os.Stat(img)
	assert.NoError(t, err)
}

func TestIngest_DescriberFailureIsAbsorbed(t *testing.T) {
	extractor := &stubExtractor{doc: &domain.ExtractedDocument{
		Pages: []domain.Page{{Number: 1, Blocks: []domain.Block{wordsBlock(10, bodyFontSize)}}},
		Images: []domain.ImageBlob{
			{Page: 3, Ext: "png", Data: make([]byte, 6000)},
		},
	}}
	env := setupPipeline(t, extractor)
	env.describer.failOn = 1
	ctx := context.Background()
	slug := env.addDocument(t, "paper.pdf")

	require.NoError(t, env.pipeline.Ingest(ctx, slug))

	// The image got a generic page label instead of halting ingestion.
	img := filepath.Join(env.library.Root(), slug, "img", "fig1-image-page-3.png")
	_, err := os.Stat(img)
	assert.NoError(t, err)

	rec, err := env.statuses.Read(ctx, slug)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusReady, rec.Status)
}
