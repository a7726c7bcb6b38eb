package services

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/hardwick-labs/paperbase/internal/core/domain"
	"github.com/hardwick-labs/paperbase/internal/core/ports/driven"
	"github.com/hardwick-labs/paperbase/internal/core/ports/driving"
	"github.com/hardwick-labs/paperbase/internal/logger"
)

// Ensure IngestPipeline implements the interface.
var _ driving.Ingestor = (*IngestPipeline)(nil)

// minFigureBytes filters out tiny images (icons, bullets, rules) before
// they reach the describer.
const minFigureBytes = 5000

// IngestPipeline coordinates the end-to-end ingestion of one document:
// extract -> describe images -> segment -> embed -> persist -> ready.
//
// Every stage is recorded in the status store on entry, so progress is
// observable while the pipeline runs and the last entered stage remains
// as a durable marker if the process dies. Stages are strictly
// sequential within a document; documents are independent of each other.
type IngestPipeline struct {
	library   driven.Library
	statuses  driven.StatusStore
	extractor driven.DocumentExtractor
	describer driven.ImageDescriber
	batcher   *EmbeddingBatcher
	segmenter *Segmenter
	stores    driven.VectorStoreOpener
}

// NewIngestPipeline creates the pipeline coordinator.
// The describer is optional; when nil, figures receive generic
// page-based labels instead of described names.
func NewIngestPipeline(
	library driven.Library,
	statuses driven.StatusStore,
	extractor driven.DocumentExtractor,
	describer driven.ImageDescriber,
	batcher *EmbeddingBatcher,
	segmenter *Segmenter,
	stores driven.VectorStoreOpener,
) *IngestPipeline {
	return &IngestPipeline{
		library:   library,
		statuses:  statuses,
		extractor: extractor,
		describer: describer,
		batcher:   batcher,
		segmenter: segmenter,
		stores:    stores,
	}
}

// Ingest runs the full pipeline for a stored document. Any error other
// than a single image description failure halts the pipeline, moves the
// status record to failed with a summary, and is returned to the caller.
func (p *IngestPipeline) Ingest(ctx context.Context, slug string) (err error) {
	defer func() {
		if err != nil {
			p.markFailed(ctx, slug, err)
		}
	}()

	if !p.library.Exists(slug) {
		return fmt.Errorf("document %q: %w", slug, domain.ErrNotFound)
	}

	// 1. Extract text, layout and images from the source file. The
	// stage is recorded before extraction starts, so a crash mid-way
	// leaves extracting, not queued, as the durable marker; title and
	// page count follow in a same-stage merge once known.
	if err = p.setStage(ctx, slug, domain.StatusExtracting, nil); err != nil {
		return err
	}
	logger.Info("[%s] extracting text", slug)
	doc, err := p.extractor.Extract(ctx, p.library.DocumentPath(slug))
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}

	title := strings.TrimSpace(doc.Title)
	if title == "" {
		title = titleFromSlug(slug)
	}
	pages := len(doc.Pages)

	if err = p.setStage(ctx, slug, domain.StatusExtracting, func(rec *domain.StatusRecord) {
		rec.Title = title
		rec.Pages = pages
	}); err != nil {
		return err
	}
	if err = p.library.WriteFulltext(slug, doc.Fulltext()); err != nil {
		return fmt.Errorf("write fulltext: %w", err)
	}

	// 2. Describe and store extracted figures.
	if err = p.setStage(ctx, slug, domain.StatusDescribingImages, nil); err != nil {
		return err
	}
	images, err := p.processImages(ctx, slug, doc.Images)
	if err != nil {
		return err
	}
	logger.Info("[%s] described %d images", slug, len(images))

	// 3. Segment into passages.
	if err = p.setStage(ctx, slug, domain.StatusChunking, nil); err != nil {
		return err
	}
	passages := p.segmenter.Segment(doc.Pages)
	logger.Info("[%s] created %d chunks", slug, len(passages))

	imageCount := len(images)
	if len(passages) == 0 {
		// Nothing to embed; a document without extractable text is a
		// valid terminal state, not an error.
		chunkCount := 0
		return p.setStage(ctx, slug, domain.StatusReady, func(rec *domain.StatusRecord) {
			rec.Chunks = &chunkCount
			rec.Images = &imageCount
		})
	}

	// 4. Embed all passages in order.
	if err = p.setStage(ctx, slug, domain.StatusEmbedding, nil); err != nil {
		return err
	}
	texts := make([]string, len(passages))
	for i, passage := range passages {
		texts[i] = passage.Text
	}
	vectors, err := p.batcher.EmbedAll(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed: %w", err)
	}

	// 5. Persist passages and vectors in one transaction.
	store, err := p.stores.Open(p.library.StorePath(slug))
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	if _, err = store.InsertBatch(ctx, passages, vectors); err != nil {
		return fmt.Errorf("store passages: %w", err)
	}

	// 6. Done.
	chunkCount := len(passages)
	if err = p.setStage(ctx, slug, domain.StatusReady, func(rec *domain.StatusRecord) {
		rec.Chunks = &chunkCount
		rec.Images = &imageCount
	}); err != nil {
		return err
	}
	logger.Info("[%s] ingestion complete: %d chunks, %d images", slug, chunkCount, imageCount)
	return nil
}

// processImages filters, describes, names and stores extracted figures,
// returning the manifest records. A failed description is absorbed with
// a generic label; everything else is fatal.
func (p *IngestPipeline) processImages(ctx context.Context, slug string, blobs []domain.ImageBlob) ([]domain.ImageRecord, error) {
	images := make([]domain.ImageRecord, 0, len(blobs))
	figNum := 0

	for _, blob := range blobs {
		if len(blob.Data) < minFigureBytes {
			continue
		}

		description := ""
		if p.describer != nil {
			var err error
			description, err = p.describer.Describe(ctx, blob.Data, blob.Ext)
			if err != nil {
				logger.Warn("[%s] failed to describe image on page %d: %v", slug, blob.Page, err)
				description = ""
			}
		}
		if strings.TrimSpace(description) == "" {
			description = fmt.Sprintf("image-page-%d", blob.Page)
		}

		figNum++
		filename := domain.FigureFilename(figNum, description, blob.Ext)
		if err := p.library.SaveImage(slug, filename, blob.Data); err != nil {
			return nil, fmt.Errorf("save image %s: %w", filename, err)
		}
		images = append(images, domain.ImageRecord{
			Filename:    filename,
			Page:        blob.Page,
			Description: description,
		})
	}

	if err := p.library.WriteManifest(slug, images); err != nil {
		return nil, fmt.Errorf("write image manifest: %w", err)
	}
	return images, nil
}

// setStage records entry into a pipeline stage, applying any extra
// field updates in the same atomic write.
func (p *IngestPipeline) setStage(ctx context.Context, slug string, stage domain.Status, extra func(*domain.StatusRecord)) error {
	err := p.statuses.Update(ctx, slug, func(rec *domain.StatusRecord) {
		rec.Status = stage
		if extra != nil {
			extra(rec)
		}
	})
	if err != nil {
		return fmt.Errorf("update status to %s: %w", stage, err)
	}
	return nil
}

// markFailed moves the record to the terminal failed state with an
// error summary. Best effort: a record already terminal is left alone.
func (p *IngestPipeline) markFailed(ctx context.Context, slug string, cause error) {
	err := p.statuses.Update(ctx, slug, func(rec *domain.StatusRecord) {
		rec.Status = domain.StatusFailed
		rec.Error = cause.Error()
	})
	if err != nil {
		logger.Warn("[%s] could not record failure: %v", slug, err)
	}
}

// titleFromSlug derives a display title when the source has none.
func titleFromSlug(slug string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(slug, "-", " "))
}
